// Package tags cross-checks the metadata embedded in audio files against
// the fields parsed from their paths.
//
// MP3 files are read with ID3v2 frames, FLAC files with Vorbis comments.
// Other formats are reported as unsupported and skipped by the caller.
//
//	mismatches, err := tags.Compare("/music/Rock/Ария/2002 Штиль/01 - Штиль.mp3", fields)
//	for _, m := range mismatches {
//	    fmt.Println(m) // artist: tag "Aria", path "Ария"
//	}
package tags
