package tags

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"
	"golang.org/x/text/unicode/norm"

	"github.com/handiism/musiccheck/internal/model"
	"github.com/handiism/musiccheck/internal/scheme"
)

// ErrUnsupported is returned by Read for formats without a tag reader.
var ErrUnsupported = errors.New("unsupported audio format")

// Mismatch is one field whose embedded tag differs from the value taken
// from the file's path.
type Mismatch struct {
	Field string
	Tag   string
	Path  string
}

func (m Mismatch) String() string {
	if m.Tag == "" {
		return fmt.Sprintf("%s: no tag, path %q", m.Field, m.Path)
	}
	return fmt.Sprintf("%s: tag %q, path %q", m.Field, m.Tag, m.Path)
}

// Supported reports whether Read can handle the file's format.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3", ".flac":
		return true
	}
	return false
}

// Read returns the known fields stored in the file's tags. Frames that are
// absent are left out.
func Read(path string) (model.Fields, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return readID3(path)
	case ".flac":
		return readVorbis(path)
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupported)
	}
}

func readID3(path string) (model.Fields, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, err
	}
	defer tag.Close()

	fields := make(model.Fields)
	set(fields, scheme.FieldArtist, tag.Artist())
	set(fields, scheme.FieldAlbum, tag.Album())
	set(fields, scheme.FieldTitle, tag.Title())
	set(fields, scheme.FieldYear, tag.Year())
	set(fields, scheme.FieldGenre, tag.Genre())
	set(fields, scheme.FieldTrack, tag.GetTextFrame(tag.CommonID("Track number/Position in set")).Text)
	return fields, nil
}

var vorbisFields = map[string]string{
	flacvorbis.FIELD_ARTIST:      scheme.FieldArtist,
	flacvorbis.FIELD_ALBUM:       scheme.FieldAlbum,
	flacvorbis.FIELD_TITLE:       scheme.FieldTitle,
	flacvorbis.FIELD_DATE:        scheme.FieldYear,
	flacvorbis.FIELD_GENRE:       scheme.FieldGenre,
	flacvorbis.FIELD_TRACKNUMBER: scheme.FieldTrack,
}

func readVorbis(path string) (model.Fields, error) {
	f, err := flac.ParseFile(path)
	if err != nil {
		return nil, err
	}

	fields := make(model.Fields)
	for _, meta := range f.Meta {
		if meta.Type != flac.VorbisComment {
			continue
		}
		cmts, err := flacvorbis.ParseFromMetaDataBlock(*meta)
		if err != nil {
			return nil, err
		}
		for key, name := range vorbisFields {
			values, err := cmts.Get(key)
			if err == nil && len(values) > 0 {
				set(fields, name, values[0])
			}
		}
	}
	return fields, nil
}

func set(fields model.Fields, name, value string) {
	value = strings.TrimSpace(value)
	switch name {
	case scheme.FieldTrack:
		// "3/12"
		value, _, _ = strings.Cut(value, "/")
	case scheme.FieldYear:
		// "2002-05-01"
		if len(value) > 4 {
			value = value[:4]
		}
	}
	if value != "" {
		fields[name] = value
	}
}

// known lists the fields that tags can carry.
var known = map[string]bool{
	scheme.FieldArtist: true,
	scheme.FieldAlbum:  true,
	scheme.FieldTitle:  true,
	scheme.FieldYear:   true,
	scheme.FieldGenre:  true,
	scheme.FieldTrack:  true,
}

// Compare reads the tags of the file at path and returns the fields that
// disagree with want, in field name order. Only fields present in want that
// a tag can carry are checked. Text is compared case-insensitively after NFC
// normalization; year and track are compared as numbers, so "03/12" matches
// "3".
func Compare(path string, want model.Fields) ([]Mismatch, error) {
	got, err := Read(path)
	if err != nil {
		return nil, err
	}

	var mismatches []Mismatch
	for _, name := range want.Names() {
		if !known[name] {
			continue
		}
		if !equal(name, got, want) {
			mismatches = append(mismatches, Mismatch{
				Field: name,
				Tag:   got[name],
				Path:  want[name],
			})
		}
	}
	return mismatches, nil
}

func equal(name string, got, want model.Fields) bool {
	switch name {
	case scheme.FieldYear:
		return got.Year() != 0 && got.Year() == want.Year()
	case scheme.FieldTrack:
		return got.Track() != 0 && got.Track() == want.Track()
	}
	a := norm.NFC.String(got[name])
	b := norm.NFC.String(want[name])
	return a != "" && strings.EqualFold(a, b)
}
