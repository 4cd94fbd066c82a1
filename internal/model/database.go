package model

import "sort"

// Database is the in-memory view of the collection: artist → album key →
// album. It is built from validated paths only and is never persisted.
type Database struct {
	artists map[string]map[string]*Album
}

// NewDatabase creates an empty Database.
func NewDatabase() *Database {
	return &Database{artists: make(map[string]map[string]*Album)}
}

// Record folds one validated track into the database.
//
// The album is created on first sight. Recording a track number that the
// album already holds replaces its title and path; duplicates are not
// reported here.
func (d *Database) Record(fields Fields, path string) *Album {
	artist := fields["artist"]
	key := AlbumKey(fields.Year(), fields["album"])

	albums, ok := d.artists[artist]
	if !ok {
		albums = make(map[string]*Album)
		d.artists[artist] = albums
	}

	album, ok := albums[key]
	if !ok {
		album = NewAlbum(artist, fields["album"], fields.Year(), fields["genre"])
		albums[key] = album
	}

	album.SetTrack(fields.Track(), fields["title"], path)
	return album
}

// Album returns the album stored under artist and key.
func (d *Database) Album(artist, key string) (*Album, bool) {
	album, ok := d.artists[artist][key]
	return album, ok
}

// Artists returns the artist names in sorted order.
func (d *Database) Artists() []string {
	names := make([]string, 0, len(d.artists))
	for name := range d.artists {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Albums returns the album keys of an artist in sorted order.
func (d *Database) Albums(artist string) []string {
	keys := make([]string, 0, len(d.artists[artist]))
	for key := range d.artists[artist] {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of albums across all artists.
func (d *Database) Len() int {
	n := 0
	for _, albums := range d.artists {
		n += len(albums)
	}
	return n
}
