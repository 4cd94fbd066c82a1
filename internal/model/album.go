package model

import (
	"fmt"
	"sort"
)

// Album is one album of the local collection as discovered by a scan.
//
// Tracks and Paths are keyed by track number. Count always equals
// len(Tracks).
//
// Example:
//
//	album := NewAlbum("Ария", "Крещение огнём", 2002, "Rock")
//	album.SetTrack(1, "Штурмовик", "Rock/Ария/[2002] Крещение огнём/01 - Штурмовик.mp3")
//	// album.Count == 1
type Album struct {
	// Year is the release year, 0 when the scheme has no year field.
	Year int

	// Genre is empty when the scheme has no genre field.
	Genre string

	// Artist is the album artist name.
	Artist string

	// Title is the album title.
	Title string

	// Tracks maps track numbers to track titles.
	Tracks map[int]string

	// Paths maps track numbers to paths relative to the scanned root.
	Paths map[int]string

	// Count is the number of distinct track numbers seen.
	Count int
}

// NewAlbum creates an Album without tracks.
func NewAlbum(artist, title string, year int, genre string) *Album {
	return &Album{
		Year:   year,
		Genre:  genre,
		Artist: artist,
		Title:  title,
		Tracks: make(map[int]string),
		Paths:  make(map[int]string),
	}
}

// AlbumKey returns the key an album is stored under for its artist:
// "<year> <title>", or just the title when the year is unknown.
func AlbumKey(year int, title string) string {
	if year == 0 {
		return title
	}
	return fmt.Sprintf("%d %s", year, title)
}

// Key returns the database key of the album.
func (a *Album) Key() string {
	return AlbumKey(a.Year, a.Title)
}

// SetTrack stores the title and path of a track number. A track number
// seen before is overwritten.
func (a *Album) SetTrack(number int, title, path string) {
	a.Tracks[number] = title
	a.Paths[number] = path
	a.Count = len(a.Tracks)
}

// TrackNumbers returns the track numbers in ascending order.
func (a *Album) TrackNumbers() []int {
	numbers := make([]int, 0, len(a.Tracks))
	for n := range a.Tracks {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	return numbers
}
