package scheme

import "sort"

// Field names known to the default table.
const (
	FieldArtist = "artist"
	FieldAlbum  = "album"
	FieldTrack  = "track"
	FieldTitle  = "title"
	FieldYear   = "year"
	FieldGenre  = "genre"
)

// namePattern is shared by the free-text fields. It accepts letters and
// digits of any script plus the punctuation common in release names, but
// never the level separator or square brackets.
const namePattern = `[\p{L}\p{M}\p{N}_\-' .,&!?()]+`

// FieldSpec describes one placeholder.
type FieldSpec struct {
	// Required fields must appear in the template and in every valid path.
	Required bool `json:"required" yaml:"required"`

	// Pattern is a regular expression without capturing groups that
	// recognizes the field value.
	Pattern string `json:"pattern" yaml:"pattern"`
}

// FieldTable maps field names to their specs.
type FieldTable map[string]FieldSpec

// DefaultFields returns the built-in field table.
func DefaultFields() FieldTable {
	return FieldTable{
		FieldArtist: {Required: true, Pattern: namePattern},
		FieldAlbum:  {Required: true, Pattern: namePattern},
		FieldTrack:  {Required: true, Pattern: `\d+`},
		FieldTitle:  {Required: true, Pattern: namePattern},
		FieldYear:   {Required: true, Pattern: `\d{4}`},
		FieldGenre:  {Required: false, Pattern: namePattern},
	}
}

// Required returns the sorted names of the required fields.
func (t FieldTable) Required() []string {
	var names []string
	for name, spec := range t {
		if spec.Required {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Names returns every field name, sorted.
func (t FieldTable) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Merge returns a copy of t with the entries of other added or replaced.
func (t FieldTable) Merge(other FieldTable) FieldTable {
	out := make(FieldTable, len(t)+len(other))
	for name, spec := range t {
		out[name] = spec
	}
	for name, spec := range other {
		out[name] = spec
	}
	return out
}
