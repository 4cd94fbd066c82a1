package model

import (
	"sort"
	"strconv"
)

// Fields maps field names to the text captured from a path.
//
// An empty Fields value means no placeholder matched. Values are kept exactly
// as captured; Year and Track parse the two integer-valued fields.
type Fields map[string]string

// Year returns the "year" field as an integer, or 0 when it is absent or
// not a number.
func (f Fields) Year() int {
	return f.number("year")
}

// Track returns the "track" field as an integer, or 0 when it is absent or
// not a number.
func (f Fields) Track() int {
	return f.number("track")
}

// Names returns the captured field names, sorted.
func (f Fields) Names() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (f Fields) number(name string) int {
	n, err := strconv.Atoi(f[name])
	if err != nil {
		return 0
	}
	return n
}
