// Package report accumulates the structural problems found while auditing a
// collection and renders them as a human-readable summary.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4ECDC4"))

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))

	pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))
)

// Report collects findings of one run. All recorders append; nothing is
// ever removed. A path counts once per category: recording it again in the
// same category adds nothing, except that PushFields replaces the missing
// fields and PushTag adds mismatches.
type Report struct {
	extensions map[string][]string
	depth      []string
	empty      []string
	fields     map[string][]string
	fieldOrder []string
	tags       map[string][]string
	tagOrder   []string
	seen       map[string]bool

	// ShowTags adds the tag mismatch section to Render.
	ShowTags bool
}

// New creates an empty Report.
func New() *Report {
	return &Report{
		extensions: make(map[string][]string),
		fields:     make(map[string][]string),
		tags:       make(map[string][]string),
		seen:       make(map[string]bool),
	}
}

// PushExtension records a file whose extension is not an audio extension.
// ext is lower-case and has no leading dot.
func (r *Report) PushExtension(ext, path string) {
	if r.first("extension", path) {
		r.extensions[ext] = append(r.extensions[ext], path)
	}
}

// PushDepth records a file whose level count differs from the scheme's.
func (r *Report) PushDepth(path string) {
	if r.first("depth", path) {
		r.depth = append(r.depth, path)
	}
}

// PushEmpty records an empty directory.
func (r *Report) PushEmpty(path string) {
	if r.first("empty", path) {
		r.empty = append(r.empty, path)
	}
}

// PushFields records the required fields missing from a path.
func (r *Report) PushFields(path string, missing []string) {
	if r.first("fields", path) {
		r.fieldOrder = append(r.fieldOrder, path)
	}
	r.fields[path] = append([]string(nil), missing...)
}

// PushTag records a difference between a file's embedded tags and the
// fields taken from its path.
func (r *Report) PushTag(path, mismatch string) {
	if r.first("tag", path) {
		r.tagOrder = append(r.tagOrder, path)
	}
	r.tags[path] = append(r.tags[path], mismatch)
}

// first reports whether path is new to category and marks it seen.
func (r *Report) first(category, path string) bool {
	key := category + "\x00" + path
	if r.seen[key] {
		return false
	}
	r.seen[key] = true
	return true
}

// Extensions returns the recorded extensions in sorted order.
func (r *Report) Extensions() []string {
	exts := make([]string, 0, len(r.extensions))
	for ext := range r.extensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ExtensionPaths returns the paths recorded for an extension.
func (r *Report) ExtensionPaths(ext string) []string {
	return r.extensions[ext]
}

// Depth returns the paths with a wrong number of levels.
func (r *Report) Depth() []string {
	return r.depth
}

// Empty returns the empty directories.
func (r *Report) Empty() []string {
	return r.empty
}

// FieldPaths returns the paths with missing fields, in the order they were
// first recorded.
func (r *Report) FieldPaths() []string {
	return r.fieldOrder
}

// Missing returns the required fields missing from path.
func (r *Report) Missing(path string) []string {
	return r.fields[path]
}

// TagPaths returns the paths with tag mismatches, in recording order.
func (r *Report) TagPaths() []string {
	return r.tagOrder
}

// TagMismatches returns the mismatches recorded for path.
func (r *Report) TagMismatches(path string) []string {
	return r.tags[path]
}

// Problems returns the number of recorded findings: one per path and
// category.
func (r *Report) Problems() int {
	n := len(r.depth) + len(r.empty) + len(r.fieldOrder) + len(r.tagOrder)
	for _, paths := range r.extensions {
		n += len(paths)
	}
	return n
}

// Render returns the report as text. Sections always come in the same order
// (extensions, depth, empty, fields) and are printed even when empty.
func (r *Report) Render() string {
	var b strings.Builder

	extTotal := 0
	for _, paths := range r.extensions {
		extTotal += len(paths)
	}
	writeHeader(&b, "Bad extensions", extTotal)
	for _, ext := range r.Extensions() {
		name := ext
		if name == "" {
			name = "(none)"
		}
		b.WriteString("  " + keyStyle.Render("."+name) + "\n")
		for _, path := range r.extensions[ext] {
			b.WriteString("    " + pathStyle.Render(path) + "\n")
		}
	}

	writeHeader(&b, "Bad depth", len(r.depth))
	writePaths(&b, r.depth)

	writeHeader(&b, "Empty directories", len(r.empty))
	writePaths(&b, r.empty)

	writeHeader(&b, "Missing fields", len(r.fieldOrder))
	for _, path := range r.fieldOrder {
		b.WriteString("  " + pathStyle.Render(path) + " " +
			dimStyle.Render("missing: "+strings.Join(r.fields[path], ", ")) + "\n")
	}

	if r.ShowTags {
		writeHeader(&b, "Tag mismatches", len(r.tagOrder))
		for _, path := range r.tagOrder {
			b.WriteString("  " + pathStyle.Render(path) + "\n")
			for _, m := range r.tags[path] {
				b.WriteString("    " + dimStyle.Render(m) + "\n")
			}
		}
	}

	return b.String()
}

func writeHeader(b *strings.Builder, title string, count int) {
	b.WriteString(headerStyle.Render(title) + " " + countStyle.Render(fmt.Sprintf("(%d)", count)) + "\n")
}

func writePaths(b *strings.Builder, paths []string) {
	for _, path := range paths {
		b.WriteString("  " + pathStyle.Render(path) + "\n")
	}
}
