package scheme

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/handiism/musiccheck/internal/model"
)

// Separator splits a template, and the paths matched against it, into levels.
const Separator = "/"

var placeholderRe = regexp.MustCompile(`\{(\w+)\}`)

// ConfigurationError reports a template that cannot be used with a field table.
// It is returned once at startup; no scan happens with a bad scheme.
type ConfigurationError struct {
	Template string
	Field    string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("scheme %q: %s", e.Template, e.Reason)
	}
	return fmt.Sprintf("scheme %q: field {%s}: %s", e.Template, e.Field, e.Reason)
}

// Compiled is a template turned into one anchored pattern per level.
//
// Patterns[i] recognizes level i and Fields[i] lists, left to right, the
// field names captured by Patterns[i]. A Compiled value is never modified
// after Compile returns.
type Compiled struct {
	Template string
	Patterns []*regexp.Regexp
	Fields   [][]string

	table FieldTable
}

// Compile builds a Compiled scheme from a template and a field table.
//
// Literal text of each level is escaped and every {name} placeholder is
// replaced by the table pattern wrapped in a named capturing group.
//
// Returns a *ConfigurationError if:
//   - a required field of the table does not appear in the template
//   - a placeholder names a field missing from the table
//   - a field appears more than once
//   - a field pattern does not compile
func Compile(template string, table FieldTable) (*Compiled, error) {
	levels := strings.Split(template, Separator)
	c := &Compiled{
		Template: template,
		Patterns: make([]*regexp.Regexp, 0, len(levels)),
		Fields:   make([][]string, 0, len(levels)),
		table:    table,
	}

	seen := make(map[string]bool)
	for _, level := range levels {
		var pattern strings.Builder
		var names []string

		pattern.WriteString("^")
		last := 0
		for _, loc := range placeholderRe.FindAllStringSubmatchIndex(level, -1) {
			name := level[loc[2]:loc[3]]
			spec, ok := table[name]
			if !ok {
				return nil, &ConfigurationError{Template: template, Field: name, Reason: "unknown field"}
			}
			if seen[name] {
				return nil, &ConfigurationError{Template: template, Field: name, Reason: "appears more than once"}
			}
			if _, err := regexp.Compile(spec.Pattern); err != nil {
				return nil, &ConfigurationError{Template: template, Field: name, Reason: fmt.Sprintf("bad pattern: %v", err)}
			}
			seen[name] = true

			pattern.WriteString(regexp.QuoteMeta(level[last:loc[0]]))
			fmt.Fprintf(&pattern, "(?P<%s>%s)", name, spec.Pattern)
			names = append(names, name)
			last = loc[1]
		}
		pattern.WriteString(regexp.QuoteMeta(level[last:]))
		pattern.WriteString("$")

		re, err := regexp.Compile(pattern.String())
		if err != nil {
			return nil, &ConfigurationError{Template: template, Reason: fmt.Sprintf("level %q: %v", level, err)}
		}
		c.Patterns = append(c.Patterns, re)
		c.Fields = append(c.Fields, names)
	}

	for _, name := range table.Required() {
		if !seen[name] {
			return nil, &ConfigurationError{Template: template, Field: name, Reason: "required field missing from scheme"}
		}
	}

	return c, nil
}

// Depth returns the number of levels of the scheme.
func (c *Compiled) Depth() int {
	return len(c.Patterns)
}

// Extract matches levels against the level patterns pairwise and returns the
// captured values. A level that does not match contributes nothing, so no
// partial match leaks into the result. Surplus levels on either side are
// ignored; the depth check is the caller's business.
func (c *Compiled) Extract(levels []string) model.Fields {
	fields := make(model.Fields)
	for i, re := range c.Patterns {
		if i >= len(levels) {
			break
		}
		m := re.FindStringSubmatch(levels[i])
		if m == nil {
			continue
		}
		for _, name := range c.Fields[i] {
			fields[name] = m[re.SubexpIndex(name)]
		}
	}
	return fields
}

// Missing returns the sorted required field names absent from fields.
func (c *Compiled) Missing(fields model.Fields) []string {
	var missing []string
	for _, name := range c.table.Required() {
		if _, ok := fields[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
