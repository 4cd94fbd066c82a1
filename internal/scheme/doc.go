// Package scheme compiles a directory-naming template into per-level
// matching patterns and extracts field values from relative paths.
//
// # Templates
//
// A template is a slash-separated list of levels. Each level mixes literal
// text and {field} placeholders:
//
//	{genre}/{artist}/[{year}] {album}/{track} - {title}
//
// # Field Table
//
// Every placeholder must name an entry of the FieldTable passed to Compile.
// The table holds the character-class pattern of each field and whether the
// field is required:
//
//	table := scheme.DefaultFields()
//	compiled, err := scheme.Compile("{artist}/[{year}] {album}/{track} - {title}", table)
//	if err != nil {
//	    log.Fatal(err) // *scheme.ConfigurationError
//	}
//
// # Extraction
//
//	fields := compiled.Extract([]string{"Ария", "[2002] Крещение огнём", "01 - Штурмовик"})
//	// fields["album"] == "Крещение огнём"
package scheme
