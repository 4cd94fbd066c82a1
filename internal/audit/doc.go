// Package audit walks a music collection and checks every file against a
// compiled naming scheme.
//
// An Auditor owns one run. It reads each configured root depth-first in
// sorted order and classifies every entry:
//   - empty directories are recorded as such
//   - files with a non-audio extension are recorded by extension
//   - audio files are parsed against the scheme and validated
//
// Valid audio files are folded into a model.Database. Invalid ones are
// recorded in a report.Report and, when manual fixing is enabled, handed to a
// Corrector that asks the user for a better path, moves the file and sends
// the new path back through validation.
//
// # Usage
//
//	compiled, err := scheme.Compile(settings.Scheme, settings.FieldTable())
//	if err != nil {
//	    return err
//	}
//	rep, db := report.New(), model.NewDatabase()
//	a := audit.New(settings, compiled, rep, db, log, prompter)
//	trees := a.Run()
//	fmt.Print(rep.Render())
//
// The walk is single-threaded; the prompt is its only blocking point.
package audit
