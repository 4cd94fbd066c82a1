package audit

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/handiism/musiccheck/internal/config"
	"github.com/handiism/musiccheck/internal/model"
	"github.com/handiism/musiccheck/internal/report"
	"github.com/handiism/musiccheck/internal/scheme"
	"github.com/handiism/musiccheck/internal/tags"
)

// Logger receives the categorized messages of a run.
type Logger interface {
	Debug(message string)
	Warning(message string)
	Report(message string)
	Request(message string)
	Move(message string)
	Error(message string)
}

// Node is one entry of the snapshot returned by Scan.
type Node struct {
	Name string

	// Path is relative to the scanned root and "/"-separated. The root
	// itself is ".".
	Path string

	Dir   bool
	Audio bool

	// Fixed is the path an audio file was corrected to, if any.
	Fixed string

	// Valid reports that an audio file passed validation.
	Valid bool

	Children []*Node
}

// Count returns the number of directories, files and valid audio files
// below n, n included.
func (n *Node) Count() (dirs, files, valid int) {
	if n.Dir {
		dirs++
	} else {
		files++
	}
	if n.Valid {
		valid++
	}
	for _, child := range n.Children {
		d, f, v := child.Count()
		dirs += d
		files += f
		valid += v
	}
	return dirs, files, valid
}

// Auditor checks a collection against a compiled scheme. It is not safe for
// concurrent use.
type Auditor struct {
	settings *config.Settings
	scheme   *scheme.Compiled
	report   *report.Report
	db       *model.Database
	log      Logger
	prompter Prompter

	audio     map[string]bool
	corrector *Corrector
	manualFix bool

	// root is the resolved path of the root being scanned.
	root string

	// prefix qualifies reported paths when more than one root is scanned.
	prefix string
}

// New creates an Auditor. Findings go to rep, validated tracks to db. The
// prompter is only used when settings.ManualFix is set and may be nil
// otherwise.
func New(settings *config.Settings, compiled *scheme.Compiled, rep *report.Report, db *model.Database, log Logger, prompter Prompter) *Auditor {
	exts := settings.AudioExtensions
	if len(exts) == 0 {
		exts = config.SplitExtensions(settings.AudioExt)
	}
	audio := make(map[string]bool, len(exts))
	for _, ext := range exts {
		audio[ext] = true
	}

	rep.ShowTags = settings.CheckTags

	return &Auditor{
		settings:  settings,
		scheme:    compiled,
		report:    rep,
		db:        db,
		log:       log,
		prompter:  prompter,
		audio:     audio,
		corrector: NewCorrector(settings.PlaylistDir, prompter, log),
		manualFix: settings.ManualFix && prompter != nil,
	}
}

// Run scans the playlist directory and then the other directory, if set.
// It returns one snapshot per root. With two roots, paths in the report,
// the log and the database are prefixed with their root directory so
// equal relative paths stay apart.
func (a *Auditor) Run() []*Node {
	roots := []string{a.settings.PlaylistDir}
	if a.settings.OtherDir != "" {
		roots = append(roots, a.settings.OtherDir)
	}

	trees := make([]*Node, 0, len(roots))
	for _, root := range roots {
		if len(roots) > 1 {
			a.prefix = filepath.ToSlash(filepath.Clean(root))
		}
		a.log.Debug(fmt.Sprintf("Populating tree: %s", root))
		trees = append(trees, a.Scan(root))
	}
	a.prefix = ""
	a.log.Debug(fmt.Sprintf("Done, %d problems found", a.report.Problems()))
	return trees
}

// Scan walks root and returns its snapshot. Problems are recorded in the
// report; nothing aborts the walk.
func (a *Auditor) Scan(root string) *Node {
	a.corrector = NewCorrector(root, a.prompter, a.log)

	node := &Node{Name: filepath.Base(root), Path: ".", Dir: true}
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		a.log.Error(fmt.Sprintf("Cannot resolve %s: %v", root, err))
		return node
	}
	a.root = resolved
	a.walk(root, "", node, make(map[string]bool))
	return node
}

// qualify returns the path rel is reported under.
func (a *Auditor) qualify(rel string) string {
	if a.prefix == "" {
		return rel
	}
	return path.Join(a.prefix, rel)
}

// walk visits dir. ancestors holds the resolved directories on the current
// branch, so only a true cycle stops the walk.
func (a *Auditor) walk(dir, rel string, node *Node, ancestors map[string]bool) {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		a.log.Error(fmt.Sprintf("Cannot resolve %s: %v", dir, err))
		return
	}
	if ancestors[resolved] {
		a.log.Warning(fmt.Sprintf("Skip: symlink loop %s", a.qualify(node.Path)))
		return
	}
	ancestors[resolved] = true
	defer delete(ancestors, resolved)

	entries, err := os.ReadDir(dir)
	if err != nil {
		a.log.Error(fmt.Sprintf("Cannot read %s: %v", dir, err))
		return
	}

	if len(entries) == 0 {
		a.report.PushEmpty(a.qualify(node.Path))
		a.log.Report(fmt.Sprintf("Empty directory: %s", a.qualify(node.Path)))
		return
	}

	for _, entry := range entries {
		name := entry.Name()
		childRel := path.Join(rel, name)
		full := filepath.Join(dir, name)

		if isDir(entry, full) {
			child := &Node{Name: name, Path: childRel, Dir: true}
			node.Children = append(node.Children, child)
			if target, ok := a.aliasInRoot(entry, full); ok {
				a.log.Warning(fmt.Sprintf("Skip: %s links to %s inside the collection", a.qualify(childRel), target))
				continue
			}
			a.walk(full, childRel, child, ancestors)
			continue
		}

		child := &Node{Name: name, Path: childRel}
		node.Children = append(node.Children, child)

		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
		if !a.audio[ext] {
			a.report.PushExtension(ext, a.qualify(childRel))
			a.log.Report(fmt.Sprintf("Bad extension: %s", a.qualify(childRel)))
			continue
		}

		child.Audio = true
		ok, final, fields := a.ParseAndValidate(childRel)
		child.Valid = ok
		if final != childRel {
			child.Fixed = final
		}
		if ok && a.settings.CheckTags {
			a.checkTags(final, fields)
		}
	}
}

// isDir reports whether entry is a directory, following symlinks.
func isDir(entry fs.DirEntry, full string) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(full)
	return err == nil && info.IsDir()
}

// aliasInRoot reports whether entry is a symlink to a directory inside the
// scanned root. The target is walked under its own name, so following the
// link would record its tracks twice or under the wrong name. It returns
// the target relative to the root.
func (a *Auditor) aliasInRoot(entry fs.DirEntry, full string) (string, bool) {
	if entry.Type()&fs.ModeSymlink == 0 || a.root == "" {
		return "", false
	}
	target, err := filepath.EvalSymlinks(full)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(a.root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// ParseAndValidate extracts the scheme fields from rel and records the track
// when every required field is present at the right depth.
//
// With manual fixing enabled, a path missing required fields is handed to
// the corrector and the loop starts over with the corrected path, until the
// path is valid or the user declines. A wrong depth alone is never offered
// for correction. It returns whether the track was recorded, the final path
// and the extracted fields.
func (a *Auditor) ParseAndValidate(rel string) (bool, string, model.Fields) {
	for {
		levels := splitLevels(rel)
		depthOK := len(levels) == a.scheme.Depth()
		if !depthOK {
			a.report.PushDepth(a.qualify(rel))
			a.log.Warning(fmt.Sprintf("Skip: Bad number of subfolders: %s", a.qualify(rel)))
			if !a.manualFix {
				return false, rel, nil
			}
		}

		fields := a.scheme.Extract(levels)
		missing := a.scheme.Missing(fields)
		if len(missing) == 0 {
			if !depthOK {
				return false, rel, fields
			}
			a.db.Record(fields, a.qualify(rel))
			a.log.Debug(fmt.Sprintf("Found: %s", a.qualify(rel)))
			return true, rel, fields
		}

		a.report.PushFields(a.qualify(rel), missing)
		message := fmt.Sprintf("Missing fields: %s", strings.Join(missing, ", "))
		a.log.Report(fmt.Sprintf("%s: %s", message, a.qualify(rel)))
		if !a.manualFix {
			return false, rel, fields
		}

		next, err := a.corrector.Correct(rel, message)
		if err != nil {
			if errors.Is(err, ErrCorrectionDeclined) {
				a.log.Warning(fmt.Sprintf("Skip: left as is: %s", a.qualify(rel)))
			} else {
				a.log.Error(fmt.Sprintf("Manual fix stopped: %v", err))
				a.manualFix = false
			}
			return false, rel, fields
		}
		rel = next
	}
}

// splitLevels strips the extension from rel and splits it into
// NFC-normalized levels.
func splitLevels(rel string) []string {
	rel = strings.TrimSuffix(rel, path.Ext(rel))
	return strings.Split(norm.NFC.String(rel), scheme.Separator)
}

func (a *Auditor) checkTags(rel string, fields model.Fields) {
	if !tags.Supported(rel) {
		return
	}

	full := filepath.Join(a.corrector.base, filepath.FromSlash(rel))
	mismatches, err := tags.Compare(full, fields)
	if err != nil {
		a.log.Warning(fmt.Sprintf("Cannot read tags of %s: %v", rel, err))
		return
	}
	for _, m := range mismatches {
		a.report.PushTag(a.qualify(rel), m.String())
		a.log.Report(fmt.Sprintf("Tag mismatch %s: %s", a.qualify(rel), m))
	}
}
