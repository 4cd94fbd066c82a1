package audit

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bogem/id3v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/musiccheck/internal/config"
	"github.com/handiism/musiccheck/internal/model"
	"github.com/handiism/musiccheck/internal/report"
	"github.com/handiism/musiccheck/internal/scheme"
)

const (
	goodPath  = "Rock/Ария/[2002] Крещение огнём/01 - Штурмовик.mp3"
	shortPath = "Rock/Ария/01 - Штурмовик.mp3"
)

// recordLogger keeps every message as "CATEGORY: message".
type recordLogger struct {
	lines []string
}

func (l *recordLogger) Debug(m string)   { l.add("DEBUG", m) }
func (l *recordLogger) Warning(m string) { l.add("WARNING", m) }
func (l *recordLogger) Report(m string)  { l.add("REPORT", m) }
func (l *recordLogger) Request(m string) { l.add("REQUEST", m) }
func (l *recordLogger) Move(m string)    { l.add("MOVE", m) }
func (l *recordLogger) Error(m string)   { l.add("ERROR", m) }

func (l *recordLogger) add(category, m string) {
	l.lines = append(l.lines, category+": "+m)
}

func (l *recordLogger) count(category string) int {
	n := 0
	for _, line := range l.lines {
		if strings.HasPrefix(line, category+": ") {
			n++
		}
	}
	return n
}

// scriptedPrompter answers from a fixed list and remembers the defaults it
// was offered.
type scriptedPrompter struct {
	answers  []string
	err      error
	defaults []string
}

func (p *scriptedPrompter) Ask(defaultValue, message string) (string, error) {
	p.defaults = append(p.defaults, defaultValue)
	if len(p.answers) == 0 {
		if p.err != nil {
			return "", p.err
		}
		return defaultValue, nil
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return answer, nil
}

func touch(t *testing.T, root string, rels ...string) {
	t.Helper()
	for _, rel := range rels {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte("audio"), 0644))
	}
}

func mkdir(t *testing.T, root string, rels ...string) {
	t.Helper()
	for _, rel := range rels {
		require.NoError(t, os.MkdirAll(filepath.Join(root, filepath.FromSlash(rel)), 0755))
	}
}

type fixture struct {
	auditor *Auditor
	report  *report.Report
	db      *model.Database
	log     *recordLogger
}

func newFixture(t *testing.T, root string, modify func(s *config.Settings), prompter Prompter) *fixture {
	t.Helper()

	settings := config.DefaultSettings()
	settings.PlaylistDir = root
	settings.AudioExt = "mp3,flac"
	if modify != nil {
		modify(settings)
	}
	require.NoError(t, settings.Validate())

	compiled, err := scheme.Compile(settings.Scheme, settings.FieldTable())
	require.NoError(t, err)

	f := &fixture{
		report: report.New(),
		db:     model.NewDatabase(),
		log:    &recordLogger{},
	}
	f.auditor = New(settings, compiled, f.report, f.db, f.log, prompter)
	return f
}

func manualFix(s *config.Settings) { s.ManualFix = true }

func TestScan_ExtractsAndRecords(t *testing.T) {
	root := t.TempDir()
	touch(t, root, goodPath)

	f := newFixture(t, root, nil, nil)
	f.auditor.Scan(root)

	album, ok := f.db.Album("Ария", "2002 Крещение огнём")
	require.True(t, ok)
	assert.Equal(t, "Штурмовик", album.Tracks[1])
	assert.Equal(t, goodPath, album.Paths[1])
	assert.Equal(t, 2002, album.Year)
	assert.Equal(t, "Rock", album.Genre)
	assert.Equal(t, 1, album.Count)
	assert.Zero(t, f.report.Problems())
}

func TestParseAndValidate_Fields(t *testing.T) {
	f := newFixture(t, t.TempDir(), nil, nil)

	ok, final, fields := f.auditor.ParseAndValidate(goodPath)

	require.True(t, ok)
	assert.Equal(t, goodPath, final)
	assert.Equal(t, model.Fields{
		"genre":  "Rock",
		"artist": "Ария",
		"year":   "2002",
		"album":  "Крещение огнём",
		"track":  "01",
		"title":  "Штурмовик",
	}, fields)
	assert.Equal(t, 2002, fields.Year())
	assert.Equal(t, 1, fields.Track())
}

func TestParseAndValidate_DecomposedUnicode(t *testing.T) {
	f := newFixture(t, t.TempDir(), nil, nil)

	// "ё" written as "е" + combining diaeresis
	decomposed := "Rock/Ария/[2002] Крещение огне\u0308м/01 - Штурмовик.mp3"
	ok, _, fields := f.auditor.ParseAndValidate(decomposed)

	require.True(t, ok)
	assert.Equal(t, "Крещение огнём", fields["album"])
}

func TestScan_BadDepth(t *testing.T) {
	root := t.TempDir()
	touch(t, root, shortPath)

	f := newFixture(t, root, nil, nil)
	f.auditor.Scan(root)

	assert.Equal(t, []string{shortPath}, f.report.Depth())
	assert.Empty(t, f.report.FieldPaths(), "depth failure stops before field matching")
	assert.Zero(t, f.db.Len())
	assert.Equal(t, 1, f.log.count("WARNING"))
}

func TestScan_EmptyDirectoriesOnce(t *testing.T) {
	root := t.TempDir()
	mkdir(t, root, "Jazz", "Rock/Ария/[2002] Крещение огнём/scans")
	touch(t, root, goodPath)

	f := newFixture(t, root, nil, nil)
	f.auditor.Scan(root)

	assert.Equal(t, []string{"Jazz", "Rock/Ария/[2002] Крещение огнём/scans"}, f.report.Empty())
}

func TestScan_EmptyRoot(t *testing.T) {
	root := t.TempDir()

	f := newFixture(t, root, nil, nil)
	tree := f.auditor.Scan(root)

	assert.Equal(t, []string{"."}, f.report.Empty())
	assert.Empty(t, tree.Children)
}

func TestScan_BadExtensionNeverParsed(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "Rock/a.wav", "Rock/cover.JPG", "Rock/README")
	prompter := &scriptedPrompter{}

	f := newFixture(t, root, manualFix, prompter)
	f.auditor.Scan(root)

	assert.Equal(t, []string{"", "jpg", "wav"}, f.report.Extensions())
	assert.Equal(t, []string{"Rock/a.wav"}, f.report.ExtensionPaths("wav"))
	assert.Empty(t, f.report.Depth())
	assert.Empty(t, f.report.FieldPaths())
	assert.Empty(t, prompter.defaults)
}

func TestScan_UppercaseExtensionIsAudio(t *testing.T) {
	root := t.TempDir()
	path := strings.TrimSuffix(goodPath, ".mp3") + ".MP3"
	touch(t, root, path)

	f := newFixture(t, root, nil, nil)
	f.auditor.Scan(root)

	assert.Empty(t, f.report.Extensions())
	assert.Equal(t, 1, f.db.Len())
}

func TestScan_MissingFields(t *testing.T) {
	root := t.TempDir()
	bad := "Rock/Ария/2002 Крещение огнём/Штурмовик.mp3"
	touch(t, root, bad)

	f := newFixture(t, root, nil, nil)
	f.auditor.Scan(root)

	assert.Equal(t, []string{bad}, f.report.FieldPaths())
	assert.Equal(t, []string{"album", "title", "track", "year"}, f.report.Missing(bad))
	assert.Zero(t, f.db.Len())
}

func TestScan_Idempotent(t *testing.T) {
	root := t.TempDir()
	touch(t, root, goodPath, shortPath, "Rock/a.wav", "Pop/B/[1999] C/02 - D.flac")
	mkdir(t, root, "Jazz")

	first := newFixture(t, root, nil, nil)
	first.auditor.Scan(root)
	second := newFixture(t, root, nil, nil)
	second.auditor.Scan(root)

	assert.Equal(t, first.report.Render(), second.report.Render())
	assert.Equal(t, first.db, second.db)
	assert.Equal(t, first.db.Artists(), second.db.Artists())
}

func TestScan_Snapshot(t *testing.T) {
	root := t.TempDir()
	touch(t, root, goodPath, "Rock/a.wav")
	mkdir(t, root, "Jazz")

	f := newFixture(t, root, nil, nil)
	tree := f.auditor.Scan(root)

	require.Len(t, tree.Children, 2)
	assert.Equal(t, "Jazz", tree.Children[0].Name)
	rock := tree.Children[1]
	require.Len(t, rock.Children, 2)
	assert.Equal(t, "a.wav", rock.Children[0].Name, "byte order puts ASCII first")
	assert.False(t, rock.Children[0].Audio)
	assert.True(t, rock.Children[1].Dir)

	dirs, files, valid := tree.Count()
	assert.Equal(t, 5, dirs)
	assert.Equal(t, 2, files)
	assert.Equal(t, 1, valid)
}

func TestScan_SymlinkLoop(t *testing.T) {
	root := t.TempDir()
	touch(t, root, goodPath)
	require.NoError(t, os.Symlink(root, filepath.Join(root, "Rock", "loop")))

	f := newFixture(t, root, nil, nil)
	tree := f.auditor.Scan(root)

	assert.Equal(t, 1, f.db.Len())
	assert.NotNil(t, tree)
	assert.Contains(t, f.log.lines, "WARNING: Skip: Rock/loop links to . inside the collection")
}

func TestScan_SymlinkLoopOutsideRoot(t *testing.T) {
	root := t.TempDir()
	elsewhere := t.TempDir()
	touch(t, elsewhere, "Ария/[2002] Крещение огнём/01 - Штурмовик.mp3")
	require.NoError(t, os.Symlink(elsewhere, filepath.Join(elsewhere, "Ария", "loop")))
	require.NoError(t, os.Symlink(elsewhere, filepath.Join(root, "Metal")))

	f := newFixture(t, root, nil, nil)
	f.auditor.Scan(root)

	assert.Equal(t, 1, f.db.Len())
	assert.Contains(t, f.log.lines, "WARNING: Skip: symlink loop Metal/Ария/loop")
}

func TestScan_AliasSortedBeforeTarget(t *testing.T) {
	root := t.TempDir()
	touch(t, root, goodPath)
	require.NoError(t, os.Symlink(filepath.Join(root, "Rock", "Ария"), filepath.Join(root, "Rock", "Aria")))

	f := newFixture(t, root, nil, nil)
	tree := f.auditor.Scan(root)

	assert.Equal(t, []string{"Ария"}, f.db.Artists())
	album, ok := f.db.Album("Ария", "2002 Крещение огнём")
	require.True(t, ok)
	assert.Equal(t, goodPath, album.Paths[1])
	assert.Contains(t, f.log.lines, "WARNING: Skip: Rock/Aria links to Rock/Ария inside the collection")

	rock := tree.Children[0]
	require.Len(t, rock.Children, 2)
	assert.Equal(t, "Aria", rock.Children[0].Name)
	assert.Empty(t, rock.Children[0].Children)
	assert.NotEmpty(t, rock.Children[1].Children)
}

func TestScan_SiblingsSharingATargetOutsideRoot(t *testing.T) {
	root := t.TempDir()
	shared := t.TempDir()
	touch(t, shared, "Ария/[2002] Крещение огнём/01 - Штурмовик.mp3")
	require.NoError(t, os.Symlink(shared, filepath.Join(root, "Metal")))
	require.NoError(t, os.Symlink(shared, filepath.Join(root, "Rock")))

	f := newFixture(t, root, nil, nil)
	f.auditor.Scan(root)

	album, ok := f.db.Album("Ария", "2002 Крещение огнём")
	require.True(t, ok)
	assert.Equal(t, "Rock/Ария/[2002] Крещение огнём/01 - Штурмовик.mp3", album.Paths[1], "not a cycle, both are walked")
	assert.Zero(t, f.log.count("WARNING"))
}

func TestScan_SymlinkedDirectoryFollowed(t *testing.T) {
	root := t.TempDir()
	elsewhere := t.TempDir()
	touch(t, elsewhere, "Ария/[2002] Крещение огнём/01 - Штурмовик.mp3")
	mkdir(t, root, "Rock")
	require.NoError(t, os.Symlink(elsewhere, filepath.Join(root, "Metal")))

	f := newFixture(t, root, nil, nil)
	f.auditor.Scan(root)

	album, ok := f.db.Album("Ария", "2002 Крещение огнём")
	require.True(t, ok)
	assert.Equal(t, "Metal/Ария/[2002] Крещение огнём/01 - Штурмовик.mp3", album.Paths[1])
}

func TestRun_OtherDirectory(t *testing.T) {
	playlist := t.TempDir()
	other := t.TempDir()
	touch(t, playlist, goodPath)
	touch(t, other, "Pop/B/[1999] C/02 - D.flac", "Pop/x.wav")

	f := newFixture(t, playlist, func(s *config.Settings) { s.OtherDir = other }, nil)
	trees := f.auditor.Run()

	require.Len(t, trees, 2)
	assert.Equal(t, []string{"B", "Ария"}, f.db.Artists())
	assert.Equal(t, []string{filepath.ToSlash(other) + "/Pop/x.wav"}, f.report.ExtensionPaths("wav"))

	album, ok := f.db.Album("Ария", "2002 Крещение огнём")
	require.True(t, ok)
	assert.Equal(t, filepath.ToSlash(playlist)+"/"+goodPath, album.Paths[1])
}

func TestRun_SamePathInBothRoots(t *testing.T) {
	playlist := t.TempDir()
	other := t.TempDir()
	bad := "Rock/A/bad name/01 - T.mp3"
	for _, root := range []string{playlist, other} {
		touch(t, root, bad)
		mkdir(t, root, "Rock/E")
	}

	f := newFixture(t, playlist, func(s *config.Settings) { s.OtherDir = other }, nil)
	f.auditor.Run()

	p, o := filepath.ToSlash(playlist), filepath.ToSlash(other)
	assert.Equal(t, []string{p + "/" + bad, o + "/" + bad}, f.report.FieldPaths())
	assert.Equal(t, []string{p + "/Rock/E", o + "/Rock/E"}, f.report.Empty())
	assert.Equal(t, 4, f.report.Problems())
}

func TestScan_SingleRootPathsStayRelative(t *testing.T) {
	root := t.TempDir()
	touch(t, root, shortPath)

	f := newFixture(t, root, func(s *config.Settings) { s.OtherDir = t.TempDir() }, nil)
	f.auditor.Scan(root)

	assert.Equal(t, []string{shortPath}, f.report.Depth())
}

func TestManualFix_MovesAndRecords(t *testing.T) {
	root := t.TempDir()
	bad := "Rock/Ария/[2002] Крещение огнём/Штурмовик.mp3"
	touch(t, root, bad)
	prompter := &scriptedPrompter{answers: []string{goodPath}}

	f := newFixture(t, root, manualFix, prompter)
	tree := f.auditor.Scan(root)

	assert.Equal(t, []string{bad}, prompter.defaults, "prompt is pre-filled with the original path")
	assert.Equal(t, []string{bad}, f.report.FieldPaths())
	assert.Equal(t, []string{"title", "track"}, f.report.Missing(bad))

	album, ok := f.db.Album("Ария", "2002 Крещение огнём")
	require.True(t, ok)
	assert.Equal(t, goodPath, album.Paths[1])

	_, err := os.Stat(filepath.Join(root, filepath.FromSlash(goodPath)))
	assert.NoError(t, err, "file was moved")
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(bad)))
	assert.True(t, os.IsNotExist(err))

	file := tree.Children[0].Children[0].Children[0].Children[0]
	assert.Equal(t, goodPath, file.Fixed)
	assert.True(t, file.Valid)
	assert.Equal(t, 1, f.log.count("MOVE"))
}

func TestManualFix_LoopsUntilValid(t *testing.T) {
	root := t.TempDir()
	bad := "Rock/Ария/[2002] Крещение огнём/Штурмовик.mp3"
	stillBad := "Rock/Ария/[2002] Крещение огнём/1 Штурмовик.mp3"
	touch(t, root, bad)
	prompter := &scriptedPrompter{answers: []string{stillBad, goodPath}}

	f := newFixture(t, root, manualFix, prompter)
	ok, final, _ := f.auditor.ParseAndValidate(bad)

	assert.True(t, ok)
	assert.Equal(t, goodPath, final)
	assert.Equal(t, []string{bad, stillBad}, prompter.defaults)
	assert.Equal(t, []string{bad, stillBad}, f.report.FieldPaths())
}

func TestManualFix_Declined(t *testing.T) {
	root := t.TempDir()
	bad := "Rock/Ария/[2002] Крещение огнём/Штурмовик.mp3"
	touch(t, root, bad)
	prompter := &scriptedPrompter{}

	f := newFixture(t, root, manualFix, prompter)
	ok, final, _ := f.auditor.ParseAndValidate(bad)

	assert.False(t, ok)
	assert.Equal(t, bad, final)
	assert.Len(t, prompter.defaults, 1, "an unchanged answer is not asked again")
	assert.Zero(t, f.db.Len())
	_, err := os.Stat(filepath.Join(root, filepath.FromSlash(bad)))
	assert.NoError(t, err, "file left in place")
}

func TestManualFix_PrompterErrorStopsPrompting(t *testing.T) {
	root := t.TempDir()
	touch(t, root,
		"Rock/A/[2002] B/x.mp3",
		"Rock/A/[2002] B/y.mp3",
	)
	prompter := &scriptedPrompter{err: errors.New("prompt aborted")}

	f := newFixture(t, root, manualFix, prompter)
	f.auditor.Scan(root)

	assert.Len(t, prompter.defaults, 1)
	assert.Len(t, f.report.FieldPaths(), 2, "the walk goes on")
	assert.Equal(t, 1, f.log.count("ERROR"))
}

func TestManualFix_FailedMoveTrustsNewPath(t *testing.T) {
	root := t.TempDir()
	bad := "Rock/Ария/[2002] Крещение огнём/Штурмовик.mp3"
	touch(t, root, bad, goodPath)
	prompter := &scriptedPrompter{answers: []string{goodPath}}

	f := newFixture(t, root, manualFix, prompter)
	ok, final, _ := f.auditor.ParseAndValidate(bad)

	assert.True(t, ok)
	assert.Equal(t, goodPath, final)
	assert.Equal(t, 1, f.log.count("WARNING"))
	assert.Zero(t, f.log.count("MOVE"))
	_, err := os.Stat(filepath.Join(root, filepath.FromSlash(bad)))
	assert.NoError(t, err, "source still in place")
}

func TestManualFix_DepthOnlyIsNotPrompted(t *testing.T) {
	root := t.TempDir()
	deep := "Rock/Ария/[2002] Крещение огнём/01 - Штурмовик/bonus.mp3"
	touch(t, root, deep)
	prompter := &scriptedPrompter{answers: []string{goodPath}}

	f := newFixture(t, root, manualFix, prompter)
	ok, _, _ := f.auditor.ParseAndValidate(deep)

	assert.False(t, ok)
	assert.Empty(t, prompter.defaults)
	assert.Equal(t, []string{deep}, f.report.Depth())
	assert.Zero(t, f.db.Len())
}

func TestManualFix_DepthWithMissingFieldsIsPrompted(t *testing.T) {
	root := t.TempDir()
	touch(t, root, shortPath)
	prompter := &scriptedPrompter{answers: []string{goodPath}}

	f := newFixture(t, root, manualFix, prompter)
	ok, final, _ := f.auditor.ParseAndValidate(shortPath)

	assert.True(t, ok)
	assert.Equal(t, goodPath, final)
	assert.Equal(t, []string{shortPath}, f.report.Depth())
	assert.Equal(t, []string{shortPath}, f.report.FieldPaths())
}

func TestScan_CheckTags(t *testing.T) {
	root := t.TempDir()
	touch(t, root, goodPath)

	tag, err := id3v2.Open(filepath.Join(root, filepath.FromSlash(goodPath)), id3v2.Options{Parse: true})
	require.NoError(t, err)
	tag.SetArtist("Ария")
	tag.SetAlbum("Крещение огнём")
	tag.SetTitle("Штурмовик")
	tag.SetYear("2001")
	tag.SetGenre("Rock")
	tag.AddTextFrame(tag.CommonID("Track number/Position in set"), tag.DefaultEncoding(), "1/10")
	require.NoError(t, tag.Save())
	require.NoError(t, tag.Close())

	f := newFixture(t, root, func(s *config.Settings) { s.CheckTags = true }, nil)
	f.auditor.Scan(root)

	assert.Equal(t, []string{goodPath}, f.report.TagPaths())
	assert.Equal(t, []string{`year: tag "2001", path "2002"`}, f.report.TagMismatches(goodPath))
	assert.Contains(t, f.report.Render(), "Tag mismatches")
}
