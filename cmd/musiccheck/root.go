package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/handiism/musiccheck/internal/audit"
	"github.com/handiism/musiccheck/internal/config"
	ioutils "github.com/handiism/musiccheck/internal/io"
	"github.com/handiism/musiccheck/internal/logger"
	"github.com/handiism/musiccheck/internal/model"
	"github.com/handiism/musiccheck/internal/report"
	"github.com/handiism/musiccheck/internal/scheme"
	"github.com/handiism/musiccheck/internal/tui"
	"github.com/handiism/musiccheck/internal/watch"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// ErrRunAsRoot is returned when the process runs with root privileges.
var ErrRunAsRoot = errors.New("running as root is dangerous, please use an unprivileged user")

// ErrWatchWithFix is returned when watch mode is combined with manual fixing
// from any source: flag, config file or environment.
var ErrWatchWithFix = errors.New("--watch cannot be combined with manual fixing")

// geteuid is replaced in tests.
var geteuid = os.Geteuid

type options struct {
	configFile string
	envFile    string
	example    bool

	playlist  string
	other     string
	scheme    string
	audioExt  string
	logFile   string
	verbose   bool
	quiet     bool
	fix       bool
	checkTags bool
	watch     bool
}

// NewRootCommand creates the musiccheck command.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "musiccheck",
		Short: "Check a music collection against a folder naming scheme",
		Long: `musiccheck walks your music directory and checks every file against a
naming scheme such as "{genre}/{artist}/[{year}] {album}/{track} - {title}".

It reports files with a wrong number of subfolders, non-audio files, empty
directories and paths missing required fields. With --fix it asks for a
corrected path for every file missing fields and moves the file there.
With --watch it keeps running and checks again after every change.`,
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.playlist, "playlist", "p", "", "your main music directory (required)")
	f.StringVarP(&opts.other, "other", "o", "", "other directory with non-playlist music")
	f.StringVarP(&opts.scheme, "scheme", "s", config.DefaultSettings().Scheme, "scheme of your music folder")
	f.StringVarP(&opts.audioExt, "audio-ext", "a", config.DefaultSettings().AudioExt, "music file extensions, separated by comma")
	f.StringVarP(&opts.configFile, "config-file", "c", "", "read configuration from a JSON or YAML file")
	f.StringVar(&opts.envFile, "env-file", ".env", "read MUSICCHECK_* variables from this file if it exists")
	f.BoolVarP(&opts.example, "config-example", "e", false, "print an example config file to stdout")
	f.StringVarP(&opts.logFile, "log-file", "l", "", "copy log output to file")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose mode, more output")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "silent mode, errors only")
	f.BoolVar(&opts.fix, "fix", false, "ask for a corrected path for every file missing fields")
	f.BoolVar(&opts.checkTags, "check-tags", false, "compare MP3 and FLAC tags with the fields from the path")
	f.BoolVarP(&opts.watch, "watch", "w", false, "keep running and check again whenever the collection changes")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
	cmd.MarkFlagsMutuallyExclusive("watch", "fix")

	return cmd
}

func run(cmd *cobra.Command, opts *options) error {
	if opts.example {
		return config.Example(cmd.OutOrStdout())
	}

	if geteuid() == 0 {
		return ErrRunAsRoot
	}

	settings, err := loadSettings(cmd, opts)
	if err != nil {
		return err
	}
	if opts.watch && settings.ManualFix {
		return ErrWatchWithFix
	}

	compiled, err := scheme.Compile(settings.Scheme, settings.FieldTable())
	if err != nil {
		return err
	}

	log := logger.NewConsole(cmd.OutOrStdout(), cmd.ErrOrStderr(), logger.ParseMode(settings.Verbosity))
	if settings.LogFile != "" {
		if err := log.TeeFile(settings.LogFile); err != nil {
			return err
		}
	}
	defer log.Close()

	var prompter audit.Prompter
	if settings.ManualFix {
		unlock, err := lockCollections(settings)
		if err != nil {
			return err
		}
		defer unlock()
		prompter = newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	}

	out := cmd.OutOrStdout()
	runOnce := func() {
		log.Debug("Process starting...")
		check(out, settings, compiled, log, prompter)
	}
	runOnce()

	if !opts.watch {
		return nil
	}
	fmt.Fprintln(out, "\nWatching for changes, press Ctrl+C to stop")
	return watchCollections(cmd.Context(), settings, log, runOnce)
}

// check audits the collection once and prints the report.
func check(out io.Writer, settings *config.Settings, compiled *scheme.Compiled, log audit.Logger, prompter audit.Prompter) {
	rep := report.New()
	db := model.NewDatabase()
	trees := audit.New(settings, compiled, rep, db, log, prompter).Run()

	var files, valid int
	for _, tree := range trees {
		_, f, v := tree.Count()
		files += f
		valid += v
	}

	fmt.Fprintln(out)
	fmt.Fprint(out, rep.Render())
	fmt.Fprintf(out, "\n%d files, %d valid tracks, %d artists, %d problems\n",
		files, valid, len(db.Artists()), rep.Problems())
}

// lockCollections locks every root a fixing run may move files in.
func lockCollections(settings *config.Settings) (func(), error) {
	var locks []*ioutils.CollectionLock
	unlock := func() {
		for _, l := range locks {
			l.Unlock()
		}
	}

	for _, root := range []string{settings.PlaylistDir, settings.OtherDir} {
		if root == "" {
			continue
		}
		l, err := ioutils.NewCollectionLock(root)
		if err != nil {
			unlock()
			return nil, err
		}
		if len(locks) > 0 && locks[0].Path() == l.Path() {
			continue
		}
		if err := l.TryLock(); err != nil {
			unlock()
			return nil, err
		}
		locks = append(locks, l)
	}
	return unlock, nil
}

// watchCollections re-runs fn after every change until interrupted.
func watchCollections(ctx context.Context, settings *config.Settings, log *logger.Console, fn func()) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	roots := []string{settings.PlaylistDir}
	if settings.OtherDir != "" {
		roots = append(roots, settings.OtherDir)
	}
	w, err := watch.New(roots, log)
	if err != nil {
		return err
	}

	return w.Run(ctx, fn)
}

// loadSettings merges, from lowest to highest precedence: defaults, the
// config file, the environment and the flags set on the command line.
func loadSettings(cmd *cobra.Command, opts *options) (*config.Settings, error) {
	settings := config.DefaultSettings()
	if opts.configFile != "" {
		if _, err := os.Stat(opts.configFile); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		var err error
		settings, err = config.Load(opts.configFile)
		if err != nil {
			return nil, err
		}
	}

	if err := settings.LoadEnv(opts.envFile); err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if f.Changed("playlist") {
		settings.PlaylistDir = opts.playlist
	}
	if f.Changed("other") {
		settings.OtherDir = opts.other
	}
	if f.Changed("scheme") {
		settings.Scheme = opts.scheme
	}
	if f.Changed("audio-ext") {
		settings.AudioExt = opts.audioExt
	}
	if f.Changed("log-file") {
		settings.LogFile = opts.logFile
	}
	if f.Changed("fix") {
		settings.ManualFix = opts.fix
	}
	if f.Changed("check-tags") {
		settings.CheckTags = opts.checkTags
	}
	if opts.verbose {
		settings.Verbosity = config.VerbosityVerbose
	}
	if opts.quiet {
		settings.Verbosity = config.VerbosityQuiet
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// newPrompter returns the Bubble Tea prompter on a terminal and the line
// prompter otherwise.
func newPrompter(in io.Reader, out io.Writer) audit.Prompter {
	if f, ok := in.(*os.File); ok && tui.IsTerminal(f) {
		return tui.NewPrompter(f, out)
	}
	return tui.NewLinePrompter(in, out)
}
