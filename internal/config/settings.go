package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/handiism/musiccheck/internal/scheme"
)

// Verbosity levels accepted by Settings.Verbosity.
const (
	VerbosityQuiet   = "quiet"
	VerbosityNormal  = "normal"
	VerbosityVerbose = "verbose"
)

// EnvPrefix prefixes every environment variable read by LoadEnv.
const EnvPrefix = "MUSICCHECK_"

var (
	// ErrNoPlaylist is returned by Validate when no playlist directory is set.
	ErrNoPlaylist = errors.New("playlist directory is not set")

	// ErrNotDirectory is returned by Validate when a configured directory
	// does not exist or is not a directory.
	ErrNotDirectory = errors.New("not a directory")
)

// Settings holds all configuration options of an audit run.
type Settings struct {
	// Collection roots
	PlaylistDir string `json:"playlist" yaml:"playlist"`
	OtherDir    string `json:"other,omitempty" yaml:"other,omitempty"`

	// Naming scheme
	Scheme   string            `json:"scheme" yaml:"scheme"`
	AudioExt string            `json:"audio_ext" yaml:"audio_ext"` // comma-separated
	Fields   scheme.FieldTable `json:"fields,omitempty" yaml:"fields,omitempty"`

	// Behaviour
	ManualFix bool `json:"manual_fix" yaml:"manual_fix"`
	CheckTags bool `json:"check_tags" yaml:"check_tags"`

	// Output
	LogFile   string `json:"log_file,omitempty" yaml:"log_file,omitempty"`
	Verbosity string `json:"verbosity" yaml:"verbosity"` // quiet, normal, verbose

	// AudioExtensions is AudioExt split, lower-cased and stripped of dots.
	// It is filled by Validate.
	AudioExtensions []string `json:"-" yaml:"-"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		Scheme:    "{genre}/{artist}/[{year}] {album}/{track} - {title}",
		AudioExt:  "mp3,flac",
		Verbosity: VerbosityNormal,
	}
}

// Load reads settings from a JSON or YAML file, chosen by extension.
// A missing file yields the defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, settings)
	default:
		err = json.Unmarshal(data, settings)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return settings, nil
}

// Save writes settings to a JSON or YAML file, chosen by extension.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(s)
	default:
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// LoadEnv overrides settings with MUSICCHECK_* variables. Values from the
// given .env files are used unless the process environment sets the same
// variable. Missing .env files are ignored.
func (s *Settings) LoadEnv(envFiles ...string) error {
	vars := make(map[string]string)
	for _, file := range envFiles {
		fileVars, err := godotenv.Read(file)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("read %s: %w", file, err)
		}
		for k, v := range fileVars {
			vars[k] = v
		}
	}

	lookup := func(name string) (string, bool) {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			return v, true
		}
		v, ok := vars[EnvPrefix+name]
		return v, ok
	}

	strVars := map[string]*string{
		"PLAYLIST":  &s.PlaylistDir,
		"OTHER":     &s.OtherDir,
		"SCHEME":    &s.Scheme,
		"AUDIO_EXT": &s.AudioExt,
		"LOG_FILE":  &s.LogFile,
		"VERBOSITY": &s.Verbosity,
	}
	for name, dst := range strVars {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}

	boolVars := map[string]*bool{
		"MANUAL_FIX": &s.ManualFix,
		"CHECK_TAGS": &s.CheckTags,
	}
	for name, dst := range boolVars {
		v, ok := lookup(name)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = b
	}

	return nil
}

// FieldTable returns the default field table with the configured fields
// merged over it.
func (s *Settings) FieldTable() scheme.FieldTable {
	return scheme.DefaultFields().Merge(s.Fields)
}

// Validate checks the collection roots and normalizes the extension list.
// It must be called before the settings are handed to an audit.
func (s *Settings) Validate() error {
	if s.PlaylistDir == "" {
		return ErrNoPlaylist
	}
	if err := checkDir(s.PlaylistDir); err != nil {
		return fmt.Errorf("playlist folder %q: %w", s.PlaylistDir, err)
	}
	if s.OtherDir != "" {
		if err := checkDir(s.OtherDir); err != nil {
			return fmt.Errorf("other folder %q: %w", s.OtherDir, err)
		}
	}

	switch s.Verbosity {
	case "":
		s.Verbosity = VerbosityNormal
	case VerbosityQuiet, VerbosityNormal, VerbosityVerbose:
	default:
		return fmt.Errorf("unknown verbosity %q", s.Verbosity)
	}

	s.AudioExtensions = SplitExtensions(s.AudioExt)
	if len(s.AudioExtensions) == 0 {
		return fmt.Errorf("no audio extensions configured")
	}

	return nil
}

// SplitExtensions turns "MP3, .flac" into ["mp3", "flac"].
func SplitExtensions(list string) []string {
	var exts []string
	for _, ext := range strings.Split(list, ",") {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			exts = append(exts, ext)
		}
	}
	return exts
}

// Example writes an example YAML config with the default values.
func Example(w io.Writer) error {
	s := DefaultSettings()
	s.PlaylistDir = "/path/to/music"
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return err
	}
	return enc.Close()
}

func checkDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotDirectory
		}
		return err
	}
	if !info.IsDir() {
		return ErrNotDirectory
	}
	return nil
}
