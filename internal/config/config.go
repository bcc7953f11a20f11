package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// ErrConfigurationMissing is matched by every *MissingError.
var ErrConfigurationMissing = errors.New("configuration missing")

// Lister kinds accepted in a profile.
const (
	ListerAuto       = ""
	ListerRcloneJSON = "rclone-json"
	ListerRcloneTree = "rclone-tree"
	ListerLocal      = "local"
	ListerS3         = "s3"
	ListerSFTP       = "sftp"
)

// Listers is every accepted explicit lister kind.
var Listers = []string{ListerRcloneJSON, ListerRcloneTree, ListerLocal, ListerS3, ListerSFTP} //nolint:gochecknoglobals // read-only table

// Config represents the linksync configuration file.
type Config struct {
	Profiles map[string]Profile `toml:"profiles"`
	Defaults DefaultsConfig     `toml:"defaults"`
	Theme    ThemeConfig        `toml:"theme"`
}

// DefaultsConfig holds values shared by every profile and flag defaults.
type DefaultsConfig struct {
	Profile *string `toml:"profile"`
	DryRun  *bool   `toml:"dry_run"`
	Log     *string `toml:"log"`
	Rclone  *string `toml:"rclone"`
}

// Profile is one remote-to-local mirror.
type Profile struct {
	DryRun       *bool       `toml:"dry_run"`
	Lister       string      `toml:"lister"`
	Remote       string      `toml:"remote"`
	Local        string      `toml:"local"`
	LinkPrefix   string      `toml:"link_prefix"`
	SourcePrefix string      `toml:"source_prefix"`
	Cron         string      `toml:"cron"`
	Rclone       string      `toml:"rclone"`
	Cookie       string      `toml:"cookie"`
	FilterFile   string      `toml:"filter_file"`
	Exclude      []string    `toml:"exclude"`
	Include      []string    `toml:"include"`
	RcloneArgs   []string    `toml:"rclone_args"`
	SFTP         SFTPConfig  `toml:"sftp"`
	S3           S3Config    `toml:"s3"`
	Probe        ProbeConfig `toml:"probe"`
}

// ProbeConfig tunes the mount refresh walk.
type ProbeConfig struct {
	Delay     time.Duration `toml:"delay"`
	MaxLevels int           `toml:"max_levels"`
	Disabled  bool          `toml:"disabled"`
}

// S3Config configures an S3 or S3-compatible remote.
type S3Config struct {
	Endpoint  string `toml:"endpoint"`
	Region    string `toml:"region"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	PathStyle bool   `toml:"path_style"`
}

// SFTPConfig configures an SSH remote.
type SFTPConfig struct {
	KeyFile        string        `toml:"key_file"`
	Password       string        `toml:"password"`
	KnownHostsFile string        `toml:"known_hosts"`
	Timeout        time.Duration `toml:"timeout"`
	InsecureHost   bool          `toml:"insecure_host"`
}

// ThemeConfig holds optional color overrides.
type ThemeConfig struct {
	Green  *string `toml:"green"`
	Yellow *string `toml:"yellow"`
	Red    *string `toml:"red"`
	Muted  *string `toml:"muted"`
	Bright *string `toml:"bright"`
}

// MissingError lists the settings a trigger needed but did not get.
type MissingError struct {
	Profile string
	Fields  []string
}

func (e *MissingError) Error() string {
	name := e.Profile
	if name == "" {
		name = "(unnamed)"
	}
	return fmt.Sprintf("profile %s: missing %s", name, strings.Join(e.Fields, ", "))
}

// Is lets errors.Is(err, ErrConfigurationMissing) match any MissingError.
func (*MissingError) Is(target error) bool { return target == ErrConfigurationMissing }

// Path returns the resolved path to the config file.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "linksync", "config.toml")
}

// Load reads the config file at path, or at the XDG path when path is
// empty. A missing XDG file yields a zero Config; a missing explicit file
// is an error.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = Path()
		if path == "" {
			return Config{}, nil
		}
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Write encodes cfg as TOML to path, creating parent directories.
func Write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	// Profiles may hold cookies and keys.
	return os.WriteFile(path, buf.Bytes(), 0o600)
}

// ProfileNames returns the configured profile names, sorted.
func (c Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Profile resolves a profile by name with defaults applied. An empty name
// selects defaults.profile, or the only profile if there is exactly one.
// With no profiles at all an empty Profile is returned for flags to fill.
func (c Config) Profile(name string) (Profile, error) {
	if name == "" && c.Defaults.Profile != nil {
		name = *c.Defaults.Profile
	}
	if name == "" {
		switch len(c.Profiles) {
		case 0:
			return c.applyDefaults(Profile{}), nil
		case 1:
			name = c.ProfileNames()[0]
		default:
			return Profile{}, fmt.Errorf("%w: several profiles configured (%s), choose one with --profile",
				ErrConfigurationMissing, strings.Join(c.ProfileNames(), ", "))
		}
	}
	p, ok := c.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: no profile named %q", ErrConfigurationMissing, name)
	}
	return c.applyDefaults(p), nil
}

func (c Config) applyDefaults(p Profile) Profile {
	if p.DryRun == nil && c.Defaults.DryRun != nil {
		v := *c.Defaults.DryRun
		p.DryRun = &v
	}
	if p.Rclone == "" && c.Defaults.Rclone != nil {
		p.Rclone = *c.Defaults.Rclone
	}
	return p
}

// IsDryRun reports the effective dry-run setting.
func (p Profile) IsDryRun() bool { return p.DryRun != nil && *p.DryRun }

// Validate checks the settings a sync pass needs. name is used in the
// error only.
func (p Profile) Validate(name string) error {
	var missing []string
	if p.Remote == "" {
		missing = append(missing, "remote")
	}
	if p.Local == "" {
		missing = append(missing, "local")
	}
	if p.LinkPrefix == "" {
		missing = append(missing, "link_prefix")
	}
	if len(missing) > 0 {
		return &MissingError{Profile: name, Fields: missing}
	}

	if p.Lister != ListerAuto && !slices.Contains(Listers, p.Lister) {
		return fmt.Errorf("profile %s: unknown lister %q (want one of %s)",
			name, p.Lister, strings.Join(Listers, ", "))
	}
	if !filepath.IsAbs(p.Local) {
		return fmt.Errorf("profile %s: local %q must be an absolute path", name, p.Local)
	}
	if p.Probe.Delay < 0 || p.Probe.MaxLevels < 0 {
		return fmt.Errorf("profile %s: probe delay and max_levels must not be negative", name)
	}
	return nil
}

// ValidateLink checks the extra settings the single-path link trigger needs.
func (p Profile) ValidateLink(name string) error {
	var missing []string
	if p.Local == "" {
		missing = append(missing, "local")
	}
	if p.LinkPrefix == "" {
		missing = append(missing, "link_prefix")
	}
	if p.SourcePrefix == "" {
		missing = append(missing, "source_prefix")
	}
	if len(missing) > 0 {
		return &MissingError{Profile: name, Fields: missing}
	}
	return nil
}
