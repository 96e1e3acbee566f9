package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"github.com/samber/lo"

	"drivesync/internal/models"
)

const DefaultRemotePrefix = "*"

var (
	ErrInvalidSyncMode = errors.New("invalid sync mode")
	ErrMalformedJob    = errors.New("malformed sync job")
	ErrNoJobs          = errors.New("no sync jobs configured")
)

// Config is the validated, fully resolved configuration for one run.
type Config struct {
	Run           RunConfig
	Logging       LoggingConfig
	Notifications NotificationsConfig
	Jobs          []models.SyncJob

	// LoadedAt is the run timestamp used for $datetime{} substitution.
	LoadedAt time.Time
}

type RunConfig struct {
	SyncMode            models.SyncMode
	Args                []string
	OutputFile          string
	ExtendedDriveSearch bool
	OnFailure           models.FailurePolicy
	StrictLabels        bool
	RemotePrefix        string
}

type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

type NotificationsConfig struct {
	Pushover PushoverConfig `yaml:"pushover" toml:"pushover"`
}

type PushoverConfig struct {
	Token    string `yaml:"token" toml:"token"`
	User     string `yaml:"user" toml:"user"`
	Enabled  bool   `yaml:"enabled" toml:"enabled"`
	Priority int    `yaml:"priority" toml:"priority"`
	Device   string `yaml:"device" toml:"device"`
}

// fileConfig mirrors the on-disk document. Argument lists are kept as the
// single space separated strings users write and split during resolve.
type fileConfig struct {
	Config        runSection          `yaml:"config" toml:"config"`
	Logging       LoggingConfig       `yaml:"logging" toml:"logging"`
	Notifications NotificationsConfig `yaml:"notifications" toml:"notifications"`
	Folders       []folderSection     `yaml:"folders" toml:"folders"`
}

type runSection struct {
	SyncMode            string `yaml:"sync_mode" toml:"sync_mode"`
	Arguments           string `yaml:"arguments" toml:"arguments"`
	OutputFile          string `yaml:"output_file" toml:"output_file"`
	ExtendedDriveSearch bool   `yaml:"extended_drive_search" toml:"extended_drive_search"`
	OnFailure           string `yaml:"on_failure" toml:"on_failure"`
	StrictLabels        bool   `yaml:"strict_labels" toml:"strict_labels"`
	RemotePrefix        string `yaml:"remote_prefix" toml:"remote_prefix"`
}

type folderSection struct {
	ID            string        `yaml:"id" toml:"id"`
	Path          *string       `yaml:"path" toml:"path"`
	Drives        []string      `yaml:"drives" toml:"drives"`
	Paths         []pathSection `yaml:"paths" toml:"paths"`
	Arguments     string        `yaml:"arguments" toml:"arguments"`
	OverwriteMode string        `yaml:"overwrite_mode" toml:"overwrite_mode"`
}

type pathSection struct {
	Drive     string `yaml:"drive" toml:"drive"`
	Path      *string `yaml:"path" toml:"path"`
	Arguments string `yaml:"arguments" toml:"arguments"`
}

// Load reads, expands and validates the configuration at configPath.
// now is rendered into every $datetime{} placeholder exactly once.
func Load(configPath string, now time.Time) (*Config, error) {
	configPath, err := homedir.Expand(strings.TrimSpace(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to expand config path: %w", err)
	}
	if configPath == "" {
		return nil, errors.New("config path is empty")
	}

	if err := loadDotEnv(filepath.Dir(configPath)); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	raw, err := decode(configPath, string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg, err := raw.resolve(now)
	if err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func decode(configPath, content string) (*fileConfig, error) {
	var raw fileConfig
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".toml":
		if err := toml.Unmarshal([]byte(content), &raw); err != nil {
			return nil, err
		}
	default:
		if err := yaml.Unmarshal([]byte(content), &raw); err != nil {
			return nil, err
		}
	}
	return &raw, nil
}

// loadDotEnv imports a .env file sitting next to the config. Variables that
// are already set in the environment are left untouched.
func loadDotEnv(dir string) error {
	envPath := filepath.Join(dir, ".env")
	if _, err := os.Stat(envPath); err != nil {
		return nil
	}
	if err := godotenv.Load(envPath); err != nil {
		return fmt.Errorf("failed to load %s: %w", envPath, err)
	}
	return nil
}

// envRefRe matches ${VAR} references in credential fields.
var envRefRe = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandSecret substitutes ${VAR} references from the environment. It is
// applied to Pushover credentials only; rclone arguments and paths are
// passed through untouched.
func expandSecret(s string) string {
	return envRefRe.ReplaceAllStringFunc(s, func(ref string) string {
		return os.Getenv(envRefRe.FindStringSubmatch(ref)[1])
	})
}

func (f *fileConfig) resolve(now time.Time) (*Config, error) {
	mode, err := models.ParseSyncMode(f.Config.SyncMode)
	if err != nil {
		return nil, fmt.Errorf("%w %q (expected copy or sync)", ErrInvalidSyncMode, f.Config.SyncMode)
	}

	onFailure, err := parseFailurePolicy(f.Config.OnFailure)
	if err != nil {
		return nil, err
	}

	outputFile := strings.TrimSpace(f.Config.OutputFile)
	if outputFile != "" {
		outputFile = ExpandDateTime(outputFile, now)
		if outputFile, err = homedir.Expand(outputFile); err != nil {
			return nil, fmt.Errorf("failed to expand output_file: %w", err)
		}
	}

	remotePrefix := f.Config.RemotePrefix
	if remotePrefix == "" {
		remotePrefix = DefaultRemotePrefix
	}

	notifications := f.Notifications
	notifications.Pushover.Token = expandSecret(notifications.Pushover.Token)
	notifications.Pushover.User = expandSecret(notifications.Pushover.User)

	cfg := &Config{
		Run: RunConfig{
			SyncMode:            mode,
			Args:                expandArgs(SplitArgs(f.Config.Arguments), now),
			OutputFile:          outputFile,
			ExtendedDriveSearch: f.Config.ExtendedDriveSearch,
			OnFailure:           onFailure,
			StrictLabels:        f.Config.StrictLabels,
			RemotePrefix:        remotePrefix,
		},
		Logging:       f.Logging,
		Notifications: notifications,
		LoadedAt:      now,
	}

	if len(f.Folders) == 0 {
		return nil, ErrNoJobs
	}

	seen := make(map[string]bool, len(f.Folders))
	for i, folder := range f.Folders {
		job, err := folder.resolve(now)
		if err != nil {
			return nil, fmt.Errorf("folders[%d]: %w", i, err)
		}
		if seen[job.ID] {
			return nil, fmt.Errorf("folders[%d]: %w: duplicate id %q", i, ErrMalformedJob, job.ID)
		}
		seen[job.ID] = true
		cfg.Jobs = append(cfg.Jobs, job)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (f *folderSection) resolve(now time.Time) (models.SyncJob, error) {
	id := strings.TrimSpace(f.ID)
	if id == "" {
		return models.SyncJob{}, fmt.Errorf("%w: missing id", ErrMalformedJob)
	}

	hasShared := len(f.Drives) > 0
	hasExplicit := len(f.Paths) > 0
	switch {
	case hasShared && hasExplicit:
		return models.SyncJob{}, fmt.Errorf("%w: job %q declares both drives and paths", ErrMalformedJob, id)
	case !hasShared && !hasExplicit:
		return models.SyncJob{}, fmt.Errorf("%w: job %q declares neither path+drives nor paths", ErrMalformedJob, id)
	}

	job := models.SyncJob{
		ID:   id,
		Args: expandArgs(SplitArgs(f.Arguments), now),
	}

	if mode := strings.TrimSpace(f.OverwriteMode); mode != "" {
		parsed, err := models.ParseSyncMode(mode)
		if err != nil {
			return models.SyncJob{}, fmt.Errorf("%w %q in overwrite_mode of job %q", ErrInvalidSyncMode, mode, id)
		}
		job.OverwriteMode = parsed
	}

	if hasShared {
		if f.Path == nil {
			return models.SyncJob{}, fmt.Errorf("%w: job %q lists drives without a path", ErrMalformedJob, id)
		}
		job.Path = *f.Path
		for _, drive := range f.Drives {
			drive = strings.TrimSpace(drive)
			if drive == "" {
				return models.SyncJob{}, fmt.Errorf("%w: job %q has an empty drive label", ErrMalformedJob, id)
			}
			job.Drives = append(job.Drives, drive)
		}
		return job, nil
	}

	for i, p := range f.Paths {
		drive := strings.TrimSpace(p.Drive)
		if drive == "" {
			return models.SyncJob{}, fmt.Errorf("%w: job %q paths[%d] is missing its drive", ErrMalformedJob, id, i)
		}
		if p.Path == nil {
			return models.SyncJob{}, fmt.Errorf("%w: job %q paths[%d] is missing its path", ErrMalformedJob, id, i)
		}
		job.Paths = append(job.Paths, models.PathEntry{
			Drive: drive,
			Path:  *p.Path,
			Args:  expandArgs(SplitArgs(p.Arguments), now),
		})
	}
	return job, nil
}

func (c *Config) validate() error {
	if c.Notifications.Pushover.Enabled {
		if c.Notifications.Pushover.Token == "" || strings.HasPrefix(c.Notifications.Pushover.Token, "${") {
			return fmt.Errorf("pushover token is required when notifications are enabled")
		}
		if c.Notifications.Pushover.User == "" || strings.HasPrefix(c.Notifications.Pushover.User, "${") {
			return fmt.Errorf("pushover user is required when notifications are enabled")
		}
	}

	// Emergency (2) messages need retry/expire parameters that drivesync does not send.
	if p := c.Notifications.Pushover.Priority; p < -2 || p > 1 {
		return fmt.Errorf("invalid pushover priority %d (expected -2 to 1)", p)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level %q", c.Logging.Level)
	}

	return nil
}

func parseFailurePolicy(s string) (models.FailurePolicy, error) {
	switch policy := models.FailurePolicy(strings.TrimSpace(s)); policy {
	case "":
		return models.FailurePolicyAbort, nil
	case models.FailurePolicyAbort, models.FailurePolicyContinue:
		return policy, nil
	default:
		return "", fmt.Errorf("invalid on_failure %q (expected abort or continue)", s)
	}
}

// SplitArgs splits an argument string on spaces. Blank input yields no
// arguments at all rather than one empty token, and runs of spaces do not
// produce empty arguments. Tabs and quotes are not interpreted.
func SplitArgs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return lo.Compact(strings.Split(s, " "))
}

func expandArgs(args []string, now time.Time) []string {
	for i, arg := range args {
		args[i] = ExpandDateTime(arg, now)
	}
	return args
}
