package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/loykin/procguard/internal/lister"
	"github.com/loykin/procguard/internal/logger"
)

// Built-in defaults. Running with no config file and no PROCGUARD_*
// variables guards the group assistant exactly as deployed.
const (
	DefaultName      = "assistant"
	DefaultSignature = "/srv/dims/robots/assistant.py"
	DefaultCommand   = "python3 -u /srv/dims/robots/assistant.py"
	DefaultLogDir    = "/var/log/dims"
	DefaultLogPrefix = "assistant"

	EnvPrefix = "PROCGUARD"
)

// FileConfig represents the TOML structure.
type FileConfig struct {
	Name      string        `toml:"name" mapstructure:"name"`
	Signature string        `toml:"signature" mapstructure:"signature"`
	Command   string        `toml:"command" mapstructure:"command"`
	WorkDir   string        `toml:"work_dir" mapstructure:"work_dir"`
	Env       []string      `toml:"env" mapstructure:"env"`
	EnvFiles  []string      `toml:"env_files" mapstructure:"env_files"`
	LogDir    string        `toml:"log_dir" mapstructure:"log_dir"`
	LogPrefix string        `toml:"log_prefix" mapstructure:"log_prefix"`
	Lister    string        `toml:"lister" mapstructure:"lister"`
	Log       LogConfig     `toml:"log" mapstructure:"log"`
	History   HistoryConfig `toml:"history" mapstructure:"history"`
	Metrics   MetricsConfig `toml:"metrics" mapstructure:"metrics"`
}

// LogConfig configures the guard's own diagnostics.
type LogConfig struct {
	File       string `toml:"file" mapstructure:"file"`
	Level      string `toml:"level" mapstructure:"level"`
	MaxSizeMB  int    `toml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool   `toml:"compress" mapstructure:"compress"`
}

// HistoryConfig selects an optional audit sink by DSN; empty disables it.
type HistoryConfig struct {
	DSN string `toml:"dsn" mapstructure:"dsn"`
}

// MetricsConfig names a node_exporter textfile; empty disables metrics.
type MetricsConfig struct {
	Textfile string `toml:"textfile" mapstructure:"textfile"`
}

// Logger converts LogConfig into logger.Config.
func (l LogConfig) Logger() logger.Config {
	return logger.Config{
		File:       l.File,
		Level:      l.Level,
		MaxSizeMB:  l.MaxSizeMB,
		MaxBackups: l.MaxBackups,
		MaxAgeDays: l.MaxAgeDays,
		Compress:   l.Compress,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("name", DefaultName)
	v.SetDefault("signature", DefaultSignature)
	v.SetDefault("command", DefaultCommand)
	v.SetDefault("work_dir", "")
	v.SetDefault("env", []string{})
	v.SetDefault("env_files", []string{})
	v.SetDefault("log_dir", DefaultLogDir)
	v.SetDefault("log_prefix", DefaultLogPrefix)
	v.SetDefault("lister", lister.KindGopsutil)
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size_mb", logger.DefaultMaxSizeMB)
	v.SetDefault("log.max_backups", logger.DefaultMaxBackups)
	v.SetDefault("log.max_age_days", logger.DefaultMaxAgeDays)
	v.SetDefault("log.compress", false)
	v.SetDefault("history.dsn", "")
	v.SetDefault("metrics.textfile", "")
}

// Load reads defaults, then the TOML file at path (optional), then
// PROCGUARD_* environment variables, and validates the result.
func Load(path string) (*FileConfig, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	var fc FileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := fc.Validate(); err != nil {
		return nil, err
	}
	return &fc, nil
}

// Validate rejects configurations the guard cannot act on.
func (fc *FileConfig) Validate() error {
	var errs []error
	if strings.TrimSpace(fc.Signature) == "" {
		errs = append(errs, errors.New("signature must not be empty"))
	}
	if strings.TrimSpace(fc.Command) == "" {
		errs = append(errs, errors.New("command must not be empty"))
	}
	if strings.TrimSpace(fc.LogDir) == "" {
		errs = append(errs, errors.New("log_dir must not be empty"))
	}
	if strings.TrimSpace(fc.LogPrefix) == "" || strings.ContainsRune(fc.LogPrefix, os.PathSeparator) {
		errs = append(errs, fmt.Errorf("invalid log_prefix %q", fc.LogPrefix))
	}
	if _, err := lister.New(fc.Lister); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ChildEnv merges env_files in order, then the env list, into KEY=VALUE
// entries for the launched process. Later entries win.
func (fc *FileConfig) ChildEnv() ([]string, error) {
	m := make(map[string]string)
	var order []string
	set := func(k, v string) {
		if _, ok := m[k]; !ok {
			order = append(order, k)
		}
		m[k] = v
	}
	for _, p := range fc.EnvFiles {
		pairs, err := loadEnvFile(p)
		if err != nil {
			return nil, err
		}
		for _, kv := range pairs {
			set(kv[0], kv[1])
		}
	}
	for _, kv := range fc.Env {
		if i := strings.IndexByte(kv, '='); i > 0 {
			set(kv[:i], kv[i+1:])
		}
	}
	out := make([]string, 0, len(order))
	for _, k := range order {
		out = append(out, k+"="+m[k])
	}
	return out, nil
}

// loadEnvFile parses a simple .env file with KEY=VALUE lines (no export, no quotes).
// Lines starting with # are ignored.
func loadEnvFile(path string) ([][2]string, error) {
	clean := filepath.Clean(path)
	b, err := os.ReadFile(clean)
	if err != nil {
		return nil, fmt.Errorf("read env file: %w", err)
	}
	var out [][2]string
	for _, line := range strings.Split(string(b), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if i := strings.IndexByte(line, '='); i > 0 {
			out = append(out, [2]string{strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:])})
		}
	}
	return out, nil
}
