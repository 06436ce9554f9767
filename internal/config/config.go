package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the top-level configuration for a brop run. Target and
// the Dump fields have command-line flag counterparts on the run/dump
// subcommands, and a flag that is explicitly set overrides the value
// here; the other fields have no flags.
type Config struct {
	// Target is the "host:port" the session connects to.
	Target string `mapstructure:"target"`

	LogLevel string `mapstructure:"log_level"`
	LogDir   string `mapstructure:"log_dir"`

	// ProbeTimeoutMS is the configured probe read timeout. It is loaded
	// and defaulted here only; the probe uses the fixed
	// oracle.ProbeTimeout and does not read this value.
	ProbeTimeoutMS int `mapstructure:"probe_timeout_ms"`

	// ReadBufferSize is the configured probe read-buffer size. It is
	// loaded and defaulted here only; the probe uses the fixed
	// cluster.OverflowBufferSize and does not read this value.
	ReadBufferSize int `mapstructure:"read_buffer_size"`

	// MaxGadgetSearchSize is the configured bound of the gadget sweep
	// (C8). It is loaded and defaulted here only; the sweep uses the
	// fixed session.MaxGadgetSearchSize and does not read this value.
	MaxGadgetSearchSize int `mapstructure:"max_gadget_search_size"`

	// Dump configures the binary-leak stage run by "brop dump".
	Dump DumpConfig `mapstructure:"dump"`
}

// DumpConfig configures the C13 binary-leak stage.
type DumpConfig struct {
	// OutputPath is where leaked bytes get written.
	OutputPath string `mapstructure:"output_path"`

	// Length is how many bytes to leak per successful call.
	Length int `mapstructure:"length"`

	// SocketRangeStart/End bound the file-descriptor brute force
	// FindWriteSocket runs to locate the client's own socket.
	SocketRangeStart uint64 `mapstructure:"socket_range_start"`
	SocketRangeEnd   uint64 `mapstructure:"socket_range_end"`
}

// envVarPattern matches environment variable placeholders: ${VAR_NAME} or $VAR_NAME
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// resolveEnvVars replaces environment variable placeholders in a string with their values.
// Supports two formats:
//   - ${VAR_NAME}: Braced format
//   - $VAR_NAME: Simple format (must start with letter or underscore)
//
// If an environment variable is not set, it is left as-is in the string.
func resolveEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match
		if strings.HasPrefix(match, "${") && strings.HasSuffix(match, "}") {
			varName = match[2 : len(match)-1]
		} else if strings.HasPrefix(match, "$") {
			varName = match[1:]
		}

		if value, ok := os.LookupEnv(varName); ok {
			return value
		}
		return match
	})
}

// LoadEnvFromDotEnv loads environment variables from a .env file in the specified directory.
// The .env file should contain KEY=value pairs, one per line.
// Lines starting with # are treated as comments and ignored.
func LoadEnvFromDotEnv(dir string) error {
	envPath := filepath.Join(dir, ".env")

	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(envPath)
	if err != nil {
		return fmt.Errorf("failed to read .env file: %w", err)
	}

	lines := strings.Split(string(data), "\n")
	for lineNum, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		idx := strings.Index(line, "=")
		if idx < 0 {
			return fmt.Errorf("invalid line in .env file at line %d: missing '='", lineNum+1)
		}

		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])

		if strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") {
			value = value[1 : len(value)-1]
		} else if strings.HasPrefix(value, "'") && strings.HasSuffix(value, "'") {
			value = value[1 : len(value)-1]
		}

		if _, exists := os.LookupEnv(key); !exists {
			os.Setenv(key, value)
		}
	}

	return nil
}

// LoadEnvFromDotEnvRecursive searches for a .env file in startDir and its
// parents (and, failing that, the working directory's ancestry), so tests
// run from nested package directories still pick it up.
func LoadEnvFromDotEnvRecursive(startDir string) error {
	dir := startDir
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			return LoadEnvFromDotEnv(dir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	wd, _ := os.Getwd()
	for i := 0; i < 10; i++ {
		envPath := filepath.Join(wd, ".env")
		if _, err := os.Stat(envPath); err == nil {
			return LoadEnvFromDotEnv(wd)
		}
		parent := filepath.Dir(wd)
		if parent == wd {
			break
		}
		wd = parent
	}

	return nil
}

// applyEnvResolution resolves environment variable placeholders across
// every string value viper has loaded.
func applyEnvResolution(v *viper.Viper) {
	settings := v.AllSettings()
	resolveInMap(settings)
	// AllSettings returns a copy, so the resolved values are written back.
	for k, val := range settings {
		v.Set(k, val)
	}
}

func resolveInMap(m map[string]interface{}) {
	for k, v := range m {
		switch val := v.(type) {
		case string:
			resolved := resolveEnvVars(val)
			if resolved != val {
				m[k] = resolved
			}
		case map[string]interface{}:
			resolveInMap(val)
		case []interface{}:
			resolveInSlice(val)
		}
	}
}

func resolveInSlice(s []interface{}) {
	for i, v := range s {
		switch val := v.(type) {
		case string:
			s[i] = resolveEnvVars(val)
		case map[string]interface{}:
			resolveInMap(val)
		}
	}
}

// Load reads configFileName (without extension) from the "configs"
// directory (or its nearest ancestor, to work from test packages) and
// unmarshals its top-level "config" object into result.
func Load(configFileName string, result interface{}) error {
	v := viper.New()
	v.SetConfigName(configFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath("configs")
	v.AddConfigPath("../configs")
	v.AddConfigPath("../../configs")

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	applyEnvResolution(v)

	if v.IsSet("config") {
		if err := v.UnmarshalKey("config", result); err != nil {
			return fmt.Errorf("failed to unmarshal config data: %w", err)
		}
		return nil
	}

	if err := v.Unmarshal(result); err != nil {
		return fmt.Errorf("failed to unmarshal config data: %w", err)
	}
	return nil
}

// LoadConfig loads configs/config.yaml (searching parent directories the
// way Load does), applies defaults for anything left unset, and returns
// the result. A missing config file is not an error: brop is usable
// from flags alone.
func LoadConfig() (*Config, error) {
	cfg := defaultConfig()

	if err := LoadEnvFromDotEnvRecursive("."); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if err := Load("config", &cfg); err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		// viper wraps the underlying error; a missing file isn't fatal,
		// anything else is.
		if strings.Contains(err.Error(), "Not Found") {
			return &cfg, nil
		}
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		LogLevel:            "info",
		LogDir:               "logs",
		ProbeTimeoutMS:       1000,
		ReadBufferSize:       200,
		MaxGadgetSearchSize:  0x2800,
		Dump: DumpConfig{
			OutputPath:       "leak.bin",
			Length:           0x3000,
			SocketRangeStart: 4,
			SocketRangeEnd:   1028,
		},
	}
}

func applyDefaults(cfg *Config) {
	def := defaultConfig()
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
	if cfg.LogDir == "" {
		cfg.LogDir = def.LogDir
	}
	if cfg.ProbeTimeoutMS == 0 {
		cfg.ProbeTimeoutMS = def.ProbeTimeoutMS
	}
	if cfg.ReadBufferSize == 0 {
		cfg.ReadBufferSize = def.ReadBufferSize
	}
	if cfg.MaxGadgetSearchSize == 0 {
		cfg.MaxGadgetSearchSize = def.MaxGadgetSearchSize
	}
	if cfg.Dump.OutputPath == "" {
		cfg.Dump.OutputPath = def.Dump.OutputPath
	}
	if cfg.Dump.Length == 0 {
		cfg.Dump.Length = def.Dump.Length
	}
	if cfg.Dump.SocketRangeEnd == 0 {
		cfg.Dump.SocketRangeStart = def.Dump.SocketRangeStart
		cfg.Dump.SocketRangeEnd = def.Dump.SocketRangeEnd
	}
}
