package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const EnvPrefix = "WFQ_"

// Resolve loads the config file when configPath is set and layers WFQ_*
// environment overrides on top. source names where settings came from.
func Resolve(configPath string) (Settings, string, error) {
	var base Settings
	source := ""
	if strings.TrimSpace(configPath) != "" {
		cfg, err := Load(configPath)
		if err != nil {
			return Settings{}, "", err
		}
		base = cfg.Settings
		source = configPath
	}
	env, ok, err := LoadFromEnv(EnvPrefix)
	if err != nil {
		return Settings{}, "", err
	}
	if ok {
		base = Merge(base, env)
		if source == "" {
			source = "env://" + EnvPrefix + "*"
		} else {
			source += "+env://" + EnvPrefix + "*"
		}
	}
	return base, source, nil
}

// LoadFromEnv reads settings from environment variables with the given prefix,
// e.g. WFQ_EXTENSIONS=.txt,.md and WFQ_JOBS=8.
func LoadFromEnv(prefix string) (Settings, bool, error) {
	s := Settings{}
	has := false

	setIntPtr := func(key string, dst **int) error {
		v, ok := os.LookupEnv(prefix + key)
		if !ok {
			return nil
		}
		has = true
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("environment variable %s%s is not a valid integer", prefix, key)
		}
		*dst = &n
		return nil
	}
	setBoolPtr := func(key string, dst **bool) error {
		v, ok := os.LookupEnv(prefix + key)
		if !ok {
			return nil
		}
		has = true
		b, err := parseBool(v)
		if err != nil {
			return fmt.Errorf("environment variable %s%s is not a valid boolean", prefix, key)
		}
		*dst = &b
		return nil
	}
	setString := func(key string, dst *string) {
		v, ok := os.LookupEnv(prefix + key)
		if !ok {
			return
		}
		has = true
		*dst = strings.TrimSpace(v)
	}
	setList := func(key string, dst *[]string) {
		v, ok := os.LookupEnv(prefix + key)
		if !ok {
			return
		}
		has = true
		*dst = SplitCSV(v)
	}

	if err := setIntPtr("JOBS", &s.Jobs); err != nil {
		return Settings{}, false, err
	}
	if err := setIntPtr("TOP", &s.Top); err != nil {
		return Settings{}, false, err
	}
	if err := setIntPtr("BOTTOM", &s.Bottom); err != nil {
		return Settings{}, false, err
	}
	if err := setBoolPtr("RESPECT_IGNORES", &s.RespectIgnores); err != nil {
		return Settings{}, false, err
	}
	setString("MAX_FILE_SIZE", &s.MaxFileSize)
	setList("EXTENSIONS", &s.Extensions)
	setList("IGNORE_PATTERNS", &s.IgnorePatterns)

	if err := s.Validate(); err != nil {
		return Settings{}, false, fmt.Errorf("environment %s*: %w", prefix, err)
	}
	return s, has, nil
}

func SplitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

func parseBool(v string) (bool, error) {
	s := strings.ToLower(strings.TrimSpace(v))
	switch s {
	case "1", "true", "yes", "y", "on":
		return true, nil
	case "0", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid bool")
	}
}
