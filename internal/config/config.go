package config

import (
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultExtension   = ".txt"
	DefaultTop         = 10
	DefaultBottom      = 10
	// DefaultMaxFileSize of zero means no limit.
	DefaultMaxFileSize = "0"
)

// Settings holds every value that can come from a config file or the
// environment. Nil pointers and empty slices mean "not set".
type Settings struct {
	Extensions     []string `yaml:"extensions"`
	Jobs           *int     `yaml:"jobs"`
	Top            *int     `yaml:"top"`
	Bottom         *int     `yaml:"bottom"`
	MaxFileSize    string   `yaml:"max_file_size"`
	IgnorePatterns []string `yaml:"ignore_patterns"`
	RespectIgnores *bool    `yaml:"respect_ignores"`
}

type Config struct {
	Settings Settings `yaml:"wordfreq"`
}

func Load(path string) (Config, error) {
	var cfg Config
	if strings.TrimSpace(path) == "" {
		return cfg, fmt.Errorf("config path is empty")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	expanded, err := expandEnv(string(b))
	if err != nil {
		return cfg, err
	}
	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config file: %w", err)
	}
	if err := cfg.Settings.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the run cannot use.
func (s Settings) Validate() error {
	if s.Jobs != nil && *s.Jobs < 1 {
		return fmt.Errorf("jobs must be at least 1, got %d", *s.Jobs)
	}
	if s.Top != nil && *s.Top < 0 {
		return fmt.Errorf("top must not be negative, got %d", *s.Top)
	}
	if s.Bottom != nil && *s.Bottom < 0 {
		return fmt.Errorf("bottom must not be negative, got %d", *s.Bottom)
	}
	if _, err := ParseSizeToBytes(s.MaxFileSize); err != nil {
		return fmt.Errorf("max_file_size: %w", err)
	}
	return nil
}

// Merge returns base with every field set in over replacing it.
func Merge(base, over Settings) Settings {
	out := base
	if len(over.Extensions) > 0 {
		out.Extensions = over.Extensions
	}
	if over.Jobs != nil {
		out.Jobs = over.Jobs
	}
	if over.Top != nil {
		out.Top = over.Top
	}
	if over.Bottom != nil {
		out.Bottom = over.Bottom
	}
	if strings.TrimSpace(over.MaxFileSize) != "" {
		out.MaxFileSize = over.MaxFileSize
	}
	if len(over.IgnorePatterns) > 0 {
		out.IgnorePatterns = over.IgnorePatterns
	}
	if over.RespectIgnores != nil {
		out.RespectIgnores = over.RespectIgnores
	}
	return out
}

var envExpr = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

func expandEnv(src string) (string, error) {
	var out strings.Builder
	last := 0
	for _, idx := range envExpr.FindAllStringSubmatchIndex(src, -1) {
		out.WriteString(src[last:idx[0]])
		name := src[idx[2]:idx[3]]
		hasDefault := idx[4] >= 0 && idx[5] >= 0
		defVal := ""
		if hasDefault && idx[6] >= 0 && idx[7] >= 0 {
			defVal = src[idx[6]:idx[7]]
		}
		if v, ok := os.LookupEnv(name); ok {
			out.WriteString(v)
		} else if hasDefault {
			out.WriteString(defVal)
		} else {
			return "", fmt.Errorf("config references unset environment variable: %s", name)
		}
		last = idx[1]
	}
	out.WriteString(src[last:])
	return out.String(), nil
}

func ParseSizeToBytes(s string) (int64, error) {
	v := strings.TrimSpace(strings.ToUpper(s))
	if v == "" {
		return 0, nil
	}
	units := []struct {
		U string
		M int64
	}{
		{"GB", 1024 * 1024 * 1024},
		{"MB", 1024 * 1024},
		{"KB", 1024},
		{"B", 1},
	}
	for _, unit := range units {
		if strings.HasSuffix(v, unit.U) {
			n := strings.TrimSpace(strings.TrimSuffix(v, unit.U))
			f, err := strconv.ParseFloat(n, 64)
			if err != nil || f < 0 || math.IsNaN(f) {
				return 0, fmt.Errorf("invalid size: %s", s)
			}
			bytes := f * float64(unit.M)
			if bytes >= math.MaxInt64 {
				return 0, fmt.Errorf("size too large: %s", s)
			}
			if f > 0 && bytes < 1 {
				return 0, fmt.Errorf("size rounds to zero bytes: %s", s)
			}
			return int64(bytes), nil
		}
	}
	// bare numbers are bytes
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid size: %s", s)
	}
	return n, nil
}
