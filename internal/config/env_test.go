package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, e := range os.Environ() {
		if strings.HasPrefix(e, EnvPrefix) {
			t.Skip("WFQ_* variables already set in this environment")
		}
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("WFQ_EXTENSIONS", ".md, .txt")
	t.Setenv("WFQ_JOBS", "3")
	t.Setenv("WFQ_TOP", "20")
	t.Setenv("WFQ_RESPECT_IGNORES", "yes")
	t.Setenv("WFQ_MAX_FILE_SIZE", "1KB")
	s, ok, err := LoadFromEnv(EnvPrefix)
	if err != nil {
		t.Fatalf("load from env failed: %v", err)
	}
	if !ok {
		t.Fatalf("expected env settings present")
	}
	if len(s.Extensions) != 2 || s.Extensions[0] != ".md" {
		t.Fatalf("bad extensions: %#v", s.Extensions)
	}
	if s.Jobs == nil || *s.Jobs != 3 || s.Top == nil || *s.Top != 20 {
		t.Fatalf("bad ints: %#v", s)
	}
	if s.Bottom != nil {
		t.Fatalf("bottom should be unset")
	}
	if s.RespectIgnores == nil || !*s.RespectIgnores || s.MaxFileSize != "1KB" {
		t.Fatalf("bad settings: %#v", s)
	}
}

func TestLoadFromEnvInvalidValue(t *testing.T) {
	t.Setenv("TWFQ_JOBS", "abc")
	if _, _, err := LoadFromEnv("TWFQ_"); err == nil {
		t.Fatalf("expected invalid int error")
	}
	t.Setenv("TWFQ_JOBS", "0")
	if _, _, err := LoadFromEnv("TWFQ_"); err == nil {
		t.Fatalf("expected jobs range error")
	}
}

func TestResolvePrecedence(t *testing.T) {
	clearEnv(t)
	tmp := t.TempDir()
	p := filepath.Join(tmp, "c.yaml")
	if err := os.WriteFile(p, []byte("wordfreq:\n  jobs: 2\n  top: 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, src, err := Resolve(p)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if src != p || *s.Jobs != 2 {
		t.Fatalf("unexpected resolve: %s %#v", src, s)
	}

	t.Setenv("WFQ_JOBS", "6")
	s, src, err = Resolve(p)
	if err != nil {
		t.Fatalf("resolve with env: %v", err)
	}
	if *s.Jobs != 6 || *s.Top != 4 {
		t.Fatalf("env should override file: %#v", s)
	}
	if !strings.HasPrefix(src, p) || !strings.Contains(src, "env://") {
		t.Fatalf("unexpected source: %s", src)
	}
}

func TestResolveNothing(t *testing.T) {
	clearEnv(t)
	s, src, err := Resolve("")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if src != "" || s.Jobs != nil || len(s.Extensions) != 0 {
		t.Fatalf("expected empty settings: %s %#v", src, s)
	}
}
