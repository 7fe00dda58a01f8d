package config

import "testing"

func TestParseSizeToBytes(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"", 0},
		{"100", 100},
		{"1KB", 1024},
		{"2MB", 2 * 1024 * 1024},
		{"0.5kb", 512},
		{"0", 0},
		{"0MB", 0},
	}
	for _, c := range cases {
		got, err := ParseSizeToBytes(c.in)
		if err != nil {
			t.Fatalf("parse %s failed: %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("parse %s got %d want %d", c.in, got, c.want)
		}
	}
	for _, bad := range []string{"A1", "-5", "-1MB", "1e30GB", "InfKB", "0.5B", "99999999999999999999"} {
		if _, err := ParseSizeToBytes(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
