package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestValidateFormat(t *testing.T) {
	for _, f := range []string{"text", "ndjson", "json"} {
		if err := ValidateFormat(f); err != nil {
			t.Fatalf("%s should pass: %v", f, err)
		}
	}
	if err := ValidateFormat("xml"); err == nil {
		t.Fatalf("xml should fail")
	}
}

func TestWriteNDJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	events := []map[string]any{{"type": "meta"}, {"type": "summary"}}
	if err := Write(buf, "ndjson", events); err != nil {
		t.Fatalf("write ndjson failed: %v", err)
	}
	out := strings.TrimSpace(buf.String())
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("unexpected lines: %q", out)
	}
}

func TestWriteJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	events := []map[string]any{{"type": "meta"}}
	if err := Write(buf, "json", events); err != nil {
		t.Fatalf("write json failed: %v", err)
	}
	if !strings.Contains(buf.String(), "\"events\"") {
		t.Fatalf("unexpected json: %s", buf.String())
	}
}

func TestWriteText(t *testing.T) {
	buf := &bytes.Buffer{}
	events := []map[string]any{
		{"type": "meta"},
		{"type": "word", "list": "top", "rank": 1, "word": "dog", "count": 12},
		{"type": "word", "list": "top", "rank": 2, "word": "cat", "count": 3},
		{"type": "word", "list": "bottom", "rank": 1, "word": "bird", "count": 1},
		{"type": "error", "code": "file_read_failed"},
		{"type": "summary", "processed_files": 2, "token_count": 16, "unique_words": 3, "skipped_files": 0, "error_count": 1},
	}
	if err := Write(buf, "text", events); err != nil {
		t.Fatalf("write text failed: %v", err)
	}
	want := "Most frequent:\n12 - dog\n 3 - cat\n\nLeast frequent:\n1 - bird\n\n2 files, 16 tokens, 3 unique words (0 skipped, 1 errors)\n"
	if buf.String() != want {
		t.Fatalf("text output mismatch:\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestWriteInvalidFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, "bad", nil); err == nil {
		t.Fatalf("expected format error")
	}
}
