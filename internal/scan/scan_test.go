package scan

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func collect(t *testing.T, w *Walker, root string) ([]string, []ScanError) {
	t.Helper()
	var files []string
	var errs []ScanError
	err := w.Walk(root, func(p string) error {
		files = append(files, p)
		return nil
	}, func(e ScanError) {
		errs = append(errs, e)
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	return files, errs
}

func baseNames(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, filepath.Base(p))
	}
	sort.Strings(out)
	return out
}

func TestNormalizeExtensions(t *testing.T) {
	got := NormalizeExtensions([]string{"txt", ".MD", " .go ", "", "."})
	for _, want := range []string{".txt", ".md", ".go"} {
		if _, ok := got[want]; !ok {
			t.Fatalf("missing %s in %#v", want, got)
		}
	}
	if len(got) != 3 {
		t.Fatalf("unexpected extensions: %#v", got)
	}
}

func TestWalkFiltersByExtension(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "a.txt"), "x")
	writeFile(t, filepath.Join(tmp, "b.md"), "x")
	writeFile(t, filepath.Join(tmp, "sub", "c.TXT"), "x")
	writeFile(t, filepath.Join(tmp, "sub", "deep", "d.txt"), "x")
	writeFile(t, filepath.Join(tmp, "sub", "noext"), "x")

	w := NewWalker(Options{Extensions: []string{".txt"}, CWD: tmp}, []string{tmp})
	files, errs := collect(t, w, tmp)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %#v", errs)
	}
	got := baseNames(files)
	want := []string{"a.txt", "c.TXT", "d.txt"}
	if len(got) != len(want) {
		t.Fatalf("files = %#v, want %#v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("files = %#v, want %#v", got, want)
		}
	}
}

func TestWalkTraversalOrder(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "b.txt"), "x")
	writeFile(t, filepath.Join(tmp, "a.txt"), "x")
	writeFile(t, filepath.Join(tmp, "x", "c.txt"), "x")
	writeFile(t, filepath.Join(tmp, "y", "d.txt"), "x")

	w := NewWalker(Options{Extensions: []string{"txt"}}, nil)
	files, _ := collect(t, w, tmp)
	want := []string{
		filepath.Join(tmp, "a.txt"),
		filepath.Join(tmp, "b.txt"),
		filepath.Join(tmp, "x", "c.txt"),
		filepath.Join(tmp, "y", "d.txt"),
	}
	if len(files) != len(want) {
		t.Fatalf("files = %#v", files)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Fatalf("order mismatch at %d: %#v", i, files)
		}
	}
}

func TestWalkRootFile(t *testing.T) {
	tmp := t.TempDir()
	f := filepath.Join(tmp, "a.txt")
	writeFile(t, f, "x")
	w := NewWalker(Options{Extensions: []string{".txt"}}, nil)
	files, _ := collect(t, w, f)
	if len(files) != 1 || files[0] != f {
		t.Fatalf("root file should be emitted: %#v", files)
	}
	w = NewWalker(Options{Extensions: []string{".md"}}, nil)
	files, _ = collect(t, w, f)
	if len(files) != 0 {
		t.Fatalf("root file with other extension should be dropped: %#v", files)
	}
}

func TestWalkIgnores(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, ".gitignore"), "ignored.txt\nsub/skip/\n")
	writeFile(t, filepath.Join(tmp, "ok.txt"), "ok")
	writeFile(t, filepath.Join(tmp, "ignored.txt"), "no")
	writeFile(t, filepath.Join(tmp, "node_modules", "x.txt"), "no")
	writeFile(t, filepath.Join(tmp, "sub", "skip", "y.txt"), "no")
	writeFile(t, filepath.Join(tmp, "sub", "logs", "z.txt"), "no")
	writeFile(t, filepath.Join(tmp, "sub", "keep.txt"), "ok")

	w := NewWalker(Options{
		Extensions:     []string{".txt"},
		CWD:            tmp,
		IgnorePatterns: []string{"sub/logs/**"},
		DefaultIgnores: true,
		GitIgnore:      true,
	}, []string{tmp})
	files, _ := collect(t, w, tmp)
	got := baseNames(files)
	if len(got) != 2 || got[0] != "keep.txt" || got[1] != "ok.txt" {
		t.Fatalf("unexpected files: %#v", got)
	}

	w = NewWalker(Options{Extensions: []string{".txt"}, CWD: tmp}, []string{tmp})
	files, _ = collect(t, w, tmp)
	if len(files) != 6 {
		t.Fatalf("default walk should see every txt file: %#v", baseNames(files))
	}
}

func TestWalkVisitsConventionalDirsByDefault(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, ".gitignore"), "notes/\n")
	writeFile(t, filepath.Join(tmp, "a.txt"), "x")
	for _, dir := range []string{".git", ".svn", "node_modules", "vendor", "dist", "build", "notes"} {
		writeFile(t, filepath.Join(tmp, dir, "f.txt"), "x")
	}

	w := NewWalker(Options{Extensions: []string{".txt"}, CWD: tmp}, []string{tmp})
	files, errs := collect(t, w, tmp)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %#v", errs)
	}
	if len(files) != 8 {
		t.Fatalf("every directory should be visited: %#v", files)
	}
}

func TestWalkSkipsSymlinkCycles(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink on windows may require admin")
	}
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "sub", "a.txt"), "x")
	if err := os.Symlink(tmp, filepath.Join(tmp, "sub", "loop")); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(tmp, "sub", "a.txt"), filepath.Join(tmp, "link.txt")); err != nil {
		t.Fatal(err)
	}

	w := NewWalker(Options{Extensions: []string{".txt"}}, nil)
	files, errs := collect(t, w, tmp)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %#v", errs)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "a.txt" {
		t.Fatalf("symlinks must not be followed: %#v", files)
	}

	files, _ = collect(t, w, filepath.Join(tmp, "sub", "loop"))
	if len(files) != 0 {
		t.Fatalf("symlink root must not be followed: %#v", files)
	}
}

func TestWalkUnreadableDirContinues(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "locked", "a.txt"), "x")
	writeFile(t, filepath.Join(tmp, "open", "b.txt"), "x")
	locked := filepath.Join(tmp, "locked")
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatal(err)
	}
	defer os.Chmod(locked, 0o755)

	w := NewWalker(Options{Extensions: []string{".txt"}}, nil)
	files, errs := collect(t, w, tmp)
	if len(errs) != 1 || errs[0].Code != "walk_error" || errs[0].Path != locked {
		t.Fatalf("expected one walk_error for locked dir: %#v", errs)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "b.txt" {
		t.Fatalf("sibling should still be walked: %#v", files)
	}
}

func TestWalkVanishedDirContinues(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "a.txt"), "x")
	writeFile(t, filepath.Join(tmp, "gone", "b.txt"), "x")
	writeFile(t, filepath.Join(tmp, "open", "c.txt"), "x")
	gone := filepath.Join(tmp, "gone")

	// gone is listed with the root and removed before it is read.
	var files []string
	var errs []ScanError
	w := NewWalker(Options{Extensions: []string{".txt"}}, nil)
	err := w.Walk(tmp, func(p string) error {
		files = append(files, p)
		if filepath.Base(p) == "a.txt" {
			return os.RemoveAll(gone)
		}
		return nil
	}, func(e ScanError) {
		errs = append(errs, e)
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	if len(errs) != 1 || errs[0].Code != "walk_error" || errs[0].Path != gone {
		t.Fatalf("expected one walk_error for vanished dir: %#v", errs)
	}
	got := baseNames(files)
	if len(got) != 2 || got[0] != "a.txt" || got[1] != "c.txt" {
		t.Fatalf("sibling should still be walked: %#v", got)
	}
}

func TestWalkStopsOnEmitError(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "a.txt"), "x")
	writeFile(t, filepath.Join(tmp, "b.txt"), "x")
	boom := errors.New("boom")
	calls := 0
	w := NewWalker(Options{Extensions: []string{".txt"}}, nil)
	err := w.Walk(tmp, func(string) error {
		calls++
		return boom
	}, func(ScanError) {})
	if !errors.Is(err, boom) {
		t.Fatalf("expected emit error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("walk should stop after first emit error, calls=%d", calls)
	}
}

func TestValidateRoots(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "a.txt"), "x")
	roots, errs := ValidateRoots([]string{"", ".", tmp, "a.txt", "missing"}, tmp)
	if len(roots) != 2 {
		t.Fatalf("unexpected roots: %#v", roots)
	}
	if len(errs) != 1 || errs[0].Code != "input_path_not_found" {
		t.Fatalf("expected missing path error: %#v", errs)
	}

	if runtime.GOOS == "windows" {
		return
	}
	ln := filepath.Join(tmp, "a.link")
	if err := os.Symlink(filepath.Join(tmp, "a.txt"), ln); err != nil {
		t.Fatal(err)
	}
	roots, errs = ValidateRoots([]string{ln}, tmp)
	if len(roots) != 0 {
		t.Fatalf("symlink root should be skipped: %#v", roots)
	}
	if len(errs) != 1 || errs[0].Code != "symlink_skipped" {
		t.Fatalf("expected symlink_skipped error: %#v", errs)
	}
}
