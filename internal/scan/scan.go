package scan

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

var defaultIgnoreDirs = map[string]struct{}{
	".git":         {},
	".svn":         {},
	"node_modules": {},
	"vendor":       {},
	"dist":         {},
	"build":        {},
}

type Options struct {
	Extensions     []string
	IgnorePatterns []string
	CWD            string
	// DefaultIgnores skips defaultIgnoreDirs. Off means every directory is visited.
	DefaultIgnores bool
	GitIgnore      bool
}

type GitIgnoreMatcher struct {
	Base     string
	Patterns []string
}

type ScanError struct {
	Code   string
	Path   string
	Detail string
}

// Walker visits directory trees and emits regular files whose extension is in
// the configured set. A Walker is safe to share between goroutines once built.
type Walker struct {
	opts     Options
	exts     map[string]struct{}
	matchers []GitIgnoreMatcher
}

// NewWalker loads .gitignore files from opts.CWD and from every root when
// opts.GitIgnore is set.
func NewWalker(opts Options, roots []string) *Walker {
	w := &Walker{opts: opts, exts: NormalizeExtensions(opts.Extensions)}
	if opts.GitIgnore {
		w.matchers = loadGitIgnoreMatchers(opts.CWD, roots)
	}
	return w
}

// Match reports whether path carries one of the allowed extensions.
func (w *Walker) Match(path string) bool {
	_, ok := w.exts[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Walk traverses root without recursion. Symlinks are never followed. Entry
// errors go to report and do not stop the walk; an emit error does, and is
// returned.
func (w *Walker) Walk(root string, emit func(path string) error, report func(ScanError)) error {
	info, err := os.Lstat(root)
	if err != nil {
		report(ScanError{Code: "walk_error", Path: root, Detail: err.Error()})
		return nil
	}
	switch {
	case info.Mode()&os.ModeSymlink != 0:
		return nil
	case info.Mode().IsRegular():
		if w.Match(root) && !w.isIgnored(root, false) {
			return emit(root)
		}
		return nil
	case !info.IsDir():
		return nil
	}

	stack := []string{root}
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(dir)
		if err != nil {
			report(ScanError{Code: "walk_error", Path: dir, Detail: err.Error()})
			// ReadDir may still return the entries read before the failure.
		}
		var subdirs []string
		for _, d := range entries {
			path := filepath.Join(dir, d.Name())
			mode := d.Type()
			switch {
			case mode&fs.ModeSymlink != 0:
				continue
			case mode.IsDir():
				if w.skipDir(d.Name(), path) {
					continue
				}
				subdirs = append(subdirs, path)
			case mode.IsRegular():
				if !w.Match(path) || w.isIgnored(path, false) {
					continue
				}
				if err := emit(path); err != nil {
					return err
				}
			}
		}
		for i := len(subdirs) - 1; i >= 0; i-- {
			stack = append(stack, subdirs[i])
		}
	}
	return nil
}

func (w *Walker) skipDir(name, path string) bool {
	if w.opts.DefaultIgnores {
		if _, ok := defaultIgnoreDirs[name]; ok {
			return true
		}
	}
	return w.isIgnored(path, true)
}

// NormalizeExtensions lowercases filters and adds the leading dot.
func NormalizeExtensions(exts []string) map[string]struct{} {
	out := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" || e == "." {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out[e] = struct{}{}
	}
	return out
}

// ValidateRoots resolves paths against cwd, drops duplicates and reports roots
// that are missing, unreadable or symlinks.
func ValidateRoots(paths []string, cwd string) ([]string, []ScanError) {
	var errs []ScanError
	seen := map[string]struct{}{}
	roots := make([]string, 0, len(paths))
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		if !filepath.IsAbs(p) {
			p = filepath.Join(cwd, p)
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			errs = append(errs, ScanError{Code: "input_abs_failed", Path: p, Detail: err.Error()})
			continue
		}
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}
		info, err := os.Lstat(abs)
		if err != nil {
			if os.IsNotExist(err) {
				errs = append(errs, ScanError{Code: "input_path_not_found", Path: abs, Detail: "path does not exist"})
				continue
			}
			errs = append(errs, ScanError{Code: "input_stat_failed", Path: abs, Detail: err.Error()})
			continue
		}
		if info.Mode()&os.ModeSymlink != 0 {
			errs = append(errs, ScanError{Code: "symlink_skipped", Path: abs, Detail: "symlinks are never followed"})
			continue
		}
		roots = append(roots, abs)
	}
	sort.Strings(roots)
	return roots, errs
}

func loadGitIgnoreMatchers(cwd string, roots []string) []GitIgnoreMatcher {
	uniq := map[string]struct{}{}
	var bases []string
	addBase := func(b string) {
		if b == "" {
			return
		}
		if _, ok := uniq[b]; ok {
			return
		}
		uniq[b] = struct{}{}
		bases = append(bases, b)
	}
	addBase(cwd)
	for _, p := range roots {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		if info.IsDir() {
			addBase(p)
		} else {
			addBase(filepath.Dir(p))
		}
	}
	var ms []GitIgnoreMatcher
	for _, base := range bases {
		gip := filepath.Join(base, ".gitignore")
		b, err := os.ReadFile(gip)
		if err != nil {
			continue
		}
		patterns := make([]string, 0)
		for _, raw := range strings.Split(string(b), "\n") {
			p := strings.TrimSpace(raw)
			if p == "" || strings.HasPrefix(p, "#") || strings.HasPrefix(p, "!") {
				continue
			}
			p = strings.TrimPrefix(filepath.ToSlash(p), "/")
			if strings.HasSuffix(p, "/") {
				p = p + "**"
			}
			patterns = append(patterns, p)
			if !strings.Contains(p, "/") {
				patterns = append(patterns, "**/"+p)
			}
		}
		ms = append(ms, GitIgnoreMatcher{Base: base, Patterns: patterns})
	}
	return ms
}

func (w *Walker) isIgnored(absPath string, isDir bool) bool {
	for _, p := range w.opts.IgnorePatterns {
		ok, err := doublestar.Match(p, filepath.ToSlash(absPath))
		if err == nil && ok {
			return true
		}
		if w.opts.CWD != "" {
			rel, rerr := filepath.Rel(w.opts.CWD, absPath)
			if rerr == nil {
				ok, err := doublestar.Match(p, filepath.ToSlash(rel))
				if err == nil && ok {
					return true
				}
			}
		}
	}
	for _, m := range w.matchers {
		rel, err := filepath.Rel(m.Base, absPath)
		if err != nil {
			continue
		}
		if strings.HasPrefix(rel, "..") {
			continue
		}
		rel = filepath.ToSlash(rel)
		for _, p := range m.Patterns {
			ok, err := doublestar.Match(p, rel)
			if err == nil && ok {
				return true
			}
			if isDir {
				ok, err = doublestar.Match(p, rel+"/")
				if err == nil && ok {
					return true
				}
			}
		}
	}
	return false
}
