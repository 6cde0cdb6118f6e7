package tables

import (
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-pkgz/fileutils"

	"github.com/umputun/hostql/pkg/table"
)

// target is a filesystem path selected by constraints with the directory reported for it
type target struct {
	path string
	dir  string
}

// resolveTargets turns path and directory constraints into the list of paths to inspect.
// "=" selects the path itself or the entries of the directory, LIKE patterns are expanded with glob,
// a pattern ending with "%%" walks the tree recursively. Without such constraints nothing is selected.
func resolveTargets(cs table.ConstraintSet) []target {
	var res []target
	seen := map[string]bool{}
	add := func(path, dir string) {
		if path == "" || seen[path] {
			return
		}
		seen[path] = true
		res = append(res, target{path: path, dir: dir})
	}

	paths := cs.Get("path")
	for _, p := range paths.Equals() {
		add(p, filepath.Dir(p))
	}
	for _, pattern := range paths.Patterns() {
		for _, p := range expandLike(pattern) {
			add(p, filepath.Dir(p))
		}
	}

	dirs := cs.Get("directory")
	listDir := func(dir string) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			log.Printf("[DEBUG] can't list %s, %v", dir, err)
			return
		}
		for _, e := range entries {
			add(filepath.Join(dir, e.Name()), dir)
		}
	}
	for _, d := range dirs.Equals() {
		listDir(d)
	}
	for _, pattern := range dirs.Patterns() {
		for _, d := range expandLike(pattern) {
			if fileutils.IsDir(d) {
				listDir(d)
			}
		}
	}
	return res
}

// expandLike returns existing paths matching the LIKE pattern. A single '%' doesn't cross path separators.
func expandLike(pattern string) []string {
	if strings.HasSuffix(pattern, "%%") {
		return walkLike(pattern)
	}
	matches, err := filepath.Glob(likeToGlob(pattern))
	if err != nil {
		log.Printf("[DEBUG] bad pattern %q, %v", pattern, err)
		return nil
	}
	res := make([]string, 0, len(matches))
	for _, m := range matches {
		if table.Like(pattern, m) {
			res = append(res, m)
		}
	}
	return res
}

// walkLike expands patterns ending with "%%", everything under the matching base directories
func walkLike(pattern string) []string {
	base := strings.TrimSuffix(pattern, "%%")
	var roots []string
	if _, literal := table.LikePrefix(base); literal {
		roots = []string{base}
	} else {
		roots = expandLike(strings.TrimSuffix(base, string(filepath.Separator)))
	}

	var res []string
	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if filepath.Clean(path) == filepath.Clean(root) {
				return nil
			}
			res = append(res, path)
			return nil
		})
		if err != nil {
			log.Printf("[DEBUG] can't walk %s, %v", root, err)
		}
	}
	return res
}

// likeToGlob converts LIKE wildcards to glob ones, glob metacharacters of the pattern are escaped
func likeToGlob(pattern string) string {
	var sb strings.Builder
	prevPercent := false
	for _, r := range pattern {
		if r == '%' {
			if !prevPercent {
				sb.WriteRune('*')
			}
			prevPercent = true
			continue
		}
		prevPercent = false
		switch r {
		case '_':
			sb.WriteRune('?')
		case '*', '?', '[', '\\':
			if runtime.GOOS != "windows" {
				sb.WriteRune('\\')
			}
			sb.WriteRune(r)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
