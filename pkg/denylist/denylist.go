// Package denylist removes intermediate files from unit and branch
// directories. A deny list has one file name pattern per line relative to
// the directory, `#` starts a comment line and `{}` is replaced by the
// unit or branch ID before matching.
package denylist

import (
	"bufio"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gobwas/glob"
)

// None is the deny list name that disables cleanup.
const None = "NONE"

// List is a parsed deny list.
type List struct {
	Patterns []string
}

// IsNone reports if a deny list name disables cleanup.
func IsNone(name string) bool {
	return name == "" || strings.EqualFold(strings.TrimSpace(name), None)
}

// Parse reads patterns skipping blank and comment lines.
func Parse(r io.Reader) (List, error) {
	var res List
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		res.Patterns = append(res.Patterns, line)
	}
	return res, sc.Err()
}

// Load reads a deny list file. A NONE name returns an empty list.
func Load(path string) (List, error) {
	if IsNone(path) {
		return List{}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return List{}, err
	}
	defer f.Close()
	return Parse(f)
}

// Matchers compiles patterns with `{}` replaced by id. Patterns that do
// not compile are skipped.
func (l List) Matchers(id string) []glob.Glob {
	res := make([]glob.Glob, 0, len(l.Patterns))
	for _, p := range l.Patterns {
		p = strings.ReplaceAll(p, "{}", id)
		g, err := glob.Compile(p, '/')
		if err != nil {
			continue
		}
		res = append(res, g)
	}
	return res
}

// Apply removes files of dir whose slash separated relative path matches
// a pattern. It returns removed relative paths in lexical order.
func (l List) Apply(dir, id string) ([]string, error) {
	ms := l.Matchers(id)
	if len(ms) == 0 {
		return nil, nil
	}
	var res []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		for _, m := range ms {
			if m.Match(rel) {
				if err = os.Remove(path); err != nil {
					return err
				}
				res = append(res, rel)
				break
			}
		}
		return nil
	})
	slices.Sort(res)
	return res, err
}
