package archive

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"go.uber.org/zap"

	"github.com/kspalaiologos/mrzip-go/internal/fileid"
)

// Enumerator produces the candidate file set for a create run, either by
// recursively walking a directory or by reading a newline-delimited path
// list from a stream. Directories are skipped silently; non-regular files
// (symlinks included) are skipped with a warning; an optional selector
// regex is matched against the stored path.
type Enumerator struct {
	Selector *regexp.Regexp
	Log      *zap.SugaredLogger
}

func (e *Enumerator) logger() *zap.SugaredLogger {
	if e.Log == nil {
		return zap.NewNop().Sugar()
	}
	return e.Log
}

// EnumerateDir canonicalizes root once, then walks it recursively. Stored
// paths are relative to the canonicalized root. Returns the resolved base
// directory alongside the records, since the writer needs it to reopen
// files by path later.
func (e *Enumerator) EnumerateDir(root string) (baseDir string, files []*File, err error) {
	baseDir, err = filepath.Abs(root)
	if err != nil {
		return "", nil, fmt.Errorf("canonicalize %q: %w", root, err)
	}
	baseDir, err = filepath.EvalSymlinks(baseDir)
	if err != nil {
		return "", nil, fmt.Errorf("canonicalize %q: %w", root, err)
	}

	identities := fileid.NewTracker()

	walkErr := filepath.WalkDir(baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk %q: %w", path, err)
		}
		if d.IsDir() {
			return nil
		}
		if d.Type()&fs.ModeType != 0 {
			e.logger().Warnw("skipping non-regular file", "path", path)
			return nil
		}

		rel, err := filepath.Rel(baseDir, path)
		if err != nil {
			return fmt.Errorf("relativize %q: %w", path, err)
		}
		rel = filepath.ToSlash(rel)

		if e.Selector != nil && !e.Selector.MatchString(rel) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %q: %w", path, err)
		}

		f := &File{
			Path:    rel,
			Size:    uint64(info.Size()),
			ModTime: info.ModTime().UnixNano(),
		}
		if id, ok := identities.Identify(info); ok {
			f.identity, f.hasIdentity = id, true
		}
		files = append(files, f)
		return nil
	})
	if walkErr != nil {
		return "", nil, walkErr
	}
	return baseDir, files, nil
}

// EnumerateList reads one path per line from r. Stored paths are exactly
// the text as given, with no canonicalization or base directory.
func (e *Enumerator) EnumerateList(r io.Reader) ([]*File, error) {
	var files []*File
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		if e.Selector != nil && !e.Selector.MatchString(line) {
			continue
		}
		info, err := os.Lstat(line)
		if err != nil {
			return nil, fmt.Errorf("stat %q: %w", line, err)
		}
		if info.IsDir() {
			continue
		}
		if info.Mode()&os.ModeType != 0 {
			e.logger().Warnw("skipping non-regular file", "path", line)
			continue
		}
		files = append(files, &File{
			Path:    line,
			Size:    uint64(info.Size()),
			ModTime: info.ModTime().UnixNano(),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read path list: %w", err)
	}
	return files, nil
}
