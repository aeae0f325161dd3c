package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"go.uber.org/zap"
)

// ErrVanished is returned when a file present at enumeration time no longer
// exists by the time its body is streamed.
var ErrVanished = errors.New("file vanished before body could be written")

// Rewrite rewrites a stored path with a regex and replacement string before
// it is emitted to the metadata table.
type Rewrite struct {
	Pattern     *regexp.Regexp
	Replacement string
}

func (r *Rewrite) apply(path string) string {
	if r == nil {
		return path
	}
	return r.Pattern.ReplaceAllString(path, r.Replacement)
}

// Writer emits the on-disk container format of §4.G.1 to an io.Writer.
type Writer struct {
	// BaseDir, like Hasher.BaseDir, is prefixed to each record's path to
	// reopen the underlying file for the body pass.
	BaseDir string
	Rewrite *Rewrite
	Log     *zap.SugaredLogger
}

func (w *Writer) logger() *zap.SugaredLogger {
	if w.Log == nil {
		return zap.NewNop().Sugar()
	}
	return w.Log
}

func (w *Writer) resolve(f *File) string {
	if w.BaseDir == "" {
		return f.Path
	}
	return filepath.Join(w.BaseDir, filepath.FromSlash(f.Path))
}

// Write emits the full container: magic, metadata_size, the records (with
// any path rewrite applied), then the body region. files must already be
// ordered and have ArchiveOffset assigned (§4.E, §4.F).
func (w *Writer) Write(dst io.Writer, files []*File) error {
	var metaSize uint64
	for _, f := range files {
		path, err := sanitizeRewritten(w.Rewrite.apply(f.Path))
		if err != nil {
			return fmt.Errorf("rewritten path for %q: %w", f.Path, err)
		}
		metaSize += f.recordSizeForPathLen(len(path))
	}

	if err := writeN(dst, []byte(Magic)); err != nil {
		return fmt.Errorf("write magic: %w", err)
	}
	if err := writeU64(dst, metaSize); err != nil {
		return fmt.Errorf("write metadata_size: %w", err)
	}

	for _, f := range files {
		if err := w.writeRecord(dst, f); err != nil {
			return err
		}
	}

	current := uint64(0)
	for _, f := range files {
		if f.ArchiveOffset < current {
			continue // body already emitted for an earlier duplicate
		}
		if f.ArchiveOffset != current {
			return fmt.Errorf("internal error: record %q offset %d out of sequence at cursor %d", f.Path, f.ArchiveOffset, current)
		}
		if err := w.writeBody(dst, f); err != nil {
			return err
		}
		current += f.Size
	}
	return nil
}

func (w *Writer) writeRecord(dst io.Writer, f *File) error {
	if err := writeU64(dst, uint64(f.ModTime)); err != nil {
		return err
	}
	if err := writeU64(dst, f.Size); err != nil {
		return err
	}
	if err := writeU64(dst, f.ArchiveOffset); err != nil {
		return err
	}
	if err := writeN(dst, f.Checksum[:]); err != nil {
		return err
	}
	if err := writeN(dst, f.Similarity); err != nil {
		return err
	}
	path, err := sanitizeRewritten(w.Rewrite.apply(f.Path))
	if err != nil {
		return fmt.Errorf("rewritten path for %q: %w", f.Path, err)
	}
	if err := writeU32(dst, uint32(len(path))); err != nil {
		return err
	}
	return writeN(dst, []byte(path))
}

func (w *Writer) writeBody(dst io.Writer, f *File) error {
	path := w.resolve(f)
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %q", ErrVanished, f.Path)
	}
	if err != nil {
		return fmt.Errorf("stat %q: %w", path, err)
	}
	if info.ModTime().UnixNano() != f.ModTime {
		w.logger().Warnw("modification time changed since enumeration", "path", f.Path)
	}

	in, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrVanished, f.Path)
	}
	defer in.Close()

	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(dst, in, buf); err != nil {
		return fmt.Errorf("write body %q: %w", f.Path, err)
	}
	return nil
}
