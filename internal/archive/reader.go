package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	"go.uber.org/zap"
)

// ErrBadHeader is returned when the stream does not begin with the magic
// bytes.
var ErrBadHeader = errors.New("invalid header")

// ErrChecksumMismatch is returned when a streamed body's BLAKE2b digest
// disagrees with its record's stored checksum.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// ReadMetadata reads the magic, metadata_size, and every record, leaving src
// positioned at the start of the body region. Every path is validated as
// relative and lexically normalized (§4.G.3 step 2); a violation is fatal.
func ReadMetadata(src io.Reader) ([]*File, error) {
	var magic [len(Magic)]byte
	if err := readN(src, magic[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, err)
	}
	if string(magic[:]) != Magic {
		return nil, ErrBadHeader
	}

	metaSize, err := readU64(src)
	if err != nil {
		return nil, fmt.Errorf("read metadata_size: %w", err)
	}

	lr := &io.LimitedReader{R: src, N: int64(metaSize)}
	var files []*File
	for lr.N > 0 {
		f, err := readRecord(lr)
		if err != nil {
			return nil, err
		}
		if err := validatePath(f.Path); err != nil {
			return nil, fmt.Errorf("record %d: %w", len(files), err)
		}
		files = append(files, f)
	}
	return files, nil
}

func readRecord(r io.Reader) (*File, error) {
	mtime, err := readU64(r)
	if err != nil {
		return nil, fmt.Errorf("read mtime: %w", err)
	}
	size, err := readU64(r)
	if err != nil {
		return nil, fmt.Errorf("read size: %w", err)
	}
	offset, err := readU64(r)
	if err != nil {
		return nil, fmt.Errorf("read archive offset: %w", err)
	}
	var checksum Checksum
	if err := readN(r, checksum[:]); err != nil {
		return nil, fmt.Errorf("read checksum: %w", err)
	}
	similarity := make(Digest, TLSHDigestLen)
	if err := readN(r, similarity); err != nil {
		return nil, fmt.Errorf("read similarity digest: %w", err)
	}
	pathLen, err := readU32(r)
	if err != nil {
		return nil, fmt.Errorf("read path length: %w", err)
	}
	pathBytes := make([]byte, pathLen)
	if err := readN(r, pathBytes); err != nil {
		return nil, fmt.Errorf("read path: %w", err)
	}
	return &File{
		Path:          string(pathBytes),
		ModTime:       int64(mtime),
		Size:          size,
		ArchiveOffset: offset,
		Checksum:      checksum,
		Similarity:    similarity,
	}, nil
}

// ExtractOptions controls the reader's §4.G.3 step-4 overwrite policy.
type ExtractOptions struct {
	Dest     string // output root; defaults to "." if empty
	Force    bool   // overwrite existing targets unconditionally
	Skip     bool   // skip existing targets instead of overwriting
	Selector *regexp.Regexp
	Log      *zap.SugaredLogger
}

func (o *ExtractOptions) logger() *zap.SugaredLogger {
	if o.Log == nil {
		return zap.NewNop().Sugar()
	}
	return o.Log
}

// Extract reads the body region from src, verifying and writing each
// duplicate group per §4.G.3 steps 3-5. files and the body-region start
// must come from a prior call to ReadMetadata on the same stream.
func Extract(src io.Reader, files []*File, opts ExtractOptions) error {
	dest := opts.Dest
	if dest == "" {
		dest = "."
	}
	destAbs, err := filepath.Abs(dest)
	if err != nil {
		return fmt.Errorf("resolve destination %q: %w", dest, err)
	}

	ordered := append([]*File(nil), files...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ArchiveOffset < ordered[j].ArchiveOffset
	})

	i := 0
	for i < len(ordered) {
		j := i + 1
		for j < len(ordered) && ordered[j].ArchiveOffset == ordered[i].ArchiveOffset {
			j++
		}
		group := ordered[i:j]
		if err := extractGroup(src, group, destAbs, opts); err != nil {
			return err
		}
		i = j
	}
	return nil
}

func extractGroup(src io.Reader, group []*File, destAbs string, opts ExtractOptions) error {
	var targets []*os.File
	var names []string
	var mtimes []int64
	for _, f := range group {
		if opts.Selector != nil && !opts.Selector.MatchString(f.Path) {
			continue
		}
		outPath := filepath.Join(destAbs, filepath.FromSlash(f.Path))
		if err := checkNoEscape(destAbs, outPath); err != nil {
			closeAll(targets)
			return err
		}
		if _, err := os.Stat(outPath); err == nil {
			if opts.Skip {
				continue
			}
			opts.logger().Warnw("overwriting existing file", "path", outPath)
		}
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			closeAll(targets)
			return fmt.Errorf("mkdir for %q: %w", outPath, err)
		}
		out, err := os.Create(outPath)
		if err != nil {
			closeAll(targets)
			return fmt.Errorf("create %q: %w", outPath, err)
		}
		targets = append(targets, out)
		names = append(names, outPath)
		mtimes = append(mtimes, f.ModTime)
	}

	size := group[0].Size
	h, _ := blake2b.New512(nil)

	var writers []io.Writer
	writers = append(writers, h)
	for _, t := range targets {
		writers = append(writers, t)
	}
	mw := io.MultiWriter(writers...)

	if _, err := io.CopyN(mw, src, int64(size)); err != nil {
		closeAll(targets)
		return fmt.Errorf("stream body for %q: %w", group[0].Path, err)
	}

	if !bytes.Equal(h.Sum(nil), group[0].Checksum[:]) {
		closeAll(targets)
		return fmt.Errorf("%w: %q", ErrChecksumMismatch, group[0].Path)
	}

	closeAll(targets)
	for k, name := range names {
		mt := timeFromUnixNano(mtimes[k])
		if err := os.Chtimes(name, mt, mt); err != nil {
			opts.logger().Warnw("failed to restore modification time", "path", name, "error", err)
		}
	}
	return nil
}

func timeFromUnixNano(nanos int64) time.Time {
	return time.Unix(0, nanos)
}

func closeAll(files []*os.File) {
	for _, f := range files {
		f.Close()
	}
}

// checkNoEscape enforces that outPath's parent stays within root before the
// target is opened for write, by rejecting a parent whose path relative to
// root starts with "..". Every path ReadMetadata returns has already passed
// validatePath, so for those records this is a second, independent check.
func checkNoEscape(root, outPath string) error {
	parent := filepath.Dir(outPath)
	rel, err := filepath.Rel(root, parent)
	if err != nil {
		return fmt.Errorf("resolve parent of %q: %w", outPath, err)
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return fmt.Errorf("%w: %q escapes destination root", errPathEscape, outPath)
	}
	return nil
}

var errPathEscape = errors.New("path escapes destination root")

// List returns the records in archive-offset order, for §4.G.4.
func List(files []*File, selector *regexp.Regexp) []*File {
	ordered := append([]*File(nil), files...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ArchiveOffset < ordered[j].ArchiveOffset
	})
	if selector == nil {
		return ordered
	}
	var out []*File
	for _, f := range ordered {
		if selector.MatchString(f.Path) {
			out = append(out, f)
		}
	}
	return out
}
