package archive

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/glaslos/tlsh"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"github.com/kspalaiologos/mrzip-go/internal/rehashcache"
)

// TLSHDigestLen is the fixed width of the printable TLSH digest string
// (the collaborator's standard output buffer length).
const TLSHDigestLen = 70

// chunkSize is the read granularity used by the dual-hasher, matching the
// original tool's 4 KiB streaming reads.
const chunkSize = 4096

// progressThresholdBytes is the accumulated-bytes threshold at which the
// progress reporter logs, per §4.D.
const progressThresholdBytes = 100 * 1024 * 1024

// Hasher fills in the cryptographic and similarity digests for a slice of
// File records via a fixed worker pool sharing an atomic claim counter.
type Hasher struct {
	// BaseDir is prefixed to each File.Path to open it. Empty in list mode,
	// where stored paths are already directly openable.
	BaseDir string

	// Workers overrides the pool size; zero means hardware concurrency with
	// a fallback of 4.
	Workers int

	// Cache is an optional on-disk re-hash cache; nil disables it entirely.
	Cache *rehashcache.Cache

	Log *zap.SugaredLogger
}

func (h *Hasher) logger() *zap.SugaredLogger {
	if h.Log == nil {
		return zap.NewNop().Sugar()
	}
	return h.Log
}

func (h *Hasher) workerCount() int {
	if h.Workers > 0 {
		return h.Workers
	}
	n := runtime.NumCPU()
	if n <= 0 {
		n = 4
	}
	return n
}

func (h *Hasher) resolve(f *File) string {
	if h.BaseDir == "" {
		return f.Path
	}
	return filepath.Join(h.BaseDir, filepath.FromSlash(f.Path))
}

// HashAll fills Checksum and Similarity on every record in files. Files that
// share a hardlink identity (§ supplemented module I) are collapsed to a
// single representative per identity group before hashing; the rest of the
// group copies the representative's digests afterward instead of reading
// the same bytes again.
func (h *Hasher) HashAll(files []*File) error {
	groups := make(map[uint64][]*File)
	var targets []*File
	for _, f := range files {
		if !f.hasIdentity {
			targets = append(targets, f)
			continue
		}
		g, seen := groups[f.identity]
		if !seen {
			targets = append(targets, f)
		}
		groups[f.identity] = append(g, f)
	}

	if err := h.hashTargets(targets); err != nil {
		return err
	}

	for _, members := range groups {
		rep := members[0]
		for _, m := range members[1:] {
			m.Checksum = rep.Checksum
			m.Similarity = append(Digest(nil), rep.Similarity...)
		}
	}
	return nil
}

func (h *Hasher) hashTargets(targets []*File) error {
	if len(targets) == 0 {
		return nil
	}

	var next atomic.Uint64
	var bytesDone atomic.Uint64
	errCh := make(chan error, h.workerCount())

	stopProgress := make(chan struct{})
	progressDone := make(chan struct{})
	go func() {
		defer close(progressDone)
		var lastReported uint64
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stopProgress:
				return
			case <-ticker.C:
				done := bytesDone.Load()
				if done-lastReported >= progressThresholdBytes {
					lastReported = done
					h.logger().Infow("hashing progress", "bytes", done)
				}
			}
		}
	}()

	workers := h.workerCount()
	if workers > len(targets) {
		workers = len(targets)
	}
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for {
				i := next.Add(1) - 1
				if i >= uint64(len(targets)) {
					return
				}
				if err := h.hashOne(targets[i], &bytesDone); err != nil {
					select {
					case errCh <- err:
					default:
					}
					return
				}
			}
		}()
	}
	wg.Wait()

	close(stopProgress)
	<-progressDone

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}

func (h *Hasher) hashOne(f *File, bytesDone *atomic.Uint64) error {
	if h.Cache != nil {
		if e, ok := h.Cache.Lookup(f.Path, f.Size, f.ModTime); ok {
			f.Checksum = Checksum(e.Checksum)
			f.Similarity = e.Similarity
			return nil
		}
	}

	path := h.resolve(f)
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %q: %w", path, err)
	}
	defer file.Close()

	crypto, err := blake2b.New512(nil)
	if err != nil {
		return fmt.Errorf("init blake2b: %w", err)
	}

	wantSimilarity := f.Size > SimilarityThreshold
	var buf *bytes.Buffer
	var w io.Writer = crypto
	if wantSimilarity {
		buf = bytes.NewBuffer(make([]byte, 0, f.Size))
		w = io.MultiWriter(crypto, buf)
	}

	chunk := make([]byte, chunkSize)
	for {
		n, rerr := file.Read(chunk)
		if n > 0 {
			if _, werr := w.Write(chunk[:n]); werr != nil {
				return fmt.Errorf("hash %q: %w", path, werr)
			}
			bytesDone.Add(uint64(n))
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return fmt.Errorf("read %q: %w", path, rerr)
		}
	}

	copy(f.Checksum[:], crypto.Sum(nil))

	if wantSimilarity {
		f.Similarity = computeSimilarity(buf.Bytes())
	} else {
		f.Similarity = make(Digest, TLSHDigestLen)
	}

	if h.Cache != nil {
		if err := h.Cache.Store(f.Path, f.Size, f.ModTime, rehashcache.Entry{
			Checksum:   f.Checksum,
			Similarity: f.Similarity,
		}); err != nil {
			h.logger().Warnw("rehash cache store failed", "path", f.Path, "error", err)
		}
	}
	return nil
}

// computeSimilarity runs TLSH over a whole-file buffer. The collaborator is
// undefined below 500 bytes (§6.5) and occasionally still rejects buffers
// just above that threshold for having too little variance; either failure
// degrades to the all-zero digest rather than aborting the run.
func computeSimilarity(data []byte) Digest {
	h, err := tlsh.HashReader(bytes.NewReader(data))
	if err != nil {
		return make(Digest, TLSHDigestLen)
	}
	s := h.String()
	d := make(Digest, TLSHDigestLen)
	copy(d, s)
	return d
}
