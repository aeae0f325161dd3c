// Command ar-mrzip is the archive tool's front end: create, extract, list,
// and dry-run create over the ARZIP container format (§6.3). Argument
// parsing is a small hand-rolled short/long-flag loop rather than a library
// parser — the front end's job is just to exist, and nothing in the corpus
// wires a getopt-alike for this shape of combined short/long flags.
package main

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/kspalaiologos/mrzip-go/internal/archive"
	"github.com/kspalaiologos/mrzip-go/internal/rehashcache"
	"github.com/kspalaiologos/mrzip-go/internal/rzlog"
	"go.uber.org/zap"
)

const version = "mrzip-go ar-mrzip 0.1.0"

type mode int

const (
	modeNone mode = iota
	modeExtract
	modeCreate
	modeList
	modeDryCreate
)

type options struct {
	mode      mode
	regex     string
	translate string
	directory string
	verbose   bool
	force     bool
	skip      bool
	cacheDir  string
	args      []string
}

func parseArgs(argv []string) (*options, error) {
	o := &options{}
	for i := 0; i < len(argv); i++ {
		a := argv[i]
		switch a {
		case "-x", "--extract":
			o.mode = modeExtract
		case "-c", "--create":
			o.mode = modeCreate
		case "-l", "--list":
			o.mode = modeList
		case "-d", "--dry-create":
			o.mode = modeDryCreate
		case "-v", "--verbose":
			o.verbose = true
		case "-f", "--force":
			o.force = true
		case "-s", "--skip":
			o.skip = true
		case "-h", "--help":
			printUsage()
			os.Exit(0)
		case "-V", "--version":
			fmt.Println(version)
			os.Exit(0)
		case "-r", "--regex":
			i++
			if i >= len(argv) {
				return nil, fmt.Errorf("%s requires an argument", a)
			}
			o.regex = argv[i]
		case "-t", "--translate":
			i++
			if i >= len(argv) {
				return nil, fmt.Errorf("%s requires an argument", a)
			}
			o.translate = argv[i]
		case "-D", "--directory":
			i++
			if i >= len(argv) {
				return nil, fmt.Errorf("%s requires an argument", a)
			}
			o.directory = argv[i]
		case "--cache-dir":
			i++
			if i >= len(argv) {
				return nil, fmt.Errorf("%s requires an argument", a)
			}
			o.cacheDir = argv[i]
		default:
			if strings.HasPrefix(a, "-") && a != "-" {
				return nil, fmt.Errorf("unrecognized option %q", a)
			}
			o.args = append(o.args, a)
		}
	}
	return o, nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `usage:
  ar-mrzip [options] -x              < archive   (extract, stdin=archive)
  ar-mrzip [options] -c  [dir]       > archive   (create; reads path list from stdin without dir)
  ar-mrzip [options] -d  dir                     (dry-run create: enumerate+hash, no output)
  ar-mrzip [options] -l              < archive   (list)

options:
  -r, --regex REGEX       limit processed files by regex on full path
  -t, --translate SPEC     rewrite paths during creation, SPEC is from/to
  -D, --directory DIR     change working directory before running
  -v, --verbose           enable progress on stderr
  -f, --force             overwrite existing output files
  -s, --skip              skip existing output files
  --cache-dir DIR         opt-in re-hash cache directory
  -h                      help
  -V                      version`)
}

// parseTranslate splits a `from/to` spec, where `/` is escaped by `\`,
// into exactly two components.
func parseTranslate(spec string) (from, to string, err error) {
	var parts []string
	var cur strings.Builder
	escaped := false
	for _, r := range spec {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '/':
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	parts = append(parts, cur.String())
	if len(parts) != 2 {
		return "", "", fmt.Errorf("translate spec %q must have exactly two components", spec)
	}
	return parts[0], parts[1], nil
}

func main() {
	os.Exit(run())
}

func run() int {
	o, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "ar-mrzip:", err)
		return 1
	}
	if o.directory != "" {
		if err := os.Chdir(o.directory); err != nil {
			fmt.Fprintln(os.Stderr, "ar-mrzip:", err)
			return 1
		}
	}

	log := rzlog.New(o.verbose)

	var selector *regexp.Regexp
	if o.regex != "" {
		selector, err = regexp.Compile(o.regex)
		if err != nil {
			fmt.Fprintln(os.Stderr, "ar-mrzip: bad regex:", err)
			return 1
		}
	}

	switch o.mode {
	case modeCreate, modeDryCreate:
		return doCreate(o, selector, log)
	case modeExtract:
		return doExtract(o, selector, log)
	case modeList:
		return doList(o, selector, log)
	default:
		printUsage()
		return 1
	}
}

func openCache(dir string, log *zap.SugaredLogger) *rehashcache.Cache {
	if dir == "" {
		return nil
	}
	c, err := rehashcache.Open(dir)
	if err != nil {
		log.Warnw("re-hash cache unavailable", "error", err)
		return nil
	}
	return c
}

func doCreate(o *options, selector *regexp.Regexp, log *zap.SugaredLogger) int {
	e := &archive.Enumerator{Selector: selector, Log: log}
	var baseDir string
	var files []*archive.File
	var err error

	if len(o.args) > 0 {
		baseDir, files, err = e.EnumerateDir(o.args[0])
	} else {
		files, err = e.EnumerateList(os.Stdin)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "ar-mrzip:", err)
		return 1
	}

	cache := openCache(o.cacheDir, log)
	if cache != nil {
		defer cache.Close()
	}

	h := &archive.Hasher{BaseDir: baseDir, Cache: cache, Log: log}
	if err := h.HashAll(files); err != nil {
		fmt.Fprintln(os.Stderr, "ar-mrzip:", err)
		return 1
	}

	archive.OrderBySimilarity(files)
	archive.AssignOffsets(files)

	if o.mode == modeDryCreate {
		log.Infow("dry run complete", "files", len(files))
		return 0
	}

	w := &archive.Writer{BaseDir: baseDir, Log: log}
	if o.translate != "" {
		from, to, err := parseTranslate(o.translate)
		if err != nil {
			fmt.Fprintln(os.Stderr, "ar-mrzip:", err)
			return 1
		}
		pattern, err := regexp.Compile(from)
		if err != nil {
			fmt.Fprintln(os.Stderr, "ar-mrzip:", err)
			return 1
		}
		w.Rewrite = &archive.Rewrite{Pattern: pattern, Replacement: to}
	}

	if err := w.Write(os.Stdout, files); err != nil {
		fmt.Fprintln(os.Stderr, "ar-mrzip:", err)
		return 1
	}
	return 0
}

func doExtract(o *options, selector *regexp.Regexp, log *zap.SugaredLogger) int {
	files, err := archive.ReadMetadata(os.Stdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ar-mrzip:", err)
		return 1
	}
	err = archive.Extract(os.Stdin, files, archive.ExtractOptions{
		Force:    o.force,
		Skip:     o.skip,
		Selector: selector,
		Log:      log,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "ar-mrzip:", err)
		return 1
	}
	return 0
}

func doList(o *options, selector *regexp.Regexp, log *zap.SugaredLogger) int {
	files, err := archive.ReadMetadata(os.Stdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ar-mrzip:", err)
		return 1
	}
	for _, f := range archive.List(files, selector) {
		if o.verbose {
			fmt.Printf("%10d  %s\n", f.Size, f.Path)
		} else {
			fmt.Println(f.Path)
		}
	}
	return 0
}
