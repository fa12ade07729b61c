package template

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/recera/vuec/cmd/vuec/internal/config"
	"github.com/recera/vuec/internal/cache"
	"github.com/recera/vuec/pkg/compiler/ast"
	"github.com/recera/vuec/pkg/compiler/parser"
)

// Result is the outcome of processing one template file.
type Result struct {
	Path     string
	Template string
	// Offset is the byte offset of Template in the file.
	Offset   int
	Document ast.Document
	// Cached reports whether Document came from the cache.
	Cached bool
}

// Warnings returns the template diagnostics.
func (r *Result) Warnings() []string {
	return r.Document.Warnings
}

// Tree rebuilds the AST of the result.
func (r *Result) Tree() (*ast.Tree, error) {
	return ast.FromDocument(r.Document)
}

// Processor parses template files with one configuration.
type Processor struct {
	cfg         *config.Config
	cache       *cache.Cache
	fingerprint string
	log         *slog.Logger
}

// NewProcessor creates a processor. c may be nil to disable caching.
func NewProcessor(cfg *config.Config, c *cache.Cache, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		cfg:         cfg,
		cache:       c,
		fingerprint: cfg.Fingerprint(),
		log:         logger,
	}
}

// OpenCache opens the document cache described by cfg. It returns nil when
// caching is disabled.
func OpenCache(cfg *config.Config, projectPath string, logger *slog.Logger) (*cache.Cache, error) {
	if cfg.Cache == nil || !cfg.Cache.Enabled {
		return nil, nil
	}
	maxAge, err := cfg.CacheMaxAge()
	if err != nil {
		return nil, err
	}
	cc := cache.DefaultConfig()
	if dir := cfg.Cache.Dir; dir != "" {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(projectPath, dir)
		}
		cc.Dir = dir
	}
	cc.MaxSize = cfg.Cache.MaxSizeMB << 20
	cc.MaxAge = maxAge
	cc.Logger = logger
	return cache.New(cc)
}

// ProcessFile reads and parses one template file.
func (p *Processor) ProcessFile(filename string) (*Result, error) {
	source, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return p.ProcessSource(filename, string(source))
}

// ProcessSource parses source as the content of filename. Components have
// their <template> block extracted first; other files are parsed whole.
func (p *Processor) ProcessSource(filename, source string) (*Result, error) {
	result := &Result{Path: filename, Template: source}
	if IsComponentFile(filename) {
		block, err := ExtractTemplate(source)
		if err != nil {
			return nil, fmt.Errorf("failed to extract template: %w", err)
		}
		result.Template = block.Content
		result.Offset = block.Offset
	}

	key := cache.Key(p.fingerprint, result.Template)
	if p.cache != nil {
		if doc, ok := p.cache.Get(key); ok {
			result.Document = *doc
			result.Cached = true
			return result, nil
		}
	}

	result.Document = p.Parse(filename, result.Template)

	if p.cache != nil {
		if err := p.cache.Put(key, filename, result.Document); err != nil {
			p.log.Warn("failed to cache document", slog.String("file", filename), slog.String("error", err.Error()))
		}
	}
	return result, nil
}

// Parse parses a template without touching the cache.
func (p *Processor) Parse(filename, template string) ast.Document {
	opts := p.cfg.ToOptions(p.log.With(slog.String("file", filename)))
	opts.Warn = func(string) {}
	ps := parser.New(opts)
	tree := ps.Parse(template)
	return tree.Document(ps.Warnings())
}

// Invalidate drops cached documents for path, a file or a directory.
func (p *Processor) Invalidate(path string) int {
	if p.cache == nil {
		return 0
	}
	return p.cache.InvalidateSource(path)
}

// FindFiles lists the template files under dir. Hidden directories and
// node_modules are skipped.
func (p *Processor) FindFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != dir && (strings.HasPrefix(name, ".") || name == "node_modules") {
				return filepath.SkipDir
			}
			return nil
		}
		if p.cfg.HasExtension(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find template files: %w", err)
	}
	return files, nil
}

// Outcome pairs a file with its result or the error that stopped it.
type Outcome struct {
	Path   string
	Result *Result
	Err    error
}

// ProcessFiles parses files concurrently. Outcomes keep the order of files.
func (p *Processor) ProcessFiles(files []string) []Outcome {
	outcomes := make([]Outcome, len(files))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, file := range files {
		g.Go(func() error {
			result, err := p.ProcessFile(file)
			outcomes[i] = Outcome{Path: file, Result: result, Err: err}
			return nil
		})
	}
	g.Wait()
	return outcomes
}

// ProcessDirectory parses every template file under dir. Components without
// a <template> block are skipped. Results are sorted by path.
func (p *Processor) ProcessDirectory(dir string) ([]*Result, error) {
	files, err := p.FindFiles(dir)
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	var results []*Result
	for _, o := range p.ProcessFiles(files) {
		if errors.Is(o.Err, ErrNoTemplate) {
			p.log.Debug("skipping component without template", slog.String("file", o.Path))
			continue
		}
		if o.Err != nil {
			return nil, fmt.Errorf("failed to process %s: %w", o.Path, o.Err)
		}
		results = append(results, o.Result)
	}
	return results, nil
}
