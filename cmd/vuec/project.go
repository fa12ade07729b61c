package main

import (
	"fmt"
	"log"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/recera/vuec/cmd/vuec/internal/config"
	"github.com/recera/vuec/cmd/vuec/internal/template"
	"github.com/recera/vuec/internal/cache"
)

// project is the state shared by the commands: configuration, the document
// cache and a processor bound to both.
type project struct {
	dir       string
	config    *config.Config
	cache     *cache.Cache
	processor *template.Processor
}

// openProject loads the configuration of the --dir project and opens its
// cache unless --no-cache is set.
func openProject(cmd *cobra.Command) (*project, error) {
	dir, _ := cmd.Flags().GetString("dir")
	noCache, _ := cmd.Flags().GetBool("no-cache")

	cfg, err := config.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	p := &project{dir: dir, config: cfg}
	if !noCache {
		c, err := template.OpenCache(cfg, dir, slog.Default())
		if err != nil {
			// Continue without cache
			log.Printf("⚠️  Failed to open document cache: %v", err)
		} else {
			p.cache = c
		}
	}
	p.processor = template.NewProcessor(cfg, p.cache, slog.Default())
	return p, nil
}

// sourceDir returns the configured template directory.
func (p *project) sourceDir() string {
	if filepath.IsAbs(p.config.SourceDir) {
		return p.config.SourceDir
	}
	return filepath.Join(p.dir, p.config.SourceDir)
}

func (p *project) Close() error {
	if p.cache == nil {
		return nil
	}
	return p.cache.Close()
}
