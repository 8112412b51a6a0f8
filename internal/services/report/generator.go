package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ecoci/ecoci/internal/domain/experiment"
	"github.com/ecoci/ecoci/internal/domain/resultrow"
	"github.com/ecoci/ecoci/internal/services/analyzer"
	"github.com/ecoci/ecoci/pkg/mlog"
)

const (
	writeMaxAttempts = 4
	writeRetryPause  = 2 * time.Second
)

// Renderer is the external templating collaborator:
// index.html, full.html, downloads.html, and markdown.md are produced
// by whatever engine is wired in at the bootstrap layer; this package
// only calls it with the analyzer's view.
type Renderer interface {
	RenderIndexHTML(w *os.File, rep analyzer.Report, exp experiment.Experiment) error
	RenderFullHTML(w *os.File, rep analyzer.Report, exp experiment.Experiment) error
	RenderDownloadsHTML(w *os.File, exp experiment.Experiment) error
	RenderMarkdown(w *os.File, rep analyzer.Report, exp experiment.Experiment) error
}

// LogSource resolves a package/toolchain pair's plain-text log for
// archiving.
type LogSource func(pkg, toolchain string) ([]byte, bool)

// Generator implements the single dedicated report worker.
type Generator struct {
	renderer Renderer
	logger   mlog.Logger
	outDir   func(experimentName string) string
}

func New(renderer Renderer, outDir func(string) string, logger mlog.Logger) *Generator {
	if logger == nil {
		logger = &mlog.NoneLogger{}
	}

	return &Generator{renderer: renderer, outDir: outDir, logger: logger}
}

// Generate runs the full pipeline for one experiment already
// transitioned to generating-report: write JSON sidecars, build
// archives, render HTML/Markdown. Every file write is retried up to
// writeMaxAttempts times with writeRetryPause between attempts.
func (g *Generator) Generate(ctx context.Context, exp experiment.Experiment, rows []resultrow.Row, shas []resultrow.SHA, logSource LogSource) error {
	dir := g.outDir(exp.Name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir report dir: %w", err)
	}

	rep := analyzer.Analyze(rows, exp.Toolchains[0].Name(), exp.Toolchains[1].Name())

	if err := g.retryWrite(ctx, "results.json", func() error { return writeJSON(filepath.Join(dir, "results.json"), rep) }); err != nil {
		return err
	}

	if err := g.retryWrite(ctx, "config.json", func() error { return writeJSON(filepath.Join(dir, "config.json"), exp) }); err != nil {
		return err
	}

	if err := g.retryWrite(ctx, "shas.json", func() error { return writeJSON(filepath.Join(dir, "shas.json"), shas) }); err != nil {
		return err
	}

	archiveDir := filepath.Join(dir, "logs-archives")
	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return fmt.Errorf("mkdir archive dir: %w", err)
	}

	allFiles := allLogFiles(rep, logSource)

	if err := g.retryWrite(ctx, "all.tar.zst", func() error { return BuildAllArchive(archiveDir, allFiles) }); err != nil {
		return err
	}

	byClass := GroupLogsByClassification(rep, logSource)

	if err := g.retryWrite(ctx, "classification archives", func() error { return BuildClassificationArchives(archiveDir, byClass) }); err != nil {
		return err
	}

	if g.renderer != nil {
		if err := g.renderAll(dir, rep, exp); err != nil {
			return err
		}
	}

	return nil
}

func allLogFiles(rep analyzer.Report, logSource LogSource) []LogFile {
	var out []LogFile

	for class, crates := range rep.ByClassification {
		for _, cr := range crates {
			for _, tc := range toolchainsOf(cr) {
				plain, ok := logSource(cr.Package, tc)
				if !ok {
					continue
				}

				out = append(out, LogFile{Classification: string(class), Package: cr.Package, Toolchain: tc, Plain: plain})
			}
		}
	}

	return out
}

func (g *Generator) renderAll(dir string, rep analyzer.Report, exp experiment.Experiment) error {
	renders := []struct {
		name string
		fn   func(*os.File) error
	}{
		{"index.html", func(f *os.File) error { return g.renderer.RenderIndexHTML(f, rep, exp) }},
		{"full.html", func(f *os.File) error { return g.renderer.RenderFullHTML(f, rep, exp) }},
		{"downloads.html", func(f *os.File) error { return g.renderer.RenderDownloadsHTML(f, exp) }},
		{"markdown.md", func(f *os.File) error { return g.renderer.RenderMarkdown(f, rep, exp) }},
	}

	for _, r := range renders {
		path := filepath.Join(dir, r.name)

		if err := g.retryWrite(context.Background(), r.name, func() error {
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			defer f.Close()

			return r.fn(f)
		}); err != nil {
			return err
		}
	}

	return nil
}

func (g *Generator) retryWrite(ctx context.Context, what string, fn func() error) error {
	var err error

	for attempt := 1; attempt <= writeMaxAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}

		g.logger.Warnf("report write %q attempt %d/%d failed: %v", what, attempt, writeMaxAttempts, err)

		if attempt < writeMaxAttempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(writeRetryPause):
			}
		}
	}

	return fmt.Errorf("write %q failed after %d attempts: %w", what, writeMaxAttempts, err)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}
