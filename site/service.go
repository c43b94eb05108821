package site

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/iedon/docnav-go/config"
	"github.com/iedon/docnav-go/fsutil"
	"github.com/iedon/docnav-go/renderer"
	"github.com/iedon/docnav-go/templatex"
	"github.com/iedon/docnav-go/toc"
	"golang.org/x/net/html"
)

// Service orchestrates the TOC build, content page rendering and output.
type Service struct {
	cfg       *config.Config
	templates *templatex.Engine
	renderer  *renderer.Renderer
	logger    *slog.Logger

	buildMu sync.Mutex
	state   *StateCache
	search  *SearchCatalog
}

// NewService constructs a Service instance.
func NewService(cfg *config.Config, templates *templatex.Engine, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return &Service{
		cfg:       cfg,
		templates: templates,
		renderer:  renderer.New(!cfg.DisableMinify),
		logger:    logger,
		state:     newStateCache(),
		search:    newSearchCatalog(),
	}
}

// Outline parses the host page and returns its outline without writing anything.
func (s *Service) Outline(ctx context.Context) (toc.Outline, error) {
	if err := ctx.Err(); err != nil {
		return toc.Outline{}, err
	}
	_, tree, err := s.loadHostPage()
	if err != nil {
		return toc.Outline{}, err
	}
	return tree.Outline, nil
}

// BuildStatic renders the host page with its TOC, the pages the TOC links to
// and the supporting files into the output directory. The previous output is
// replaced only after the whole tree has been written.
func (s *Service) BuildStatic(ctx context.Context) (*Report, error) {
	if !s.buildMu.TryLock() {
		return nil, ErrBuildInProgress
	}
	defer s.buildMu.Unlock()

	if err := s.cfg.CheckDirs(); err != nil {
		return nil, err
	}

	finalDir := s.cfg.OutputDir
	parent := filepath.Dir(finalDir)
	if parent == "" {
		parent = "."
	}
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, fmt.Errorf("ensure output parent: %w", err)
	}

	tempDir, err := os.MkdirTemp(parent, ".__build-")
	if err != nil {
		return nil, fmt.Errorf("create temp output dir: %w", err)
	}
	cleanTemp := true
	defer func() {
		if cleanTemp {
			_ = os.RemoveAll(tempDir)
		}
	}()

	report, docs, err := s.buildInto(ctx, tempDir)
	if err != nil {
		return nil, err
	}

	indexJSON, err := buildSearchIndex(docs)
	if err != nil {
		return nil, fmt.Errorf("build search index: %w", err)
	}
	if err := os.WriteFile(filepath.Join(tempDir, searchIndexFile), indexJSON, 0o644); err != nil {
		return nil, fmt.Errorf("write search index: %w", err)
	}

	backupDir := finalDir + ".old"
	if err := os.RemoveAll(backupDir); err != nil {
		return nil, fmt.Errorf("clean backup dir: %w", err)
	}
	if err := os.Rename(finalDir, backupDir); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("rotate old output: %w", err)
	}
	if err := os.Rename(tempDir, finalDir); err != nil {
		_ = os.Rename(backupDir, finalDir)
		return nil, fmt.Errorf("activate new output: %w", err)
	}
	_ = os.RemoveAll(backupDir)
	cleanTemp = false

	s.search.Update(indexJSON)
	s.state.Update(report)
	s.logger.Info("build completed",
		"output", finalDir,
		"sections", report.Sections,
		"entries", report.Entries,
		"rendered", report.Rendered,
		"missing", len(report.Missing),
	)
	return report, nil
}

func (s *Service) buildInto(ctx context.Context, dir string) (*Report, []page, error) {
	doc, tree, err := s.loadHostPage()
	if err != nil {
		return nil, nil, err
	}

	var buf bytes.Buffer
	if err := toc.RenderPage(&buf, doc); err != nil {
		return nil, nil, fmt.Errorf("render %s: %w", s.cfg.TOCPage, err)
	}
	if err := s.writePage(dir, s.cfg.TOCPage, buf.Bytes()); err != nil {
		return nil, nil, err
	}

	report := newReport(tree.Outline)
	docs, err := s.renderEntries(ctx, dir, tree.Outline, report)
	if err != nil {
		return nil, nil, err
	}

	rendered := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		rendered[doc.Route] = struct{}{}
	}
	copied, err := s.copyAssets(ctx, dir, rendered)
	if err != nil {
		return nil, nil, err
	}
	report.Copied = copied

	if s.templates.StaticDir != "" {
		if _, err := fsutil.CopyTree(s.templates.StaticDir, filepath.Join(dir, themeDir), nil); err != nil {
			return nil, nil, fmt.Errorf("copy theme assets: %w", err)
		}
	}

	if err := s.writeIndex(dir, tree.Outline); err != nil {
		return nil, nil, err
	}
	if err := s.writeNotFoundPage(dir); err != nil {
		return nil, nil, err
	}
	return report, docs, nil
}

func (s *Service) loadHostPage() (*html.Node, *toc.Tree, error) {
	file, err := os.Open(s.cfg.TOCPagePath())
	if err != nil {
		return nil, nil, fmt.Errorf("open host page: %w", err)
	}
	defer file.Close()

	doc, err := toc.ParsePage(file)
	if err != nil {
		return nil, nil, fmt.Errorf("parse host page: %w", err)
	}
	tree, err := toc.BuildPage(doc)
	if err != nil {
		return nil, nil, fmt.Errorf("build toc for %s: %w", s.cfg.TOCPage, err)
	}
	return doc, tree, nil
}

func (s *Service) writePage(dir, rel string, raw []byte) error {
	minified, err := s.renderer.MinifyHTML(raw)
	if err != nil {
		return fmt.Errorf("minify %s: %w", rel, err)
	}
	target := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(target, minified, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	return nil
}

// SearchIndex returns a snapshot of the current search dataset.
func (s *Service) SearchIndex() json.RawMessage {
	payload := s.search.Snapshot()
	if len(payload) == 0 {
		return append(json.RawMessage(nil), emptySearchIndexJSON...)
	}
	return payload
}

// LastReport returns the report of the most recent successful build, if any.
func (s *Service) LastReport() (*Report, bool) {
	snap := s.state.Snapshot()
	return snap.Report, snap.Report != nil
}

// entryBase is the directory entry hrefs are relative to.
func (s *Service) entryBase() string {
	return path.Dir(s.cfg.TOCPage)
}
