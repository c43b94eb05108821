package site

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iedon/docnav-go/config"
	"github.com/iedon/docnav-go/templatex"
	"github.com/iedon/docnav-go/toc"
)

const hostPage = `<!DOCTYPE html>
<html><head><title>Contents</title></head>
<body><pre id="tocText" style="display:none">
Getting Started
* Install
* Quick Start

Advanced Topics
* Plugins
</pre></body></html>`

func writeSource(t *testing.T, root, rel, content string) {
	t.Helper()
	target := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(target), 0o755))
	require.NoError(t, os.WriteFile(target, []byte(content), 0o644))
}

func readOutput(t *testing.T, cfg *config.Config, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(cfg.OutputDir, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func newTestService(t *testing.T, minify bool) (*Service, *config.Config) {
	t.Helper()
	root := t.TempDir()
	cfg := &config.Config{
		SourceDir:     filepath.Join(root, "src"),
		OutputDir:     filepath.Join(root, "out"),
		TOCPage:       "toc.html",
		SiteName:      "Docs",
		DisableMinify: !minify,
	}
	templates, err := templatex.Load("")
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(cfg, templates, logger), cfg
}

func seedSite(t *testing.T, cfg *config.Config) {
	t.Helper()
	writeSource(t, cfg.SourceDir, "toc.html", hostPage)
	writeSource(t, cfg.SourceDir, "getting-started/install.md", "---\ntitle: Installing docnav\n---\n# Requirements\n\nA Go toolchain.\n")
	writeSource(t, cfg.SourceDir, "getting-started/quick-start.html", "<p>ready made</p>")
	writeSource(t, cfg.SourceDir, "style.css", "body { margin: 0 }")
	writeSource(t, cfg.SourceDir, "notes.md", "# unreferenced")
	writeSource(t, cfg.SourceDir, ".git/config", "[core]")
}

func TestBuildStatic(t *testing.T) {
	svc, cfg := newTestService(t, false)
	seedSite(t, cfg)
	// shadowed by install.md
	writeSource(t, cfg.SourceDir, "getting-started/install.html", "<p>static</p>")

	report, err := svc.BuildStatic(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Sections)
	assert.Equal(t, 3, report.Entries)
	assert.Equal(t, 1, report.Rendered)
	assert.Equal(t, 1, report.Static)
	assert.Equal(t, 2, report.Copied)
	assert.Equal(t, []string{"advanced-topics/plugins.html"}, report.Missing)

	tocPage := readOutput(t, cfg, "toc.html")
	assert.Contains(t, tocPage, `<div id="tocList"><ul><li>Getting Started<ul>`)
	assert.Contains(t, tocPage, `<a href="getting-started/install.html" target="content">Install</a>`)
	assert.Contains(t, tocPage, `<a href="getting-started/quick-start.html" target="content">Quick Start</a>`)
	assert.Contains(t, tocPage, `<a href="advanced-topics/plugins.html" target="content">Plugins</a>`)

	install := readOutput(t, cfg, "getting-started/install.html")
	assert.Contains(t, install, "<title>Installing docnav - Docs</title>")
	assert.Contains(t, install, `<h1 id="requirements">Requirements</h1>`)
	assert.Contains(t, install, "Getting Started")
	assert.NotContains(t, install, "<p>static</p>")

	assert.Equal(t, "<p>ready made</p>", readOutput(t, cfg, "getting-started/quick-start.html"))
	assert.Contains(t, readOutput(t, cfg, "index.html"), `<frame src="getting-started/install.html" name="content">`)
	assert.Contains(t, readOutput(t, cfg, "404.html"), "404 - Not found")

	assert.NoFileExists(t, filepath.Join(cfg.OutputDir, "notes.md"))
	assert.NoFileExists(t, filepath.Join(cfg.OutputDir, "notes.html"))
	assert.NoDirExists(t, filepath.Join(cfg.OutputDir, ".git"))

	var index searchPayload
	require.NoError(t, json.Unmarshal([]byte(readOutput(t, cfg, searchIndexFile)), &index))
	assert.Equal(t, 1, index.DocCount)
	require.Len(t, index.Docs, 1)
	assert.Equal(t, "getting-started/install.html", index.Docs[0][0])
	assert.Equal(t, "Getting Started", index.Docs[0][2])
	assert.Contains(t, index.Terms, "toolchain")
	assert.JSONEq(t, readOutput(t, cfg, searchIndexFile), string(svc.SearchIndex()))

	last, ok := svc.LastReport()
	require.True(t, ok)
	assert.Same(t, report, last)
}

func TestBuildStaticReplacesOutput(t *testing.T) {
	svc, cfg := newTestService(t, false)
	seedSite(t, cfg)

	_, err := svc.BuildStatic(context.Background())
	require.NoError(t, err)
	writeSource(t, cfg.OutputDir, "stale.html", "old")

	writeSource(t, cfg.SourceDir, "advanced-topics/plugins.md", "# Plugins\n")
	report, err := svc.BuildStatic(context.Background())
	require.NoError(t, err)

	assert.Empty(t, report.Missing)
	assert.Equal(t, 2, report.Rendered)
	assert.NoFileExists(t, filepath.Join(cfg.OutputDir, "stale.html"))
	assert.NoDirExists(t, cfg.OutputDir+".old")
	assert.FileExists(t, filepath.Join(cfg.OutputDir, "advanced-topics", "plugins.html"))
}

func TestBuildStaticMinified(t *testing.T) {
	svc, cfg := newTestService(t, true)
	seedSite(t, cfg)

	_, err := svc.BuildStatic(context.Background())
	require.NoError(t, err)

	tocPage := readOutput(t, cfg, "toc.html")
	assert.Contains(t, tocPage, `id="tocList"`)
	assert.Contains(t, tocPage, "* Quick Start")
	assert.Contains(t, tocPage, `href="getting-started/install.html"`)
}

func TestBuildStaticWithoutSourceElement(t *testing.T) {
	svc, cfg := newTestService(t, false)
	writeSource(t, cfg.SourceDir, "toc.html", "<html><body><p>no outline</p></body></html>")

	report, err := svc.BuildStatic(context.Background())
	assert.ErrorIs(t, err, toc.ErrSourceMissing)
	assert.Nil(t, report)
	assert.NoDirExists(t, cfg.OutputDir)

	_, ok := svc.LastReport()
	assert.False(t, ok)
	assert.JSONEq(t, string(emptySearchIndexJSON), string(svc.SearchIndex()))
}

func TestBuildStaticWithoutHostPage(t *testing.T) {
	svc, _ := newTestService(t, false)
	_, err := svc.BuildStatic(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestBuildStaticRejectsConcurrentBuild(t *testing.T) {
	svc, cfg := newTestService(t, false)
	seedSite(t, cfg)

	svc.buildMu.Lock()
	_, err := svc.BuildStatic(context.Background())
	svc.buildMu.Unlock()
	assert.ErrorIs(t, err, ErrBuildInProgress)
}

func TestBuildStaticCancelled(t *testing.T) {
	svc, cfg := newTestService(t, false)
	seedSite(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.BuildStatic(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoDirExists(t, cfg.OutputDir)
}

func TestBuildStaticNestedHostPage(t *testing.T) {
	svc, cfg := newTestService(t, false)
	cfg.TOCPage = "nav/toc.html"
	writeSource(t, cfg.SourceDir, "nav/toc.html", hostPage)
	writeSource(t, cfg.SourceDir, "nav/advanced-topics/plugins.md", "# Plugins\n")

	report, err := svc.BuildStatic(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Rendered)
	assert.FileExists(t, filepath.Join(cfg.OutputDir, "nav", "advanced-topics", "plugins.html"))
	assert.Contains(t, readOutput(t, cfg, "index.html"), `<frame src="nav/toc.html" name="navigation">`)
	assert.Contains(t, readOutput(t, cfg, "index.html"), `<frame src="nav/getting-started/install.html" name="content">`)
}

func TestBuildStaticKeepsSourceIndex(t *testing.T) {
	svc, cfg := newTestService(t, false)
	seedSite(t, cfg)
	writeSource(t, cfg.SourceDir, "index.html", "<p>custom index</p>")

	_, err := svc.BuildStatic(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "<p>custom index</p>", readOutput(t, cfg, "index.html"))
}

func TestBuildStaticRejectsSourceInsideOutput(t *testing.T) {
	svc, cfg := newTestService(t, false)
	root := filepath.Dir(cfg.SourceDir)
	cfg.OutputDir = filepath.Join(root, "site")
	cfg.SourceDir = filepath.Join(root, "site", "src")
	seedSite(t, cfg)

	_, err := svc.BuildStatic(context.Background())
	require.Error(t, err)
	assert.FileExists(t, filepath.Join(cfg.SourceDir, "toc.html"))
	assert.FileExists(t, filepath.Join(cfg.SourceDir, "getting-started", "install.md"))
}

func TestBuildStaticRejectsSourceAtBackupPath(t *testing.T) {
	svc, cfg := newTestService(t, false)
	cfg.SourceDir = cfg.OutputDir + ".old"
	seedSite(t, cfg)

	_, err := svc.BuildStatic(context.Background())
	require.Error(t, err)
	assert.FileExists(t, filepath.Join(cfg.SourceDir, "toc.html"))
}

func TestOutline(t *testing.T) {
	svc, cfg := newTestService(t, false)
	seedSite(t, cfg)

	outline, err := svc.Outline(context.Background())
	require.NoError(t, err)
	require.Len(t, outline.Sections, 2)
	assert.Equal(t, "advanced-topics/plugins.html", outline.Sections[1].Entries[0].Href)
	assert.NoDirExists(t, cfg.OutputDir)
}

func TestOutlineCancelled(t *testing.T) {
	svc, cfg := newTestService(t, false)
	seedSite(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Outline(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRenderNotFoundPage(t *testing.T) {
	svc, _ := newTestService(t, false)

	body, err := svc.RenderNotFoundPage("missing/../page")
	require.NoError(t, err)
	assert.Contains(t, string(body), "The requested path /page could not be found.")
}
