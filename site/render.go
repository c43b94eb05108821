package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/iedon/docnav-go/fsutil"
	"github.com/iedon/docnav-go/templatex"
	"github.com/iedon/docnav-go/toc"
)

const (
	generatorName   = "docnav"
	searchIndexFile = "search-index.json"
	notFoundFile    = "404.html"
	indexFile       = "index.html"
	themeDir        = "theme"
)

// renderEntries renders <section>/<entry>.md for every outline entry. The
// Markdown source wins over a ready-made .html file of the same name. Entries
// backed only by an .html file are left to copyAssets; entries with neither
// are recorded as missing.
func (s *Service) renderEntries(ctx context.Context, dir string, outline toc.Outline, report *Report) ([]page, error) {
	base := s.entryBase()
	entries := outline.Entries()
	docs := make([]page, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rel := path.Join(base, entry.Href)
		if _, dup := seen[rel]; dup {
			continue
		}
		seen[rel] = struct{}{}

		mdRel := markdownPathFrom(rel)
		src, err := os.ReadFile(s.sourcePath(mdRel))
		switch {
		case err == nil:
			doc, err := s.renderEntry(dir, entry, rel, mdRel, src)
			if err != nil {
				return nil, err
			}
			docs = append(docs, doc)
			report.Rendered++
		case errors.Is(err, fs.ErrNotExist):
			if fileExists(s.sourcePath(rel)) {
				report.Static++
				continue
			}
			report.Missing = append(report.Missing, entry.Href)
			s.logger.Warn("toc target missing", "section", entry.Section, "entry", entry.Title, "href", entry.Href)
		default:
			return nil, fmt.Errorf("read %s: %w", mdRel, err)
		}
	}
	return docs, nil
}

func (s *Service) renderEntry(dir string, entry toc.Entry, rel, mdRel string, src []byte) (page, error) {
	rendered, err := s.renderer.Render(src)
	if err != nil {
		return page{}, fmt.Errorf("render %s: %w", mdRel, err)
	}

	title := entry.Title
	if rendered.Title != "" {
		title = rendered.Title
	}
	headings := make([]templatex.Heading, 0, len(rendered.Headings))
	for _, h := range rendered.Headings {
		headings = append(headings, templatex.Heading{ID: h.ID, Text: h.Text, Level: h.Level})
	}

	doc := page{
		Source:    mdRel,
		Route:     rel,
		Section:   entry.Section,
		Title:     title,
		HTML:      template.HTML(rendered.HTML),
		Headings:  headings,
		Summary:   summarize(rendered.PlainText),
		PlainText: rendered.PlainText,
	}

	data := &templatex.PageData{
		Title:       doc.Title,
		PageTitle:   pageTitle(doc.Title, s.cfg.SiteName),
		SiteName:    s.cfg.SiteName,
		Section:     doc.Section,
		Description: metaDescription(doc.Summary, doc.Title),
		ContentHTML: doc.HTML,
		Headings:    doc.Headings,
		ContentPane: toc.ContentPane,
		Generator:   generatorName,
	}
	var buf bytes.Buffer
	if err := s.templates.Render(&buf, templatex.LayoutTemplate, data); err != nil {
		return page{}, fmt.Errorf("layout %s: %w", rel, err)
	}
	if err := s.writePage(dir, rel, buf.Bytes()); err != nil {
		return page{}, err
	}
	return doc, nil
}

// copyAssets copies every source file that is not Markdown, not hidden, not
// the host page and not already rendered. It returns the number of files copied.
func (s *Service) copyAssets(ctx context.Context, dir string, rendered map[string]struct{}) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	skipDirs := map[string]struct{}{}
	for _, p := range []string{s.cfg.OutputDir, s.cfg.OutputDir + ".old"} {
		if abs, err := filepath.Abs(p); err == nil {
			skipDirs[abs] = struct{}{}
		}
	}

	copied, err := fsutil.CopyTree(s.cfg.SourceDir, dir, func(rel string, d fs.DirEntry) bool {
		if isIgnorable(d.Name()) {
			return true
		}
		if d.IsDir() {
			abs, err := filepath.Abs(s.sourcePath(rel))
			if err != nil {
				return false
			}
			_, skip := skipDirs[abs]
			return skip
		}
		if _, done := rendered[rel]; done {
			return true
		}
		return isMarkdown(rel) || rel == s.cfg.TOCPage
	})
	if err != nil {
		return copied, fmt.Errorf("copy assets: %w", err)
	}
	return copied, nil
}

// writeIndex writes the frameset entry page unless the sources ship their own.
func (s *Service) writeIndex(dir string, outline toc.Outline) error {
	if fileExists(s.sourcePath(indexFile)) || s.cfg.TOCPage == indexFile {
		return nil
	}
	home := s.cfg.TOCPage
	if entries := outline.Entries(); len(entries) > 0 {
		home = path.Join(s.entryBase(), entries[0].Href)
	}
	data := &templatex.PageData{
		Title:       s.cfg.SiteName,
		PageTitle:   s.cfg.SiteName,
		SiteName:    s.cfg.SiteName,
		ContentPane: toc.ContentPane,
		TOCPage:     s.cfg.TOCPage,
		Home:        home,
		Generator:   generatorName,
	}
	var buf bytes.Buffer
	if err := s.templates.Render(&buf, templatex.FramesetTemplate, data); err != nil {
		return fmt.Errorf("render frameset: %w", err)
	}
	return s.writePage(dir, indexFile, buf.Bytes())
}

func (s *Service) writeNotFoundPage(dir string) error {
	body, err := s.RenderNotFoundPage("")
	if err != nil {
		return err
	}
	return s.writePage(dir, notFoundFile, body)
}

// RenderNotFoundPage renders the themed 404 page.
func (s *Service) RenderNotFoundPage(requestedPath string) ([]byte, error) {
	requested := ""
	if strings.TrimSpace(requestedPath) != "" {
		requested = sanitizeRoute(requestedPath)
	}
	data := &templatex.PageData{
		Title:         "404 - Not found",
		PageTitle:     pageTitle("404 - Not found", s.cfg.SiteName),
		SiteName:      s.cfg.SiteName,
		ContentPane:   toc.ContentPane,
		RequestedPath: requested,
		Generator:     generatorName,
	}
	var buf bytes.Buffer
	if err := s.templates.Render(&buf, templatex.NotFoundContentTemplate, data); err != nil {
		return nil, fmt.Errorf("render 404: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *Service) sourcePath(rel string) string {
	return filepath.Join(s.cfg.SourceDir, filepath.FromSlash(rel))
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
