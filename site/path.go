package site

import (
	"errors"
	"path"
	"path/filepath"
	"strings"
)

// StaticDocumentPath resolves the file in the output directory serving a request path.
func (s *Service) StaticDocumentPath(requestPath string) (string, error) {
	if strings.Contains(requestPath, "\x00") {
		return "", errors.Join(ErrInvalidPath, errors.New("contains null byte"))
	}
	route := sanitizeRoute(requestPath)
	if route == "/" {
		return filepath.Join(s.cfg.OutputDir, indexFile), nil
	}
	rel := strings.TrimPrefix(route, "/")
	if path.Ext(rel) == "" {
		rel += ".html"
	}
	return filepath.Join(s.cfg.OutputDir, filepath.FromSlash(rel)), nil
}

// NotFoundDocumentPath returns the static 404 page path.
func (s *Service) NotFoundDocumentPath() string {
	return filepath.Join(s.cfg.OutputDir, notFoundFile)
}

func sanitizeRoute(input string) string {
	route := strings.TrimSpace(strings.ReplaceAll(input, "\\", "/"))
	if route == "" {
		return "/"
	}
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	cleaned := path.Clean(route)
	if cleaned == "." {
		cleaned = "/"
	}
	return cleaned
}

func markdownPathFrom(htmlRel string) string {
	return strings.TrimSuffix(htmlRel, path.Ext(htmlRel)) + ".md"
}

func isMarkdown(p string) bool {
	return strings.EqualFold(path.Ext(p), ".md")
}

func isIgnorable(name string) bool {
	return strings.HasPrefix(name, ".")
}
