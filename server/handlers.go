package server

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/iedon/docnav-go/site"
	"github.com/iedon/docnav-go/toc"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleOutline serves the outline of the last build, or parses the host page
// when nothing has been built yet.
func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if report, ok := s.svc.LastReport(); ok {
		writeJSON(w, http.StatusOK, report.Outline)
		return
	}
	outline, err := s.svc.Outline(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, toc.ErrSourceMissing), errors.Is(err, os.ErrNotExist):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, outline)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	report, ok := s.svc.LastReport()
	if !ok {
		writeError(w, http.StatusNotFound, "no build yet")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.authorizeRebuild(r) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	report, err := s.svc.BuildStatic(r.Context())
	if err != nil {
		if errors.Is(err, site.ErrBuildInProgress) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		s.logger.Error("rebuild", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// authorizeRebuild accepts the configured secret as the raw Authorization
// header or as a bearer token. Without a secret every request is allowed.
func (s *Server) authorizeRebuild(r *http.Request) bool {
	secret := strings.TrimSpace(s.cfg.RebuildSecret)
	if secret == "" {
		return true
	}
	token := strings.TrimSpace(r.Header.Get("Authorization"))
	if after, ok := strings.CutPrefix(token, "Bearer "); ok {
		token = strings.TrimSpace(after)
	}
	if token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(secret)) == 1
}

func (s *Server) handleSearchIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, http.StatusOK, s.svc.SearchIndex())
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	target, err := s.svc.StaticDocumentPath(r.URL.Path)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		http.ServeFile(w, r, target)
		return
	}
	s.serveNotFound(w, r)
}

func (s *Server) serveNotFound(w http.ResponseWriter, r *http.Request) {
	body, err := os.ReadFile(s.svc.NotFoundDocumentPath())
	if err != nil {
		body, err = s.svc.RenderNotFoundPage(r.URL.Path)
		if err != nil {
			s.logger.Error("render 404", "error", err)
			http.NotFound(w, r)
			return
		}
	}
	writeHTML(w, http.StatusNotFound, body)
}
