// Package cpanmetatest provides an in-process CPAN meta API for tests.
//
// The server implements the v1 and v2 endpoints over a small fixed index and
// records every request it receives:
//
//	srv := cpanmetatest.NewServer()
//	defer srv.Close()
//	client := cpanmeta.NewClient(cache.NewNullCache(), 0, cpanmeta.Options{BaseURL: srv.URL})
package cpanmetatest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/cpanmeta/pkg/search"
)

// LastUpdated is the epoch reported by v2 responses.
const LastUpdated int64 = 1700000000

// Request is one request seen by the server.
type Request struct {
	Path  string
	Query url.Values
	ID    string // X-Request-Id
}

// Server is a fake CPAN meta API.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	requests []Request
	failures int
	status   int

	Packages []search.Record
	Perms    []search.Record
	Authors  []search.Record
}

// NewServer starts a server seeded with the default index.
func NewServer() *Server {
	s := &Server{
		Packages: DefaultPackages(),
		Perms:    DefaultPerms(),
		Authors:  DefaultAuthors(),
	}
	s.Server = httptest.NewServer(s.routes())
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.record)

	r.Route("/api/{version:v[12]}", func(r chi.Router) {
		r.Get("/packages/{query}", s.handlePackages)
		r.Get("/perms/by-module/{query}", s.handlePermsByModule)
		r.Get("/perms/by-author/{author}", s.handlePermsByAuthor)
		r.Get("/perms", s.handlePerms)
		r.Get("/authors/{query}", s.handleAuthors)
	})
	return r
}

// Requests returns the requests received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// FailNext makes the next n requests answer with status.
func (s *Server) FailNext(n, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures, s.status = n, status
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Path:  r.URL.Path,
			Query: r.URL.Query(),
			ID:    middleware.GetReqID(r.Context()),
		})
		fail := s.failures > 0
		if fail {
			s.failures--
		}
		status := s.status
		s.mu.Unlock()

		if fail {
			http.Error(w, http.StatusText(status), status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handlePackages(w http.ResponseWriter, r *http.Request) {
	match := matcher(r, param(r, "query"))
	var out []search.Record
	for _, rec := range s.Packages {
		if match(rec.Module) {
			out = append(out, rec)
		}
	}
	s.respond(w, r, out)
}

func (s *Server) handlePermsByModule(w http.ResponseWriter, r *http.Request) {
	match := matcher(r, param(r, "query"))
	var out []search.Record
	for _, rec := range s.Perms {
		if match(rec.Module) {
			out = append(out, rec)
		}
	}
	s.respond(w, r, out)
}

func (s *Server) handlePermsByAuthor(w http.ResponseWriter, r *http.Request) {
	author := param(r, "author")
	var out []search.Record
	for _, rec := range s.Perms {
		if strings.EqualFold(rec.Author, author) {
			out = append(out, rec)
		}
	}
	s.respond(w, r, out)
}

// handlePerms serves the combined v2 endpoint.
func (s *Server) handlePerms(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "version") != "v2" {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	author, module := q.Get("author"), q.Get("module")
	matchModule := func(string) bool { return true }
	if module != "" {
		matchModule = matcher(r, module)
	}
	byAuthor := func(rec search.Record) bool {
		return author == "" || strings.EqualFold(rec.Author, author)
	}

	var out []search.Record
	if q.Get("other_authors") == "1" {
		modules := map[string]bool{}
		for _, rec := range s.Perms {
			if byAuthor(rec) && matchModule(rec.Module) {
				modules[rec.Module] = true
			}
		}
		for _, rec := range s.Perms {
			if modules[rec.Module] {
				out = append(out, rec)
			}
		}
	} else {
		for _, rec := range s.Perms {
			if byAuthor(rec) && matchModule(rec.Module) {
				out = append(out, rec)
			}
		}
	}
	s.respond(w, r, out)
}

func (s *Server) handleAuthors(w http.ResponseWriter, r *http.Request) {
	match := matcher(r, param(r, "query"))
	var out []search.Record
	for _, rec := range s.Authors {
		if match(rec.Author) {
			out = append(out, rec)
		}
	}
	s.respond(w, r, out)
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, records []search.Record) {
	if records == nil {
		records = []search.Record{}
	}
	w.Header().Set("Content-Type", "application/json")
	if chi.URLParam(r, "version") == "v1" {
		_ = json.NewEncoder(w).Encode(records)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data":         records,
		"last_updated": LastUpdated,
	})
}

func param(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

// matcher applies as_prefix and match_mode the way the API does,
// case-insensitively.
func matcher(r *http.Request, text string) func(string) bool {
	q := r.URL.Query()
	text = strings.ToLower(text)
	switch {
	case q.Get("match_mode") == "infix":
		return func(s string) bool { return strings.Contains(strings.ToLower(s), text) }
	case q.Get("as_prefix") == "1":
		return func(s string) bool { return strings.HasPrefix(strings.ToLower(s), text) }
	default:
		return func(s string) bool { return strings.ToLower(s) == text }
	}
}
