package server

import (
	"bytes"
	"database/sql"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/juju/clock"

	"yatube/internal/cache"
	"yatube/internal/config"
	"yatube/internal/pagination"
)

// cacheTTL bounds how stale the home feed may get. Writes never invalidate
// the cache; only expiry does.
const cacheTTL = 20 * time.Second

type Server struct {
	DB  *sql.DB
	Cfg config.Config

	tmpl      map[string]*template.Template
	pageCache *cache.Cache

	CookieName string
}

func New(db *sql.DB, cfg config.Config, clk clock.Clock) (*Server, error) {
	templates := map[string]*template.Template{}
	layout := filepath.Join(cfg.TemplateDir, "layout.html")
	pages, err := filepath.Glob(filepath.Join(cfg.TemplateDir, "*.html"))
	if err != nil {
		return nil, err
	}
	for _, page := range pages {
		if filepath.Base(page) == "layout.html" {
			continue
		}
		t, err := template.ParseFiles(layout, page)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(filepath.Base(page), ".html")
		templates[name] = t
	}
	if err := os.MkdirAll(cfg.MediaDir, 0755); err != nil {
		return nil, err
	}
	return &Server{
		DB:         db,
		Cfg:        cfg,
		tmpl:       templates,
		pageCache:  cache.New(clk, cacheTTL),
		CookieName: "session_id",
	}, nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.NotFound(s.handleNotFound)

	r.Get("/", s.cachePage(s.handleIndex))
	r.Get("/group/{slug}/", s.handleGroup)
	r.Get("/profile/{username}/", s.handleProfile)
	r.Get("/posts/{id}/", s.handlePostDetail)

	r.Get("/create/", s.requireAuth(s.handleCreatePost))
	r.Post("/create/", s.requireAuth(s.handleCreatePost))
	r.Get("/posts/{id}/edit/", s.requireAuth(s.handleEditPost))
	r.Post("/posts/{id}/edit/", s.requireAuth(s.handleEditPost))
	r.Post("/posts/{id}/comment/", s.requireAuth(s.handleComment))
	r.Get("/follow/", s.requireAuth(s.handleFollowIndex))
	r.Get("/profile/{username}/follow/", s.requireAuth(s.handleFollow))
	r.Get("/profile/{username}/unfollow/", s.requireAuth(s.handleUnfollow))

	r.Get("/about/author/", s.handleAboutAuthor)
	r.Get("/about/tech/", s.handleAboutTech)

	r.Get("/auth/signup/", s.handleSignup)
	r.Post("/auth/signup/", s.handleSignup)
	r.Get("/auth/login/", s.handleLogin)
	r.Post("/auth/login/", s.handleLogin)
	r.Post("/auth/logout/", s.handleLogout)

	r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(s.Cfg.MediaDir))))
	return r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.routes().ServeHTTP(w, r)
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	s.renderStatus(w, http.StatusOK, name, data)
}

func (s *Server) renderStatus(w http.ResponseWriter, status int, name string, data any) {
	t, ok := s.tmpl[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		http.Error(w, "render error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// pageRecorder tees the response body so a successful render can be cached.
type pageRecorder struct {
	http.ResponseWriter
	buf    bytes.Buffer
	status int
}

func (r *pageRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *pageRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.buf.Write(b)
	return r.ResponseWriter.Write(b)
}

// cachePage serves the wrapped handler's output from the page cache when a
// fresh enough copy exists, keyed by route, page number and page size.
func (s *Server) cachePage(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := cache.Key(r.URL.Path, r.URL.Query().Get("page"), pagination.PageSize)
		if body, ok := s.pageCache.Get(key); ok {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write(body)
			return
		}
		rec := &pageRecorder{ResponseWriter: w}
		next(rec, r)
		if rec.status == http.StatusOK {
			s.pageCache.Set(key, rec.buf.Bytes())
		}
	}
}
