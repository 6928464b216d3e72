package server

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"yatube/internal/models"
)

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, "signup", map[string]any{"User": s.currentUser(r)})
	case http.MethodPost:
		email := r.FormValue("email")
		username := r.FormValue("username")
		password := r.FormValue("password")
		if email == "" || username == "" || password == "" {
			s.render(w, "signup", map[string]any{"Error": "all fields are required"})
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			http.Error(w, "could not create user", http.StatusInternalServerError)
			return
		}
		if err := models.CreateUser(s.DB, email, username, string(hash)); err != nil {
			s.render(w, "signup", map[string]any{"Error": err.Error()})
			return
		}
		http.Redirect(w, r, "/auth/login/", http.StatusSeeOther)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, "login", map[string]any{
			"User": s.currentUser(r),
			"Next": r.URL.Query().Get("next"),
		})
	case http.MethodPost:
		email := r.FormValue("email")
		password := r.FormValue("password")
		next := r.FormValue("next")
		user, err := models.GetUserByEmail(s.DB, email)
		if err != nil {
			s.render(w, "login", map[string]any{"Error": models.ErrInvalidCredentials.Error(), "Next": next})
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
			s.render(w, "login", map[string]any{"Error": models.ErrInvalidCredentials.Error(), "Next": next})
			return
		}
		sid := uuid.NewString()
		expires := time.Now().Add(24 * time.Hour)
		if err := models.CreateSession(s.DB, user.ID, sid, expires); err != nil {
			http.Error(w, "could not create session", http.StatusInternalServerError)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: s.CookieName, Value: sid, Path: "/", Expires: expires, HttpOnly: true})
		if !strings.HasPrefix(next, "/") {
			next = "/"
		}
		http.Redirect(w, r, next, http.StatusSeeOther)
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(s.CookieName)
	if err == nil {
		models.RevokeSession(s.DB, cookie.Value)
		http.SetCookie(w, &http.Cookie{Name: s.CookieName, Path: "/", MaxAge: -1})
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// requireAuth redirects anonymous requests to the login page, carrying the
// original target in the next parameter.
func (s *Server) requireAuth(next func(http.ResponseWriter, *http.Request, *models.User)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := s.currentUser(r)
		if user == nil {
			http.Redirect(w, r, "/auth/login/?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
			return
		}
		next(w, r, user)
	}
}

func (s *Server) currentUser(r *http.Request) *models.User {
	cookie, err := r.Cookie(s.CookieName)
	if err != nil {
		return nil
	}
	sess, err := models.GetSession(s.DB, cookie.Value)
	if err != nil || sess.RevokedAt != nil || sess.ExpiresAt.Before(time.Now()) {
		return nil
	}
	user, err := models.GetUserByID(s.DB, sess.UserID)
	if err != nil {
		return nil
	}
	return user
}
