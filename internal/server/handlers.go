package server

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"yatube/internal/forms"
	"yatube/internal/models"
	"yatube/internal/pagination"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	posts, err := models.ListPosts(s.DB)
	if err != nil {
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}
	data := map[string]any{
		"PageObj": pagination.Paginate(posts, r.URL.Query().Get("page")),
		"User":    s.currentUser(r),
	}
	s.render(w, "index", data)
}

func (s *Server) handleGroup(w http.ResponseWriter, r *http.Request) {
	group, err := models.GetGroupBySlug(s.DB, chi.URLParam(r, "slug"))
	if err != nil {
		s.handleNotFound(w, r)
		return
	}
	posts, err := models.ListPostsByGroup(s.DB, group.ID)
	if err != nil {
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}
	data := map[string]any{
		"Group":   group,
		"PageObj": pagination.Paginate(posts, r.URL.Query().Get("page")),
		"User":    s.currentUser(r),
	}
	s.render(w, "group_list", data)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	author, err := models.GetUserByUsername(s.DB, chi.URLParam(r, "username"))
	if err != nil {
		s.handleNotFound(w, r)
		return
	}
	posts, err := models.ListPostsByAuthor(s.DB, author.ID)
	if err != nil {
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}
	count, err := models.CountPostsByAuthor(s.DB, author.ID)
	if err != nil {
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}
	viewer := s.currentUser(r)
	following := false
	if viewer != nil && viewer.ID != author.ID {
		following, _ = models.IsFollowing(s.DB, viewer.ID, author.ID)
	}
	data := map[string]any{
		"Author":    author,
		"PageObj":   pagination.Paginate(posts, r.URL.Query().Get("page")),
		"PostCount": count,
		"Following": following,
		"User":      viewer,
	}
	s.render(w, "profile", data)
}

func (s *Server) handlePostDetail(w http.ResponseWriter, r *http.Request) {
	id := atoi(chi.URLParam(r, "id"))
	post, err := models.GetPost(s.DB, id)
	if err != nil {
		s.handleNotFound(w, r)
		return
	}
	count, err := models.CountPostsByAuthor(s.DB, post.AuthorID)
	if err != nil {
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}
	comments, err := models.ListComments(s.DB, id)
	if err != nil {
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}
	data := map[string]any{
		"Post":      post,
		"PostCount": count,
		"Comments":  comments,
		"Form":      &forms.CommentForm{},
		"User":      s.currentUser(r),
	}
	s.render(w, "post_detail", data)
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request, user *models.User) {
	groups, err := models.ListGroups(s.DB)
	if err != nil {
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}
	if r.Method == http.MethodGet {
		s.render(w, "create_post", map[string]any{
			"Form":   &forms.PostForm{},
			"Groups": groups,
			"User":   user,
		})
		return
	}
	form, err := forms.ParsePostForm(r)
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if errs := form.Validate(s.DB); len(errs) > 0 {
		s.render(w, "create_post", map[string]any{
			"Form":   form,
			"Errors": errs,
			"Groups": groups,
			"User":   user,
		})
		return
	}
	image, err := s.saveImage(form)
	if err != nil {
		http.Error(w, "could not store image", http.StatusInternalServerError)
		return
	}
	// Author is always the caller, whatever the input claimed.
	if _, err := models.CreatePost(s.DB, user.ID, form.Text, form.GroupID, image); err != nil {
		http.Error(w, "could not create post", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/profile/"+user.Username+"/", http.StatusSeeOther)
}

func (s *Server) handleEditPost(w http.ResponseWriter, r *http.Request, user *models.User) {
	id := atoi(chi.URLParam(r, "id"))
	post, err := models.GetPost(s.DB, id)
	if err != nil {
		s.handleNotFound(w, r)
		return
	}
	if s.Cfg.EnforcePostOwnership && post.AuthorID != user.ID {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	groups, err := models.ListGroups(s.DB)
	if err != nil {
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}
	if r.Method == http.MethodGet {
		form := &forms.PostForm{Text: post.Text}
		if post.GroupID != nil {
			form.GroupRaw = strconv.Itoa(*post.GroupID)
		}
		s.render(w, "create_post", map[string]any{
			"Form":   form,
			"Groups": groups,
			"IsEdit": true,
			"Post":   post,
			"User":   user,
		})
		return
	}
	form, err := forms.ParsePostForm(r)
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if errs := form.Validate(s.DB); len(errs) > 0 {
		s.render(w, "create_post", map[string]any{
			"Form":   form,
			"Errors": errs,
			"Groups": groups,
			"IsEdit": true,
			"Post":   post,
			"User":   user,
		})
		return
	}
	image := post.Image
	if len(form.Image) > 0 {
		image, err = s.saveImage(form)
		if err != nil {
			http.Error(w, "could not store image", http.StatusInternalServerError)
			return
		}
	}
	if err := models.UpdatePost(s.DB, post.ID, form.Text, form.GroupID, image); err != nil {
		http.Error(w, "could not update post", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/posts/"+itoa(post.ID)+"/", http.StatusSeeOther)
}

func (s *Server) handleComment(w http.ResponseWriter, r *http.Request, user *models.User) {
	id := atoi(chi.URLParam(r, "id"))
	post, err := models.GetPost(s.DB, id)
	if err != nil {
		s.handleNotFound(w, r)
		return
	}
	form := forms.ParseCommentForm(r)
	// An invalid comment is dropped silently; the redirect happens either way.
	if len(form.Validate()) == 0 {
		if err := models.CreateComment(s.DB, post.ID, user.ID, form.Text); err != nil {
			http.Error(w, "could not create comment", http.StatusInternalServerError)
			return
		}
	}
	http.Redirect(w, r, "/posts/"+itoa(post.ID)+"/", http.StatusSeeOther)
}

func (s *Server) handleFollowIndex(w http.ResponseWriter, r *http.Request, user *models.User) {
	posts, err := models.ListFeedPosts(s.DB, user.ID)
	if err != nil {
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}
	data := map[string]any{
		"PageObj": pagination.Paginate(posts, r.URL.Query().Get("page")),
		"User":    user,
	}
	s.render(w, "follow", data)
}

func (s *Server) handleFollow(w http.ResponseWriter, r *http.Request, user *models.User) {
	author, err := models.GetUserByUsername(s.DB, chi.URLParam(r, "username"))
	if err != nil {
		s.handleNotFound(w, r)
		return
	}
	if author.ID == user.ID {
		http.Redirect(w, r, "/profile/"+user.Username+"/", http.StatusSeeOther)
		return
	}
	if err := models.FollowAuthor(s.DB, user.ID, author.ID); err != nil {
		http.Error(w, "could not follow", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/profile/"+author.Username+"/", http.StatusSeeOther)
}

func (s *Server) handleUnfollow(w http.ResponseWriter, r *http.Request, user *models.User) {
	author, err := models.GetUserByUsername(s.DB, chi.URLParam(r, "username"))
	if err != nil {
		s.handleNotFound(w, r)
		return
	}
	if author.ID == user.ID {
		http.Redirect(w, r, "/profile/"+user.Username+"/", http.StatusSeeOther)
		return
	}
	if err := models.UnfollowAuthor(s.DB, user.ID, author.ID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.handleNotFound(w, r)
			return
		}
		http.Error(w, "could not unfollow", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/profile/"+author.Username+"/", http.StatusSeeOther)
}

func (s *Server) handleAboutAuthor(w http.ResponseWriter, r *http.Request) {
	s.render(w, "about_author", map[string]any{"User": s.currentUser(r)})
}

func (s *Server) handleAboutTech(w http.ResponseWriter, r *http.Request) {
	s.render(w, "about_tech", map[string]any{"User": s.currentUser(r)})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.renderStatus(w, http.StatusNotFound, "not_found", map[string]any{
		"Path": r.URL.Path,
		"User": s.currentUser(r),
	})
}

func (s *Server) saveImage(f *forms.PostForm) (string, error) {
	if len(f.Image) == 0 {
		return "", nil
	}
	name := uuid.NewString() + filepath.Ext(f.ImageName)
	if err := os.WriteFile(filepath.Join(s.Cfg.MediaDir, name), f.Image, 0644); err != nil {
		return "", err
	}
	return name, nil
}

// helpers
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
