package server

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube/internal/config"
	"yatube/internal/db"
	"yatube/internal/models"
)

func newTestServer(t *testing.T) (*Server, *testclock.Clock) {
	t.Helper()
	dir := t.TempDir()
	database, err := db.Open(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	cfg := config.Default()
	cfg.MediaDir = filepath.Join(dir, "media")
	cfg.TemplateDir = "../../web/templates"
	clk := testclock.NewClock(time.Now())
	srv, err := New(database, cfg, clk)
	require.NoError(t, err)
	return srv, clk
}

func signupAndLogin(t *testing.T, srv *Server, username string) *http.Cookie {
	t.Helper()
	email := username + "@example.com"
	form := url.Values{"email": {email}, "username": {username}, "password": {"secret"}}
	w := postForm(srv, "/auth/signup/", form, nil)
	require.Equal(t, http.StatusSeeOther, w.Code)

	form = url.Values{"email": {email}, "password": {"secret"}}
	w = postForm(srv, "/auth/login/", form, nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[0]
}

func get(srv *Server, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func postForm(srv *Server, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func mustUser(t *testing.T, srv *Server, username string) *models.User {
	t.Helper()
	u, err := models.GetUserByUsername(srv.DB, username)
	require.NoError(t, err)
	return u
}

func TestCreatePostForcesAuthor(t *testing.T) {
	srv, _ := newTestServer(t)
	cookie := signupAndLogin(t, srv, "alice")
	alice := mustUser(t, srv, "alice")

	// The author field in the input is ignored.
	form := url.Values{"text": {"hello world"}, "author": {"999"}}
	w := postForm(srv, "/create/", form, cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/profile/alice/", w.Header().Get("Location"))

	posts, err := models.ListPosts(srv.DB)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, alice.ID, posts[0].AuthorID)
	assert.Equal(t, "hello world", posts[0].Text)
}

func TestCreatePostValidationRerendersForm(t *testing.T) {
	srv, _ := newTestServer(t)
	cookie := signupAndLogin(t, srv, "alice")

	form := url.Values{"text": {"   "}}
	w := postForm(srv, "/create/", form, cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "This field is required.")

	posts, err := models.ListPosts(srv.DB)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestFeedPagination(t *testing.T) {
	srv, _ := newTestServer(t)
	signupAndLogin(t, srv, "alice")
	alice := mustUser(t, srv, "alice")

	for i := 0; i < 15; i++ {
		_, err := models.CreatePost(srv.DB, alice.ID, "post text", nil, "")
		require.NoError(t, err)
	}

	w := get(srv, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 10, strings.Count(w.Body.String(), "<article"))

	w = get(srv, "/?page=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, strings.Count(w.Body.String(), "<article"))

	w = get(srv, "/profile/alice/?page=99", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, strings.Count(w.Body.String(), "<article"))
}

func TestGroupListing(t *testing.T) {
	srv, _ := newTestServer(t)
	signupAndLogin(t, srv, "alice")
	alice := mustUser(t, srv, "alice")

	groupID, err := models.CreateGroup(srv.DB, "Cats", "cats", "feline content")
	require.NoError(t, err)
	gid := int(groupID)

	_, err = models.CreatePost(srv.DB, alice.ID, "a cat post", &gid, "")
	require.NoError(t, err)
	_, err = models.CreatePost(srv.DB, alice.ID, "an ungrouped post", nil, "")
	require.NoError(t, err)

	w := get(srv, "/group/cats/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "a cat post")
	assert.NotContains(t, body, "an ungrouped post")

	w = get(srv, "/group/unknown/", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFollowUnfollowFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	aliceCookie := signupAndLogin(t, srv, "alice")
	signupAndLogin(t, srv, "bob")
	alice := mustUser(t, srv, "alice")
	bob := mustUser(t, srv, "bob")

	w := get(srv, "/profile/bob/follow/", aliceCookie)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/profile/bob/", w.Header().Get("Location"))

	following, err := models.IsFollowing(srv.DB, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, following)

	// Following twice leaves a single edge.
	w = get(srv, "/profile/bob/follow/", aliceCookie)
	require.Equal(t, http.StatusSeeOther, w.Code)
	var n int
	require.NoError(t, srv.DB.QueryRow(
		`SELECT COUNT(*) FROM follows WHERE user_id = ? AND author_id = ?`, alice.ID, bob.ID).Scan(&n))
	assert.Equal(t, 1, n)

	w = get(srv, "/follow/", aliceCookie)
	require.Equal(t, http.StatusOK, w.Code)

	w = get(srv, "/profile/bob/unfollow/", aliceCookie)
	require.Equal(t, http.StatusSeeOther, w.Code)
	following, err = models.IsFollowing(srv.DB, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, following)

	// Unfollowing a missing edge is a 404.
	w = get(srv, "/profile/bob/unfollow/", aliceCookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSelfFollowIsANoOp(t *testing.T) {
	srv, _ := newTestServer(t)
	cookie := signupAndLogin(t, srv, "alice")
	alice := mustUser(t, srv, "alice")

	w := get(srv, "/profile/alice/follow/", cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/profile/alice/", w.Header().Get("Location"))

	var n int
	require.NoError(t, srv.DB.QueryRow(
		`SELECT COUNT(*) FROM follows WHERE user_id = ?`, alice.ID).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestUnauthenticatedRedirectsToLogin(t *testing.T) {
	srv, _ := newTestServer(t)

	w := postForm(srv, "/create/", url.Values{"text": {"sneaky"}}, nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/auth/login/?next=%2Fcreate%2F", w.Header().Get("Location"))

	posts, err := models.ListPosts(srv.DB)
	require.NoError(t, err)
	assert.Empty(t, posts)

	w = get(srv, "/follow/", nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/auth/login/?next=%2Ffollow%2F", w.Header().Get("Location"))
}

func TestCommentFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	cookie := signupAndLogin(t, srv, "alice")
	alice := mustUser(t, srv, "alice")
	postID, err := models.CreatePost(srv.DB, alice.ID, "post", nil, "")
	require.NoError(t, err)
	path := "/posts/" + itoa(int(postID)) + "/comment/"

	// An empty comment is dropped without an error, only a redirect.
	w := postForm(srv, path, url.Values{"text": {""}}, cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/posts/"+itoa(int(postID))+"/", w.Header().Get("Location"))
	comments, err := models.ListComments(srv.DB, int(postID))
	require.NoError(t, err)
	assert.Empty(t, comments)

	w = postForm(srv, path, url.Values{"text": {"nice post"}}, cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)
	comments, err = models.ListComments(srv.DB, int(postID))
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "nice post", comments[0].Text)
	assert.Equal(t, alice.ID, comments[0].AuthorID)

	// Commenting on a missing post is a 404.
	w = postForm(srv, "/posts/999/comment/", url.Values{"text": {"hello"}}, cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHomeFeedCacheWindow(t *testing.T) {
	srv, clk := newTestServer(t)
	signupAndLogin(t, srv, "alice")
	alice := mustUser(t, srv, "alice")

	_, err := models.CreatePost(srv.DB, alice.ID, "the first post", nil, "")
	require.NoError(t, err)

	first := get(srv, "/", nil)
	require.Equal(t, http.StatusOK, first.Code)

	_, err = models.CreatePost(srv.DB, alice.ID, "a newer post", nil, "")
	require.NoError(t, err)

	// Within the window the stale page is served byte for byte.
	second := get(srv, "/", nil)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.NotContains(t, second.Body.String(), "a newer post")

	clk.Advance(21 * time.Second)

	third := get(srv, "/", nil)
	require.Equal(t, http.StatusOK, third.Code)
	assert.NotEqual(t, first.Body.String(), third.Body.String())
	assert.Contains(t, third.Body.String(), "a newer post")
}

func TestEditPostOwnership(t *testing.T) {
	srv, _ := newTestServer(t)
	signupAndLogin(t, srv, "alice")
	bobCookie := signupAndLogin(t, srv, "bob")
	alice := mustUser(t, srv, "alice")

	postID, err := models.CreatePost(srv.DB, alice.ID, "original", nil, "")
	require.NoError(t, err)
	path := "/posts/" + itoa(int(postID)) + "/edit/"

	// With the default configuration any authenticated user may edit any post.
	w := postForm(srv, path, url.Values{"text": {"changed by bob"}}, bobCookie)
	require.Equal(t, http.StatusSeeOther, w.Code)
	post, err := models.GetPost(srv.DB, int(postID))
	require.NoError(t, err)
	assert.Equal(t, "changed by bob", post.Text)

	srv.Cfg.EnforcePostOwnership = true
	w = postForm(srv, path, url.Values{"text": {"changed again"}}, bobCookie)
	assert.Equal(t, http.StatusForbidden, w.Code)
	post, err = models.GetPost(srv.DB, int(postID))
	require.NoError(t, err)
	assert.Equal(t, "changed by bob", post.Text)
}

func TestPostDetail(t *testing.T) {
	srv, _ := newTestServer(t)
	signupAndLogin(t, srv, "alice")
	alice := mustUser(t, srv, "alice")

	postID, err := models.CreatePost(srv.DB, alice.ID, "detailed post", nil, "")
	require.NoError(t, err)
	require.NoError(t, models.CreateComment(srv.DB, int(postID), alice.ID, "first comment"))

	w := get(srv, "/posts/"+itoa(int(postID))+"/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "detailed post")
	assert.Contains(t, body, "first comment")
	assert.Contains(t, body, "1 posts")

	w = get(srv, "/posts/999/", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProfileShowsFollowState(t *testing.T) {
	srv, _ := newTestServer(t)
	aliceCookie := signupAndLogin(t, srv, "alice")
	signupAndLogin(t, srv, "bob")
	alice := mustUser(t, srv, "alice")
	bob := mustUser(t, srv, "bob")

	w := get(srv, "/profile/bob/", aliceCookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/profile/bob/follow/")

	require.NoError(t, models.FollowAuthor(srv.DB, alice.ID, bob.ID))
	w = get(srv, "/profile/bob/", aliceCookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/profile/bob/unfollow/")

	w = get(srv, "/profile/nobody/", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnknownRouteRendersNotFoundPage(t *testing.T) {
	srv, _ := newTestServer(t)
	w := get(srv, "/definitely/not/here/", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Page not found")
}

func TestAboutPages(t *testing.T) {
	srv, _ := newTestServer(t)
	for _, path := range []string{"/about/author/", "/about/tech/"} {
		w := get(srv, path, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}
