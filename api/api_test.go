package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gamine/blog-api/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPI(t *testing.T) *API {
	t.Helper()

	gin.SetMode(gin.TestMode)

	viper.Set("security.jwt_secret", "test-secret")
	viper.Set("storage.driver", "sqlite")
	viper.Set("storage.dsn", filepath.Join(t.TempDir(), "test.db"))
	viper.Set("pictures.type", "local")
	viper.Set("pictures.dir", t.TempDir())
	viper.Set("pictures.max_size", int64(5<<20))
	viper.Set("rate_limit.enabled", false)
	viper.Set("host.ssl.enabled", false)
	viper.Set("host.domain", "localhost")

	a, err := NewRouter()
	require.NoError(t, err)

	return a
}

func doJSON(t *testing.T, a *API, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)

	return w
}

func parseBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	return body
}

func register(t *testing.T, a *API, username, email, password string) {
	t.Helper()

	w := doJSON(t, a, http.MethodPost, "/api/users", gin.H{
		"username":         username,
		"email":            email,
		"password":         password,
		"confirm_password": password,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func login(t *testing.T, a *API, email, password string) *http.Cookie {
	t.Helper()

	w := doJSON(t, a, http.MethodPost, "/api/users/login", gin.H{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	return authCookie(t, w)
}

func authCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "auth_token" {
			return cookie
		}
	}

	t.Fatal("no auth_token cookie set")
	return nil
}

func TestHeartbeat(t *testing.T) {
	a := newTestAPI(t)

	req := httptest.NewRequest(http.MethodHead, "/api/heartbeat", nil)
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterAndLogin(t *testing.T) {
	a := newTestAPI(t)

	register(t, a, "alice", "a@x.com", "password1")

	// Same username, different email
	w := doJSON(t, a, http.MethodPost, "/api/users", gin.H{
		"username":         "alice",
		"email":            "b@x.com",
		"password":         "password2",
		"confirm_password": "password2",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Same email, different username
	w = doJSON(t, a, http.MethodPost, "/api/users", gin.H{
		"username":         "bob",
		"email":            "a@x.com",
		"password":         "password2",
		"confirm_password": "password2",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Wrong password gets the same generic message an unknown email would
	w = doJSON(t, a, http.MethodPost, "/api/users/login", gin.H{
		"email":    "a@x.com",
		"password": "wrongwrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	wrongPw := parseBody(t, w)["error"]

	w = doJSON(t, a, http.MethodPost, "/api/users/login", gin.H{
		"email":    "nobody@x.com",
		"password": "password1",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, wrongPw, parseBody(t, w)["error"])

	cookie := login(t, a, "a@x.com", "password1")
	assert.NotEmpty(t, cookie.Value)
}

func TestRegisterValidation(t *testing.T) {
	a := newTestAPI(t)

	cases := []gin.H{
		{"username": "a", "email": "a@x.com", "password": "password1", "confirm_password": "password1"},
		{"username": "alice", "email": "bad", "password": "password1", "confirm_password": "password1"},
		{"username": "alice", "email": "a@x.com", "password": "short", "confirm_password": "short"},
		{"username": "alice", "email": "a@x.com", "password": "password1", "confirm_password": "password2"},
	}

	for _, body := range cases {
		w := doJSON(t, a, http.MethodPost, "/api/users", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	}
}

func TestProtectedRoutesRedirectToLogin(t *testing.T) {
	a := newTestAPI(t)

	w := doJSON(t, a, http.MethodGet, "/api/users/me", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	redirect, _ := parseBody(t, w)["redirect"].(string)
	assert.Contains(t, redirect, "/login?next=")
	assert.Contains(t, redirect, "me")
}

func TestLoginNextIsSanitized(t *testing.T) {
	a := newTestAPI(t)

	register(t, a, "alice", "a@x.com", "password1")

	w := doJSON(t, a, http.MethodPost, "/api/users/login?next=%2F%2Fevil.com", gin.H{
		"email":    "a@x.com",
		"password": "password1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/home", parseBody(t, w)["redirect"])

	w = doJSON(t, a, http.MethodPost, "/api/users/login?next=%2Fpost%2F5", gin.H{
		"email":    "a@x.com",
		"password": "password1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/post/5", parseBody(t, w)["redirect"])
}

func TestLoginAndRegisterIdempotentWhenAuthed(t *testing.T) {
	a := newTestAPI(t)

	register(t, a, "alice", "a@x.com", "password1")
	cookie := login(t, a, "a@x.com", "password1")

	w := doJSON(t, a, http.MethodPost, "/api/users/login", gin.H{
		"email":    "a@x.com",
		"password": "password1",
	}, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/home", parseBody(t, w)["redirect"])

	w = doJSON(t, a, http.MethodPost, "/api/users", gin.H{
		"username": "somebody",
	}, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/home", parseBody(t, w)["redirect"])
}

func TestLoginRememberControlsCookieLifetime(t *testing.T) {
	a := newTestAPI(t)

	register(t, a, "alice", "a@x.com", "password1")

	// Without remember the cookie lives for the browser session only
	w := doJSON(t, a, http.MethodPost, "/api/users/login", gin.H{
		"email":    "a@x.com",
		"password": "password1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, authCookie(t, w).MaxAge)

	w = doJSON(t, a, http.MethodPost, "/api/users/login", gin.H{
		"email":    "a@x.com",
		"password": "password1",
		"remember": true,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int(30*24*time.Hour/time.Second), authCookie(t, w).MaxAge)
}

func TestLogoutClearsSession(t *testing.T) {
	a := newTestAPI(t)

	register(t, a, "alice", "a@x.com", "password1")
	cookie := login(t, a, "a@x.com", "password1")

	w := doJSON(t, a, http.MethodPost, "/api/users/logout", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	for _, cleared := range w.Result().Cookies() {
		if cleared.Name == "auth_token" {
			assert.Empty(t, cleared.Value)
			assert.Negative(t, cleared.MaxAge)
		}
	}
}

func TestPostLifecycle(t *testing.T) {
	a := newTestAPI(t)

	register(t, a, "alice", "a@x.com", "password1")
	register(t, a, "bob", "b@x.com", "password2")

	alice := login(t, a, "a@x.com", "password1")
	bob := login(t, a, "b@x.com", "password2")

	// Anonymous callers can't post
	w := doJSON(t, a, http.MethodPost, "/api/posts", gin.H{"title": "Hello", "content": "World"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, a, http.MethodPost, "/api/posts", gin.H{"title": "Hello", "content": "World"}, alice)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	post := parseBody(t, w)["post"].(map[string]any)
	postID := int(post["id"].(float64))
	assert.Equal(t, "alice", post["author"].(map[string]any)["username"])

	// Empty fields are rejected before the store is touched
	w = doJSON(t, a, http.MethodPost, "/api/posts", gin.H{"title": " ", "content": "World"}, alice)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Only the owner can edit or delete
	path := fmt.Sprintf("/api/posts/%d", postID)

	w = doJSON(t, a, http.MethodPut, path, gin.H{"title": "Hijacked", "content": "x"}, bob)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, a, http.MethodDelete, path, nil, bob)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, a, http.MethodPut, path, gin.H{"title": "Hello again", "content": "Updated"}, alice)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, a, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Hello again", parseBody(t, w)["title"])

	w = doJSON(t, a, http.MethodDelete, path, nil, alice)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, a, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBodyLimitAbortsBeforeHandler(t *testing.T) {
	a := newTestAPI(t)

	register(t, a, "alice", "a@x.com", "password1")
	alice := login(t, a, "a@x.com", "password1")

	raw, err := json.Marshal(gin.H{"title": "sneaky", "content": "tiny"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/posts", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(alice)
	// A client can claim any length it likes
	req.ContentLength = 2 << 20

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "exceeds limit")
	assert.NotContains(t, w.Body.String(), "sneaky")

	// The handler never ran, so nothing was created
	w = doJSON(t, a, http.MethodGet, "/api/posts/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFeedPagination(t *testing.T) {
	a := newTestAPI(t)

	register(t, a, "alice", "a@x.com", "password1")
	alice := login(t, a, "a@x.com", "password1")

	for i := 0; i < 5; i++ {
		w := doJSON(t, a, http.MethodPost, "/api/posts", gin.H{
			"title":   fmt.Sprintf("post %d", i),
			"content": "content",
		}, alice)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, a, http.MethodGet, "/api/posts", nil)
	require.Equal(t, http.StatusOK, w.Code)

	feed := parseBody(t, w)
	assert.Equal(t, float64(5), feed["total"])
	assert.Len(t, feed["posts"], 4)

	// Embedded authors must not hand out email addresses
	assert.NotContains(t, w.Body.String(), `"email"`)
	assert.NotContains(t, w.Body.String(), "a@x.com")

	// A page past the end is empty, not an error
	w = doJSON(t, a, http.MethodGet, "/api/posts?page=9", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, parseBody(t, w)["posts"])

	w = doJSON(t, a, http.MethodGet, "/api/posts?page=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthorFeed(t *testing.T) {
	a := newTestAPI(t)

	register(t, a, "carol", "c@x.com", "password1")
	carol := login(t, a, "c@x.com", "password1")

	w := doJSON(t, a, http.MethodPost, "/api/posts", gin.H{"title": "carols post", "content": "x"}, carol)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, a, http.MethodGet, "/api/authors/carol/posts", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := parseBody(t, w)
	assert.Equal(t, "carol", body["author"].(map[string]any)["username"])
	assert.Len(t, body["feed"].(map[string]any)["posts"], 1)
	assert.NotContains(t, w.Body.String(), "c@x.com")

	w = doJSON(t, a, http.MethodGet, "/api/authors/nobody-here/posts", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPasswordResetFlow(t *testing.T) {
	a := newTestAPI(t)

	register(t, a, "alice", "a@x.com", "password1")

	// The answer must not reveal whether the email exists
	w := doJSON(t, a, http.MethodPost, "/api/password/reset", gin.H{"email": "a@x.com"})
	require.Equal(t, http.StatusAccepted, w.Code)
	knownMsg := parseBody(t, w)["message"]

	w = doJSON(t, a, http.MethodPost, "/api/password/reset", gin.H{"email": "nobody@x.com"})
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, knownMsg, parseBody(t, w)["message"])

	// The handlers and this test share the configured secret, so a
	// token can be minted directly instead of scraping it from mail
	token, err := security.MakeResetToken(1, jwtSecret(), time.Now())
	require.NoError(t, err)

	w = doJSON(t, a, http.MethodPost, "/api/password/reset/"+token, gin.H{
		"password":         "password2",
		"confirm_password": "password2",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Old password stops working immediately, the new one works
	w = doJSON(t, a, http.MethodPost, "/api/users/login", gin.H{
		"email":    "a@x.com",
		"password": "password1",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	login(t, a, "a@x.com", "password2")
}

func TestPasswordResetRejectsBadTokens(t *testing.T) {
	a := newTestAPI(t)

	register(t, a, "alice", "a@x.com", "password1")

	// 1801 seconds old, one past the window
	expired, err := security.MakeResetToken(1, jwtSecret(), time.Now().Add(-1801*time.Second))
	require.NoError(t, err)

	for _, token := range []string{expired, "garbage"} {
		w := doJSON(t, a, http.MethodPost, "/api/password/reset/"+token, gin.H{
			"password":         "password2",
			"confirm_password": "password2",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, parseBody(t, w)["error"], "expired or invalid")
	}

	// Mismatched confirmation with a good token
	token, err := security.MakeResetToken(1, jwtSecret(), time.Now())
	require.NoError(t, err)

	w := doJSON(t, a, http.MethodPost, "/api/password/reset/"+token, gin.H{
		"password":         "password2",
		"confirm_password": "password3",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProfileUpdate(t *testing.T) {
	a := newTestAPI(t)

	register(t, a, "alice", "a@x.com", "password1")
	register(t, a, "bob", "b@x.com", "password2")
	alice := login(t, a, "a@x.com", "password1")

	w := doMultipart(t, a, map[string]string{
		"username": "alice2",
		"email":    "a2@x.com",
	}, nil, alice)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, a, http.MethodGet, "/api/users/me", nil, alice)
	require.Equal(t, http.StatusOK, w.Code)

	body := parseBody(t, w)
	user := body["user"].(map[string]any)
	assert.Equal(t, "alice2", user["username"])
	assert.Equal(t, "a2@x.com", body["email"])
	assert.Equal(t, "default.png", user["image_file"])

	// Taking bob's username is a conflict
	w = doMultipart(t, a, map[string]string{
		"username": "bob",
		"email":    "a2@x.com",
	}, nil, alice)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestProfilePictureUpload(t *testing.T) {
	a := newTestAPI(t)

	register(t, a, "alice", "a@x.com", "password1")
	alice := login(t, a, "a@x.com", "password1")

	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 300, 200))))

	w := doMultipart(t, a, map[string]string{
		"username": "alice",
		"email":    "a@x.com",
	}, &upload{field: "picture", filename: "avatar.png", data: img.Bytes()}, alice)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, a, http.MethodGet, "/api/users/me", nil, alice)
	require.Equal(t, http.StatusOK, w.Code)

	user := parseBody(t, w)["user"].(map[string]any)
	imageFile := user["image_file"].(string)
	assert.NotEqual(t, "default.png", imageFile)

	w = doJSON(t, a, http.MethodGet, "/api/pictures/"+imageFile, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	// The stored picture fits inside the 125x125 thumbnail bound
	stored, _, err := image.Decode(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	assert.LessOrEqual(t, stored.Bounds().Dx(), 125)
	assert.LessOrEqual(t, stored.Bounds().Dy(), 125)
}

func TestProfilePictureNotOrphanedOnConflict(t *testing.T) {
	a := newTestAPI(t)

	register(t, a, "alice", "a@x.com", "password1")
	register(t, a, "bob", "b@x.com", "password2")
	alice := login(t, a, "a@x.com", "password1")

	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 50, 50))))

	// Taking bob's username fails after the picture already landed, the
	// stored file must not stay behind
	w := doMultipart(t, a, map[string]string{
		"username": "bob",
		"email":    "a@x.com",
	}, &upload{field: "picture", filename: "avatar.png", data: img.Bytes()}, alice)
	require.Equal(t, http.StatusConflict, w.Code)

	entries, err := os.ReadDir(viper.GetString("pictures.dir"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "default.png", entries[0].Name())
}

func TestProfilePictureRejectsNonImages(t *testing.T) {
	a := newTestAPI(t)

	register(t, a, "alice", "a@x.com", "password1")
	alice := login(t, a, "a@x.com", "password1")

	w := doMultipart(t, a, map[string]string{
		"username": "alice",
		"email":    "a@x.com",
	}, &upload{field: "picture", filename: "evil.png", data: []byte("#!/bin/sh\necho pwned")}, alice)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doMultipart(t, a, map[string]string{
		"username": "alice",
		"email":    "a@x.com",
	}, &upload{field: "picture", filename: "notes.txt", data: []byte("hi")}, alice)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type upload struct {
	field    string
	filename string
	data     []byte
}

func doMultipart(t *testing.T, a *API, fields map[string]string, file *upload, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}

	if file != nil {
		fw, err := mw.CreateFormFile(file.field, file.filename)
		require.NoError(t, err)
		_, err = fw.Write(file.data)
		require.NoError(t, err)
	}

	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, "/api/users/me", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)

	return w
}
