package httpapi

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	idb "habit_reminder_service/internal/infra/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "avatar.png", "avatar.png"},
		{"unix path", "../../etc/passwd.png", "passwd.png"},
		{"windows path", `C:\Users\sam\avatar.png`, "avatar.png"},
		{"control chars", "ava\x00tar\x1f.png", "avatar.png"},
		{"whitespace", "  avatar.png  ", "avatar.png"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, sanitizeFilename(tc.in))
		})
	}
}

func TestPictureExt(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		allowed bool
	}{
		{"avatar.png", ".png", true},
		{"avatar.JPG", ".jpg", true},
		{"photo.webp", ".webp", true},
		{"../../x/photo.gif", ".gif", true},
		{"script.sh", "", false},
		{"noext", "", false},
		{"avatar.png.exe", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			ext, ok := pictureExt(tc.in)
			assert.Equal(t, tc.allowed, ok)
			assert.Equal(t, tc.want, ext)
		})
	}
}

func multipartUpload(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func postUpload(srv *Server, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestUploadProfilePicture(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv, stubs := newTestServer(t, defaultRateLimit())
		body, ct := multipartUpload(t, "picture", "avatar.png", []byte("imgdata"))

		rec := postUpload(srv, "/api/users/1/profile-picture", body, ct)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, ".png", stubs.profiles.savedExt)
		assert.Equal(t, []byte("imgdata"), stubs.profiles.saved)
		assert.Contains(t, rec.Body.String(), "stored.png")
	})

	t.Run("path traversal filename still stores by extension", func(t *testing.T) {
		srv, stubs := newTestServer(t, defaultRateLimit())
		body, ct := multipartUpload(t, "picture", "../../../etc/avatar.jpeg", []byte("imgdata"))

		rec := postUpload(srv, "/api/users/1/profile-picture", body, ct)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, ".jpeg", stubs.profiles.savedExt)
	})

	t.Run("disallowed extension", func(t *testing.T) {
		srv, _ := newTestServer(t, defaultRateLimit())
		body, ct := multipartUpload(t, "picture", "payload.exe", []byte("mz"))

		rec := postUpload(srv, "/api/users/1/profile-picture", body, ct)
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})

	t.Run("missing field", func(t *testing.T) {
		srv, _ := newTestServer(t, defaultRateLimit())
		body, ct := multipartUpload(t, "other", "avatar.png", []byte("imgdata"))

		rec := postUpload(srv, "/api/users/1/profile-picture", body, ct)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("too large", func(t *testing.T) {
		stubs := &serverStubs{
			reminders: &stubReminderAPI{},
			settings:  &stubSettingsAPI{},
			profiles:  &stubProfileAPI{},
			trackings: &stubTrackingAPI{},
		}
		srv := newServerWithMaxBytes(t, stubs, 16)
		body, ct := multipartUpload(t, "picture", "avatar.png", bytes.Repeat([]byte("x"), 1024))

		rec := postUpload(srv, "/api/users/1/profile-picture", body, ct)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		srv, stubs := newTestServer(t, defaultRateLimit())
		stubs.profiles.saveErr = idb.ErrUserNotFound
		body, ct := multipartUpload(t, "picture", "avatar.png", []byte("imgdata"))

		rec := postUpload(srv, "/api/users/9/profile-picture", body, ct)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
