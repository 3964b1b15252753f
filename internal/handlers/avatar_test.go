package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/bsavchuk/contacts-api/internal/middleware"
	"github.com/bsavchuk/contacts-api/internal/models"
	"github.com/bsavchuk/contacts-api/internal/repo"
	"github.com/bsavchuk/contacts-api/internal/storage"
)

type fakeS3 struct {
	keys   []string
	bodies [][]byte
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.keys = append(f.keys, *params.Key)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func multipartContext(t *testing.T, user *models.User, filename string, content []byte) (echo.Context, *httptest.ResponseRecorder) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/users/1/avatar", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.UserKey, user)
	return c, rec
}

func TestUploadAvatar(t *testing.T) {
	r := repo.New(InitTestDB(t))
	user, err := r.CreateUser(context.Background(), "alice@example.com", "pw1")
	require.NoError(t, err)

	fake := &fakeS3{}
	h := &AvatarHandler{
		Repo:    r,
		Storage: storage.NewWithClient(fake, "avatars-bucket", "https://cdn.example.com"),
	}

	c, rec := multipartContext(t, user, "me.png", []byte("png-bytes"))
	withID(c, "/users/:id/avatar", user.ID)

	require.NoError(t, h.Upload(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "https://cdn.example.com/avatars/1.png", resp["avatar_url"])

	require.Len(t, fake.keys, 1)
	require.Equal(t, "avatars/1.png", fake.keys[0])
	require.Equal(t, []byte("png-bytes"), fake.bodies[0])

	got, err := r.UserByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, resp["avatar_url"], got.AvatarURL)
}

func TestUploadAvatarForOtherUser(t *testing.T) {
	r := repo.New(InitTestDB(t))
	ctx := context.Background()
	alice, err := r.CreateUser(ctx, "alice@example.com", "pw1")
	require.NoError(t, err)
	bob, err := r.CreateUser(ctx, "bob@example.com", "pw2")
	require.NoError(t, err)

	h := &AvatarHandler{
		Repo:    r,
		Storage: storage.NewWithClient(&fakeS3{}, "avatars-bucket", "https://cdn.example.com"),
	}

	c, _ := multipartContext(t, alice, "me.png", []byte("png-bytes"))
	withID(c, "/users/:id/avatar", bob.ID)

	err = h.Upload(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusNotFound, he.Code)
}

func TestUploadAvatarMissingFile(t *testing.T) {
	r := repo.New(InitTestDB(t))
	user, err := r.CreateUser(context.Background(), "alice@example.com", "pw1")
	require.NoError(t, err)

	h := &AvatarHandler{
		Repo:    r,
		Storage: storage.NewWithClient(&fakeS3{}, "avatars-bucket", "https://cdn.example.com"),
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/users/1/avatar", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.UserKey, user)
	withID(c, "/users/:id/avatar", user.ID)

	err = h.Upload(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusBadRequest, he.Code)
}
