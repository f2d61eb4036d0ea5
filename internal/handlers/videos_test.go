package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sohansahooo/vidshort/internal/auth"
	"github.com/sohansahooo/vidshort/internal/db"
	"github.com/sohansahooo/vidshort/internal/models"
	"github.com/sohansahooo/vidshort/internal/videos"
)

type videoStoreStub struct {
	created   []models.Video
	createErr error
}

func (s *videoStoreStub) Create(_ context.Context, video models.Video) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, video)
	return nil
}

// ListRecent lets the stub back a videos.CachingLister.
func (s *videoStoreStub) ListRecent(_ context.Context, limit int) ([]models.Video, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	out := make([]models.Video, 0, len(s.created))
	for i := len(s.created) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.created[i])
	}
	return out, nil
}

type feedStub struct {
	limits      []int
	videos      []models.Video
	err         error
	invalidated int
}

func (f *feedStub) ListRecent(_ context.Context, limit int) ([]models.Video, error) {
	f.limits = append(f.limits, limit)
	return f.videos, f.err
}

func (f *feedStub) Invalidate() { f.invalidated++ }

func withIdentity(req *http.Request) *http.Request {
	identity := models.Identity{ID: "user-1", Email: "a@b.com"}
	return req.WithContext(auth.WithIdentity(req.Context(), identity))
}

const validVideoBody = `{
	"title": "Sunset",
	"description": "Golden hour",
	"videoUrl": "https://media.example.com/sunset.mp4",
	"thumbnailUrl": "https://media.example.com/sunset.jpg"
}`

func TestVideoHandlerCreate(t *testing.T) {
	store := &videoStoreStub{}
	feed := &feedStub{}
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	handler := VideoHandler{Videos: store, Feed: feed, NowFunc: func() time.Time { return now }}

	req := withIdentity(httptest.NewRequest(http.MethodPost, "/api/videos", strings.NewReader(validVideoBody)))
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, store.created, 1)
	assert.Equal(t, 1, feed.invalidated)

	var got models.Video
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "user-1", got.OwnerID)
	assert.True(t, got.ControlsVisible)
	assert.Equal(t, models.DefaultWidth, got.Transformation.Width)
	assert.Equal(t, models.DefaultHeight, got.Transformation.Height)
	assert.Nil(t, got.Transformation.Quality)
	assert.True(t, now.Equal(got.CreatedAt))
	assert.Equal(t, store.created[0].ID, got.ID)
}

func TestVideoHandlerCreateOverrides(t *testing.T) {
	store := &videoStoreStub{}
	handler := VideoHandler{Videos: store, Feed: &feedStub{}}

	body := `{"title":"t","description":"d","videoUrl":"https://x.test/v.mp4","thumbnailUrl":"https://x.test/t.jpg",
		"controls":false,"transformation":{"width":720,"quality":80}}`
	req := withIdentity(httptest.NewRequest(http.MethodPost, "/api/videos", strings.NewReader(body)))
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	video := store.created[0]
	assert.False(t, video.ControlsVisible)
	assert.Equal(t, 720, video.Transformation.Width)
	assert.Equal(t, models.DefaultHeight, video.Transformation.Height)
	require.NotNil(t, video.Transformation.Quality)
	assert.Equal(t, 80, *video.Transformation.Quality)
}

func TestVideoHandlerCreateValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{
			name: "missing title",
			body: `{"description":"d","videoUrl":"https://x.test/v.mp4","thumbnailUrl":"https://x.test/t.jpg"}`,
			want: "title is required",
		},
		{
			name: "bad url",
			body: `{"title":"t","description":"d","videoUrl":"not a url","thumbnailUrl":"https://x.test/t.jpg"}`,
			want: "videoUrl must be a valid URL",
		},
		{
			name: "quality out of range",
			body: `{"title":"t","description":"d","videoUrl":"https://x.test/v.mp4","thumbnailUrl":"https://x.test/t.jpg","transformation":{"quality":101}}`,
			want: "quality must be between 1 and 100",
		},
		{
			name: "malformed",
			body: `{`,
			want: msgInvalidBody,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &videoStoreStub{}
			handler := VideoHandler{Videos: store, Feed: &feedStub{}}

			req := withIdentity(httptest.NewRequest(http.MethodPost, "/api/videos", strings.NewReader(tc.body)))
			rec := httptest.NewRecorder()
			handler.Create(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tc.want, decodeError(t, rec))
			assert.Empty(t, store.created)
		})
	}
}

func TestVideoHandlerCreateRequiresSession(t *testing.T) {
	store := &videoStoreStub{}
	handler := VideoHandler{Videos: store, Feed: &feedStub{}}

	req := httptest.NewRequest(http.MethodPost, "/api/videos", strings.NewReader(validVideoBody))
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, store.created)
}

func TestVideoHandlerCreateStoreFailure(t *testing.T) {
	feed := &feedStub{}
	handler := VideoHandler{
		Videos: &videoStoreStub{createErr: fmt.Errorf("%w: timeout", db.ErrConnectionFailed)},
		Feed:   feed,
	}

	req := withIdentity(httptest.NewRequest(http.MethodPost, "/api/videos", strings.NewReader(validVideoBody)))
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, msgDatabaseUnavailable, decodeError(t, rec))
	assert.Zero(t, feed.invalidated)
}

func TestVideoHandlerList(t *testing.T) {
	feed := &feedStub{videos: []models.Video{models.NewVideo("t", "d", "https://x.test/v", "https://x.test/t")}}
	handler := VideoHandler{Feed: feed}

	for _, tc := range []struct {
		query string
		limit int
	}{
		{"", defaultListLimit},
		{"?limit=10", 10},
		{"?limit=5000", maxListLimit},
	} {
		rec := httptest.NewRecorder()
		handler.Handle(rec, httptest.NewRequest(http.MethodGet, "/api/videos"+tc.query, nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var got []models.Video
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Len(t, got, 1)
		assert.Equal(t, tc.limit, feed.limits[len(feed.limits)-1])
	}

	rec := httptest.NewRecorder()
	handler.List(rec, httptest.NewRequest(http.MethodGet, "/api/videos?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVideoHandlerListEmptyIsArray(t *testing.T) {
	handler := VideoHandler{Feed: videos.NewCachingLister(&videoStoreStub{}, time.Minute)}

	rec := httptest.NewRecorder()
	handler.List(rec, httptest.NewRequest(http.MethodGet, "/api/videos", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestVideoHandlerListFailure(t *testing.T) {
	handler := VideoHandler{Feed: &feedStub{err: errors.New("boom")}}

	rec := httptest.NewRecorder()
	handler.List(rec, httptest.NewRequest(http.MethodGet, "/api/videos", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to fetch videos", decodeError(t, rec))
}

func TestVideoHandlerCreateInvalidatesCachedListing(t *testing.T) {
	store := &videoStoreStub{}
	feed := videos.NewCachingLister(store, time.Hour)
	handler := VideoHandler{Videos: store, Feed: feed}

	rec := httptest.NewRecorder()
	handler.List(rec, httptest.NewRequest(http.MethodGet, "/api/videos", nil))
	require.JSONEq(t, `[]`, rec.Body.String())

	rec = httptest.NewRecorder()
	handler.Create(rec, withIdentity(httptest.NewRequest(http.MethodPost, "/api/videos", strings.NewReader(validVideoBody))))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	handler.List(rec, httptest.NewRequest(http.MethodGet, "/api/videos", nil))
	var got []models.Video
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Len(t, got, 1)
}

func TestVideoHandlerMethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	VideoHandler{}.Handle(rec, httptest.NewRequest(http.MethodDelete, "/api/videos", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, POST", rec.Header().Get("Allow"))
}
