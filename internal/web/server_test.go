package web

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vbonduro/photoshare/internal/db"
	"github.com/vbonduro/photoshare/internal/metrics"
	"github.com/vbonduro/photoshare/internal/notify"
	"github.com/vbonduro/photoshare/internal/photostore/local"
	"github.com/vbonduro/photoshare/internal/service"
	"github.com/vbonduro/photoshare/internal/sharing"
	"github.com/vbonduro/photoshare/internal/store"
)

type testEnv struct {
	server  *Server
	metrics *metrics.Metrics
	hub     *notify.Hub
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()
	database, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	photoStg, err := local.NewLocalPhotoStore(t.TempDir())
	require.NoError(t, err)

	logger := discardLogger()
	contacts := store.NewContactStore(database)
	photos := store.NewPhotoStore(database)
	shares := store.NewShareStore(database)
	profiles := store.NewProfileStore(database)
	hub := notify.NewHub(logger)
	m := metrics.New()

	shareSvc := service.NewShareService(contacts, shares, profiles, photos, sharing.NewLinkGenerator("91"), hub, logger)
	gallery := service.NewGalleryService(photos, photoStg, nil, logger)
	search := service.NewSearchService(photos, nil, logger)

	return &testEnv{
		server:  NewServer(shareSvc, gallery, search, hub, m, opts, logger),
		metrics: m,
		hub:     hub,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) upload(t *testing.T, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := multipartRequest(t, "image", data)
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

// uploadPhoto stores a landscape PNG and returns its id.
func (e *testEnv) uploadPhoto(t *testing.T) string {
	t.Helper()
	rec := e.upload(t, pngImage(t, 8, 4))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var photo struct {
		ID string `json:"id"`
	}
	decode(t, rec, &photo)
	return photo.ID
}

func multipartRequest(t *testing.T, field string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "photo.png")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func pngImage(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}
