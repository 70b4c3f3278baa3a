package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	env := newTestEnv(t, Options{})

	rec := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestProfile(t *testing.T) {
	env := newTestEnv(t, Options{})

	rec := env.do(t, http.MethodGet, "/api/user/profile", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var profile struct {
		Name string `json:"name"`
	}
	decode(t, rec, &profile)
	assert.Equal(t, "You", profile.Name)

	rec = env.do(t, http.MethodPost, "/api/user/profile", map[string]string{"name": "Priya"})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &profile)
	assert.Equal(t, "Priya", profile.Name)

	rec = env.do(t, http.MethodPost, "/api/user/profile", map[string]string{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContacts(t *testing.T) {
	env := newTestEnv(t, Options{})

	rec := env.do(t, http.MethodGet, "/api/contacts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/api/contacts", map[string]string{"name": "Asha", "phone": "9876543210"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var contact struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Phone string `json:"phone"`
	}
	decode(t, rec, &contact)
	assert.NotEmpty(t, contact.ID)
	assert.Equal(t, "Asha", contact.Name)

	rec = env.do(t, http.MethodPost, "/api/contacts", map[string]string{"name": "asha"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/contacts", map[string]string{"name": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/contacts", nil)
	var contacts []map[string]any
	decode(t, rec, &contacts)
	assert.Len(t, contacts, 1)

	rec = env.do(t, http.MethodDelete, "/api/contacts/"+contact.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"deleted"}`, rec.Body.String())

	rec = env.do(t, http.MethodDelete, "/api/contacts/"+contact.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContacts_InvalidJSON(t *testing.T) {
	env := newTestEnv(t, Options{})

	req := httptest.NewRequest(http.MethodPost, "/api/contacts", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid JSON body")
}

func TestShare(t *testing.T) {
	env := newTestEnv(t, Options{})
	photoID := env.uploadPhoto(t)
	rec := env.do(t, http.MethodPost, "/api/contacts", map[string]string{"name": "Asha", "phone": "9876543210"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/share", map[string]any{
		"photo_ids":    []string{photoID, "unknown"},
		"contact_name": "asha",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var result struct {
		Message      string `json:"message"`
		ShareID      string `json:"share_id"`
		WhatsAppLink string `json:"whatsapp_link"`
		ShareRecord  struct {
			Type       string   `json:"type"`
			To         string   `json:"to"`
			PhotoIDs   []string `json:"photo_ids"`
			PhotoCount int      `json:"photo_count"`
		} `json:"share_record"`
		ReceiveRecord struct {
			Type   string `json:"type"`
			Status string `json:"status"`
		} `json:"receive_record"`
	}
	decode(t, rec, &result)
	assert.Equal(t, "Shared 1 photo(s) with Asha!", result.Message)
	assert.NotEmpty(t, result.ShareID)
	assert.True(t, strings.HasPrefix(result.WhatsAppLink, "https://wa.me/919876543210?text="), result.WhatsAppLink)
	assert.Equal(t, "sent", result.ShareRecord.Type)
	assert.Equal(t, []string{photoID}, result.ShareRecord.PhotoIDs)
	assert.Equal(t, 1, result.ShareRecord.PhotoCount)
	assert.Equal(t, "received", result.ReceiveRecord.Type)
	assert.Equal(t, "unread", result.ReceiveRecord.Status)

	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.SharesCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.PhotosShared))
}

func TestShare_Errors(t *testing.T) {
	env := newTestEnv(t, Options{})
	photoID := env.uploadPhoto(t)
	env.do(t, http.MethodPost, "/api/contacts", map[string]string{"name": "Asha"})

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{"missing photos", map[string]any{"contact_name": "Asha"}, http.StatusBadRequest},
		{"missing contact", map[string]any{"photo_ids": []string{photoID}}, http.StatusBadRequest},
		{"unknown contact", map[string]any{"photo_ids": []string{photoID}, "contact_name": "Ravi"}, http.StatusNotFound},
		{"unknown photos", map[string]any{"photo_ids": []string{"nope"}, "contact_name": "Asha"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/share", tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
	assert.Zero(t, testutil.ToFloat64(env.metrics.SharesCreated))
}

func TestShareHistoryEndpoints(t *testing.T) {
	env := newTestEnv(t, Options{})
	photoID := env.uploadPhoto(t)
	env.do(t, http.MethodPost, "/api/contacts", map[string]string{"name": "Asha", "phone": "9876543210"})
	rec := env.do(t, http.MethodPost, "/api/share", map[string]any{"photo_ids": []string{photoID}, "contact_name": "Asha"})
	require.Equal(t, http.StatusCreated, rec.Code)

	type share struct {
		ID     string `json:"id"`
		Type   string `json:"type"`
		Status string `json:"status"`
		Photos []struct {
			ID  string `json:"id"`
			URL string `json:"url"`
		} `json:"photos"`
	}

	var history []share
	decode(t, env.do(t, http.MethodGet, "/api/share/history", nil), &history)
	require.Len(t, history, 2)
	for _, sh := range history {
		require.Len(t, sh.Photos, 1)
		assert.Equal(t, "/api/photos/"+photoID+"/image", sh.Photos[0].URL)
	}

	var all []share
	decode(t, env.do(t, http.MethodGet, "/api/shares", nil), &all)
	assert.Len(t, all, 2)

	var sent []share
	decode(t, env.do(t, http.MethodGet, "/api/shares/sent", nil), &sent)
	require.Len(t, sent, 1)
	assert.Equal(t, "sent", sent[0].Type)

	var received []share
	decode(t, env.do(t, http.MethodGet, "/api/received-shares", nil), &received)
	require.Len(t, received, 1)
	assert.Equal(t, "unread", received[0].Status)

	rec = env.do(t, http.MethodGet, "/api/shares/received", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String(), "nothing is addressed to the local profile")

	var photos []map[string]any
	decode(t, env.do(t, http.MethodGet, "/api/shares/contact/ASHA", nil), &photos)
	require.Len(t, photos, 1)
	assert.Equal(t, photoID, photos[0]["id"])

	rec = env.do(t, http.MethodPost, "/api/shares/"+received[0].ID+"/read", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"read"}`, rec.Body.String())

	decode(t, env.do(t, http.MethodGet, "/api/received-shares", nil), &received)
	assert.Equal(t, "read", received[0].Status)

	rec = env.do(t, http.MethodPost, "/api/shares/missing/read", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChat(t *testing.T) {
	env := newTestEnv(t, Options{})
	photoID := env.uploadPhoto(t)

	rec := env.do(t, http.MethodPost, "/api/chat", map[string]string{"query": "show me landscape shots"})
	require.Equal(t, http.StatusOK, rec.Code)
	var result struct {
		Message string           `json:"message"`
		Intent  string           `json:"intent"`
		Photos  []map[string]any `json:"photos"`
	}
	decode(t, rec, &result)
	assert.Equal(t, "Found 1 photos matching your query", result.Message)
	assert.Equal(t, "SEARCH_PHOTOS", result.Intent)
	require.Len(t, result.Photos, 1)
	assert.Equal(t, photoID, result.Photos[0]["id"])
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.ChatQueries.WithLabelValues("SEARCH_PHOTOS")))

	rec = env.do(t, http.MethodPost, "/api/chat", map[string]string{"query": "zebra"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"photos":[]`)

	rec = env.do(t, http.MethodPost, "/api/chat", map[string]string{"query": " "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
