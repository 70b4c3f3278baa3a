package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/photoshare/internal/domain"
	"github.com/vbonduro/photoshare/internal/store"
)

type stubResponder struct {
	reply  string
	err    error
	tagged [][]string
}

func (s *stubResponder) Respond(_ context.Context, _ string, tagged [][]string) (string, error) {
	s.tagged = tagged
	return s.reply, s.err
}

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		query    string
		expected Intent
	}{
		{"show me beach photos", IntentSearchPhotos},
		{"Find dogs", IntentSearchPhotos},
		{"send these to Asha", IntentSharePhotos},
		{"WhatsApp the sunset", IntentSharePhotos},
		{"upload a picture", IntentUploadPhoto},
		{"add this", IntentUploadPhoto},
		{"hello there", IntentUnknown},
		{"", IntentUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyIntent(tt.query))
		})
	}
}

func TestRank(t *testing.T) {
	photos := []*domain.Photo{
		{ID: "a", Tags: []string{"beach"}},
		{ID: "b", Tags: []string{"Beach", "Sunset"}},
		{ID: "c", Tags: []string{"dog"}},
		{ID: "d", Tags: []string{"sunset"}},
	}

	ranked := Rank(photos, "beach SUNSET beach")
	ids := make([]string, 0, len(ranked))
	for _, p := range ranked {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"b", "a", "d"}, ids)
	assert.Equal(t, PhotoURL("b"), ranked[0].URL)

	assert.Empty(t, Rank(photos, "mountain"))
}

func newSearchFixture(t *testing.T, responder *stubResponder) *SearchService {
	t.Helper()
	photos := store.NewPhotoStore(openTestDB(t))
	ctx := context.Background()
	_, err := photos.Create(ctx, "a.jpg", "image/jpeg", []string{"beach", "sunset"})
	require.NoError(t, err)
	_, err = photos.Create(ctx, "b.jpg", "image/jpeg", []string{"dog"})
	require.NoError(t, err)

	if responder == nil {
		return NewSearchService(photos, nil, discardLogger())
	}
	return NewSearchService(photos, responder, discardLogger())
}

func TestSearch_DefaultMessage(t *testing.T) {
	svc := newSearchFixture(t, nil)

	result, err := svc.Search(context.Background(), "show beach")
	require.NoError(t, err)
	assert.Equal(t, "Found 1 photos matching your query", result.Message)
	assert.Equal(t, IntentSearchPhotos, result.Intent)
	require.Len(t, result.Photos, 1)
}

func TestSearch_AssistantReply(t *testing.T) {
	responder := &stubResponder{reply: "Here is your beach sunset."}
	svc := newSearchFixture(t, responder)

	result, err := svc.Search(context.Background(), "beach")
	require.NoError(t, err)
	assert.Equal(t, "Here is your beach sunset.", result.Message)
	assert.Equal(t, [][]string{{"beach", "sunset"}}, responder.tagged)
}

func TestSearch_AssistantFailureFallsBack(t *testing.T) {
	svc := newSearchFixture(t, &stubResponder{err: errors.New("quota")})

	result, err := svc.Search(context.Background(), "dog")
	require.NoError(t, err)
	assert.Equal(t, "Found 1 photos matching your query", result.Message)
}

func TestSearch_EmptyQuery(t *testing.T) {
	svc := newSearchFixture(t, nil)

	_, err := svc.Search(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
