package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/vbonduro/photoshare/internal/domain"
	"github.com/vbonduro/photoshare/internal/vision"
)

type Intent string

const (
	IntentSearchPhotos Intent = "SEARCH_PHOTOS"
	IntentSharePhotos  Intent = "SHARE_PHOTOS"
	IntentUploadPhoto  Intent = "UPLOAD_PHOTO"
	IntentUnknown      Intent = "UNKNOWN"
)

// intentKeywords is checked in order; the first group with a keyword
// contained in the query wins.
var intentKeywords = []struct {
	intent   Intent
	keywords []string
}{
	{IntentSearchPhotos, []string{"show", "find", "get"}},
	{IntentSharePhotos, []string{"send", "share", "email", "whatsapp"}},
	{IntentUploadPhoto, []string{"upload", "add"}},
}

// ClassifyIntent maps a chat query to the action the user most likely wants.
func ClassifyIntent(query string) Intent {
	q := strings.ToLower(query)
	for _, group := range intentKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(q, kw) {
				return group.intent
			}
		}
	}
	return IntentUnknown
}

// photoLister is the subset of store.PhotoStore that SearchService requires.
type photoLister interface {
	List(ctx context.Context) ([]*domain.Photo, error)
}

type SearchResult struct {
	Message string         `json:"message"`
	Photos  []domain.Photo `json:"photos"`
	Intent  Intent         `json:"intent"`
}

type SearchService struct {
	photos    photoLister
	responder vision.Responder
	logger    *slog.Logger
}

// NewSearchService builds the chat search. responder may be nil.
func NewSearchService(photos photoLister, responder vision.Responder, logger *slog.Logger) *SearchService {
	return &SearchService{photos: photos, responder: responder, logger: logger}
}

// Search ranks photos by how many query words appear among their tags.
// Photos matching no word are excluded; ties keep upload order.
func (s *SearchService) Search(ctx context.Context, query string) (*SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, invalid("query is required")
	}

	all, err := s.photos.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}

	matches := Rank(all, query)
	result := &SearchResult{
		Message: fmt.Sprintf("Found %d photos matching your query", len(matches)),
		Photos:  matches,
		Intent:  ClassifyIntent(query),
	}

	if s.responder != nil && len(matches) > 0 {
		tagged := make([][]string, 0, len(matches))
		for _, p := range matches {
			tagged = append(tagged, p.Tags)
		}
		reply, err := s.responder.Respond(ctx, query, tagged)
		if err != nil {
			s.logger.Warn("assistant reply failed, using default message", "error", err)
		} else if reply != "" {
			result.Message = reply
		}
	}

	s.logger.Info("chat search", "intent", result.Intent, "matches", len(matches))
	return result, nil
}

// Rank scores each photo by the number of distinct query words found in its
// tags, case-insensitively.
func Rank(photos []*domain.Photo, query string) []domain.Photo {
	words := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(query)) {
		words[w] = true
	}

	type scored struct {
		photo domain.Photo
		score int
	}
	var hits []scored
	for _, p := range photos {
		tags := make(map[string]bool, len(p.Tags))
		for _, t := range p.Tags {
			tags[strings.ToLower(t)] = true
		}
		score := 0
		for w := range words {
			if tags[w] {
				score++
			}
		}
		if score > 0 {
			hits = append(hits, scored{photo: withURL(*p), score: score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	out := make([]domain.Photo, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.photo)
	}
	return out
}
