package sharing

import (
	"context"
	"fmt"

	"github.com/vbonduro/photoshare/internal/domain"
)

// PreviewSize is the number of thumbnails shown per share.
const PreviewSize = 4

// Preview is the visible slice of a share's photos plus a count of the rest.
type Preview struct {
	Photos   []domain.Photo
	Overflow int
}

// Entry is one share prepared for presentation.
type Entry struct {
	Share   domain.Share
	Preview Preview
	Link    *Link
}

// HistoryView splits the unified history by direction.
type HistoryView struct {
	Sent     []Entry
	Received []Entry
}

// History reads share history. Everything past the fetch is a pure
// projection; shares are never modified here.
type History struct {
	api   ShareAPI
	links *LinkGenerator
}

func NewHistory(api ShareAPI, links *LinkGenerator) *History {
	return &History{api: api, links: links}
}

// History returns every share in server order (newest first).
func (h *History) History(ctx context.Context) ([]domain.Share, error) {
	shares, err := h.api.ShareHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load share history: %w", err)
	}
	return shares, nil
}

// Received returns only shares addressed to the local user.
func (h *History) Received(ctx context.Context) ([]domain.Share, error) {
	shares, err := h.api.ReceivedShares(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load received shares: %w", err)
	}
	received := make([]domain.Share, 0, len(shares))
	for _, s := range shares {
		s.Direction = domain.DirectionReceived
		if s.Status == "" {
			s.Status = domain.StatusUnread
		}
		received = append(received, s)
	}
	return received, nil
}

// MarkRead flips a received share to read.
func (h *History) MarkRead(ctx context.Context, id string) error {
	return h.api.MarkShareRead(ctx, id)
}

// Views fetches the history and builds both presentation lists.
func (h *History) Views(ctx context.Context) (*HistoryView, error) {
	shares, err := h.History(ctx)
	if err != nil {
		return nil, err
	}
	sent, received := Partition(shares)
	view := &HistoryView{
		Sent:     make([]Entry, 0, len(sent)),
		Received: make([]Entry, 0, len(received)),
	}
	for _, s := range sent {
		view.Sent = append(view.Sent, h.Entry(s))
	}
	for _, s := range received {
		view.Received = append(view.Received, h.Entry(s))
	}
	return view, nil
}

func (h *History) Entry(s domain.Share) Entry {
	return Entry{Share: s, Preview: PreviewOf(s, PreviewSize), Link: h.Link(&s)}
}

// Link rebuilds the messenger link for a sent share with a known phone.
func (h *History) Link(s *domain.Share) *Link {
	phone := s.CounterpartyPhone()
	if phone == "" {
		return nil
	}
	return h.links.Generate(phone, HistoryMessage(s))
}

// Partition splits shares by direction preserving relative order. Received
// shares without a status are reported as unread.
func Partition(shares []domain.Share) (sent, received []domain.Share) {
	for _, s := range shares {
		switch s.Direction {
		case domain.DirectionSent:
			sent = append(sent, s)
		case domain.DirectionReceived:
			if s.Status == "" {
				s.Status = domain.StatusUnread
			}
			received = append(received, s)
		}
	}
	return sent, received
}

// PreviewOf returns up to size photos and the number left over.
func PreviewOf(s domain.Share, size int) Preview {
	if len(s.Photos) <= size {
		return Preview{Photos: s.Photos}
	}
	return Preview{Photos: s.Photos[:size], Overflow: len(s.Photos) - size}
}
