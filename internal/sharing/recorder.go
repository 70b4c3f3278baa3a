package sharing

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/vbonduro/photoshare/internal/domain"
)

// Receipt is returned for a successful share. Link is nil when the contact
// has no phone number and the service built no link.
type Receipt struct {
	ShareID    string
	Contact    domain.Contact
	PhotoCount int
	Link       *Link
	Message    string
}

// Recorder issues shares to the share service. A share record exists only
// once the service has accepted it; nothing is retried.
type Recorder struct {
	api      ShareAPI
	contacts *ContactStore
	links    *LinkGenerator
	logger   *slog.Logger
	now      func() time.Time
}

func NewRecorder(api ShareAPI, contacts *ContactStore, links *LinkGenerator, logger *slog.Logger) *Recorder {
	return &Recorder{
		api:      api,
		contacts: contacts,
		links:    links,
		logger:   logger,
		now:      time.Now,
	}
}

func (r *Recorder) Share(ctx context.Context, photoIDs []string, contactID string) (*Receipt, error) {
	ids := uniqueIDs(photoIDs)
	if len(ids) == 0 {
		return nil, &ValidationError{Field: "photo_ids", Message: "select at least one photo"}
	}
	if strings.TrimSpace(contactID) == "" {
		return nil, &ValidationError{Field: "contact", Message: "no contact selected"}
	}

	contact, err := r.contacts.Get(ctx, contactID)
	if err != nil {
		return nil, err
	}

	r.logger.Info("share started", "contact_id", contact.ID, "photos", len(ids))
	resp, err := r.api.CreateShare(ctx, ids, contact.Name)
	if err != nil {
		r.logger.Error("share failed", "contact_id", contact.ID, "error", err)
		return nil, err
	}

	count := resp.PhotoCount(len(ids))
	receipt := &Receipt{
		ShareID:    resp.ShareID,
		Contact:    *contact,
		PhotoCount: count,
		Message:    resp.Message,
	}
	if resp.WhatsAppLink != "" {
		receipt.Link = &Link{URI: resp.WhatsAppLink}
	} else {
		receipt.Link = r.links.Generate(contact.Phone, RecipientMessage(contact.Name, count, r.now()))
	}

	r.logger.Info("share complete", "share_id", resp.ShareID, "has_link", receipt.Link != nil)
	return receipt, nil
}

// uniqueIDs drops blanks and repeats while keeping the caller's order.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
