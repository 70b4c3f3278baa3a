package sharing

import (
	"context"

	"github.com/vbonduro/photoshare/internal/domain"
)

// ContactAPI is the remote contact list.
type ContactAPI interface {
	ListContacts(ctx context.Context) ([]domain.Contact, error)
	AddContact(ctx context.Context, name, phone string) (*domain.Contact, error)
	DeleteContact(ctx context.Context, id string) error
}

// ShareResponse is what the share service returns for a successful share.
// WhatsAppLink is empty when the service did not build one. ShareRecord is
// the sent record as stored, which may name fewer photos than requested.
type ShareResponse struct {
	ShareID      string        `json:"share_id"`
	WhatsAppLink string        `json:"whatsapp_link,omitempty"`
	Message      string        `json:"message,omitempty"`
	ShareRecord  *domain.Share `json:"share_record,omitempty"`
}

// PhotoCount is the number of photos the service recorded, or requested
// when the service did not report its record.
func (r *ShareResponse) PhotoCount(requested int) int {
	if r.ShareRecord != nil && r.ShareRecord.Count() > 0 {
		return r.ShareRecord.Count()
	}
	return requested
}

// ShareAPI creates shares and reads share history.
type ShareAPI interface {
	CreateShare(ctx context.Context, photoIDs []string, contactName string) (*ShareResponse, error)
	ShareHistory(ctx context.Context) ([]domain.Share, error)
	ReceivedShares(ctx context.Context) ([]domain.Share, error)
	MarkShareRead(ctx context.Context, id string) error
}

// API is everything the sharing subsystem consumes from the server.
type API interface {
	ContactAPI
	ShareAPI
}
