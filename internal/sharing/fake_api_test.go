package sharing

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/vbonduro/photoshare/internal/domain"
)

// fakeAPI is an in-memory API that counts calls and can be made to fail or
// block.
type fakeAPI struct {
	mu       sync.Mutex
	contacts []domain.Contact
	shares   []domain.Share
	nextID   int

	listCalls   int
	addCalls    int
	deleteCalls int
	shareCalls  int

	shareErr  error
	shareLink string
	// shareGate, when set, blocks CreateShare until it is closed.
	shareGate chan struct{}
	// shareStarted is signalled when CreateShare begins.
	shareStarted chan struct{}
	// knownPhotos, when set, limits which ids CreateShare records.
	knownPhotos map[string]bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{}
}

func (f *fakeAPI) ListContacts(_ context.Context) ([]domain.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	return append([]domain.Contact(nil), f.contacts...), nil
}

func (f *fakeAPI) AddContact(_ context.Context, name, phone string) (*domain.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addCalls++
	f.nextID++
	c := domain.Contact{ID: fmt.Sprintf("c%d", f.nextID), Name: name, Phone: phone, AddedAt: time.Now()}
	f.contacts = append(f.contacts, c)
	return &c, nil
}

func (f *fakeAPI) DeleteContact(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	for i, c := range f.contacts {
		if c.ID == id {
			f.contacts = append(f.contacts[:i], f.contacts[i+1:]...)
			return nil
		}
	}
	return &NotFoundError{Resource: "contact", ID: id}
}

func (f *fakeAPI) CreateShare(_ context.Context, photoIDs []string, contactName string) (*ShareResponse, error) {
	f.mu.Lock()
	f.shareCalls++
	started, gate := f.shareStarted, f.shareGate
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.shareErr != nil {
		return nil, f.shareErr
	}
	var phone string
	for _, c := range f.contacts {
		if strings.EqualFold(c.Name, contactName) {
			phone = c.Phone
		}
	}
	if f.knownPhotos != nil {
		var kept []string
		for _, pid := range photoIDs {
			if f.knownPhotos[pid] {
				kept = append(kept, pid)
			}
		}
		photoIDs = kept
	}
	f.nextID++
	id := fmt.Sprintf("s%d", f.nextID)
	f.shares = append([]domain.Share{{
		ID:         id,
		Direction:  domain.DirectionSent,
		From:       "You",
		To:         contactName,
		ToPhone:    phone,
		PhotoIDs:   photoIDs,
		PhotoCount: len(photoIDs),
		CreatedAt:  time.Now(),
		Status:     domain.StatusRead,
	}}, f.shares...)
	record := f.shares[0]
	return &ShareResponse{ShareID: id, WhatsAppLink: f.shareLink, ShareRecord: &record}, nil
}

func (f *fakeAPI) ShareHistory(_ context.Context) ([]domain.Share, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Share(nil), f.shares...), nil
}

func (f *fakeAPI) ReceivedShares(_ context.Context) ([]domain.Share, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Share
	for _, s := range f.shares {
		if s.Direction == domain.DirectionReceived {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeAPI) MarkShareRead(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.shares {
		if f.shares[i].ID == id {
			f.shares[i].Status = domain.StatusRead
			return nil
		}
	}
	return &NotFoundError{Resource: "share", ID: id}
}

func (f *fakeAPI) calls() (list, add, del, share int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls, f.addCalls, f.deleteCalls, f.shareCalls
}
