package sharing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/vbonduro/photoshare/internal/domain"
)

// ContactStore caches the remote contact list. Every mutation, successful
// or not, is followed by a full reload; the cache is never patched.
type ContactStore struct {
	api    ContactAPI
	logger *slog.Logger

	mu       sync.RWMutex
	contacts []domain.Contact
	loaded   bool
}

func NewContactStore(api ContactAPI, logger *slog.Logger) *ContactStore {
	return &ContactStore{api: api, logger: logger}
}

// List returns the cached contacts, loading them on first use.
func (s *ContactStore) List(ctx context.Context) ([]domain.Contact, error) {
	s.mu.RLock()
	if s.loaded {
		out := append([]domain.Contact(nil), s.contacts...)
		s.mu.RUnlock()
		return out, nil
	}
	s.mu.RUnlock()

	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s.Cached(), nil
}

// Cached returns the current cache without touching the network.
func (s *ContactStore) Cached() []domain.Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Contact(nil), s.contacts...)
}

// Reload replaces the cache with the server's list.
func (s *ContactStore) Reload(ctx context.Context) error {
	contacts, err := s.api.ListContacts(ctx)
	if err != nil {
		return fmt.Errorf("failed to load contacts: %w", err)
	}
	s.mu.Lock()
	s.contacts = contacts
	s.loaded = true
	s.mu.Unlock()
	return nil
}

func (s *ContactStore) Add(ctx context.Context, name, phone string) (*domain.Contact, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Message: "contact name is required"}
	}

	contact, err := s.api.AddContact(ctx, name, strings.TrimSpace(phone))
	s.reloadAfterMutation(ctx)
	if err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *ContactStore) Remove(ctx context.Context, id string) error {
	err := s.api.DeleteContact(ctx, id)
	s.reloadAfterMutation(ctx)
	return err
}

// Get resolves id against the cache, reloading once if it is missing.
func (s *ContactStore) Get(ctx context.Context, id string) (*domain.Contact, error) {
	if c := s.lookup(id); c != nil {
		return c, nil
	}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	if c := s.lookup(id); c != nil {
		return c, nil
	}
	return nil, &NotFoundError{Resource: "contact", ID: id}
}

func (s *ContactStore) lookup(id string) *domain.Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.contacts {
		if s.contacts[i].ID == id {
			c := s.contacts[i]
			return &c
		}
	}
	return nil
}

func (s *ContactStore) reloadAfterMutation(ctx context.Context) {
	if err := s.Reload(ctx); err != nil {
		s.logger.Warn("contact reload after mutation failed", "error", err)
	}
}
