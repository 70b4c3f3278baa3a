package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vbonduro/photoshare/internal/domain"
	"github.com/vbonduro/photoshare/internal/notify"
	"github.com/vbonduro/photoshare/internal/sharing"
	"github.com/vbonduro/photoshare/internal/store"
)

// contactRepository is the subset of store.ContactStore that ShareService requires.
type contactRepository interface {
	Create(ctx context.Context, name, phone string) (*domain.Contact, error)
	GetByName(ctx context.Context, name string) (*domain.Contact, error)
	List(ctx context.Context) ([]*domain.Contact, error)
	Delete(ctx context.Context, id string) error
}

// shareRepository is the subset of store.ShareStore that ShareService requires.
type shareRepository interface {
	Create(ctx context.Context, shares ...*domain.Share) error
	GetByID(ctx context.Context, id string) (*domain.Share, error)
	List(ctx context.Context) ([]*domain.Share, error)
	ListByDirection(ctx context.Context, dir domain.Direction) ([]*domain.Share, error)
	ListSentTo(ctx context.Context, name string) ([]*domain.Share, error)
	UpdateStatus(ctx context.Context, id string, status domain.ShareStatus) error
}

// profileRepository is the subset of store.ProfileStore that ShareService requires.
type profileRepository interface {
	Get(ctx context.Context) (*domain.Profile, error)
	Set(ctx context.Context, name string) (*domain.Profile, error)
}

// photoLookup resolves photo ids named by a share.
type photoLookup interface {
	ListByIDs(ctx context.Context, ids []string) ([]*domain.Photo, error)
}

// Notifier receives events for live subscribers. *notify.Hub satisfies it.
type Notifier interface {
	Publish(ev notify.Event)
}

type ShareService struct {
	contacts contactRepository
	shares   shareRepository
	profiles profileRepository
	photos   photoLookup
	links    *sharing.LinkGenerator
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

func NewShareService(
	contacts contactRepository,
	shares shareRepository,
	profiles profileRepository,
	photos photoLookup,
	links *sharing.LinkGenerator,
	notifier Notifier,
	logger *slog.Logger,
) *ShareService {
	return &ShareService{
		contacts: contacts,
		shares:   shares,
		profiles: profiles,
		photos:   photos,
		links:    links,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// ShareResult is the outcome of a share action. ShareID identifies the sent
// record.
type ShareResult struct {
	Message         string        `json:"message"`
	ShareID         string        `json:"share_id"`
	ShareRecord     *domain.Share `json:"share_record"`
	ReceiveRecord   *domain.Share `json:"receive_record"`
	WhatsAppLink    string        `json:"whatsapp_link,omitempty"`
	WhatsAppMessage string        `json:"whatsapp_message"`
}

// Profile returns the stored profile or the default one when none was saved.
func (s *ShareService) Profile(ctx context.Context) (*domain.Profile, error) {
	p, err := s.profiles.Get(ctx)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return &domain.Profile{Name: domain.DefaultProfileName, CreatedAt: s.now().UTC()}, nil
	}
	return p, nil
}

func (s *ShareService) SetProfile(ctx context.Context, name string) (*domain.Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name is required")
	}
	return s.profiles.Set(ctx, name)
}

func (s *ShareService) ListContacts(ctx context.Context) ([]*domain.Contact, error) {
	return s.contacts.List(ctx)
}

// AddContact rejects an empty name and a name already present in any letter
// case. Phone numbers are stored as entered.
func (s *ShareService) AddContact(ctx context.Context, name, phone string) (*domain.Contact, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name is required")
	}

	existing, err := s.contacts.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up contact: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateContact, existing.Name)
	}

	contact, err := s.contacts.Create(ctx, name, strings.TrimSpace(phone))
	if err != nil {
		return nil, err
	}

	s.logger.Info("contact added", "contact_id", contact.ID)
	s.publish(notify.Event{Type: notify.EventContactAdded, ContactID: contact.ID})
	return contact, nil
}

func (s *ShareService) DeleteContact(ctx context.Context, id string) error {
	if err := s.contacts.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrContactNotFound, id)
		}
		return err
	}

	s.logger.Info("contact deleted", "contact_id", id)
	s.publish(notify.Event{Type: notify.EventContactRemoved, ContactID: id})
	return nil
}

// Share records a sent share and its mirrored received record for the
// contact matching contactName, and builds the messenger link. Unknown photo
// ids are dropped; at least one must exist.
func (s *ShareService) Share(ctx context.Context, photoIDs []string, contactName string) (*ShareResult, error) {
	ids := dedupe(photoIDs)
	contactName = strings.TrimSpace(contactName)
	if len(ids) == 0 || contactName == "" {
		return nil, invalid("photo_ids and contact_name are required")
	}

	contact, err := s.contacts.GetByName(ctx, contactName)
	if err != nil {
		return nil, fmt.Errorf("failed to look up contact: %w", err)
	}
	if contact == nil {
		return nil, fmt.Errorf("%w: %s", ErrContactNotFound, contactName)
	}

	photos, err := s.photos.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load photos: %w", err)
	}
	if len(photos) == 0 {
		return nil, ErrPhotoNotFound
	}

	profile, err := s.Profile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	// Keep the caller's order for the ids that exist.
	known := make(map[string]domain.Photo, len(photos))
	for _, p := range photos {
		known[p.ID] = *p
	}
	sharedIDs := make([]string, 0, len(photos))
	shared := make([]domain.Photo, 0, len(photos))
	for _, id := range ids {
		if p, ok := known[id]; ok {
			sharedIDs = append(sharedIDs, id)
			shared = append(shared, withURL(p))
		}
	}

	at := s.now().UTC()
	sent := &domain.Share{
		Direction:  domain.DirectionSent,
		From:       profile.Name,
		To:         contact.Name,
		ToPhone:    contact.Phone,
		PhotoIDs:   sharedIDs,
		PhotoCount: len(sharedIDs),
		CreatedAt:  at,
		Status:     domain.StatusRead,
	}
	received := &domain.Share{
		Direction:  domain.DirectionReceived,
		From:       profile.Name,
		To:         contact.Name,
		PhotoIDs:   sharedIDs,
		PhotoCount: len(sharedIDs),
		CreatedAt:  at,
		Status:     domain.StatusUnread,
	}
	if err := s.shares.Create(ctx, sent, received); err != nil {
		return nil, err
	}

	message := sharing.ShareMessage(profile.Name, len(sharedIDs), sharing.MessageTags(shared), at)
	result := &ShareResult{
		Message:         fmt.Sprintf("Shared %d photo(s) with %s!", len(sharedIDs), contact.Name),
		ShareID:         sent.ID,
		ShareRecord:     sent,
		ReceiveRecord:   received,
		WhatsAppMessage: message,
	}
	if link := s.links.Generate(contact.Phone, message); link != nil {
		result.WhatsAppLink = link.URI
	}

	s.logger.Info("photos shared", "share_id", sent.ID, "contact_id", contact.ID, "photo_count", len(sharedIDs))
	s.publish(notify.Event{
		Type:       notify.EventShareCreated,
		ShareID:    sent.ID,
		From:       sent.From,
		To:         sent.To,
		PhotoCount: sent.PhotoCount,
	})
	return result, nil
}

// AllShares returns every record, newest first, without photo details.
func (s *ShareService) AllShares(ctx context.Context) ([]*domain.Share, error) {
	return s.shares.List(ctx)
}

// History returns every record, newest first, with photos expanded.
func (s *ShareService) History(ctx context.Context) ([]*domain.Share, error) {
	shares, err := s.shares.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.expand(ctx, shares)
}

func (s *ShareService) SentShares(ctx context.Context) ([]*domain.Share, error) {
	shares, err := s.shares.ListByDirection(ctx, domain.DirectionSent)
	if err != nil {
		return nil, err
	}
	return s.expand(ctx, shares)
}

// ReceivedShares returns every received record without photo details.
func (s *ShareService) ReceivedShares(ctx context.Context) ([]*domain.Share, error) {
	return s.shares.ListByDirection(ctx, domain.DirectionReceived)
}

// ReceivedByMe returns received records addressed to the profile name, with
// photos expanded.
func (s *ShareService) ReceivedByMe(ctx context.Context) ([]*domain.Share, error) {
	profile, err := s.Profile(ctx)
	if err != nil {
		return nil, err
	}
	shares, err := s.shares.ListByDirection(ctx, domain.DirectionReceived)
	if err != nil {
		return nil, err
	}

	mine := make([]*domain.Share, 0, len(shares))
	for _, sh := range shares {
		if strings.EqualFold(sh.To, profile.Name) {
			mine = append(mine, sh)
		}
	}
	return s.expand(ctx, mine)
}

// PhotosSharedWith returns the distinct photos sent to a contact, in the
// order they were first shared.
func (s *ShareService) PhotosSharedWith(ctx context.Context, contactName string) ([]domain.Photo, error) {
	shares, err := s.shares.ListSentTo(ctx, strings.TrimSpace(contactName))
	if err != nil {
		return nil, err
	}

	var ids []string
	for i := len(shares) - 1; i >= 0; i-- {
		ids = append(ids, shares[i].PhotoIDs...)
	}
	ids = dedupe(ids)
	if len(ids) == 0 {
		return []domain.Photo{}, nil
	}

	photos, err := s.photos.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load photos: %w", err)
	}
	byID := make(map[string]*domain.Photo, len(photos))
	for _, p := range photos {
		byID[p.ID] = p
	}

	out := make([]domain.Photo, 0, len(photos))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, withURL(*p))
		}
	}
	return out, nil
}

func (s *ShareService) MarkRead(ctx context.Context, id string) error {
	sh, err := s.shares.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if sh == nil {
		return fmt.Errorf("%w: %s", ErrShareNotFound, id)
	}
	if sh.Status == domain.StatusRead {
		return nil
	}

	if err := s.shares.UpdateStatus(ctx, id, domain.StatusRead); err != nil {
		return fmt.Errorf("failed to mark share read: %w", err)
	}
	s.publish(notify.Event{Type: notify.EventShareRead, ShareID: id})
	return nil
}

// expand attaches photo details to each share with a single lookup.
func (s *ShareService) expand(ctx context.Context, shares []*domain.Share) ([]*domain.Share, error) {
	var ids []string
	for _, sh := range shares {
		ids = append(ids, sh.PhotoIDs...)
	}
	ids = dedupe(ids)
	if len(ids) == 0 {
		return shares, nil
	}

	photos, err := s.photos.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load photos: %w", err)
	}
	byID := make(map[string]*domain.Photo, len(photos))
	for _, p := range photos {
		byID[p.ID] = p
	}

	for _, sh := range shares {
		sh.Photos = make([]domain.Photo, 0, len(sh.PhotoIDs))
		for _, id := range sh.PhotoIDs {
			if p, ok := byID[id]; ok {
				sh.Photos = append(sh.Photos, withURL(*p))
			}
		}
	}
	return shares, nil
}

func (s *ShareService) publish(ev notify.Event) {
	if s.notifier != nil {
		s.notifier.Publish(ev)
	}
}

func dedupe(ids []string) []string {
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

// PhotoURL is where the web layer serves a photo's image.
func PhotoURL(id string) string {
	return "/api/photos/" + id + "/image"
}

func withURL(p domain.Photo) domain.Photo {
	p.URL = PhotoURL(p.ID)
	return p
}
