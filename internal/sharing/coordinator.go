package sharing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vbonduro/photoshare/internal/domain"
)

const (
	DefaultOpenDelay  = time.Second
	DefaultClearDelay = 2 * time.Second
)

// ErrClosed is returned by a Coordinator after Close.
var ErrClosed = errors.New("sharing coordinator closed")

type State int

const (
	StateIdle State = iota
	StateContactSelected
	StateSharing
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateContactSelected:
		return "contact_selected"
	case StateSharing:
		return "sharing"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeSuccess
	OutcomeFailure
)

// LinkOpener hands a deep link to whatever opens external links.
type LinkOpener interface {
	Open(uri string) error
}

// OpenerFunc adapts a function to LinkOpener.
type OpenerFunc func(uri string) error

func (f OpenerFunc) Open(uri string) error { return f(uri) }

// Snapshot is a consistent view of the coordinator for rendering.
type Snapshot struct {
	State     State
	Outcome   Outcome
	Contact   *domain.Contact
	Message   string
	CanShare  bool
	CanSelect bool
}

// Coordinator drives one sharing interaction:
//
//	Idle -> ContactSelected -> Sharing -> Completed(success|failure) -> Idle
//
// Only one share may be in flight. After a success the link is opened once
// after OpenDelay and the status message cleared after ClearDelay, which
// also returns the coordinator to Idle. Timers die with Close.
type Coordinator struct {
	recorder   *Recorder
	opener     LinkOpener
	logger     *slog.Logger
	openDelay  time.Duration
	clearDelay time.Duration

	mu      sync.Mutex
	state   State
	outcome Outcome
	contact *domain.Contact
	message string
	gen     uint64
	timers  map[*time.Timer]struct{}
	closed  bool
}

type CoordinatorOption func(*Coordinator)

func WithOpenDelay(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) { c.openDelay = d }
}

func WithClearDelay(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) { c.clearDelay = d }
}

func NewCoordinator(recorder *Recorder, opener LinkOpener, logger *slog.Logger, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		recorder:   recorder,
		opener:     opener,
		logger:     logger,
		openDelay:  DefaultOpenDelay,
		clearDelay: DefaultClearDelay,
		timers:     make(map[*time.Timer]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SelectContact enables the share action. The selector is disabled while a
// share is in flight.
func (c *Coordinator) SelectContact(contact domain.Contact) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.state == StateSharing {
		return ErrShareInProgress
	}
	c.gen++
	c.contact = &contact
	c.state = StateContactSelected
	c.outcome = OutcomeNone
	c.message = ""
	return nil
}

// Dismiss drops the selection and any message and returns to Idle.
func (c *Coordinator) Dismiss() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.state == StateSharing {
		return
	}
	c.gen++
	c.reset()
}

// Share shares photoIDs with the selected contact. Calls made while a share
// is in flight return ErrShareInProgress and change nothing.
func (c *Coordinator) Share(ctx context.Context, photoIDs []string) (*Receipt, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if c.state == StateSharing {
		c.mu.Unlock()
		return nil, ErrShareInProgress
	}
	if c.contact == nil {
		err := &ValidationError{Field: "contact", Message: "no contact selected"}
		c.message = err.Error()
		c.mu.Unlock()
		return nil, err
	}
	if len(uniqueIDs(photoIDs)) == 0 {
		err := &ValidationError{Field: "photo_ids", Message: "select at least one photo"}
		c.message = err.Error()
		c.mu.Unlock()
		return nil, err
	}
	contact := *c.contact
	c.gen++
	gen := c.gen
	c.state = StateSharing
	c.outcome = OutcomeNone
	c.message = ""
	c.mu.Unlock()

	receipt, err := c.recorder.Share(ctx, photoIDs, contact.ID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return receipt, err
	}
	c.state = StateCompleted
	if err != nil {
		c.outcome = OutcomeFailure
		c.message = fmt.Sprintf("Failed to share photos: %v", err)
		return nil, err
	}

	c.outcome = OutcomeSuccess
	c.message = fmt.Sprintf("Shared %d photo(s) with %s", receipt.PhotoCount, contact.Name)
	if receipt.Link != nil {
		uri := receipt.Link.URI
		c.schedule(c.openDelay, func() { c.openLink(uri) })
	}
	c.schedule(c.clearDelay, func() { c.clearMessage(gen) })
	return receipt, nil
}

func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := Snapshot{
		State:     c.state,
		Outcome:   c.outcome,
		Message:   c.message,
		CanShare:  !c.closed && c.contact != nil && c.state != StateSharing,
		CanSelect: !c.closed && c.state != StateSharing,
	}
	if c.contact != nil {
		contact := *c.contact
		snap.Contact = &contact
	}
	return snap
}

// Close stops pending timers. Callbacks that were already firing become
// no-ops.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for t := range c.timers {
		t.Stop()
	}
	clear(c.timers)
}

// schedule must be called with c.mu held.
func (c *Coordinator) schedule(d time.Duration, fn func()) {
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		c.mu.Lock()
		delete(c.timers, t)
		c.mu.Unlock()
		fn()
	})
	c.timers[t] = struct{}{}
}

func (c *Coordinator) openLink(uri string) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed || c.opener == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("link opener panicked", "panic", r)
		}
	}()
	if err := c.opener.Open(uri); err != nil {
		c.logger.Warn("failed to open share link", "error", err)
	}
}

func (c *Coordinator) clearMessage(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.gen || c.state != StateCompleted {
		return
	}
	c.reset()
}

// reset must be called with c.mu held.
func (c *Coordinator) reset() {
	c.state = StateIdle
	c.outcome = OutcomeNone
	c.contact = nil
	c.message = ""
}
