package sharing

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/photoshare/internal/domain"
)

// recordingOpener remembers every link it was asked to open.
type recordingOpener struct {
	mu     sync.Mutex
	opened []string
	err    error
	panics bool
}

func (o *recordingOpener) Open(uri string) error {
	o.mu.Lock()
	o.opened = append(o.opened, uri)
	o.mu.Unlock()
	if o.panics {
		panic("viewer gone")
	}
	return o.err
}

func (o *recordingOpener) Opened() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.opened...)
}

func newTestCoordinator(t *testing.T, api *fakeAPI, opener LinkOpener, opts ...CoordinatorOption) (*Coordinator, domain.Contact) {
	t.Helper()
	rec, contacts := newTestRecorder(api)
	contact, err := contacts.Add(context.Background(), "Asha", "9876543210")
	require.NoError(t, err)

	opts = append([]CoordinatorOption{WithOpenDelay(10 * time.Millisecond), WithClearDelay(40 * time.Millisecond)}, opts...)
	c := NewCoordinator(rec, opener, slog.Default(), opts...)
	t.Cleanup(c.Close)
	return c, *contact
}

func TestCoordinator_IdleCannotShare(t *testing.T) {
	api := newFakeAPI()
	c, _ := newTestCoordinator(t, api, &recordingOpener{})

	snap := c.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.False(t, snap.CanShare)

	_, err := c.Share(context.Background(), []string{"p1"})
	assert.True(t, IsValidation(err))
	assert.NotEmpty(t, c.Snapshot().Message)
	_, _, _, share := api.calls()
	assert.Zero(t, share)
}

func TestCoordinator_EmptyPhotoSetIsNoOp(t *testing.T) {
	api := newFakeAPI()
	c, contact := newTestCoordinator(t, api, &recordingOpener{})
	require.NoError(t, c.SelectContact(contact))

	_, err := c.Share(context.Background(), nil)
	assert.True(t, IsValidation(err))
	assert.Equal(t, StateContactSelected, c.Snapshot().State)
	_, _, _, share := api.calls()
	assert.Zero(t, share)
}

func TestCoordinator_SuccessOpensLinkOnceThenReturnsToIdle(t *testing.T) {
	api := newFakeAPI()
	opener := &recordingOpener{}
	c, contact := newTestCoordinator(t, api, opener)
	require.NoError(t, c.SelectContact(contact))
	assert.True(t, c.Snapshot().CanShare)

	receipt, err := c.Share(context.Background(), []string{"p1"})
	require.NoError(t, err)

	snap := c.Snapshot()
	assert.Equal(t, StateCompleted, snap.State)
	assert.Equal(t, OutcomeSuccess, snap.Outcome)
	assert.Equal(t, "Shared 1 photo(s) with Asha", snap.Message)

	require.Eventually(t, func() bool { return c.Snapshot().State == StateIdle }, time.Second, 5*time.Millisecond)
	assert.Empty(t, c.Snapshot().Message)
	assert.Nil(t, c.Snapshot().Contact)
	assert.Equal(t, []string{receipt.Link.URI}, opener.Opened())
}

func TestCoordinator_MessageUsesRecordedCount(t *testing.T) {
	api := newFakeAPI()
	api.knownPhotos = map[string]bool{"p1": true}
	c, contact := newTestCoordinator(t, api, &recordingOpener{})
	require.NoError(t, c.SelectContact(contact))

	_, err := c.Share(context.Background(), []string{"p1", "bogus1", "bogus2"})
	require.NoError(t, err)
	assert.Equal(t, "Shared 1 photo(s) with Asha", c.Snapshot().Message)
}

func TestCoordinator_SecondShareWhileInFlightRejected(t *testing.T) {
	api := newFakeAPI()
	api.shareGate = make(chan struct{})
	api.shareStarted = make(chan struct{}, 1)
	c, contact := newTestCoordinator(t, api, &recordingOpener{})
	require.NoError(t, c.SelectContact(contact))

	done := make(chan error, 1)
	go func() {
		_, err := c.Share(context.Background(), []string{"p1"})
		done <- err
	}()
	<-api.shareStarted

	snap := c.Snapshot()
	assert.Equal(t, StateSharing, snap.State)
	assert.False(t, snap.CanShare)
	assert.False(t, snap.CanSelect)

	_, err := c.Share(context.Background(), []string{"p1"})
	assert.ErrorIs(t, err, ErrShareInProgress)
	assert.ErrorIs(t, c.SelectContact(contact), ErrShareInProgress)

	close(api.shareGate)
	require.NoError(t, <-done)

	_, _, _, share := api.calls()
	assert.Equal(t, 1, share)
}

func TestCoordinator_FailureReEnablesInputWithoutTimers(t *testing.T) {
	api := newFakeAPI()
	api.shareErr = &ServiceError{Op: "create share", Err: errors.New("connection refused")}
	opener := &recordingOpener{}
	c, contact := newTestCoordinator(t, api, opener)
	require.NoError(t, c.SelectContact(contact))

	_, err := c.Share(context.Background(), []string{"p1"})
	require.Error(t, err)

	snap := c.Snapshot()
	assert.Equal(t, StateCompleted, snap.State)
	assert.Equal(t, OutcomeFailure, snap.Outcome)
	assert.Contains(t, snap.Message, "Failed to share photos")
	assert.True(t, snap.CanShare, "retry must be possible immediately")

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, StateCompleted, c.Snapshot().State, "no clear timer on failure")
	assert.Empty(t, opener.Opened())

	c.Dismiss()
	assert.Equal(t, StateIdle, c.Snapshot().State)
}

func TestCoordinator_CloseCancelsPendingTimers(t *testing.T) {
	api := newFakeAPI()
	opener := &recordingOpener{}
	c, contact := newTestCoordinator(t, api, opener, WithOpenDelay(30*time.Millisecond), WithClearDelay(60*time.Millisecond))
	require.NoError(t, c.SelectContact(contact))

	_, err := c.Share(context.Background(), []string{"p1"})
	require.NoError(t, err)
	c.Close()

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, opener.Opened())
	assert.Equal(t, StateCompleted, c.Snapshot().State)

	_, err = c.Share(context.Background(), []string{"p1"})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestCoordinator_OpenerPanicIsContained(t *testing.T) {
	api := newFakeAPI()
	opener := &recordingOpener{panics: true}
	c, contact := newTestCoordinator(t, api, opener)
	require.NoError(t, c.SelectContact(contact))

	_, err := c.Share(context.Background(), []string{"p1"})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return c.Snapshot().State == StateIdle }, time.Second, 5*time.Millisecond)
	assert.Len(t, opener.Opened(), 1)
}

func TestCoordinator_ReselectDuringCompletedKeepsSelection(t *testing.T) {
	api := newFakeAPI()
	c, contact := newTestCoordinator(t, api, &recordingOpener{})
	require.NoError(t, c.SelectContact(contact))

	_, err := c.Share(context.Background(), []string{"p1"})
	require.NoError(t, err)
	require.NoError(t, c.SelectContact(contact))

	time.Sleep(80 * time.Millisecond)
	snap := c.Snapshot()
	assert.Equal(t, StateContactSelected, snap.State, "stale clear timer must not reset a new selection")
	require.NotNil(t, snap.Contact)
	assert.Equal(t, "Asha", snap.Contact.Name)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "sharing", StateSharing.String())
	assert.Equal(t, "state(9)", State(9).String())
}
