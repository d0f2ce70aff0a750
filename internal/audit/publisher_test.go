package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"rwa-ledger/pkg/attrs"
)

func TestPublisherStampsAndStoresEvents(t *testing.T) {
	store := NewMemoryStore()
	pub := NewPublisher(store)
	ctx := t.Context()

	event := NewEvent("bond", "pay_coupon", "addr-paying-agent", "CPN-001",
		"total_payment", "1500", "units", uint64(10))
	require.NoError(t, pub.Emit(ctx, event))
	require.NoError(t, pub.Emit(ctx, NewEvent("oil", "record_trade", "addr-seller", "TRD-001")))

	bondEvents, err := pub.List(ctx, "bond")
	require.NoError(t, err)
	require.Len(t, bondEvents, 1)

	got := bondEvents[0]
	require.NotEmpty(t, got.ID)
	require.False(t, got.Timestamp.IsZero())
	require.Equal(t, "pay_coupon", got.Action)
	require.Equal(t, "CPN-001", got.RecordID)
	require.Equal(t, "1500", attrs.ExtractString(got.Details, "total_payment"))
	require.Equal(t, uint64(10), attrs.ExtractUint64(got.Details, "units"))
	require.Empty(t, attrs.ExtractString(got.Details, "absent"))

	all, err := pub.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestPublisherKeepsExplicitTimestamp(t *testing.T) {
	store := NewMemoryStore()
	pub := NewPublisher(store)

	stamped := NewEvent("carbon", "verify_credits", "addr-body", "VER-001")
	stamped.Timestamp = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, pub.Emit(t.Context(), stamped))

	events, err := pub.List(t.Context(), "carbon")
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, stamped.Timestamp, events[0].Timestamp)
}

type failingStore struct{ err error }

func (s failingStore) Append(context.Context, Event) error { return s.err }
func (s failingStore) ListByAsset(context.Context, string) ([]Event, error) {
	return nil, s.err
}

func TestTeeFansOutAndStopsOnError(t *testing.T) {
	first := NewMemoryStore()
	second := NewMemoryStore()
	ctx := t.Context()

	tee := Tee{first, second}
	require.NoError(t, tee.Append(ctx, NewEvent("bond", "redeem_bonds", "addr-holder", "RED-001")))

	firstEvents, _ := first.ListByAsset(ctx, "bond")
	secondEvents, _ := second.ListByAsset(ctx, "bond")
	require.Len(t, firstEvents, 1)
	require.Len(t, secondEvents, 1)

	// Reads come from the first store only.
	listed, err := tee.ListByAsset(ctx, "bond")
	require.NoError(t, err)
	require.Len(t, listed, 1)

	boom := errors.New("sink down")
	broken := Tee{failingStore{err: boom}, second}
	err = broken.Append(ctx, NewEvent("bond", "redeem_bonds", "addr-holder", "RED-002"))
	require.ErrorIs(t, err, boom)

	secondEvents, _ = second.ListByAsset(ctx, "bond")
	require.Len(t, secondEvents, 1)
}

func TestQueuePublishesThroughWorker(t *testing.T) {
	store := NewMemoryStore()
	queue := NewQueue(store, 4)
	pub := NewPublisher(queue)

	ctx, cancel := context.WithCancel(t.Context())
	var group errgroup.Group
	group.Go(func() error { return queue.Worker().Run(ctx) })

	require.NoError(t, pub.Emit(ctx, NewEvent("bond", "pay_coupon", "addr-paying-agent", "CPN-001")))
	require.NoError(t, pub.Emit(ctx, NewEvent("bond", "redeem_bonds", "addr-holder", "RED-001")))

	// Reads go to the backing store, so they trail the inbox.
	require.Eventually(t, func() bool {
		events, err := pub.List(context.Background(), "bond")
		return err == nil && len(events) == 2
	}, time.Second, 10*time.Millisecond)

	cancel()
	require.ErrorIs(t, group.Wait(), context.Canceled)

	// With no worker draining, an append gives up when the context ends.
	blocked := NewQueue(store, 0)
	require.ErrorIs(t, blocked.Append(ctx, NewEvent("bond", "pay_coupon", "addr-paying-agent", "CPN-002")), context.Canceled)
}

func TestWorkerDrainsInbox(t *testing.T) {
	store := NewMemoryStore()
	inbox := make(chan Event, 4)
	worker := NewWorker(store, inbox)

	ctx, cancel := context.WithCancel(t.Context())
	var group errgroup.Group
	group.Go(func() error { return worker.Run(ctx) })

	inbox <- NewEvent("oil", "record_extraction", "addr-extraction-co", "EXT-001")
	inbox <- NewEvent("oil", "conduct_reserve_audit", "addr-auditor", "AUD-001")

	require.Eventually(t, func() bool {
		events, err := store.ListByAsset(context.Background(), "oil")
		return err == nil && len(events) == 2
	}, time.Second, 10*time.Millisecond)

	cancel()
	require.ErrorIs(t, group.Wait(), context.Canceled)
}
