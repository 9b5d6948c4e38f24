package catalog

import (
	"context"
	"sort"
	"sync"

	"storefront/domain"

	"go.uber.org/zap"
)

// Lister performs a full ordered read of the catalog collection.
type Lister interface {
	List(ctx context.Context, q Query) ([]domain.Item, error)
}

// Notifier delivers change signals for a collection. The engine does
// not care what changed; every signal triggers a full re-read so the
// consumer always sees a complete snapshot, never a diff.
type Notifier interface {
	Subscribe(ctx context.Context, collection string, onChange func()) (Subscription, error)
}

// Subscription is a live change-feed registration. Close releases it.
type Subscription interface {
	Close() error
}

// Query names the collection and its ordering. The only order field
// the catalog uses is the creation timestamp, newest first.
type Query struct {
	Collection string
	OrderBy    string
	Descending bool
}

// SnapshotFunc receives the complete current item list on every
// delivery. Implementations must not retain the slice across calls.
type SnapshotFunc func(items []domain.Item)

// ErrorFunc receives snapshot delivery failures for user-visible
// surfacing. The engine never retries on its own.
type ErrorFunc func(err error)

// Engine owns the live view of one catalog collection: it subscribes
// to the change feed, re-reads the full ordered list on every signal,
// and hands each snapshot to a single callback. Manual Refresh and the
// live feed converge on the same callback, serialized, so the last
// delivered list is always the latest observed state.
type Engine struct {
	lister   Lister
	notifier Notifier
	query    Query

	mu           sync.Mutex
	onSnapshot   SnapshotFunc
	onError      ErrorFunc
	seq          uint64
	publishedSeq uint64
}

func NewEngine(lister Lister, notifier Notifier, query Query) *Engine {
	return &Engine{
		lister:   lister,
		notifier: notifier,
		query:    query,
	}
}

// Start delivers the initial snapshot, then registers for change
// signals. The returned handle must be stopped when the consumer goes
// away; stopping twice is a no-op.
func (e *Engine) Start(ctx context.Context, onSnapshot SnapshotFunc, onError ErrorFunc) (*Handle, error) {
	e.mu.Lock()
	e.onSnapshot = onSnapshot
	e.onError = onError
	e.mu.Unlock()

	e.deliver(ctx)

	sub, err := e.notifier.Subscribe(ctx, e.query.Collection, func() {
		e.deliver(ctx)
	})
	if err != nil {
		return nil, err
	}

	return &Handle{sub: sub}, nil
}

// Refresh performs a blocking manual round-trip and invokes the same
// snapshot callback. Safe to call while the live subscription is
// active: the two paths race on the read, but an older read can never
// overwrite a newer one.
func (e *Engine) Refresh(ctx context.Context) error {
	if err := e.snapshot(ctx); err != nil {
		e.fail(err)
		return err
	}
	return nil
}

func (e *Engine) deliver(ctx context.Context) {
	if err := e.snapshot(ctx); err != nil {
		zap.L().Warn("catalog snapshot read failed",
			zap.String("collection", e.query.Collection),
			zap.Error(err),
		)
		e.fail(err)
	}
}

// snapshot reads the full list and publishes it. Each read draws a
// sequence number before hitting the lister; a read overtaken by a
// newer one while in flight is dropped on return instead of published,
// so the last delivered list is always the latest observed state no
// matter which path delivered it.
func (e *Engine) snapshot(ctx context.Context) error {
	e.mu.Lock()
	e.seq++
	seq := e.seq
	e.mu.Unlock()

	items, err := e.lister.List(ctx, e.query)
	if err != nil {
		return err
	}

	sortItems(items, e.query)

	e.mu.Lock()
	defer e.mu.Unlock()
	if seq < e.publishedSeq {
		return nil
	}
	e.publishedSeq = seq

	if e.onSnapshot != nil {
		e.onSnapshot(items)
	}
	return nil
}

func (e *Engine) fail(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.onError != nil {
		e.onError(err)
	}
}

// sortItems orders locally rather than trusting delivery order, so an
// out-of-order read still renders newest first. Ties on the timestamp
// break on ID, descending, to keep the order deterministic.
func sortItems(items []domain.Item, q Query) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if q.Descending {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.CreatedAt.Before(b.CreatedAt)
		}
		if q.Descending {
			return a.ID > b.ID
		}
		return a.ID < b.ID
	})
}

// Handle represents one live subscription. Stop releases it exactly
// once; further calls do nothing and never re-invoke the callback.
type Handle struct {
	sub  Subscription
	once sync.Once
}

func (h *Handle) Stop() {
	h.once.Do(func() {
		if err := h.sub.Close(); err != nil {
			zap.L().Warn("failed to close catalog subscription", zap.Error(err))
		}
	})
}

// DefaultQuery is the storefront's home-screen view: the items
// collection, newest first.
func DefaultQuery() Query {
	return Query{
		Collection: "items",
		OrderBy:    "created_at",
		Descending: true,
	}
}
