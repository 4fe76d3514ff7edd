// Package sync keeps a business's catalog snapshot current while an
// ordering session is open.
//
// The syncer holds exactly one *catalog.Snapshot in an atomic pointer.
// Change notifications trigger a full reload-and-replace; no field-level
// patching ever happens, so concurrent readers never observe a
// half-updated catalog. The open cart is deliberately untouched here —
// reconciliation against the new snapshot happens lazily at pricing and
// compose time.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/menulink/ordercore/internal/catalog"
	"github.com/menulink/ordercore/internal/pkg/cache"
)

// Unsubscribe detaches a change subscription. Safe to call once.
type Unsubscribe func() error

// Notifier is the port for the external change-notification stream.
// The payload carries no data; a notification only means "something
// changed for this business" and the catalog must be re-fetched.
type Notifier interface {
	Subscribe(ctx context.Context, businessID string, onChange func()) (Unsubscribe, error)
}

// Syncer owns the current snapshot for one business.
type Syncer struct {
	businessID  string
	loader      catalog.Loader
	store       cache.SnapshotStore
	current     atomic.Pointer[catalog.Snapshot]
	unsubscribe Unsubscribe
}

// Start loads the initial snapshot and subscribes to change notifications.
// On a transient load failure it falls back to the last cached snapshot,
// if any; catalog.ErrNotFound is never masked. store may be nil, in which
// case no fallback or write-through happens.
func Start(ctx context.Context, businessID string, loader catalog.Loader, notifier Notifier, store cache.SnapshotStore) (*Syncer, error) {
	s := &Syncer{
		businessID: businessID,
		loader:     loader,
		store:      store,
	}

	snap, err := loader.Load(ctx, businessID)
	if err != nil {
		if !errors.Is(err, catalog.ErrTransient) || store == nil {
			return nil, err
		}
		cached, cacheErr := store.Get(ctx, businessID)
		if cacheErr != nil {
			return nil, fmt.Errorf("catalog load failed and no cached snapshot: %w", err)
		}
		slog.WarnContext(ctx, "catalog API unavailable, starting from cached snapshot",
			"business_id", businessID, "version", cached.Version(), "error", err)
		snap = cached
	} else {
		s.writeThrough(ctx, snap)
	}
	s.current.Store(snap)

	unsub, err := notifier.Subscribe(ctx, businessID, func() { s.refresh(context.Background()) })
	if err != nil {
		return nil, fmt.Errorf("subscribe catalog changes: %w", err)
	}
	s.unsubscribe = unsub

	return s, nil
}

// Snapshot returns the current snapshot. Always non-nil after Start.
func (s *Syncer) Snapshot() *catalog.Snapshot {
	return s.current.Load()
}

// Close detaches the change subscription. The last snapshot stays readable
// so an in-flight compose can still finish.
func (s *Syncer) Close() error {
	if s.unsubscribe == nil {
		return nil
	}
	unsub := s.unsubscribe
	s.unsubscribe = nil
	return unsub()
}

// refresh re-fetches the catalog and swaps the snapshot in one store.
// A failed reload keeps the previous snapshot; the collaborator will
// notify again or the next session will load fresh.
func (s *Syncer) refresh(ctx context.Context) {
	snap, err := s.loader.Load(ctx, s.businessID)
	if err != nil {
		slog.ErrorContext(ctx, "catalog reload failed, keeping previous snapshot",
			"business_id", s.businessID, "error", err)
		return
	}

	// Same version means the notification was spurious or duplicated;
	// swapping would change nothing observable, so skip it.
	if prev := s.current.Load(); prev != nil && prev.Version() == snap.Version() {
		return
	}

	s.current.Store(snap)
	s.writeThrough(ctx, snap)
	slog.InfoContext(ctx, "catalog snapshot replaced",
		"business_id", s.businessID, "version", snap.Version(), "items", len(snap.Items()))
}

func (s *Syncer) writeThrough(ctx context.Context, snap *catalog.Snapshot) {
	if s.store == nil {
		return
	}
	if err := s.store.Put(ctx, snap); err != nil {
		slog.WarnContext(ctx, "snapshot cache write failed", "business_id", s.businessID, "error", err)
	}
}
