// Package auction mirrors the contract's auction list.
package auction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vietddude/artbid/internal/core/domain"
	"github.com/vietddude/artbid/internal/core/metrics"
	"golang.org/x/sync/singleflight"
)

// Source is the read side of a contract binding.
type Source interface {
	NetworkID() domain.NetworkID
	Address() common.Address
	GetActiveAuctions(ctx context.Context) ([]domain.Auction, error)
}

// Synchronizer holds the local auction list and refreshes it on demand.
// At most one read per binding is in flight; concurrent callers share it.
type Synchronizer struct {
	log *slog.Logger
	now func() time.Time

	group singleflight.Group

	mu         sync.RWMutex
	state      domain.AuctionListState
	generation uint64
	onChange   func(domain.AuctionListState)

	// notifyMu serializes callbacks so observers never see states out of order.
	notifyMu sync.Mutex
}

// NewSynchronizer creates an idle synchronizer.
func NewSynchronizer(log *slog.Logger) *Synchronizer {
	if log == nil {
		log = slog.Default()
	}
	return &Synchronizer{
		log:   log,
		now:   time.Now,
		state: domain.AuctionListState{Status: domain.ListIdle},
	}
}

// SetChangeCallback registers a callback invoked after every state change with
// the state current at delivery time.
func (s *Synchronizer) SetChangeCallback(fn func(domain.AuctionListState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// State returns the current list state.
func (s *Synchronizer) State() domain.AuctionListState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	st.Items = slices.Clone(st.Items)
	return st
}

// Generation identifies the current list lifetime. Reset moves it on.
func (s *Synchronizer) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Refresh reads the auction list from src and waits for the result.
// Returning early on ctx does not cancel the shared read.
func (s *Synchronizer) Refresh(ctx context.Context, src Source) error {
	return s.RefreshFor(ctx, src, s.Generation())
}

// RefreshFor is Refresh pinned to a generation obtained earlier. When a Reset
// happened since, no read is issued and the result is discarded.
func (s *Synchronizer) RefreshFor(ctx context.Context, src Source, generation uint64) error {
	select {
	case err := <-s.refreshAt(ctx, src, generation):
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RefreshAsync starts a read, or joins the one already in flight for the same
// binding. The channel receives the outcome exactly once.
func (s *Synchronizer) RefreshAsync(ctx context.Context, src Source) <-chan error {
	return s.refreshAt(ctx, src, s.Generation())
}

func (s *Synchronizer) refreshAt(ctx context.Context, src Source, gen uint64) <-chan error {
	out := make(chan error, 1)
	if src == nil {
		out <- fmt.Errorf("%w: no contract binding", domain.ErrNotConnected)
		return out
	}
	if gen != s.Generation() {
		s.log.Debug("Skipping refresh for a reset auction list", "network", src.NetworkID())
		out <- nil
		return out
	}

	key := fmt.Sprintf("%d:%d/%s", gen, uint64(src.NetworkID()), src.Address().Hex())
	ch := s.group.DoChan(key, func() (any, error) {
		return nil, s.load(context.WithoutCancel(ctx), src, gen)
	})

	go func() {
		res := <-ch
		if res.Shared {
			s.log.Debug("Auction refresh coalesced", "key", key)
		}
		out <- res.Err
	}()
	return out
}

// Reset drops the list and invalidates any read in flight.
func (s *Synchronizer) Reset() {
	s.mu.Lock()
	s.generation++
	s.state = domain.AuctionListState{Status: domain.ListIdle}
	s.mu.Unlock()

	metrics.ActiveAuctions.Set(0)
	s.publish()
}

func (s *Synchronizer) load(ctx context.Context, src Source, gen uint64) error {
	s.update(gen, func(st *domain.AuctionListState) {
		st.Status = domain.ListLoading
	})

	start := time.Now()
	items, err := src.GetActiveAuctions(ctx)
	metrics.AuctionRefreshLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		if !errors.Is(err, domain.ErrRead) {
			err = fmt.Errorf("%w: %w", domain.ErrRead, err)
		}
		metrics.AuctionRefreshes.WithLabelValues("error").Inc()
		applied := s.update(gen, func(st *domain.AuctionListState) {
			st.Status = domain.ListFailed
		})
		if !applied {
			s.log.Debug("Ignoring read failure from a reset session", "network", src.NetworkID(), "error", err)
			return nil
		}
		s.log.Warn("Failed to refresh auctions", "network", src.NetworkID(), "error", err)
		return err
	}

	metrics.AuctionRefreshes.WithLabelValues("success").Inc()
	applied := s.update(gen, func(st *domain.AuctionListState) {
		*st = domain.AuctionListState{
			Items:        items,
			LastSyncedAt: s.now(),
			Status:       domain.ListReady,
		}
	})
	if !applied {
		s.log.Debug("Dropping auction list from a reset session", "network", src.NetworkID())
		return nil
	}

	metrics.ActiveAuctions.Set(float64(len(items)))
	s.log.Debug("Auctions refreshed", "network", src.NetworkID(), "count", len(items))
	return nil
}

// update applies fn to a copy of the state and swaps it in, unless the
// generation moved on since the read started.
func (s *Synchronizer) update(gen uint64, fn func(*domain.AuctionListState)) bool {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return false
	}
	next := s.state
	fn(&next)
	s.state = next
	s.mu.Unlock()

	s.publish()
	return true
}

// publish hands the current state to the change callback. Deliveries are
// serialized and each reads the state afresh, so the last one delivered is
// always the latest state.
func (s *Synchronizer) publish() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.RLock()
	cb := s.onChange
	s.mu.RUnlock()
	if cb != nil {
		cb(s.State())
	}
}
