// Package bid places a single bid through the active contract binding.
package bid

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/shopspring/decimal"
	"github.com/vietddude/artbid/internal/auction"
	"github.com/vietddude/artbid/internal/contract"
	"github.com/vietddude/artbid/internal/core/domain"
	"github.com/vietddude/artbid/internal/core/metrics"
	"github.com/vietddude/artbid/internal/core/units"
)

// SessionReader exposes the connected account together with its binding.
type SessionReader interface {
	Snapshot() (domain.Session, contract.Contract)
}

// Refresher is the part of the synchronizer a bid triggers.
type Refresher interface {
	Generation() uint64
	RefreshFor(ctx context.Context, src auction.Source, generation uint64) error
	State() domain.AuctionListState
}

// Submitter orchestrates one bid: readiness check, conversion, transaction,
// then one refresh. It never retries.
type Submitter struct {
	session SessionReader
	sync    Refresher
	log     *slog.Logger

	refreshFailed func(auctionID domain.AuctionID, err error)
}

// NewSubmitter creates a Submitter.
func NewSubmitter(session SessionReader, sync Refresher, log *slog.Logger) *Submitter {
	if log == nil {
		log = slog.Default()
	}
	return &Submitter{session: session, sync: sync, log: log}
}

// SetRefreshErrorCallback registers a callback for a failed refresh after an
// accepted bid. The bid itself still succeeds.
func (s *Submitter) SetRefreshErrorCallback(fn func(auctionID domain.AuctionID, err error)) {
	s.refreshFailed = fn
}

// PlaceBid bids amount (display units) on auctionID from the session account.
func (s *Submitter) PlaceBid(
	ctx context.Context,
	auctionID domain.AuctionID,
	amount decimal.Decimal,
) (*contract.Receipt, error) {
	req := domain.BidRequest{AuctionID: auctionID, Amount: amount}

	gen, sess, binding, err := s.ready(req.AuctionID)
	if err != nil {
		return nil, err
	}

	value, err := units.ToBaseUnits(req.Amount)
	if err != nil {
		metrics.BidsTotal.WithLabelValues(string(domain.KindConversion)).Inc()
		return nil, fmt.Errorf("auction %s: %w", req.AuctionID, err)
	}

	return s.submit(ctx, gen, sess, binding, req.AuctionID, value)
}

// PlaceDisplayBid is PlaceBid for user-typed text such as "0.5". Readiness is
// checked before the text is parsed.
func (s *Submitter) PlaceDisplayBid(
	ctx context.Context,
	auctionID domain.AuctionID,
	amount string,
) (*contract.Receipt, error) {
	gen, sess, binding, err := s.ready(auctionID)
	if err != nil {
		return nil, err
	}

	value, err := units.ParseBaseUnits(amount)
	if err != nil {
		metrics.BidsTotal.WithLabelValues(string(domain.KindConversion)).Inc()
		return nil, fmt.Errorf("auction %s: %w", auctionID, err)
	}

	return s.submit(ctx, gen, sess, binding, auctionID, value)
}

// PlaceMinimumBid bids the auction's current minimum as held by the local list.
func (s *Submitter) PlaceMinimumBid(ctx context.Context, auctionID domain.AuctionID) (*contract.Receipt, error) {
	gen, sess, binding, err := s.ready(auctionID)
	if err != nil {
		return nil, err
	}

	a, ok := s.sync.State().Find(auctionID)
	if !ok || a.MinBid == nil {
		metrics.BidsTotal.WithLabelValues(string(domain.KindConversion)).Inc()
		return nil, fmt.Errorf("auction %s: %w: no minimum bid known", auctionID, domain.ErrConversion)
	}

	return s.submit(ctx, gen, sess, binding, auctionID, a.MinBid)
}

// ready returns the list generation together with the session it belongs to.
// The generation is read first: a reset in between leaves it stale, never the
// other way round.
func (s *Submitter) ready(auctionID domain.AuctionID) (uint64, domain.Session, contract.Contract, error) {
	gen := s.sync.Generation()
	sess, binding := s.session.Snapshot()
	if binding == nil || !sess.IsConnected() {
		metrics.BidsTotal.WithLabelValues(string(domain.KindNotConnected)).Inc()
		return 0, sess, nil, fmt.Errorf("auction %s: %w", auctionID, domain.ErrNotConnected)
	}
	return gen, sess, binding, nil
}

func (s *Submitter) submit(
	ctx context.Context,
	gen uint64,
	sess domain.Session,
	binding contract.Contract,
	auctionID domain.AuctionID,
	value *big.Int,
) (*contract.Receipt, error) {
	receipt, err := binding.SubmitBid(context.WithoutCancel(ctx), auctionID, sess.AccountAddress, value)
	if err != nil {
		metrics.BidsTotal.WithLabelValues(string(domain.KindOf(err))).Inc()
		s.log.Error("Bid failed", "auction", auctionID, "amount", units.FormatDisplay(value), "error", err)
		return nil, fmt.Errorf("auction %s: %w", auctionID, err)
	}

	metrics.BidsTotal.WithLabelValues("success").Inc()
	s.log.Info("Bid placed successfully",
		"auction", auctionID,
		"amount", units.FormatDisplay(value),
		"tx", receipt.TxHash.Hex(),
	)

	// The list may not reflect the bid until the transaction is mined. A session
	// reset during the bid leaves gen stale and the refresh is skipped.
	if err := s.sync.RefreshFor(ctx, binding, gen); err != nil {
		s.log.Warn("Refresh after bid failed", "auction", auctionID, "error", err)
		if s.refreshFailed != nil {
			s.refreshFailed(auctionID, err)
		}
	}
	return receipt, nil
}
