package bid

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/vietddude/artbid/internal/auction"
	"github.com/vietddude/artbid/internal/contract"
	"github.com/vietddude/artbid/internal/core/domain"
	"github.com/vietddude/artbid/internal/infra/wallet"
	"github.com/vietddude/artbid/internal/session"
)

type submitCall struct {
	AuctionID domain.AuctionID
	From      string
	Amount    *big.Int
}

// MockContract implements contract.Contract for testing
type MockContract struct {
	SubmitBidFunc func(ctx context.Context, id domain.AuctionID, from string, amount *big.Int) (*contract.Receipt, error)
	calls         []submitCall
}

func (m *MockContract) NetworkID() domain.NetworkID { return domain.NetworkIDGanache }
func (m *MockContract) Address() common.Address     { return common.HexToAddress("0x01") }

func (m *MockContract) GetActiveAuctions(ctx context.Context) ([]domain.Auction, error) {
	return nil, nil
}

func (m *MockContract) SubmitBid(ctx context.Context, id domain.AuctionID, from string, amount *big.Int) (*contract.Receipt, error) {
	m.calls = append(m.calls, submitCall{AuctionID: id, From: from, Amount: amount})
	if m.SubmitBidFunc != nil {
		return m.SubmitBidFunc(ctx, id, from, amount)
	}
	return &contract.Receipt{TxHash: common.HexToHash("0x1"), AuctionID: id, From: from, Value: amount}, nil
}

// MockSession implements SessionReader for testing
type MockSession struct {
	session domain.Session
	binding contract.Contract
}

func (m *MockSession) Snapshot() (domain.Session, contract.Contract) {
	return m.session, m.binding
}

// MockRefresher implements Refresher for testing
type MockRefresher struct {
	RefreshFunc func(ctx context.Context, src auction.Source, generation uint64) error
	state       domain.AuctionListState
	generation  uint64
	refreshes   int
}

func (m *MockRefresher) Generation() uint64 { return m.generation }

func (m *MockRefresher) RefreshFor(ctx context.Context, src auction.Source, generation uint64) error {
	m.refreshes++
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, src, generation)
	}
	return nil
}

func (m *MockRefresher) State() domain.AuctionListState { return m.state }

func connected(c contract.Contract) *MockSession {
	return &MockSession{
		session: domain.Session{
			AccountAddress: "0xabc",
			NetworkID:      domain.NetworkIDGanache,
			Status:         domain.SessionConnected,
		},
		binding: c,
	}
}

func TestPlaceBid_SubmitsOnceThenRefreshes(t *testing.T) {
	c := &MockContract{}
	r := &MockRefresher{}
	s := NewSubmitter(connected(c), r, nil)

	receipt, err := s.PlaceBid(context.Background(), "1", decimal.RequireFromString("0.5"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if receipt == nil {
		t.Fatal("expected receipt")
	}

	if len(c.calls) != 1 {
		t.Fatalf("expected 1 submitBid call, got %d", len(c.calls))
	}
	call := c.calls[0]
	if call.AuctionID != "1" || call.From != "0xabc" || call.Amount.String() != "500000000000000000" {
		t.Errorf("unexpected call %+v", call)
	}
	if r.refreshes != 1 {
		t.Errorf("expected 1 refresh, got %d", r.refreshes)
	}
}

func TestPlaceBid_NotConnected(t *testing.T) {
	c := &MockContract{}
	r := &MockRefresher{}
	s := NewSubmitter(&MockSession{session: domain.Session{Status: domain.SessionDisconnected}}, r, nil)

	_, err := s.PlaceBid(context.Background(), "1", decimal.NewFromInt(1))
	if !errors.Is(err, domain.ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
	if len(c.calls) != 0 || r.refreshes != 0 {
		t.Error("contract must not be contacted without a binding")
	}
}

func TestPlaceBid_ConversionError(t *testing.T) {
	tests := []struct {
		name   string
		amount decimal.Decimal
	}{
		{"negative", decimal.NewFromInt(-1)},
		{"too precise", decimal.RequireFromString("0.0000000000000000001")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &MockContract{}
			r := &MockRefresher{}
			s := NewSubmitter(connected(c), r, nil)

			_, err := s.PlaceBid(context.Background(), "1", tt.amount)
			if !errors.Is(err, domain.ErrConversion) {
				t.Fatalf("expected ErrConversion, got %v", err)
			}
			if len(c.calls) != 0 || r.refreshes != 0 {
				t.Error("network must not be contacted on conversion failure")
			}
		})
	}
}

func TestPlaceBid_TransactionErrorTaggedWithAuction(t *testing.T) {
	c := &MockContract{
		SubmitBidFunc: func(ctx context.Context, id domain.AuctionID, from string, amount *big.Int) (*contract.Receipt, error) {
			return nil, &contract.TxError{Reason: "execution reverted: Bid too low", Err: errors.New("revert")}
		},
	}
	r := &MockRefresher{}
	s := NewSubmitter(connected(c), r, nil)

	_, err := s.PlaceBid(context.Background(), "7", decimal.NewFromInt(1))
	if !errors.Is(err, domain.ErrTransaction) {
		t.Fatalf("expected ErrTransaction, got %v", err)
	}
	if got := err.Error(); got != "auction 7: transaction failed: execution reverted: Bid too low" {
		t.Errorf("unexpected message %q", got)
	}
	if len(c.calls) != 1 {
		t.Errorf("expected exactly one transaction, got %d", len(c.calls))
	}
	if r.refreshes != 0 {
		t.Errorf("no refresh expected after a failed bid, got %d", r.refreshes)
	}
}

func TestPlaceBid_RefreshFailureDoesNotFailBid(t *testing.T) {
	c := &MockContract{}
	r := &MockRefresher{RefreshFunc: func(ctx context.Context, src auction.Source, generation uint64) error {
		return domain.ErrRead
	}}
	s := NewSubmitter(connected(c), r, nil)

	var reported []error
	s.SetRefreshErrorCallback(func(id domain.AuctionID, err error) {
		if id != "1" {
			t.Errorf("unexpected auction %s", id)
		}
		reported = append(reported, err)
	})

	if _, err := s.PlaceBid(context.Background(), "1", decimal.NewFromInt(1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.refreshes != 1 {
		t.Errorf("expected 1 refresh, got %d", r.refreshes)
	}
	if len(reported) != 1 || !errors.Is(reported[0], domain.ErrRead) {
		t.Errorf("expected the refresh failure to be reported once, got %v", reported)
	}
}

func TestPlaceMinimumBid(t *testing.T) {
	oneEther, _ := new(big.Int).SetString("1000000000000000000", 10)
	c := &MockContract{}
	r := &MockRefresher{state: domain.AuctionListState{
		Status: domain.ListReady,
		Items:  []domain.Auction{{ID: "1", ArtName: "Sunset", MinBid: oneEther}},
	}}
	s := NewSubmitter(connected(c), r, nil)

	if _, err := s.PlaceMinimumBid(context.Background(), "1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.calls) != 1 || c.calls[0].Amount.Cmp(oneEther) != 0 {
		t.Errorf("expected one bid of the minimum, got %+v", c.calls)
	}

	_, err := s.PlaceMinimumBid(context.Background(), "2")
	if !errors.Is(err, domain.ErrConversion) {
		t.Errorf("expected ErrConversion for unknown auction, got %v", err)
	}
	if len(c.calls) != 1 {
		t.Error("unknown auction must not send a transaction")
	}
}

func TestPlaceDisplayBid(t *testing.T) {
	c := &MockContract{}
	r := &MockRefresher{}
	s := NewSubmitter(connected(c), r, nil)

	if _, err := s.PlaceDisplayBid(context.Background(), "1", "0.5"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.calls) != 1 || c.calls[0].Amount.String() != "500000000000000000" {
		t.Errorf("unexpected calls %+v", c.calls)
	}

	_, err := s.PlaceDisplayBid(context.Background(), "1", "abc")
	if !errors.Is(err, domain.ErrConversion) {
		t.Errorf("expected ErrConversion, got %v", err)
	}
	if len(c.calls) != 1 {
		t.Error("invalid text must not send a transaction")
	}
}

func TestPlaceDisplayBid_NotConnectedCheckedFirst(t *testing.T) {
	s := NewSubmitter(&MockSession{session: domain.Session{Status: domain.SessionDisconnected}}, &MockRefresher{}, nil)

	_, err := s.PlaceDisplayBid(context.Background(), "1", "abc")
	if !errors.Is(err, domain.ErrNotConnected) {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
	if errors.Is(err, domain.ErrConversion) {
		t.Error("amount must not be parsed without a session")
	}
}

func TestPlaceBid_RefreshPinnedToGenerationAtStart(t *testing.T) {
	var refreshedWith uint64
	r := &MockRefresher{
		generation: 3,
		RefreshFunc: func(ctx context.Context, src auction.Source, generation uint64) error {
			refreshedWith = generation
			return nil
		},
	}
	c := &MockContract{
		SubmitBidFunc: func(ctx context.Context, id domain.AuctionID, from string, amount *big.Int) (*contract.Receipt, error) {
			r.generation++
			return &contract.Receipt{AuctionID: id}, nil
		},
	}
	s := NewSubmitter(connected(c), r, nil)

	if _, err := s.PlaceBid(context.Background(), "1", decimal.NewFromInt(1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if refreshedWith != 3 {
		t.Errorf("expected refresh pinned to generation 3, got %d", refreshedWith)
	}
}

func TestPlaceBid_DisconnectDuringBidKeepsListEmpty(t *testing.T) {
	oneEther, _ := new(big.Int).SetString("1000000000000000000", 10)
	syncer := auction.NewSynchronizer(nil)

	var sess *session.Manager
	c := &MockContract{}
	reads := 0
	src := &readCounter{MockContract: c, reads: &reads, auctions: []domain.Auction{{ID: "1", ArtName: "Sunset", MinBid: oneEther}}}
	c.SubmitBidFunc = func(ctx context.Context, id domain.AuctionID, from string, amount *big.Int) (*contract.Receipt, error) {
		// Session lost while the wallet was signing.
		sess.Disconnect()
		return &contract.Receipt{AuctionID: id}, nil
	}

	sess = session.New(&connectedProvider{}, func(domain.NetworkID, contract.Caller) (contract.Contract, error) {
		return src, nil
	}, nil)
	sess.SetStateChangeCallback(func(tr session.Transition) {
		if tr.To == domain.SessionDisconnected {
			syncer.Reset()
		}
	})
	if err := sess.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}

	s := NewSubmitter(sess, syncer, nil)
	if _, err := s.PlaceBid(context.Background(), "1", decimal.NewFromInt(1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := sess.Session().Status; got != domain.SessionDisconnected {
		t.Fatalf("expected disconnected, got %s", got)
	}
	st := syncer.State()
	if st.Status != domain.ListIdle || len(st.Items) != 0 {
		t.Errorf("disconnected session must not show auctions, got %s with %d items", st.Status, len(st.Items))
	}
	if reads != 0 {
		t.Errorf("expected no read through the old binding, got %d", reads)
	}
}

// readCounter serves a fixed auction list and counts reads
type readCounter struct {
	*MockContract
	reads    *int
	auctions []domain.Auction
}

func (r *readCounter) GetActiveAuctions(ctx context.Context) ([]domain.Auction, error) {
	*r.reads++
	return r.auctions, nil
}

// connectedProvider authorizes one account on ganache
type connectedProvider struct{}

func (connectedProvider) GetName() string { return "stub" }
func (connectedProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	return []string{"0xabc"}, nil
}
func (connectedProvider) NetworkID(ctx context.Context) (domain.NetworkID, error) {
	return domain.NetworkIDGanache, nil
}
func (connectedProvider) CallContract(ctx context.Context, msg wallet.CallMsg) ([]byte, error) {
	return nil, nil
}
func (connectedProvider) SendTransaction(ctx context.Context, tx wallet.TxRequest) (common.Hash, error) {
	return common.Hash{}, nil
}
func (connectedProvider) Events() <-chan domain.WalletEvent { return nil }
func (connectedProvider) Close() error                      { return nil }
