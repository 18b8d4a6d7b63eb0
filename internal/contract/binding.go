package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/vietddude/artbid/internal/core/domain"
	"github.com/vietddude/artbid/internal/infra/registry"
	"github.com/vietddude/artbid/internal/infra/wallet"
)

// Binding is an immutable pairing of a contract address and its ABI on one network.
type Binding struct {
	networkID domain.NetworkID
	address   common.Address
	abi       abi.ABI
	caller    Caller
	now       func() time.Time
}

// auctionTuple mirrors the contract's Auction struct. Fields are matched by position.
type auctionTuple struct {
	ID      *big.Int
	ArtName string
	MinBid  *big.Int
}

// Resolve looks up the deployment for networkID. It performs no network calls.
func Resolve(networkID domain.NetworkID, reg *registry.Registry, caller Caller) (*Binding, error) {
	d, ok := reg.Lookup(networkID)
	if !ok {
		return nil, fmt.Errorf("%w: network %s", domain.ErrNotDeployed, networkID)
	}
	return &Binding{
		networkID: networkID,
		address:   d.Address,
		abi:       d.ABI,
		caller:    caller,
		now:       time.Now,
	}, nil
}

// NetworkID returns the network the binding was resolved for.
func (b *Binding) NetworkID() domain.NetworkID {
	return b.networkID
}

// Address returns the deployed contract address.
func (b *Binding) Address() common.Address {
	return b.address
}

// GetActiveAuctions calls getActiveAuctions() and decodes the result.
func (b *Binding) GetActiveAuctions(ctx context.Context) ([]domain.Auction, error) {
	input, err := b.abi.Pack(registry.MethodGetActiveAuctions)
	if err != nil {
		return nil, fmt.Errorf("%w: encode %s: %w", domain.ErrRead, registry.MethodGetActiveAuctions, err)
	}

	output, err := b.caller.CallContract(ctx, wallet.CallMsg{To: b.address, Data: input})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRead, err)
	}

	var tuples []auctionTuple
	if err := b.abi.UnpackIntoInterface(&tuples, registry.MethodGetActiveAuctions, output); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", domain.ErrRead, registry.MethodGetActiveAuctions, err)
	}

	auctions := make([]domain.Auction, 0, len(tuples))
	for _, t := range tuples {
		minBid := t.MinBid
		if minBid == nil {
			minBid = new(big.Int)
		}
		auctions = append(auctions, domain.Auction{
			ID:      domain.AuctionID(t.ID.String()),
			ArtName: t.ArtName,
			MinBid:  minBid,
		})
	}
	return auctions, nil
}

// SubmitBid sends placeBid(auctionID) carrying amount as value, signed by from.
// It returns once the provider accepted the transaction.
func (b *Binding) SubmitBid(
	ctx context.Context,
	auctionID domain.AuctionID,
	from string,
	amount *big.Int,
) (*Receipt, error) {
	if amount == nil {
		amount = new(big.Int)
	}
	id, ok := new(big.Int).SetString(string(auctionID), 10)
	if !ok || id.Sign() < 0 {
		return nil, fmt.Errorf("%w: invalid auction id %q", domain.ErrTransaction, auctionID)
	}

	input, err := b.abi.Pack(registry.MethodPlaceBid, id)
	if err != nil {
		return nil, fmt.Errorf("%w: encode %s: %w", domain.ErrTransaction, registry.MethodPlaceBid, err)
	}

	hash, err := b.caller.SendTransaction(ctx, wallet.TxRequest{
		From:  from,
		To:    b.address,
		Value: amount,
		Data:  input,
	})
	if err != nil {
		return nil, newTxError(err)
	}

	return &Receipt{
		TxHash:      hash,
		From:        from,
		To:          b.address,
		AuctionID:   auctionID,
		Value:       new(big.Int).Set(amount),
		SubmittedAt: b.now(),
	}, nil
}

// TxError carries the provider's reason for a failed transaction.
type TxError struct {
	Reason string
	Err    error
}

func (e *TxError) Error() string {
	return fmt.Sprintf("%s: %s", domain.ErrTransaction, e.Reason)
}

func (e *TxError) Unwrap() []error {
	return []error{domain.ErrTransaction, e.Err}
}

// newTxError keeps the revert reason when the provider supplied one.
func newTxError(err error) error {
	var rpcErr *wallet.RPCError
	if !errors.As(err, &rpcErr) {
		return &TxError{Reason: err.Error(), Err: err}
	}

	if rpcErr.UserRejected() {
		return &TxError{Reason: "user rejected the request: " + rpcErr.Message, Err: err}
	}
	if rpcErr.Unauthorized() {
		return &TxError{Reason: "account not authorized: " + rpcErr.Message, Err: err}
	}
	if data := rpcErr.RevertData(); len(data) > 0 {
		if reason, unpackErr := abi.UnpackRevert(data); unpackErr == nil {
			return &TxError{Reason: "execution reverted: " + reason, Err: err}
		}
	}
	return &TxError{Reason: rpcErr.Message, Err: err}
}
