// Package contract binds the auction contract deployed on the wallet's active
// network and exposes its two-method surface.
package contract

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vietddude/artbid/internal/core/domain"
	"github.com/vietddude/artbid/internal/infra/wallet"
)

// Contract is the method surface of a resolved binding.
type Contract interface {
	// NetworkID returns the network the binding was resolved for
	NetworkID() domain.NetworkID

	// Address returns the deployed contract address
	Address() common.Address

	// GetActiveAuctions reads the auction list without changing contract state
	GetActiveAuctions(ctx context.Context) ([]domain.Auction, error)

	// SubmitBid sends a payable placeBid call signed by from
	SubmitBid(
		ctx context.Context,
		auctionID domain.AuctionID,
		from string,
		amount *big.Int,
	) (*Receipt, error)
}

// Caller is the part of the wallet provider a binding talks through.
type Caller interface {
	CallContract(ctx context.Context, msg wallet.CallMsg) ([]byte, error)
	SendTransaction(ctx context.Context, tx wallet.TxRequest) (common.Hash, error)
}

// Receipt confirms that the provider accepted a bid transaction. It does not
// imply the transaction was mined.
type Receipt struct {
	TxHash      common.Hash      `json:"tx_hash"`
	From        string           `json:"from"`
	To          common.Address   `json:"to"`
	AuctionID   domain.AuctionID `json:"auction_id"`
	Value       *big.Int         `json:"value"`
	SubmittedAt time.Time        `json:"submitted_at"`
}
