package domain

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// AuctionID is the contract's identifier for an auction, kept as its decimal text.
type AuctionID string

// Auction is a read-only snapshot of one contract auction.
type Auction struct {
	ID      AuctionID `json:"id"`
	ArtName string    `json:"art_name"`
	MinBid  *big.Int  `json:"min_bid"`
}

type ListStatus string

const (
	ListIdle    ListStatus = "idle"
	ListLoading ListStatus = "loading"
	ListReady   ListStatus = "ready"
	ListFailed  ListStatus = "failed"
)

// AuctionListState is the locally mirrored auction list.
// A zero LastSyncedAt means the list has never been synced.
type AuctionListState struct {
	Items        []Auction  `json:"items"`
	LastSyncedAt time.Time  `json:"last_synced_at"`
	Status       ListStatus `json:"status"`
}

// Find returns the auction with the given id.
func (s AuctionListState) Find(id AuctionID) (Auction, bool) {
	for _, a := range s.Items {
		if a.ID == id {
			return a, true
		}
	}
	return Auction{}, false
}

// BidRequest lives for the duration of a single submission.
type BidRequest struct {
	AuctionID AuctionID
	Amount    decimal.Decimal
}
