package control

import (
	"github.com/vietddude/artbid/internal/core/domain"
)

// Listener receives state pushed by the App. Nil fields are skipped.
type Listener struct {
	OnSession  func(domain.Session)
	OnAuctions func(domain.AuctionListState)
	OnError    func(*domain.AppError)
}

// Snapshot is everything the presentation layer renders.
type Snapshot struct {
	Session  domain.Session          `json:"session"`
	Auctions domain.AuctionListState `json:"auctions"`
	Error    *domain.AppError        `json:"error,omitempty"`
}

// StateView is the read side of the App used by the HTTP server.
type StateView interface {
	// State returns the current snapshot
	State() Snapshot

	// Subscribe registers l and returns a function that removes it
	Subscribe(l Listener) func()
}
