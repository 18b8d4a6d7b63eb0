// Package wallet implements the wallet provider capability.
//
// This package contains:
//   - Provider interface: what the session and contract binding consume
//   - HTTPProvider: JSON-RPC over HTTP implementation with health tracking
//   - Notifier: websocket feed of unsolicited wallet events
package wallet

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vietddude/artbid/internal/core/domain"
)

// Provider is the wallet capability. Keys and signing stay on the provider side.
type Provider interface {
	// GetName returns provider identifier (e.g., "metamask-bridge")
	GetName() string

	// RequestAccounts asks the user to authorize accounts. It may block until
	// the user answers in the wallet UI.
	RequestAccounts(ctx context.Context) ([]string, error)

	// NetworkID returns the network the wallet is currently on
	NetworkID(ctx context.Context) (domain.NetworkID, error)

	// CallContract executes a read-only call against the latest block
	CallContract(ctx context.Context, msg CallMsg) ([]byte, error)

	// SendTransaction asks the wallet to sign and submit a transaction. It
	// returns once the provider accepted the submission.
	SendTransaction(ctx context.Context, tx TxRequest) (common.Hash, error)

	// Events delivers accountsChanged / networkChanged notifications
	Events() <-chan domain.WalletEvent

	// Close cleans up resources
	Close() error
}

// CallMsg is a read-only contract call.
type CallMsg struct {
	To   common.Address
	Data []byte
}

// TxRequest is a state-changing call signed by From.
type TxRequest struct {
	From  string
	To    common.Address
	Value *big.Int
	Data  []byte
}

// HealthStatus represents the health state of a provider.
type HealthStatus struct {
	Available     bool
	Latency       time.Duration
	ErrorRate     float64
	LastSuccessAt time.Time
	LastFailureAt time.Time
}
