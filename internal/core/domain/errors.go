package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoWallet is returned when no wallet provider is configured.
	ErrNoWallet = errors.New("no wallet provider available")

	// ErrNoAccount is returned when the provider authorizes zero accounts.
	ErrNoAccount = errors.New("no authorized account")

	// ErrNotDeployed is returned when the registry has no contract for the network.
	ErrNotDeployed = errors.New("contract not deployed to detected network")

	// ErrRead wraps transport or decoding failures of read-only calls.
	ErrRead = errors.New("contract read failed")

	// ErrTransaction wraps rejected, unfunded or reverted transactions.
	ErrTransaction = errors.New("transaction failed")

	// ErrConversion is returned for invalid bid amounts.
	ErrConversion = errors.New("invalid amount")

	// ErrNotConnected is returned when a bid is attempted without a session.
	ErrNotConnected = errors.New("wallet not connected")
)

// ErrorKind classifies an AppError for the presentation layer.
type ErrorKind string

const (
	KindNoWallet     ErrorKind = "NoWalletError"
	KindNoAccount    ErrorKind = "NoAccountError"
	KindNotDeployed  ErrorKind = "NotDeployedError"
	KindRead         ErrorKind = "ReadError"
	KindTransaction  ErrorKind = "TransactionError"
	KindConversion   ErrorKind = "ConversionError"
	KindNotConnected ErrorKind = "NotConnectedError"
	KindUnknown      ErrorKind = "UnknownError"
)

var kinds = []struct {
	err  error
	kind ErrorKind
}{
	{ErrNoWallet, KindNoWallet},
	{ErrNoAccount, KindNoAccount},
	{ErrNotDeployed, KindNotDeployed},
	{ErrConversion, KindConversion},
	{ErrNotConnected, KindNotConnected},
	{ErrTransaction, KindTransaction},
	{ErrRead, KindRead},
}

// KindOf maps an error chain onto the taxonomy. The first matching sentinel wins.
func KindOf(err error) ErrorKind {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindUnknown
}

// AppError is the single failure value shown to the presentation layer.
type AppError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// NewAppError converts err into an AppError. It returns nil for a nil error.
func NewAppError(err error) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Kind: KindOf(err), Message: err.Error()}
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}
