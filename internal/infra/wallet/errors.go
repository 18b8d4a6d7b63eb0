package wallet

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

const (
	// CodeUserRejected is the EIP-1193 code for a request the user declined.
	CodeUserRejected = 4001
	// CodeUnauthorized is the EIP-1193 code for an unauthorized account.
	CodeUnauthorized = 4100
	// CodeMethodNotFound is the JSON-RPC code for an unsupported method.
	CodeMethodNotFound = -32601
	// CodeExecutionReverted is the geth code for a reverted call.
	CodeExecutionReverted = 3
)

// RPCError is an error object returned by the provider.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// UserRejected reports whether the user declined the request.
func (e *RPCError) UserRejected() bool {
	return e.Code == CodeUserRejected
}

// Unauthorized reports whether the account was not authorized by the user.
func (e *RPCError) Unauthorized() bool {
	return e.Code == CodeUnauthorized
}

// RevertData returns the ABI-encoded revert payload carried in Data, if any.
// Providers send it either as a hex string or nested under "data".
func (e *RPCError) RevertData() []byte {
	var raw string
	switch d := e.Data.(type) {
	case string:
		raw = d
	case map[string]any:
		raw, _ = d["data"].(string)
	}
	if !strings.HasPrefix(raw, "0x") {
		return nil
	}
	b, err := hexutil.Decode(raw)
	if err != nil {
		return nil
	}
	return b
}
