package domain

// SessionStatus is the connection state of the wallet session.
type SessionStatus string

const (
	SessionDisconnected SessionStatus = "disconnected"
	SessionConnecting   SessionStatus = "connecting"
	SessionConnected    SessionStatus = "connected"
	SessionFailed       SessionStatus = "failed"
)

// Session holds every connection fact of one attempt. It is replaced as a whole,
// never field by field, so the account and network always belong together.
type Session struct {
	Attempt        string        `json:"attempt,omitempty"`
	AccountAddress string        `json:"account_address,omitempty"`
	NetworkID      NetworkID     `json:"network_id,omitempty"`
	Status         SessionStatus `json:"status"`
	Err            *AppError     `json:"error,omitempty"`
}

// IsConnected reports whether account and network are both present.
func (s Session) IsConnected() bool {
	return s.Status == SessionConnected
}

// WalletEventType names an unsolicited notification from the wallet provider.
type WalletEventType string

const (
	EventAccountsChanged WalletEventType = "accountsChanged"
	EventNetworkChanged  WalletEventType = "networkChanged"
)

// WalletEvent is delivered by the provider when the user switches account or network.
type WalletEvent struct {
	Type     WalletEventType
	Accounts []string
	Network  NetworkID
}
