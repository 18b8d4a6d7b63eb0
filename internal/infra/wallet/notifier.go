package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gorilla/websocket"
	"github.com/vietddude/artbid/internal/core/domain"
	"golang.org/x/sync/errgroup"
)

// notification is one message on the wallet event feed, e.g.
// {"event":"accountsChanged","data":["0xabc..."]} or {"event":"chainChanged","data":"0x5"}.
type notification struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Notifier reads unsolicited wallet events from a websocket feed.
type Notifier struct {
	url    string
	dialer *websocket.Dialer
	header http.Header
	log    *slog.Logger
}

// NewNotifier creates a notifier for the given ws:// or wss:// URL.
func NewNotifier(url string) *Notifier {
	return &Notifier{
		url:    url,
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		header: http.Header{},
		log:    slog.Default().With("component", "wallet-notifier"),
	}
}

// Run dials the feed and forwards decoded events to out until ctx is done
// or the connection fails. Unknown events are skipped.
func (n *Notifier) Run(ctx context.Context, out chan<- domain.WalletEvent) error {
	url := n.url
	switch {
	case strings.HasPrefix(url, "http://"):
		url = "ws://" + strings.TrimPrefix(url, "http://")
	case strings.HasPrefix(url, "https://"):
		url = "wss://" + strings.TrimPrefix(url, "https://")
	}

	conn, _, err := n.dialer.DialContext(ctx, url, n.header)
	if err != nil {
		return fmt.Errorf("dial wallet events: %w", err)
	}
	defer conn.Close()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		// Unblock ReadMessage.
		_ = conn.SetReadDeadline(time.Now())
		return nil
	})
	g.Go(func() error {
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return fmt.Errorf("read wallet event: %w", err)
			}

			ev, ok, err := decodeEvent(msg)
			if err != nil {
				n.log.Warn("Dropping malformed wallet event", "error", err)
				continue
			}
			if !ok {
				continue
			}

			select {
			case out <- ev:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})
	return g.Wait()
}

func decodeEvent(msg []byte) (domain.WalletEvent, bool, error) {
	var note notification
	if err := json.Unmarshal(msg, &note); err != nil {
		return domain.WalletEvent{}, false, err
	}

	switch note.Event {
	case string(domain.EventAccountsChanged):
		var accounts []string
		if err := json.Unmarshal(note.Data, &accounts); err != nil {
			return domain.WalletEvent{}, false, fmt.Errorf("accountsChanged data: %w", err)
		}
		return domain.WalletEvent{Type: domain.EventAccountsChanged, Accounts: accounts}, true, nil
	case string(domain.EventNetworkChanged), "chainChanged":
		id, err := parseNetwork(note.Data)
		if err != nil {
			return domain.WalletEvent{}, false, err
		}
		return domain.WalletEvent{Type: domain.EventNetworkChanged, Network: id}, true, nil
	default:
		return domain.WalletEvent{}, false, nil
	}
}

// parseNetwork accepts "5", "0x5" or 5.
func parseNetwork(raw json.RawMessage) (domain.NetworkID, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		var n uint64
		if err := json.Unmarshal(raw, &n); err != nil {
			return 0, fmt.Errorf("network data: %w", err)
		}
		return domain.NetworkID(n), nil
	}
	if strings.HasPrefix(s, "0x") {
		n, err := hexutil.DecodeUint64(s)
		if err != nil {
			return 0, fmt.Errorf("network data %q: %w", s, err)
		}
		return domain.NetworkID(n), nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("network data %q: %w", s, err)
	}
	return domain.NetworkID(n), nil
}
