package control

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vietddude/artbid/internal/core/domain"
	"github.com/vietddude/artbid/internal/infra/wallet"
)

const writeTimeout = 5 * time.Second

// walletHealthView is implemented by views that can report wallet call health.
type walletHealthView interface {
	WalletHealth() (wallet.HealthStatus, bool)
}

// Server provides HTTP endpoints for the presentation layer and monitoring.
type Server struct {
	view     StateView
	server   *http.Server
	upgrader websocket.Upgrader
}

// NewServer creates a new status server.
func NewServer(view StateView, port int) *Server {
	mux := http.NewServeMux()
	s := &Server{
		view: view,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/state", s.handleState)
	mux.HandleFunc("/ws", s.handleWS)
	mux.Handle("/metrics", promhttp.Handler())

	return s
}

// Handler exposes the mux, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.view.State()

	// The process is healthy even when the wallet is not connected.
	response := map[string]any{
		"status":  "ok",
		"session": string(snap.Session.Status),
	}
	if snap.Error != nil {
		response["error"] = string(snap.Error.Kind)
	}
	if hv, ok := s.view.(walletHealthView); ok {
		if h, tracked := hv.WalletHealth(); tracked {
			response["wallet_available"] = h.Available
			response["wallet_error_rate"] = h.ErrorRate
			response["wallet_latency_ms"] = h.Latency.Milliseconds()
			if !h.Available {
				response["status"] = "degraded"
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.view.State())
}

// handleWS pushes a full snapshot on connect and after every state change.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	changed := make(chan struct{}, 1)
	signal := func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	}
	unsubscribe := s.view.Subscribe(Listener{
		OnSession:  func(domain.Session) { signal() },
		OnAuctions: func(domain.AuctionListState) { signal() },
		OnError:    func(*domain.AppError) { signal() },
	})
	defer unsubscribe()

	// Reader: only watches for the client going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	signal()
	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case <-changed:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(s.view.State()); err != nil {
				return
			}
		}
	}
}
