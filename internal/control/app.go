package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/vietddude/artbid/internal/auction"
	"github.com/vietddude/artbid/internal/bid"
	"github.com/vietddude/artbid/internal/contract"
	"github.com/vietddude/artbid/internal/core/domain"
	"github.com/vietddude/artbid/internal/infra/registry"
	"github.com/vietddude/artbid/internal/infra/wallet"
	"github.com/vietddude/artbid/internal/session"
	"golang.org/x/sync/errgroup"
)

// App wires the session, synchronizer and bid submitter and is the boundary
// where failures become the current AppError.
type App struct {
	cfg      Config
	session  *session.Manager
	auctions *auction.Synchronizer
	bids     *bid.Submitter
	server   *Server
	log      *slog.Logger

	mu        sync.RWMutex
	lastErr   *domain.AppError
	errSeq    uint64
	listeners map[int]Listener
	nextID    int

	cancel context.CancelFunc
	group  *errgroup.Group
}

// Config holds the application configuration.
type Config struct {
	// Provider is the wallet capability. Nil means no wallet is installed.
	Provider wallet.Provider
	Registry *registry.Registry
	// Resolver overrides registry based resolution.
	Resolver    session.Resolver
	NotifyURL   string
	Port        int
	AutoConnect bool
	Logger      *slog.Logger
}

// healthReporter is implemented by providers that track their own calls.
type healthReporter interface {
	GetHealth() wallet.HealthStatus
}

// eventSource is implemented by providers that need a notification feed.
type eventSource interface {
	Listen(ctx context.Context, notifyURL string) error
}

// NewApp creates a new App with all components initialized.
func NewApp(cfg Config) *App {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	resolve := cfg.Resolver
	if resolve == nil {
		resolve = session.RegistryResolver(cfg.Registry)
	}

	a := &App{
		cfg:       cfg,
		log:       log,
		listeners: make(map[int]Listener),
	}
	a.session = session.New(cfg.Provider, resolve, log.With("component", "session"))
	a.auctions = auction.NewSynchronizer(log.With("component", "auctions"))
	a.bids = bid.NewSubmitter(a.session, a.auctions, log.With("component", "bids"))

	a.session.SetStateChangeCallback(a.onTransition)
	a.auctions.SetChangeCallback(a.publishAuctions)
	a.bids.SetRefreshErrorCallback(func(id domain.AuctionID, err error) {
		a.fail(fmt.Errorf("refresh after bid on auction %s: %w", id, err))
	})

	if cfg.Port > 0 {
		a.server = NewServer(a, cfg.Port)
	}
	return a
}

// Start runs the event loop, the notification feed and the status server in
// the background. It connects right away when auto connect is enabled.
func (a *App) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	g, ctx := errgroup.WithContext(ctx)
	a.group = g

	g.Go(func() error {
		return a.session.Run(ctx)
	})

	if src, ok := a.cfg.Provider.(eventSource); ok && a.cfg.NotifyURL != "" {
		g.Go(func() error {
			if err := src.Listen(ctx, a.cfg.NotifyURL); err != nil && ctx.Err() == nil {
				a.log.Warn("Wallet notification feed stopped", "url", a.cfg.NotifyURL, "error", err)
			}
			return nil
		})
	}

	if a.server != nil {
		a.log.Info("Starting status server", "port", a.cfg.Port)
		g.Go(func() error {
			if err := a.server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	if a.cfg.AutoConnect {
		g.Go(func() error {
			a.Connect(ctx)
			return nil
		})
	}
	return nil
}

// Stop stops the app.
func (a *App) Stop(ctx context.Context) error {
	a.log.Info("Stopping app...")
	if a.cancel != nil {
		a.cancel()
	}

	var err error
	if a.server != nil {
		err = a.server.Stop(ctx)
	}
	if a.group != nil {
		if gerr := a.group.Wait(); gerr != nil && err == nil {
			err = gerr
		}
	}
	if a.cfg.Provider != nil {
		if cerr := a.cfg.Provider.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Connect establishes the wallet session and loads the auction list.
func (a *App) Connect(ctx context.Context) error {
	err := a.session.Connect(ctx)
	if errors.Is(err, session.ErrSuperseded) {
		return nil
	}
	if err != nil {
		a.fail(err)
		return err
	}

	a.clearError()
	if _, ok := a.session.Binding(); ok {
		a.Refresh(ctx)
	}
	return nil
}

// Disconnect resets the session and the auction list.
func (a *App) Disconnect() {
	a.session.Disconnect()
}

// Refresh reloads the auction list. Failures leave the session connected.
func (a *App) Refresh(ctx context.Context) error {
	binding, ok := a.session.Binding()
	if !ok {
		err := domain.ErrNotConnected
		a.fail(err)
		return err
	}
	if err := a.auctions.Refresh(ctx, binding); err != nil {
		a.fail(err)
		return err
	}
	return nil
}

// PlaceBid bids amount, given in display units, on auctionID. An empty amount
// bids the auction's current minimum. A failed refresh after an accepted bid
// stays the current error.
func (a *App) PlaceBid(ctx context.Context, auctionID, amount string) (*contract.Receipt, error) {
	var (
		receipt *contract.Receipt
		err     error
	)
	id := domain.AuctionID(auctionID)
	seq := a.errorSeq()

	if amount == "" {
		receipt, err = a.bids.PlaceMinimumBid(ctx, id)
	} else {
		receipt, err = a.bids.PlaceDisplayBid(ctx, id, amount)
	}

	if err != nil {
		a.fail(err)
		return nil, err
	}
	a.clearErrorSince(seq)
	return receipt, nil
}

// WalletHealth reports call statistics when the provider keeps them.
func (a *App) WalletHealth() (wallet.HealthStatus, bool) {
	hr, ok := a.cfg.Provider.(healthReporter)
	if !ok {
		return wallet.HealthStatus{}, false
	}
	return hr.GetHealth(), true
}

// State returns the current snapshot.
func (a *App) State() Snapshot {
	a.mu.RLock()
	lastErr := a.lastErr
	a.mu.RUnlock()
	return Snapshot{
		Session:  a.session.Session(),
		Auctions: a.auctions.State(),
		Error:    lastErr,
	}
}

// CurrentError returns the live AppError, if any.
func (a *App) CurrentError() *domain.AppError {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastErr
}

// Subscribe registers l and returns a function that removes it.
func (a *App) Subscribe(l Listener) func() {
	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.listeners[id] = l
	a.mu.Unlock()

	return func() {
		a.mu.Lock()
		delete(a.listeners, id)
		a.mu.Unlock()
	}
}

func (a *App) onTransition(t session.Transition) {
	if t.To == domain.SessionDisconnected {
		a.auctions.Reset()
	}
	s := a.session.Session()
	for _, l := range a.snapshotListeners() {
		if l.OnSession != nil {
			l.OnSession(s)
		}
	}
}

func (a *App) publishAuctions(st domain.AuctionListState) {
	for _, l := range a.snapshotListeners() {
		if l.OnAuctions != nil {
			l.OnAuctions(st)
		}
	}
}

// fail replaces the current AppError with err.
func (a *App) fail(err error) {
	appErr := domain.NewAppError(err)
	a.mu.Lock()
	a.lastErr = appErr
	a.errSeq++
	a.mu.Unlock()

	a.log.Error("Operation failed", "kind", appErr.Kind, "error", err)
	a.publishError(appErr)
}

func (a *App) clearError() {
	a.mu.Lock()
	hadErr := a.lastErr != nil
	a.lastErr = nil
	a.mu.Unlock()

	if hadErr {
		a.publishError(nil)
	}
}

func (a *App) errorSeq() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.errSeq
}

// clearErrorSince clears the current error unless one was raised after seq.
func (a *App) clearErrorSince(seq uint64) {
	a.mu.Lock()
	if a.errSeq != seq {
		a.mu.Unlock()
		return
	}
	hadErr := a.lastErr != nil
	a.lastErr = nil
	a.mu.Unlock()

	if hadErr {
		a.publishError(nil)
	}
}

func (a *App) publishError(appErr *domain.AppError) {
	for _, l := range a.snapshotListeners() {
		if l.OnError != nil {
			l.OnError(appErr)
		}
	}
}

func (a *App) snapshotListeners() []Listener {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]Listener, 0, len(a.listeners))
	for _, l := range a.listeners {
		out = append(out, l)
	}
	return out
}
