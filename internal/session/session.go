// Package session owns the wallet connection lifecycle.
//
// A Manager moves through disconnected -> connecting -> connected, with
// connecting -> failed and connected -> disconnected as the other edges.
// The session value and its contract binding are always replaced together.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/vietddude/artbid/internal/contract"
	"github.com/vietddude/artbid/internal/core/domain"
	"github.com/vietddude/artbid/internal/core/metrics"
	"github.com/vietddude/artbid/internal/infra/registry"
	"github.com/vietddude/artbid/internal/infra/wallet"
)

// ErrSuperseded is returned by Connect when a disconnect or wallet event
// invalidated the attempt before it finished.
var ErrSuperseded = errors.New("connection attempt superseded")

// Resolver produces the contract binding for a network.
type Resolver func(networkID domain.NetworkID, caller contract.Caller) (contract.Contract, error)

// RegistryResolver resolves bindings from a deployment registry.
func RegistryResolver(reg *registry.Registry) Resolver {
	return func(networkID domain.NetworkID, caller contract.Caller) (contract.Contract, error) {
		b, err := contract.Resolve(networkID, reg, caller)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
}

// Manager is the wallet session state machine.
type Manager struct {
	provider wallet.Provider
	resolve  Resolver
	log      *slog.Logger

	mu            sync.RWMutex
	session       domain.Session
	binding       contract.Contract
	epoch         uint64
	stateCallback func(Transition)
}

// New creates a disconnected session. A nil provider is allowed; Connect then
// fails with ErrNoWallet.
func New(provider wallet.Provider, resolve Resolver, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		provider: provider,
		resolve:  resolve,
		log:      log,
		session:  domain.Session{Status: domain.SessionDisconnected},
	}
}

// SetStateChangeCallback registers a callback for state changes.
func (m *Manager) SetStateChangeCallback(fn func(Transition)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stateCallback = fn
}

// Session returns the current session value.
func (m *Manager) Session() domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

// Binding returns the contract binding. It is present only while connected.
func (m *Manager) Binding() (contract.Contract, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.binding, m.binding != nil
}

// Snapshot returns the session and its binding as read under one lock.
func (m *Manager) Snapshot() (domain.Session, contract.Contract) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session, m.binding
}

// Connect runs one connection attempt. It is a no-op while connecting or
// connected. The returned error is also recorded on the failed session.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	switch m.session.Status {
	case domain.SessionConnecting, domain.SessionConnected:
		m.mu.Unlock()
		return nil
	}

	m.epoch++
	epoch := m.epoch
	attempt := uuid.NewString()
	t, err := m.setLocked(domain.Session{Attempt: attempt, Status: domain.SessionConnecting}, nil, "connect")
	m.mu.Unlock()
	if err != nil {
		return err
	}
	m.notify(t)

	if m.provider == nil {
		m.log.Warn("Please install a wallet provider to use this application")
		return m.fail(epoch, attempt, fmt.Errorf("%w: no provider configured", domain.ErrNoWallet))
	}

	accounts, err := m.provider.RequestAccounts(ctx)
	if err != nil {
		return m.fail(epoch, attempt, fmt.Errorf("%w: request accounts: %w", domain.ErrNoAccount, err))
	}
	if len(accounts) == 0 {
		return m.fail(epoch, attempt, fmt.Errorf("%w: wallet returned zero accounts", domain.ErrNoAccount))
	}

	networkID, err := m.provider.NetworkID(ctx)
	if err != nil {
		return m.fail(epoch, attempt, fmt.Errorf("%w: network id: %w", domain.ErrRead, err))
	}

	binding, err := m.resolve(networkID, m.provider)
	if err != nil {
		if !errors.Is(err, domain.ErrNotDeployed) {
			err = fmt.Errorf("%w: %w", domain.ErrNotDeployed, err)
		}
		m.log.Warn("Contract not deployed to detected network", "network", networkID)
		return m.fail(epoch, attempt, err)
	}

	next := domain.Session{
		Attempt:        attempt,
		AccountAddress: accounts[0],
		NetworkID:      networkID,
		Status:         domain.SessionConnected,
	}
	if err := m.commit(epoch, next, binding, "accounts authorized"); err != nil {
		return err
	}

	m.log.Info("Wallet connected",
		"account", accounts[0],
		"network", networkID,
		"contract", binding.Address().Hex(),
	)
	return nil
}

// Disconnect resets the session. Any in-flight attempt is invalidated.
func (m *Manager) Disconnect() {
	m.reset("disconnect requested")
}

// Run consumes unsolicited wallet events until ctx is done or the provider
// closes its event channel.
func (m *Manager) Run(ctx context.Context) error {
	if m.provider == nil {
		<-ctx.Done()
		return nil
	}

	events := m.provider.Events()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			m.HandleEvent(ev)
		}
	}
}

// HandleEvent applies one wallet event. Account or network loss disconnects
// the session; other states ignore the event.
func (m *Manager) HandleEvent(ev domain.WalletEvent) {
	status := m.Session().Status
	if status != domain.SessionConnected && status != domain.SessionConnecting {
		m.log.Debug("Ignoring wallet event", "type", ev.Type, "state", status)
		return
	}

	m.log.Info("Wallet event received", "type", ev.Type, "accounts", ev.Accounts, "network", ev.Network)
	m.reset(string(ev.Type))
}

func (m *Manager) reset(reason string) {
	m.mu.Lock()
	if m.session.Status == domain.SessionDisconnected {
		m.mu.Unlock()
		return
	}
	m.epoch++
	t, err := m.setLocked(domain.Session{Status: domain.SessionDisconnected}, nil, reason)
	m.mu.Unlock()
	if err != nil {
		m.log.Error("Session reset rejected", "error", err)
		return
	}
	m.notify(t)
}

func (m *Manager) fail(epoch uint64, attempt string, cause error) error {
	next := domain.Session{
		Attempt: attempt,
		Status:  domain.SessionFailed,
		Err:     domain.NewAppError(cause),
	}
	if err := m.commit(epoch, next, nil, cause.Error()); err != nil {
		return err
	}
	m.log.Error("Wallet connection failed", "attempt", attempt, "error", cause)
	return cause
}

// commit applies the result of an attempt unless it was superseded.
func (m *Manager) commit(epoch uint64, next domain.Session, binding contract.Contract, reason string) error {
	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		m.log.Debug("Dropping superseded connection result", "attempt", next.Attempt)
		return ErrSuperseded
	}
	t, err := m.setLocked(next, binding, reason)
	m.mu.Unlock()
	if err != nil {
		return err
	}
	m.notify(t)
	return nil
}

// setLocked replaces the session and binding. Caller must hold m.mu.
func (m *Manager) setLocked(next domain.Session, binding contract.Contract, reason string) (Transition, error) {
	t := NewTransition(m.session.Status, next.Status, next.Attempt, reason)
	if !t.IsValid() {
		return t, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.From, t.To)
	}
	m.session = next
	m.binding = binding
	return t, nil
}

func (m *Manager) notify(t Transition) {
	metrics.SessionTransitions.WithLabelValues(string(t.From), string(t.To)).Inc()
	m.log.Debug("Session state changed", "from", t.From, "to", t.To, "reason", t.Reason)

	m.mu.RLock()
	cb := m.stateCallback
	m.mu.RUnlock()
	if cb != nil {
		cb(t)
	}
}
