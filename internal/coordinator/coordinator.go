// Package coordinator implements the capability-token lifecycle, the swap
// state machine, and the pre-image extraction that together sequence an
// atomic swap to completion.
package coordinator

import (
	"fmt"
	"time"

	"github.com/atomic-swap-net/swapcoordd/internal/domain"
	"github.com/atomic-swap-net/swapcoordd/internal/storage"
	"github.com/atomic-swap-net/swapcoordd/pkg/logging"
)

// SwapEvent describes one state transition, broadcast to anyone listening
// through OnEvent (the optional websocket feed, in this server's case).
type SwapEvent struct {
	SwapKey   [domain.HashSize]byte
	Status    domain.SwapStatus
	Timestamp time.Time
}

// EventHandler is called when a swap event occurs.
type EventHandler func(event SwapEvent)

// Coordinator owns both stores and serializes per-key mutations.
type Coordinator struct {
	stores *storage.Stores
	locks  *keyLocker
	log    *logging.Logger

	eventHandlers []EventHandler
}

// Config configures a Coordinator.
type Config struct {
	Stores *storage.Stores
	Logger *logging.Logger
}

// New builds a Coordinator over an already-open set of stores, then runs
// the startup reconciliation pass described in Reconcile.
func New(cfg Config) (*Coordinator, error) {
	log := cfg.Logger
	if log == nil {
		log = logging.GetDefault().Component("coordinator")
	}

	c := &Coordinator{
		stores: cfg.Stores,
		locks:  newKeyLocker(),
		log:    log,
	}

	if err := c.Reconcile(); err != nil {
		return nil, fmt.Errorf("startup reconciliation: %w", err)
	}

	return c, nil
}

// OnEvent registers a handler invoked after every successful state
// transition. Handlers run on their own goroutine and never block the
// caller's request.
func (c *Coordinator) OnEvent(h EventHandler) {
	c.eventHandlers = append(c.eventHandlers, h)
}

func (c *Coordinator) emitEvent(swapKey [domain.HashSize]byte, status domain.SwapStatus) {
	if len(c.eventHandlers) == 0 {
		return
	}
	event := SwapEvent{SwapKey: swapKey, Status: status, Timestamp: time.Now()}
	handlers := make([]EventHandler, len(c.eventHandlers))
	copy(handlers, c.eventHandlers)
	for _, h := range handlers {
		go h(event)
	}
}

// checkToken implements the five-step authorization rule shared by every
// mutating and info-reading endpoint.
func (c *Coordinator) checkToken(token string, expectedRoles []domain.TokenStatus, tokenUsedIsError bool) ([domain.HashSize]byte, error) {
	raw, err := domain.DecodeToken(token)
	if err != nil {
		return [domain.HashSize]byte{}, ErrTokenInvalid
	}
	hashed := domain.Sha256D(raw)

	rec, ok, err := c.stores.Tokens.Get(hashed)
	if err != nil {
		return hashed, fmt.Errorf("look up token: %w", err)
	}
	if !ok {
		return hashed, ErrTokenInvalid
	}

	roleOK := false
	for _, r := range expectedRoles {
		if rec.Status == r {
			roleOK = true
			break
		}
	}
	if !roleOK {
		return hashed, ErrTokenStatusInvalid
	}

	if tokenUsedIsError {
		_, used, err := c.stores.Swaps.Get(hashed)
		if err != nil {
			return hashed, fmt.Errorf("look up swap: %w", err)
		}
		if used {
			return hashed, ErrTokenUsed
		}
	}

	return hashed, nil
}
