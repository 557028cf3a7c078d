package token

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Event is a state-change notification. Every ledger or balance mutation is
// paired with exactly one emission in the same serialized step; failed
// submissions emit nothing.
type Event interface {
	EventName() string
}

// TransferEvent is the standard value-transfer event.
type TransferEvent struct {
	From  common.Address
	To    common.Address
	Value *big.Int
}

func (TransferEvent) EventName() string { return "Transfer" }

// AuthorizationUsedEvent records consumption of (authorizer, nonce) by a
// successful transfer or receive execution.
type AuthorizationUsedEvent struct {
	Authorizer common.Address
	Nonce      [32]byte
}

func (AuthorizationUsedEvent) EventName() string { return "AuthorizationUsed" }

// AuthorizationCanceledEvent records consumption of (authorizer, nonce) by an
// explicit cancellation.
type AuthorizationCanceledEvent struct {
	Authorizer common.Address
	Nonce      [32]byte
}

func (AuthorizationCanceledEvent) EventName() string { return "AuthorizationCanceled" }

// NonceHex renders the nonce in its wire form.
func (e AuthorizationUsedEvent) NonceHex() string { return hexutil.Encode(e.Nonce[:]) }

// NonceHex renders the nonce in its wire form.
func (e AuthorizationCanceledEvent) NonceHex() string { return hexutil.Encode(e.Nonce[:]) }

// EventLog is an append-only record of emitted events, in emission order.
type EventLog struct {
	mu     sync.Mutex
	events []Event
}

// NewEventLog creates an empty event log.
func NewEventLog() *EventLog {
	return &EventLog{}
}

func (l *EventLog) append(events ...Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = append(l.events, events...)
}

// All returns a snapshot of every emitted event, oldest first.
func (l *EventLog) All() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	snapshot := make([]Event, len(l.events))
	copy(snapshot, l.events)
	return snapshot
}

// Len returns the number of emitted events.
func (l *EventLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.events)
}
