// Package token implements an ERC-20-compatible stablecoin engine extended
// with EIP-3009 transfer-with-authorization semantics: gasless transfers a
// relayer submits on behalf of a signer. The engine owns the authorization
// ledger and the balance ledger, serializes every submission, and pairs each
// mutation with an event emission.
package token

import (
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/gaslesspay/fiattoken"
	"github.com/gaslesspay/fiattoken/eip712"
)

// DefaultDecimals is the conventional stablecoin precision.
const DefaultDecimals = 6

// FiatToken is a token instance: domain binding, balance ledger,
// authorization ledger, and event log.
type FiatToken struct {
	// mu serializes all state-changing submissions, supplying the single
	// global ordering every authorization race is resolved by.
	mu sync.Mutex

	domain    eip712.Domain
	separator common.Hash

	balances BalanceStore
	auths    AuthorizationStore
	events   *EventLog

	symbol   string
	decimals uint8
	now      func() time.Time
}

// Option configures a FiatToken.
type Option func(*FiatToken)

// WithClock overrides the time source used for validity-window checks.
func WithClock(now func() time.Time) Option {
	return func(t *FiatToken) {
		t.now = now
	}
}

// WithSymbol sets the token symbol.
func WithSymbol(symbol string) Option {
	return func(t *FiatToken) {
		t.symbol = symbol
	}
}

// WithDecimals sets the token precision.
func WithDecimals(decimals uint8) Option {
	return func(t *FiatToken) {
		t.decimals = decimals
	}
}

// WithBalanceStore replaces the in-memory balance ledger. The genesis
// allocation passed to New is ignored when this option is used.
func WithBalanceStore(store BalanceStore) Option {
	return func(t *FiatToken) {
		t.balances = store
	}
}

// WithAuthorizationStore replaces the in-memory authorization ledger.
func WithAuthorizationStore(store AuthorizationStore) Option {
	return func(t *FiatToken) {
		t.auths = store
	}
}

// New creates a token instance bound to domain, seeded with the genesis
// balance allocation. The domain separator is derived once here and is fixed
// for the instance's lifetime.
func New(domain eip712.Domain, genesis map[common.Address]*big.Int, opts ...Option) *FiatToken {
	t := &FiatToken{
		domain:    domain,
		separator: domain.Separator(),
		balances:  NewMemoryBalances(genesis),
		auths:     NewMemoryAuthorizationStore(),
		events:    NewEventLog(),
		decimals:  DefaultDecimals,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name returns the token name used in the signing domain.
func (t *FiatToken) Name() string { return t.domain.Name }

// Version returns the signing domain version.
func (t *FiatToken) Version() string { return t.domain.Version }

// Symbol returns the token symbol.
func (t *FiatToken) Symbol() string { return t.symbol }

// Decimals returns the token precision.
func (t *FiatToken) Decimals() uint8 { return t.decimals }

// Domain returns the signing domain.
func (t *FiatToken) Domain() eip712.Domain { return t.domain }

// DomainSeparator returns the 32-byte domain separator derived at
// construction time.
func (t *FiatToken) DomainSeparator() common.Hash { return t.separator }

// AuthorizationState reports whether (authorizer, nonce) has been consumed,
// by execution or by cancellation.
func (t *FiatToken) AuthorizationState(authorizer common.Address, nonce [32]byte) bool {
	return t.auths.State(authorizer, nonce)
}

// BalanceOf returns the balance of addr.
func (t *FiatToken) BalanceOf(addr common.Address) *big.Int {
	return t.balances.BalanceOf(addr)
}

// TotalSupply returns the token's total supply.
func (t *FiatToken) TotalSupply() *big.Int {
	return t.balances.TotalSupply()
}

// Events returns a snapshot of every emitted event, oldest first.
func (t *FiatToken) Events() []Event {
	return t.events.All()
}

// Transfer is the plain ERC-20 transfer primitive: caller moves value to
// another account directly, no authorization involved.
func (t *FiatToken) Transfer(caller, to common.Address, value *big.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := checkUint256("value", value); err != nil {
		return err
	}
	if err := t.balances.Transfer(caller, to, value); err != nil {
		return err
	}
	t.events.append(TransferEvent{From: caller, To: to, Value: new(big.Int).Set(value)})
	return nil
}

// TransferWithAuthorization executes a transfer authorized off-chain by from.
// Any party may submit it; the signature, not the caller, carries the
// authority.
func (t *FiatToken) TransferWithAuthorization(
	from, to common.Address,
	value, validAfter, validBefore *big.Int,
	nonce [32]byte,
	v uint8, r, s [32]byte,
) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	digest := eip712.TransferDigest(t.separator, from, to, value, validAfter, validBefore, nonce)
	return t.executeAuthorization(digest, from, to, value, validAfter, validBefore, nonce, v, r, s)
}

// ReceiveWithAuthorization executes a receive-style authorization. Only the
// payee may submit it, which closes the front-running window the unrestricted
// transfer variant leaves open.
func (t *FiatToken) ReceiveWithAuthorization(
	caller common.Address,
	from, to common.Address,
	value, validAfter, validBefore *big.Int,
	nonce [32]byte,
	v uint8, r, s [32]byte,
) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if caller != to {
		return fiattoken.NewAuthorizationError(
			fiattoken.ErrCodeCallerMustBePayee,
			"caller must be the payee",
			map[string]interface{}{
				"caller": caller.Hex(),
				"payee":  to.Hex(),
			},
		)
	}

	digest := eip712.ReceiveDigest(t.separator, from, to, value, validAfter, validBefore, nonce)
	return t.executeAuthorization(digest, from, to, value, validAfter, validBefore, nonce, v, r, s)
}

// CancelAuthorization consumes (authorizer, nonce) without moving value,
// making any outstanding authorization over that nonce permanently
// unexecutable. Requires the authorizer's signature over the cancel digest.
func (t *FiatToken) CancelAuthorization(
	authorizer common.Address,
	nonce [32]byte,
	v uint8, r, s [32]byte,
) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	digest := eip712.CancelDigest(t.separator, authorizer, nonce)
	if err := t.checkSigner(digest, authorizer, v, r, s); err != nil {
		return err
	}

	if t.auths.State(authorizer, nonce) {
		return alreadyUsedError(authorizer, nonce)
	}

	t.auths.MarkUsed(authorizer, nonce)
	t.events.append(AuthorizationCanceledEvent{Authorizer: authorizer, Nonce: nonce})
	return nil
}

// executeAuthorization runs the shared validation and execution path for
// transfer and receive authorizations. Check order is fixed: signature, then
// time window, then ledger state, then the balance move. The nonce is marked
// used only after the balance move succeeds, so a failed execution never
// consumes a nonce and a successful one can never be replayed.
func (t *FiatToken) executeAuthorization(
	digest common.Hash,
	from, to common.Address,
	value, validAfter, validBefore *big.Int,
	nonce [32]byte,
	v uint8, r, s [32]byte,
) error {
	if err := checkUint256("value", value); err != nil {
		return err
	}
	if err := checkUint256("validAfter", validAfter); err != nil {
		return err
	}
	if err := checkUint256("validBefore", validBefore); err != nil {
		return err
	}

	if err := t.checkSigner(digest, from, v, r, s); err != nil {
		return err
	}

	now := big.NewInt(t.now().Unix())
	if now.Cmp(validAfter) < 0 {
		return fiattoken.NewAuthorizationError(
			fiattoken.ErrCodeNotYetValid,
			"authorization is not yet valid",
			map[string]interface{}{
				"validAfter": validAfter.String(),
				"now":        now.String(),
			},
		)
	}
	if now.Cmp(validBefore) >= 0 {
		return fiattoken.NewAuthorizationError(
			fiattoken.ErrCodeExpired,
			"authorization is expired",
			map[string]interface{}{
				"validBefore": validBefore.String(),
				"now":         now.String(),
			},
		)
	}

	if t.auths.State(from, nonce) {
		return alreadyUsedError(from, nonce)
	}

	if err := t.balances.Transfer(from, to, value); err != nil {
		return err
	}

	t.auths.MarkUsed(from, nonce)
	t.events.append(
		AuthorizationUsedEvent{Authorizer: from, Nonce: nonce},
		TransferEvent{From: from, To: to, Value: new(big.Int).Set(value)},
	)
	return nil
}

// checkSigner recovers the signer of digest and requires it to equal
// authorizer. Recovery failure and signer mismatch both report
// invalid_signature.
func (t *FiatToken) checkSigner(digest common.Hash, authorizer common.Address, v uint8, r, s [32]byte) error {
	signer, err := eip712.RecoverSigner(digest, v, r, s)
	if err != nil {
		return fiattoken.NewAuthorizationError(
			fiattoken.ErrCodeInvalidSignature,
			fmt.Sprintf("signature recovery failed: %v", err),
			nil,
		)
	}
	if signer != authorizer {
		return fiattoken.NewAuthorizationError(
			fiattoken.ErrCodeInvalidSignature,
			"signer does not match authorizer",
			map[string]interface{}{
				"recovered":  signer.Hex(),
				"authorizer": authorizer.Hex(),
			},
		)
	}
	return nil
}

// checkUint256 rejects numeric fields outside [0, 2^256). The digest encodes
// every numeric field mod 2^256, so an out-of-range value would sign as one
// number and execute as another: a negative value signs as its two's
// complement yet would walk the ledger backwards, and anything at or above
// 2^256 signs truncated.
func checkUint256(name string, v *big.Int) error {
	if v == nil || v.Sign() < 0 || v.BitLen() > 256 {
		return fiattoken.NewAuthorizationError(
			fiattoken.ErrCodeInvalidPayload,
			fmt.Sprintf("%s is outside the uint256 range", name),
			nil,
		)
	}
	return nil
}

func alreadyUsedError(authorizer common.Address, nonce [32]byte) error {
	return fiattoken.NewAuthorizationError(
		fiattoken.ErrCodeAlreadyUsed,
		"authorization is used or canceled",
		map[string]interface{}{
			"authorizer": authorizer.Hex(),
			"nonce":      hexutil.Encode(nonce[:]),
		},
	)
}
