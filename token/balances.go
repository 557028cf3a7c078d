package token

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/gaslesspay/fiattoken"
)

// BalanceStore is the balance-transfer primitive the authorization engine
// executes against. Transfer either moves the full value or fails with
// insufficient_balance and no effect.
type BalanceStore interface {
	BalanceOf(addr common.Address) *big.Int
	Transfer(from, to common.Address, value *big.Int) error
	TotalSupply() *big.Int
}

// MemoryBalances is a mutex-guarded in-memory balance ledger.
//
// This implementation is suitable for single-instance deployments where the
// ledger doesn't need to be shared across processes. For distributed
// deployments, implement BalanceStore with a shared backend.
type MemoryBalances struct {
	mu       sync.Mutex
	balances map[common.Address]*big.Int
	supply   *big.Int
}

// NewMemoryBalances creates a balance ledger seeded with the genesis
// allocation. The total supply is the sum of the allocation and never changes
// afterwards.
func NewMemoryBalances(genesis map[common.Address]*big.Int) *MemoryBalances {
	balances := make(map[common.Address]*big.Int, len(genesis))
	supply := new(big.Int)
	for addr, amount := range genesis {
		if amount == nil || amount.Sign() <= 0 {
			continue
		}
		balances[addr] = new(big.Int).Set(amount)
		supply.Add(supply, amount)
	}
	return &MemoryBalances{
		balances: balances,
		supply:   supply,
	}
}

// BalanceOf returns the balance of addr. Absent entries read as zero.
func (b *MemoryBalances) BalanceOf(addr common.Address) *big.Int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if balance, ok := b.balances[addr]; ok {
		return new(big.Int).Set(balance)
	}
	return new(big.Int)
}

// TotalSupply returns the fixed total supply.
func (b *MemoryBalances) TotalSupply() *big.Int {
	return new(big.Int).Set(b.supply)
}

// Transfer moves value from one account to another. The balance check and
// both writes happen under one lock, so a failed transfer leaves no partial
// effect. An account with no ledger entry reads as a zero balance, so a
// zero-value transfer from it succeeds.
func (b *MemoryBalances) Transfer(from, to common.Address, value *big.Int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// A negative value would move funds in the reverse direction through
	// Sub/Add below; the ledger only ever moves non-negative amounts.
	if value == nil || value.Sign() < 0 {
		return fiattoken.NewAuthorizationError(
			fiattoken.ErrCodeInvalidPayload,
			"transfer value must be non-negative",
			map[string]interface{}{
				"from": from.Hex(),
			},
		)
	}

	fromBalance := b.balances[from]
	if fromBalance == nil {
		fromBalance = new(big.Int)
	}
	if fromBalance.Cmp(value) < 0 {
		return fiattoken.NewAuthorizationError(
			fiattoken.ErrCodeInsufficientBalance,
			"transfer amount exceeds balance",
			map[string]interface{}{
				"from":  from.Hex(),
				"value": value.String(),
			},
		)
	}

	fromBalance.Sub(fromBalance, value)
	b.balances[from] = fromBalance
	toBalance, ok := b.balances[to]
	if !ok {
		toBalance = new(big.Int)
		b.balances[to] = toBalance
	}
	toBalance.Add(toBalance, value)
	return nil
}
