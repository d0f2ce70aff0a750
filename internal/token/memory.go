package token

import (
	"context"
	"fmt"
	"math"
	"sync"

	dErrors "rwa-ledger/pkg/domain-errors"
)

// InMemoryLedger is a process-local Ledger with standard mint/burn/allowance
// semantics. It backs local deployments and tests; production deployments
// swap in an adapter over the real token ledger.
type InMemoryLedger struct {
	mu          sync.RWMutex
	minter      string
	balances    map[string]uint64
	allowances  map[string]map[string]uint64
	totalSupply uint64
}

// NewInMemoryLedger creates a ledger whose Mint is gated on the given
// minter address. Initial balances, when provided, count toward supply.
func NewInMemoryLedger(minter string, initial map[string]uint64) (*InMemoryLedger, error) {
	l := &InMemoryLedger{
		minter:     minter,
		balances:   make(map[string]uint64),
		allowances: make(map[string]map[string]uint64),
	}
	for holder, amount := range initial {
		if amount > math.MaxUint64-l.totalSupply {
			return nil, dErrors.New(dErrors.CodeCapacityExceeded, "initial balances overflow total supply")
		}
		l.balances[holder] = amount
		l.totalSupply += amount
	}
	return l, nil
}

func (l *InMemoryLedger) BalanceOf(_ context.Context, holder string) (uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[holder], nil
}

func (l *InMemoryLedger) TotalSupply(_ context.Context) (uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.totalSupply, nil
}

func (l *InMemoryLedger) Transfer(_ context.Context, from, to string, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.move(from, to, amount)
}

func (l *InMemoryLedger) TransferFrom(_ context.Context, spender, owner, to string, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	granted := l.allowances[owner][spender]
	if granted < amount {
		return dErrors.New(dErrors.CodeInsufficientFunds,
			fmt.Sprintf("allowance %d below requested %d", granted, amount))
	}
	if err := l.move(owner, to, amount); err != nil {
		return err
	}
	if l.allowances[owner] == nil {
		l.allowances[owner] = make(map[string]uint64)
	}
	l.allowances[owner][spender] = granted - amount
	return nil
}

func (l *InMemoryLedger) Mint(_ context.Context, minter, recipient string, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if minter != l.minter {
		return dErrors.New(dErrors.CodeUnauthorized, "only the minter can mint")
	}
	if amount > math.MaxUint64-l.totalSupply {
		return dErrors.New(dErrors.CodeCapacityExceeded, "mint overflows total supply")
	}
	l.balances[recipient] += amount
	l.totalSupply += amount
	return nil
}

func (l *InMemoryLedger) Burn(_ context.Context, holder string, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	balance := l.balances[holder]
	if balance < amount {
		return dErrors.New(dErrors.CodeInsufficientFunds,
			fmt.Sprintf("balance %d below burn amount %d", balance, amount))
	}
	l.balances[holder] = balance - amount
	l.totalSupply -= amount
	return nil
}

func (l *InMemoryLedger) Allowance(_ context.Context, owner, spender string) (uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.allowances[owner][spender], nil
}

func (l *InMemoryLedger) IncreaseAllowance(_ context.Context, owner, spender string, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.allowances[owner] == nil {
		l.allowances[owner] = make(map[string]uint64)
	}
	current := l.allowances[owner][spender]
	if amount > math.MaxUint64-current {
		return dErrors.New(dErrors.CodeCapacityExceeded, "allowance overflow")
	}
	l.allowances[owner][spender] = current + amount
	return nil
}

func (l *InMemoryLedger) DecreaseAllowance(_ context.Context, owner, spender string, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	current := l.allowances[owner][spender]
	if current < amount {
		return dErrors.New(dErrors.CodeCapacityExceeded, "allowance below requested decrease")
	}
	l.allowances[owner][spender] = current - amount
	return nil
}

// move assumes the caller holds the write lock.
func (l *InMemoryLedger) move(from, to string, amount uint64) error {
	balance := l.balances[from]
	if balance < amount {
		return dErrors.New(dErrors.CodeInsufficientFunds,
			fmt.Sprintf("balance %d below transfer amount %d", balance, amount))
	}
	l.balances[from] = balance - amount
	l.balances[to] += amount
	return nil
}
