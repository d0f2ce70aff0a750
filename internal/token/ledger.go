// Package token defines the fungible-token ledger each asset instance
// wraps. The lifecycle services never re-implement token accounting; they
// read balances and issue transfer/mint/burn commands through the Ledger
// interface, so any conforming implementation can sit underneath.
package token

import "context"

// Ledger is the external collaborator contract. Implementations must
// conserve supply: the sum of all balances always equals TotalSupply, and
// every mutation either fully applies or fully fails.
type Ledger interface {
	BalanceOf(ctx context.Context, holder string) (uint64, error)
	TotalSupply(ctx context.Context) (uint64, error)

	Transfer(ctx context.Context, from, to string, amount uint64) error
	TransferFrom(ctx context.Context, spender, owner, to string, amount uint64) error
	Mint(ctx context.Context, minter, recipient string, amount uint64) error
	Burn(ctx context.Context, holder string, amount uint64) error

	Allowance(ctx context.Context, owner, spender string) (uint64, error)
	IncreaseAllowance(ctx context.Context, owner, spender string, amount uint64) error
	DecreaseAllowance(ctx context.Context, owner, spender string, amount uint64) error
}
