package token

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	dErrors "rwa-ledger/pkg/domain-errors"
)

type InMemoryLedgerSuite struct {
	suite.Suite
}

func TestInMemoryLedgerSuite(t *testing.T) {
	suite.Run(t, new(InMemoryLedgerSuite))
}

func (s *InMemoryLedgerSuite) newLedger(initial map[string]uint64) *InMemoryLedger {
	ledger, err := NewInMemoryLedger("addr-minter", initial)
	s.Require().NoError(err)
	return ledger
}

func (s *InMemoryLedgerSuite) TestInitialBalancesCountTowardSupply() {
	ledger := s.newLedger(map[string]uint64{"addr-a": 600, "addr-b": 400})
	ctx := s.T().Context()

	supply, err := ledger.TotalSupply(ctx)
	s.Require().NoError(err)
	s.Equal(uint64(1000), supply)

	balance, err := ledger.BalanceOf(ctx, "addr-a")
	s.Require().NoError(err)
	s.Equal(uint64(600), balance)

	balance, err = ledger.BalanceOf(ctx, "addr-unknown")
	s.Require().NoError(err)
	s.Zero(balance)
}

func (s *InMemoryLedgerSuite) TestTransfer() {
	ledger := s.newLedger(map[string]uint64{"addr-a": 100})
	ctx := s.T().Context()

	s.Run("moves units and preserves supply", func() {
		s.Require().NoError(ledger.Transfer(ctx, "addr-a", "addr-b", 40))

		a, _ := ledger.BalanceOf(ctx, "addr-a")
		b, _ := ledger.BalanceOf(ctx, "addr-b")
		supply, _ := ledger.TotalSupply(ctx)
		s.Equal(uint64(60), a)
		s.Equal(uint64(40), b)
		s.Equal(uint64(100), supply)
	})

	s.Run("rejects overdraft without side effects", func() {
		err := ledger.Transfer(ctx, "addr-a", "addr-b", 61)
		require.Error(s.T(), err)
		s.Equal(dErrors.CodeInsufficientFunds, dErrors.CodeOf(err))

		a, _ := ledger.BalanceOf(ctx, "addr-a")
		s.Equal(uint64(60), a)
	})
}

func (s *InMemoryLedgerSuite) TestMint() {
	ledger := s.newLedger(nil)
	ctx := s.T().Context()

	s.Run("only the configured minter can mint", func() {
		err := ledger.Mint(ctx, "addr-a", "addr-a", 10)
		require.Error(s.T(), err)
		s.Equal(dErrors.CodeUnauthorized, dErrors.CodeOf(err))
	})

	s.Run("mint grows balance and supply", func() {
		s.Require().NoError(ledger.Mint(ctx, "addr-minter", "addr-a", 250))

		balance, _ := ledger.BalanceOf(ctx, "addr-a")
		supply, _ := ledger.TotalSupply(ctx)
		s.Equal(uint64(250), balance)
		s.Equal(uint64(250), supply)
	})
}

func (s *InMemoryLedgerSuite) TestBurn() {
	ledger := s.newLedger(map[string]uint64{"addr-a": 100})
	ctx := s.T().Context()

	s.Require().NoError(ledger.Burn(ctx, "addr-a", 30))

	balance, _ := ledger.BalanceOf(ctx, "addr-a")
	supply, _ := ledger.TotalSupply(ctx)
	s.Equal(uint64(70), balance)
	s.Equal(uint64(70), supply)

	err := ledger.Burn(ctx, "addr-a", 71)
	require.Error(s.T(), err)
	s.Equal(dErrors.CodeInsufficientFunds, dErrors.CodeOf(err))
}

func (s *InMemoryLedgerSuite) TestAllowances() {
	ledger := s.newLedger(map[string]uint64{"addr-owner": 100})
	ctx := s.T().Context()

	s.Run("increase then spend via transfer-from", func() {
		s.Require().NoError(ledger.IncreaseAllowance(ctx, "addr-owner", "addr-spender", 50))

		granted, err := ledger.Allowance(ctx, "addr-owner", "addr-spender")
		s.Require().NoError(err)
		s.Equal(uint64(50), granted)

		s.Require().NoError(ledger.TransferFrom(ctx, "addr-spender", "addr-owner", "addr-c", 20))

		granted, _ = ledger.Allowance(ctx, "addr-owner", "addr-spender")
		balance, _ := ledger.BalanceOf(ctx, "addr-c")
		s.Equal(uint64(30), granted)
		s.Equal(uint64(20), balance)
	})

	s.Run("transfer-from beyond the allowance fails", func() {
		err := ledger.TransferFrom(ctx, "addr-spender", "addr-owner", "addr-c", 31)
		require.Error(s.T(), err)
		s.Equal(dErrors.CodeInsufficientFunds, dErrors.CodeOf(err))
	})

	s.Run("decrease below zero fails", func() {
		err := ledger.DecreaseAllowance(ctx, "addr-owner", "addr-spender", 31)
		require.Error(s.T(), err)
		s.Equal(dErrors.CodeCapacityExceeded, dErrors.CodeOf(err))

		s.Require().NoError(ledger.DecreaseAllowance(ctx, "addr-owner", "addr-spender", 30))
		granted, _ := ledger.Allowance(ctx, "addr-owner", "addr-spender")
		s.Zero(granted)
	})

	s.Run("zero-amount transfer-from without any grant succeeds", func() {
		fresh := s.newLedger(map[string]uint64{"addr-owner": 100})
		s.Require().NoError(fresh.TransferFrom(ctx, "addr-spender", "addr-owner", "addr-c", 0))

		granted, err := fresh.Allowance(ctx, "addr-owner", "addr-spender")
		s.Require().NoError(err)
		s.Zero(granted)

		balance, _ := fresh.BalanceOf(ctx, "addr-owner")
		s.Equal(uint64(100), balance)
	})

	s.Run("allowance of strangers is zero", func() {
		granted, err := ledger.Allowance(ctx, "addr-x", "addr-y")
		s.Require().NoError(err)
		s.Zero(granted)
	})
}
