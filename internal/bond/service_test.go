package bond

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"rwa-ledger/internal/lifecycle"
	"rwa-ledger/internal/token"
	dErrors "rwa-ledger/pkg/domain-errors"
)

const (
	issuer      = "addr-issuer"
	trustee     = "addr-trustee"
	payingAgent = "addr-paying-agent"
	holderA     = "addr-holder-a"
	holderB     = "addr-holder-b"
)

type BondServiceSuite struct {
	suite.Suite
	ctx     context.Context
	service *Service
	ledger  *token.InMemoryLedger
	start   time.Time
}

func TestBondServiceSuite(t *testing.T) {
	suite.Run(t, new(BondServiceSuite))
}

func (s *BondServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.start = time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	ledger, err := token.NewInMemoryLedger(issuer, map[string]uint64{
		holderA: 600,
		holderB: 400,
	})
	s.Require().NoError(err)
	s.ledger = ledger

	s.service = New(
		lifecycle.NewMemoryAggregateStore[Info](),
		lifecycle.NewMemoryRecordStore[CouponPayment](),
		lifecycle.NewMemoryRecordStore[RedemptionRecord](),
		lifecycle.NewMemoryRecordStore[Transfer](),
		lifecycle.NewMemoryRecordStore[InterestCalculation](),
		ledger,
		WithClock(func() time.Time { return s.start }),
	)
	s.Require().NoError(s.service.Init(s.ctx, s.seedInfo()))
}

func (s *BondServiceSuite) seedInfo() Info {
	return Info{
		BondID:               "BOND-001",
		BondName:             "Series A Notes",
		Issuer:               issuer,
		BondType:             TypeCorporate,
		FaceValue:            decimal.NewFromInt(100),
		TotalIssueAmount:     1000,
		CouponRate:           decimal.RequireFromString("0.05"),
		CouponFrequency:      FrequencyQuarterly,
		MaturityDate:         s.start.AddDate(5, 0, 0),
		IssueDate:            s.start.AddDate(-1, 0, 0),
		Currency:             "USD",
		Rating:               RatingBBB,
		CollateralType:       CollateralRealEstate,
		CollateralValue:      decimal.NewFromInt(150000),
		Trustee:              trustee,
		PayingAgent:          payingAgent,
		OutstandingPrincipal: decimal.NewFromInt(100000),
		NextCouponDate:       s.start.AddDate(0, 0, 10),
	}
}

func (s *BondServiceSuite) TestInitIsIdempotent() {
	changed := s.seedInfo()
	changed.OutstandingPrincipal = decimal.NewFromInt(1)
	s.Require().NoError(s.service.Init(s.ctx, changed))

	info, err := s.service.Info(s.ctx)
	s.Require().NoError(err)
	s.True(info.OutstandingPrincipal.Equal(decimal.NewFromInt(100000)))
}

func (s *BondServiceSuite) TestPayCoupon() {
	s.Run("paying agent reduces outstanding principal and advances the schedule", func() {
		before, err := s.service.Info(s.ctx)
		s.Require().NoError(err)

		record, err := s.service.PayCoupon(s.ctx, payingAgent, PayCouponParams{
			PaymentID:       "PAY-001",
			CouponAmount:    decimal.NewFromInt(500),
			PrincipalAmount: decimal.NewFromInt(1000),
			PaymentMethod:   MethodBankTransfer,
		})
		s.Require().NoError(err)
		s.True(record.TotalPayment.Equal(decimal.NewFromInt(1500)))
		s.Equal(PaymentPaid, record.PaymentStatus)

		info, err := s.service.Info(s.ctx)
		s.Require().NoError(err)
		s.True(info.OutstandingPrincipal.Equal(decimal.NewFromInt(99000)))
		s.True(info.TotalCouponsPaid.Equal(decimal.NewFromInt(500)))
		s.True(info.TotalPrincipalRepaid.Equal(decimal.NewFromInt(1000)))
		s.Equal(before.NextCouponDate.Add(90*24*time.Hour), info.NextCouponDate)

		stored, err := s.service.Payment(s.ctx, "PAY-001")
		s.Require().NoError(err)
		s.Equal(record, stored)
	})

	s.Run("non paying agent is rejected", func() {
		_, err := s.service.PayCoupon(s.ctx, issuer, PayCouponParams{
			PaymentID:    "PAY-BAD",
			CouponAmount: decimal.NewFromInt(1),
		})
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

		_, err = s.service.Payment(s.ctx, "PAY-BAD")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("principal above outstanding leaves state untouched", func() {
		_, err := s.service.PayCoupon(s.ctx, payingAgent, PayCouponParams{
			PaymentID:       "PAY-OVER",
			PrincipalAmount: decimal.NewFromInt(1_000_000),
		})
		s.True(dErrors.HasCode(err, dErrors.CodeCapacityExceeded))

		info, err := s.service.Info(s.ctx)
		s.Require().NoError(err)
		s.True(info.OutstandingPrincipal.Equal(decimal.NewFromInt(99000)))
	})

	s.Run("at maturity frequency keeps the coupon date fixed", func() {
		atMaturity := s.seedInfo()
		atMaturity.CouponFrequency = FrequencyAtMaturity
		svc := s.freshService(atMaturity)

		_, err := svc.PayCoupon(s.ctx, payingAgent, PayCouponParams{
			PaymentID:    "PAY-AM",
			CouponAmount: decimal.NewFromInt(100),
		})
		s.Require().NoError(err)

		info, err := svc.Info(s.ctx)
		s.Require().NoError(err)
		s.Equal(atMaturity.NextCouponDate, info.NextCouponDate)
	})
}

func (s *BondServiceSuite) TestRedeemBonds() {
	s.Run("burns tokens and reduces outstanding by units times face value", func() {
		record, err := s.service.RedeemBonds(s.ctx, holderA, RedeemParams{
			RedemptionID:   "RED-001",
			Bondholder:     holderA,
			BondsToRedeem:  200,
			RedemptionType: RedemptionEarly,
		})
		s.Require().NoError(err)
		s.True(record.RedemptionValue.Equal(decimal.NewFromInt(20000)))

		balance, err := s.ledger.BalanceOf(s.ctx, holderA)
		s.Require().NoError(err)
		s.Equal(uint64(400), balance)

		supply, err := s.ledger.TotalSupply(s.ctx)
		s.Require().NoError(err)
		s.Equal(uint64(800), supply)

		info, err := s.service.Info(s.ctx)
		s.Require().NoError(err)
		s.True(info.OutstandingPrincipal.Equal(decimal.NewFromInt(80000)))
	})

	s.Run("rejects redemption above the holder balance", func() {
		_, err := s.service.RedeemBonds(s.ctx, holderB, RedeemParams{
			RedemptionID:  "RED-OVER",
			Bondholder:    holderB,
			BondsToRedeem: 401,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeInsufficientFunds))

		balance, err := s.ledger.BalanceOf(s.ctx, holderB)
		s.Require().NoError(err)
		s.Equal(uint64(400), balance)
	})
}

func (s *BondServiceSuite) TestRecordTransfer() {
	record, err := s.service.RecordTransfer(s.ctx, holderA, TransferParams{
		TransferID:       "TRF-001",
		From:             holderA,
		To:               holderB,
		BondsTransferred: 50,
		TransferPrice:    decimal.NewFromInt(5100),
		TransferType:     TransferSale,
	})
	s.Require().NoError(err)
	s.Equal(s.start, record.TransferDate)

	// Evidence only: balances move through the ledger surface, not here.
	balance, err := s.ledger.BalanceOf(s.ctx, holderA)
	s.Require().NoError(err)
	s.Equal(uint64(600), balance)

	page, err := s.service.ListTransfers(s.ctx, "", 10)
	s.Require().NoError(err)
	s.Require().Len(page, 1)
	s.Equal("TRF-001", page[0].ID)
}

func (s *BondServiceSuite) TestCalculateInterest() {
	s.Run("simple interest over a full year", func() {
		record, err := s.service.CalculateInterest(s.ctx, holderA, CalculateInterestParams{
			CalculationID: "CALC-001",
			Bondholder:    holderA,
			BondsHeld:     10,
			DaysHeld:      365,
			Method:        MethodSimpleInterest,
		})
		s.Require().NoError(err)
		s.True(record.AccruedInterest.Equal(decimal.NewFromInt(50)),
			"got %s", record.AccruedInterest)
	})

	s.Run("actual/360 uses the shorter denominator", func() {
		record, err := s.service.CalculateInterest(s.ctx, holderA, CalculateInterestParams{
			CalculationID: "CALC-002",
			Bondholder:    holderA,
			BondsHeld:     10,
			DaysHeld:      180,
			Method:        MethodActual360,
		})
		s.Require().NoError(err)
		expected := decimal.NewFromInt(25) // 10 * 100 * 0.05 * 180/360
		s.True(record.AccruedInterest.Equal(expected), "got %s", record.AccruedInterest)
	})

	s.Run("compound interest yields zero", func() {
		record, err := s.service.CalculateInterest(s.ctx, holderA, CalculateInterestParams{
			CalculationID: "CALC-003",
			Bondholder:    holderA,
			BondsHeld:     10,
			DaysHeld:      365,
			Method:        MethodCompoundInterest,
		})
		s.Require().NoError(err)
		s.True(record.AccruedInterest.IsZero())
	})
}

func (s *BondServiceSuite) TestUpdatePaymentStatus() {
	_, err := s.service.PayCoupon(s.ctx, payingAgent, PayCouponParams{
		PaymentID:    "PAY-010",
		CouponAmount: decimal.NewFromInt(100),
	})
	s.Require().NoError(err)

	s.Run("overwrites status and hash on an existing record", func() {
		record, err := s.service.UpdatePaymentStatus(s.ctx, payingAgent, "PAY-010", PaymentFailed, "0xabc")
		s.Require().NoError(err)
		s.Equal(PaymentFailed, record.PaymentStatus)
		s.Equal("0xabc", record.TransactionHash)
	})

	s.Run("unknown status is rejected", func() {
		_, err := s.service.UpdatePaymentStatus(s.ctx, payingAgent, "PAY-010", PaymentStatus("settled"), "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("missing record", func() {
		_, err := s.service.UpdatePaymentStatus(s.ctx, payingAgent, "PAY-NOPE", PaymentPaid, "")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *BondServiceSuite) TestUpdateRating() {
	s.Run("issuer may update", func() {
		info, err := s.service.UpdateRating(s.ctx, issuer, RatingA)
		s.Require().NoError(err)
		s.Equal(RatingA, info.Rating)
	})

	s.Run("trustee may update", func() {
		info, err := s.service.UpdateRating(s.ctx, trustee, RatingAA)
		s.Require().NoError(err)
		s.Equal(RatingAA, info.Rating)
	})

	s.Run("anyone else is rejected", func() {
		_, err := s.service.UpdateRating(s.ctx, holderA, RatingD)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *BondServiceSuite) TestUpdateCollateralValue() {
	info, err := s.service.UpdateCollateralValue(s.ctx, trustee, decimal.NewFromInt(175000))
	s.Require().NoError(err)
	s.True(info.CollateralValue.Equal(decimal.NewFromInt(175000)))

	_, err = s.service.UpdateCollateralValue(s.ctx, issuer, decimal.NewFromInt(1))
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

	_, err = s.service.UpdateCollateralValue(s.ctx, trustee, decimal.NewFromInt(-1))
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *BondServiceSuite) TestQueries() {
	s.Run("holder view multiplies balance by face value", func() {
		holder, err := s.service.Holder(s.ctx, holderB)
		s.Require().NoError(err)
		s.Equal(uint64(400), holder.BondBalance)
		s.True(holder.FaceValueHeld.Equal(decimal.NewFromInt(40000)))
	})

	s.Run("accrued interest is balance times face times rate", func() {
		accrued, err := s.service.AccruedInterest(s.ctx, holderB)
		s.Require().NoError(err)
		s.True(accrued.Equal(decimal.NewFromInt(2000)), "got %s", accrued)
	})

	s.Run("yield echoes the coupon rate", func() {
		yield, err := s.service.BondYield(s.ctx)
		s.Require().NoError(err)
		s.True(yield.CurrentYield.Equal(yield.CouponRate))
		s.True(yield.YieldToMaturity.Equal(yield.CouponRate))
	})

	s.Run("next coupon date", func() {
		next, err := s.service.NextCouponDate(s.ctx)
		s.Require().NoError(err)
		s.Equal(s.start.AddDate(0, 0, 10), next)
	})
}

func (s *BondServiceSuite) TestUninitializedInstance() {
	svc := New(
		lifecycle.NewMemoryAggregateStore[Info](),
		lifecycle.NewMemoryRecordStore[CouponPayment](),
		lifecycle.NewMemoryRecordStore[RedemptionRecord](),
		lifecycle.NewMemoryRecordStore[Transfer](),
		lifecycle.NewMemoryRecordStore[InterestCalculation](),
		s.ledger,
	)

	_, err := svc.Info(s.ctx)
	s.True(dErrors.HasCode(err, dErrors.CodeNotInitialized))

	_, err = svc.PayCoupon(s.ctx, payingAgent, PayCouponParams{PaymentID: "PAY-X"})
	s.True(dErrors.HasCode(err, dErrors.CodeNotInitialized))
}

func (s *BondServiceSuite) freshService(info Info) *Service {
	svc := New(
		lifecycle.NewMemoryAggregateStore[Info](),
		lifecycle.NewMemoryRecordStore[CouponPayment](),
		lifecycle.NewMemoryRecordStore[RedemptionRecord](),
		lifecycle.NewMemoryRecordStore[Transfer](),
		lifecycle.NewMemoryRecordStore[InterestCalculation](),
		s.ledger,
		WithClock(func() time.Time { return s.start }),
	)
	s.Require().NoError(svc.Init(s.ctx, info))
	return svc
}
