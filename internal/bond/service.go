package bond

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"rwa-ledger/internal/audit"
	"rwa-ledger/internal/lifecycle"
	"rwa-ledger/internal/platform/metrics"
	"rwa-ledger/internal/token"
	dErrors "rwa-ledger/pkg/domain-errors"
	"rwa-ledger/pkg/sentinel"
)

// Asset is the instance label used in logs, metrics and audit events.
const Asset = "bond"

// AuditPublisher receives one event per committed transition.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns every bond lifecycle transition and query. Transitions are
// serialized by a mutex: the whole handler is the critical section, so each
// one observes and commits a consistent (records, aggregate, ledger) triple.
type Service struct {
	mu sync.Mutex

	info         lifecycle.AggregateStore[Info]
	payments     lifecycle.RecordStore[CouponPayment]
	redemptions  lifecycle.RecordStore[RedemptionRecord]
	transfers    lifecycle.RecordStore[Transfer]
	calculations lifecycle.RecordStore[InterestCalculation]
	ledger       token.Ledger

	logger  *slog.Logger
	audit   AuditPublisher
	metrics *metrics.Metrics
	clock   func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.audit = publisher }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock injects the logical transaction clock.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// New constructs a Service.
func New(
	info lifecycle.AggregateStore[Info],
	payments lifecycle.RecordStore[CouponPayment],
	redemptions lifecycle.RecordStore[RedemptionRecord],
	transfers lifecycle.RecordStore[Transfer],
	calculations lifecycle.RecordStore[InterestCalculation],
	ledger token.Ledger,
	opts ...Option,
) *Service {
	s := &Service{
		info:         info,
		payments:     payments,
		redemptions:  redemptions,
		transfers:    transfers,
		calculations: calculations,
		ledger:       ledger,
		logger:       slog.New(slog.DiscardHandler),
		clock:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init seeds the aggregate once at instantiation. A second call is a no-op
// so restarts never clobber accumulated totals.
func (s *Service) Init(ctx context.Context, info Info) error {
	if _, err := s.info.Load(ctx); err == nil {
		return nil
	} else if !errors.Is(err, sentinel.ErrNotInitialized) {
		return err
	}
	return s.info.Save(ctx, info)
}

// PayCouponParams carries the caller-supplied fields of a coupon payment.
type PayCouponParams struct {
	PaymentID         string          `json:"payment_id"`
	CouponPeriodStart time.Time       `json:"coupon_period_start"`
	CouponPeriodEnd   time.Time       `json:"coupon_period_end"`
	CouponAmount      decimal.Decimal `json:"coupon_amount"`
	PrincipalAmount   decimal.Decimal `json:"principal_amount"`
	PaymentMethod     PaymentMethod   `json:"payment_method"`
}

// PayCoupon records a coupon/principal payment and rolls the schedule
// forward. Paying agent only.
func (s *Service) PayCoupon(ctx context.Context, caller string, p PayCouponParams) (CouponPayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const action = "pay_coupon"

	info, err := s.loadInfo(ctx)
	if err != nil {
		return CouponPayment{}, s.reject(action, err)
	}
	if caller != info.PayingAgent {
		return CouponPayment{}, s.reject(action,
			dErrors.New(dErrors.CodeUnauthorized, "only paying agent can make coupon payments"))
	}
	if p.PaymentID == "" {
		return CouponPayment{}, s.reject(action,
			dErrors.New(dErrors.CodeValidation, "payment_id is required"))
	}
	if p.CouponAmount.Sign() < 0 || p.PrincipalAmount.Sign() < 0 {
		return CouponPayment{}, s.reject(action,
			dErrors.New(dErrors.CodeValidation, "payment amounts must be non-negative"))
	}

	newOutstanding, err := lifecycle.SubDecimal(info.OutstandingPrincipal, p.PrincipalAmount)
	if err != nil {
		return CouponPayment{}, s.reject(action, err)
	}

	totalPayment := p.CouponAmount.Add(p.PrincipalAmount)
	record := CouponPayment{
		PaymentID:         p.PaymentID,
		PaymentDate:       s.clock(),
		CouponPeriodStart: p.CouponPeriodStart,
		CouponPeriodEnd:   p.CouponPeriodEnd,
		CouponAmount:      p.CouponAmount,
		PrincipalAmount:   p.PrincipalAmount,
		TotalPayment:      totalPayment,
		PaymentStatus:     PaymentPaid,
		PaymentMethod:     p.PaymentMethod,
	}

	info.TotalCouponsPaid = info.TotalCouponsPaid.Add(p.CouponAmount)
	info.TotalPrincipalRepaid = info.TotalPrincipalRepaid.Add(p.PrincipalAmount)
	info.OutstandingPrincipal = newOutstanding
	if offset := info.CouponFrequency.Offset(); offset > 0 {
		info.NextCouponDate = info.NextCouponDate.Add(offset)
	}

	if err := s.payments.Save(ctx, p.PaymentID, record); err != nil {
		return CouponPayment{}, s.reject(action, err)
	}
	if err := s.info.Save(ctx, info); err != nil {
		return CouponPayment{}, s.reject(action, err)
	}

	s.commit(ctx, action, caller, p.PaymentID,
		"total_payment", totalPayment.String(),
		"outstanding_principal", info.OutstandingPrincipal.String(),
	)
	return record, nil
}

// RedeemParams identifies which bonds leave circulation and why.
type RedeemParams struct {
	RedemptionID     string         `json:"redemption_id"`
	Bondholder       string         `json:"bondholder"`
	BondsToRedeem    uint64         `json:"bonds_to_redeem"`
	RedemptionType   RedemptionType `json:"redemption_type"`
	RedemptionReason string         `json:"redemption_reason"`
}

// RedeemBonds burns the bondholder's tokens and reduces outstanding
// principal by units times face value.
func (s *Service) RedeemBonds(ctx context.Context, caller string, p RedeemParams) (RedemptionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const action = "redeem_bonds"

	info, err := s.loadInfo(ctx)
	if err != nil {
		return RedemptionRecord{}, s.reject(action, err)
	}
	if p.RedemptionID == "" || p.Bondholder == "" {
		return RedemptionRecord{}, s.reject(action,
			dErrors.New(dErrors.CodeValidation, "redemption_id and bondholder are required"))
	}

	balance, err := s.ledger.BalanceOf(ctx, p.Bondholder)
	if err != nil {
		return RedemptionRecord{}, s.reject(action, err)
	}
	if balance < p.BondsToRedeem {
		return RedemptionRecord{}, s.reject(action,
			dErrors.New(dErrors.CodeInsufficientFunds, "bondholder balance below redemption amount"))
	}

	redemptionValue := lifecycle.UnitsDecimal(p.BondsToRedeem).Mul(info.FaceValue)
	newOutstanding, err := lifecycle.SubDecimal(info.OutstandingPrincipal, redemptionValue)
	if err != nil {
		return RedemptionRecord{}, s.reject(action, err)
	}

	// All preconditions hold; the burn is the only remaining effect with a
	// business failure mode, so it goes first.
	if err := s.ledger.Burn(ctx, p.Bondholder, p.BondsToRedeem); err != nil {
		return RedemptionRecord{}, s.reject(action, err)
	}

	record := RedemptionRecord{
		RedemptionID:     p.RedemptionID,
		RedemptionDate:   s.clock(),
		Bondholder:       p.Bondholder,
		BondsRedeemed:    p.BondsToRedeem,
		RedemptionValue:  redemptionValue,
		RedemptionType:   p.RedemptionType,
		RedemptionReason: p.RedemptionReason,
	}
	info.OutstandingPrincipal = newOutstanding

	if err := s.redemptions.Save(ctx, p.RedemptionID, record); err != nil {
		return RedemptionRecord{}, s.reject(action, err)
	}
	if err := s.info.Save(ctx, info); err != nil {
		return RedemptionRecord{}, s.reject(action, err)
	}

	s.commit(ctx, action, caller, p.RedemptionID,
		"bonds_redeemed", record.BondsRedeemed,
		"redemption_value", redemptionValue.String(),
	)
	return record, nil
}

// TransferParams captures evidence of an ownership change.
type TransferParams struct {
	TransferID       string          `json:"transfer_id"`
	From             string          `json:"from"`
	To               string          `json:"to"`
	BondsTransferred uint64          `json:"bonds_transferred"`
	TransferPrice    decimal.Decimal `json:"transfer_price"`
	TransferType     TransferType    `json:"transfer_type"`
	TransferReason   string          `json:"transfer_reason"`
}

// RecordTransfer writes a transfer evidence record. The aggregate is not
// affected; token movement happens through the ledger passthrough.
func (s *Service) RecordTransfer(ctx context.Context, caller string, p TransferParams) (Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const action = "record_transfer"

	if _, err := s.loadInfo(ctx); err != nil {
		return Transfer{}, s.reject(action, err)
	}
	if p.TransferID == "" || p.From == "" || p.To == "" {
		return Transfer{}, s.reject(action,
			dErrors.New(dErrors.CodeValidation, "transfer_id, from and to are required"))
	}

	record := Transfer{
		TransferID:       p.TransferID,
		TransferDate:     s.clock(),
		From:             p.From,
		To:               p.To,
		BondsTransferred: p.BondsTransferred,
		TransferPrice:    p.TransferPrice,
		TransferType:     p.TransferType,
		TransferReason:   p.TransferReason,
	}
	if err := s.transfers.Save(ctx, p.TransferID, record); err != nil {
		return Transfer{}, s.reject(action, err)
	}

	s.commit(ctx, action, caller, p.TransferID,
		"bonds_transferred", record.BondsTransferred,
	)
	return record, nil
}

// CalculateInterestParams selects the position and day-count convention.
type CalculateInterestParams struct {
	CalculationID string            `json:"calculation_id"`
	Bondholder    string            `json:"bondholder"`
	BondsHeld     uint64            `json:"bonds_held"`
	DaysHeld      uint32            `json:"days_held"`
	Method        CalculationMethod `json:"calculation_method"`
}

// CalculateInterest computes accrued interest for a position and records the
// result. Compound interest is unsupported and yields a defined zero rather
// than an error.
func (s *Service) CalculateInterest(ctx context.Context, caller string, p CalculateInterestParams) (InterestCalculation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const action = "calculate_interest"

	info, err := s.loadInfo(ctx)
	if err != nil {
		return InterestCalculation{}, s.reject(action, err)
	}
	if p.CalculationID == "" || p.Bondholder == "" {
		return InterestCalculation{}, s.reject(action,
			dErrors.New(dErrors.CodeValidation, "calculation_id and bondholder are required"))
	}

	record := InterestCalculation{
		CalculationID:   p.CalculationID,
		CalculationDate: s.clock(),
		Bondholder:      p.Bondholder,
		BondsHeld:       p.BondsHeld,
		DaysHeld:        p.DaysHeld,
		AccruedInterest: accrue(info, p.BondsHeld, p.DaysHeld, p.Method),
		CouponRate:      info.CouponRate,
		Method:          p.Method,
	}
	if err := s.calculations.Save(ctx, p.CalculationID, record); err != nil {
		return InterestCalculation{}, s.reject(action, err)
	}

	s.commit(ctx, action, caller, p.CalculationID,
		"accrued_interest", record.AccruedInterest.String(),
	)
	return record, nil
}

// accrue implements interest = units * face_value * rate * days/denominator,
// with denominator 365 or 360 per the day-count convention.
func accrue(info Info, units uint64, days uint32, method CalculationMethod) decimal.Decimal {
	var denominator int64
	switch method {
	case MethodSimpleInterest, MethodActual365:
		denominator = 365
	case MethodActual360, MethodThirty360:
		denominator = 360
	default:
		// Compound interest would require a schedule model the contract
		// surface never promised; it degrades to zero.
		return decimal.Zero
	}
	return lifecycle.UnitsDecimal(units).
		Mul(info.FaceValue).
		Mul(info.CouponRate).
		Mul(decimal.NewFromInt(int64(days))).
		Div(decimal.NewFromInt(denominator))
}

// UpdatePaymentStatus overwrites the status and transaction hash of an
// existing payment record. The aggregate is never touched.
func (s *Service) UpdatePaymentStatus(ctx context.Context, caller, paymentID string, status PaymentStatus, transactionHash string) (CouponPayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const action = "update_payment_status"

	if !status.Valid() {
		return CouponPayment{}, s.reject(action,
			dErrors.New(dErrors.CodeValidation, "unknown payment status"))
	}
	record, err := s.payments.Find(ctx, paymentID)
	if err != nil {
		return CouponPayment{}, s.reject(action, s.translate(err))
	}

	record.PaymentStatus = status
	record.TransactionHash = transactionHash
	if err := s.payments.Save(ctx, paymentID, record); err != nil {
		return CouponPayment{}, s.reject(action, err)
	}

	s.commit(ctx, action, caller, paymentID, "status", string(status))
	return record, nil
}

// UpdateRating changes the bond rating. Issuer or trustee only.
func (s *Service) UpdateRating(ctx context.Context, caller string, rating Rating) (Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const action = "update_bond_rating"

	info, err := s.loadInfo(ctx)
	if err != nil {
		return Info{}, s.reject(action, err)
	}
	if caller != info.Issuer && caller != info.Trustee {
		return Info{}, s.reject(action,
			dErrors.New(dErrors.CodeUnauthorized, "only issuer or trustee can update bond rating"))
	}

	info.Rating = rating
	if err := s.info.Save(ctx, info); err != nil {
		return Info{}, s.reject(action, err)
	}

	s.commit(ctx, action, caller, "", "new_rating", string(rating))
	return info, nil
}

// UpdateCollateralValue revalues the collateral. Trustee only.
func (s *Service) UpdateCollateralValue(ctx context.Context, caller string, value decimal.Decimal) (Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const action = "update_collateral_value"

	info, err := s.loadInfo(ctx)
	if err != nil {
		return Info{}, s.reject(action, err)
	}
	if caller != info.Trustee {
		return Info{}, s.reject(action,
			dErrors.New(dErrors.CodeUnauthorized, "only trustee can update collateral value"))
	}
	if value.Sign() < 0 {
		return Info{}, s.reject(action,
			dErrors.New(dErrors.CodeValidation, "collateral value must be non-negative"))
	}

	info.CollateralValue = value
	if err := s.info.Save(ctx, info); err != nil {
		return Info{}, s.reject(action, err)
	}

	s.commit(ctx, action, caller, "", "new_collateral_value", value.String())
	return info, nil
}

// --- queries ---

func (s *Service) Info(ctx context.Context) (Info, error) {
	return s.loadInfo(ctx)
}

func (s *Service) Payment(ctx context.Context, id string) (CouponPayment, error) {
	record, err := s.payments.Find(ctx, id)
	return record, s.translate(err)
}

func (s *Service) ListPayments(ctx context.Context, startAfter string, limit int) ([]lifecycle.Keyed[CouponPayment], error) {
	return s.payments.List(ctx, startAfter, limit)
}

func (s *Service) Redemption(ctx context.Context, id string) (RedemptionRecord, error) {
	record, err := s.redemptions.Find(ctx, id)
	return record, s.translate(err)
}

func (s *Service) ListRedemptions(ctx context.Context, startAfter string, limit int) ([]lifecycle.Keyed[RedemptionRecord], error) {
	return s.redemptions.List(ctx, startAfter, limit)
}

func (s *Service) Transfer(ctx context.Context, id string) (Transfer, error) {
	record, err := s.transfers.Find(ctx, id)
	return record, s.translate(err)
}

func (s *Service) ListTransfers(ctx context.Context, startAfter string, limit int) ([]lifecycle.Keyed[Transfer], error) {
	return s.transfers.List(ctx, startAfter, limit)
}

func (s *Service) Calculation(ctx context.Context, id string) (InterestCalculation, error) {
	record, err := s.calculations.Find(ctx, id)
	return record, s.translate(err)
}

func (s *Service) ListCalculations(ctx context.Context, startAfter string, limit int) ([]lifecycle.Keyed[InterestCalculation], error) {
	return s.calculations.List(ctx, startAfter, limit)
}

// Holder reports a bondholder's balance and the face value it represents.
func (s *Service) Holder(ctx context.Context, address string) (HolderInfo, error) {
	info, err := s.loadInfo(ctx)
	if err != nil {
		return HolderInfo{}, err
	}
	balance, err := s.ledger.BalanceOf(ctx, address)
	if err != nil {
		return HolderInfo{}, err
	}
	return HolderInfo{
		Address:       address,
		BondBalance:   balance,
		FaceValueHeld: lifecycle.UnitsDecimal(balance).Mul(info.FaceValue),
	}, nil
}

func (s *Service) OutstandingPrincipal(ctx context.Context) (decimal.Decimal, error) {
	info, err := s.loadInfo(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return info.OutstandingPrincipal, nil
}

// AccruedInterest is the simplified holder projection: balance times face
// value times coupon rate, straight off the current aggregate.
func (s *Service) AccruedInterest(ctx context.Context, holder string) (decimal.Decimal, error) {
	info, err := s.loadInfo(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}
	balance, err := s.ledger.BalanceOf(ctx, holder)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return lifecycle.UnitsDecimal(balance).Mul(info.FaceValue).Mul(info.CouponRate), nil
}

func (s *Service) NextCouponDate(ctx context.Context) (time.Time, error) {
	info, err := s.loadInfo(ctx)
	if err != nil {
		return time.Time{}, err
	}
	return info.NextCouponDate, nil
}

func (s *Service) BondYield(ctx context.Context) (Yield, error) {
	info, err := s.loadInfo(ctx)
	if err != nil {
		return Yield{}, err
	}
	return Yield{
		CouponRate:      info.CouponRate,
		CurrentYield:    info.CouponRate,
		YieldToMaturity: info.CouponRate,
	}, nil
}

// --- internals ---

func (s *Service) loadInfo(ctx context.Context) (Info, error) {
	info, err := s.info.Load(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotInitialized) {
			return Info{}, dErrors.New(dErrors.CodeNotInitialized, "bond instance is not initialized")
		}
		return Info{}, err
	}
	return info, nil
}

func (s *Service) translate(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "record not found")
	}
	return err
}

func (s *Service) reject(action string, err error) error {
	s.metrics.RecordTransition(Asset, action, string(dErrors.CodeOf(err)))
	return err
}

func (s *Service) commit(ctx context.Context, action, actor, recordID string, details ...any) {
	s.metrics.RecordTransition(Asset, action, "ok")
	attrs := append([]any{"actor", actor, "record_id", recordID}, details...)
	s.logger.InfoContext(ctx, action, attrs...)
	if s.audit != nil {
		if err := s.audit.Emit(ctx, audit.NewEvent(Asset, action, actor, recordID, details...)); err != nil {
			s.logger.WarnContext(ctx, "audit emit failed", "action", action, "error", err)
		}
	}
}
