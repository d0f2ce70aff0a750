package oil

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
const Asset = "oil"

// AuditPublisher receives one event per committed transition.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns the oil-reserve lifecycle. A mutex serializes transitions so
// each handler observes and commits a consistent (records, aggregate,
// ledger) triple.
type Service struct {
	mu sync.Mutex

	info        lifecycle.AggregateStore[ReserveInfo]
	extractions lifecycle.RecordStore[ExtractionRecord]
	audits      lifecycle.RecordStore[ReserveAudit]
	trades      lifecycle.RecordStore[TradingRecord]
	ledger      token.Ledger

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

func New(
	info lifecycle.AggregateStore[ReserveInfo],
	extractions lifecycle.RecordStore[ExtractionRecord],
	audits lifecycle.RecordStore[ReserveAudit],
	trades lifecycle.RecordStore[TradingRecord],
	ledger token.Ledger,
	opts ...Option,
) *Service {
	s := &Service{
		info:        info,
		extractions: extractions,
		audits:      audits,
		trades:      trades,
		ledger:      ledger,
		logger:      slog.New(slog.DiscardHandler),
		clock:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init seeds the aggregate once at instantiation; later calls are no-ops.
func (s *Service) Init(ctx context.Context, info ReserveInfo) error {
	if _, err := s.info.Load(ctx); err == nil {
		return nil
	} else if !errors.Is(err, sentinel.ErrNotInitialized) {
		return err
	}
	return s.info.Save(ctx, info)
}

// ExtractionParams carries the caller-supplied fields of an extraction.
type ExtractionParams struct {
	ExtractionID             string           `json:"extraction_id"`
	BarrelsExtracted         uint64           `json:"barrels_extracted"`
	ExtractionMethod         ExtractionMethod `json:"extraction_method"`
	EnvironmentalImpactScore decimal.Decimal  `json:"environmental_impact_score"`
	CarbonFootprintPerBarrel decimal.Decimal  `json:"carbon_footprint_per_barrel"`
	ExtractionCostPerBarrel  decimal.Decimal  `json:"extraction_cost_per_barrel"`
	QualityCertificateURL    string           `json:"quality_certificate_url"`
}

// RecordExtraction moves barrels from available to extracted and mints
// barrels times barrels-per-token tokens to the extraction company, floored
// to whole units. Extraction company only.
func (s *Service) RecordExtraction(ctx context.Context, caller string, p ExtractionParams) (ExtractionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const action = "record_extraction"

	info, err := s.loadInfo(ctx)
	if err != nil {
		return ExtractionRecord{}, s.reject(action, err)
	}
	if caller != info.ExtractionCompany {
		return ExtractionRecord{}, s.reject(action,
			dErrors.New(dErrors.CodeUnauthorized, "only extraction company can record extractions"))
	}
	if p.ExtractionID == "" {
		return ExtractionRecord{}, s.reject(action,
			dErrors.New(dErrors.CodeValidation, "extraction_id is required"))
	}
	if p.BarrelsExtracted > info.AvailableBarrels {
		return ExtractionRecord{}, s.reject(action,
			dErrors.New(dErrors.CodeCapacityExceeded, "extraction exceeds available reserves"))
	}

	tokensToMint, err := lifecycle.TruncateUnits(
		lifecycle.UnitsDecimal(p.BarrelsExtracted).Mul(info.BarrelsPerToken))
	if err != nil {
		return ExtractionRecord{}, s.reject(action, err)
	}
	if err := lifecycle.Move(&info.AvailableBarrels, &info.ExtractedBarrels, p.BarrelsExtracted); err != nil {
		return ExtractionRecord{}, s.reject(action, err)
	}

	if err := s.ledger.Mint(ctx, caller, caller, tokensToMint); err != nil {
		return ExtractionRecord{}, s.reject(action, err)
	}

	record := ExtractionRecord{
		ExtractionID:             p.ExtractionID,
		ExtractionDate:           s.clock(),
		BarrelsExtracted:         p.BarrelsExtracted,
		ExtractionMethod:         p.ExtractionMethod,
		ExtractionCompany:        caller,
		EnvironmentalImpactScore: p.EnvironmentalImpactScore,
		CarbonFootprintPerBarrel: p.CarbonFootprintPerBarrel,
		ExtractionCostPerBarrel:  p.ExtractionCostPerBarrel,
		QualityCertificateURL:    p.QualityCertificateURL,
		TokensMinted:             tokensToMint,
	}

	if err := s.extractions.Save(ctx, p.ExtractionID, record); err != nil {
		return ExtractionRecord{}, s.reject(action, err)
	}
	if err := s.info.Save(ctx, info); err != nil {
		return ExtractionRecord{}, s.reject(action, err)
	}

	s.commit(ctx, action, caller, p.ExtractionID,
		"barrels_extracted", record.BarrelsExtracted,
		"tokens_minted", record.TokensMinted,
		"available_barrels", info.AvailableBarrels,
	)
	return record, nil
}

// AuditParams carries the caller-supplied fields of a reserve audit.
type AuditParams struct {
	AuditID                    string          `json:"audit_id"`
	AuditedReserves            uint64          `json:"audited_reserves"`
	AuditReportURL             string          `json:"audit_report_url"`
	ReserveQualityGrade        string          `json:"reserve_quality_grade"`
	ExtractionFeasibilityScore decimal.Decimal `json:"extraction_feasibility_score"`
}

// ConductReserveAudit writes a pending audit record. Reserve auditor only;
// the aggregate is never touched.
func (s *Service) ConductReserveAudit(ctx context.Context, caller string, p AuditParams) (ReserveAudit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const action = "conduct_reserve_audit"

	info, err := s.loadInfo(ctx)
	if err != nil {
		return ReserveAudit{}, s.reject(action, err)
	}
	if caller != info.ReserveAuditor {
		return ReserveAudit{}, s.reject(action,
			dErrors.New(dErrors.CodeUnauthorized, "only reserve auditor can conduct audits"))
	}
	if p.AuditID == "" {
		return ReserveAudit{}, s.reject(action,
			dErrors.New(dErrors.CodeValidation, "audit_id is required"))
	}

	record := ReserveAudit{
		AuditID:                    p.AuditID,
		AuditDate:                  s.clock(),
		Auditor:                    caller,
		AuditedReserves:            p.AuditedReserves,
		AuditReportURL:             p.AuditReportURL,
		AuditStatus:                AuditPending,
		ReserveQualityGrade:        p.ReserveQualityGrade,
		ExtractionFeasibilityScore: p.ExtractionFeasibilityScore,
	}
	if err := s.audits.Save(ctx, p.AuditID, record); err != nil {
		return ReserveAudit{}, s.reject(action, err)
	}

	s.commit(ctx, action, caller, p.AuditID,
		"audited_reserves", record.AuditedReserves,
	)
	return record, nil
}

// UpdateAuditStatus overwrites the status of an existing audit record.
// Reserve auditor only.
func (s *Service) UpdateAuditStatus(ctx context.Context, caller, auditID string, status AuditStatus) (ReserveAudit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const action = "update_audit_status"

	info, err := s.loadInfo(ctx)
	if err != nil {
		return ReserveAudit{}, s.reject(action, err)
	}
	if caller != info.ReserveAuditor {
		return ReserveAudit{}, s.reject(action,
			dErrors.New(dErrors.CodeUnauthorized, "only reserve auditor can update audit status"))
	}
	if !status.Valid() {
		return ReserveAudit{}, s.reject(action,
			dErrors.New(dErrors.CodeValidation, "unknown audit status"))
	}

	record, err := s.audits.Find(ctx, auditID)
	if err != nil {
		return ReserveAudit{}, s.reject(action, s.translate(err))
	}

	record.AuditStatus = status
	if err := s.audits.Save(ctx, auditID, record); err != nil {
		return ReserveAudit{}, s.reject(action, err)
	}

	s.commit(ctx, action, caller, auditID, "status", string(status))
	return record, nil
}

// TradeParams carries the caller-supplied fields of a trade.
type TradeParams struct {
	TradeID        string          `json:"trade_id"`
	Seller         string          `json:"seller"`
	Buyer          string          `json:"buyer"`
	TokensTraded   uint64          `json:"tokens_traded"`
	PricePerToken  decimal.Decimal `json:"price_per_token"`
	TradeType      TradeType       `json:"trade_type"`
	SettlementDate time.Time       `json:"settlement_date"`
}

// RecordTrade writes a pending trade record with total value tokens times
// price. Evidence only; token movement happens through the ledger surface.
func (s *Service) RecordTrade(ctx context.Context, caller string, p TradeParams) (TradingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const action = "record_trade"

	if _, err := s.loadInfo(ctx); err != nil {
		return TradingRecord{}, s.reject(action, err)
	}
	if p.TradeID == "" || p.Seller == "" || p.Buyer == "" {
		return TradingRecord{}, s.reject(action,
			dErrors.New(dErrors.CodeValidation, "trade_id, seller and buyer are required"))
	}

	record := TradingRecord{
		TradeID:        p.TradeID,
		TradeDate:      s.clock(),
		Seller:         p.Seller,
		Buyer:          p.Buyer,
		TokensTraded:   p.TokensTraded,
		PricePerToken:  p.PricePerToken,
		TotalValue:     lifecycle.UnitsDecimal(p.TokensTraded).Mul(p.PricePerToken),
		TradeType:      p.TradeType,
		SettlementDate: p.SettlementDate,
		TradeStatus:    TradePending,
	}
	if err := s.trades.Save(ctx, p.TradeID, record); err != nil {
		return TradingRecord{}, s.reject(action, err)
	}

	s.commit(ctx, action, caller, p.TradeID,
		"tokens_traded", record.TokensTraded,
		"total_value", record.TotalValue.String(),
	)
	return record, nil
}

// UpdateTradeStatus overwrites the status of an existing trade record.
func (s *Service) UpdateTradeStatus(ctx context.Context, caller, tradeID string, status TradeStatus) (TradingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const action = "update_trade_status"

	if !status.Valid() {
		return TradingRecord{}, s.reject(action,
			dErrors.New(dErrors.CodeValidation, "unknown trade status"))
	}
	record, err := s.trades.Find(ctx, tradeID)
	if err != nil {
		return TradingRecord{}, s.reject(action, s.translate(err))
	}

	record.TradeStatus = status
	if err := s.trades.Save(ctx, tradeID, record); err != nil {
		return TradingRecord{}, s.reject(action, err)
	}

	s.commit(ctx, action, caller, tradeID, "status", string(status))
	return record, nil
}

// --- queries ---

func (s *Service) Info(ctx context.Context) (ReserveInfo, error) {
	return s.loadInfo(ctx)
}

func (s *Service) Extraction(ctx context.Context, id string) (ExtractionRecord, error) {
	record, err := s.extractions.Find(ctx, id)
	return record, s.translate(err)
}

func (s *Service) ListExtractions(ctx context.Context, startAfter string, limit int) ([]lifecycle.Keyed[ExtractionRecord], error) {
	return s.extractions.List(ctx, startAfter, limit)
}

func (s *Service) Audit(ctx context.Context, id string) (ReserveAudit, error) {
	record, err := s.audits.Find(ctx, id)
	return record, s.translate(err)
}

func (s *Service) ListAudits(ctx context.Context, startAfter string, limit int) ([]lifecycle.Keyed[ReserveAudit], error) {
	return s.audits.List(ctx, startAfter, limit)
}

func (s *Service) Trade(ctx context.Context, id string) (TradingRecord, error) {
	record, err := s.trades.Find(ctx, id)
	return record, s.translate(err)
}

func (s *Service) ListTrades(ctx context.Context, startAfter string, limit int) ([]lifecycle.Keyed[TradingRecord], error) {
	return s.trades.List(ctx, startAfter, limit)
}

func (s *Service) AvailableBarrels(ctx context.Context) (uint64, error) {
	info, err := s.loadInfo(ctx)
	if err != nil {
		return 0, err
	}
	return info.AvailableBarrels, nil
}

func (s *Service) ExtractedBarrels(ctx context.Context) (uint64, error) {
	info, err := s.loadInfo(ctx)
	if err != nil {
		return 0, err
	}
	return info.ExtractedBarrels, nil
}

// ReserveQuality projects the quality view off the aggregate alone.
func (s *Service) ReserveQuality(ctx context.Context) (QualityMetrics, error) {
	info, err := s.loadInfo(ctx)
	if err != nil {
		return QualityMetrics{}, err
	}
	return QualityMetrics{
		APIGravity:                 info.APIGravity,
		SulfurContent:              info.SulfurContent,
		OilType:                    info.OilType,
		ExtractionFeasibilityScore: decimal.Zero,
	}, nil
}

// --- internals ---

func (s *Service) loadInfo(ctx context.Context) (ReserveInfo, error) {
	info, err := s.info.Load(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotInitialized) {
			return ReserveInfo{}, dErrors.New(dErrors.CodeNotInitialized, "oil reserve is not initialized")
		}
		return ReserveInfo{}, err
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
