package carbon

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"rwa-ledger/internal/audit"
	"rwa-ledger/internal/lifecycle"
	"rwa-ledger/internal/platform/metrics"
	"rwa-ledger/internal/token"
	dErrors "rwa-ledger/pkg/domain-errors"
	"rwa-ledger/pkg/sentinel"
)

// Asset is the instance label used in logs, metrics and audit events.
const Asset = "carbon"

// AuditPublisher receives one event per committed transition.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns the carbon-credit lifecycle. A mutex serializes transitions
// so each handler observes and commits a consistent (records, aggregate,
// ledger) triple.
type Service struct {
	mu sync.Mutex

	info          lifecycle.AggregateStore[ProjectInfo]
	verifications lifecycle.RecordStore[VerificationRecord]
	retirements   lifecycle.RecordStore[RetirementRecord]
	ledger        token.Ledger

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
	info lifecycle.AggregateStore[ProjectInfo],
	verifications lifecycle.RecordStore[VerificationRecord],
	retirements lifecycle.RecordStore[RetirementRecord],
	ledger token.Ledger,
	opts ...Option,
) *Service {
	s := &Service{
		info:          info,
		verifications: verifications,
		retirements:   retirements,
		ledger:        ledger,
		logger:        slog.New(slog.DiscardHandler),
		clock:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init seeds the aggregate once at instantiation; later calls are no-ops.
func (s *Service) Init(ctx context.Context, info ProjectInfo) error {
	if _, err := s.info.Load(ctx); err == nil {
		return nil
	} else if !errors.Is(err, sentinel.ErrNotInitialized) {
		return err
	}
	return s.info.Save(ctx, info)
}

// VerifyParams carries the caller-supplied fields of a verification.
type VerifyParams struct {
	VerificationID        string `json:"verification_id"`
	CreditsToVerify       uint64 `json:"credits_to_verify"`
	VerificationReportURL string `json:"verification_report_url"`
}

// VerifyCredits brings a verified batch into circulation: issued and
// available both grow by the batch size. Verification body only.
func (s *Service) VerifyCredits(ctx context.Context, caller string, p VerifyParams) (VerificationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const action = "verify_credits"

	info, err := s.loadInfo(ctx)
	if err != nil {
		return VerificationRecord{}, s.reject(action, err)
	}
	if caller != info.VerificationBody {
		return VerificationRecord{}, s.reject(action,
			dErrors.New(dErrors.CodeUnauthorized, "only verification body can verify credits"))
	}
	if p.VerificationID == "" {
		return VerificationRecord{}, s.reject(action,
			dErrors.New(dErrors.CodeValidation, "verification_id is required"))
	}

	if err := lifecycle.Issue(&info.TotalCreditsIssued, &info.CreditsAvailable, p.CreditsToVerify); err != nil {
		return VerificationRecord{}, s.reject(action, err)
	}

	record := VerificationRecord{
		VerificationID:        p.VerificationID,
		VerificationDate:      s.clock(),
		CreditsVerified:       p.CreditsToVerify,
		VerificationBody:      caller,
		VerificationReportURL: p.VerificationReportURL,
		Status:                VerificationVerified,
	}

	if err := s.verifications.Save(ctx, p.VerificationID, record); err != nil {
		return VerificationRecord{}, s.reject(action, err)
	}
	if err := s.info.Save(ctx, info); err != nil {
		return VerificationRecord{}, s.reject(action, err)
	}

	s.commit(ctx, action, caller, p.VerificationID,
		"credits_verified", record.CreditsVerified,
		"credits_available", info.CreditsAvailable,
	)
	return record, nil
}

// RetireParams identifies which credits leave circulation and why.
type RetireParams struct {
	RetirementID             string `json:"retirement_id"`
	CreditsToRetire          uint64 `json:"credits_to_retire"`
	RetirementPurpose        string `json:"retirement_purpose"`
	RetirementCertificateURL string `json:"retirement_certificate_url"`
}

// RetireCredits permanently removes credits: the caller's tokens are burned
// and available capacity moves to retired. Any holder may retire their own
// credits.
func (s *Service) RetireCredits(ctx context.Context, caller string, p RetireParams) (RetirementRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const action = "retire_credits"

	info, err := s.loadInfo(ctx)
	if err != nil {
		return RetirementRecord{}, s.reject(action, err)
	}
	if p.RetirementID == "" {
		return RetirementRecord{}, s.reject(action,
			dErrors.New(dErrors.CodeValidation, "retirement_id is required"))
	}

	balance, err := s.ledger.BalanceOf(ctx, caller)
	if err != nil {
		return RetirementRecord{}, s.reject(action, err)
	}
	if balance < p.CreditsToRetire {
		return RetirementRecord{}, s.reject(action,
			dErrors.New(dErrors.CodeInsufficientFunds, "holder balance below retirement amount"))
	}

	if err := lifecycle.Move(&info.CreditsAvailable, &info.CreditsRetired, p.CreditsToRetire); err != nil {
		return RetirementRecord{}, s.reject(action, err)
	}

	if err := s.ledger.Burn(ctx, caller, p.CreditsToRetire); err != nil {
		return RetirementRecord{}, s.reject(action, err)
	}

	record := RetirementRecord{
		RetirementID:             p.RetirementID,
		RetirementDate:           s.clock(),
		CreditsRetired:           p.CreditsToRetire,
		RetirementPurpose:        p.RetirementPurpose,
		RetirementEntity:         caller,
		RetirementCertificateURL: p.RetirementCertificateURL,
	}

	if err := s.retirements.Save(ctx, p.RetirementID, record); err != nil {
		return RetirementRecord{}, s.reject(action, err)
	}
	if err := s.info.Save(ctx, info); err != nil {
		return RetirementRecord{}, s.reject(action, err)
	}

	s.commit(ctx, action, caller, p.RetirementID,
		"credits_retired", record.CreditsRetired,
		"credits_available", info.CreditsAvailable,
	)
	return record, nil
}

// UpdateVerificationStatus overwrites the status of an existing verification
// record. Verification body only; the aggregate is never touched.
func (s *Service) UpdateVerificationStatus(ctx context.Context, caller, verificationID string, status VerificationStatus) (VerificationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const action = "update_verification_status"

	info, err := s.loadInfo(ctx)
	if err != nil {
		return VerificationRecord{}, s.reject(action, err)
	}
	if caller != info.VerificationBody {
		return VerificationRecord{}, s.reject(action,
			dErrors.New(dErrors.CodeUnauthorized, "only verification body can update status"))
	}
	if !status.Valid() {
		return VerificationRecord{}, s.reject(action,
			dErrors.New(dErrors.CodeValidation, "unknown verification status"))
	}

	record, err := s.verifications.Find(ctx, verificationID)
	if err != nil {
		return VerificationRecord{}, s.reject(action, s.translate(err))
	}

	record.Status = status
	if err := s.verifications.Save(ctx, verificationID, record); err != nil {
		return VerificationRecord{}, s.reject(action, err)
	}

	s.commit(ctx, action, caller, verificationID, "status", string(status))
	return record, nil
}

// --- queries ---

func (s *Service) Info(ctx context.Context) (ProjectInfo, error) {
	return s.loadInfo(ctx)
}

func (s *Service) Verification(ctx context.Context, id string) (VerificationRecord, error) {
	record, err := s.verifications.Find(ctx, id)
	return record, s.translate(err)
}

func (s *Service) ListVerifications(ctx context.Context, startAfter string, limit int) ([]lifecycle.Keyed[VerificationRecord], error) {
	return s.verifications.List(ctx, startAfter, limit)
}

func (s *Service) Retirement(ctx context.Context, id string) (RetirementRecord, error) {
	record, err := s.retirements.Find(ctx, id)
	return record, s.translate(err)
}

func (s *Service) ListRetirements(ctx context.Context, startAfter string, limit int) ([]lifecycle.Keyed[RetirementRecord], error) {
	return s.retirements.List(ctx, startAfter, limit)
}

func (s *Service) AvailableCredits(ctx context.Context) (uint64, error) {
	info, err := s.loadInfo(ctx)
	if err != nil {
		return 0, err
	}
	return info.CreditsAvailable, nil
}

func (s *Service) RetiredCredits(ctx context.Context) (uint64, error) {
	info, err := s.loadInfo(ctx)
	if err != nil {
		return 0, err
	}
	return info.CreditsRetired, nil
}

// --- internals ---

func (s *Service) loadInfo(ctx context.Context) (ProjectInfo, error) {
	info, err := s.info.Load(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotInitialized) {
			return ProjectInfo{}, dErrors.New(dErrors.CodeNotInitialized, "carbon project is not initialized")
		}
		return ProjectInfo{}, err
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
