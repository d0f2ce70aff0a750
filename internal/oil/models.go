// Package oil layers extraction, audit and trading lifecycle records over a
// fungible oil-reserve ledger. Extraction consumes reserve capacity and
// mints tokens; audits and trades are evidence with multi-step statuses.
package oil

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReserveInfo is the singleton aggregate for one deployed reserve. Capacity
// fields satisfy total = available + extracted at all times.
type ReserveInfo struct {
	ReserveID                  string          `json:"reserve_id"`
	ReserveName                string          `json:"reserve_name"`
	Location                   string          `json:"location"`
	FieldName                  string          `json:"field_name"`
	OilType                    OilType         `json:"oil_type"`
	APIGravity                 decimal.Decimal `json:"api_gravity"`
	SulfurContent              decimal.Decimal `json:"sulfur_content"`
	TotalReservesBarrels       uint64          `json:"total_reserves_barrels"`
	ExtractedBarrels           uint64          `json:"extracted_barrels"`
	AvailableBarrels           uint64          `json:"available_barrels"`
	BarrelsPerToken            decimal.Decimal `json:"barrels_per_token"`
	ExtractionCompany          string          `json:"extraction_company"`
	ReserveAuditor             string          `json:"reserve_auditor"`
	GovernmentAuthority        string          `json:"government_authority"`
	ExtractionStartDate        time.Time       `json:"extraction_start_date"`
	EstimatedExtractionEndDate time.Time       `json:"estimated_extraction_end_date"`
}

type OilType string

const (
	OilLightSweet OilType = "light_sweet"
	OilLightSour  OilType = "light_sour"
	OilHeavySweet OilType = "heavy_sweet"
	OilHeavySour  OilType = "heavy_sour"
	OilExtraHeavy OilType = "extra_heavy"
	OilCondensate OilType = "condensate"
)

// ExtractionRecord documents barrels leaving the reserve and the tokens
// minted against them.
type ExtractionRecord struct {
	ExtractionID             string           `json:"extraction_id"`
	ExtractionDate           time.Time        `json:"extraction_date"`
	BarrelsExtracted         uint64           `json:"barrels_extracted"`
	ExtractionMethod         ExtractionMethod `json:"extraction_method"`
	ExtractionCompany        string           `json:"extraction_company"`
	EnvironmentalImpactScore decimal.Decimal  `json:"environmental_impact_score"`
	CarbonFootprintPerBarrel decimal.Decimal  `json:"carbon_footprint_per_barrel"`
	ExtractionCostPerBarrel  decimal.Decimal  `json:"extraction_cost_per_barrel"`
	QualityCertificateURL    string           `json:"quality_certificate_url"`
	TokensMinted             uint64           `json:"tokens_minted"`
}

type ExtractionMethod string

const (
	MethodConventionalDrilling ExtractionMethod = "conventional_drilling"
	MethodHydraulicFracturing  ExtractionMethod = "hydraulic_fracturing"
	MethodSteamInjection       ExtractionMethod = "steam_injection"
	MethodHorizontalDrilling   ExtractionMethod = "horizontal_drilling"
	MethodOffshoreDrilling     ExtractionMethod = "offshore_drilling"
	MethodEnhancedOilRecovery  ExtractionMethod = "enhanced_oil_recovery"
)

// ReserveAudit documents one independent audit of the claimed reserves.
type ReserveAudit struct {
	AuditID                    string          `json:"audit_id"`
	AuditDate                  time.Time       `json:"audit_date"`
	Auditor                    string          `json:"auditor"`
	AuditedReserves            uint64          `json:"audited_reserves"`
	AuditReportURL             string          `json:"audit_report_url"`
	AuditStatus                AuditStatus     `json:"audit_status"`
	ReserveQualityGrade        string          `json:"reserve_quality_grade"`
	ExtractionFeasibilityScore decimal.Decimal `json:"extraction_feasibility_score"`
}

type AuditStatus string

const (
	AuditPending        AuditStatus = "pending"
	AuditApproved       AuditStatus = "approved"
	AuditRejected       AuditStatus = "rejected"
	AuditRequiresReview AuditStatus = "requires_review"
)

// Valid reports whether the status is one of the known audit states.
func (a AuditStatus) Valid() bool {
	switch a {
	case AuditPending, AuditApproved, AuditRejected, AuditRequiresReview:
		return true
	}
	return false
}

// TradingRecord documents one token trade between two parties. Settlement
// happens off the ledger; the status tracks it.
type TradingRecord struct {
	TradeID        string          `json:"trade_id"`
	TradeDate      time.Time       `json:"trade_date"`
	Seller         string          `json:"seller"`
	Buyer          string          `json:"buyer"`
	TokensTraded   uint64          `json:"tokens_traded"`
	PricePerToken  decimal.Decimal `json:"price_per_token"`
	TotalValue     decimal.Decimal `json:"total_value"`
	TradeType      TradeType       `json:"trade_type"`
	SettlementDate time.Time       `json:"settlement_date"`
	TradeStatus    TradeStatus     `json:"trade_status"`
}

type TradeType string

const (
	TradeSpot    TradeType = "spot"
	TradeForward TradeType = "forward"
	TradeFutures TradeType = "futures"
	TradeSwap    TradeType = "swap"
)

type TradeStatus string

const (
	TradePending   TradeStatus = "pending"
	TradeExecuted  TradeStatus = "executed"
	TradeSettled   TradeStatus = "settled"
	TradeCancelled TradeStatus = "cancelled"
)

// Valid reports whether the status is one of the known trade states.
func (t TradeStatus) Valid() bool {
	switch t {
	case TradePending, TradeExecuted, TradeSettled, TradeCancelled:
		return true
	}
	return false
}

// QualityMetrics is the derived read-only quality view. The feasibility
// score reads as zero until a richer audit projection replaces it; the
// simplified output is preserved on purpose.
type QualityMetrics struct {
	APIGravity                 decimal.Decimal `json:"api_gravity"`
	SulfurContent              decimal.Decimal `json:"sulfur_content"`
	OilType                    OilType         `json:"oil_type"`
	ExtractionFeasibilityScore decimal.Decimal `json:"extraction_feasibility_score"`
}
