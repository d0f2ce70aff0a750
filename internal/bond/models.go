// Package bond layers bond lifecycle records and a mutable summary
// aggregate over a fungible bond-token ledger.
package bond

import (
	"time"

	"github.com/shopspring/decimal"
)

// Info is the singleton aggregate for one deployed bond instance: identity,
// roles, capacity totals and the coupon schedule. Capacity fields are the
// derived current state; the record collections are the evidence.
type Info struct {
	BondID           string          `json:"bond_id"`
	BondName         string          `json:"bond_name"`
	Issuer           string          `json:"issuer"`
	BondType         Type            `json:"bond_type"`
	FaceValue        decimal.Decimal `json:"face_value"`
	TotalIssueAmount uint64          `json:"total_issue_amount"`
	CouponRate       decimal.Decimal `json:"coupon_rate"`
	CouponFrequency  Frequency       `json:"coupon_frequency"`
	MaturityDate     time.Time       `json:"maturity_date"`
	IssueDate        time.Time       `json:"issue_date"`
	Currency         string          `json:"currency"`
	Rating           Rating          `json:"bond_rating"`
	CollateralType   CollateralType  `json:"collateral_type"`
	CollateralValue  decimal.Decimal `json:"collateral_value"`
	Trustee          string          `json:"trustee"`
	PayingAgent      string          `json:"paying_agent"`

	TotalCouponsPaid     decimal.Decimal `json:"total_coupons_paid"`
	TotalPrincipalRepaid decimal.Decimal `json:"total_principal_repaid"`
	OutstandingPrincipal decimal.Decimal `json:"outstanding_principal"`
	NextCouponDate       time.Time       `json:"next_coupon_date"`
	AccruedInterest      decimal.Decimal `json:"accrued_interest"`
}

type Type string

const (
	TypeCorporate   Type = "corporate"
	TypeGovernment  Type = "government"
	TypeMunicipal   Type = "municipal"
	TypeAssetBacked Type = "asset_backed"
	TypeConvertible Type = "convertible"
	TypeZeroCoupon  Type = "zero_coupon"
	TypeFloating    Type = "floating_rate"
	TypePerpetual   Type = "perpetual"
)

type Frequency string

const (
	FrequencyMonthly      Frequency = "monthly"
	FrequencyQuarterly    Frequency = "quarterly"
	FrequencySemiAnnually Frequency = "semi_annually"
	FrequencyAnnually     Frequency = "annually"
	FrequencyAtMaturity   Frequency = "at_maturity"
)

// Offset returns the fixed calendar offset the coupon schedule advances by.
// This is a fixed-offset approximation, not calendar-aware date arithmetic;
// month drift is a known simplification kept for compatibility.
func (f Frequency) Offset() time.Duration {
	switch f {
	case FrequencyMonthly:
		return 30 * 24 * time.Hour
	case FrequencyQuarterly:
		return 90 * 24 * time.Hour
	case FrequencySemiAnnually:
		return 180 * 24 * time.Hour
	case FrequencyAnnually:
		return 365 * 24 * time.Hour
	default: // at_maturity: the schedule does not advance
		return 0
	}
}

type Rating string

const (
	RatingAAA     Rating = "AAA"
	RatingAA      Rating = "AA"
	RatingA       Rating = "A"
	RatingBBB     Rating = "BBB"
	RatingBB      Rating = "BB"
	RatingB       Rating = "B"
	RatingCCC     Rating = "CCC"
	RatingCC      Rating = "CC"
	RatingC       Rating = "C"
	RatingD       Rating = "D"
	RatingUnrated Rating = "unrated"
)

type CollateralType string

const (
	CollateralRealEstate         CollateralType = "real_estate"
	CollateralEquipment          CollateralType = "equipment"
	CollateralInventory          CollateralType = "inventory"
	CollateralAccountsReceivable CollateralType = "accounts_receivable"
	CollateralCash               CollateralType = "cash"
	CollateralSecurities         CollateralType = "securities"
	CollateralCommodities        CollateralType = "commodities"
	CollateralIP                 CollateralType = "intellectual_property"
	CollateralNone               CollateralType = "none"
)

// CouponPayment documents one coupon/principal payment. Immutable once
// written except for status and transaction hash, which UpdatePaymentStatus
// may overwrite.
type CouponPayment struct {
	PaymentID         string          `json:"payment_id"`
	PaymentDate       time.Time       `json:"payment_date"`
	CouponPeriodStart time.Time       `json:"coupon_period_start"`
	CouponPeriodEnd   time.Time       `json:"coupon_period_end"`
	CouponAmount      decimal.Decimal `json:"coupon_amount"`
	PrincipalAmount   decimal.Decimal `json:"principal_amount"`
	TotalPayment      decimal.Decimal `json:"total_payment"`
	PaymentStatus     PaymentStatus   `json:"payment_status"`
	PaymentMethod     PaymentMethod   `json:"payment_method"`
	TransactionHash   string          `json:"transaction_hash,omitempty"`
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentFailed    PaymentStatus = "failed"
	PaymentCancelled PaymentStatus = "cancelled"
)

// Valid reports whether the status is one of the known payment states.
func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentCancelled:
		return true
	}
	return false
}

type PaymentMethod string

const (
	MethodBankTransfer   PaymentMethod = "bank_transfer"
	MethodCryptoTransfer PaymentMethod = "crypto_transfer"
	MethodTokenTransfer  PaymentMethod = "token_transfer"
	MethodEscrow         PaymentMethod = "escrow"
)

// RedemptionRecord documents bonds taken out of circulation.
type RedemptionRecord struct {
	RedemptionID     string          `json:"redemption_id"`
	RedemptionDate   time.Time       `json:"redemption_date"`
	Bondholder       string          `json:"bondholder"`
	BondsRedeemed    uint64          `json:"bonds_redeemed"`
	RedemptionValue  decimal.Decimal `json:"redemption_value"`
	RedemptionType   RedemptionType  `json:"redemption_type"`
	RedemptionReason string          `json:"redemption_reason"`
	TransactionHash  string          `json:"transaction_hash,omitempty"`
}

type RedemptionType string

const (
	RedemptionMaturity   RedemptionType = "maturity"
	RedemptionEarly      RedemptionType = "early_redemption"
	RedemptionCallOption RedemptionType = "call_option"
	RedemptionPutOption  RedemptionType = "put_option"
	RedemptionDefault    RedemptionType = "default"
	RedemptionConversion RedemptionType = "conversion"
)

// Transfer documents an off-ledger ownership change for audit purposes; the
// token movement itself happens through the ledger passthrough.
type Transfer struct {
	TransferID       string          `json:"transfer_id"`
	TransferDate     time.Time       `json:"transfer_date"`
	From             string          `json:"from"`
	To               string          `json:"to"`
	BondsTransferred uint64          `json:"bonds_transferred"`
	TransferPrice    decimal.Decimal `json:"transfer_price"`
	TransferType     TransferType    `json:"transfer_type"`
	TransferReason   string          `json:"transfer_reason"`
}

type TransferType string

const (
	TransferSale        TransferType = "sale"
	TransferGift        TransferType = "gift"
	TransferInheritance TransferType = "inheritance"
	TransferCollateral  TransferType = "collateral_assignment"
	TransferPledge      TransferType = "pledge"
	TransferRepo        TransferType = "repo"
)

// InterestCalculation snapshots one accrued-interest computation.
type InterestCalculation struct {
	CalculationID   string            `json:"calculation_id"`
	CalculationDate time.Time         `json:"calculation_date"`
	Bondholder      string            `json:"bondholder"`
	BondsHeld       uint64            `json:"bonds_held"`
	DaysHeld        uint32            `json:"days_held"`
	AccruedInterest decimal.Decimal   `json:"accrued_interest"`
	CouponRate      decimal.Decimal   `json:"coupon_rate"`
	Method          CalculationMethod `json:"calculation_method"`
}

type CalculationMethod string

const (
	MethodSimpleInterest   CalculationMethod = "simple_interest"
	MethodCompoundInterest CalculationMethod = "compound_interest"
	MethodActual365        CalculationMethod = "actual_365"
	MethodActual360        CalculationMethod = "actual_360"
	MethodThirty360        CalculationMethod = "thirty_360"
)

// HolderInfo is the derived view of one bondholder's position.
type HolderInfo struct {
	Address       string          `json:"address"`
	BondBalance   uint64          `json:"bond_balance"`
	FaceValueHeld decimal.Decimal `json:"face_value_held"`
}

// Yield is the simplified yield view: the coupon rate echoed as current
// yield and yield-to-maturity. Real yield modeling is out of scope; the
// simplified output is preserved on purpose.
type Yield struct {
	CouponRate      decimal.Decimal `json:"coupon_rate"`
	CurrentYield    decimal.Decimal `json:"current_yield"`
	YieldToMaturity decimal.Decimal `json:"yield_to_maturity"`
}
