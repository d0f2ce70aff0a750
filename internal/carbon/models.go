// Package carbon layers verification and retirement lifecycle records over
// a fungible carbon-credit ledger. One credit equals one token; retired
// credits are burned and can never re-enter circulation.
package carbon

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProjectInfo is the singleton aggregate for one deployed credit project.
// Capacity fields satisfy issued = available + retired at all times.
type ProjectInfo struct {
	ProjectID            string          `json:"project_id"`
	ProjectName          string          `json:"project_name"`
	ProjectType          ProjectType     `json:"project_type"`
	VerificationStandard string          `json:"verification_standard"`
	VintageYear          uint32          `json:"vintage_year"`
	Country              string          `json:"country"`
	TotalCreditsIssued   uint64          `json:"total_credits_issued"`
	CreditsRetired       uint64          `json:"credits_retired"`
	CreditsAvailable     uint64          `json:"credits_available"`
	CO2EquivalentPerUnit decimal.Decimal `json:"co2_equivalent_per_credit"`
	VerificationBody     string          `json:"verification_body"`
	ProjectDeveloper     string          `json:"project_developer"`
}

type ProjectType string

const (
	ProjectRenewableEnergy    ProjectType = "renewable_energy"
	ProjectForestConservation ProjectType = "forest_conservation"
	ProjectCarbonCapture      ProjectType = "carbon_capture"
	ProjectMethaneReduction   ProjectType = "methane_reduction"
	ProjectSoilSequestration  ProjectType = "soil_sequestration"
)

// VerificationRecord documents one batch of credits entering circulation.
type VerificationRecord struct {
	VerificationID        string             `json:"verification_id"`
	VerificationDate      time.Time          `json:"verification_date"`
	CreditsVerified       uint64             `json:"credits_verified"`
	VerificationBody      string             `json:"verification_body"`
	VerificationReportURL string             `json:"verification_report_url"`
	Status                VerificationStatus `json:"status"`
}

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
	VerificationExpired  VerificationStatus = "expired"
)

// Valid reports whether the status is one of the known verification states.
func (v VerificationStatus) Valid() bool {
	switch v {
	case VerificationPending, VerificationVerified, VerificationRejected, VerificationExpired:
		return true
	}
	return false
}

// RetirementRecord documents credits permanently taken out of circulation.
// Retirement is terminal; there is no status field to update.
type RetirementRecord struct {
	RetirementID             string    `json:"retirement_id"`
	RetirementDate           time.Time `json:"retirement_date"`
	CreditsRetired           uint64    `json:"credits_retired"`
	RetirementPurpose        string    `json:"retirement_purpose"`
	RetirementEntity         string    `json:"retirement_entity"`
	RetirementCertificateURL string    `json:"retirement_certificate_url"`
}
