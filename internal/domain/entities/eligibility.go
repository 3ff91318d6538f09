package entities

import "time"

// EligibilityRecord is the simplified eligibility payload previously fetched
// for a user and kept by the profile store. Every section is optional.
type EligibilityRecord struct {
	UserID    string     `json:"userId,omitempty" db:"user_id"`
	PayerInfo *PayerInfo `json:"payerInfo,omitempty"`
	PlanInfo  *PlanInfo  `json:"planInfo,omitempty"`
	PlanDates *PlanDates `json:"planDates,omitempty"`
	UpdatedAt time.Time  `json:"updatedAt,omitempty" db:"updated_at"`
}

// PayerInfo identifies the insurance payer. A nil Contacts slice means the
// record carries no contact list; an empty non-nil slice is kept as-is.
type PayerInfo struct {
	Name                     string         `json:"name,omitempty"`
	LastName                 string         `json:"lastName,omitempty"`
	FederalTaxpayersIDNumber string         `json:"federalTaxpayersIdNumber,omitempty"`
	Contacts                 []PayerContact `json:"contacts"`
}

// PayerContact is one way of reaching the payer
type PayerContact struct {
	CommunicationMode   string `json:"communicationMode,omitempty"`
	CommunicationNumber string `json:"communicationNumber,omitempty"`
}

// PlanInfo describes the group plan
type PlanInfo struct {
	GroupNumber      string `json:"groupNumber,omitempty"`
	GroupDescription string `json:"groupDescription,omitempty"`
}

// PlanDates holds YYYYMMDD plan dates as reported by the payer
type PlanDates struct {
	PlanBegin        string `json:"planBegin,omitempty"`
	PlanEnd          string `json:"planEnd,omitempty"`
	EligibilityBegin string `json:"eligibilityBegin,omitempty"`
}

// UserProfile is the subset of the user's profile the search flow needs
type UserProfile struct {
	UserID            string    `json:"userId" db:"user_id"`
	FirstName         string    `json:"firstName,omitempty" db:"first_name"`
	LastName          string    `json:"lastName,omitempty" db:"last_name"`
	MemberID          string    `json:"memberId,omitempty" db:"member_id"`
	InsuranceProvider string    `json:"insuranceProvider,omitempty" db:"insurance_provider"`
	UpdatedAt         time.Time `json:"updatedAt,omitempty" db:"updated_at"`
}
