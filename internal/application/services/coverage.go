package services

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/zatekoja/hospitalcostsearch/internal/domain/entities"
)

var coverageEndedPattern = regexp.MustCompile(`ended [0-9]{8}`)

// CoverageExpiry is the result of inspecting a search error for an expired plan
type CoverageExpiry struct {
	// ExpiryDate is the YYYYMMDD date reported by the service, if any
	ExpiryDate string
	Message    string
}

// DetectCoverageExpiry reports whether an error message from the search
// service describes expired coverage. The service does not return a
// structured code, so detection relies on its message wording, e.g.
// "Insurance validation failed: Coverage expired (ended 20231231)".
func DetectCoverageExpiry(errorMessage string) (CoverageExpiry, bool) {
	if !strings.Contains(errorMessage, "Coverage expired") &&
		!strings.Contains(errorMessage, "insurance validation failed") {
		return CoverageExpiry{}, false
	}

	match := coverageEndedPattern.FindString(errorMessage)
	if match == "" {
		return CoverageExpiry{Message: "Your insurance plan has expired."}, true
	}

	date := strings.TrimPrefix(match, "ended ")
	return CoverageExpiry{
		ExpiryDate: date,
		Message:    fmt.Sprintf("Your insurance plan expired on %s/%s/%s.", date[4:6], date[6:8], date[0:4]),
	}, true
}

// CoverageCheck is the result of checking stored plan dates against today
type CoverageCheck struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// CheckPlanDates applies the search service's plan date rules to the stored
// dates: a plan that begins after today is not yet effective and one that
// ended before today is expired. Missing dates are not checked.
func CheckPlanDates(dates *entities.PlanDates, now time.Time) CoverageCheck {
	if dates == nil {
		return CoverageCheck{Valid: true}
	}

	today := now.Format("20060102")
	if dates.PlanBegin != "" && today < dates.PlanBegin {
		return CoverageCheck{Error: fmt.Sprintf("Coverage not yet effective (begins %s)", dates.PlanBegin)}
	}
	if dates.PlanEnd != "" && today > dates.PlanEnd {
		return CoverageCheck{Error: fmt.Sprintf("Coverage expired (ended %s)", dates.PlanEnd)}
	}
	return CoverageCheck{Valid: true}
}
