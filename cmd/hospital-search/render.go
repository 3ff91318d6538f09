package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/zatekoja/hospitalcostsearch/internal/application/services"
)

func renderOutcome(w io.Writer, o *services.SearchOutcome) {
	if o.LocationPermissionDenied {
		fmt.Fprintln(w, "Location permission denied.")
	}
	if o.StoredCoverageWarning != "" {
		fmt.Fprintf(w, "Warning: stored plan dates report %q\n", o.StoredCoverageWarning)
	}
	if o.CoverageExpired {
		fmt.Fprintf(w, "Coverage alert: %s\n", o.ExpiryMessage)
	}
	if o.ErrorMessage != "" {
		fmt.Fprintln(w, o.ErrorMessage)
	}
	if o.UsingMockData {
		fmt.Fprintln(w, "Showing sample data.")
	}
	if o.NoResultsMessage != "" {
		fmt.Fprintln(w, o.NoResultsMessage)
		return
	}
	if len(o.Hospitals) == 0 {
		return
	}

	if o.InsuranceProvider != "" {
		fmt.Fprintf(w, "Insurance: %s\n", o.InsuranceProvider)
	}
	if ca := o.CostAnalysis; ca != nil {
		if len(ca.LikelyProcedures) > 0 {
			fmt.Fprintf(w, "Likely procedures: %s\n", strings.Join(ca.LikelyProcedures, ", "))
		}
		fmt.Fprintf(w, "Deductible: %s remaining of %s\n",
			money(ca.DeductibleInfo.RemainingDeductible), money(ca.DeductibleInfo.AnnualDeductible))
		network := "out of network"
		if ca.CoverageDetails.InNetwork {
			network = "in network"
		}
		fmt.Fprintf(w, "Coverage: %d%%, %s\n", ca.CoverageDetails.CoveragePercentage, network)
	}

	fmt.Fprintf(w, "\n%d hospitals for %q\n", len(o.Hospitals), o.Symptoms)
	for i, h := range o.Hospitals {
		fmt.Fprintf(w, "\n%d. %s (%s)\n", i+1, h.Name, h.HospitalType)
		fmt.Fprintf(w, "   %s\n", h.Address)
		fmt.Fprintf(w, "   %s\n", h.Phone)
		if !h.AcceptsInsurance {
			fmt.Fprintln(w, "   Does not accept your insurance")
		}
		c := h.EstimatedCosts
		fmt.Fprintf(w, "   %s: average %s, with insurance %s, you pay %s, insurance covers %s\n",
			c.ProcedureName, money(c.AverageCost), money(c.WithInsuranceCost),
			money(c.PatientResponsibility), money(c.InsuranceCovers))
		fmt.Fprintf(w, "   Call: %s\n", h.DialURL)
		fmt.Fprintf(w, "   Map:  %s\n", h.MapsURL)
	}
}

func renderValidation(w io.Writer, o *services.ValidationOutcome) {
	provider := o.InsuranceProvider
	if o.Remote != nil && o.Remote.InsuranceProvider != "" {
		provider = o.Remote.InsuranceProvider
	}
	fmt.Fprintf(w, "User: %s\nInsurance: %s (trading partner %s)\n", o.UserID, provider, o.TradingPartnerID)

	if o.Remote != nil {
		if o.Remote.Valid {
			fmt.Fprintln(w, "Coverage: valid")
		} else {
			fmt.Fprintln(w, "Coverage: not valid")
		}
		if o.Remote.Message != "" {
			fmt.Fprintln(w, o.Remote.Message)
		}
		if o.Remote.Error != "" {
			fmt.Fprintln(w, o.Remote.Error)
		}
	}
	if !o.StoredCoverage.Valid {
		fmt.Fprintf(w, "Stored plan dates: %s\n", o.StoredCoverage.Error)
	}
}

func renderCoverageCheck(w io.Writer, check services.CoverageCheck) {
	if check.Valid {
		fmt.Fprintln(w, "Stored coverage: valid")
		return
	}
	fmt.Fprintf(w, "Stored coverage: %s\n", check.Error)
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}
