package muleguard

import (
	"math"
	"strings"
)

// defaultLegitimacyKeywords is the fixed name-match keyword list of spec
// §4.1 rule 1, grouped by category the way the lineage project's aml.go
// groups its rule constants by regulatory framework.
var defaultLegitimacyKeywords = []string{
	// corporate suffixes
	"COMPANY", "CORP", "INC", "LLC", "LTD", "ENTERPRISE",
	// payroll
	"PAYROLL", "SALARY", "WAGE", "HR_", "HUMAN_RESOURCE",
	// property
	"RENT", "LANDLORD", "PROPERTY", "REALTY", "HOUSING",
	// supply chain
	"VENDOR", "SUPPLIER", "SUPPLY", "WHOLESALE",
	// retail
	"GROCERY", "STORE", "SHOP", "MARKET", "RETAIL",
	// utilities
	"UTILITY", "ELECTRIC", "WATER", "GAS_CO", "POWER",
	// insurance / banking
	"INSURANCE", "INSURE", "BANK", "CREDIT_UNION", "MORTGAGE",
	// public sector
	"GOVERNMENT", "GOV_", "TAX_", "IRS",
	// education
	"SCHOOL", "UNIVERSITY", "COLLEGE",
	// healthcare
	"HOSPITAL", "CLINIC", "MEDICAL", "HEALTH",
	// communications
	"TELECOM", "PHONE", "MOBILE", "INTERNET",
	// subscriptions
	"SUBSCRIPTION", "NETFLIX", "SPOTIFY",
}

// LegitimacyResult is the output of FilterLegitimate: the legitimate
// account set, the filtered transaction batch, the unfiltered per-account
// statistics (needed again downstream by projection, spec §4.8), and any
// watchlist sanctions hits observed along the way.
type LegitimacyResult struct {
	Legitimate        *orderedSet
	Filtered          []Transaction
	UnfilteredStats   *orderedMap[AccountStats]
	SanctionsMatches  []string
}

func nameMatchesKeyword(accountID string, extra []string) bool {
	upper := strings.ToUpper(accountID)
	for _, kw := range defaultLegitimacyKeywords {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	for _, kw := range extra {
		if strings.Contains(upper, strings.ToUpper(kw)) {
			return true
		}
	}
	return false
}

// coefficientOfVariation computes σ/μ for a sequence of amounts. Returns
// false if μ = 0 (spec §4.1: "the signature fails").
func coefficientOfVariation(amounts []float64) (float64, bool) {
	n := float64(len(amounts))
	if n == 0 {
		return 0, false
	}
	var sum float64
	for _, a := range amounts {
		sum += a
	}
	mean := sum / n
	if mean == 0 {
		return 0, false
	}
	var sumSq float64
	for _, a := range amounts {
		d := a - mean
		sumSq += d * d
	}
	stddev := math.Sqrt(sumSq / n)
	return stddev / mean, true
}

// isPayrollSignature requires total_received > 0: FlowRatio is defined as 0
// whenever either side is zero (types.go), so a pure fan-out hub with no
// incoming funds at all would otherwise satisfy the < 0.15 bound vacuously.
// Mirrors the zero-denominator guard already applied to isMerchantSignature.
func isPayrollSignature(s *AccountStats) bool {
	if s.UniqueReceivers == nil || s.UniqueReceivers.Len() < 5 || s.SendCount < 5 {
		return false
	}
	cv, ok := coefficientOfVariation(s.SentAmounts)
	if !ok || cv >= 0.3 {
		return false
	}
	return s.TotalReceived > 0 && s.FlowRatio() < 0.15
}

// isRentCollectorSignature requires total_sent > 0, mirroring the guard
// above for a pure fan-in hub with no outgoing funds at all (e.g. a
// smurfing fan-in hub), which would otherwise satisfy FlowRatio < 0.15
// vacuously.
func isRentCollectorSignature(s *AccountStats) bool {
	if s.UniqueSenders == nil || s.UniqueSenders.Len() < 5 || s.ReceiveCount < 5 {
		return false
	}
	cv, ok := coefficientOfVariation(s.ReceivedAmounts)
	if !ok || cv >= 0.3 {
		return false
	}
	return s.TotalSent > 0 && s.FlowRatio() < 0.15
}

// isMerchantSignature requires total_sent > 0: a ratio check against zero
// outgoing volume would trivially pass for any pure receive-only hub
// (including a fan-in smurfing hub), the same zero-denominator guard spec
// §4.1 applies explicitly to flow ratio and CV.
func isMerchantSignature(s *AccountStats) bool {
	uniqueSenders := 0
	if s.UniqueSenders != nil {
		uniqueSenders = s.UniqueSenders.Len()
	}
	uniqueReceivers := 0
	if s.UniqueReceivers != nil {
		uniqueReceivers = s.UniqueReceivers.Len()
	}
	return uniqueSenders >= 8 && uniqueReceivers <= 3 && s.TotalSent > 0 && s.TotalReceived > 5*s.TotalSent
}

// isPurePayerSignature requires total_received > 0, mirroring the merchant
// guard above for a pure send-only hub (including a fan-out smurfing hub).
func isPurePayerSignature(s *AccountStats) bool {
	uniqueSenders := 0
	if s.UniqueSenders != nil {
		uniqueSenders = s.UniqueSenders.Len()
	}
	uniqueReceivers := 0
	if s.UniqueReceivers != nil {
		uniqueReceivers = s.UniqueReceivers.Len()
	}
	return uniqueReceivers >= 5 && uniqueSenders <= 1 && s.TotalReceived > 0 && s.TotalSent > 5*s.TotalReceived
}

// FilterLegitimate classifies accounts as legitimate business accounts by
// name match or behavioral signature and removes every transaction
// touching one of them (spec §4.1). wl is optional; pass nil to use only
// the compiled-in keyword list.
func FilterLegitimate(transactions []Transaction, wl *Watchlist) *LegitimacyResult {
	stats := computeStats(transactions)

	var extraKeywords []string
	if wl != nil {
		extraKeywords = wl.Keywords()
	}

	legitimate := newOrderedSet()
	var sanctioned []string
	for _, acct := range stats.Keys() {
		s := stats.MustGet(acct)
		if wl != nil && wl.IsSanctioned(acct) {
			sanctioned = append(sanctioned, acct)
			continue
		}
		if nameMatchesKeyword(acct, extraKeywords) ||
			isPayrollSignature(s) ||
			isRentCollectorSignature(s) ||
			isMerchantSignature(s) ||
			isPurePayerSignature(s) {
			legitimate.Add(acct)
		}
	}

	filtered := make([]Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if legitimate.Has(tx.SenderID) || legitimate.Has(tx.ReceiverID) {
			continue
		}
		filtered = append(filtered, tx)
	}

	return &LegitimacyResult{
		Legitimate:       legitimate,
		Filtered:         filtered,
		UnfilteredStats:  stats,
		SanctionsMatches: sanctioned,
	}
}
