package muleguard

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkTx(id, sender, receiver string, amount float64, hoursOffset int) Transaction {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(hoursOffset) * time.Hour)
	return NewTransaction(id, sender, receiver, amount, ts)
}

func TestFilterLegitimateNameMatch(t *testing.T) {
	transactions := []Transaction{
		mkTx("T1", "ACME_CORP_PAYROLL", "E1", 2000, 0),
		mkTx("T2", "ACME_CORP_PAYROLL", "E2", 2000, 1),
	}
	result := FilterLegitimate(transactions, nil)

	assert.True(t, result.Legitimate.Has("ACME_CORP_PAYROLL"))
	assert.Empty(t, result.Filtered)
}

func TestFilterLegitimatePayrollSignature(t *testing.T) {
	var transactions []Transaction
	for i := 0; i < 6; i++ {
		transactions = append(transactions, mkTx("P"+string(rune('A'+i)), "HUBCO", "EMP"+string(rune('A'+i)), 1000, i))
	}
	// HUBCO also receives some funding, keeping flow ratio well under 0.15
	// but nonzero — a pure zero-receive fan-out hub must NOT match this
	// signature (it would otherwise be indistinguishable from a smurfing
	// fan-out hub).
	transactions = append(transactions, mkTx("PFUND", "INVESTOR", "HUBCO", 500, 6))

	result := FilterLegitimate(transactions, nil)
	assert.True(t, result.Legitimate.Has("HUBCO"))
	assert.Empty(t, result.Filtered)
}

func TestFilterLegitimateDoesNotLegitimizePureFanInHub(t *testing.T) {
	var transactions []Transaction
	for i := 0; i < 10; i++ {
		transactions = append(transactions, mkTx(fmt.Sprintf("T%d", i+1), fmt.Sprintf("S%d", i+1), "HUB", 50, i))
	}
	result := FilterLegitimate(transactions, nil)
	assert.False(t, result.Legitimate.Has("HUB"))
	assert.Len(t, result.Filtered, 10)
}

func TestFilterLegitimateDoesNotLegitimizePureFanOutHub(t *testing.T) {
	var transactions []Transaction
	for i := 0; i < 10; i++ {
		transactions = append(transactions, mkTx(fmt.Sprintf("T%d", i+1), "HUB", fmt.Sprintf("R%d", i+1), 50, i))
	}
	result := FilterLegitimate(transactions, nil)
	assert.False(t, result.Legitimate.Has("HUB"))
	assert.Len(t, result.Filtered, 10)
}

func TestFilterLegitimateLeavesSuspiciousIntact(t *testing.T) {
	transactions := []Transaction{
		mkTx("T1", "A", "B", 100, 0),
		mkTx("T2", "B", "C", 100, 1),
		mkTx("T3", "C", "A", 100, 2),
	}
	result := FilterLegitimate(transactions, nil)
	require.Len(t, result.Filtered, 3)
	assert.Equal(t, 0, result.Legitimate.Len())
}

func TestCoefficientOfVariation(t *testing.T) {
	cv, ok := coefficientOfVariation([]float64{100, 100, 100})
	require.True(t, ok)
	assert.InDelta(t, 0.0, cv, 1e-9)

	_, ok = coefficientOfVariation(nil)
	assert.False(t, ok)

	_, ok = coefficientOfVariation([]float64{0, 0})
	assert.False(t, ok)
}

func TestFlowRatio(t *testing.T) {
	s := &AccountStats{TotalSent: 50, TotalReceived: 100}
	assert.InDelta(t, 0.5, s.FlowRatio(), 1e-9)

	zero := &AccountStats{TotalSent: 0, TotalReceived: 100}
	assert.Equal(t, 0.0, zero.FlowRatio())
}

func TestWatchlistSanctionedNeverLegitimate(t *testing.T) {
	dbFile := t.TempDir() + "/watchlist.db"
	wl, err := OpenWatchlist(dbFile)
	require.NoError(t, err)
	defer wl.Close()

	require.NoError(t, wl.Put(WatchlistEntry{Kind: WatchlistKindSanctioned, Value: "ACME_CORP_PAYROLL"}))

	transactions := []Transaction{
		mkTx("T1", "ACME_CORP_PAYROLL", "E1", 2000, 0),
	}
	result := FilterLegitimate(transactions, wl)
	assert.False(t, result.Legitimate.Has("ACME_CORP_PAYROLL"))
	assert.Contains(t, result.SanctionsMatches, "ACME_CORP_PAYROLL")
	assert.Len(t, result.Filtered, 1)
}
