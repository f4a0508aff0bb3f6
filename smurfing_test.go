package muleguard

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildFanIn(count int, spreadHours int) []Transaction {
	var transactions []Transaction
	for i := 0; i < count; i++ {
		transactions = append(transactions, mkTx(
			fmt.Sprintf("T%d", i+1),
			fmt.Sprintf("S%d", i+1),
			"HUB",
			50,
			i*spreadHours,
		))
	}
	return transactions
}

func TestDetectSmurfingFanInAtThreshold(t *testing.T) {
	transactions := buildFanIn(10, 1)
	stats := computeStats(transactions)
	hubs := DetectSmurfing(transactions, stats)

	require.Len(t, hubs, 1)
	assert.Equal(t, "HUB", hubs[0].Account)
	assert.Equal(t, SmurfingFanIn, hubs[0].Kind)
	assert.Len(t, hubs[0].Counterparties, 10)
	assert.True(t, hubs[0].TemporalFlag)
}

func TestDetectSmurfingFanInBelowThreshold(t *testing.T) {
	transactions := buildFanIn(9, 1)
	stats := computeStats(transactions)
	hubs := DetectSmurfing(transactions, stats)

	assert.Empty(t, hubs)
}

func TestDetectSmurfingFanOutAtThreshold(t *testing.T) {
	var transactions []Transaction
	for i := 0; i < 10; i++ {
		transactions = append(transactions, mkTx(
			fmt.Sprintf("T%d", i+1),
			"HUB",
			fmt.Sprintf("R%d", i+1),
			50,
			i,
		))
	}
	stats := computeStats(transactions)
	hubs := DetectSmurfing(transactions, stats)

	require.Len(t, hubs, 1)
	assert.Equal(t, "HUB", hubs[0].Account)
	assert.Equal(t, SmurfingFanOut, hubs[0].Kind)
	assert.Len(t, hubs[0].Counterparties, 10)
}

func TestDetectSmurfingTemporalClusterOutsideWindow(t *testing.T) {
	// 10 distinct senders, but spread 10 hours apart each: the last sender
	// arrives 90 hours after the first, so no single 72-hour window covers
	// all 10 and TemporalFlag must be false even though the hub itself
	// still qualifies by raw counterparty count.
	transactions := buildFanIn(10, 10)
	stats := computeStats(transactions)
	hubs := DetectSmurfing(transactions, stats)

	require.Len(t, hubs, 1)
	assert.False(t, hubs[0].TemporalFlag)
}

func TestDetectSmurfingOrderFanInBeforeFanOut(t *testing.T) {
	var transactions []Transaction
	for i := 0; i < 10; i++ {
		transactions = append(transactions, mkTx(
			fmt.Sprintf("IN%d", i+1), fmt.Sprintf("S%d", i+1), "HUBIN", 50, i,
		))
	}
	for i := 0; i < 10; i++ {
		transactions = append(transactions, mkTx(
			fmt.Sprintf("OUT%d", i+1), "HUBOUT", fmt.Sprintf("R%d", i+1), 50, 100+i,
		))
	}
	stats := computeStats(transactions)
	hubs := DetectSmurfing(transactions, stats)

	require.Len(t, hubs, 2)
	assert.Equal(t, SmurfingFanIn, hubs[0].Kind)
	assert.Equal(t, "HUBIN", hubs[0].Account)
	assert.Equal(t, SmurfingFanOut, hubs[1].Kind)
	assert.Equal(t, "HUBOUT", hubs[1].Account)
}

func TestDetectSmurfingIgnoresInvalidTimestamps(t *testing.T) {
	var transactions []Transaction
	placeholder := mkTx("X", "X", "X", 0, 0).Timestamp
	for i := 0; i < 10; i++ {
		transactions = append(transactions, NewTransactionWithInvalidTimestamp(
			fmt.Sprintf("T%d", i+1), fmt.Sprintf("S%d", i+1), "HUB", 50, placeholder,
		))
	}
	stats := computeStats(transactions)
	hubs := DetectSmurfing(transactions, stats)

	require.Len(t, hubs, 1)
	assert.False(t, hubs[0].TemporalFlag)
}
