package muleguard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectCyclesSimpleThreeCycle(t *testing.T) {
	transactions := []Transaction{
		mkTx("T1", "A", "B", 100, 0),
		mkTx("T2", "B", "C", 100, 1),
		mkTx("T3", "C", "A", 100, 2),
	}
	idx := BuildIndex(transactions)
	cycles := DetectCycles(idx)

	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"A", "B", "C"}, cycles[0])
}

func TestDetectCyclesDedupAcrossStartPositions(t *testing.T) {
	transactions := []Transaction{
		mkTx("T1", "A", "B", 100, 0),
		mkTx("T2", "B", "C", 100, 1),
		mkTx("T3", "C", "A", 100, 2),
	}
	idx := BuildIndex(transactions)
	cycles := DetectCycles(idx)
	assert.Len(t, cycles, 1)
}

func TestDetectCyclesDistinctDirections(t *testing.T) {
	transactions := []Transaction{
		mkTx("T1", "A", "B", 10, 0),
		mkTx("T2", "B", "C", 10, 1),
		mkTx("T3", "C", "A", 10, 2),
		mkTx("T4", "A", "C", 10, 3),
		mkTx("T5", "C", "B", 10, 4),
		mkTx("T6", "B", "A", 10, 5),
	}
	idx := BuildIndex(transactions)
	cycles := DetectCycles(idx)
	require.Len(t, cycles, 2)
	assert.Equal(t, []string{"A", "B", "C"}, cycles[0])
	assert.Equal(t, []string{"A", "C", "B"}, cycles[1])
}

func TestCanonicalRotation(t *testing.T) {
	assert.Equal(t, []string{"A", "B", "C"}, canonicalRotation([]string{"B", "C", "A"}))
	assert.Equal(t, []string{"A", "B", "C"}, canonicalRotation([]string{"C", "A", "B"}))
}

func TestDetectCyclesNoCycleBeyondDepthFive(t *testing.T) {
	transactions := []Transaction{
		mkTx("T1", "A", "B", 1, 0),
		mkTx("T2", "B", "C", 1, 1),
		mkTx("T3", "C", "D", 1, 2),
		mkTx("T4", "D", "E", 1, 3),
		mkTx("T5", "E", "F", 1, 4),
		mkTx("T6", "F", "A", 1, 5),
	}
	idx := BuildIndex(transactions)
	cycles := DetectCycles(idx)
	assert.Empty(t, cycles)
}
