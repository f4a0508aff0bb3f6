package muleguard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildIndexAdjacencyAndStats(t *testing.T) {
	transactions := []Transaction{
		mkTx("T1", "A", "B", 100, 0),
		mkTx("T2", "B", "C", 50, 1),
		mkTx("T3", "A", "C", 25, 2),
	}
	idx := BuildIndex(transactions)

	assert.Equal(t, []string{"A", "B"}, idx.Senders)
	assert.Equal(t, []string{"B", "C"}, idx.Out("A"))
	assert.Equal(t, []string{"C"}, idx.Out("B"))

	edges := idx.Edges("A", "B")
	require.Len(t, edges, 1)
	assert.Equal(t, "T1", edges[0].TransactionID)

	statsA, ok := idx.Stats.Get("A")
	require.True(t, ok)
	assert.Equal(t, 125.0, statsA.TotalSent)
	assert.Equal(t, 2, statsA.SendCount)

	statsC, ok := idx.Stats.Get("C")
	require.True(t, ok)
	assert.Equal(t, 2, statsC.ReceiveCount)
	assert.Equal(t, 2, statsC.TotalTransactions())
}

func TestOrderedMapPointerStability(t *testing.T) {
	m := newOrderedMap[AccountStats]()
	first := m.GetOrInit("A")
	first.SendCount = 1
	for i := 0; i < 50; i++ {
		m.GetOrInit("K" + string(rune('a'+i%26)))
	}
	assert.Equal(t, 1, first.SendCount)

	got, ok := m.Get("A")
	require.True(t, ok)
	assert.Equal(t, 1, got.SendCount)
}

func TestOrderedSetRemoveBacktrack(t *testing.T) {
	s := newOrderedSet()
	s.Add("A")
	s.Add("B")
	s.Add("C")
	s.Remove("B")
	assert.False(t, s.Has("B"))
	assert.Equal(t, []string{"A", "C"}, s.Items())
}
