package muleguard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchlistPutListDelete(t *testing.T) {
	dbFile := t.TempDir() + "/watchlist.db"
	wl, err := OpenWatchlist(dbFile)
	require.NoError(t, err)
	defer wl.Close()

	require.NoError(t, wl.Put(WatchlistEntry{Kind: WatchlistKindKeyword, Value: "SHELLCO"}))
	require.NoError(t, wl.Put(WatchlistEntry{Kind: WatchlistKindSanctioned, Value: "BADACTOR"}))

	keywords, err := wl.List(WatchlistKindKeyword)
	require.NoError(t, err)
	require.Len(t, keywords, 1)
	assert.Equal(t, "SHELLCO", keywords[0].Value)

	assert.True(t, wl.IsSanctioned("badactor"))
	assert.Contains(t, wl.Keywords(), "SHELLCO")

	require.NoError(t, wl.Delete(WatchlistKindKeyword, "SHELLCO"))
	keywords, err = wl.List(WatchlistKindKeyword)
	require.NoError(t, err)
	assert.Empty(t, keywords)
}

func TestWatchlistKeywordExtendsLegitimacyFilter(t *testing.T) {
	dbFile := t.TempDir() + "/watchlist.db"
	wl, err := OpenWatchlist(dbFile)
	require.NoError(t, err)
	defer wl.Close()

	require.NoError(t, wl.Put(WatchlistEntry{Kind: WatchlistKindKeyword, Value: "SHELLCO"}))

	transactions := []Transaction{
		mkTx("T1", "SHELLCO_LOGISTICS", "E1", 500, 0),
	}
	result := FilterLegitimate(transactions, wl)
	assert.True(t, result.Legitimate.Has("SHELLCO_LOGISTICS"))
}
