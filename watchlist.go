package muleguard

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.etcd.io/bbolt"
)

var (
	bucketWatchlistKeywords   = []byte("watchlist_keywords")
	bucketWatchlistSanctioned = []byte("watchlist_sanctioned")
)

// WatchlistKind distinguishes the two kinds of operator-curated reference
// data a Watchlist holds.
type WatchlistKind string

const (
	WatchlistKindKeyword    WatchlistKind = "keyword"
	WatchlistKindSanctioned WatchlistKind = "sanctioned"
)

// WatchlistEntry is one persisted reference-data record.
type WatchlistEntry struct {
	Value     string        `json:"value"`
	Kind      WatchlistKind `json:"kind"`
	AddedAt   time.Time     `json:"added_at"`
	AddedBy   string        `json:"added_by,omitempty"`
	Rationale string        `json:"rationale,omitempty"`
}

// Watchlist persists legitimacy keywords and sanctioned account identifiers
// across process restarts, independent of any one analysis run (SPEC_FULL
// §4.9), grounded on the bucket-per-entity bbolt layout of the lineage
// project's Storage (storage.go).
type Watchlist struct {
	db *bbolt.DB
}

// OpenWatchlist opens (creating if absent) a bbolt-backed watchlist file.
func OpenWatchlist(path string) (*Watchlist, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 10 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open watchlist: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketWatchlistKeywords); err != nil {
			return fmt.Errorf("create keyword bucket: %w", err)
		}
		if _, err := tx.CreateBucketIfNotExists(bucketWatchlistSanctioned); err != nil {
			return fmt.Errorf("create sanctioned bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Watchlist{db: db}, nil
}

func (w *Watchlist) Close() error {
	return w.db.Close()
}

func bucketFor(kind WatchlistKind) []byte {
	if kind == WatchlistKindSanctioned {
		return bucketWatchlistSanctioned
	}
	return bucketWatchlistKeywords
}

// Put persists entry, keyed by its uppercased value.
func (w *Watchlist) Put(entry WatchlistEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal watchlist entry: %w", err)
	}
	key := []byte(strings.ToUpper(entry.Value))
	return w.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketFor(entry.Kind)).Put(key, data)
	})
}

// Delete removes the entry for value under kind, if present.
func (w *Watchlist) Delete(kind WatchlistKind, value string) error {
	key := []byte(strings.ToUpper(value))
	return w.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketFor(kind)).Delete(key)
	})
}

// List returns every entry of the given kind, in bucket key order.
func (w *Watchlist) List(kind WatchlistKind) ([]WatchlistEntry, error) {
	var entries []WatchlistEntry
	err := w.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketFor(kind)).ForEach(func(k, v []byte) error {
			var entry WatchlistEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("unmarshal watchlist entry %s: %w", k, err)
			}
			entries = append(entries, entry)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Keywords returns every persisted keyword value, for use by FilterLegitimate
// rule 1 alongside defaultLegitimacyKeywords.
func (w *Watchlist) Keywords() []string {
	entries, err := w.List(WatchlistKindKeyword)
	if err != nil {
		return nil
	}
	values := make([]string, 0, len(entries))
	for _, e := range entries {
		values = append(values, e.Value)
	}
	return values
}

// IsSanctioned reports whether accountID (case-insensitive) is on the
// sanctioned/high-risk list.
func (w *Watchlist) IsSanctioned(accountID string) bool {
	key := []byte(strings.ToUpper(accountID))
	found := false
	w.db.View(func(tx *bbolt.Tx) error {
		found = tx.Bucket(bucketWatchlistSanctioned).Get(key) != nil
		return nil
	})
	return found
}
