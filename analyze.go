package muleguard

import (
	"os"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

// log is the package-level structured logger, configured once the way the
// lineage corpus's cmd/tracker/main.go configures zerolog.log.Logger at
// process start. Analyze takes no logger parameter so its signature stays
// a stable, pure function of its input slice.
var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
	With().Timestamp().Logger().Level(zerolog.InfoLevel)

// SetLogLevel lets a driver raise verbosity (e.g. to debug) without
// threading a logger through Analyze itself.
func SetLogLevel(level zerolog.Level) {
	log = log.Level(level)
}

// Analyze runs the full nine-stage detection pipeline over transactions and
// returns the JSON-compatible AnalysisResult of spec §6. It is synchronous,
// side-effect-free, and deterministic for a given input (spec §5, §8).
func Analyze(transactions []Transaction) (*AnalysisResult, error) {
	return analyze(transactions, nil)
}

// AnalyzeWithWatchlist is Analyze augmented with an optional persisted
// Watchlist (SPEC_FULL §4.1, §4.9): watchlist keywords extend rule 1 of the
// legitimacy filter, and sanctioned identifiers are never classified as
// legitimate. The list of sanctioned accounts seen is not returned here;
// Investigate returns it in an EnrichedReport (SPEC_FULL §9).
func AnalyzeWithWatchlist(transactions []Transaction, wl *Watchlist) (*AnalysisResult, error) {
	return analyze(transactions, wl)
}

func analyze(transactions []Transaction, wl *Watchlist) (*AnalysisResult, error) {
	result, _, err := analyzeFull(transactions, wl)
	return result, err
}

func analyzeFull(transactions []Transaction, wl *Watchlist) (*AnalysisResult, *LegitimacyResult, error) {
	start := time.Now()

	universeStats := computeStats(transactions)
	universe := universeStats.Keys()
	log.Debug().Int("accounts", len(universe)).Int("transactions", len(transactions)).Msg("ingestion snapshot")

	legit := FilterLegitimate(transactions, wl)
	log.Debug().Int("legitimate_accounts", legit.Legitimate.Len()).Int("filtered_transactions", len(legit.Filtered)).Msg("legitimacy filter")

	var (
		rings  []Ring
		cycles [][]string
		hubs   []SmurfingHub
		shells [][]string
	)

	if len(legit.Filtered) > 0 {
		// Smurfing runs over the unfiltered transactions and statistics
		// (SPEC_FULL §4.4), not legit.Filtered, so a hub account is still
		// examined when the legitimacy filter removed some of its
		// transactions. When the filter removes every transaction, the
		// empty-result protection skips all detection, smurfing included.
		hubs = DetectSmurfing(transactions, legit.UnfilteredStats)
		log.Debug().Int("smurfing_hubs", len(hubs)).Msg("smurfing detection")

		idx := BuildIndex(legit.Filtered)
		log.Debug().Int("senders", len(idx.Senders)).Msg("indexing")

		cycles = DetectCycles(idx)
		log.Debug().Int("cycles_found", len(cycles)).Msg("cycle detection")

		shells = DetectShellNetworks(idx, cycles)
		log.Debug().Int("shell_chains", len(shells)).Msg("shell-network detection")
	} else {
		log.Debug().Msg("empty-result protection: all transactions filtered, skipping detection")
	}

	rings = AssembleRings(cycles, hubs, shells)
	log.Debug().Int("rings", len(rings)).Msg("ring assembly")

	memberships := buildAccountMemberships(rings)
	suspicious := ScoreAccounts(memberships, legit.UnfilteredStats, hubs)
	log.Debug().Int("suspicious_accounts", len(suspicious)).Msg("scoring")

	result := project(universe, universeStats, legit.Legitimate, memberships, suspicious, rings, transactions, start)
	return result, legit, nil
}

// project assembles the final AnalysisResult: suspicious accounts sorted
// descending by score, one node per universe account, edges echoed
// verbatim, and the summary (spec §4.8).
func project(universe []string, universeStats *orderedMap[AccountStats], legitimate *orderedSet, memberships *orderedMap[accountMembership], suspicious []SuspiciousAccount, rings []Ring, transactions []Transaction, start time.Time) *AnalysisResult {
	sorted := make([]SuspiciousAccount, len(suspicious))
	copy(sorted, suspicious)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].SuspicionScore > sorted[j].SuspicionScore })

	suspiciousByID := make(map[string]*SuspiciousAccount, len(sorted))
	for i := range sorted {
		suspiciousByID[sorted[i].AccountID] = &sorted[i]
	}

	nodes := make([]Node, 0, len(universe))
	for _, acct := range universe {
		s := universeStats.MustGet(acct)
		node := Node{ID: acct, RingIDs: []string{}, Patterns: []PatternLabel{}}
		if s != nil {
			node.TotalSent = s.TotalSent
			node.TotalReceived = s.TotalReceived
			node.TransactionCount = s.TotalTransactions()
		}

		if legitimate.Has(acct) {
			node.Patterns = []PatternLabel{PatternLegitimateBiz}
			nodes = append(nodes, node)
			continue
		}

		if sa, ok := suspiciousByID[acct]; ok {
			node.Suspicious = true
			node.SuspicionScore = sa.SuspicionScore
		}
		if m := memberships.MustGet(acct); m != nil {
			node.RingIDs = append([]string(nil), m.ringIDs.Items()...)
			for _, p := range m.patterns.Items() {
				node.Patterns = append(node.Patterns, PatternLabel(p))
			}
		}
		nodes = append(nodes, node)
	}

	edges := make([]Edge, 0, len(transactions))
	for _, tx := range transactions {
		edges = append(edges, Edge{
			Source:        tx.SenderID,
			Target:        tx.ReceiverID,
			Amount:        tx.Amount,
			Timestamp:     tx.Timestamp,
			TransactionID: tx.TransactionID,
		})
	}

	legitimateCount := 0
	for _, acct := range universe {
		if legitimate.Has(acct) {
			legitimateCount++
		}
	}

	summary := Summary{
		TotalAccountsAnalyzed:      len(universe),
		SuspiciousAccountsFlagged:  len(sorted),
		FraudRingsDetected:         len(rings),
		LegitimateAccountsFiltered: legitimateCount,
		ProcessingTimeSeconds:      roundTo(time.Since(start).Seconds(), 3),
	}

	if rings == nil {
		rings = []Ring{}
	}

	return &AnalysisResult{
		SuspiciousAccounts: sorted,
		FraudRings:         rings,
		Summary:            summary,
		Nodes:              nodes,
		Edges:              edges,
	}
}
