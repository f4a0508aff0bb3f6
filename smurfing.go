package muleguard

import (
	"sort"
	"time"
)

const smurfingTemporalWindow = 72 * time.Hour
const smurfingCounterpartyThreshold = 10

// SmurfingKind distinguishes a fan-in hub (many senders, one receiver) from
// a fan-out hub (one sender, many receivers).
type SmurfingKind string

const (
	SmurfingFanIn  SmurfingKind = "fan_in"
	SmurfingFanOut SmurfingKind = "fan_out"
)

// SmurfingHub is one detected fan-in or fan-out hub account (spec §4.4).
type SmurfingHub struct {
	Account         string
	Kind            SmurfingKind
	Counterparties  []string
	TemporalFlag    bool
}

type timestampedCounterparty struct {
	counterparty string
	ts           time.Time
}

// temporalCluster reports whether any 72-hour window starting at an observed
// timestamp contains >= smurfingCounterpartyThreshold distinct counterparties
// (spec §4.4 step 3). Transactions with unparseable timestamps are omitted
// from this scan entirely (spec §7).
func temporalCluster(events []timestampedCounterparty) bool {
	valid := append([]timestampedCounterparty(nil), events...)
	sort.SliceStable(valid, func(i, j int) bool { return valid[i].ts.Before(valid[j].ts) })

	for i := range valid {
		windowEnd := valid[i].ts.Add(smurfingTemporalWindow)
		seen := make(map[string]bool)
		for j := i; j < len(valid); j++ {
			if valid[j].ts.After(windowEnd) {
				break
			}
			seen[valid[j].counterparty] = true
		}
		if len(seen) >= smurfingCounterpartyThreshold {
			return true
		}
	}
	return false
}

// DetectSmurfing identifies fan-in receivers and fan-out senders with >= 10
// distinct counterparties among the unfiltered transactions (spec §4.4).
// All fan-in hubs come first, then all fan-out hubs; within each group,
// hubs are in the order each account is first encountered in the input
// stream.
func DetectSmurfing(transactions []Transaction, stats *orderedMap[AccountStats]) []SmurfingHub {
	fanInEvents := make(map[string][]timestampedCounterparty)
	fanOutEvents := make(map[string][]timestampedCounterparty)

	for _, tx := range transactions {
		if !tx.timestampValid {
			continue
		}
		fanInEvents[tx.ReceiverID] = append(fanInEvents[tx.ReceiverID], timestampedCounterparty{tx.SenderID, tx.Timestamp})
		fanOutEvents[tx.SenderID] = append(fanOutEvents[tx.SenderID], timestampedCounterparty{tx.ReceiverID, tx.Timestamp})
	}

	var hubs []SmurfingHub
	for _, acct := range stats.Keys() {
		s := stats.MustGet(acct)
		if s.UniqueSenders != nil && s.UniqueSenders.Len() >= smurfingCounterpartyThreshold {
			hubs = append(hubs, SmurfingHub{
				Account:        acct,
				Kind:           SmurfingFanIn,
				Counterparties: append([]string(nil), s.UniqueSenders.Items()...),
				TemporalFlag:   temporalCluster(fanInEvents[acct]),
			})
		}
	}
	for _, acct := range stats.Keys() {
		s := stats.MustGet(acct)
		if s.UniqueReceivers != nil && s.UniqueReceivers.Len() >= smurfingCounterpartyThreshold {
			hubs = append(hubs, SmurfingHub{
				Account:        acct,
				Kind:           SmurfingFanOut,
				Counterparties: append([]string(nil), s.UniqueReceivers.Items()...),
				TemporalFlag:   temporalCluster(fanOutEvents[acct]),
			})
		}
	}
	return hubs
}
