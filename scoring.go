package muleguard

import "strings"

// accountMembership accumulates, for one account, the rings it joined (in
// join order) and the pattern labels those rings earn it (in first-earned
// order), plus how many cycle rings it belongs to.
type accountMembership struct {
	ringIDs    *orderedSet
	patterns   *orderedSet
	cycleCount int
}

// buildAccountMemberships walks rings in their assembled order (cycles,
// fan-in, fan-out, shell) and records, per member account, ring IDs and
// pattern labels in first-earned order (spec §4.8: "ring_id is the first
// ring the account joined").
func buildAccountMemberships(rings []Ring) *orderedMap[accountMembership] {
	memberships := newOrderedMap[accountMembership]()
	for _, ring := range rings {
		var label PatternLabel
		switch ring.PatternType {
		case RingTypeCycle:
			label = CycleLengthPattern(len(ring.MemberAccounts))
		case RingTypeFanIn:
			label = PatternFanIn
		case RingTypeFanOut:
			label = PatternFanOut
		case RingTypeShellNetwork:
			label = PatternShellNetwork
		}
		for _, acct := range ring.MemberAccounts {
			m := memberships.GetOrInit(acct)
			if m.ringIDs == nil {
				m.ringIDs = newOrderedSet()
				m.patterns = newOrderedSet()
			}
			m.ringIDs.Add(ring.RingID)
			m.patterns.Add(string(label))
			if ring.PatternType == RingTypeCycle {
				m.cycleCount++
			}
		}
	}
	return memberships
}

// hubTemporalFlags maps an account to its own temporal flag, only when that
// account is itself a smurfing hub (spec §4.7: "counterparty accounts do
// not inherit the hub's temporal flag unless they themselves are hubs").
func hubTemporalFlags(hubs []SmurfingHub) map[string]bool {
	flags := make(map[string]bool, len(hubs))
	for _, hub := range hubs {
		flags[hub.Account] = hub.TemporalFlag
	}
	return flags
}

func hasCyclePattern(patterns []string) bool {
	for _, p := range patterns {
		if strings.HasPrefix(p, "cycle_length_") {
			return true
		}
	}
	return false
}

func hasPattern(patterns []string, label PatternLabel) bool {
	for _, p := range patterns {
		if p == string(label) {
			return true
		}
	}
	return false
}

// accountScore computes the composite suspicion score of spec §4.7 for one
// account given its patterns, cycle membership count, temporal flag, and
// unfiltered sent/received totals.
func accountScore(patterns []string, cycleCount int, temporalFlag bool, totalSent, totalReceived float64) float64 {
	score := 0.0
	if hasCyclePattern(patterns) {
		score += 35
		bonus := cycleCount - 1
		if bonus > 3 {
			bonus = 3
		}
		if bonus > 0 {
			score += float64(bonus) * 10
		}
	}
	if hasPattern(patterns, PatternFanIn) {
		score += 25
	}
	if hasPattern(patterns, PatternFanOut) {
		score += 25
	}
	if hasPattern(patterns, PatternShellNetwork) {
		score += 20
	}
	if temporalFlag {
		score += 15
	}
	if totalSent > 0 && totalReceived > 0 {
		var ratio float64
		if totalSent < totalReceived {
			ratio = totalSent / totalReceived
		} else {
			ratio = totalReceived / totalSent
		}
		if ratio > 0.7 && ratio < 1.0 {
			score += 10
		}
	}
	return roundTo(capScore(score), 1)
}

// ScoreAccounts computes a SuspiciousAccount record for every ring-bearing
// account, unsorted; project performs the final descending-score sort
// (spec §4.7-§4.8).
func ScoreAccounts(memberships *orderedMap[accountMembership], unfilteredStats *orderedMap[AccountStats], hubs []SmurfingHub) []SuspiciousAccount {
	temporalFlags := hubTemporalFlags(hubs)

	var accounts []SuspiciousAccount
	for _, acct := range memberships.Keys() {
		m := memberships.MustGet(acct)
		var totalSent, totalReceived float64
		if s := unfilteredStats.MustGet(acct); s != nil {
			totalSent = s.TotalSent
			totalReceived = s.TotalReceived
		}
		patterns := m.patterns.Items()
		score := accountScore(patterns, m.cycleCount, temporalFlags[acct], totalSent, totalReceived)

		labels := make([]PatternLabel, 0, len(patterns))
		for _, p := range patterns {
			labels = append(labels, PatternLabel(p))
		}
		ringIDs := m.ringIDs.Items()
		firstRing := ""
		if len(ringIDs) > 0 {
			firstRing = ringIDs[0]
		}

		accounts = append(accounts, SuspiciousAccount{
			AccountID:        acct,
			SuspicionScore:   score,
			DetectedPatterns: labels,
			RingID:           firstRing,
		})
	}
	return accounts
}
