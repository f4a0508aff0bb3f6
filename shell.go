package muleguard

import "sort"

// cycleNodeSet flattens every cycle's member accounts into a single set,
// used to exclude cycle participants from shell-chain enumeration (spec
// §4.5: "no node in the chain is a cycle member").
func cycleNodeSet(cycles [][]string) *orderedSet {
	s := newOrderedSet()
	for _, cycle := range cycles {
		for _, acct := range cycle {
			s.Add(acct)
		}
	}
	return s
}

func isLowDegree(stats *orderedMap[AccountStats], account string) bool {
	s := stats.MustGet(account)
	if s == nil {
		return false
	}
	total := s.TotalTransactions()
	return total == 2 || total == 3
}

func copyPath(path []string) []string {
	return append([]string(nil), path...)
}

// walkShell extends path one interior hop at a time, recording a chain
// whenever a valid non-interior terminal is reached and whenever the
// accumulated interior run itself reaches length 3 (spec §4.5).
func walkShell(idx *AdjacencyIndex, cycleNodes *orderedSet, stats *orderedMap[AccountStats], path []string, visited *orderedSet, chains *[][]string) {
	current := path[len(path)-1]
	for _, next := range idx.Out(current) {
		if visited.Has(next) || cycleNodes.Has(next) {
			continue
		}
		if !isLowDegree(stats, next) {
			continue
		}

		newPath := append(copyPath(path), next)
		visited.Add(next)

		interiorCount := len(newPath) - 1
		if interiorCount >= 3 {
			*chains = append(*chains, copyPath(newPath))
		}

		for _, vn := range idx.Out(next) {
			if visited.Has(vn) || cycleNodes.Has(vn) {
				continue
			}
			if isLowDegree(stats, vn) {
				continue
			}
			*chains = append(*chains, append(copyPath(newPath), vn))
		}

		walkShell(idx, cycleNodes, stats, newPath, visited, chains)
		visited.Remove(next)
	}
}

func chainMemberKey(chain []string) map[string]bool {
	m := make(map[string]bool, len(chain))
	for _, acct := range chain {
		m[acct] = true
	}
	return m
}

func isSubsetOf(small map[string]bool, big map[string]bool) bool {
	if len(small) > len(big) {
		return false
	}
	for acct := range small {
		if !big[acct] {
			return false
		}
	}
	return true
}

// DetectShellNetworks finds directed chains of length >= 3 through
// degree-{2,3} interior nodes, excludes cycle members, and eliminates
// chains whose member set is a subset of another kept chain's (spec §4.5).
func DetectShellNetworks(idx *AdjacencyIndex, cycles [][]string) [][]string {
	cycleNodes := cycleNodeSet(cycles)

	var raw [][]string
	for _, start := range idx.Senders {
		if cycleNodes.Has(start) {
			continue
		}
		visited := newOrderedSet()
		visited.Add(start)
		walkShell(idx, cycleNodes, idx.Stats, []string{start}, visited, &raw)
	}

	sort.SliceStable(raw, func(i, j int) bool { return len(raw[i]) > len(raw[j]) })

	var kept [][]string
	var keptKeys []map[string]bool
	for _, chain := range raw {
		key := chainMemberKey(chain)
		subsumed := false
		for _, keptKey := range keptKeys {
			if isSubsetOf(key, keptKey) {
				subsumed = true
				break
			}
		}
		if !subsumed {
			kept = append(kept, chain)
			keptKeys = append(keptKeys, key)
		}
	}
	return kept
}
