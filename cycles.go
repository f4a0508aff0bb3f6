package muleguard

import "strings"

// canonicalRotation rotates cycle so its lexicographically smallest member
// is first, ties on the first member broken by the next member and so on
// (spec §4.3). Direction of traversal is preserved; the cycle is never
// reversed.
func canonicalRotation(cycle []string) []string {
	n := len(cycle)
	best := 0
	for i := 1; i < n; i++ {
		for j := 0; j < n; j++ {
			a := cycle[(i+j)%n]
			b := cycle[(best+j)%n]
			if a != b {
				if a < b {
					best = i
				}
				break
			}
		}
	}
	rotated := make([]string, n)
	for j := 0; j < n; j++ {
		rotated[j] = cycle[(best+j)%n]
	}
	return rotated
}

func cycleKey(canonical []string) string {
	return strings.Join(canonical, "|")
}

// DetectCycles enumerates every simple directed cycle of length 3-5 in the
// filtered adjacency graph, once each, in first-discovery order after
// canonicalization and dedup (spec §4.3).
func DetectCycles(idx *AdjacencyIndex) [][]string {
	var cycles [][]string
	seen := make(map[string]bool)

	for _, start := range idx.Senders {
		path := []string{start}
		onPath := newOrderedSet()
		onPath.Add(start)
		walkCycles(idx, start, start, path, onPath, 1, &cycles, seen)
	}
	return cycles
}

func walkCycles(idx *AdjacencyIndex, start, current string, path []string, onPath *orderedSet, depth int, cycles *[][]string, seen map[string]bool) {
	for _, next := range idx.Out(current) {
		if next == start {
			if len(path) >= 3 {
				canon := canonicalRotation(path)
				key := cycleKey(canon)
				if !seen[key] {
					seen[key] = true
					*cycles = append(*cycles, canon)
				}
			}
			continue
		}
		if depth >= 5 {
			continue
		}
		if onPath.Has(next) {
			continue
		}
		onPath.Add(next)
		walkCycles(idx, start, next, append(path, next), onPath, depth+1, cycles, seen)
		onPath.Remove(next)
	}
}
