package muleguard

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

func roundTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}

func capScore(v float64) float64 {
	if v > 100 {
		return 100
	}
	return v
}

func dedupKey(patternType RingPatternType, members []string) string {
	sorted := append([]string(nil), members...)
	sort.Strings(sorted)
	return string(patternType) + "::" + strings.Join(sorted, ",")
}

func cycleRiskScore(members []string) float64 {
	return roundTo(capScore(70+5*float64(len(members))), 1)
}

func fanRiskScore(hub SmurfingHub) float64 {
	temporalComponent := 10.0
	if hub.TemporalFlag {
		temporalComponent = 25.0
	}
	return roundTo(capScore(60+temporalComponent+0.5*float64(len(hub.Counterparties))), 1)
}

func shellRiskScore(chain []string) float64 {
	return roundTo(capScore(50+8*float64(len(chain))), 1)
}

// AssembleRings wires cycles, fan-in/out hubs, and shell chains into the
// final deduplicated Ring list in acceptance order cycles -> fan-in ->
// fan-out -> shell (spec §4.6).
func AssembleRings(cycles [][]string, smurfHubs []SmurfingHub, shells [][]string) []Ring {
	var rings []Ring
	seen := make(map[string]bool)
	counter := 0

	assign := func(patternType RingPatternType, members []string, score float64) {
		key := dedupKey(patternType, members)
		if seen[key] {
			return
		}
		seen[key] = true
		counter++
		rings = append(rings, Ring{
			RingID:         fmt.Sprintf("RING_%03d", counter),
			PatternType:    patternType,
			MemberAccounts: append([]string(nil), members...),
			RiskScore:      score,
		})
	}

	for _, cycle := range cycles {
		assign(RingTypeCycle, cycle, cycleRiskScore(cycle))
	}
	for _, hub := range smurfHubs {
		if hub.Kind != SmurfingFanIn {
			continue
		}
		members := append([]string{hub.Account}, hub.Counterparties...)
		assign(RingTypeFanIn, members, fanRiskScore(hub))
	}
	for _, hub := range smurfHubs {
		if hub.Kind != SmurfingFanOut {
			continue
		}
		members := append([]string{hub.Account}, hub.Counterparties...)
		assign(RingTypeFanOut, members, fanRiskScore(hub))
	}
	for _, chain := range shells {
		assign(RingTypeShellNetwork, chain, shellRiskScore(chain))
	}

	return rings
}
