package index

import (
	"fmt"
	"math/bits"
	"strings"
)

// Strategy names an intersection algorithm.
type Strategy int8

const (
	// StrategyAuto lets the Selector decide per column.
	StrategyAuto Strategy = iota
	// StrategySkip means clipping found no overlap and nothing was run.
	StrategySkip
	StrategyMerge
	StrategyBinary
	StrategyGalloping
	StrategyLookup

	numStrategies
)

var strategyNames = [numStrategies]string{
	StrategyAuto:      "auto",
	StrategySkip:      "skip",
	StrategyMerge:     "merge",
	StrategyBinary:    "binary",
	StrategyGalloping: "galloping",
	StrategyLookup:    "lookup",
}

func (s Strategy) String() string {
	if s >= 0 && s < numStrategies {
		return strategyNames[s]
	}
	return fmt.Sprintf("unknown(%d)", int8(s))
}

// Strategies lists every strategy that runs an algorithm.
func Strategies() []Strategy {
	return []Strategy{StrategyMerge, StrategyBinary, StrategyGalloping, StrategyLookup}
}

// ParseStrategy accepts the strategy names plus "linear" for merge and
// "hybrid" for galloping.
func ParseStrategy(name string) (Strategy, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return StrategyAuto, true
	case "merge", "linear":
		return StrategyMerge, true
	case "binary":
		return StrategyBinary, true
	case "galloping", "hybrid":
		return StrategyGalloping, true
	case "lookup":
		return StrategyLookup, true
	}
	return StrategyAuto, false
}

// DefaultCrossover is the factor applied to small*log2(big) before a search
// strategy is preferred over merging. Calibrate per machine.
const DefaultCrossover = 1.0

// Selector picks the cheapest of merge, binary and galloping from the lengths
// of the two clipped lists. It is pure and allocation free.
type Selector struct {
	// Crossover scales the merge/search threshold. Zero means DefaultCrossover.
	Crossover float64
}

// Select returns StrategyMerge unless big > small*ceil(log2(big))*Crossover.
// Past that point binary search wins when small*small < big, i.e. when the
// average gap between driver rows exceeds sqrt(big); galloping wins otherwise.
func (s Selector) Select(lenA, lenB int) Strategy {
	big, small := lenA, lenB
	if small > big {
		big, small = small, big
	}
	if small == 0 {
		return StrategyMerge
	}

	c := s.Crossover
	if c <= 0 {
		c = DefaultCrossover
	}
	if float64(big) <= float64(small)*float64(CeilLog2(big))*c {
		return StrategyMerge
	}
	if big/small > small {
		return StrategyBinary
	}
	return StrategyGalloping
}

// CeilLog2 returns ceil(log2(n)), never less than 1.
func CeilLog2(n int) int {
	if n <= 2 {
		return 1
	}
	return bits.Len(uint(n - 1))
}
