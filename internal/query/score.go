package query

import (
	"math"
	"strconv"
	"strings"
)

// ParseScore reads a score-mode answer. It accepts the first token of the
// answer when it is a number in [0,1].
func ParseScore(answer string) (float64, bool) {
	fields := strings.Fields(answer)
	if len(fields) == 0 {
		return 0, false
	}
	tok := strings.TrimRight(fields[0], ".,;")
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil || math.IsNaN(v) || v < 0 || v > 1 {
		return 0, false
	}
	return v, true
}
