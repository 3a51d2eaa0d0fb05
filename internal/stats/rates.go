// Package stats holds the small derived metrics shared by every endpoint.
// None of them fail: a zero denominator has a defined result.
package stats

import "math"

const (
	QuitAtStart   = "Quit at Start"
	QuitWhileTied = "Quit While Tied"
	RageQuit      = "Rage-Quit"
)

// Round rounds half-up (toward +Inf), so -2.5 becomes -2.
func Round(x float64) int {
	return int(math.Floor(x + 0.5))
}

// WinRate is a percentage in [0, 100].
func WinRate(wins, matches int) float64 {
	if matches <= 0 {
		return 0
	}
	return float64(wins) / float64(matches) * 100
}

// KDR falls back to the kill count when there are no deaths.
func KDR(kills, deaths int) float64 {
	if deaths == 0 {
		return float64(kills)
	}
	return float64(kills) / float64(deaths)
}

// RoundTo rounds to the given number of decimals.
func RoundTo(x float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(x*p) / p
}

// Percentile maps a 1-based rank among total qualified players onto 0..100,
// the top rank being 100.
func Percentile(rank, total int) int {
	if total <= 0 || rank <= 0 {
		return 0
	}
	return Round((1 - float64(rank-1)/float64(total)) * 100)
}

// ClassifyDisconnect labels a match that ended before its scheduled rounds,
// given the rounds each side had won when it stopped.
func ClassifyDisconnect(winnerRounds, loserRounds int) string {
	if winnerRounds <= 1 && loserRounds == 0 {
		return QuitAtStart
	}
	if winnerRounds == loserRounds {
		return QuitWhileTied
	}
	return RageQuit
}

// IsDisconnect reports whether the rounds played fall short of the total.
func IsDisconnect(myRounds, oppRounds, roundsTotal int) bool {
	return myRounds+oppRounds < roundsTotal
}
