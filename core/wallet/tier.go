package wallet

// Tier thresholds on the smoothed balance, in base units.
const (
	whaleThreshold = 1_000_000
	midThreshold   = 10_000
)

// window is how many of the latest balance snapshots the moving average
// considers.
const window = 7

// Classify buckets a wallet given its balance history, most recent last.
// The tier follows the moving average of the last few snapshots rather than
// the spot balance, so a single spike doesn't flip the bucket.
func Classify(history []int64) Tier {
	if len(history) == 0 {
		return TierLow
	}

	start := 0
	if len(history) > window {
		start = len(history) - window
	}

	var sum int64
	for _, b := range history[start:] {
		sum += b
	}
	avg := sum / int64(len(history)-start)

	switch {
	case avg >= whaleThreshold:
		return TierWhale
	case avg >= midThreshold:
		return TierMid
	default:
		return TierLow
	}
}
