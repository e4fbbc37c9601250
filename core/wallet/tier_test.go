package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, TierLow, Classify(nil))
	assert.Equal(t, TierLow, Classify([]int64{0}))
	assert.Equal(t, TierLow, Classify([]int64{9_999}))
	assert.Equal(t, TierMid, Classify([]int64{10_000}))
	assert.Equal(t, TierWhale, Classify([]int64{1_000_000}))
}

func TestClassifySmoothsSpikes(t *testing.T) {
	// One whale-sized spike among small balances must not flip the tier.
	history := []int64{100, 100, 100, 100, 100, 100, 1_000_000}
	assert.Equal(t, TierMid, Classify(history))

	// A sustained high balance does.
	history = []int64{1_000_000, 1_000_000, 1_000_000, 1_000_000, 1_000_000, 1_000_000, 1_000_000}
	assert.Equal(t, TierWhale, Classify(history))
}

func TestClassifyWindow(t *testing.T) {
	// Only the last 7 snapshots count: the huge old balances fall out.
	history := []int64{5_000_000, 5_000_000, 5_000_000, 0, 0, 0, 0, 0, 0, 0}
	assert.Equal(t, TierLow, Classify(history))
}

func TestHistoryOf(t *testing.T) {
	trs := []Transaction{
		{Amount: 50},  // newest
		{Amount: -20},
		{Amount: 100}, // oldest
	}

	got := historyOf(130, trs)
	assert.Equal(t, []int64{100, 80, 130}, got)
}
