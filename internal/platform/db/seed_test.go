package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinimumWageHistoryIsContiguous(t *testing.T) {
	for i := 1; i < len(minimumWageHistory); i++ {
		prev := minimumWageHistory[i-1]
		curr := minimumWageHistory[i]
		if assert.NotNil(t, prev.ValidTo, "only the last record may be open ended") {
			assert.Equal(t, curr.ValidFrom, prev.ValidTo.AddDate(0, 0, 1))
		}
		assert.True(t, curr.Amount.GreaterThan(prev.Amount))
	}
	assert.Nil(t, minimumWageHistory[len(minimumWageHistory)-1].ValidTo)
}
