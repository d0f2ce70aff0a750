package lifecycle

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "rwa-ledger/pkg/domain-errors"
)

func TestMovePreservesSum(t *testing.T) {
	available, removed := uint64(600), uint64(400)
	before := available + removed

	require.NoError(t, Move(&available, &removed, 250))
	assert.Equal(t, uint64(350), available)
	assert.Equal(t, uint64(650), removed)
	assert.Equal(t, before, available+removed)
}

func TestMoveRejectsOverdraw(t *testing.T) {
	available, removed := uint64(500), uint64(100)

	err := Move(&available, &removed, 600)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeCapacityExceeded))
	// a rejected move must leave both fields untouched
	assert.Equal(t, uint64(500), available)
	assert.Equal(t, uint64(100), removed)
}

func TestIssueGrowsBothFields(t *testing.T) {
	issued, available := uint64(0), uint64(0)

	require.NoError(t, Issue(&issued, &available, 1000))
	assert.Equal(t, uint64(1000), issued)
	assert.Equal(t, uint64(1000), available)
}

func TestIssueRejectsOverflow(t *testing.T) {
	issued, available := uint64(math.MaxUint64-5), uint64(10)

	err := Issue(&issued, &available, 6)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeCapacityExceeded))
	assert.Equal(t, uint64(math.MaxUint64-5), issued)
	assert.Equal(t, uint64(10), available)
}

func TestSubRejectsNegative(t *testing.T) {
	_, err := Sub(3, 4)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeCapacityExceeded))
}

func TestTruncateUnits(t *testing.T) {
	got, err := TruncateUnits(decimal.RequireFromString("123.999"))
	require.NoError(t, err)
	assert.Equal(t, uint64(123), got)

	_, err = TruncateUnits(decimal.RequireFromString("-1"))
	require.Error(t, err)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, MaxPageLimit, ClampLimit(0))
	assert.Equal(t, MaxPageLimit, ClampLimit(1000))
	assert.Equal(t, 5, ClampLimit(5))
}
