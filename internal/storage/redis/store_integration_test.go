//go:build integration

package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"rwa-ledger/internal/oil"
	"rwa-ledger/pkg/sentinel"
	"rwa-ledger/pkg/testutil/containers"
)

func TestRedisAggregateStore(t *testing.T) {
	ctx := context.Background()
	rc := containers.NewRedisContainer(t)

	store := NewAggregateStore[oil.ReserveInfo](rc.Client, "oil")

	_, err := store.Load(ctx)
	require.ErrorIs(t, err, sentinel.ErrNotInitialized)

	info := oil.ReserveInfo{
		ReserveID:            "RES-001",
		TotalReservesBarrels: 500,
		AvailableBarrels:     400,
		ExtractedBarrels:     100,
		ExtractionCompany:    "addr-extraction-co",
	}
	require.NoError(t, store.Save(ctx, info))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, info.ReserveID, got.ReserveID)
	require.Equal(t, got.TotalReservesBarrels, got.AvailableBarrels+got.ExtractedBarrels)

	info.AvailableBarrels = 300
	info.ExtractedBarrels = 200
	require.NoError(t, store.Save(ctx, info))

	got, err = store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(200), got.ExtractedBarrels)

	require.NoError(t, rc.FlushAll(ctx))
	_, err = store.Load(ctx)
	require.ErrorIs(t, err, sentinel.ErrNotInitialized)
}
