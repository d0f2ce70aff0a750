//go:build integration

package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"rwa-ledger/internal/carbon"
	"rwa-ledger/internal/lifecycle"
	"rwa-ledger/pkg/sentinel"
	"rwa-ledger/pkg/testutil/containers"
)

func TestPostgresStores(t *testing.T) {
	ctx := context.Background()
	pg := containers.NewPostgresContainer(t)
	require.NoError(t, Migrate(ctx, pg.DB))

	t.Run("record round trip and not found", func(t *testing.T) {
		store := NewRecordStore[carbon.RetirementRecord](pg.DB, "carbon_retirements")

		_, err := store.Find(ctx, "RET-404")
		require.ErrorIs(t, err, sentinel.ErrNotFound)

		record := carbon.RetirementRecord{
			RetirementID:      "RET-001",
			CreditsRetired:    400,
			RetirementPurpose: "offset",
			RetirementEntity:  "addr-holder",
		}
		require.NoError(t, store.Save(ctx, record.RetirementID, record))

		got, err := store.Find(ctx, "RET-001")
		require.NoError(t, err)
		require.Equal(t, record, got)

		// resubmitting the same id replaces the stored record
		record.CreditsRetired = 500
		require.NoError(t, store.Save(ctx, record.RetirementID, record))
		got, err = store.Find(ctx, "RET-001")
		require.NoError(t, err)
		require.Equal(t, uint64(500), got.CreditsRetired)
	})

	t.Run("list pages ascending with exclusive cursor and page cap", func(t *testing.T) {
		store := NewRecordStore[carbon.VerificationRecord](pg.DB, "carbon_verifications")
		for i := 0; i < 45; i++ {
			id := fmt.Sprintf("VER-%03d", i)
			require.NoError(t, store.Save(ctx, id, carbon.VerificationRecord{
				VerificationID:  id,
				CreditsVerified: uint64(i),
			}))
		}

		first, err := store.List(ctx, "", 1000)
		require.NoError(t, err)
		require.Len(t, first, lifecycle.MaxPageLimit)
		require.Equal(t, "VER-000", first[0].ID)

		second, err := store.List(ctx, first[len(first)-1].ID, 1000)
		require.NoError(t, err)
		require.Len(t, second, 15)
		require.Equal(t, "VER-030", second[0].ID)

		// pages are independent and idempotent
		again, err := store.List(ctx, first[len(first)-1].ID, 1000)
		require.NoError(t, err)
		require.Equal(t, second, again)
	})

	t.Run("aggregate load before save is not initialized", func(t *testing.T) {
		store := NewAggregateStore[carbon.ProjectInfo](pg.DB, "carbon")

		_, err := store.Load(ctx)
		require.True(t, errors.Is(err, sentinel.ErrNotInitialized))

		info := carbon.ProjectInfo{
			ProjectID:          "PROJ-001",
			TotalCreditsIssued: 1000,
			CreditsAvailable:   600,
			CreditsRetired:     400,
			VerificationBody:   "addr-vb",
		}
		require.NoError(t, store.Save(ctx, info))

		got, err := store.Load(ctx)
		require.NoError(t, err)
		require.Equal(t, info.TotalCreditsIssued, got.TotalCreditsIssued)
		require.Equal(t, got.TotalCreditsIssued, got.CreditsAvailable+got.CreditsRetired)

		// save is an idempotent overwrite
		info.CreditsAvailable = 500
		info.CreditsRetired = 500
		require.NoError(t, store.Save(ctx, info))
		got, err = store.Load(ctx)
		require.NoError(t, err)
		require.Equal(t, uint64(500), got.CreditsRetired)
	})
}
