package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"appointments/internal/db"
	apperrors "appointments/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a disposable database named by TEST_DATABASE_URL.
func TestPostgresBookingRepository(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	database, err := OpenPostgres(ctx, dsn)
	require.NoError(t, err)
	defer database.Close()

	_, err = database.ExecContext(ctx, `DROP TABLE IF EXISTS bookings`)
	require.NoError(t, err)

	repo := NewPostgresBookingRepository(database)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	require.NoError(t, repo.Initialize(ctx))
	require.NoError(t, repo.Initialize(ctx))

	for _, name := range []string{"ana", "ben", "cleo"} {
		b := booking(name, "2024-06-01", "09:00:00")
		b.BookedAt = time.Now().UTC().Truncate(time.Microsecond)
		require.NoError(t, repo.Append(ctx, b))
	}

	require.NoError(t, repo.DeleteAt(ctx, 1))
	assert.ErrorIs(t, repo.DeleteAt(ctx, 2), apperrors.ErrInvalidIndex)
	assert.ErrorIs(t, repo.DeleteAt(ctx, -1), apperrors.ErrInvalidIndex)

	all, err = repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "ana", all[0].Name)
	assert.Equal(t, "cleo", all[1].Name)

	removed, err := repo.DeleteWhere(ctx, func(b db.Booking) bool { return b.Name == "ana" })
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	all, err = repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "cleo", all[0].Name)
}
