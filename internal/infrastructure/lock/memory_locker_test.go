package lock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/perecibles-api/internal/domain"
)

func TestMemoryLocker_Exclusion(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLocker()

	first, err := l.Obtain(ctx, "job", time.Minute)
	require.NoError(t, err)

	_, err = l.Obtain(ctx, "job", time.Minute)
	assert.ErrorIs(t, err, domain.ErrConflict)

	// otra clave es independiente
	other, err := l.Obtain(ctx, "otro", time.Minute)
	require.NoError(t, err)
	require.NoError(t, other.Release(ctx))

	require.NoError(t, first.Release(ctx))
	again, err := l.Obtain(ctx, "job", time.Minute)
	require.NoError(t, err)
	require.NoError(t, again.Release(ctx))
}

func TestMemoryLocker_Expira(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := NewMemoryLocker()
	l.clock = func() time.Time { return now }

	stale, err := l.Obtain(ctx, "job", time.Second)
	require.NoError(t, err)

	now = now.Add(2 * time.Second)
	fresh, err := l.Obtain(ctx, "job", time.Minute)
	require.NoError(t, err, "el lock vencido se puede volver a tomar")

	// liberar el lock viejo no suelta el nuevo
	require.NoError(t, stale.Release(ctx))
	_, err = l.Obtain(ctx, "job", time.Minute)
	assert.ErrorIs(t, err, domain.ErrConflict)
	require.NoError(t, fresh.Release(ctx))
}
