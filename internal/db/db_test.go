package db

import (
	"context"
	"testing"

	"subhive/internal/store/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed_CreatesDefaultsOnce(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()

	require.NoError(t, Seed(ctx, st))
	require.NoError(t, Seed(ctx, st))

	subs, err := st.Subreddits().List(ctx)
	require.NoError(t, err)
	assert.Len(t, subs, 3)

	system, err := st.Users().GetByName(ctx, systemUser)
	require.NoError(t, err)
	for _, sub := range subs {
		assert.Equal(t, system.ID, sub.CreatorID)
		assert.Equal(t, 1, sub.MemberCount)
	}
	assert.Len(t, system.JoinedSubreddits, 3)
}
