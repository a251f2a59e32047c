package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupCaseInsensitive(t *testing.T) {
	ent, err := Lookup("cinematic")
	require.NoError(t, err)
	assert.Equal(t, Cinematic, ent.Plan)
	require.NotNil(t, ent.MaxSeconds)
	assert.Equal(t, 300, *ent.MaxSeconds)
	assert.Equal(t, 180, ent.DefaultSeconds)
	assert.True(t, ent.Premium)
}

func TestLookupUnknownPlan(t *testing.T) {
	_, err := Lookup("Platinum")
	assert.ErrorIs(t, err, ErrUnknownPlan)
}

func TestLifetimeHasNoLengthCap(t *testing.T) {
	ent, err := Get(Lifetime)
	require.NoError(t, err)
	assert.Nil(t, ent.MaxSeconds)
	assert.Equal(t, 60, ent.DefaultSeconds)
	assert.True(t, Unlimited(ent.VideoQuota))
	assert.True(t, Unlimited(ent.DownloadQuota))
}

func TestFreeQuotas(t *testing.T) {
	ent, err := Get(Free)
	require.NoError(t, err)
	assert.Equal(t, 1, ent.VideoQuota)
	assert.Equal(t, 1, ent.DownloadQuota)
	assert.False(t, ent.Premium)
	require.NotNil(t, ent.MaxSeconds)
	assert.Equal(t, 6, *ent.MaxSeconds)
}

func TestAllOrdered(t *testing.T) {
	all := All()
	require.Len(t, all, 5)
	assert.Equal(t, Free, all[0].Plan)
	assert.Equal(t, Lifetime, all[4].Plan)
}
