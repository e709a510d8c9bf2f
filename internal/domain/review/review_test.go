package review

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReview(t *testing.T) {
	r, err := NewReview(uuid.New(), uuid.New(), nil, 5, " Très bon travail ")
	require.NoError(t, err)
	assert.Equal(t, ReviewStatusPending, r.Status)
	assert.Equal(t, "Très bon travail", r.Comment)
	assert.Len(t, r.GetDomainEvents(), 1)

	for _, bad := range []int{0, 6, -1} {
		_, err := NewReview(uuid.New(), uuid.New(), nil, bad, "")
		assert.Error(t, err, bad)
	}
}

func TestReview_Moderation(t *testing.T) {
	r, err := NewReview(uuid.New(), uuid.New(), nil, 2, "Retard")
	require.NoError(t, err)

	assert.Error(t, r.RespondWith("  "))
	require.NoError(t, r.RespondWith("Désolé pour le retard"))
	assert.NotNil(t, r.RepliedAt)

	require.NoError(t, r.Publish())
	assert.Error(t, r.Publish())
	require.NoError(t, r.Hide())
	assert.Equal(t, ReviewStatusHidden, r.Status)
	require.NoError(t, r.Publish())
}

func TestComputeStats(t *testing.T) {
	stats := ComputeStats(map[int]int64{5: 3, 4: 1, 1: 1})
	assert.Equal(t, int64(5), stats.Count)
	assert.Equal(t, 4.0, stats.Average)
	assert.Equal(t, int64(0), stats.Distribution[3])
	assert.Len(t, stats.Distribution, 5)

	empty := ComputeStats(nil)
	assert.Zero(t, empty.Count)
	assert.Zero(t, empty.Average)

	third := ComputeStats(map[int]int64{5: 2, 4: 1})
	assert.Equal(t, 4.67, third.Average)
}
