package intervention

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIntervention(t *testing.T, start time.Time) *Intervention {
	t.Helper()
	i, err := NewIntervention(uuid.New(), uuid.New(), "Entretien chaudière", start, start.Add(2*time.Hour))
	require.NoError(t, err)
	return i
}

func TestNewIntervention(t *testing.T) {
	start := time.Now().Add(48 * time.Hour)
	i := newTestIntervention(t, start)
	assert.Equal(t, InterventionStatusScheduled, i.Status)
	assert.Len(t, i.GetDomainEvents(), 1)

	_, err := NewIntervention(uuid.New(), uuid.New(), "X", start, start)
	assert.Error(t, err, "end must be after start")
	_, err = NewIntervention(uuid.New(), uuid.New(), "X", start, start.Add(15*24*time.Hour))
	assert.Error(t, err, "too long")
	_, err = NewIntervention(uuid.New(), uuid.New(), "", start, start.Add(time.Hour))
	assert.Error(t, err)
}

func TestIntervention_Overlaps(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	i := newTestIntervention(t, base) // 9h-11h

	assert.True(t, i.Overlaps(base.Add(time.Hour), base.Add(3*time.Hour)))
	assert.True(t, i.Overlaps(base.Add(-time.Hour), base.Add(30*time.Minute)))
	assert.True(t, i.Overlaps(base.Add(30*time.Minute), base.Add(time.Hour)))
	assert.False(t, i.Overlaps(base.Add(2*time.Hour), base.Add(3*time.Hour)), "back-to-back")
	assert.False(t, i.Overlaps(base.Add(-2*time.Hour), base))
}

func TestIntervention_Lifecycle(t *testing.T) {
	i := newTestIntervention(t, time.Now().Add(time.Hour))

	assert.Error(t, i.Complete("rien"), "must start first")
	require.NoError(t, i.Start())
	assert.Error(t, i.Cancel())
	assert.Error(t, i.Reschedule(time.Now(), time.Now().Add(time.Hour)))
	require.NoError(t, i.Complete(" Joint changé "))
	assert.Equal(t, "Joint changé", i.Report)
	assert.Equal(t, InterventionStatusCompleted, i.Status)
}

func TestIntervention_RescheduleResetsReminder(t *testing.T) {
	i := newTestIntervention(t, time.Now().Add(time.Hour))
	i.MarkReminderSent(time.Now())

	newStart := time.Now().Add(72 * time.Hour)
	require.NoError(t, i.Reschedule(newStart, newStart.Add(time.Hour)))
	assert.Nil(t, i.ReminderSentAt)
	assert.Equal(t, newStart, i.ScheduledStart)
}

func TestIntervention_NeedsReminder(t *testing.T) {
	now := time.Now()
	soon := newTestIntervention(t, now.Add(20*time.Hour))
	far := newTestIntervention(t, now.Add(30*time.Hour))

	assert.True(t, soon.NeedsReminder(now, 24*time.Hour))
	assert.False(t, far.NeedsReminder(now, 24*time.Hour))

	soon.MarkReminderSent(now)
	assert.False(t, soon.NeedsReminder(now, 24*time.Hour))

	require.NoError(t, far.Cancel())
	assert.False(t, far.NeedsReminder(now.Add(10*time.Hour), 24*time.Hour))
}
