package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestScheduleRepeatingRegistersEntry(t *testing.T) {
	s := NewCronScheduler(func(title, body string) {}, zap.NewNop())
	defer s.Stop()

	require.NoError(t, s.ScheduleRepeating(8, 0, "Breakfast time!", "Log your breakfast"))
	require.NoError(t, s.ScheduleRepeating(13, 0, "Lunch time!", "Log your lunch"))
	assert.Len(t, s.cron.Entries(), 2)
}

func TestScheduleRepeatingRejectsBadTime(t *testing.T) {
	s := NewCronScheduler(func(title, body string) {}, zap.NewNop())
	defer s.Stop()

	assert.Error(t, s.ScheduleRepeating(24, 0, "x", "y"))
	assert.Error(t, s.ScheduleRepeating(8, 60, "x", "y"))
	assert.Len(t, s.cron.Entries(), 0)
}

func TestCancelAllClearsEntries(t *testing.T) {
	s := NewCronScheduler(func(title, body string) {}, zap.NewNop())
	defer s.Stop()

	require.NoError(t, s.ScheduleRepeating(19, 0, "Dinner time!", "Log your dinner"))
	s.CancelAll()
	assert.Len(t, s.cron.Entries(), 0)
}
