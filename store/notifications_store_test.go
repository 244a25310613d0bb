package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Udayam-Bangalore/Longevix-App-sub001/gateway"
	"github.com/Udayam-Bangalore/Longevix-App-sub001/kvstore"
	"github.com/Udayam-Bangalore/Longevix-App-sub001/signal"
)

type scheduledCall struct {
	hour, minute int
	title        string
}

type recordingScheduler struct {
	mu        sync.Mutex
	scheduled []scheduledCall
	cancels   int
}

func (r *recordingScheduler) ScheduleRepeating(hour, minute int, title, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scheduled = append(r.scheduled, scheduledCall{hour, minute, title})
	return nil
}

func (r *recordingScheduler) CancelAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancels++
	r.scheduled = nil
}

func (r *recordingScheduler) titles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.scheduled))
	for i, c := range r.scheduled {
		out[i] = c.title
	}
	return out
}

func newTestNotificationsStore(t *testing.T, itemsToday func() int) (*NotificationsStore, *recordingScheduler, *signal.Bus) {
	t.Helper()
	kv, err := kvstore.Open(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	sched := &recordingScheduler{}
	bus := signal.NewBus(zap.NewNop())
	if itemsToday == nil {
		itemsToday = func() int { return 0 }
	}
	s := NewNotificationsStore(sched, bus, kv, itemsToday, zap.NewNop())
	s.SetPermission(true)
	s.SetEnabled(true)
	return s, sched, bus
}

func TestSchedulesAtMostOncePerDay(t *testing.T) {
	s, sched, _ := newTestNotificationsStore(t, nil)
	day := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return day }

	s.CheckAndScheduleReminders(0)
	first := sched.cancels
	require.Len(t, sched.titles(), 4)

	// Same day, same inputs: no-op with respect to the scheduler.
	s.CheckAndScheduleReminders(0)
	assert.Equal(t, first, sched.cancels)
	assert.Len(t, sched.titles(), 4)

	// Next day schedules again.
	day = day.Add(24 * time.Hour)
	s.CheckAndScheduleReminders(0)
	assert.Equal(t, first+1, sched.cancels)
}

func TestFullSetWhenNothingLoggedYet(t *testing.T) {
	s, sched, _ := newTestNotificationsStore(t, nil)
	s.CheckAndScheduleReminders(0)
	titles := sched.titles()
	require.Len(t, titles, 4)
	assert.Contains(t, titles, endOfDayNudge.title)
}

func TestMealTimeOnlyWhenFoodAlreadyLogged(t *testing.T) {
	s, sched, _ := newTestNotificationsStore(t, nil)
	s.CheckAndScheduleReminders(3)
	titles := sched.titles()
	require.Len(t, titles, 3)
	assert.NotContains(t, titles, endOfDayNudge.title)
}

func TestRequiresPermissionAndOptIn(t *testing.T) {
	s, sched, _ := newTestNotificationsStore(t, nil)

	s.SetPermission(false)
	s.CheckAndScheduleReminders(0)
	assert.Empty(t, sched.titles())

	s.SetPermission(true)
	s.SetEnabled(false)
	s.CheckAndScheduleReminders(0)
	assert.Empty(t, sched.titles())
}

func TestPermissionAndEnabledTrackedIndependently(t *testing.T) {
	s, _, _ := newTestNotificationsStore(t, nil)
	// OS revokes permission; the stored intent persists.
	s.SetPermission(false)
	assert.False(t, s.HasPermission())
	assert.True(t, s.Enabled())
}

func TestMealLoggedEventReevaluatesSchedule(t *testing.T) {
	items := 0
	s, sched, bus := newTestNotificationsStore(t, func() int { return items })
	_ = s

	items = 2
	bus.Publish(signal.EventMealLogged)

	titles := sched.titles()
	require.Len(t, titles, 3, "event-driven evaluation uses the item count at that moment")
	assert.NotContains(t, titles, endOfDayNudge.title)
}

// Wires a real meals store to the notifications store the way the app does
// and logs the first food of the day: by the time the event fires the meal
// list is already re-read, so the count reflects the logged item and the
// end-of-day nudge must not be scheduled.
func TestFirstLoggedFoodSchedulesMealTimeSetOnly(t *testing.T) {
	var serverLunch *gateway.Meal
	var mu sync.Mutex

	api := &fakeMealsAPI{}
	api.todayMeals = func(context.Context, string) ([]gateway.Meal, error) {
		mu.Lock()
		defer mu.Unlock()
		if serverLunch == nil {
			return nil, nil
		}
		return []gateway.Meal{*serverLunch}, nil
	}
	api.createMeal = func(_ context.Context, _ string, req gateway.CreateMealRequest) (*gateway.Meal, error) {
		mu.Lock()
		defer mu.Unlock()
		items := make([]gateway.FoodItem, len(req.Items))
		copy(items, req.Items)
		serverLunch = &gateway.Meal{ID: "srv-lunch", Name: req.Name, Items: items}
		return serverLunch, nil
	}

	bus := signal.NewBus(zap.NewNop())
	meals := NewMealsStore(api, staticToken{}, bus, zap.NewNop())

	kv, err := kvstore.Open(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	sched := &recordingScheduler{}
	notifications := NewNotificationsStore(sched, bus, kv, meals.ItemsLoggedToday, zap.NewNop())
	notifications.SetPermission(true)
	notifications.SetEnabled(true)

	rice := gateway.FoodItem{Name: "Rice", Quantity: 150, Unit: "g", Calories: 195}
	require.NoError(t, meals.AddFood(context.Background(), "Lunch", rice))
	require.GreaterOrEqual(t, meals.ItemsLoggedToday(), 1)

	titles := sched.titles()
	require.Len(t, titles, 3)
	assert.NotContains(t, titles, endOfDayNudge.title)
}

func TestEnabledPrefPersistsAcrossRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	kv, err := kvstore.Open(path)
	require.NoError(t, err)
	bus := signal.NewBus(zap.NewNop())
	s := NewNotificationsStore(&recordingScheduler{}, bus, kv, func() int { return 0 }, zap.NewNop())
	s.SetEnabled(true)

	kv2, err := kvstore.Open(path)
	require.NoError(t, err)
	s2 := NewNotificationsStore(&recordingScheduler{}, bus, kv2, func() int { return 0 }, zap.NewNop())
	assert.True(t, s2.Enabled())
	assert.False(t, s2.HasPermission(), "permission is never persisted")
}
