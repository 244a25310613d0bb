package store

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Udayam-Bangalore/Longevix-App-sub001/kvstore"
	"github.com/Udayam-Bangalore/Longevix-App-sub001/notify"
	"github.com/Udayam-Bangalore/Longevix-App-sub001/signal"
)

// Reminder times (local): the three meal reminders plus an end-of-day nudge
// sent only when nothing was logged yet.
var (
	breakfastReminder = reminder{8, 0, "Breakfast time", "Log your breakfast to stay on track."}
	lunchReminder     = reminder{13, 0, "Lunch time", "Don't forget to log your lunch."}
	dinnerReminder    = reminder{19, 0, "Dinner time", "Log your dinner before the day ends."}
	endOfDayNudge     = reminder{21, 0, "Nothing logged today", "A quick entry keeps your streak alive."}
)

type reminder struct {
	hour, minute int
	title, body  string
}

// notificationPrefs is the durable projection; hasPermission stays in memory
// only because the OS can revoke it behind our back at any time.
type notificationPrefs struct {
	Enabled              bool   `json:"enabled"`
	LastNotificationDate string `json:"lastNotificationDate"`
}

const notificationsKey = "notifications"

type NotificationsStore struct {
	mu    sync.Mutex
	sched notify.Scheduler
	kv    *kvstore.Store
	log   *zap.Logger
	now   func() time.Time

	hasPermission bool
	prefs         notificationPrefs
}

// NewNotificationsStore loads persisted prefs and subscribes to meal-logged
// events so a fresh log re-evaluates the reminder schedule without the meals
// store calling in here directly.
func NewNotificationsStore(sched notify.Scheduler, signals *signal.Bus, kv *kvstore.Store, itemsToday func() int, log *zap.Logger) *NotificationsStore {
	s := &NotificationsStore{sched: sched, kv: kv, log: log, now: time.Now}
	if ok, err := kv.Get(notificationsKey, &s.prefs); err != nil {
		log.Warn("failed to read persisted notification prefs", zap.Error(err))
	} else if !ok {
		s.prefs = notificationPrefs{}
	}
	signals.Subscribe(signal.EventMealLogged, func(signal.Event) {
		s.CheckAndScheduleReminders(itemsToday())
	})
	return s
}

func (s *NotificationsStore) HasPermission() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasPermission
}

func (s *NotificationsStore) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs.Enabled
}

// SetPermission records the OS-level grant. Losing permission cancels
// everything but keeps the stored enabled intent.
func (s *NotificationsStore) SetPermission(granted bool) {
	s.mu.Lock()
	s.hasPermission = granted
	s.mu.Unlock()
	if !granted {
		s.sched.CancelAll()
	}
}

func (s *NotificationsStore) SetEnabled(enabled bool) {
	s.mu.Lock()
	s.prefs.Enabled = enabled
	if !enabled {
		// Re-enabling should schedule again even on the same day.
		s.prefs.LastNotificationDate = ""
	}
	s.persistLocked()
	s.mu.Unlock()
	if !enabled {
		s.sched.CancelAll()
	}
}

// CheckAndScheduleReminders (re)schedules at most once per calendar day.
// With nothing logged yet it schedules the full set including the end-of-day
// nudge; otherwise meal-time reminders only. The scheduler cancels-all
// before scheduling, so repeat calls within a day cannot double-schedule.
func (s *NotificationsStore) CheckAndScheduleReminders(itemCountToday int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasPermission || !s.prefs.Enabled {
		return
	}
	today := s.now().Format("2006-01-02")
	if s.prefs.LastNotificationDate == today {
		return
	}

	s.sched.CancelAll()
	set := []reminder{breakfastReminder, lunchReminder, dinnerReminder}
	if itemCountToday == 0 {
		set = append(set, endOfDayNudge)
	}
	for _, r := range set {
		if err := s.sched.ScheduleRepeating(r.hour, r.minute, r.title, r.body); err != nil {
			s.log.Error("failed to schedule reminder", zap.String("title", r.title), zap.Error(err))
			return
		}
	}

	s.prefs.LastNotificationDate = today
	s.persistLocked()
	s.log.Info("reminders scheduled",
		zap.Int("count", len(set)),
		zap.Bool("endOfDayNudge", itemCountToday == 0))
}

func (s *NotificationsStore) persistLocked() {
	if err := s.kv.Set(notificationsKey, s.prefs); err != nil {
		s.log.Error("failed to persist notification prefs", zap.Error(err))
	}
}
