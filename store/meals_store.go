package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Udayam-Bangalore/Longevix-App-sub001/gateway"
	"github.com/Udayam-Bangalore/Longevix-App-sub001/signal"
)

// CanonicalMealNames is the fixed set of rows the UI always renders.
var CanonicalMealNames = []string{"Breakfast", "Lunch", "Dinner", "Snack"}

// MealsAPI is the slice of the gateway the meals store depends on.
type MealsAPI interface {
	TodayMeals(ctx context.Context, token string) ([]gateway.Meal, error)
	MealByID(ctx context.Context, token, mealID string) (*gateway.Meal, error)
	CreateMeal(ctx context.Context, token string, req gateway.CreateMealRequest) (*gateway.Meal, error)
	AddFood(ctx context.Context, token, mealID string, item gateway.FoodItem) (*gateway.Meal, error)
	RemoveFood(ctx context.Context, token, mealID, foodID string) error
	DailyStats(ctx context.Context, token string) (*gateway.DailyStats, error)
	WeeklyStats(ctx context.Context, token string) (*gateway.WeeklyStats, error)
	MonthlyStats(ctx context.Context, token string) (*gateway.MonthlyStats, error)
	StatsSummary(ctx context.Context, token string) (*gateway.StatsSummary, error)
}

// TokenSource supplies the bearer credential, normally the auth store.
type TokenSource interface {
	Token() string
}

// Meal is the UI-facing shape. Placeholder marks the client-synthesized
// stand-in used when the server has no record for that name yet; placeholders
// never go over the wire.
type Meal struct {
	ID             string
	Name           string
	Items          []gateway.FoodItem
	Calories       float64
	Micronutrients map[string]float64
	Placeholder    bool
}

// Stats slice names used for the per-slice loading/error flags.
const (
	StatsDaily        = "daily"
	StatsWeekly       = "weekly"
	StatsMonthly      = "monthly"
	StatsSummarySlice = "summary"
)

type MealsStore struct {
	mu      sync.Mutex
	api     MealsAPI
	tokens  TokenSource
	signals *signal.Bus
	log     *zap.Logger
	now     func() time.Time

	meals      []Meal
	generation uint64
	loading    bool
	lastError  string

	daily        *gateway.DailyStats
	weekly       *gateway.WeeklyStats
	monthly      *gateway.MonthlyStats
	summary      *gateway.StatsSummary
	statsLoading map[string]bool
	statsErrors  map[string]string
}

func NewMealsStore(api MealsAPI, tokens TokenSource, signals *signal.Bus, log *zap.Logger) *MealsStore {
	return &MealsStore{
		api:          api,
		tokens:       tokens,
		signals:      signals,
		log:          log,
		now:          time.Now,
		meals:        placeholderMeals(),
		statsLoading: make(map[string]bool),
		statsErrors:  make(map[string]string),
	}
}

// Meals returns a copy of the current list; consumers never observe a
// partially replaced slice.
func (s *MealsStore) Meals() []Meal {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Meal, len(s.meals))
	copy(out, s.meals)
	return out
}

func (s *MealsStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *MealsStore) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// ItemsLoggedToday counts food items across authoritative meals; the
// notifications store uses it to pick the reminder set.
func (s *MealsStore) ItemsLoggedToday() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.meals {
		if !m.Placeholder {
			n += len(m.Items)
		}
	}
	return n
}

// Refresh replaces the meal list wholesale from the latest server snapshot
// merged with fresh placeholders. Concurrent calls race; a monotonic
// generation stamp discards completions of superseded calls so the last
// *issued* refresh wins.
func (s *MealsStore) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.loading = true
	s.mu.Unlock()

	s.signals.IncrementPending()
	defer s.signals.DecrementPending()

	remote, err := s.api.TodayMeals(ctx, s.tokens.Token())

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		// A newer refresh was issued while this one was in flight.
		return nil
	}
	s.loading = false
	if err != nil {
		s.lastError = userMessage(err)
		s.signals.SetGlobalError(s.lastError)
		s.log.Warn("meal refresh failed", zap.Error(err))
		return err
	}
	s.meals = mergeWithPlaceholders(remote)
	s.lastError = ""
	return nil
}

// AddFood logs one food item under a canonical meal name. If an
// authoritative meal already exists the item is appended to it, otherwise a
// new meal is created with the item as its initial contents. After a
// successful mutation the store re-reads meals and stats from the server in
// parallel, never an optimistic local merge, so concurrent sessions can't
// drift the list. A failed mutation records the error and skips the refresh.
func (s *MealsStore) AddFood(ctx context.Context, mealName string, item gateway.FoodItem) error {
	if !isCanonicalName(mealName) {
		return fmt.Errorf("unknown meal name %q", mealName)
	}
	if item.ID == "" {
		item.ID = s.mintLocalID()
	}

	s.signals.IncrementPending()

	mealID, exists := s.authoritativeMealID(mealName)
	var err error
	if exists {
		_, err = s.api.AddFood(ctx, s.tokens.Token(), mealID, item)
	} else {
		_, err = s.api.CreateMeal(ctx, s.tokens.Token(), gateway.CreateMealRequest{
			Name:  mealName,
			Items: []gateway.FoodItem{item},
		})
	}
	s.signals.DecrementPending()

	if err != nil {
		s.mu.Lock()
		s.lastError = userMessage(err)
		s.mu.Unlock()
		s.signals.SetGlobalError(userMessage(err))
		s.log.Warn("add food failed", zap.String("meal", mealName), zap.Error(err))
		return err
	}

	// Resynchronize both views; their completions may land in either order
	// and neither depends on the other's result.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := s.Refresh(ctx); err != nil {
			s.log.Warn("post-mutation meal refresh failed", zap.Error(err))
		}
	}()
	go func() {
		defer wg.Done()
		if err := s.RefreshStats(ctx); err != nil {
			s.log.Warn("post-mutation stats refresh failed", zap.Error(err))
		}
	}()
	wg.Wait()

	// Publish only after the re-read: subscribers read this store's state and
	// must see the post-mutation list, not the one from before the call.
	s.signals.Publish(signal.EventMealLogged)
	return nil
}

// RemoveFood deletes one item. The call returns no updated meal; callers
// re-fetch details via MealDetails afterwards.
func (s *MealsStore) RemoveFood(ctx context.Context, mealID, foodID string) error {
	s.signals.IncrementPending()
	defer s.signals.DecrementPending()

	if err := s.api.RemoveFood(ctx, s.tokens.Token(), mealID, foodID); err != nil {
		s.mu.Lock()
		s.lastError = userMessage(err)
		s.mu.Unlock()
		s.signals.SetGlobalError(userMessage(err))
		return err
	}
	return nil
}

func (s *MealsStore) MealDetails(ctx context.Context, mealID string) (*Meal, error) {
	s.signals.IncrementPending()
	defer s.signals.DecrementPending()

	remote, err := s.api.MealByID(ctx, s.tokens.Token(), mealID)
	if err != nil {
		s.mu.Lock()
		s.lastError = userMessage(err)
		s.mu.Unlock()
		s.signals.SetGlobalError(userMessage(err))
		return nil, err
	}
	m := fromRemote(*remote)
	return &m, nil
}

// authoritativeMealID looks up the server meal for a name, skipping
// placeholders.
func (s *MealsStore) authoritativeMealID(mealName string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.meals {
		if m.Name == mealName && !m.Placeholder {
			return m.ID, true
		}
	}
	return "", false
}

// mintLocalID gives client-created items a key before the server assigns a
// durable one, so the UI can key its lists immediately.
func (s *MealsStore) mintLocalID() string {
	return fmt.Sprintf("local-%d-%s", s.now().UnixMilli(), uuid.NewString()[:8])
}

func isCanonicalName(name string) bool {
	for _, n := range CanonicalMealNames {
		if n == name {
			return true
		}
	}
	return false
}

// mergeWithPlaceholders maps the server snapshot to the UI shape and fills
// gaps with placeholders: the result always has exactly one entry per
// canonical name, in canonical order. Duplicate server entries for one name
// keep the first.
func mergeWithPlaceholders(remote []gateway.Meal) []Meal {
	byName := make(map[string]gateway.Meal, len(remote))
	for _, m := range remote {
		if _, ok := byName[m.Name]; !ok {
			byName[m.Name] = m
		}
	}
	out := make([]Meal, 0, len(CanonicalMealNames))
	for _, name := range CanonicalMealNames {
		if m, ok := byName[name]; ok {
			out = append(out, fromRemote(m))
		} else {
			out = append(out, placeholderMeal(name))
		}
	}
	return out
}

// fromRemote recomputes calories from item calories instead of trusting the
// server's aggregate field; the recomputation is the documented contract.
func fromRemote(m gateway.Meal) Meal {
	total := 0.0
	for _, it := range m.Items {
		total += it.Calories
	}
	return Meal{
		ID:             m.ID,
		Name:           m.Name,
		Items:          m.Items,
		Calories:       total,
		Micronutrients: m.Micronutrients,
	}
}

func placeholderMeal(name string) Meal {
	return Meal{Name: name, Items: []gateway.FoodItem{}, Placeholder: true}
}

func placeholderMeals() []Meal {
	out := make([]Meal, 0, len(CanonicalMealNames))
	for _, name := range CanonicalMealNames {
		out = append(out, placeholderMeal(name))
	}
	return out
}
