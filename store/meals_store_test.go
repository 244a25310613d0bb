package store

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Udayam-Bangalore/Longevix-App-sub001/gateway"
	"github.com/Udayam-Bangalore/Longevix-App-sub001/signal"
)

type staticToken struct{}

func (staticToken) Token() string { return "test-token" }

// fakeMealsAPI delegates to whichever func fields a test sets; everything
// else returns empty success.
type fakeMealsAPI struct {
	mu         sync.Mutex
	todayMeals func(ctx context.Context, token string) ([]gateway.Meal, error)
	mealByID   func(ctx context.Context, token, mealID string) (*gateway.Meal, error)
	createMeal func(ctx context.Context, token string, req gateway.CreateMealRequest) (*gateway.Meal, error)
	addFood    func(ctx context.Context, token, mealID string, item gateway.FoodItem) (*gateway.Meal, error)
	removeFood func(ctx context.Context, token, mealID, foodID string) error
	daily      func(ctx context.Context, token string) (*gateway.DailyStats, error)

	todayCalls  int
	createCalls []gateway.CreateMealRequest
	addCalls    []string
}

func (f *fakeMealsAPI) TodayMeals(ctx context.Context, token string) ([]gateway.Meal, error) {
	f.mu.Lock()
	f.todayCalls++
	fn := f.todayMeals
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, token)
	}
	return nil, nil
}

func (f *fakeMealsAPI) MealByID(ctx context.Context, token, mealID string) (*gateway.Meal, error) {
	if f.mealByID != nil {
		return f.mealByID(ctx, token, mealID)
	}
	return &gateway.Meal{ID: mealID, Name: "Lunch"}, nil
}

func (f *fakeMealsAPI) CreateMeal(ctx context.Context, token string, req gateway.CreateMealRequest) (*gateway.Meal, error) {
	f.mu.Lock()
	f.createCalls = append(f.createCalls, req)
	fn := f.createMeal
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, token, req)
	}
	return &gateway.Meal{ID: "srv-1", Name: req.Name, Items: req.Items}, nil
}

func (f *fakeMealsAPI) AddFood(ctx context.Context, token, mealID string, item gateway.FoodItem) (*gateway.Meal, error) {
	f.mu.Lock()
	f.addCalls = append(f.addCalls, mealID)
	fn := f.addFood
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, token, mealID, item)
	}
	return &gateway.Meal{ID: mealID, Items: []gateway.FoodItem{item}}, nil
}

func (f *fakeMealsAPI) RemoveFood(ctx context.Context, token, mealID, foodID string) error {
	if f.removeFood != nil {
		return f.removeFood(ctx, token, mealID, foodID)
	}
	return nil
}

func (f *fakeMealsAPI) DailyStats(ctx context.Context, token string) (*gateway.DailyStats, error) {
	if f.daily != nil {
		return f.daily(ctx, token)
	}
	return &gateway.DailyStats{}, nil
}

func (f *fakeMealsAPI) WeeklyStats(ctx context.Context, token string) (*gateway.WeeklyStats, error) {
	return &gateway.WeeklyStats{}, nil
}

func (f *fakeMealsAPI) MonthlyStats(ctx context.Context, token string) (*gateway.MonthlyStats, error) {
	return &gateway.MonthlyStats{}, nil
}

func (f *fakeMealsAPI) StatsSummary(ctx context.Context, token string) (*gateway.StatsSummary, error) {
	return &gateway.StatsSummary{}, nil
}

func newTestMealsStore(api MealsAPI) (*MealsStore, *signal.Bus) {
	bus := signal.NewBus(zap.NewNop())
	return NewMealsStore(api, staticToken{}, bus, zap.NewNop()), bus
}

func mealNames(meals []Meal) []string {
	out := make([]string, len(meals))
	for i, m := range meals {
		out[i] = m.Name
	}
	return out
}

func TestRefreshAlwaysYieldsOneEntryPerCanonicalName(t *testing.T) {
	api := &fakeMealsAPI{
		todayMeals: func(context.Context, string) ([]gateway.Meal, error) {
			// Duplicate Lunch entries and a stale server calorie total.
			return []gateway.Meal{
				{ID: "m1", Name: "Lunch", Calories: 9999, Items: []gateway.FoodItem{
					{ID: "f1", Name: "Rice", Quantity: 150, Unit: "g", Calories: 195},
					{ID: "f2", Name: "Dal", Quantity: 100, Unit: "g", Calories: 120},
				}},
				{ID: "m2", Name: "Lunch"},
			}, nil
		},
	}
	s, _ := newTestMealsStore(api)

	require.NoError(t, s.Refresh(context.Background()))

	meals := s.Meals()
	assert.Equal(t, []string{"Breakfast", "Lunch", "Dinner", "Snack"}, mealNames(meals))

	lunch := meals[1]
	assert.Equal(t, "m1", lunch.ID, "first server entry wins on duplicates")
	assert.False(t, lunch.Placeholder)
	assert.Equal(t, 315.0, lunch.Calories, "calories recomputed from items, server total ignored")

	for _, i := range []int{0, 2, 3} {
		assert.True(t, meals[i].Placeholder)
		assert.Empty(t, meals[i].Items)
		assert.Zero(t, meals[i].Calories)
	}
}

func TestRefreshBeforeAnyServerDataYieldsPlaceholders(t *testing.T) {
	s, _ := newTestMealsStore(&fakeMealsAPI{})
	require.NoError(t, s.Refresh(context.Background()))
	meals := s.Meals()
	require.Len(t, meals, 4)
	for _, m := range meals {
		assert.True(t, m.Placeholder)
	}
}

func TestAddFoodCreatesThenAppends(t *testing.T) {
	// Server-side state the fake maintains: nothing until a meal is created.
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
	api.addFood = func(_ context.Context, _ string, mealID string, item gateway.FoodItem) (*gateway.Meal, error) {
		mu.Lock()
		defer mu.Unlock()
		serverLunch.Items = append(serverLunch.Items, item)
		return serverLunch, nil
	}

	s, _ := newTestMealsStore(api)
	ctx := context.Background()
	require.NoError(t, s.Refresh(ctx))

	// No authoritative Lunch yet: must take the create path.
	rice := gateway.FoodItem{Name: "Rice", Quantity: 150, Unit: "g", Calories: 195}
	require.NoError(t, s.AddFood(ctx, "Lunch", rice))
	require.Len(t, api.createCalls, 1)
	assert.Empty(t, api.addCalls)

	lunch := s.Meals()[1]
	assert.False(t, lunch.Placeholder)
	require.Len(t, lunch.Items, 1)
	assert.NotEmpty(t, lunch.Items[0].ID, "item carries an id after refresh")

	// Authoritative Lunch exists now: must take the append path.
	dal := gateway.FoodItem{Name: "Dal", Quantity: 100, Unit: "g", Calories: 120}
	require.NoError(t, s.AddFood(ctx, "Lunch", dal))
	require.Len(t, api.createCalls, 1)
	require.Equal(t, []string{"srv-lunch"}, api.addCalls)

	lunch = s.Meals()[1]
	assert.Len(t, lunch.Items, 2)
	assert.Equal(t, 315.0, lunch.Calories)
}

func TestAddFoodMintsLocalID(t *testing.T) {
	api := &fakeMealsAPI{}
	s, _ := newTestMealsStore(api)

	require.NoError(t, s.AddFood(context.Background(), "Snack", gateway.FoodItem{Name: "Apple", Quantity: 1, Unit: "piece"}))

	require.Len(t, api.createCalls, 1)
	sent := api.createCalls[0].Items[0]
	assert.True(t, strings.HasPrefix(sent.ID, "local-"), "got id %q", sent.ID)
}

func TestAddFoodKeepsCallerSuppliedID(t *testing.T) {
	api := &fakeMealsAPI{}
	s, _ := newTestMealsStore(api)

	require.NoError(t, s.AddFood(context.Background(), "Snack", gateway.FoodItem{ID: "srv-9", Name: "Apple", Quantity: 1, Unit: "piece"}))
	assert.Equal(t, "srv-9", api.createCalls[0].Items[0].ID)
}

func TestAddFoodRejectsUnknownMealName(t *testing.T) {
	api := &fakeMealsAPI{}
	s, _ := newTestMealsStore(api)
	err := s.AddFood(context.Background(), "Brunch", gateway.FoodItem{Name: "Toast"})
	require.Error(t, err)
	assert.Empty(t, api.createCalls)
}

func TestAddFoodFailureSkipsRefreshAndRecordsError(t *testing.T) {
	api := &fakeMealsAPI{
		createMeal: func(context.Context, string, gateway.CreateMealRequest) (*gateway.Meal, error) {
			return nil, &gateway.APIError{StatusCode: 500, Message: "meal could not be saved"}
		},
	}
	s, bus := newTestMealsStore(api)

	err := s.AddFood(context.Background(), "Dinner", gateway.FoodItem{Name: "Soup", Quantity: 1, Unit: "bowl"})
	require.Error(t, err)

	assert.Equal(t, 0, api.todayCalls, "failed mutation must not trigger a refresh")
	assert.Equal(t, "meal could not be saved", s.LastError())
	assert.Equal(t, "meal could not be saved", bus.GlobalError())
	assert.Equal(t, 0, bus.PendingRequests())
}

func TestStaleRefreshCompletionIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	call := 0
	var mu sync.Mutex

	api := &fakeMealsAPI{}
	api.todayMeals = func(context.Context, string) ([]gateway.Meal, error) {
		mu.Lock()
		call++
		me := call
		mu.Unlock()
		if me == 1 {
			close(started)
			<-release // first call resolves after the second
			return []gateway.Meal{{ID: "old", Name: "Lunch"}}, nil
		}
		return []gateway.Meal{{ID: "new", Name: "Lunch"}}, nil
	}
	s, _ := newTestMealsStore(api)

	done := make(chan error)
	go func() { done <- s.Refresh(context.Background()) }()
	<-started

	require.NoError(t, s.Refresh(context.Background()))
	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, "new", s.Meals()[1].ID, "superseded refresh must not overwrite the newer snapshot")
}

func TestStatsFailureSetsSliceFlagsAndGlobalError(t *testing.T) {
	api := &fakeMealsAPI{
		daily: func(context.Context, string) (*gateway.DailyStats, error) {
			return nil, errors.New("connection reset")
		},
	}
	s, bus := newTestMealsStore(api)

	err := s.RefreshDailyStats(context.Background())
	require.Error(t, err)
	assert.False(t, s.StatsLoading(StatsDaily))
	assert.NotEmpty(t, s.StatsError(StatsDaily))
	assert.NotEmpty(t, bus.GlobalError())
	assert.Nil(t, s.Daily())

	// Other slices are untouched.
	assert.Empty(t, s.StatsError(StatsWeekly))
	require.NoError(t, s.RefreshWeeklyStats(context.Background()))
	assert.NotNil(t, s.Weekly())
}

func TestMealDetailsFailureRecordsErrorLocallyAndGlobally(t *testing.T) {
	api := &fakeMealsAPI{
		mealByID: func(context.Context, string, string) (*gateway.Meal, error) {
			return nil, &gateway.APIError{StatusCode: 404, Message: "meal not found"}
		},
	}
	s, bus := newTestMealsStore(api)

	_, err := s.MealDetails(context.Background(), "m1")
	require.Error(t, err)
	assert.Equal(t, "meal not found", s.LastError())
	assert.Equal(t, "meal not found", bus.GlobalError())
}

func TestRemoveFoodSurfacesError(t *testing.T) {
	api := &fakeMealsAPI{
		removeFood: func(context.Context, string, string, string) error {
			return &gateway.APIError{StatusCode: 404, Message: "food not found"}
		},
	}
	s, bus := newTestMealsStore(api)

	err := s.RemoveFood(context.Background(), "m1", "f1")
	require.Error(t, err)
	assert.Equal(t, "food not found", bus.GlobalError())
}
