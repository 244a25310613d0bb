package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/Udayam-Bangalore/Longevix-App-sub001/gateway"
)

// Statistics are read-only aggregates: fetched on demand, replaced
// wholesale, never merged or mutated locally. Each slice keeps its own
// loading and error flags.

func (s *MealsStore) Daily() *gateway.DailyStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.daily
}

func (s *MealsStore) Weekly() *gateway.WeeklyStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.weekly
}

func (s *MealsStore) Monthly() *gateway.MonthlyStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.monthly
}

func (s *MealsStore) Summary() *gateway.StatsSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary
}

func (s *MealsStore) StatsLoading(slice string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statsLoading[slice]
}

func (s *MealsStore) StatsError(slice string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statsErrors[slice]
}

func (s *MealsStore) RefreshDailyStats(ctx context.Context) error {
	return s.fetchSlice(StatsDaily, func() error {
		out, err := s.api.DailyStats(ctx, s.tokens.Token())
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.daily = out
		s.mu.Unlock()
		return nil
	})
}

func (s *MealsStore) RefreshWeeklyStats(ctx context.Context) error {
	return s.fetchSlice(StatsWeekly, func() error {
		out, err := s.api.WeeklyStats(ctx, s.tokens.Token())
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.weekly = out
		s.mu.Unlock()
		return nil
	})
}

func (s *MealsStore) RefreshMonthlyStats(ctx context.Context) error {
	return s.fetchSlice(StatsMonthly, func() error {
		out, err := s.api.MonthlyStats(ctx, s.tokens.Token())
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.monthly = out
		s.mu.Unlock()
		return nil
	})
}

func (s *MealsStore) RefreshSummary(ctx context.Context) error {
	return s.fetchSlice(StatsSummarySlice, func() error {
		out, err := s.api.StatsSummary(ctx, s.tokens.Token())
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.summary = out
		s.mu.Unlock()
		return nil
	})
}

// RefreshStats resynchronizes the slices shown alongside the meal list; it
// runs after every successful mutation.
func (s *MealsStore) RefreshStats(ctx context.Context) error {
	var wg sync.WaitGroup
	var dailyErr, summaryErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		dailyErr = s.RefreshDailyStats(ctx)
	}()
	go func() {
		defer wg.Done()
		summaryErr = s.RefreshSummary(ctx)
	}()
	wg.Wait()
	if dailyErr != nil {
		return dailyErr
	}
	return summaryErr
}

// fetchSlice wraps one stats fetch with its per-slice flags, the pending
// counter and error fan-out. Failures are logged, surfaced locally and
// globally, and never retried automatically.
func (s *MealsStore) fetchSlice(slice string, fetch func() error) error {
	s.mu.Lock()
	s.statsLoading[slice] = true
	s.mu.Unlock()
	s.signals.IncrementPending()
	defer s.signals.DecrementPending()

	err := fetch()

	s.mu.Lock()
	s.statsLoading[slice] = false
	if err != nil {
		s.statsErrors[slice] = userMessage(err)
	} else {
		delete(s.statsErrors, slice)
	}
	s.mu.Unlock()

	if err != nil {
		s.signals.SetGlobalError(userMessage(err))
		s.log.Warn("stats fetch failed", zap.String("slice", slice), zap.Error(err))
	}
	return err
}
