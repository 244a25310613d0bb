package services

import (
	"encoding/json"
	"time"

	"github.com/Udayam-Bangalore/Longevix-App-sub001/config"
	"github.com/Udayam-Bangalore/Longevix-App-sub001/models"
)

// StatsService computes the read-only nutrition aggregates. Everything is
// derived from meal items at query time; nothing is cached server side.
type StatsService struct{}

func NewStatsService() *StatsService { return &StatsService{} }

type DayStats struct {
	Date           string             `json:"date"`
	Calories       float64            `json:"calories"`
	Protein        float64            `json:"protein"`
	Carbohydrates  float64            `json:"carbohydrates"`
	Fat            float64            `json:"fat"`
	Micronutrients map[string]float64 `json:"micronutrients,omitempty"`
}

type RangeStats struct {
	WeekStart string     `json:"weekStart,omitempty"`
	Month     string     `json:"month,omitempty"`
	Days      []DayStats `json:"days"`
}

type Summary struct {
	From             string  `json:"from"`
	To               string  `json:"to"`
	AvgCalories      float64 `json:"avgCalories"`
	AvgProtein       float64 `json:"avgProtein"`
	AvgCarbohydrates float64 `json:"avgCarbohydrates"`
	AvgFat           float64 `json:"avgFat"`
	DaysLogged       int     `json:"daysLogged"`
}

func (s *StatsService) Daily(userID uint, day time.Time) (*DayStats, error) {
	out, err := s.aggregateDay(userID, dayStart(day))
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *StatsService) Weekly(userID uint, now time.Time) (*RangeStats, error) {
	// Week starts Monday.
	start := dayStart(now)
	for start.Weekday() != time.Monday {
		start = start.AddDate(0, 0, -1)
	}
	days, err := s.aggregateRange(userID, start, 7)
	if err != nil {
		return nil, err
	}
	return &RangeStats{WeekStart: start.Format("2006-01-02"), Days: days}, nil
}

func (s *StatsService) Monthly(userID uint, now time.Time) (*RangeStats, error) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	n := start.AddDate(0, 1, 0).Sub(start).Hours() / 24
	days, err := s.aggregateRange(userID, start, int(n))
	if err != nil {
		return nil, err
	}
	return &RangeStats{Month: start.Format("2006-01"), Days: days}, nil
}

// SummaryRange averages over the trailing 30 days, counting only days with
// at least one logged item.
func (s *StatsService) SummaryRange(userID uint, now time.Time) (*Summary, error) {
	to := dayStart(now)
	from := to.AddDate(0, 0, -29)
	days, err := s.aggregateRange(userID, from, 30)
	if err != nil {
		return nil, err
	}

	out := &Summary{From: from.Format("2006-01-02"), To: to.Format("2006-01-02")}
	for _, d := range days {
		if d.Calories == 0 && d.Protein == 0 && d.Carbohydrates == 0 && d.Fat == 0 {
			continue
		}
		out.DaysLogged++
		out.AvgCalories += d.Calories
		out.AvgProtein += d.Protein
		out.AvgCarbohydrates += d.Carbohydrates
		out.AvgFat += d.Fat
	}
	if out.DaysLogged > 0 {
		n := float64(out.DaysLogged)
		out.AvgCalories /= n
		out.AvgProtein /= n
		out.AvgCarbohydrates /= n
		out.AvgFat /= n
	}
	return out, nil
}

func (s *StatsService) aggregateRange(userID uint, start time.Time, n int) ([]DayStats, error) {
	out := make([]DayStats, 0, n)
	for i := 0; i < n; i++ {
		d, err := s.aggregateDay(userID, start.AddDate(0, 0, i))
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, nil
}

func (s *StatsService) aggregateDay(userID uint, day time.Time) (*DayStats, error) {
	var items []models.MealItem
	err := config.DB.
		Joins("JOIN meals ON meals.id = meal_items.meal_id").
		Where("meals.user_id = ? AND meals.date = ?", userID, day).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	out := &DayStats{Date: day.Format("2006-01-02")}
	micros := map[string]float64{}
	for _, it := range items {
		out.Calories += it.Calories
		out.Protein += it.Protein
		out.Carbohydrates += it.Carbohydrates
		out.Fat += it.Fat
		if len(it.Micronutrients) > 0 {
			var m map[string]float64
			if err := json.Unmarshal(it.Micronutrients, &m); err == nil {
				for k, v := range m {
					micros[k] += v
				}
			}
		}
	}
	if len(micros) > 0 {
		out.Micronutrients = micros
	}
	return out, nil
}
