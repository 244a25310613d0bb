// services/meal_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Udayam-Bangalore/Longevix-App-sub001/config"
	"github.com/Udayam-Bangalore/Longevix-App-sub001/models"
)

var mealNames = map[string]struct{}{
	"Breakfast": {}, "Lunch": {}, "Dinner": {}, "Snack": {},
}

var ErrMealExists = errors.New("a meal with this name already exists for today")

type MealService struct {
	ai  *AssistantService
	log *zap.Logger
}

func NewMealService(ai *AssistantService, log *zap.Logger) *MealService {
	return &MealService{ai: ai, log: log}
}

type FoodItemRequest struct {
	Name           string             `json:"name" binding:"required"`
	Quantity       float64            `json:"quantity" binding:"required"`
	Unit           string             `json:"unit"`
	Calories       float64            `json:"calories"`
	Protein        float64            `json:"protein"`
	Carbohydrates  float64            `json:"carbohydrates"`
	Fat            float64            `json:"fat"`
	Micronutrients map[string]float64 `json:"micronutrients"`
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// AddMeal creates the authoritative meal for a name and day. At most one may
// exist; a second create for the same name conflicts.
func (s *MealService) AddMeal(ctx context.Context, userID uint, name string, items []FoodItemRequest) (*models.Meal, error) {
	if _, ok := mealNames[name]; !ok {
		return nil, fmt.Errorf("meal name must be one of Breakfast, Lunch, Dinner, Snack")
	}

	today := dayStart(time.Now())
	var existing models.Meal
	err := config.DB.Where("user_id = ? AND name = ? AND date = ?", userID, name, today).First(&existing).Error
	if err == nil {
		return nil, ErrMealExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	meal := &models.Meal{UserID: userID, Name: name, Date: today}
	if err := config.DB.Create(meal).Error; err != nil {
		return nil, err
	}

	for _, it := range items {
		mi, err := s.buildItem(ctx, meal.ID, it)
		if err != nil {
			return nil, err
		}
		if err := config.DB.Create(mi).Error; err != nil {
			return nil, err
		}
	}

	// reload with items
	var populated models.Meal
	if err := config.DB.Preload("Items").First(&populated, meal.ID).Error; err != nil {
		return nil, err
	}
	return &populated, nil
}

// AddFood appends one item to an existing meal and returns the reloaded meal.
func (s *MealService) AddFood(ctx context.Context, userID, mealID uint, item FoodItemRequest) (*models.Meal, error) {
	var meal models.Meal
	if err := config.DB.Where("id = ? AND user_id = ?", mealID, userID).First(&meal).Error; err != nil {
		return nil, err
	}

	mi, err := s.buildItem(ctx, meal.ID, item)
	if err != nil {
		return nil, err
	}
	if err := config.DB.Create(mi).Error; err != nil {
		return nil, err
	}

	var populated models.Meal
	if err := config.DB.Preload("Items").First(&populated, meal.ID).Error; err != nil {
		return nil, err
	}
	return &populated, nil
}

func (s *MealService) RemoveFood(userID, mealID, foodID uint) error {
	var meal models.Meal
	if err := config.DB.Where("id = ? AND user_id = ?", mealID, userID).First(&meal).Error; err != nil {
		return err
	}
	res := config.DB.Where("id = ? AND meal_id = ?", foodID, meal.ID).Delete(&models.MealItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *MealService) GetMeal(userID, mealID uint) (*models.Meal, error) {
	var meal models.Meal
	err := config.DB.Preload("Items").
		Where("id = ? AND user_id = ?", mealID, userID).
		First(&meal).Error
	if err != nil {
		return nil, err
	}
	return &meal, nil
}

func (s *MealService) TodayMeals(userID uint) ([]models.Meal, error) {
	var meals []models.Meal
	err := config.DB.Preload("Items").
		Where("user_id = ? AND date = ?", userID, dayStart(time.Now())).
		Order("id ASC").
		Find(&meals).Error
	return meals, err
}

// buildItem fills missing nutrient values from the AI estimate. A failed
// estimate is logged and the item keeps zeros; logging food must not fail
// because the AI service is down.
func (s *MealService) buildItem(ctx context.Context, mealID uint, it FoodItemRequest) (*models.MealItem, error) {
	mi := &models.MealItem{
		MealID:        mealID,
		Name:          it.Name,
		Quantity:      it.Quantity,
		Unit:          it.Unit,
		Calories:      it.Calories,
		Protein:       it.Protein,
		Carbohydrates: it.Carbohydrates,
		Fat:           it.Fat,
	}

	micros := it.Micronutrients
	if mi.Calories == 0 {
		nut, err := s.ai.GenerateNutrients(ctx, it.Name, it.Quantity, it.Unit)
		if err != nil {
			s.log.Warn("nutrient estimate failed", zap.String("food", it.Name), zap.Error(err))
		} else {
			mi.Calories = nut.Calories
			mi.Protein = nut.Protein
			mi.Carbohydrates = nut.Carbohydrates
			mi.Fat = nut.Fat
			if micros == nil {
				micros = nut.Micronutrients
			}
		}
	}

	if len(micros) > 0 {
		raw, err := json.Marshal(micros)
		if err != nil {
			return nil, fmt.Errorf("failed to encode micronutrients: %w", err)
		}
		mi.Micronutrients = datatypes.JSON(raw)
	}
	return mi, nil
}
