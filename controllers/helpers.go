package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"github.com/Udayam-Bangalore/Longevix-App-sub001/models"
	"github.com/Udayam-Bangalore/Longevix-App-sub001/services"
)

// statusFor maps service failures onto HTTP statuses. Provider failures keep
// the provider's status so the app's error classing sees the real thing.
func statusFor(err error) int {
	var pf *services.ProviderFailure
	switch {
	case errors.As(err, &pf):
		return pf.StatusCode
	case errors.Is(err, services.ErrMealExists), errors.Is(err, services.ErrUsernameTaken):
		return http.StatusConflict
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

type userDTO struct {
	ID               string  `json:"id"`
	Email            string  `json:"email,omitempty"`
	Phone            string  `json:"phone,omitempty"`
	Username         string  `json:"username,omitempty"`
	Role             string  `json:"role"`
	ProfileCompleted bool    `json:"profileCompleted"`
	Age              int     `json:"age,omitempty"`
	Sex              string  `json:"sex,omitempty"`
	HeightCm         float64 `json:"heightCm,omitempty"`
	WeightKg         float64 `json:"weightKg,omitempty"`
	ActivityLevel    string  `json:"activityLevel,omitempty"`
	DietType         string  `json:"dietType,omitempty"`
	HealthGoal       string  `json:"healthGoal,omitempty"`
}

func toUserDTO(u *models.User) userDTO {
	return userDTO{
		ID:               strconv.FormatUint(uint64(u.ID), 10),
		Email:            u.Email,
		Phone:            u.Phone,
		Username:         u.Username,
		Role:             u.Role,
		ProfileCompleted: u.ProfileCompleted,
		Age:              u.Age,
		Sex:              u.Sex,
		HeightCm:         u.HeightCm,
		WeightKg:         u.WeightKg,
		ActivityLevel:    u.ActivityLevel,
		DietType:         u.DietType,
		HealthGoal:       u.HealthGoal,
	}
}

type foodItemDTO struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Quantity       float64            `json:"quantity"`
	Unit           string             `json:"unit"`
	Calories       float64            `json:"calories"`
	Protein        float64            `json:"protein"`
	Carbohydrates  float64            `json:"carbohydrates"`
	Fat            float64            `json:"fat"`
	Micronutrients map[string]float64 `json:"micronutrients,omitempty"`
}

type mealDTO struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Items    []foodItemDTO `json:"items"`
	Calories float64       `json:"calories"`
}

func toMealDTO(m *models.Meal) mealDTO {
	out := mealDTO{
		ID:    strconv.FormatUint(uint64(m.ID), 10),
		Name:  m.Name,
		Items: make([]foodItemDTO, 0, len(m.Items)),
	}
	for _, it := range m.Items {
		dto := foodItemDTO{
			ID:            strconv.FormatUint(uint64(it.ID), 10),
			Name:          it.Name,
			Quantity:      it.Quantity,
			Unit:          it.Unit,
			Calories:      it.Calories,
			Protein:       it.Protein,
			Carbohydrates: it.Carbohydrates,
			Fat:           it.Fat,
		}
		if len(it.Micronutrients) > 0 {
			var m map[string]float64
			if err := json.Unmarshal(it.Micronutrients, &m); err == nil {
				dto.Micronutrients = m
			}
		}
		out.Items = append(out.Items, dto)
		out.Calories += it.Calories
	}
	return out
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	return uint(id), err
}
