package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Meal is the authoritative server record: at most one per user, name and
// calendar day. The client synthesizes placeholders for missing names; those
// never reach this table.
type Meal struct {
	gorm.Model
	UserID uint      `gorm:"index;not null"`
	Name   string    `gorm:"size:16;not null"` // Breakfast|Lunch|Dinner|Snack
	Date   time.Time `gorm:"index;not null"`   // start of the calendar day
	Items  []MealItem
}

// MealItem stores the nutrition snapshot for one logged food. Values the
// client didn't supply are filled from the AI nutrient estimate at creation.
type MealItem struct {
	gorm.Model
	MealID uint `gorm:"index;not null"`

	Name           string  `gorm:"not null"`
	Quantity       float64 `gorm:"not null"`
	Unit           string  `gorm:"size:16"`
	Calories       float64
	Protein        float64
	Carbohydrates  float64
	Fat            float64
	Micronutrients datatypes.JSON
}
