package models

import (
	"gorm.io/gorm"
)

// User mirrors the identity-provider record plus the app profile. Exactly
// one of Email/Phone is the primary login handle. ProfileCompleted stays
// false until an explicit profile update sets it.
type User struct {
	gorm.Model
	ProviderID       string `gorm:"uniqueIndex;not null"` // id at the identity provider
	Email            string `gorm:"index"`
	Phone            string `gorm:"index"`
	Username         string `gorm:"uniqueIndex"`
	Role             string `gorm:"size:16;default:user"` // user|prouser|admin
	ProfileCompleted bool

	Age           int
	Sex           string `gorm:"size:16"`
	HeightCm      float64
	WeightKg      float64
	ActivityLevel string `gorm:"size:32"`
	DietType      string `gorm:"size:32"`
	HealthGoal    string `gorm:"size:64"`
}
