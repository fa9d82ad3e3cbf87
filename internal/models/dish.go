package models

import (
	"strings"
	"time"
)

// Dish is a catalog entry published by a chef. This service only reads the
// catalog; it never mutates it.
type Dish struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	ChefID           uint      `json:"chef_id" gorm:"not null;index"`
	Name             string    `json:"name" gorm:"not null"`
	Description      string    `json:"description" gorm:"type:text"`
	PriceCents       int64     `json:"price_cents" gorm:"not null"`
	RequiresDishType bool      `json:"requires_dish_type" gorm:"not null;default:false"`
	DishTypes        string    `json:"dish_types"` // comma separated choices, e.g. "mild,medium,spicy"
	IsAvailable      bool      `json:"is_available" gorm:"not null;default:true"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// AllowsDishType reports whether the given selection is one of the dish's
// published choices. An empty DishTypes list accepts any selection.
func (d *Dish) AllowsDishType(selection string) bool {
	if d.DishTypes == "" {
		return true
	}
	for _, t := range strings.Split(d.DishTypes, ",") {
		if strings.TrimSpace(t) == selection {
			return true
		}
	}
	return false
}
