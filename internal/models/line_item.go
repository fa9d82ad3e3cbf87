package models

// LineDetails is the shared shape of a cart line item and an order line
// item. A line either references a catalog dish (DishID set) or is a
// custom request priced later by the chef (IsCustom, UnitPriceCents zero
// until set).
type LineDetails struct {
	DishID         *uint  `json:"dish_id" gorm:"index"`
	ChefID         uint   `json:"chef_id" gorm:"not null;index"`
	Name           string `json:"name" gorm:"not null"`
	Description    string `json:"description" gorm:"type:text"`
	UnitPriceCents int64  `json:"unit_price_cents" gorm:"not null;default:0"`
	Quantity       int    `json:"quantity" gorm:"not null"`
	IsCustom       bool   `json:"is_custom" gorm:"not null;default:false"`
	Options        string `json:"options"`
	DishType       string `json:"dish_type"`
	Note           string `json:"note" gorm:"type:text"`
}

// Priced reports whether the line has a usable final price. Catalog lines
// are always priced; custom lines only once the chef has set one.
func (l LineDetails) Priced() bool {
	return !l.IsCustom || l.UnitPriceCents > 0
}
