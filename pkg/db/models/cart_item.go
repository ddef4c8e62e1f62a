package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is one (coffee, quantity) line inside a cart. Quantity is always
// >= 1; a quantity update to zero or below removes the line instead.
type CartItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID    uuid.UUID `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:ux_cart_items_cart_coffee"`
	CoffeeID  uuid.UUID `gorm:"column:coffee_id;type:uuid;not null;uniqueIndex:ux_cart_items_cart_coffee"`
	Quantity  int       `gorm:"column:quantity;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
