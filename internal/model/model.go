package model

import "github.com/shopspring/decimal"

// MenuItem is a single sellable item. Inventory is only ever decremented,
// by order placement; there is no restock operation.
type MenuItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Available   bool            `json:"available"`
	Description string          `json:"description"`
	Inventory   int             `json:"inventory"`
}

// Menu groups items by section ("beverages", "food").
type Menu map[string][]MenuItem

// Item returns the menu item with the given id, searching all sections.
func (m Menu) Item(id string) (MenuItem, bool) {
	for _, items := range m {
		for _, it := range items {
			if it.ID == id {
				return it, true
			}
		}
	}
	return MenuItem{}, false
}

// CartLine is a snapshot of a menu item at add-to-cart time. Name and price
// are frozen so later menu edits never change a pending cart or a placed order.
type CartLine struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// Order is an immutable record of a placed order. Monetary fields are frozen
// at placement time using the settings in effect then; only Status and
// PaymentStatus change afterwards.
type Order struct {
	ID            string          `json:"id"`
	CustomerName  string          `json:"customer_name"`
	TableNumber   string          `json:"table_number,omitempty"`
	Items         []CartLine      `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	Tax           decimal.Decimal `json:"tax"`
	ServiceCharge decimal.Decimal `json:"service_charge"`
	Total         decimal.Decimal `json:"total"`
	Date          string          `json:"date"`
	Time          string          `json:"time"`
	Timestamp     string          `json:"timestamp"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status"`
}

// Table holds one table's persisted state. Status is derived: Occupied wins
// whenever a live order references the table; otherwise ManualOverride
// (Reserved, set by staff) or Available applies. Keeping the override separate
// from the derived status means reconciliation never loses a staff override.
type Table struct {
	Number         string `json:"table_number"`
	Status         string `json:"status"`
	ManualOverride string `json:"manual_override,omitempty"`
}

// Settings are global inputs to order total computation. Changing them never
// alters already-placed orders.
type Settings struct {
	CafeName      string          `json:"cafe_name"`
	MenuURL       string          `json:"menu_url"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	ServiceCharge decimal.Decimal `json:"service_charge"`
}

// User is a staff credential. Passwords are stored bcrypt-hashed.
type User struct {
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
	Role         string `json:"role"`
}
