package store

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/cafemanage/api/internal/docstore"
	"github.com/cafemanage/api/internal/enum"
	"github.com/cafemanage/api/internal/model"
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// DefaultMenu is the first-run menu: five beverages, five food items.
func DefaultMenu() model.Menu {
	return model.Menu{
		"beverages": {
			{ID: "BEV001", Name: "Espresso", Price: price("2.50"), Category: "Coffee", Available: true, Description: "Strong black coffee", Inventory: 50},
			{ID: "BEV002", Name: "Cappuccino", Price: price("3.50"), Category: "Coffee", Available: true, Description: "Coffee with steamed milk foam", Inventory: 40},
			{ID: "BEV003", Name: "Latte", Price: price("4.00"), Category: "Coffee", Available: true, Description: "Coffee with steamed milk", Inventory: 40},
			{ID: "BEV004", Name: "Green Tea", Price: price("2.00"), Category: "Tea", Available: true, Description: "Fresh green tea", Inventory: 30},
			{ID: "BEV005", Name: "Fresh Orange Juice", Price: price("3.00"), Category: "Juice", Available: true, Description: "Freshly squeezed orange juice", Inventory: 25},
		},
		"food": {
			{ID: "FOOD001", Name: "Croissant", Price: price("2.50"), Category: "Pastry", Available: true, Description: "Buttery French pastry", Inventory: 40},
			{ID: "FOOD002", Name: "Chocolate Muffin", Price: price("3.00"), Category: "Pastry", Available: true, Description: "Rich chocolate muffin", Inventory: 35},
			{ID: "FOOD003", Name: "Caesar Salad", Price: price("8.50"), Category: "Salad", Available: true, Description: "Fresh romaine with caesar dressing", Inventory: 20},
			{ID: "FOOD004", Name: "Club Sandwich", Price: price("9.00"), Category: "Sandwich", Available: true, Description: "Triple layer sandwich with turkey and bacon", Inventory: 30},
			{ID: "FOOD005", Name: "Margherita Pizza", Price: price("12.00"), Category: "Pizza", Available: true, Description: "Classic pizza with tomato and mozzarella", Inventory: 15},
		},
	}
}

// DefaultSettings is the first-run settings document.
func DefaultSettings() model.Settings {
	return model.Settings{
		CafeName:      "My Cafe",
		MenuURL:       "https://mycafe.com/menu",
		TaxRate:       price("0.10"),
		ServiceCharge: price("0.05"),
	}
}

// DefaultTables is the fixed table list, numbered 1 through 10, all Available.
func DefaultTables() []model.Table {
	tables := make([]model.Table, 0, 10)
	for i := 1; i <= 10; i++ {
		tables = append(tables, model.Table{
			Number: strconv.Itoa(i),
			Status: enum.TableStatusAvailable,
		})
	}
	return tables
}

// DefaultUsers hashes and returns the stock admin and staff credentials.
func DefaultUsers() ([]model.User, error) {
	seed := []struct {
		username, password, role string
	}{
		{"admin", "admin123", enum.UserRoleAdmin},
		{"staff", "staff123", enum.UserRoleStaff},
	}

	users := make([]model.User, 0, len(seed))
	for _, u := range seed {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", u.username, err)
		}
		users = append(users, model.User{
			Username:     u.username,
			PasswordHash: string(hash),
			Role:         u.role,
		})
	}
	return users, nil
}

// Seed writes the default documents. With force false only absent collections
// are written, making it a safe first-run bootstrap; with force true every
// collection is reset to its defaults.
func (s *Store) Seed(force bool) error {
	users, err := DefaultUsers()
	if err != nil {
		return err
	}

	defaults := []docstore.Write{
		{Collection: docstore.CollectionMenu, Value: DefaultMenu()},
		{Collection: docstore.CollectionOrders, Value: []model.Order{}},
		{Collection: docstore.CollectionSettings, Value: DefaultSettings()},
		{Collection: docstore.CollectionTables, Value: DefaultTables()},
		{Collection: docstore.CollectionUsers, Value: users},
	}

	return s.db.Update(func(d docstore.Tx) error {
		for _, w := range defaults {
			if !force {
				var raw any
				exists, err := d.Load(w.Collection, &raw)
				if err != nil {
					return err
				}
				if exists {
					continue
				}
			}
			if err := d.Save(w.Collection, w.Value); err != nil {
				return err
			}
		}
		return nil
	})
}
