package store

import (
	"errors"

	"github.com/cafemanage/api/internal/model"
)

// ErrMenuItemNotFound is returned when an item id is not present in the menu.
var ErrMenuItemNotFound = errors.New("menu item not found")

// UpsertMenuItem inserts the item into its category section, or replaces the
// existing item with the same id (moving it between sections if the category
// changed).
func (s *Store) UpsertMenuItem(section string, item model.MenuItem) error {
	return s.Update(func(tx *Tx) error {
		menu, err := tx.Menu()
		if err != nil {
			return err
		}
		for sec, items := range menu {
			for i, it := range items {
				if it.ID == item.ID {
					if sec == section {
						menu[sec][i] = item
						return tx.SaveMenu(menu)
					}
					menu[sec] = append(items[:i], items[i+1:]...)
					menu[section] = append(menu[section], item)
					return tx.SaveMenu(menu)
				}
			}
		}
		menu[section] = append(menu[section], item)
		return tx.SaveMenu(menu)
	})
}

// DeleteMenuItem removes the item with the given id.
func (s *Store) DeleteMenuItem(id string) error {
	return s.Update(func(tx *Tx) error {
		menu, err := tx.Menu()
		if err != nil {
			return err
		}
		for sec, items := range menu {
			for i, it := range items {
				if it.ID == id {
					menu[sec] = append(items[:i], items[i+1:]...)
					return tx.SaveMenu(menu)
				}
			}
		}
		return ErrMenuItemNotFound
	})
}
