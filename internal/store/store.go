// Package store exposes the five persisted collections (menu, orders, tables,
// settings, users) as typed accessors over the JSON document store. The order
// log is structurally append-only: orders can be appended and their statuses
// rewritten, but never removed, which is what makes len(orders)+1 a safe
// source of sequential order ids.
package store

import (
	"errors"
	"fmt"

	"github.com/cafemanage/api/internal/docstore"
	"github.com/cafemanage/api/internal/model"
)

// ErrOrderNotFound is returned when an order id is not present in the log.
var ErrOrderNotFound = errors.New("order not found")

// Store wraps the document store with collection-typed operations.
type Store struct {
	db *docstore.Store
}

// New creates a Store over db.
func New(db *docstore.Store) *Store {
	return &Store{db: db}
}

// Tx is a transaction view over the typed collections. All methods operate
// under the document store lock held by Update.
type Tx struct {
	d docstore.Tx
}

// Update runs fn with exclusive access to every collection.
func (s *Store) Update(fn func(tx *Tx) error) error {
	return s.db.Update(func(d docstore.Tx) error {
		return fn(&Tx{d: d})
	})
}

// --- Transaction accessors ---

// Menu loads the menu, or an empty menu if none has been written yet.
func (tx *Tx) Menu() (model.Menu, error) {
	menu := model.Menu{}
	if _, err := tx.d.Load(docstore.CollectionMenu, &menu); err != nil {
		return nil, err
	}
	return menu, nil
}

// SaveMenu persists the full menu document.
func (tx *Tx) SaveMenu(menu model.Menu) error {
	return tx.d.Save(docstore.CollectionMenu, menu)
}

// Orders loads the full order log, oldest first.
func (tx *Tx) Orders() ([]model.Order, error) {
	var orders []model.Order
	if _, err := tx.d.Load(docstore.CollectionOrders, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// CommitOrder assigns the next sequential id to o, appends it to the order
// log, and commits the updated menu and order log in one staged write. This
// is the only way an order enters the log.
func (tx *Tx) CommitOrder(menu model.Menu, o model.Order) (model.Order, error) {
	orders, err := tx.Orders()
	if err != nil {
		return model.Order{}, err
	}
	o.ID = fmt.Sprintf("ORD%05d", len(orders)+1)
	orders = append(orders, o)

	err = tx.d.SaveAll(
		docstore.Write{Collection: docstore.CollectionMenu, Value: menu},
		docstore.Write{Collection: docstore.CollectionOrders, Value: orders},
	)
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

// SetOrderStatus rewrites one order's status and persists the full log.
// Monetary fields are never touched.
func (tx *Tx) SetOrderStatus(id, status string) (model.Order, error) {
	orders, err := tx.Orders()
	if err != nil {
		return model.Order{}, err
	}
	for i := range orders {
		if orders[i].ID == id {
			orders[i].Status = status
			if err := tx.d.Save(docstore.CollectionOrders, orders); err != nil {
				return model.Order{}, err
			}
			return orders[i], nil
		}
	}
	return model.Order{}, ErrOrderNotFound
}

// SetOrderPaymentStatus rewrites one order's payment status.
func (tx *Tx) SetOrderPaymentStatus(id, paymentStatus string) (model.Order, error) {
	orders, err := tx.Orders()
	if err != nil {
		return model.Order{}, err
	}
	for i := range orders {
		if orders[i].ID == id {
			orders[i].PaymentStatus = paymentStatus
			if err := tx.d.Save(docstore.CollectionOrders, orders); err != nil {
				return model.Order{}, err
			}
			return orders[i], nil
		}
	}
	return model.Order{}, ErrOrderNotFound
}

// Tables loads the table list.
func (tx *Tx) Tables() ([]model.Table, error) {
	var tables []model.Table
	if _, err := tx.d.Load(docstore.CollectionTables, &tables); err != nil {
		return nil, err
	}
	return tables, nil
}

// SaveTables persists the full table list.
func (tx *Tx) SaveTables(tables []model.Table) error {
	return tx.d.Save(docstore.CollectionTables, tables)
}

// Settings loads the settings document, falling back to defaults when absent.
func (tx *Tx) Settings() (model.Settings, error) {
	st := DefaultSettings()
	if _, err := tx.d.Load(docstore.CollectionSettings, &st); err != nil {
		return model.Settings{}, err
	}
	return st, nil
}

// SaveSettings persists the settings document.
func (tx *Tx) SaveSettings(st model.Settings) error {
	return tx.d.Save(docstore.CollectionSettings, st)
}

// Users loads the credential list.
func (tx *Tx) Users() ([]model.User, error) {
	var users []model.User
	if _, err := tx.d.Load(docstore.CollectionUsers, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// SaveUsers persists the credential list.
func (tx *Tx) SaveUsers(users []model.User) error {
	return tx.d.Save(docstore.CollectionUsers, users)
}

// --- Read conveniences ---

// Menu returns the current menu.
func (s *Store) Menu() (model.Menu, error) {
	var menu model.Menu
	err := s.Update(func(tx *Tx) error {
		var err error
		menu, err = tx.Menu()
		return err
	})
	return menu, err
}

// Orders returns the full order log.
func (s *Store) Orders() ([]model.Order, error) {
	var orders []model.Order
	err := s.Update(func(tx *Tx) error {
		var err error
		orders, err = tx.Orders()
		return err
	})
	return orders, err
}

// Order returns one order by id.
func (s *Store) Order(id string) (model.Order, error) {
	orders, err := s.Orders()
	if err != nil {
		return model.Order{}, err
	}
	for _, o := range orders {
		if o.ID == id {
			return o, nil
		}
	}
	return model.Order{}, ErrOrderNotFound
}

// Tables returns the current table list.
func (s *Store) Tables() ([]model.Table, error) {
	var tables []model.Table
	err := s.Update(func(tx *Tx) error {
		var err error
		tables, err = tx.Tables()
		return err
	})
	return tables, err
}

// Settings returns the current settings.
func (s *Store) Settings() (model.Settings, error) {
	var st model.Settings
	err := s.Update(func(tx *Tx) error {
		var err error
		st, err = tx.Settings()
		return err
	})
	return st, err
}

// SaveSettings overwrites the settings document.
func (s *Store) SaveSettings(st model.Settings) error {
	return s.Update(func(tx *Tx) error {
		return tx.SaveSettings(st)
	})
}

// UserByName returns the user with the given username, if present.
func (s *Store) UserByName(username string) (model.User, bool, error) {
	var users []model.User
	err := s.Update(func(tx *Tx) error {
		var err error
		users, err = tx.Users()
		return err
	})
	if err != nil {
		return model.User{}, false, err
	}
	for _, u := range users {
		if u.Username == username {
			return u, true, nil
		}
	}
	return model.User{}, false, nil
}
