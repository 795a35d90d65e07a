package service

import (
	"context"

	"github.com/cafemanage/api/internal/enum"
	"github.com/cafemanage/api/internal/model"
	"github.com/cafemanage/api/internal/store"
)

// TableService reconciles derived table occupancy with the order log and
// applies manual staff overrides where automation is not in charge.
type TableService struct {
	store *store.Store
}

// NewTableService creates a TableService.
func NewTableService(st *store.Store) *TableService {
	return &TableService{store: st}
}

// Reconcile recomputes every table's derived status from the order log and
// persists the table list only when something changed. Running it twice with
// no intervening order change is a no-op the second time.
func (s *TableService) Reconcile(ctx context.Context) ([]model.Table, error) {
	var tables []model.Table
	err := s.store.Update(func(tx *store.Tx) error {
		orders, err := tx.Orders()
		if err != nil {
			return err
		}
		tables, err = tx.Tables()
		if err != nil {
			return err
		}

		var changed bool
		tables, changed = DeriveStatuses(tables, busyTables(orders))
		if !changed {
			return nil
		}
		return tx.SaveTables(tables)
	})
	return tables, err
}

// SetManualStatus lets staff mark a table Available or Reserved. A table
// claimed by a live order belongs to automation and cannot be overridden.
func (s *TableService) SetManualStatus(ctx context.Context, number, status string) ([]model.Table, error) {
	if status != enum.TableStatusAvailable && status != enum.TableStatusReserved {
		return nil, ErrInvalidTableStatus
	}

	var tables []model.Table
	err := s.store.Update(func(tx *store.Tx) error {
		orders, err := tx.Orders()
		if err != nil {
			return err
		}
		tables, err = tx.Tables()
		if err != nil {
			return err
		}

		busy := busyTables(orders)
		idx := -1
		for i, t := range tables {
			if t.Number == number {
				idx = i
				break
			}
		}
		if idx < 0 {
			return ErrTableNotFound
		}
		if busy[number] {
			return ErrTableOccupied
		}

		if status == enum.TableStatusReserved {
			tables[idx].ManualOverride = enum.TableStatusReserved
		} else {
			tables[idx].ManualOverride = ""
		}
		tables[idx].Status = status

		// A manual change may coincide with stale derived statuses elsewhere;
		// bring the whole list up to date in the same write.
		tables, _ = DeriveStatuses(tables, busy)
		return tx.SaveTables(tables)
	})
	return tables, err
}

// busyTables collects the numbers of tables claimed by a live order.
func busyTables(orders []model.Order) map[string]bool {
	busy := make(map[string]bool)
	for _, o := range orders {
		if o.TableNumber == "" {
			continue
		}
		for _, live := range enum.LiveOrderStatuses {
			if o.Status == live {
				busy[o.TableNumber] = true
				break
			}
		}
	}
	return busy
}

// DeriveStatuses computes each table's status: Occupied whenever a live order
// claims it, otherwise the staff override (Reserved) or Available. It reports
// whether any table changed. Pure: callers own loading and saving.
func DeriveStatuses(tables []model.Table, busy map[string]bool) ([]model.Table, bool) {
	changed := false
	for i, t := range tables {
		want := enum.TableStatusAvailable
		switch {
		case busy[t.Number]:
			want = enum.TableStatusOccupied
		case t.ManualOverride == enum.TableStatusReserved:
			want = enum.TableStatusReserved
		}
		if t.Status != want {
			tables[i].Status = want
			changed = true
		}
	}
	return tables, changed
}
