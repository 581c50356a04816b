package memory

import (
	"context"
	"sort"

	"kardex/internal/core/apperror"
	"kardex/internal/core/id"
	"kardex/internal/core/types"
	"kardex/internal/domain/catalogs/account"
	"kardex/internal/domain/catalogs/product"
	"kardex/internal/domain/catalogs/warehouse"
)

// ProductRepo implements product.Repository on the in-memory store.
type ProductRepo struct {
	store *Store
}

var _ product.Repository = (*ProductRepo)(nil)

// NewProductRepo creates a product catalog repository.
func NewProductRepo(store *Store) *ProductRepo {
	return &ProductRepo{store: store}
}

func (r *ProductRepo) Create(ctx context.Context, p *product.Product) error {
	return r.store.write(ctx, func(st *state) error {
		for _, existing := range st.products {
			if existing.SKU == p.SKU {
				return apperror.NewDuplicate("product", "sku", p.SKU)
			}
		}
		st.products[p.ID] = *p
		return nil
	})
}

func (r *ProductRepo) Update(ctx context.Context, p *product.Product) error {
	return r.store.write(ctx, func(st *state) error {
		existing, ok := st.products[p.ID]
		if !ok {
			return apperror.NewNotFound("product", p.ID.String())
		}
		if existing.Version != p.Version {
			return apperror.NewConcurrentModification("product", p.ID.String())
		}
		updated := *p
		updated.Touch()
		st.products[p.ID] = updated
		return nil
	})
}

func (r *ProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	var found *product.Product
	err := r.store.read(ctx, func(st *state) error {
		p, ok := st.products[productID]
		if !ok {
			return apperror.NewNotFound("product", productID.String())
		}
		found = &p
		return nil
	})
	return found, err
}

func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*product.Product, error) {
	var found *product.Product
	err := r.store.read(ctx, func(st *state) error {
		for _, p := range st.products {
			if p.SKU == sku {
				cp := p
				found = &cp
				return nil
			}
		}
		return apperror.NewNotFound("product", sku)
	})
	return found, err
}

func (r *ProductRepo) List(ctx context.Context, activeOnly bool) ([]*product.Product, error) {
	var out []*product.Product
	err := r.store.read(ctx, func(st *state) error {
		for _, p := range st.products {
			if activeOnly && !p.Active {
				continue
			}
			cp := p
			out = append(out, &cp)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// WarehouseRepo implements warehouse.Repository on the in-memory store.
type WarehouseRepo struct {
	store *Store
}

var _ warehouse.Repository = (*WarehouseRepo)(nil)

// NewWarehouseRepo creates a warehouse catalog repository.
func NewWarehouseRepo(store *Store) *WarehouseRepo {
	return &WarehouseRepo{store: store}
}

func (r *WarehouseRepo) Create(ctx context.Context, w *warehouse.Warehouse) error {
	return r.store.write(ctx, func(st *state) error {
		for _, existing := range st.warehouses {
			if existing.Code == w.Code {
				return apperror.NewDuplicate("warehouse", "code", w.Code)
			}
		}
		st.warehouses[w.ID] = *w
		return nil
	})
}

func (r *WarehouseRepo) Update(ctx context.Context, w *warehouse.Warehouse) error {
	return r.store.write(ctx, func(st *state) error {
		existing, ok := st.warehouses[w.ID]
		if !ok {
			return apperror.NewNotFound("warehouse", w.ID.String())
		}
		if existing.Version != w.Version {
			return apperror.NewConcurrentModification("warehouse", w.ID.String())
		}
		updated := *w
		updated.Touch()
		st.warehouses[w.ID] = updated
		return nil
	})
}

func (r *WarehouseRepo) GetByID(ctx context.Context, warehouseID id.ID) (*warehouse.Warehouse, error) {
	var found *warehouse.Warehouse
	err := r.store.read(ctx, func(st *state) error {
		w, ok := st.warehouses[warehouseID]
		if !ok {
			return apperror.NewNotFound("warehouse", warehouseID.String())
		}
		found = &w
		return nil
	})
	return found, err
}

func (r *WarehouseRepo) List(ctx context.Context, activeOnly bool) ([]*warehouse.Warehouse, error) {
	var out []*warehouse.Warehouse
	err := r.store.read(ctx, func(st *state) error {
		for _, w := range st.warehouses {
			if activeOnly && !w.Active {
				continue
			}
			cw := w
			out = append(out, &cw)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *WarehouseRepo) ClearDefault(ctx context.Context) error {
	return r.store.write(ctx, func(st *state) error {
		for wid, w := range st.warehouses {
			if w.IsDefault {
				w.IsDefault = false
				st.warehouses[wid] = w
			}
		}
		return nil
	})
}

// AccountRepo implements account.Repository on the in-memory store.
type AccountRepo struct {
	store *Store
}

var _ account.Repository = (*AccountRepo)(nil)

// NewAccountRepo creates a chart-of-accounts repository.
func NewAccountRepo(store *Store) *AccountRepo {
	return &AccountRepo{store: store}
}

func (r *AccountRepo) Create(ctx context.Context, a *account.LedgerAccount) error {
	return r.store.write(ctx, func(st *state) error {
		for _, existing := range st.accounts {
			if existing.Code == a.Code {
				return apperror.NewDuplicate("account", "code", a.Code)
			}
		}
		st.accounts[a.ID] = *a
		return nil
	})
}

func (r *AccountRepo) Update(ctx context.Context, a *account.LedgerAccount) error {
	return r.store.write(ctx, func(st *state) error {
		existing, ok := st.accounts[a.ID]
		if !ok {
			return apperror.NewNotFound("account", a.ID.String())
		}
		if existing.Version != a.Version {
			return apperror.NewConcurrentModification("account", a.ID.String())
		}
		// Balance fields change only through ApplyBalanceChange.
		updated := *a
		updated.Balance = existing.Balance
		updated.MovementCount = existing.MovementCount
		updated.Touch()
		st.accounts[a.ID] = updated
		return nil
	})
}

func (r *AccountRepo) GetByID(ctx context.Context, accountID id.ID) (*account.LedgerAccount, error) {
	var found *account.LedgerAccount
	err := r.store.read(ctx, func(st *state) error {
		a, ok := st.accounts[accountID]
		if !ok {
			return apperror.NewNotFound("account", accountID.String())
		}
		found = &a
		return nil
	})
	return found, err
}

func (r *AccountRepo) GetByCode(ctx context.Context, code string) (*account.LedgerAccount, error) {
	var found *account.LedgerAccount
	err := r.store.read(ctx, func(st *state) error {
		for _, a := range st.accounts {
			if a.Code == code {
				ca := a
				found = &ca
				return nil
			}
		}
		return apperror.NewNotFound("account", code)
	})
	return found, err
}

func (r *AccountRepo) List(ctx context.Context, activeOnly bool) ([]*account.LedgerAccount, error) {
	var out []*account.LedgerAccount
	err := r.store.read(ctx, func(st *state) error {
		for _, a := range st.accounts {
			if activeOnly && !a.Active {
				continue
			}
			ca := a
			out = append(out, &ca)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// GetForUpdate behaves like GetByID: the store mutex already serializes
// writers.
func (r *AccountRepo) GetForUpdate(ctx context.Context, accountID id.ID) (*account.LedgerAccount, error) {
	return r.GetByID(ctx, accountID)
}

func (r *AccountRepo) ApplyBalanceChange(ctx context.Context, accountID id.ID, delta types.MinorUnits) error {
	return r.store.write(ctx, func(st *state) error {
		a, ok := st.accounts[accountID]
		if !ok {
			return apperror.NewNotFound("account", accountID.String())
		}
		a.Balance += delta
		a.MovementCount++
		st.accounts[accountID] = a
		return nil
	})
}

func (r *AccountRepo) ResetBalances(ctx context.Context) error {
	return r.store.write(ctx, func(st *state) error {
		for aid, a := range st.accounts {
			a.Balance = 0
			a.MovementCount = 0
			st.accounts[aid] = a
		}
		return nil
	})
}
