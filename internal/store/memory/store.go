// Package memory is an in-process catalog and sale ledger with the same
// transactional contract as the Postgres repositories: per-row write locks
// held until commit or rollback, and staged writes that become visible only
// on commit.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	invdto "github.com/fekuna/omnipos-pdv-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-pdv-service/internal/model"
	"github.com/fekuna/omnipos-pdv-service/internal/sale"
)

type Store struct {
	mu        sync.RWMutex
	products  map[int64]model.Product
	rowLocks  map[int64]chan struct{}
	sales     map[int64]model.Sale
	requests  map[string]int64
	movements []model.InventoryMovement
	faults    map[string]error

	saleSeq atomic.Int64
	itemSeq atomic.Int64
}

func NewStore(products ...model.Product) *Store {
	s := &Store{
		products: make(map[int64]model.Product),
		rowLocks: make(map[int64]chan struct{}),
		sales:    make(map[int64]model.Sale),
		requests: make(map[string]int64),
		faults:   make(map[string]error),
	}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

// PutProduct inserts or replaces a catalog row.
func (s *Store) PutProduct(p model.Product) {
	s.mu.Lock()
	s.products[p.ID] = p
	s.mu.Unlock()
}

// Product returns the committed row.
func (s *Store) Product(id int64) (model.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	return p, ok
}

// Sales returns every committed sale ordered by id.
func (s *Store) Sales() []model.Sale {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Sale, 0, len(s.sales))
	for _, sl := range s.sales {
		out = append(out, copySale(sl))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// FailOn makes every later call of op return err until cleared with a nil err.
// Ops: find_by_id, find_by_barcode, search_by_name, lock, insert_sale,
// insert_sale_item, log_movement, commit, find_sale.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.faults, op)
		return
	}
	s.faults[op] = err
}

func (s *Store) fault(op string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.faults[op]
}

func (s *Store) rowLock(id int64) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.rowLocks[id]
	if !ok {
		ch = make(chan struct{}, 1)
		s.rowLocks[id] = ch
	}
	return ch
}

// --- product.Repository ---

func (s *Store) FindByID(_ context.Context, id int64) (*model.Product, error) {
	if err := s.fault("find_by_id"); err != nil {
		return nil, err
	}
	p, ok := s.Product(id)
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *Store) FindByBarcode(_ context.Context, barcode string) (*model.Product, error) {
	if err := s.fault("find_by_barcode"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.Barcode != nil && *p.Barcode == barcode {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

func (s *Store) SearchByName(_ context.Context, fragment string, limit int) ([]model.Product, error) {
	if err := s.fault("search_by_name"); err != nil {
		return nil, err
	}
	needle := strings.ToLower(fragment)

	s.mu.RLock()
	matches := []model.Product{}
	for _, p := range s.products {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			matches = append(matches, p)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Name != matches[j].Name {
			return matches[i].Name < matches[j].Name
		}
		return matches[i].ID < matches[j].ID
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// --- sale.Repository ---

func (s *Store) RunInTx(ctx context.Context, opts sale.TxOptions, fn func(ctx context.Context, tx sale.Tx) error) error {
	tx := &memTx{
		store:  s,
		opts:   opts,
		held:   make(map[int64]chan struct{}),
		staged: make(map[int64]int),
	}
	defer tx.release()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return tx.commit()
}

func (s *Store) FindSaleByID(_ context.Context, id int64) (*model.Sale, error) {
	if err := s.fault("find_sale"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	sl, ok := s.sales[id]
	if !ok {
		return nil, nil
	}
	c := copySale(sl)
	return &c, nil
}

func (s *Store) FindSaleByRequestID(ctx context.Context, requestID string) (*model.Sale, error) {
	if err := s.fault("find_sale"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	id, ok := s.requests[requestID]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return s.FindSaleByID(ctx, id)
}

// --- inventory.Repository ---

func (s *Store) ListMovements(_ context.Context, f *invdto.MovementFilters) ([]model.InventoryMovement, int, error) {
	f.Normalize()

	s.mu.RLock()
	matched := []model.InventoryMovement{}
	for i := len(s.movements) - 1; i >= 0; i-- {
		m := s.movements[i]
		if f.ProductID != 0 && m.ProductID != f.ProductID {
			continue
		}
		if f.MovementType != "" && m.MovementType != f.MovementType {
			continue
		}
		matched = append(matched, m)
	}
	s.mu.RUnlock()

	total := len(matched)
	start := (f.Page - 1) * f.PageSize
	if start >= total {
		return []model.InventoryMovement{}, total, nil
	}
	end := start + f.PageSize
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

// memTx stages writes until commit. Row locks are taken in GetProductForUpdate
// and released when the transaction ends either way.
type memTx struct {
	store     *Store
	opts      sale.TxOptions
	held      map[int64]chan struct{}
	staged    map[int64]int
	sale      *model.Sale
	items     []model.SaleItem
	movements []model.InventoryMovement
}

func (tx *memTx) GetProductForUpdate(ctx context.Context, id int64) (*model.Product, error) {
	if err := tx.store.fault("lock"); err != nil {
		return nil, err
	}
	if _, ok := tx.held[id]; !ok {
		if err := tx.acquire(ctx, id); err != nil {
			return nil, err
		}
	}

	p, ok := tx.store.Product(id)
	if !ok {
		return nil, nil
	}
	if stock, ok := tx.staged[id]; ok {
		p.Stock = stock
	}
	return &p, nil
}

func (tx *memTx) acquire(ctx context.Context, id int64) error {
	lockCtx := ctx
	if tx.opts.LockTimeout > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, tx.opts.LockTimeout)
		defer cancel()
	}

	ch := tx.store.rowLock(id)
	select {
	case ch <- struct{}{}:
		tx.held[id] = ch
		return nil
	case <-lockCtx.Done():
		if ctx.Err() != nil && !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ctx.Err()
		}
		return fmt.Errorf("%w: product %d", sale.ErrLockTimeout, id)
	}
}

func (tx *memTx) DecrementStock(_ context.Context, productID int64, qty int) error {
	if _, ok := tx.held[productID]; !ok {
		return fmt.Errorf("decrement product %d without holding its lock", productID)
	}
	current, ok := tx.staged[productID]
	if !ok {
		p, exists := tx.store.Product(productID)
		if !exists {
			return fmt.Errorf("product %d vanished", productID)
		}
		current = p.Stock
	}
	if current < qty {
		return fmt.Errorf("stock of product %d would go negative", productID)
	}
	tx.staged[productID] = current - qty
	return nil
}

func (tx *memTx) InsertSale(_ context.Context, sl *model.Sale) error {
	if err := tx.store.fault("insert_sale"); err != nil {
		return err
	}
	if sl.RequestID != nil {
		tx.store.mu.RLock()
		_, dup := tx.store.requests[*sl.RequestID]
		tx.store.mu.RUnlock()
		if dup {
			return sale.ErrDuplicateRequest
		}
	}
	sl.ID = tx.store.saleSeq.Add(1)
	tx.sale = sl
	return nil
}

func (tx *memTx) InsertSaleItem(_ context.Context, item *model.SaleItem) error {
	if err := tx.store.fault("insert_sale_item"); err != nil {
		return err
	}
	item.ID = tx.store.itemSeq.Add(1)
	tx.items = append(tx.items, *item)
	return nil
}

func (tx *memTx) LogMovement(_ context.Context, m *model.InventoryMovement) error {
	if err := tx.store.fault("log_movement"); err != nil {
		return err
	}
	tx.movements = append(tx.movements, *m)
	return nil
}

func (tx *memTx) commit() error {
	s := tx.store
	if err := s.fault("commit"); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if tx.sale != nil && tx.sale.RequestID != nil {
		if _, dup := s.requests[*tx.sale.RequestID]; dup {
			return sale.ErrDuplicateRequest
		}
	}

	for id, stock := range tx.staged {
		p := s.products[id]
		p.Stock = stock
		s.products[id] = p
	}
	if tx.sale != nil {
		stored := *tx.sale
		stored.Items = append([]model.SaleItem(nil), tx.items...)
		s.sales[stored.ID] = stored
		if stored.RequestID != nil {
			s.requests[*stored.RequestID] = stored.ID
		}
	}
	s.movements = append(s.movements, tx.movements...)
	return nil
}

func (tx *memTx) release() {
	for id, ch := range tx.held {
		<-ch
		delete(tx.held, id)
	}
}

func copySale(sl model.Sale) model.Sale {
	sl.Items = append([]model.SaleItem(nil), sl.Items...)
	return sl
}
