package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/omnipos-pdv-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-pdv-service/internal/model"
	"github.com/fekuna/omnipos-pdv-service/internal/pkg/clock"
	"github.com/fekuna/omnipos-pdv-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-pdv-service/internal/sale"
	saledto "github.com/fekuna/omnipos-pdv-service/internal/sale/dto"
	"github.com/fekuna/omnipos-pdv-service/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var testNow = time.Date(2026, 10, 17, 23, 15, 0, 0, time.UTC)

func money(c int64) *model.Money {
	m := model.Money(c)
	return &m
}

func strPtr(s string) *string { return &s }

func newStore() *memory.Store {
	return memory.NewStore(
		model.Product{ID: 1, Name: "Ingresso Pista", Price: 1000, Stock: 10, Barcode: strPtr("7891234567890")},
		model.Product{ID: 2, Name: "Água Mineral", Price: 500, Stock: 5},
		model.Product{ID: 3, Name: "Cerveja", Price: 1200, Stock: 1},
	)
}

func newUseCase(t *testing.T, store *memory.Store, locker sale.RequestLocker, pub sale.EventPublisher) sale.UseCase {
	t.Helper()
	return NewSaleUseCase(store, locker, pub, clock.NewMockClock(testNow), Config{
		LockTimeout:    100 * time.Millisecond,
		RequestTimeout: 5 * time.Second,
	}, logger.Wrap(zaptest.NewLogger(t)))
}

func cashInput(paid int64, lines ...saledto.CartLine) *saledto.CheckoutInput {
	return &saledto.CheckoutInput{
		OperatorID:    "7",
		OperatorName:  "caixa1",
		Lines:         lines,
		PaymentMethod: model.PaymentCash,
		PaidAmount:    money(paid),
	}
}

func line(id int64, qty int, price int64) saledto.CartLine {
	return saledto.CartLine{ProductID: id, Quantity: qty, UnitPrice: model.Money(price)}
}

func requireCheckoutErr(t *testing.T, err error, reason error, kind sale.Kind) *sale.CheckoutError {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, reason)
	ce, ok := sale.AsCheckoutError(err)
	require.True(t, ok, "expected *sale.CheckoutError, got %T", err)
	assert.Equal(t, kind, ce.Kind)
	return ce
}

func TestCheckout_RoundTrip(t *testing.T) {
	store := newStore()
	uc := newUseCase(t, store, nil, nil)

	input := cashInput(3000, line(1, 2, 1000), line(2, 1, 500))
	input.TotalAmount = money(2500)
	input.ChangeAmount = money(9999)

	res, err := uc.Checkout(context.Background(), input)
	require.NoError(t, err)
	require.False(t, res.Replayed)

	s := res.Sale
	assert.Equal(t, model.Money(2500), s.TotalAmount)
	assert.Equal(t, testNow, s.Timestamp)
	require.NotNil(t, s.ChangeAmount)
	assert.Equal(t, model.Money(500), *s.ChangeAmount, "change is recomputed, not trusted")

	var sum model.Money
	for _, item := range s.Items {
		sum += item.Subtotal()
	}
	assert.Equal(t, s.TotalAmount, sum)

	require.Len(t, res.Receipts, 3)
	for i, r := range res.Receipts {
		assert.Equal(t, s.ID, r.SaleID)
		assert.Equal(t, i+1, r.UnitIndex)
		assert.Equal(t, 3, r.UnitCount)
		assert.Equal(t, "caixa1", r.OperatorName)
	}
	assert.Equal(t, "Ingresso Pista", res.Receipts[0].ProductName)
	assert.Equal(t, "Água Mineral", res.Receipts[2].ProductName)

	p1, _ := store.Product(1)
	p2, _ := store.Product(2)
	assert.Equal(t, 8, p1.Stock)
	assert.Equal(t, 4, p2.Stock)
	assert.Len(t, store.Sales(), 1)

	movements, total, err := store.ListMovements(context.Background(), &dto.MovementFilters{ProductID: 1})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, -2, movements[0].QuantityChange)
	assert.Equal(t, 10, movements[0].QuantityBefore)
	assert.Equal(t, 8, movements[0].QuantityAfter)
}

func TestCheckout_PriceAtSaleComesFromCart(t *testing.T) {
	store := newStore()
	uc := newUseCase(t, store, nil, nil)

	input := &saledto.CheckoutInput{
		OperatorID:    "7",
		Lines:         []saledto.CartLine{line(1, 1, 800)},
		PaymentMethod: model.PaymentDebit,
		PaidAmount:    money(5000),
	}
	res, err := uc.Checkout(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, model.Money(800), res.Sale.Items[0].PriceAtSale)
	assert.Nil(t, res.Sale.PaidAmount, "paid amount only applies to cash")
	assert.Nil(t, res.Sale.ChangeAmount)
}

func TestCheckout_UnderpaymentLeavesStockUntouched(t *testing.T) {
	store := newStore()
	uc := newUseCase(t, store, nil, nil)

	_, err := uc.Checkout(context.Background(), cashInput(1500, line(1, 2, 1000)))

	ce := requireCheckoutErr(t, err, sale.ErrUnderpayment, sale.KindBusinessRule)
	assert.Equal(t, model.Money(1500), ce.Paid)
	assert.Equal(t, model.Money(2000), ce.Total)

	p, _ := store.Product(1)
	assert.Equal(t, 10, p.Stock)
	assert.Empty(t, store.Sales())
}

func TestCheckout_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *saledto.CheckoutInput)
		reason error
	}{
		{"empty cart", func(in *saledto.CheckoutInput) { in.Lines = nil }, sale.ErrInvalidCart},
		{"zero quantity", func(in *saledto.CheckoutInput) { in.Lines[0].Quantity = 0 }, sale.ErrInvalidCart},
		{"negative price", func(in *saledto.CheckoutInput) { in.Lines[0].UnitPrice = -1 }, sale.ErrInvalidCart},
		{"bad product id", func(in *saledto.CheckoutInput) { in.Lines[0].ProductID = 0 }, sale.ErrInvalidCart},
		{"too many units", func(in *saledto.CheckoutInput) { in.Lines[0].Quantity = MaxUnitsPerSale + 1 }, sale.ErrInvalidCart},
		{"total mismatch", func(in *saledto.CheckoutInput) { in.TotalAmount = money(1) }, sale.ErrInvalidCart},
		{"unknown payment", func(in *saledto.CheckoutInput) { in.PaymentMethod = "cheque" }, sale.ErrInvalidPayment},
		{"cash without paid", func(in *saledto.CheckoutInput) { in.PaidAmount = nil }, sale.ErrInvalidPayment},
		{"negative paid", func(in *saledto.CheckoutInput) { in.PaidAmount = money(-5) }, sale.ErrInvalidPayment},
		{"bad request id", func(in *saledto.CheckoutInput) { in.RequestID = strPtr("abc") }, sale.ErrInvalidRequest},
		{"missing operator", func(in *saledto.CheckoutInput) { in.OperatorID = "" }, sale.ErrMissingOperator},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStore()
			store.FailOn("insert_sale", errors.New("storage must not be touched"))
			uc := newUseCase(t, store, nil, nil)

			input := cashInput(5000, line(1, 1, 1000))
			tt.mutate(input)

			_, err := uc.Checkout(context.Background(), input)
			requireCheckoutErr(t, err, tt.reason, sale.KindValidation)
		})
	}
}

func TestCheckout_ProductNotFoundAbortsAllLines(t *testing.T) {
	store := newStore()
	uc := newUseCase(t, store, nil, nil)

	_, err := uc.Checkout(context.Background(), cashInput(5000, line(1, 1, 1000), line(999, 1, 100)))

	ce := requireCheckoutErr(t, err, sale.ErrProductNotFound, sale.KindBusinessRule)
	assert.Equal(t, int64(999), ce.ProductID)
	assert.Equal(t, 2, ce.Line)

	p, _ := store.Product(1)
	assert.Equal(t, 10, p.Stock)
	assert.Empty(t, store.Sales())
}

func TestCheckout_InsufficientStockCountsRepeatedLines(t *testing.T) {
	store := newStore()
	uc := newUseCase(t, store, nil, nil)

	_, err := uc.Checkout(context.Background(), cashInput(10000, line(2, 3, 500), line(2, 3, 500)))

	ce := requireCheckoutErr(t, err, sale.ErrInsufficientStock, sale.KindBusinessRule)
	assert.Equal(t, 2, ce.Line)
	assert.Equal(t, "Água Mineral", ce.ProductName)
	assert.Equal(t, 2, ce.Available)
	assert.Equal(t, 3, ce.Requested)

	p, _ := store.Product(2)
	assert.Equal(t, 5, p.Stock)
	movements, _, _ := store.ListMovements(context.Background(), &dto.MovementFilters{})
	assert.Empty(t, movements)
}

func TestCheckout_StorageFailureRollsBack(t *testing.T) {
	store := newStore()
	cause := errors.New("disk full")
	store.FailOn("log_movement", cause)
	uc := newUseCase(t, store, nil, nil)

	_, err := uc.Checkout(context.Background(), cashInput(5000, line(1, 2, 1000)))

	ce := requireCheckoutErr(t, err, sale.ErrStorage, sale.KindStorage)
	assert.ErrorIs(t, err, cause)
	assert.False(t, ce.Retryable())

	p, _ := store.Product(1)
	assert.Equal(t, 10, p.Stock)
	assert.Empty(t, store.Sales())
}

func TestCheckout_LastUnitRace(t *testing.T) {
	store := newStore()
	uc := newUseCase(t, store, nil, nil)

	const attempts = 2
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, attempts)
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = uc.Checkout(context.Background(), cashInput(1200, line(3, 1, 1200)))
		}(i)
	}
	close(start)
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, sale.ErrInsufficientStock)
	}
	assert.Equal(t, 1, succeeded)

	p, _ := store.Product(3)
	assert.Equal(t, 0, p.Stock)
}

func TestCheckout_ConcurrentDecrementsWithOverlappingCarts(t *testing.T) {
	store := memory.NewStore(
		model.Product{ID: 10, Name: "A", Price: 100, Stock: 500},
		model.Product{ID: 20, Name: "B", Price: 200, Stock: 500},
	)
	uc := NewSaleUseCase(store, nil, nil, clock.NewMockClock(testNow), Config{
		LockTimeout:    5 * time.Second,
		RequestTimeout: 10 * time.Second,
	}, logger.Nop())

	const n = 40
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		soldA    int
		soldB    int
		failures []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			qa, qb := i%3+1, i%4+1
			lines := []saledto.CartLine{line(10, qa, 100), line(20, qb, 200)}
			if i%2 == 1 {
				lines[0], lines[1] = lines[1], lines[0]
			}
			input := &saledto.CheckoutInput{OperatorID: "op", Lines: lines, PaymentMethod: model.PaymentPix}
			_, err := uc.Checkout(context.Background(), input)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, err)
				return
			}
			soldA += qa
			soldB += qb
		}(i)
	}
	wg.Wait()

	require.Empty(t, failures)
	a, _ := store.Product(10)
	b, _ := store.Product(20)
	assert.Equal(t, 500-soldA, a.Stock)
	assert.Equal(t, 500-soldB, b.Stock)
	assert.Len(t, store.Sales(), n)
}

// holdLock keeps product id locked by another transaction until release is closed.
func holdLock(t *testing.T, store *memory.Store, id int64) (release chan struct{}, done chan struct{}) {
	t.Helper()
	locked := make(chan struct{})
	release = make(chan struct{})
	done = make(chan struct{})
	go func() {
		defer close(done)
		_ = store.RunInTx(context.Background(), sale.TxOptions{}, func(ctx context.Context, tx sale.Tx) error {
			if _, err := tx.GetProductForUpdate(ctx, id); err != nil {
				return err
			}
			close(locked)
			<-release
			return errors.New("rollback")
		})
	}()
	<-locked
	return release, done
}

func TestCheckout_LockWaitIsBounded(t *testing.T) {
	store := newStore()
	uc := newUseCase(t, store, nil, nil)

	release, done := holdLock(t, store, 1)
	defer func() { close(release); <-done }()

	_, err := uc.Checkout(context.Background(), cashInput(1000, line(1, 1, 1000)))

	ce := requireCheckoutErr(t, err, sale.ErrLockTimeout, sale.KindStorage)
	assert.True(t, ce.Retryable())
	p, _ := store.Product(1)
	assert.Equal(t, 10, p.Stock)
}

func TestCheckout_DisjointProductsDoNotBlock(t *testing.T) {
	store := newStore()
	uc := newUseCase(t, store, nil, nil)

	release, done := holdLock(t, store, 1)
	defer func() { close(release); <-done }()

	_, err := uc.Checkout(context.Background(), cashInput(500, line(2, 1, 500)))
	require.NoError(t, err)
}

type fakeLocker struct {
	mu      sync.Mutex
	held    map[string]string
	err     error
	acquire int
}

func (f *fakeLocker) AcquireLock(_ context.Context, key, value string, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acquire++
	if f.err != nil {
		return false, f.err
	}
	if f.held == nil {
		f.held = map[string]string{}
	}
	if _, ok := f.held[key]; ok {
		return false, nil
	}
	f.held[key] = value
	return true, nil
}

func (f *fakeLocker) ReleaseLock(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held[key] == value {
		delete(f.held, key)
	}
	return nil
}

func TestCheckout_RequestIDReplaysCommittedSale(t *testing.T) {
	store := newStore()
	locker := &fakeLocker{}
	uc := newUseCase(t, store, locker, nil)

	input := cashInput(2000, line(1, 2, 1000))
	input.RequestID = strPtr("6f1c1c2e-2f43-4a4e-8d1e-4b8e5b0c9a10")

	first, err := uc.Checkout(context.Background(), input)
	require.NoError(t, err)
	second, err := uc.Checkout(context.Background(), input)
	require.NoError(t, err)

	assert.False(t, first.Replayed)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.Sale.ID, second.Sale.ID)
	assert.Len(t, second.Receipts, 2)

	p, _ := store.Product(1)
	assert.Equal(t, 8, p.Stock)
	assert.Len(t, store.Sales(), 1)
	assert.Empty(t, locker.held, "lock released after checkout")
}

func TestCheckout_RequestInProgress(t *testing.T) {
	store := newStore()
	reqID := "6f1c1c2e-2f43-4a4e-8d1e-4b8e5b0c9a10"
	locker := &fakeLocker{held: map[string]string{"lock:checkout:" + reqID: "other"}}
	uc := newUseCase(t, store, locker, nil)

	input := cashInput(1000, line(1, 1, 1000))
	input.RequestID = &reqID

	_, err := uc.Checkout(context.Background(), input)

	ce := requireCheckoutErr(t, err, sale.ErrCheckoutInProgress, sale.KindBusinessRule)
	assert.True(t, ce.Retryable())
	assert.Empty(t, store.Sales())
}

func TestCheckout_LockerDownFallsBackToLedger(t *testing.T) {
	store := newStore()
	uc := newUseCase(t, store, &fakeLocker{err: errors.New("redis: connection refused")}, nil)

	input := cashInput(1000, line(1, 1, 1000))
	input.RequestID = strPtr("6f1c1c2e-2f43-4a4e-8d1e-4b8e5b0c9a10")

	_, err := uc.Checkout(context.Background(), input)
	require.NoError(t, err)
	res, err := uc.Checkout(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, res.Replayed)
}

type chanPublisher struct {
	ch chan *model.Sale
}

func (p *chanPublisher) PublishSaleCompleted(_ context.Context, s *model.Sale) error {
	p.ch <- s
	return nil
}

func TestCheckout_PublishesSaleCompleted(t *testing.T) {
	store := newStore()
	pub := &chanPublisher{ch: make(chan *model.Sale, 1)}
	uc := newUseCase(t, store, nil, pub)

	res, err := uc.Checkout(context.Background(), cashInput(1000, line(1, 1, 1000)))
	require.NoError(t, err)

	select {
	case s := <-pub.ch:
		assert.Equal(t, res.Sale.ID, s.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("sale event was not published")
	}
}

func TestGetReceipts(t *testing.T) {
	store := newStore()
	uc := newUseCase(t, store, nil, nil)

	res, err := uc.Checkout(context.Background(), cashInput(2500, line(1, 2, 1000), line(2, 1, 500)))
	require.NoError(t, err)

	receipts, err := uc.GetReceipts(context.Background(), res.Sale.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Receipts, receipts)

	_, err = uc.GetReceipts(context.Background(), 12345)
	assert.ErrorIs(t, err, sale.ErrSaleNotFound)
}
