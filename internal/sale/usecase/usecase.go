package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/fekuna/omnipos-pdv-service/internal/model"
	"github.com/fekuna/omnipos-pdv-service/internal/pkg/clock"
	"github.com/fekuna/omnipos-pdv-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-pdv-service/internal/sale"
	"github.com/fekuna/omnipos-pdv-service/internal/sale/dto"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Config struct {
	LockTimeout    time.Duration
	RequestTimeout time.Duration
	RequestLockTTL time.Duration
}

type saleUseCase struct {
	repo      sale.Repository
	locker    sale.RequestLocker
	publisher sale.EventPublisher
	clock     clock.Clock
	cfg       Config
	logger    logger.ZapLogger
}

// NewSaleUseCase wires the checkout engine. locker and publisher may be nil.
func NewSaleUseCase(repo sale.Repository, locker sale.RequestLocker, publisher sale.EventPublisher, clk clock.Clock, cfg Config, log logger.ZapLogger) sale.UseCase {
	if cfg.RequestLockTTL <= 0 {
		cfg.RequestLockTTL = 30 * time.Second
	}
	return &saleUseCase{
		repo:      repo,
		locker:    locker,
		publisher: publisher,
		clock:     clk,
		cfg:       cfg,
		logger:    log,
	}
}

func (uc *saleUseCase) Checkout(ctx context.Context, input *dto.CheckoutInput) (*dto.CheckoutResult, error) {
	pay, err := validate(input)
	if err != nil {
		uc.logger.Info("checkout rejected", zap.String("operator_id", input.OperatorID), zap.Error(err))
		return nil, err
	}
	if input.PaymentMethod == model.PaymentCash && input.ChangeAmount != nil && *input.ChangeAmount != *pay.change {
		uc.logger.Warn("client change amount ignored",
			zap.Stringer("client_change", *input.ChangeAmount),
			zap.Stringer("change", *pay.change),
		)
	}

	if uc.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.cfg.RequestTimeout)
		defer cancel()
	}

	if input.RequestID != nil {
		release, err := uc.lockRequest(ctx, *input.RequestID)
		if err != nil {
			return nil, err
		}
		defer release()

		if res, err := uc.replay(ctx, *input.RequestID); res != nil || err != nil {
			return res, err
		}
	}

	s, err := uc.commit(ctx, input, pay)
	if err != nil {
		if input.RequestID != nil && errors.Is(err, sale.ErrDuplicateRequest) {
			// Lost the race against an identical submission without a lock.
			if res, rerr := uc.replay(ctx, *input.RequestID); res != nil || rerr != nil {
				return res, rerr
			}
		}
		return nil, uc.fail(input, err)
	}

	uc.logger.Info("sale committed",
		zap.Int64("sale_id", s.ID),
		zap.String("operator_id", s.OperatorID),
		zap.Stringer("total", s.TotalAmount),
		zap.String("payment_method", string(s.PaymentMethod)),
		zap.Int("units", pay.units),
	)
	uc.publish(s)

	return &dto.CheckoutResult{Sale: s, Receipts: BuildReceipts(s)}, nil
}

// commit runs the locked read-check-write cycle in a single transaction.
func (uc *saleUseCase) commit(ctx context.Context, input *dto.CheckoutInput, pay *payment) (*model.Sale, error) {
	s := &model.Sale{
		RequestID:     input.RequestID,
		Timestamp:     uc.clock.Now(),
		TotalAmount:   pay.total,
		PaymentMethod: input.PaymentMethod,
		PaidAmount:    pay.paid,
		ChangeAmount:  pay.change,
		OperatorID:    input.OperatorID,
		OperatorName:  input.OperatorName,
	}

	err := uc.repo.RunInTx(ctx, sale.TxOptions{LockTimeout: uc.cfg.LockTimeout}, func(ctx context.Context, tx sale.Tx) error {
		if err := tx.InsertSale(ctx, s); err != nil {
			return fmt.Errorf("insert sale: %w", err)
		}

		// Ascending id order keeps overlapping carts from deadlocking.
		firstLine := make(map[int64]int, len(input.Lines))
		ids := make([]int64, 0, len(input.Lines))
		for i, line := range input.Lines {
			if _, ok := firstLine[line.ProductID]; !ok {
				firstLine[line.ProductID] = i + 1
				ids = append(ids, line.ProductID)
			}
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		locked := make(map[int64]*model.Product, len(ids))
		for _, id := range ids {
			p, err := tx.GetProductForUpdate(ctx, id)
			if err != nil {
				return fmt.Errorf("lock product %d: %w", id, err)
			}
			if p == nil {
				return &sale.CheckoutError{
					Kind:      sale.KindBusinessRule,
					Err:       sale.ErrProductNotFound,
					Line:      firstLine[id],
					ProductID: id,
				}
			}
			locked[id] = p
		}

		saleRef := strconv.FormatInt(s.ID, 10)
		refType := model.ReferenceTypeSale
		operator := input.OperatorID
		var total model.Money
		s.Items = make([]model.SaleItem, 0, len(input.Lines))

		for i, line := range input.Lines {
			p := locked[line.ProductID]
			if p.Stock < line.Quantity {
				return &sale.CheckoutError{
					Kind:        sale.KindBusinessRule,
					Err:         sale.ErrInsufficientStock,
					Line:        i + 1,
					ProductID:   p.ID,
					ProductName: p.Name,
					Available:   p.Stock,
					Requested:   line.Quantity,
					Detail:      fmt.Sprintf("available %d, requested %d", p.Stock, line.Quantity),
				}
			}

			before := p.Stock
			if err := tx.DecrementStock(ctx, p.ID, line.Quantity); err != nil {
				return fmt.Errorf("decrement stock of product %d: %w", p.ID, err)
			}
			p.Stock -= line.Quantity

			item := model.SaleItem{
				SaleID:      s.ID,
				ProductID:   p.ID,
				ProductName: p.Name,
				Quantity:    line.Quantity,
				PriceAtSale: line.UnitPrice,
			}
			if err := tx.InsertSaleItem(ctx, &item); err != nil {
				return fmt.Errorf("insert sale item for product %d: %w", p.ID, err)
			}
			s.Items = append(s.Items, item)
			total += item.Subtotal()

			movement := &model.InventoryMovement{
				ID:             uuid.New().String(),
				ProductID:      p.ID,
				MovementType:   model.MovementTypeSale,
				QuantityChange: -line.Quantity,
				QuantityBefore: before,
				QuantityAfter:  p.Stock,
				ReferenceType:  &refType,
				ReferenceID:    &saleRef,
				CreatedBy:      &operator,
				CreatedAt:      s.Timestamp,
			}
			if err := tx.LogMovement(ctx, movement); err != nil {
				return fmt.Errorf("log movement for product %d: %w", p.ID, err)
			}
		}

		if total != s.TotalAmount {
			return fmt.Errorf("line subtotals %s disagree with sale total %s", total, s.TotalAmount)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (uc *saleUseCase) fail(input *dto.CheckoutInput, err error) error {
	if ce, ok := sale.AsCheckoutError(err); ok {
		uc.logger.Info("checkout aborted",
			zap.String("operator_id", input.OperatorID),
			zap.String("reason", ce.Reason()),
			zap.Int("line", ce.Line),
			zap.Int64("product_id", ce.ProductID),
		)
		return ce
	}
	if errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("%w: %v", sale.ErrLockTimeout, err)
	}

	ce := sale.StorageFailure(err)
	uc.logger.Error("checkout storage failure",
		zap.String("operator_id", input.OperatorID),
		zap.String("reason", ce.Reason()),
		zap.Error(err),
	)
	return ce
}

// lockRequest takes the short-lived request-id lock. Redis trouble is logged
// and tolerated; the unique request_id column still prevents double sales.
func (uc *saleUseCase) lockRequest(ctx context.Context, requestID string) (func(), error) {
	noop := func() {}
	if uc.locker == nil {
		return noop, nil
	}

	key := "lock:checkout:" + requestID
	value := uuid.New().String()
	ok, err := uc.locker.AcquireLock(ctx, key, value, uc.cfg.RequestLockTTL)
	if err != nil {
		uc.logger.Warn("checkout request lock unavailable", zap.String("request_id", requestID), zap.Error(err))
		return noop, nil
	}
	if !ok {
		return nil, &sale.CheckoutError{Kind: sale.KindBusinessRule, Err: sale.ErrCheckoutInProgress, Detail: "request " + requestID}
	}

	return func() {
		if err := uc.locker.ReleaseLock(context.Background(), key, value); err != nil {
			uc.logger.Warn("failed to release checkout request lock", zap.String("request_id", requestID), zap.Error(err))
		}
	}, nil
}

// replay returns the stored result for an already committed request id.
func (uc *saleUseCase) replay(ctx context.Context, requestID string) (*dto.CheckoutResult, error) {
	s, err := uc.repo.FindSaleByRequestID(ctx, requestID)
	if err != nil {
		uc.logger.Error("failed to look up checkout request", zap.String("request_id", requestID), zap.Error(err))
		return nil, sale.StorageFailure(err)
	}
	if s == nil {
		return nil, nil
	}
	uc.logger.Info("checkout replayed", zap.String("request_id", requestID), zap.Int64("sale_id", s.ID))
	return &dto.CheckoutResult{Sale: s, Receipts: BuildReceipts(s), Replayed: true}, nil
}

func (uc *saleUseCase) publish(s *model.Sale) {
	if uc.publisher == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := uc.publisher.PublishSaleCompleted(ctx, s); err != nil {
			uc.logger.Error("failed to publish sale event", zap.Int64("sale_id", s.ID), zap.Error(err))
		}
	}()
}

func (uc *saleUseCase) GetReceipts(ctx context.Context, saleID int64) ([]dto.ReceiptLine, error) {
	s, err := uc.repo.FindSaleByID(ctx, saleID)
	if err != nil {
		uc.logger.Error("failed to load sale", zap.Int64("sale_id", saleID), zap.Error(err))
		return nil, err
	}
	if s == nil {
		return nil, sale.ErrSaleNotFound
	}
	return BuildReceipts(s), nil
}
