package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/fekuna/omnipos-pdv-service/internal/model"
	"github.com/fekuna/omnipos-pdv-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-pdv-service/internal/product"
	"go.uber.org/zap"
)

type productUseCase struct {
	repo   product.Repository
	logger logger.ZapLogger
}

func NewProductUseCase(repo product.Repository, log logger.ZapLogger) product.UseCase {
	return &productUseCase{
		repo:   repo,
		logger: log,
	}
}

// Lookup resolves an operator query against id, barcode and name.
// Exact matches (id, then barcode) come before name matches.
func (uc *productUseCase) Lookup(ctx context.Context, query string) ([]model.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.Product{}, nil
	}

	results := make([]model.Product, 0, product.MaxLookupResults)
	seen := make(map[int64]struct{}, product.MaxLookupResults)
	add := func(p model.Product) {
		if _, ok := seen[p.ID]; ok || len(results) >= product.MaxLookupResults {
			return
		}
		seen[p.ID] = struct{}{}
		results = append(results, p)
	}

	if id, err := strconv.ParseInt(query, 10, 64); err == nil && id >= 0 {
		p, err := uc.repo.FindByID(ctx, id)
		if err != nil {
			return nil, uc.unavailable("id", query, err)
		}
		if p != nil {
			add(*p)
		}
	}

	p, err := uc.repo.FindByBarcode(ctx, query)
	if err != nil {
		return nil, uc.unavailable("barcode", query, err)
	}
	if p != nil {
		add(*p)
	}

	byName, err := uc.repo.SearchByName(ctx, query, product.MaxLookupResults)
	if err != nil {
		return nil, uc.unavailable("name", query, err)
	}
	for _, p := range byName {
		add(p)
	}

	if len(results) == 0 {
		uc.logger.Info("no product matched lookup", zap.String("query", query))
	} else {
		uc.logger.Debug("product lookup", zap.String("query", query), zap.Int("results", len(results)))
	}
	return results, nil
}

func (uc *productUseCase) unavailable(branch, query string, err error) error {
	uc.logger.Error("product lookup failed",
		zap.String("branch", branch),
		zap.String("query", query),
		zap.Error(err),
	)
	return fmt.Errorf("%w: %s: %v", product.ErrLookupUnavailable, branch, err)
}
