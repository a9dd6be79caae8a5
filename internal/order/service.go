package order

import (
	"context"
	"errors"
	"fmt"

	"clubsite-be/internal/logger"
	"clubsite-be/internal/utils"

	"go.uber.org/zap"
)

type Service interface {
	Checkout(ctx context.Context, in CheckoutInput) ([]Order, error)
	Summary(ctx context.Context, orderID string) (*Summary, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Checkout stores one row per cart item, all sharing a fresh order id. When a
// row fails to save, the rows already stored for the cart are removed again.
func (s *service) Checkout(ctx context.Context, in CheckoutInput) ([]Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("method", "Checkout"),
		zap.Int("items", len(in.Items)),
	)

	if err := utils.Validate(in); err != nil {
		log.Warn("checkout rejected", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if in.needsAddress() && in.Address == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, ErrAddressRequired)
	}

	rows := toOrders(in)
	saved := make([]Order, 0, len(rows))
	orderID := ""

	for _, row := range rows {
		o, err := s.repo.AddOrder(ctx, row, orderID)
		if err != nil {
			left := s.discard(ctx, saved)
			log.Error("checkout failed",
				zap.String("order_id", orderID),
				zap.Strings("saved_ids", rowIDs(saved)),
				zap.Strings("orphan_ids", left),
				zap.Error(err),
			)
			return nil, err
		}
		orderID = o.OrderID
		saved = append(saved, *o)
	}

	log.Info("checkout stored", zap.String("order_id", orderID))
	return saved, nil
}

// discard removes the rows of a checkout that failed halfway and returns the
// ids it could not delete.
func (s *service) discard(ctx context.Context, rows []Order) []string {
	ctx = context.WithoutCancel(ctx)
	var left []string
	for _, o := range rows {
		if err := s.repo.DeleteOrder(ctx, o.ID); err != nil && !errors.Is(err, ErrOrderNotFound) {
			logger.FromCtx(ctx).Warn("removing partial checkout row failed",
				zap.String("id", o.ID),
				zap.Error(err),
			)
			left = append(left, o.ID)
		}
	}
	return left
}

func rowIDs(rows []Order) []string {
	ids := make([]string, len(rows))
	for i, o := range rows {
		ids[i] = o.ID
	}
	return ids
}

func (s *service) Summary(ctx context.Context, orderID string) (*Summary, error) {
	items, err := s.repo.GetOrdersByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrOrderNotFound
	}

	total, err := s.repo.GetOrderTotal(ctx, orderID)
	if err != nil {
		return nil, err
	}

	return &Summary{OrderID: orderID, Items: items, Total: total}, nil
}
