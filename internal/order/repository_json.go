package order

import (
	"context"
	"sort"

	"clubsite-be/internal/jsonstore"
	"clubsite-be/internal/logger"

	"go.uber.org/zap"
)

const ordersFile = "orders.json"

type jsonRepository struct {
	store *jsonstore.Collection[Order]
}

func NewJSONRepository(dataDir string) Repository {
	return &jsonRepository{store: jsonstore.NewCollection[Order](dataDir, ordersFile)}
}

// backfill gives rows from older files without a quantity the default of 1.
func backfill(orders []Order) []Order {
	for i := range orders {
		orders[i].Quantity = effectiveQuantity(orders[i].Quantity)
	}
	return orders
}

func (r *jsonRepository) load(ctx context.Context) ([]Order, error) {
	orders, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return backfill(orders), nil
}

func (r *jsonRepository) update(ctx context.Context, fn func([]Order) ([]Order, error)) error {
	return r.store.Modify(ctx, func(orders []Order) ([]Order, error) {
		return fn(backfill(orders))
	})
}

func (r *jsonRepository) InitDatabase(ctx context.Context) error {
	if err := r.store.Ensure(); err != nil {
		return err
	}
	orders, err := r.load(ctx)
	if err != nil {
		return err
	}
	logger.FromCtx(ctx).Info("JSON order store ready",
		zap.String("path", r.store.Path()),
		zap.Int("orders", len(orders)),
	)
	return nil
}

func (r *jsonRepository) GetAllOrders(ctx context.Context) ([]Order, error) {
	orders, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].Date.After(orders[j].Date)
	})
	return orders, nil
}

func (r *jsonRepository) AddOrder(ctx context.Context, o Order, orderID string) (*Order, error) {
	var row Order
	err := r.update(ctx, func(orders []Order) ([]Order, error) {
		id := orderID
		if id == "" {
			var err error
			id, err = uniqueOrderID(func(candidate string) (bool, error) {
				for _, existing := range orders {
					if existing.OrderID == candidate {
						return true, nil
					}
				}
				return false, nil
			})
			if err != nil {
				return nil, err
			}
		}
		row = prepareNew(o, id)
		return append(orders, row), nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("order added",
		zap.String("id", row.ID),
		zap.String("order_id", row.OrderID),
	)
	return &row, nil
}

func (r *jsonRepository) GetOrdersByOrderID(ctx context.Context, orderID string) ([]Order, error) {
	orders, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	out := []Order{}
	for _, o := range orders {
		if o.OrderID == orderID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *jsonRepository) GetOrderTotal(ctx context.Context, orderID string) (float64, error) {
	orders, err := r.GetOrdersByOrderID(ctx, orderID)
	if err != nil {
		return 0, err
	}
	return sumTotal(orders), nil
}

func (r *jsonRepository) UpdateOrder(ctx context.Context, o Order) error {
	return r.update(ctx, func(orders []Order) ([]Order, error) {
		for i := range orders {
			if orders[i].ID == o.ID {
				o.Quantity = effectiveQuantity(o.Quantity)
				orders[i] = o
				return orders, nil
			}
		}
		return nil, ErrOrderNotFound
	})
}

func (r *jsonRepository) UpdateOrderStatus(ctx context.Context, orderID string, status Status) error {
	return r.update(ctx, func(orders []Order) ([]Order, error) {
		found := false
		for i := range orders {
			if orders[i].OrderID == orderID {
				orders[i].Status = status
				found = true
			}
		}
		if !found {
			return nil, ErrOrderNotFound
		}
		return orders, nil
	})
}

func (r *jsonRepository) DeleteOrder(ctx context.Context, id string) error {
	return r.update(ctx, func(orders []Order) ([]Order, error) {
		for i := range orders {
			if orders[i].ID == id {
				return append(orders[:i], orders[i+1:]...), nil
			}
		}
		return nil, ErrOrderNotFound
	})
}

// modifyRow applies fn to the row with the given id and returns the stored result.
func (r *jsonRepository) modifyRow(ctx context.Context, id string, fn func(*Order)) (*Order, error) {
	var updated Order
	err := r.update(ctx, func(orders []Order) ([]Order, error) {
		for i := range orders {
			if orders[i].ID == id {
				fn(&orders[i])
				updated = orders[i]
				return orders, nil
			}
		}
		return nil, ErrOrderNotFound
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *jsonRepository) UpdateTrackingNumber(ctx context.Context, id, trackingNumber string) (*Order, error) {
	return r.modifyRow(ctx, id, func(o *Order) {
		o.TrackingNumber = trackingNumber
		o.TrackingSent = false
	})
}

func (r *jsonRepository) MarkTrackingAsSent(ctx context.Context, id string) (*Order, error) {
	return r.modifyRow(ctx, id, func(o *Order) {
		o.TrackingSent = true
	})
}

func (r *jsonRepository) SetOrderedFromSupplier(ctx context.Context, id string, ordered bool) (*Order, error) {
	return r.modifyRow(ctx, id, func(o *Order) {
		o.OrderedFromSupplier = ordered
	})
}
