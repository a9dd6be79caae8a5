package order

import (
	"context"
	"database/sql"
	"errors"

	"clubsite-be/internal/db"
	"clubsite-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	InitDatabase(ctx context.Context) error
	GetAllOrders(ctx context.Context) ([]Order, error)
	AddOrder(ctx context.Context, o Order, orderID string) (*Order, error)
	GetOrdersByOrderID(ctx context.Context, orderID string) ([]Order, error)
	GetOrderTotal(ctx context.Context, orderID string) (float64, error)
	UpdateOrder(ctx context.Context, o Order) error
	UpdateOrderStatus(ctx context.Context, orderID string, status Status) error
	DeleteOrder(ctx context.Context, id string) error
	UpdateTrackingNumber(ctx context.Context, id, trackingNumber string) (*Order, error)
	MarkTrackingAsSent(ctx context.Context, id string) (*Order, error)
	SetOrderedFromSupplier(ctx context.Context, id string, ordered bool) (*Order, error)
}

// NewRepository picks the MySQL or JSON-file backend.
func NewRepository(useMySQL bool, q db.Querier, dataDir string) Repository {
	if useMySQL {
		return NewMySQLRepository(q)
	}
	return NewJSONRepository(dataDir)
}

const orderColumns = `id, orderId, name, email, phone, address, color, colorName, size,
	delivery, quantity, price, status, date, isCrew, orderedFromSupplier,
	trackingNumber, trackingSent`

type mysqlRepository struct {
	db db.Querier
}

func NewMySQLRepository(q db.Querier) Repository {
	return &mysqlRepository{db: q}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(s scanner) (Order, error) {
	var o Order
	err := s.Scan(
		&o.ID, &o.OrderID, &o.Name, &o.Email, &o.Phone, &o.Address,
		&o.Color, &o.ColorName, &o.Size, &o.Delivery, &o.Quantity, &o.Price,
		&o.Status, &o.Date, &o.IsCrew, &o.OrderedFromSupplier,
		&o.TrackingNumber, &o.TrackingSent,
	)
	return o, err
}

// InsertOrder writes a row as-is. The importer uses it to keep fixture ids.
func InsertOrder(ctx context.Context, q db.Querier, o Order) error {
	_, err := db.Exec(ctx, q, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		o.ID, o.OrderID, o.Name, o.Email, o.Phone, o.Address,
		o.Color, o.ColorName, o.Size, o.Delivery, effectiveQuantity(o.Quantity), o.Price,
		o.Status, o.Date, o.IsCrew, o.OrderedFromSupplier,
		o.TrackingNumber, o.TrackingSent,
	)
	return err
}

func (r *mysqlRepository) InitDatabase(ctx context.Context) error {
	return nil
}

func (r *mysqlRepository) queryOrders(ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := db.Query(ctx, r.db, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			logger.FromCtx(ctx).Error("order row scan failed", zap.Error(err))
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *mysqlRepository) GetAllOrders(ctx context.Context) ([]Order, error) {
	return r.queryOrders(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY date DESC`)
}

func (r *mysqlRepository) AddOrder(ctx context.Context, o Order, orderID string) (*Order, error) {
	log := logger.FromCtx(ctx)

	if orderID == "" {
		var err error
		orderID, err = uniqueOrderID(func(id string) (bool, error) {
			var n int
			err := r.db.QueryRowContext(ctx,
				`SELECT COUNT(*) FROM orders WHERE orderId = ?`, id,
			).Scan(&n)
			return n > 0, err
		})
		if err != nil {
			log.Error("order id generation failed", zap.Error(err))
			return nil, err
		}
	}

	row := prepareNew(o, orderID)
	if err := InsertOrder(ctx, r.db, row); err != nil {
		return nil, err
	}

	log.Info("order added",
		zap.String("id", row.ID),
		zap.String("order_id", row.OrderID),
	)
	return &row, nil
}

func (r *mysqlRepository) GetOrdersByOrderID(ctx context.Context, orderID string) ([]Order, error) {
	return r.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE orderId = ? ORDER BY date ASC`, orderID)
}

func (r *mysqlRepository) GetOrderTotal(ctx context.Context, orderID string) (float64, error) {
	var total float64
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(price * GREATEST(quantity, 1)), 0)
		FROM orders
		WHERE orderId = ?
	`, orderID).Scan(&total)
	if err != nil {
		logger.FromCtx(ctx).Error("order total query failed",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		return 0, err
	}
	return total, nil
}

// execAffecting runs a write and maps zero matched rows to ErrOrderNotFound.
func (r *mysqlRepository) execAffecting(ctx context.Context, query string, args ...any) error {
	res, err := db.Exec(ctx, r.db, query, args...)
	if err != nil {
		return err
	}
	return db.Affected(res, ErrOrderNotFound)
}

func (r *mysqlRepository) UpdateOrder(ctx context.Context, o Order) error {
	return r.execAffecting(ctx, `
		UPDATE orders SET
			orderId = ?, name = ?, email = ?, phone = ?, address = ?,
			color = ?, colorName = ?, size = ?, delivery = ?, quantity = ?,
			price = ?, status = ?, date = ?, isCrew = ?, orderedFromSupplier = ?,
			trackingNumber = ?, trackingSent = ?
		WHERE id = ?
	`,
		o.OrderID, o.Name, o.Email, o.Phone, o.Address,
		o.Color, o.ColorName, o.Size, o.Delivery, effectiveQuantity(o.Quantity),
		o.Price, o.Status, o.Date, o.IsCrew, o.OrderedFromSupplier,
		o.TrackingNumber, o.TrackingSent,
		o.ID,
	)
}

func (r *mysqlRepository) UpdateOrderStatus(ctx context.Context, orderID string, status Status) error {
	return r.execAffecting(ctx, `UPDATE orders SET status = ? WHERE orderId = ?`, status, orderID)
}

func (r *mysqlRepository) DeleteOrder(ctx context.Context, id string) error {
	return r.execAffecting(ctx, `DELETE FROM orders WHERE id = ?`, id)
}

func (r *mysqlRepository) getByID(ctx context.Context, id string) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("order fetch failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return &o, nil
}

func (r *mysqlRepository) UpdateTrackingNumber(ctx context.Context, id, trackingNumber string) (*Order, error) {
	err := r.execAffecting(ctx,
		`UPDATE orders SET trackingNumber = ?, trackingSent = FALSE WHERE id = ?`,
		trackingNumber, id)
	if err != nil {
		return nil, err
	}
	return r.getByID(ctx, id)
}

func (r *mysqlRepository) MarkTrackingAsSent(ctx context.Context, id string) (*Order, error) {
	if err := r.execAffecting(ctx, `UPDATE orders SET trackingSent = TRUE WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return r.getByID(ctx, id)
}

func (r *mysqlRepository) SetOrderedFromSupplier(ctx context.Context, id string, ordered bool) (*Order, error) {
	err := r.execAffecting(ctx,
		`UPDATE orders SET orderedFromSupplier = ? WHERE id = ?`, ordered, id)
	if err != nil {
		return nil, err
	}
	return r.getByID(ctx, id)
}
