package pgrepo

import (
	"context"

	"github.com/azorastack/market/internal/domain"
	"github.com/azorastack/market/internal/repository/repoargs"
	"github.com/azorastack/market/pkg/uow"
	"github.com/jackc/pgx/v5"
)

// orderColumns joins projects so every loaded order carries the seller and
// project title the ledger needs without a second query.
const orderColumns = `o.id, o.created_at, o.updated_at, o.order_number, o.buyer_id, o.project_id,
	p.seller_id, p.title,
	o.project_price, o.platform_commission, o.seller_earning, o.commission_rate,
	o.status, o.payment_gateway, coalesce(o.payment_order_id, ''), coalesce(o.payment_id, ''), o.paid_at`

type OrderRepository struct {
	db uow.DBTX
}

func NewOrderRepository(db uow.DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, args repoargs.CreateOrder) (*domain.Order, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO orders (order_number, buyer_id, project_id, project_price,
			platform_commission, seller_earning, commission_rate, status, payment_gateway)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		args.OrderNumber, args.BuyerID, args.ProjectID, args.ProjectPrice,
		args.PlatformCommission, args.SellerEarning, args.CommissionRate,
		domain.OrderStatusCreated, args.PaymentGateway).Scan(&id)
	if err != nil {
		return nil, convertErr(err, "creating order `%s`", args.OrderNumber)
	}
	return r.FindByID(ctx, id)
}

func (r *OrderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+orderColumns+` FROM orders o
		JOIN projects p ON p.id = o.project_id
		WHERE o.id = $1`, id)
	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "finding order by id %d", id)
	}
	return order, nil
}

// FindByIDForUpdate loads the order with its row locked for the duration of
// the enclosing transaction. The confirmation path uses it for the
// check-then-skip idempotency guard.
func (r *OrderRepository) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+orderColumns+` FROM orders o
		JOIN projects p ON p.id = o.project_id
		WHERE o.id = $1
		FOR UPDATE OF o`, id)
	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "locking order %d", id)
	}
	return order, nil
}

func (r *OrderRepository) FindByPaymentOrderID(ctx context.Context, paymentOrderID string) (*domain.Order, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+orderColumns+` FROM orders o
		JOIN projects p ON p.id = o.project_id
		WHERE o.payment_order_id = $1`, paymentOrderID)
	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "finding order by payment order id `%s`", paymentOrderID)
	}
	return order, nil
}

func (r *OrderRepository) SetPaymentOrderID(ctx context.Context, id int64, paymentOrderID string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE orders SET payment_order_id = $2, updated_at = now() WHERE id = $1`, id, paymentOrderID)
	if err != nil {
		return convertErr(err, "attaching payment order id to order %d", id)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(pgx.ErrNoRows, "attaching payment order id to order %d", id)
	}
	return nil
}

// MarkCompleted transitions the order to COMPLETED from CREATED only; the
// WHERE clause makes the transition race-safe even without the caller's row
// lock.
func (r *OrderRepository) MarkCompleted(ctx context.Context, args repoargs.MarkOrderCompleted) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET status = $2, payment_id = $3, paid_at = $4, updated_at = now()
		WHERE id = $1 AND status = $5`,
		args.OrderID, domain.OrderStatusCompleted, args.PaymentID, args.PaidAt, domain.OrderStatusCreated)
	if err != nil {
		return convertErr(err, "marking order %d completed", args.OrderID)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(pgx.ErrNoRows, "marking order %d completed", args.OrderID)
	}
	return nil
}

func (r *OrderRepository) MarkPaymentFailed(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3`,
		id, domain.OrderStatusPaymentFailed, domain.OrderStatusCreated)
	if err != nil {
		return convertErr(err, "marking order %d payment failed", id)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(pgx.ErrNoRows, "marking order %d payment failed", id)
	}
	return nil
}

func (r *OrderRepository) GetByBuyerID(ctx context.Context, buyerID int64) ([]domain.Order, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+orderColumns+` FROM orders o
		JOIN projects p ON p.id = o.project_id
		WHERE o.buyer_id = $1
		ORDER BY o.created_at DESC`, buyerID)
	if err != nil {
		return nil, convertErr(err, "listing orders of buyer %d", buyerID)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, scanErr := scanOrder(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "listing orders of buyer %d", buyerID)
		}
		orders = append(orders, *order)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "listing orders of buyer %d", buyerID)
	}
	return orders, nil
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(
		&o.ID, &o.CreatedAt, &o.UpdatedAt, &o.OrderNumber, &o.BuyerID, &o.ProjectID,
		&o.SellerID, &o.ProjectTitle,
		&o.ProjectPrice, &o.PlatformCommission, &o.SellerEarning, &o.CommissionRate,
		&o.Status, &o.PaymentGateway, &o.PaymentOrderID, &o.PaymentID, &o.PaidAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
