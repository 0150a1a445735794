package repositories

import (
	"context"
	"errors"

	"freshfetch/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PostgresOrderRepository struct {
	db *pgxpool.Pool
}

func NewPostgresOrderRepository(db *pgxpool.Pool) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *PostgresOrderRepository) Create(ctx context.Context, order *models.Order) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	order.Email = normalizeEmail(order.Email)
	doc, err := encodeDoc(order)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO orders (id, user_id, idempotency_key, doc, created_at) VALUES ($1, $2, $3, $4::jsonb, $5)`,
		order.ID.Hex(), nullable(orderOwner(order)), nullable(order.IdempotencyKey), doc, order.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

const orderColumns = `doc, COALESCE(idempotency_key, '')`

func scanOrder(row pgx.Row) (*models.Order, error) {
	var (
		raw []byte
		key string
	)
	if err := row.Scan(&raw, &key); err != nil {
		return nil, mapRowErr(err)
	}
	var order models.Order
	if err := decodeDoc(raw, &order); err != nil {
		return nil, err
	}
	order.IdempotencyKey = key
	return &order, nil
}

func (r *PostgresOrderRepository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	if _, err := parseID(id); err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	return scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
}

func (r *PostgresOrderRepository) FindByIdempotencyKey(ctx context.Context, userID, key string) (*models.Order, error) {
	if userID == "" || key == "" {
		return nil, ErrNotFound
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	return scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 AND idempotency_key = $2`, userID, key))
}

func (r *PostgresOrderRepository) List(ctx context.Context, filter models.OrderFilter) ([]models.Order, int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	where := orderWhere(filter)
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders`+where.String(), where.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, args := pageClause(where, filter.Page.Normalize())
	rows, err := r.db.Query(ctx,
		`SELECT `+orderColumns+` FROM orders`+where.String()+` ORDER BY created_at DESC, id DESC`+limit, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, *o)
	}
	return orders, total, rows.Err()
}

func (r *PostgresOrderRepository) Update(ctx context.Context, id string, fields models.Fields) (*models.Order, error) {
	if _, err := parseID(id); err != nil {
		return nil, err
	}
	patch, err := encodeDoc(fields)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	return scanOrder(r.db.QueryRow(ctx,
		`UPDATE orders SET doc = doc || $2::jsonb WHERE id = $1 RETURNING `+orderColumns, id, patch))
}

func (r *PostgresOrderRepository) UpdateIfStatus(ctx context.Context, id, from string, fields models.Fields) (*models.Order, error) {
	if _, err := parseID(id); err != nil {
		return nil, err
	}
	patch, err := encodeDoc(fields)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	order, err := scanOrder(r.db.QueryRow(ctx,
		`UPDATE orders SET doc = doc || $3::jsonb
		  WHERE id = $1 AND doc->>'orderStatus' = $2
		  RETURNING `+orderColumns, id, from, patch))
	if errors.Is(err, ErrNotFound) {
		if _, findErr := r.FindByID(ctx, id); findErr != nil {
			return nil, findErr
		}
		return nil, ErrConflict
	}
	return order, err
}

func (r *PostgresOrderRepository) Delete(ctx context.Context, id string) error {
	if _, err := parseID(id); err != nil {
		return err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresOrderRepository) Stats(ctx context.Context, email string) (*models.OrderStats, error) {
	where := orderWhere(models.OrderFilter{Email: email})

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx,
		`SELECT COALESCE(doc->>'orderStatus', ''), COUNT(*),
		        COALESCE(SUM((doc->>'total')::float8) FILTER (WHERE doc->>'paymentStatus' = 'paid'), 0)
		   FROM orders`+where.String()+` GROUP BY 1`, where.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &models.OrderStats{ByStatus: map[string]int64{}}
	for rows.Next() {
		var (
			status  string
			count   int64
			revenue float64
		)
		if err := rows.Scan(&status, &count, &revenue); err != nil {
			return nil, err
		}
		stats.Total += count
		stats.Revenue += revenue
		stats.ByStatus[status] = count
	}
	return stats, rows.Err()
}
