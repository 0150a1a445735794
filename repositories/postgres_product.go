package repositories

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"freshfetch/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PostgresProductRepository struct {
	db *pgxpool.Pool
}

func NewPostgresProductRepository(db *pgxpool.Pool) *PostgresProductRepository {
	return &PostgresProductRepository{db: db}
}

func (r *PostgresProductRepository) Create(ctx context.Context, product *models.Product) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	doc, err := encodeDoc(product)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO products (id, doc, created_at) VALUES ($1, $2::jsonb, $3)`,
		product.ID.Hex(), doc, product.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func scanProduct(row pgx.Row) (*models.Product, error) {
	var raw []byte
	if err := row.Scan(&raw); err != nil {
		return nil, mapRowErr(err)
	}
	var product models.Product
	if err := decodeDoc(raw, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *PostgresProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	if _, err := parseID(id); err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	return scanProduct(r.db.QueryRow(ctx, `SELECT doc FROM products WHERE id = $1`, id))
}

func (r *PostgresProductRepository) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	where := productWhere(filter)
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where.String(), where.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, args := pageClause(where, filter.Page.Normalize())
	rows, err := r.db.Query(ctx, `SELECT doc FROM products`+where.String()+productOrderBy(filter)+limit, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, *p)
	}
	return products, total, rows.Err()
}

func (r *PostgresProductRepository) Update(ctx context.Context, id string, fields models.Fields) (*models.Product, error) {
	if _, err := parseID(id); err != nil {
		return nil, err
	}
	patch, err := encodeDoc(fields)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	return scanProduct(r.db.QueryRow(ctx,
		`UPDATE products SET doc = doc || $2::jsonb WHERE id = $1 RETURNING doc`, id, patch))
}

func (r *PostgresProductRepository) Delete(ctx context.Context, id string) error {
	if _, err := parseID(id); err != nil {
		return err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresProductRepository) Categories(ctx context.Context) ([]models.CategoryCount, error) {
	return r.categories(ctx, &sqlWhere{})
}

func (r *PostgresProductRepository) categories(ctx context.Context, where *sqlWhere) ([]models.CategoryCount, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx,
		`SELECT COALESCE(doc->>'category', ''), COUNT(*) FROM products`+where.String()+
			` GROUP BY 1 ORDER BY 2 DESC, 1`, where.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.CategoryCount{}
	for rows.Next() {
		var c models.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// applyStock moves stock by delta on a locked product row. It reports false when a
// decrement would go below zero.
func applyStock(product *models.Product, line models.StockLine, delta int) bool {
	if line.Unit != "" {
		for i := range product.Variants {
			if product.Variants[i].Unit != line.Unit {
				continue
			}
			if product.Variants[i].Stock+delta < 0 {
				return false
			}
			product.Variants[i].Stock += delta
			return true
		}
		return false
	}
	if product.Stock+delta < 0 {
		return false
	}
	product.Stock += delta
	product.StockStatus = stockStatusFor(product.Stock)
	return true
}

func (r *PostgresProductRepository) moveStock(ctx context.Context, lines []models.StockLine, sign int) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, line := range lines {
		product, err := scanProduct(tx.QueryRow(ctx,
			`SELECT doc FROM products WHERE id = $1 FOR UPDATE`, line.ProductID.Hex()))
		if errors.Is(err, ErrNotFound) {
			if sign > 0 {
				continue
			}
			return fmt.Errorf("%w: %s", ErrInsufficientStock, line.Name)
		}
		if err != nil {
			return err
		}
		if !applyStock(product, line, sign*line.Quantity) {
			if sign > 0 {
				continue
			}
			return fmt.Errorf("%w: %s", ErrInsufficientStock, line.Name)
		}
		product.UpdatedAt = time.Now()
		doc, err := encodeDoc(product)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `UPDATE products SET doc = $2::jsonb WHERE id = $1`, line.ProductID.Hex(), doc); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *PostgresProductRepository) ReserveStock(ctx context.Context, lines []models.StockLine) error {
	return r.moveStock(ctx, lines, -1)
}

func (r *PostgresProductRepository) ReleaseStock(ctx context.Context, lines []models.StockLine) error {
	return r.moveStock(ctx, lines, 1)
}

func (r *PostgresProductRepository) Stats(ctx context.Context, addedBy string) (*models.ProductStats, error) {
	where := productWhere(models.ProductFilter{AddedBy: addedBy})

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	stats := &models.ProductStats{}
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE COALESCE((doc->>'stock')::int, 0) <= 0),
		        COALESCE(AVG((doc->>'rating')::float8), 0)
		   FROM products`+where.String(), where.args...).
		Scan(&stats.Total, &stats.OutOfStock, &stats.AvgRating)
	if err != nil {
		return nil, err
	}
	stats.AvgRating = math.Round(stats.AvgRating*10) / 10

	stats.Categories, err = r.categories(ctx, where)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
