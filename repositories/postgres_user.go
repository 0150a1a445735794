package repositories

import (
	"context"

	"freshfetch/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PostgresUserRepository struct {
	db *pgxpool.Pool
}

func NewPostgresUserRepository(db *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.Email = normalizeEmail(user.Email)
	doc, err := encodeDoc(user)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO users (id, email, password, doc, created_at) VALUES ($1, $2, $3, $4::jsonb, $5)`,
		user.ID.Hex(), user.Email, user.Password, doc, user.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

const userColumns = `doc, password`

func scanUser(row pgx.Row) (*models.User, error) {
	var (
		raw      []byte
		password string
	)
	if err := row.Scan(&raw, &password); err != nil {
		return nil, mapRowErr(err)
	}
	var user models.User
	if err := decodeDoc(raw, &user); err != nil {
		return nil, err
	}
	user.Password = password
	return &user, nil
}

func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	if _, err := parseID(id); err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, normalizeEmail(email)))
}

func (r *PostgresUserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	where := userWhere(filter)
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`+where.String(), where.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, args := pageClause(where, filter.Page.Normalize())
	rows, err := r.db.Query(ctx,
		`SELECT doc, '' FROM users`+where.String()+` ORDER BY created_at DESC, id DESC`+limit, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *u)
	}
	return users, total, rows.Err()
}

// Update stores password in its own column; everything else is merged into doc.
func (r *PostgresUserRepository) Update(ctx context.Context, id string, fields models.Fields) (*models.User, error) {
	if _, err := parseID(id); err != nil {
		return nil, err
	}

	var password *string
	patchFields := models.Fields{}
	for k, v := range fields {
		if k == "password" {
			if s, ok := v.(string); ok {
				password = &s
			}
			continue
		}
		patchFields[k] = v
	}
	patch, err := encodeDoc(patchFields)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	user, err := scanUser(r.db.QueryRow(ctx,
		`UPDATE users SET doc = doc || $2::jsonb, password = COALESCE($3, password)
		  WHERE id = $1 RETURNING `+userColumns, id, patch, password))
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	return user, err
}

func (r *PostgresUserRepository) Delete(ctx context.Context, id string) error {
	if _, err := parseID(id); err != nil {
		return err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresUserRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}
