package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ayush/devcamper/backend/internal/models"
	"github.com/ayush/devcamper/backend/internal/query"
)

const userColumns = "id, name, email, role, password, reset_password_token, reset_password_expire, created_at"

// listColumns never exposes credentials, even to admins.
const listColumns = "id, name, email, role, created_at"

// PostgresStore handles user CRUD against PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the users table if it doesn't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id                    UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name                  VARCHAR(255) NOT NULL,
			email                 VARCHAR(255) UNIQUE NOT NULL,
			role                  VARCHAR(20)  NOT NULL DEFAULT 'user',
			password              VARCHAR(255) NOT NULL,
			reset_password_token  VARCHAR(64),
			reset_password_expire TIMESTAMPTZ,
			created_at            TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS users_reset_token_idx ON users (reset_password_token);
	`)
	return err
}

// CreateUser inserts u and fills its id and creation time.
func (s *PostgresStore) CreateUser(ctx context.Context, u *models.User) error {
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (name, email, role, password)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		u.Name, u.Email, u.Role, u.Password,
	).Scan(&u.ID, &u.CreatedAt)
	return classify(err, "create user", "user", u.Email)
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getOne(ctx, "email = $1", email)
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getOne(ctx, "id = $1", id)
}

// GetUserByResetToken finds the user holding the hashed reset token while it
// is still valid at now.
func (s *PostgresStore) GetUserByResetToken(ctx context.Context, hashed string, now time.Time) (*models.User, error) {
	return s.getOne(ctx, "reset_password_token = $1 AND reset_password_expire > $2", hashed, now)
}

func (s *PostgresStore) getOne(ctx context.Context, where string, args ...any) (*models.User, error) {
	rows, err := s.pool.Query(ctx, "SELECT "+userColumns+" FROM users WHERE "+where, args...)
	if err != nil {
		return nil, classify(err, "get user", "user", fmt.Sprint(args[0]))
	}
	u, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[models.User])
	if err != nil {
		return nil, classify(err, "get user", "user", fmt.Sprint(args[0]))
	}
	return u, nil
}

// UpdateUser writes every mutable column of u.
func (s *PostgresStore) UpdateUser(ctx context.Context, u *models.User) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users
		 SET name = $2, email = $3, role = $4, password = $5,
		     reset_password_token = $6, reset_password_expire = $7
		 WHERE id = $1`,
		u.ID, u.Name, u.Email, u.Role, u.Password, u.ResetPasswordToken, u.ResetPasswordExpire,
	)
	if err != nil {
		return classify(err, "update user", "user", u.ID)
	}
	if tag.RowsAffected() == 0 {
		return classify(pgx.ErrNoRows, "update user", "user", u.ID)
	}
	return nil
}

func (s *PostgresStore) DeleteUser(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return classify(err, "delete user", "user", id)
	}
	if tag.RowsAffected() == 0 {
		return classify(pgx.ErrNoRows, "delete user", "user", id)
	}
	return nil
}

// ListUsers returns one page of q and the total number of matches.
func (s *PostgresStore) ListUsers(ctx context.Context, q query.Query) ([]models.User, int64, error) {
	sql := q.SQL("id")

	where := ""
	if sql.Where != "" {
		where = " WHERE " + sql.Where
	}

	var total int64
	if err := s.pool.QueryRow(ctx, "SELECT count(*) FROM users"+where, sql.Args...).Scan(&total); err != nil {
		return nil, 0, classify(err, "count users", "user", "")
	}

	cols := listColumns
	if len(sql.Columns) > 0 {
		cols = strings.Join(sql.Columns, ", ")
	}
	stmt := "SELECT " + cols + " FROM users" + where
	if sql.OrderBy != "" {
		stmt += " ORDER BY " + sql.OrderBy
	}
	args := append(sql.Args, sql.Limit, sql.Offset)
	stmt += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, stmt, args...)
	if err != nil {
		return nil, 0, classify(err, "list users", "user", "")
	}
	users, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[models.User])
	if err != nil {
		return nil, 0, classify(err, "list users", "user", "")
	}
	return users, total, nil
}
