package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4/pgxpool"

	"chatwire/internal/common/db"
	"chatwire/internal/user/domain"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrUsernameAlreadyExists = errors.New("username already exists")
)

type Repository interface {
	Create(ctx context.Context, user domain.User) error
	FindByUsername(ctx context.Context, username string) (domain.User, error)
	FindByID(ctx context.Context, id domain.ID) (domain.User, error)
	FindAllExcept(ctx context.Context, id domain.ID) ([]domain.Public, error)
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Create(ctx context.Context, user domain.User) error {
	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO users (id, username, name, password_hash, created_at) VALUES ($1, $2, $3, $4, $5)`,
		string(user.ID),
		user.Username,
		user.Name,
		user.PasswordHash,
		user.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrUsernameAlreadyExists
		}
	}
	return db.HandleExecError(err, "create user", start)
}

func (r *PgRepository) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, username, name, password_hash, created_at FROM users WHERE username = $1`,
		username,
	)

	var user domain.User
	err := row.Scan(&user.ID, &user.Username, &user.Name, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		return domain.User{}, db.HandleQueryError(err, ErrUserNotFound, "find user by username", start)
	}

	return user, nil
}

func (r *PgRepository) FindByID(ctx context.Context, id domain.ID) (domain.User, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, username, name, password_hash, created_at FROM users WHERE id = $1`,
		string(id),
	)

	var user domain.User
	err := row.Scan(&user.ID, &user.Username, &user.Name, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		return domain.User{}, db.HandleQueryError(err, ErrUserNotFound, "find user by id", start)
	}

	return user, nil
}

func (r *PgRepository) FindAllExcept(ctx context.Context, id domain.ID) ([]domain.Public, error) {
	start := time.Now()
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, username, name, created_at
		 FROM users
		 WHERE id <> $1
		 ORDER BY username ASC`,
		string(id),
	)
	if err != nil {
		return nil, db.HandleQueryError(err, ErrUserNotFound, "list users", start)
	}
	defer rows.Close()

	var users []domain.Public
	for rows.Next() {
		var u domain.Public
		if err := rows.Scan(&u.ID, &u.Username, &u.Name, &u.CreatedAt); err != nil {
			return nil, db.HandleQueryError(err, ErrUserNotFound, "scan user", start)
		}
		users = append(users, u)
	}

	if rows.Err() != nil {
		return nil, db.HandleQueryError(rows.Err(), ErrUserNotFound, "list users", start)
	}

	return users, nil
}
