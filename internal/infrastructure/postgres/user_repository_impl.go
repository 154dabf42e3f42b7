package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-user-registration/internal/domain/entity"
	"github.com/oksasatya/go-user-registration/internal/domain/repository"
)

// ErrUserNotFound is returned by Update when the row does not exist.
var ErrUserNotFound = errors.New("postgres: user not found")

const userColumns = `id, username, email, COALESCE(password_hash, '')`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Save(ctx context.Context, u entity.User) (entity.User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, username, email, password_hash)
		VALUES ($1, $2, $3, NULLIF($4, ''))
		RETURNING `+userColumns,
		u.ID, u.Username, u.Email, u.Password)

	saved, err := scanUser(row)
	if err != nil {
		return entity.User{}, fmt.Errorf("insert user: %w", err)
	}
	return saved, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return findOne(row)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1 LIMIT 1`, email)
	return findOne(row)
}

func (r *UserRepository) Update(ctx context.Context, u entity.User) (entity.User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET username = $1, email = $2, password_hash = NULLIF($3, ''), updated_at = now()
		WHERE id = $4
		RETURNING `+userColumns,
		u.Username, u.Email, u.Password, u.ID)

	updated, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.User{}, ErrUserNotFound
		}
		return entity.User{}, fmt.Errorf("update user: %w", err)
	}
	return updated, nil
}

func findOne(row pgx.Row) (*entity.User, error) {
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func scanUser(row pgx.Row) (entity.User, error) {
	var u entity.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password); err != nil {
		return entity.User{}, err
	}
	return u, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
