package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/leads-dashboard/internal/entity"
)

// ErrUserNotFound is returned when no user matches the lookup criteria.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrEmailDuplicate = errors.New("email already exists")
)

// UsersRepository declares the user operations needed for authentication.
type UsersRepository interface {
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	Create(ctx context.Context, email, passwordHash, role string) (*entity.User, error)
}

// MemoryUsersRepository keeps users in memory when no database is configured.
type MemoryUsersRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]entity.User
}

// NewMemoryUsersRepository builds an empty in-memory users repository.
func NewMemoryUsersRepository() *MemoryUsersRepository {
	return &MemoryUsersRepository{users: map[uuid.UUID]entity.User{}}
}

// FindByEmail fetches a user by email, case-insensitively.
func (r *MemoryUsersRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			user := u
			return &user, nil
		}
	}
	return nil, ErrUserNotFound
}

// FindByID retrieves a user by identifier.
func (r *MemoryUsersRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

// Create stores a new user. Emails are unique regardless of case.
func (r *MemoryUsersRepository) Create(_ context.Context, email, passwordHash, role string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return nil, ErrEmailDuplicate
		}
	}
	now := time.Now()
	user := entity.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.users[user.ID] = user
	return &user, nil
}

// PGXUsersRepository implements UsersRepository with pgx.
type PGXUsersRepository struct {
	pool pgxPool
}

// NewPGXUsersRepository instantiates a users repository.
func NewPGXUsersRepository(pool *pgxpool.Pool) *PGXUsersRepository {
	return &PGXUsersRepository{pool: pool}
}

var (
	_ UsersRepository = (*MemoryUsersRepository)(nil)
	_ UsersRepository = (*PGXUsersRepository)(nil)
)

const createUsersTableSQL = `
        CREATE TABLE IF NOT EXISTS dashboard_users (
            id UUID PRIMARY KEY,
            email TEXT NOT NULL UNIQUE,
            password_hash TEXT NOT NULL,
            role TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );
    `

// EnsureSchema creates the users table when it does not exist yet.
func (r *PGXUsersRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, createUsersTableSQL); err != nil {
		return fmt.Errorf("create dashboard_users: %w", err)
	}
	return nil
}

// FindByEmail fetches a user by email if present.
func (r *PGXUsersRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, email, password_hash, role, created_at, updated_at FROM dashboard_users WHERE LOWER(email) = LOWER($1)`, email)

	var user entity.User
	if err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("query user by email: %w", err)
	}

	return &user, nil
}

// FindByID retrieves a user by identifier.
func (r *PGXUsersRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, email, password_hash, role, created_at, updated_at FROM dashboard_users WHERE id = $1`, id)

	var user entity.User
	if err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("query user by id: %w", err)
	}

	return &user, nil
}

// Create inserts a new user row.
func (r *PGXUsersRepository) Create(ctx context.Context, email, passwordHash, role string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `
        INSERT INTO dashboard_users (id, email, password_hash, role)
        VALUES ($1, $2, $3, $4)
        RETURNING id, email, password_hash, role, created_at, updated_at
    `, uuid.New(), email, passwordHash, role)

	var user entity.User
	if err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt, &user.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("%w: %v", ErrEmailDuplicate, pgErr)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return &user, nil
}
