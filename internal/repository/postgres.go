package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Baragji/Blueprint-creator/internal/domain"
	"github.com/Baragji/Blueprint-creator/internal/password"
)

// Compile-time interface assertion.
var _ Directory = (*PostgresDirectory)(nil)

// PostgresDirectory implements Directory against the platform database.
type PostgresDirectory struct {
	db     *pgxpool.Pool
	hasher *password.Hasher
}

// NewPostgresDirectory returns a Directory backed by the given pool.
func NewPostgresDirectory(pool *pgxpool.Pool, hasher *password.Hasher) *PostgresDirectory {
	return &PostgresDirectory{db: pool, hasher: hasher}
}

const selectUserSQL = `SELECT id, email, password_hash, first_name, last_name, role, organization_id, email_verified, is_active, created_at, updated_at
FROM users`

const insertUserSQL = `INSERT INTO users (id, email, password_hash, first_name, last_name, role, organization_id, email_verified, is_active)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, true)
RETURNING created_at, updated_at`

func (d *PostgresDirectory) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	row := d.db.QueryRow(ctx, insertUserSQL,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Role,
		user.OrganizationID,
		user.EmailVerified,
	)
	if err := row.Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	user.IsActive = true
	return user, nil
}

func (d *PostgresDirectory) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return d.scanUser(d.db.QueryRow(ctx, selectUserSQL+" WHERE id = $1", id))
}

func (d *PostgresDirectory) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return d.scanUser(d.db.QueryRow(ctx, selectUserSQL+" WHERE email = $1", email))
}

func (d *PostgresDirectory) Authenticate(ctx context.Context, email, passwd string) (domain.User, error) {
	user, err := d.GetUserByEmail(ctx, email)
	if err != nil {
		return domain.User{}, err
	}
	if !d.hasher.Verify(passwd, user.PasswordHash) {
		return domain.User{}, ErrInvalidPassword
	}
	return user, nil
}

const insertOrgSQL = `INSERT INTO organizations (id, name, slug, plan, settings, is_active)
VALUES ($1, $2, $3, $4, $5, true)
RETURNING created_at, updated_at`

func (d *PostgresDirectory) CreateOrganization(ctx context.Context, org domain.Organization) (domain.Organization, error) {
	if org.ID == "" {
		org.ID = uuid.NewString()
	}
	settings, err := json.Marshal(org.Settings)
	if err != nil {
		return domain.Organization{}, fmt.Errorf("encode settings: %w", err)
	}
	row := d.db.QueryRow(ctx, insertOrgSQL, org.ID, org.Name, org.Slug, org.Plan, settings)
	if err := row.Scan(&org.CreatedAt, &org.UpdatedAt); err != nil {
		return domain.Organization{}, fmt.Errorf("create organization: %w", err)
	}
	org.IsActive = true
	return org, nil
}

const selectOrgSQL = `SELECT id, name, slug, plan, settings, is_active, created_at, updated_at
FROM organizations WHERE id = $1`

func (d *PostgresDirectory) GetOrganizationByID(ctx context.Context, id string) (domain.Organization, error) {
	var (
		org      domain.Organization
		settings []byte
	)
	row := d.db.QueryRow(ctx, selectOrgSQL, id)
	if err := row.Scan(&org.ID, &org.Name, &org.Slug, &org.Plan, &settings, &org.IsActive, &org.CreatedAt, &org.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Organization{}, ErrNotFound
		}
		return domain.Organization{}, fmt.Errorf("get organization: %w", err)
	}
	if err := json.Unmarshal(settings, &org.Settings); err != nil {
		return domain.Organization{}, fmt.Errorf("decode settings: %w", err)
	}
	return org, nil
}

func (d *PostgresDirectory) IsSlugAvailable(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := d.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM organizations WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return !exists, nil
}

func (d *PostgresDirectory) Ping(ctx context.Context) error {
	return d.db.Ping(ctx)
}

func (d *PostgresDirectory) scanUser(row pgx.Row) (domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Role,
		&user.OrganizationID,
		&user.EmailVerified,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}
