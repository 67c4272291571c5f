package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/JaimeStill/corretora/pkg/repository"
	"github.com/google/uuid"
)

// Store persists user accounts.
type Store interface {
	Create(ctx context.Context, params createUserParams) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id uuid.UUID) (User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
	CreateInvite(ctx context.Context, params createInviteParams) (Invite, error)
	Redeem(ctx context.Context, tokenHash string, now time.Time, params createUserParams) (User, error)
}

const (
	userColumns   = `id, email, nome, senha_hash, papel, imobiliaria_id, created_at, updated_at`
	inviteColumns = `id, imobiliaria_id, criado_por, expira_em, created_at`
)

type store struct {
	db *sql.DB
}

// NewStore returns a Store backed by the usuarios table.
func NewStore(db *sql.DB) Store {
	return &store{db: db}
}

func (s *store) Create(ctx context.Context, p createUserParams) (User, error) {
	return insertUser(ctx, s.db, p)
}

// Redeem consumes the invite whose token hashes to tokenHash and creates the
// agency user it authorizes, in one transaction. The invite row is locked so
// concurrent registrations cannot both use it.
func (s *store) Redeem(ctx context.Context, tokenHash string, now time.Time, p createUserParams) (User, error) {
	return repository.WithTx(ctx, s.db, func(tx *sql.Tx) (User, error) {
		var agency uuid.UUID
		err := tx.QueryRowContext(ctx, `SELECT imobiliaria_id FROM convites
			WHERE token_hash = $1 AND usado_em IS NULL AND expira_em > $2
			FOR UPDATE`, tokenHash, now).Scan(&agency)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return User{}, ErrInvalidInvite
			}
			return User{}, fmt.Errorf("find invite: %w", err)
		}

		p.ImobiliariaID = &agency
		user, err := insertUser(ctx, tx, p)
		if err != nil {
			return User{}, err
		}

		q := `UPDATE convites SET usado_em = $2, usuario_id = $3 WHERE token_hash = $1`
		if err := repository.ExecExpectOne(ctx, tx, q, tokenHash, now, user.ID); err != nil {
			return User{}, fmt.Errorf("consume invite: %w", err)
		}
		return user, nil
	})
}

func (s *store) CreateInvite(ctx context.Context, p createInviteParams) (Invite, error) {
	q := `INSERT INTO convites (id, token_hash, imobiliaria_id, criado_por, expira_em)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + inviteColumns

	invite, err := repository.QueryOne(ctx, s.db, q, []any{
		p.ID, p.TokenHash, p.ImobiliariaID, p.CreatedBy, p.ExpiresAt,
	}, scanInvite)
	if err != nil {
		if repository.IsForeignKeyViolation(err) {
			if repository.ConstraintName(err) == "convites_criado_por_fkey" {
				return Invite{}, ErrNotFound
			}
			return Invite{}, ErrUnknownAgency
		}
		return Invite{}, fmt.Errorf("create invite: %w", err)
	}
	return invite, nil
}

func insertUser(ctx context.Context, q repository.Querier, p createUserParams) (User, error) {
	query := `INSERT INTO usuarios (id, email, nome, senha_hash, papel, imobiliaria_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + userColumns

	user, err := repository.QueryOne(ctx, q, query, []any{
		p.ID, p.Email, p.Nome, p.PasswordHash, p.Role, nullUUID(p.ImobiliariaID),
	}, scanUser)
	if err != nil {
		if repository.IsForeignKeyViolation(err) {
			return User{}, ErrUnknownAgency
		}
		if repository.IsUniqueViolation(err) {
			return User{}, ErrDuplicateEmail
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *store) FindByEmail(ctx context.Context, email string) (User, error) {
	q := `SELECT ` + userColumns + ` FROM usuarios WHERE lower(email) = lower($1)`
	user, err := repository.QueryOne(ctx, s.db, q, []any{email}, scanUser)
	return user, repository.MapError(err, ErrNotFound, ErrDuplicateEmail)
}

func (s *store) FindByID(ctx context.Context, id uuid.UUID) (User, error) {
	q := `SELECT ` + userColumns + ` FROM usuarios WHERE id = $1`
	user, err := repository.QueryOne(ctx, s.db, q, []any{id}, scanUser)
	return user, repository.MapError(err, ErrNotFound, ErrDuplicateEmail)
}

func (s *store) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	q := `UPDATE usuarios SET senha_hash = $1, updated_at = NOW() WHERE id = $2`
	err := repository.ExecExpectOne(ctx, s.db, q, hash, id)
	return repository.MapError(err, ErrNotFound, ErrDuplicateEmail)
}

func scanUser(s repository.Scanner) (User, error) {
	var u User
	var agency uuid.NullUUID
	err := s.Scan(
		&u.ID,
		&u.Email,
		&u.Nome,
		&u.PasswordHash,
		&u.Role,
		&agency,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if agency.Valid {
		u.ImobiliariaID = &agency.UUID
	}
	return u, err
}

func scanInvite(s repository.Scanner) (Invite, error) {
	var inv Invite
	err := s.Scan(
		&inv.ID,
		&inv.ImobiliariaID,
		&inv.CreatedBy,
		&inv.ExpiresAt,
		&inv.CreatedAt,
	)
	return inv, err
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
