package auth

import (
	"time"

	"github.com/google/uuid"
)

// User is a stored account. PasswordHash never leaves the package in JSON.
type User struct {
	ID            uuid.UUID  `json:"id"`
	Email         string     `json:"email"`
	Nome          string     `json:"nome"`
	PasswordHash  string     `json:"-"`
	Role          Role       `json:"papel"`
	ImobiliariaID *uuid.UUID `json:"imobiliaria_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// LoginRequest holds credentials.
type LoginRequest struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

// LoginResult is returned after successful authentication.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

// RegisterRequest is an agency user's self-registration. Convite is the
// invite token issued by staff; it decides which agency the account joins.
type RegisterRequest struct {
	Email   string `json:"email"`
	Nome    string `json:"nome"`
	Senha   string `json:"senha"`
	Convite string `json:"convite"`
}

// Invite authorizes a single agency registration. Token is only set on the
// value returned when the invite is issued.
type Invite struct {
	ID            uuid.UUID `json:"id"`
	Token         string    `json:"token,omitempty"`
	Link          string    `json:"link,omitempty"`
	ImobiliariaID uuid.UUID `json:"imobiliaria_id"`
	CreatedBy     uuid.UUID `json:"criado_por"`
	ExpiresAt     time.Time `json:"expira_em"`
	CreatedAt     time.Time `json:"created_at"`
}

// CreateInviteRequest names the agency an invite registers into.
type CreateInviteRequest struct {
	ImobiliariaID uuid.UUID `json:"imobiliaria_id"`
}

// ChangePasswordRequest replaces the caller's password.
type ChangePasswordRequest struct {
	SenhaAtual string `json:"senha_atual"`
	NovaSenha  string `json:"nova_senha"`
}

// CreateUserCommand creates an account of any role. Used by the CLI.
type CreateUserCommand struct {
	Email         string
	Nome          string
	Senha         string
	Role          Role
	ImobiliariaID *uuid.UUID
}

type createUserParams struct {
	ID            uuid.UUID
	Email         string
	Nome          string
	PasswordHash  string
	Role          Role
	ImobiliariaID *uuid.UUID
}

type createInviteParams struct {
	ID            uuid.UUID
	TokenHash     string
	ImobiliariaID uuid.UUID
	CreatedBy     uuid.UUID
	ExpiresAt     time.Time
}
