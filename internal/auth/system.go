package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// bcrypt only reads the first 72 bytes of a password.
const (
	minPasswordLength = 8
	maxPasswordLength = 72
)

// System defines account and session operations.
type System interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	ChangePassword(ctx context.Context, session Session, req ChangePasswordRequest) error
	CreateUser(ctx context.Context, cmd CreateUserCommand) (*User, error)
	CreateInvite(ctx context.Context, session Session, req CreateInviteRequest) (*Invite, error)
	Me(ctx context.Context, session Session) (*User, error)
	TokenVerifier
}

// TokenVerifier turns a bearer token into a Session.
type TokenVerifier interface {
	VerifyToken(token string) (Session, error)
}

type service struct {
	users     Store
	secret    []byte
	issuer    string
	ttl       time.Duration
	inviteTTL time.Duration
	cost      int
	now       func() time.Time
	compare   func(hash, password []byte) error
	dummyHash func() []byte
	logger    *slog.Logger
}

// New creates the auth system. cfg must be finalized.
func New(users Store, cfg *Config, logger *slog.Logger) System {
	cost := cfg.BcryptCost
	return &service{
		users:     users,
		secret:    []byte(cfg.Secret),
		issuer:    cfg.Issuer,
		ttl:       cfg.TokenTTLDuration(),
		inviteTTL: cfg.InviteTTLDuration(),
		cost:      cost,
		now:       time.Now,
		compare:   bcrypt.CompareHashAndPassword,
		dummyHash: sync.OnceValue(func() []byte {
			b, _ := bcrypt.GenerateFromPassword([]byte("corretora-dummy-password"), cost)
			return b
		}),
		logger: logger.With("system", "auth"),
	}
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Unknown emails pay for a hash comparison too, so response
			// time does not reveal which accounts exist.
			s.compare(s.dummyHash(), []byte(req.Senha))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.compare([]byte(user.PasswordHash), []byte(req.Senha)); err != nil {
		s.logger.Info("login rejected", "email", user.Email)
		return nil, ErrInvalidCredentials
	}

	token, expires, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("login", "user_id", user.ID, "role", user.Role)
	return &LoginResult{Token: token, ExpiresAt: expires, User: user}, nil
}

// Register creates an agency user by redeeming an invite. The agency comes
// from the invite; an unknown, used or expired token fails the same way.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	token := strings.TrimSpace(req.Convite)
	if token == "" {
		return nil, ErrInvalidInvite
	}

	params, err := s.userParams(req.Email, req.Nome, req.Senha, RoleImobiliaria)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Redeem(ctx, hashInviteToken(token), s.now(), params)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID, "imobiliaria_id", user.ImobiliariaID)
	return &user, nil
}

func (s *service) CreateUser(ctx context.Context, cmd CreateUserCommand) (*User, error) {
	params, err := s.userParams(cmd.Email, cmd.Nome, cmd.Senha, cmd.Role)
	if err != nil {
		return nil, err
	}
	if cmd.Role == RoleImobiliaria {
		if cmd.ImobiliariaID == nil {
			return nil, fmt.Errorf("%w: imobiliaria_id required for agency users", ErrValidation)
		}
		params.ImobiliariaID = cmd.ImobiliariaID
	}

	user, err := s.users.Create(ctx, params)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user created", "user_id", user.ID, "role", user.Role)
	return &user, nil
}

// CreateInvite issues a single-use registration token for an agency. Only
// its digest is stored; the returned Invite is the one place the token
// appears.
func (s *service) CreateInvite(ctx context.Context, session Session, req CreateInviteRequest) (*Invite, error) {
	if !session.IsAdmin() {
		return nil, ErrForbidden
	}
	if req.ImobiliariaID == uuid.Nil {
		return nil, fmt.Errorf("%w: imobiliaria_id required", ErrValidation)
	}

	token, err := newInviteToken()
	if err != nil {
		return nil, err
	}

	invite, err := s.users.CreateInvite(ctx, createInviteParams{
		ID:            uuid.New(),
		TokenHash:     hashInviteToken(token),
		ImobiliariaID: req.ImobiliariaID,
		CreatedBy:     session.UserID,
		ExpiresAt:     s.now().Add(s.inviteTTL).UTC(),
	})
	if err != nil {
		return nil, err
	}
	invite.Token = token

	s.logger.Info("invite created", "invite_id", invite.ID, "imobiliaria_id", invite.ImobiliariaID, "created_by", session.UserID)
	return &invite, nil
}

func (s *service) ChangePassword(ctx context.Context, session Session, req ChangePasswordRequest) error {
	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		return err
	}

	if err := s.compare([]byte(user.PasswordHash), []byte(req.SenhaAtual)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := s.hash(req.NovaSenha)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}

	s.logger.Info("password changed", "user_id", user.ID)
	return nil
}

func (s *service) Me(ctx context.Context, session Session) (*User, error) {
	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *service) userParams(email, nome, senha string, role Role) (createUserParams, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return createUserParams{}, fmt.Errorf("%w: invalid email", ErrValidation)
	}
	if strings.TrimSpace(nome) == "" {
		return createUserParams{}, fmt.Errorf("%w: nome required", ErrValidation)
	}
	if !role.Valid() {
		return createUserParams{}, fmt.Errorf("%w: invalid role %q", ErrValidation, role)
	}

	hash, err := s.hash(senha)
	if err != nil {
		return createUserParams{}, err
	}

	return createUserParams{
		ID:           uuid.New(),
		Email:        email,
		Nome:         strings.TrimSpace(nome),
		PasswordHash: hash,
		Role:         role,
	}, nil
}

func (s *service) hash(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", ErrWeakPassword
	}
	if len(password) > maxPasswordLength {
		return "", fmt.Errorf("%w: password longer than %d bytes", ErrValidation, maxPasswordLength)
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func newInviteToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate invite token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func hashInviteToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
