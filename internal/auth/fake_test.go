package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/JaimeStill/corretora/pkg/logging"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fakeInvite struct {
	Invite
	used bool
}

type fakeStore struct {
	mu       sync.Mutex
	users    map[uuid.UUID]User
	agencies map[uuid.UUID]bool
	invites  map[string]*fakeInvite
}

func newFakeStore(agencies ...uuid.UUID) *fakeStore {
	s := &fakeStore{
		users:    make(map[uuid.UUID]User),
		agencies: make(map[uuid.UUID]bool),
		invites:  make(map[string]*fakeInvite),
	}
	for _, a := range agencies {
		s.agencies[a] = true
	}
	return s
}

func (s *fakeStore) Create(ctx context.Context, p createUserParams) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.create(p)
}

func (s *fakeStore) create(p createUserParams) (User, error) {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, p.Email) {
			return User{}, ErrDuplicateEmail
		}
	}
	if p.ImobiliariaID != nil && !s.agencies[*p.ImobiliariaID] {
		return User{}, ErrUnknownAgency
	}

	now := time.Now()
	u := User{
		ID:            p.ID,
		Email:         p.Email,
		Nome:          p.Nome,
		PasswordHash:  p.PasswordHash,
		Role:          p.Role,
		ImobiliariaID: p.ImobiliariaID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.users[u.ID] = u
	return u, nil
}

func (s *fakeStore) FindByEmail(ctx context.Context, email string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (s *fakeStore) FindByID(ctx context.Context, id uuid.UUID) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (s *fakeStore) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = hash
	s.users[id] = u
	return nil
}

func (s *fakeStore) CreateInvite(ctx context.Context, p createInviteParams) (Invite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.agencies[p.ImobiliariaID] {
		return Invite{}, ErrUnknownAgency
	}
	inv := Invite{
		ID:            p.ID,
		ImobiliariaID: p.ImobiliariaID,
		CreatedBy:     p.CreatedBy,
		ExpiresAt:     p.ExpiresAt,
		CreatedAt:     time.Now(),
	}
	s.invites[p.TokenHash] = &fakeInvite{Invite: inv}
	return inv, nil
}

func (s *fakeStore) Redeem(ctx context.Context, tokenHash string, now time.Time, p createUserParams) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invites[tokenHash]
	if !ok || inv.used || !now.Before(inv.ExpiresAt) {
		return User{}, ErrInvalidInvite
	}

	agency := inv.ImobiliariaID
	p.ImobiliariaID = &agency
	u, err := s.create(p)
	if err != nil {
		return User{}, err
	}
	inv.used = true
	return u, nil
}

func newTestService(store Store) *service {
	cfg := &Config{Secret: testSecret, BcryptCost: bcrypt.MinCost}
	if err := cfg.Finalize(nil); err != nil {
		panic(err)
	}
	return New(store, cfg, logging.Discard()).(*service)
}
