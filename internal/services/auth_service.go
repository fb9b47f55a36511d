package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"glowcandles/internal/domain"
	"glowcandles/internal/repos"
	"glowcandles/internal/token"
	"glowcandles/internal/validate"
)

// CredentialVerifier checks an email/password pair and returns the account.
type CredentialVerifier interface {
	Verify(ctx context.Context, email, password string) (*domain.User, error)
}

// UserStoreVerifier verifies against bcrypt hashes in the users table.
type UserStoreVerifier struct {
	Users *repos.UserRepo
}

func (v UserStoreVerifier) Verify(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := v.Users.ByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCredentials
	}
	return u, nil
}

type AuthService struct {
	Store    *repos.Store
	Verifier CredentialVerifier
	Tokens   *token.Issuer
	Log      *zap.Logger

	cost int
}

func NewAuthService(store *repos.Store, tokens *token.Issuer, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		Store:    store,
		Verifier: UserStoreVerifier{Users: store.Users},
		Tokens:   tokens,
		Log:      log,
		cost:     bcrypt.DefaultCost,
	}
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=64"`
	Phone    string `json:"phone" validate:"omitempty,phone_in"`
}

type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *domain.User `json:"user"`
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := check(in); err != nil {
		return nil, err
	}
	if !validate.Password(in.Password) {
		return nil, invalid(ErrValidation, "password", "must mix upper and lower case letters, a digit and a symbol")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &domain.User{
		ID: uuid.NewString(), Email: in.Email, Name: in.Name, Phone: strings.TrimSpace(in.Phone),
		Hash: string(hash), Role: domain.RoleUser,
	}
	if err := s.Store.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repos.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return s.issue(u)
}

// Login authenticates any account.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.Verifier.Verify(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.issue(u)
}

// AdminLogin authenticates and additionally requires the ADMIN role.
func (s *AuthService) AdminLogin(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.Verifier.Verify(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if u.Role != domain.RoleAdmin {
		return nil, ErrBadCredentials
	}
	return s.issue(u)
}

func (s *AuthService) Me(ctx context.Context, p domain.Principal) (*domain.User, error) {
	return s.Store.Users.ByID(ctx, p.UserID)
}

// Authenticate turns a bearer token into a principal.
func (s *AuthService) Authenticate(raw string) (domain.Principal, error) {
	return s.Tokens.Parse(raw)
}

// EnsureAdmin creates the configured admin account, or resets its password
// and role if the email already exists.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return err
	}
	existing, err := s.Store.Users.ByEmail(ctx, email)
	switch {
	case err == nil:
		return s.Store.Users.SetCredentials(ctx, existing.ID, string(hash), domain.RoleAdmin)
	case errors.Is(err, repos.ErrNotFound):
		s.Log.Info("seeding admin account", zap.String("email", email))
		return s.Store.Users.Create(ctx, &domain.User{
			ID: uuid.NewString(), Email: email, Name: "Admin", Hash: string(hash), Role: domain.RoleAdmin,
		})
	default:
		return err
	}
}

func (s *AuthService) issue(u *domain.User) (*Session, error) {
	tok, exp, err := s.Tokens.Sign(u)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Session{Token: tok, ExpiresAt: exp, User: u}, nil
}
