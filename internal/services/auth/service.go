package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/scorekeeper/internal/dependencies/clock"
	"github.com/mcoot/scorekeeper/internal/dependencies/ids"
	"github.com/mcoot/scorekeeper/internal/model"
	"github.com/mcoot/scorekeeper/internal/storage"
)

// MinPasswordLength is the shortest password accepted at registration
const MinPasswordLength = 6

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// Session is the result of a successful registration or login
type Session struct {
	Token     string
	Identity  model.Identity
	ExpiresAt time.Time
}

// ProfileUpdate lists the profile fields to change; nil fields are left alone
type ProfileUpdate struct {
	DisplayName *string
	Email       *string
}

// Config holds configuration for the auth service
type Config struct {
	// Secret signs and verifies HS256 tokens
	Secret   string
	TokenTTL time.Duration
	Issuer   string

	// BcryptCost is the work factor for password hashes
	BcryptCost int
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		TokenTTL:   24 * time.Hour,
		Issuer:     "scorekeeper",
		BcryptCost: bcrypt.DefaultCost,
	}
}

// Service handles account registration, login and bearer token validation
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	ids     ids.Generator
	cfg     Config
	parser  *jwt.Parser
}

// New creates a new auth Service
func New(storage storage.Storage, clock clock.Clock, ids ids.Generator, cfg Config) *Service {
	defaults := DefaultConfig()
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = defaults.TokenTTL
	}
	if cfg.Issuer == "" {
		cfg.Issuer = defaults.Issuer
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = defaults.BcryptCost
	}
	return &Service{
		storage: storage,
		clock:   clock,
		ids:     ids,
		cfg:     cfg,
		// Expiry is checked against the injected clock rather than the wall clock
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}
}

// Register creates an identity with login credentials and returns a session
func (s *Service) Register(ctx context.Context, displayName, email, password string) (*Session, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, model.ErrNameRequired
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < MinPasswordLength {
		return nil, model.ErrPasswordTooShort
	}

	if err := s.ensureEmailFree(ctx, email, ""); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	identity := &model.Identity{
		ID:          model.IdentityID(s.ids.NewID()),
		DisplayName: displayName,
		Email:       email,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	cred := &model.Credential{
		IdentityID:   identity.ID,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.storage.SaveIdentity(ctx, identity); err != nil {
		return nil, err
	}
	if err := s.storage.SaveCredential(ctx, cred); err != nil {
		return nil, err
	}

	return s.issue(identity)
}

// Login checks an email and password and returns a session
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	cred, err := s.storage.GetCredentialByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, model.ErrIdentityNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	identity, err := s.storage.GetIdentity(ctx, cred.IdentityID)
	if err != nil {
		return nil, err
	}

	return s.issue(identity)
}

// ValidateToken verifies a bearer token and returns the identity it was issued to
func (s *Service) ValidateToken(ctx context.Context, token string) (*model.Identity, error) {
	claims := &jwt.RegisteredClaims{}
	if _, err := s.parser.ParseWithClaims(token, claims, s.keyFunc); err != nil {
		return nil, ErrInvalidToken
	}
	if !claims.VerifyExpiresAt(s.clock.Now(), true) || !claims.VerifyIssuer(s.cfg.Issuer, true) {
		return nil, ErrInvalidToken
	}

	identity, err := s.storage.GetIdentity(ctx, model.IdentityID(claims.Subject))
	if err != nil {
		if errors.Is(err, model.ErrIdentityNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return identity, nil
}

// GetIdentity returns the profile for an identity
func (s *Service) GetIdentity(ctx context.Context, id model.IdentityID) (*model.Identity, error) {
	return s.storage.GetIdentity(ctx, id)
}

// UpdateProfile changes the display name and/or email of an identity
func (s *Service) UpdateProfile(ctx context.Context, id model.IdentityID, update ProfileUpdate) (*model.Identity, error) {
	identity, err := s.storage.GetIdentity(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.DisplayName != nil {
		name := strings.TrimSpace(*update.DisplayName)
		if name == "" {
			return nil, model.ErrNameRequired
		}
		identity.DisplayName = name
	}

	now := s.clock.Now()

	if update.Email != nil {
		email, err := normalizeEmail(*update.Email)
		if err != nil {
			return nil, err
		}
		if email != identity.Email {
			if err := s.ensureEmailFree(ctx, email, id); err != nil {
				return nil, err
			}
			cred, err := s.storage.GetCredential(ctx, id)
			if err != nil {
				return nil, err
			}
			cred.Email = email
			cred.UpdatedAt = now
			if err := s.storage.SaveCredential(ctx, cred); err != nil {
				return nil, err
			}
			identity.Email = email
		}
	}

	identity.UpdatedAt = now
	if err := s.storage.SaveIdentity(ctx, identity); err != nil {
		return nil, err
	}
	return identity, nil
}

// ensureEmailFree fails with ErrEmailTaken if another identity holds email
func (s *Service) ensureEmailFree(ctx context.Context, email string, self model.IdentityID) error {
	existing, err := s.storage.GetCredentialByEmail(ctx, email)
	if err == nil {
		if existing.IdentityID == self {
			return nil
		}
		return model.ErrEmailTaken
	}
	if errors.Is(err, model.ErrIdentityNotFound) {
		return nil
	}
	return err
}

// issue signs a token for the identity
func (s *Service) issue(identity *model.Identity) (*Session, error) {
	now := s.clock.Now()
	expiresAt := now.Add(s.cfg.TokenTTL)

	claims := jwt.RegisteredClaims{
		Subject:   string(identity.ID),
		Issuer:    s.cfg.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &Session{
		Token:     token,
		Identity:  *identity,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *Service) keyFunc(t *jwt.Token) (any, error) {
	return []byte(s.cfg.Secret), nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", model.ErrInvalidEmail
	}
	return email, nil
}
