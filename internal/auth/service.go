package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/fati2809/ProyectoTerminado/internal/token"
	"github.com/fati2809/ProyectoTerminado/internal/totp"
)

const minPasswordLength = 8

var usernameRegex = regexp.MustCompile(`^[A-Za-z0-9_]{3,50}$`)

var (
	ErrInvalidUsername    = errors.New("invalid username")
	ErrWeakPassword       = errors.New("password too short")
	ErrDuplicateUsername  = errors.New("username already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidOTP         = errors.New("invalid otp code")
)

// UserStore is the credential store the pipeline runs against. The pgx
// Repository implements it; tests use an in-memory fake.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (User, error)
	Create(ctx context.Context, user User) error
}

// Service orchestrates registration (validate, hash, enroll TOTP, persist)
// and login (lookup, verify password, verify OTP when enabled, issue token).
type Service struct {
	store  UserStore
	totp   *totp.Engine
	tokens *token.Service
}

func NewService(store UserStore, totpEngine *totp.Engine, tokens *token.Service) *Service {
	return &Service{store: store, totp: totpEngine, tokens: tokens}
}

func (s *Service) Register(ctx context.Context, username, password string, status int) (Enrollment, error) {
	if !usernameRegex.MatchString(username) {
		return Enrollment{}, ErrInvalidUsername
	}
	if len(password) < minPasswordLength {
		return Enrollment{}, ErrWeakPassword
	}

	if _, err := s.store.GetByUsername(ctx, username); err == nil {
		return Enrollment{}, ErrDuplicateUsername
	} else if !errors.Is(err, ErrUserNotFound) {
		return Enrollment{}, err
	}

	secret, provisioningURI, err := s.totp.Enroll(username)
	if err != nil {
		return Enrollment{}, fmt.Errorf("enroll totp: %w", err)
	}

	qrCode, err := totp.QRCodeDataURI(provisioningURI)
	if err != nil {
		return Enrollment{}, fmt.Errorf("render qr code: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Enrollment{}, fmt.Errorf("hash password: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return Enrollment{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	user := User{
		ID:               id.String(),
		Username:         username,
		PasswordHash:     string(hash),
		Status:           status,
		TwoFactorSecret:  secret,
		TwoFactorEnabled: true,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.store.Create(ctx, user); err != nil {
		return Enrollment{}, err
	}

	return Enrollment{QRCode: qrCode, Secret: secret}, nil
}

func (s *Service) Login(ctx context.Context, username, password, otp string) (string, error) {
	user, err := s.store.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Same response as a wrong password, so usernames
			// cannot be enumerated through login.
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	if user.TwoFactorEnabled {
		if !s.totp.Verify(user.TwoFactorSecret, otp) {
			return "", ErrInvalidOTP
		}
	}

	issued, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	return issued, nil
}
