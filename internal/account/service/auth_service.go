package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/payetonkawa/catalog-service/internal/account/domain"
	"github.com/payetonkawa/catalog-service/internal/account/repository"
	"github.com/payetonkawa/catalog-service/internal/platform/logger"
	"github.com/payetonkawa/catalog-service/internal/platform/metrics"
)

var (
	ErrInvalidCredentials   = errors.New("invalid account id or password")
	ErrAccountAlreadyExists = errors.New("an account with this id already exists")
	ErrMissingCredentials   = errors.New("account id and password are required")
	ErrNotificationFailed   = errors.New("account created but the token could not be delivered")
	ErrPasswordTooLong      = errors.New("password exceeds 72 bytes")
)

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// maxTokenAttempts bounds how often Register re-mints a token after a
// collision before giving up.
const maxTokenAttempts = 3

// Notifier delivers a freshly issued token to the owner of accountID.
type Notifier interface {
	Notify(ctx context.Context, accountID, token string) error
}

type AuthService interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.Credential, error)
	Authenticate(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error)
}

type authService struct {
	repo     repository.CredentialRepository
	hasher   PasswordHasher
	tokens   TokenGenerator
	notifier Notifier
	metrics  *metrics.Registry

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(
	repo repository.CredentialRepository,
	hasher PasswordHasher,
	tokens TokenGenerator,
	notifier Notifier,
	m *metrics.Registry,
) AuthService {
	return &authService{repo: repo, hasher: hasher, tokens: tokens, notifier: notifier, metrics: m}
}

// NormalizeAccountID is applied to every account id before it reaches storage.
func NormalizeAccountID(accountID string) string {
	return strings.ToLower(strings.TrimSpace(accountID))
}

func (s *authService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.Credential, error) {
	req.AccountID = NormalizeAccountID(req.AccountID)
	if req.AccountID == "" || req.Password == "" {
		return nil, ErrMissingCredentials
	}
	if len(req.Password) > MaxPasswordBytes {
		s.metrics.RecordRegistration(metrics.ResultRejected)
		return nil, ErrPasswordTooLong
	}

	hashedPassword, err := s.hasher.Hash(req.Password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		s.metrics.RecordRegistration(metrics.ResultRejected)
		return nil, ErrPasswordTooLong
	}
	if err != nil {
		logger.Error("Register: failed to hash password", err)
		s.metrics.RecordRegistration(metrics.ResultFailure)
		return nil, fmt.Errorf("could not process registration: %w", err)
	}

	cred := &domain.Credential{
		AccountID:    req.AccountID,
		PasswordHash: hashedPassword,
	}
	if err := s.store(ctx, cred); err != nil {
		if errors.Is(err, repository.ErrAccountConflict) {
			s.metrics.RecordRegistration(metrics.ResultConflict)
			return nil, ErrAccountAlreadyExists
		}
		logger.Error("Register: failed to create credential in repo", err, "account_id", cred.AccountID)
		s.metrics.RecordRegistration(metrics.ResultFailure)
		return nil, fmt.Errorf("could not save credential: %w", err)
	}

	// The credential is committed from here on; a delivery failure is
	// reported to the caller but never undoes it.
	if err := s.notifier.Notify(ctx, cred.AccountID, cred.Token); err != nil {
		logger.Error("Register: failed to notify account owner", err, "account_id", cred.AccountID)
		s.metrics.RecordRegistration(metrics.ResultFailure)
		return nil, fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}

	s.metrics.RecordRegistration(metrics.ResultSuccess)
	cred.PasswordHash = ""
	cred.Token = ""
	return cred, nil
}

// store mints a token and inserts the credential, re-minting on the rare
// token collision.
func (s *authService) store(ctx context.Context, cred *domain.Credential) error {
	var err error
	for attempt := 1; attempt <= maxTokenAttempts; attempt++ {
		cred.Token, err = s.tokens.Generate()
		if err != nil {
			return fmt.Errorf("could not generate token: %w", err)
		}
		err = s.repo.CreateCredential(ctx, cred)
		if !errors.Is(err, repository.ErrTokenConflict) {
			return err
		}
		logger.Warn("Register: token collision, retrying", "attempt", attempt)
	}
	return err
}

func (s *authService) Authenticate(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	req.AccountID = NormalizeAccountID(req.AccountID)

	cred, err := s.repo.GetByAccountID(ctx, req.AccountID)
	if err != nil {
		if !errors.Is(err, repository.ErrCredentialNotFound) {
			logger.Error("Authenticate: failed to get credential", err)
		}
		// Spend the same hashing time as a real comparison so unknown
		// accounts cannot be told apart by latency.
		_ = s.hasher.Compare(s.placeholderHash(), req.Password)
		s.metrics.RecordLogin(metrics.ResultRejected)
		return nil, ErrInvalidCredentials
	}

	if err := s.hasher.Compare(cred.PasswordHash, req.Password); err != nil {
		s.metrics.RecordLogin(metrics.ResultRejected)
		return nil, ErrInvalidCredentials
	}

	s.metrics.RecordLogin(metrics.ResultSuccess)
	return &domain.LoginResponse{Token: cred.Token}, nil
}

func (s *authService) placeholderHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("placeholder-password")
		if err != nil {
			logger.Error("Authenticate: failed to build placeholder hash", err)
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
