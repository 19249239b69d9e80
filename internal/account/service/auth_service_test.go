package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/payetonkawa/catalog-service/internal/account/domain"
	"github.com/payetonkawa/catalog-service/internal/account/repository"
	repomocks "github.com/payetonkawa/catalog-service/internal/account/repository/mocks"
	"github.com/payetonkawa/catalog-service/internal/account/service/mocks"
)

type authFixture struct {
	repo     *repomocks.MockCredentialRepository
	tokens   *mocks.MockTokenGenerator
	notifier *mocks.MockNotifier
	svc      AuthService
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		repo:     new(repomocks.MockCredentialRepository),
		tokens:   new(mocks.MockTokenGenerator),
		notifier: new(mocks.MockNotifier),
	}
	f.svc = NewAuthService(f.repo, NewBcryptHasher(bcrypt.MinCost), f.tokens, f.notifier, nil)
	return f
}

func (f *authFixture) assertExpectations(t *testing.T) {
	f.repo.AssertExpectations(t)
	f.tokens.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func withToken(token string) interface{} {
	return mock.MatchedBy(func(c *domain.Credential) bool { return c.Token == token })
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.TODO()
	registerReq := domain.RegisterRequest{AccountID: "  Alice@Example.com ", Password: "password123"}

	t.Run("Successful registration", func(t *testing.T) {
		f := newAuthFixture()
		f.tokens.On("Generate").Return("tok-1", nil).Once()
		f.repo.On("CreateCredential", ctx, mock.MatchedBy(func(c *domain.Credential) bool {
			return c.AccountID == "alice@example.com" &&
				c.Token == "tok-1" &&
				bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte("password123")) == nil
		})).Return(nil).Once()
		f.notifier.On("Notify", ctx, "alice@example.com", "tok-1").Return(nil).Once()

		cred, err := f.svc.Register(ctx, registerReq)

		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", cred.AccountID)
		assert.Empty(t, cred.PasswordHash)
		assert.Empty(t, cred.Token, "token only travels through the notifier")
		f.assertExpectations(t)
	})

	t.Run("Account already exists", func(t *testing.T) {
		f := newAuthFixture()
		f.tokens.On("Generate").Return("tok-1", nil).Once()
		f.repo.On("CreateCredential", ctx, mock.AnythingOfType("*domain.Credential")).Return(repository.ErrAccountConflict).Once()

		cred, err := f.svc.Register(ctx, registerReq)

		assert.Nil(t, cred)
		assert.ErrorIs(t, err, ErrAccountAlreadyExists)
		f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("Token collision is retried with a fresh token", func(t *testing.T) {
		f := newAuthFixture()
		f.tokens.On("Generate").Return("tok-1", nil).Once()
		f.tokens.On("Generate").Return("tok-2", nil).Once()
		f.repo.On("CreateCredential", ctx, withToken("tok-1")).Return(repository.ErrTokenConflict).Once()
		f.repo.On("CreateCredential", ctx, withToken("tok-2")).Return(nil).Once()
		f.notifier.On("Notify", ctx, "alice@example.com", "tok-2").Return(nil).Once()

		_, err := f.svc.Register(ctx, registerReq)

		require.NoError(t, err)
		f.assertExpectations(t)
	})

	t.Run("Token collisions exhaust the attempts", func(t *testing.T) {
		f := newAuthFixture()
		f.tokens.On("Generate").Return("tok-same", nil).Times(maxTokenAttempts)
		f.repo.On("CreateCredential", ctx, withToken("tok-same")).Return(repository.ErrTokenConflict).Times(maxTokenAttempts)

		_, err := f.svc.Register(ctx, registerReq)

		assert.ErrorIs(t, err, repository.ErrTokenConflict)
		assert.Contains(t, err.Error(), "could not save credential")
		f.assertExpectations(t)
	})

	t.Run("Repository error on CreateCredential", func(t *testing.T) {
		f := newAuthFixture()
		expectedErr := errors.New("database error")
		f.tokens.On("Generate").Return("tok-1", nil).Once()
		f.repo.On("CreateCredential", ctx, mock.AnythingOfType("*domain.Credential")).Return(expectedErr).Once()

		cred, err := f.svc.Register(ctx, registerReq)

		assert.Nil(t, cred)
		assert.ErrorIs(t, err, expectedErr)
		f.assertExpectations(t)
	})

	t.Run("Token generation failure", func(t *testing.T) {
		f := newAuthFixture()
		f.tokens.On("Generate").Return("", errors.New("entropy exhausted")).Once()

		_, err := f.svc.Register(ctx, registerReq)

		assert.Contains(t, err.Error(), "could not generate token")
		f.repo.AssertNotCalled(t, "CreateCredential", mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("Notification failure keeps the credential", func(t *testing.T) {
		f := newAuthFixture()
		f.tokens.On("Generate").Return("tok-1", nil).Once()
		f.repo.On("CreateCredential", ctx, withToken("tok-1")).Return(nil).Once()
		f.notifier.On("Notify", ctx, "alice@example.com", "tok-1").Return(errors.New("smtp down")).Once()

		_, err := f.svc.Register(ctx, registerReq)

		assert.ErrorIs(t, err, ErrNotificationFailed)
		f.repo.AssertNumberOfCalls(t, "CreateCredential", 1)
		f.assertExpectations(t)
	})

	t.Run("Missing fields are rejected before any write", func(t *testing.T) {
		f := newAuthFixture()
		for _, req := range []domain.RegisterRequest{
			{AccountID: "   ", Password: "x"},
			{AccountID: "a@b.c", Password: ""},
		} {
			_, err := f.svc.Register(ctx, req)
			assert.ErrorIs(t, err, ErrMissingCredentials)
		}
		f.assertExpectations(t)
	})

	t.Run("Password over the bcrypt limit is rejected before any write", func(t *testing.T) {
		f := newAuthFixture()
		for _, pw := range []string{strings.Repeat("a", MaxPasswordBytes+1), strings.Repeat("é", 37)} {
			cred, err := f.svc.Register(ctx, domain.RegisterRequest{AccountID: "long@example.com", Password: pw})

			assert.Nil(t, cred)
			assert.ErrorIs(t, err, ErrPasswordTooLong)
		}
		f.assertExpectations(t)
	})

	t.Run("Password at the bcrypt limit is accepted", func(t *testing.T) {
		f := newAuthFixture()
		f.tokens.On("Generate").Return("tok-1", nil).Once()
		f.repo.On("CreateCredential", ctx, withToken("tok-1")).Return(nil).Once()
		f.notifier.On("Notify", ctx, "long@example.com", "tok-1").Return(nil).Once()

		_, err := f.svc.Register(ctx, domain.RegisterRequest{
			AccountID: "long@example.com",
			Password:  strings.Repeat("a", MaxPasswordBytes),
		})

		require.NoError(t, err)
		f.assertExpectations(t)
	})
}

func TestAuthService_Authenticate(t *testing.T) {
	ctx := context.TODO()

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	stored := &domain.Credential{
		AccountID:    "alice@example.com",
		PasswordHash: string(hashedPassword),
		Token:        "tok-alice",
	}

	t.Run("Successful login returns the stored token", func(t *testing.T) {
		f := newAuthFixture()
		f.repo.On("GetByAccountID", ctx, "alice@example.com").Return(stored, nil).Once()

		resp, err := f.svc.Authenticate(ctx, domain.LoginRequest{AccountID: "ALICE@example.com", Password: "password123"})

		require.NoError(t, err)
		assert.Equal(t, "tok-alice", resp.Token)
		f.assertExpectations(t)
	})

	t.Run("Wrong password and unknown account are indistinguishable", func(t *testing.T) {
		f := newAuthFixture()
		f.repo.On("GetByAccountID", ctx, "alice@example.com").Return(stored, nil).Once()
		f.repo.On("GetByAccountID", ctx, "nobody@example.com").Return(nil, repository.ErrCredentialNotFound).Once()

		wrongPass, errWrong := f.svc.Authenticate(ctx, domain.LoginRequest{AccountID: "alice@example.com", Password: "wrong"})
		unknown, errUnknown := f.svc.Authenticate(ctx, domain.LoginRequest{AccountID: "nobody@example.com", Password: "password123"})

		assert.Nil(t, wrongPass)
		assert.Nil(t, unknown)
		assert.Equal(t, ErrInvalidCredentials, errWrong)
		assert.Equal(t, ErrInvalidCredentials, errUnknown)
		f.assertExpectations(t)
	})

	t.Run("Storage error is reported as invalid credentials", func(t *testing.T) {
		f := newAuthFixture()
		f.repo.On("GetByAccountID", ctx, "alice@example.com").Return(nil, errors.New("connection reset")).Once()

		_, err := f.svc.Authenticate(ctx, domain.LoginRequest{AccountID: "alice@example.com", Password: "password123"})

		assert.Equal(t, ErrInvalidCredentials, err)
		f.assertExpectations(t)
	})
}
