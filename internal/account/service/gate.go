package service

import (
	"context"
	"errors"

	"github.com/payetonkawa/catalog-service/internal/account/domain"
	"github.com/payetonkawa/catalog-service/internal/account/repository"
	"github.com/payetonkawa/catalog-service/internal/platform/logger"
)

var ErrUnauthorized = errors.New("user is not authenticated")

// AccessGate checks a presented bearer token before a catalog read.
type AccessGate interface {
	Validate(ctx context.Context, token string) (*domain.Credential, error)
}

type accessGate struct {
	repo repository.CredentialRepository
}

func NewAccessGate(repo repository.CredentialRepository) AccessGate {
	return &accessGate{repo: repo}
}

// Validate returns the credential owning token. Every failure, including a
// storage error, is reported as ErrUnauthorized.
func (g *accessGate) Validate(ctx context.Context, token string) (*domain.Credential, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	cred, err := g.repo.GetByToken(ctx, token)
	if err != nil {
		if !errors.Is(err, repository.ErrCredentialNotFound) {
			logger.Error("Validate: failed to look up token", err)
		}
		return nil, ErrUnauthorized
	}

	cred.PasswordHash = ""
	return cred, nil
}
