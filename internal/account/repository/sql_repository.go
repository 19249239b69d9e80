package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/samber/oops"

	"github.com/payetonkawa/catalog-service/internal/account/domain"
	"github.com/payetonkawa/catalog-service/internal/platform/database"
	"github.com/payetonkawa/catalog-service/internal/platform/logger"
)

var (
	ErrCredentialNotFound = errors.New("credential not found")
	ErrAccountConflict    = errors.New("an account with this id already exists")
	ErrTokenConflict      = errors.New("token already issued to another account")
)

type CredentialRepository interface {
	// CreateCredential reserves cred.AccountID and stores the credential in one
	// statement. Concurrent calls for the same account id see exactly one success.
	CreateCredential(ctx context.Context, cred *domain.Credential) error
	GetByAccountID(ctx context.Context, accountID string) (*domain.Credential, error)
	GetByToken(ctx context.Context, token string) (*domain.Credential, error)
}

type sqlCredentialRepository struct {
	db database.DBTX
}

func NewSQLCredentialRepository(db database.DBTX) CredentialRepository {
	return &sqlCredentialRepository{db: db}
}

func (r *sqlCredentialRepository) CreateCredential(ctx context.Context, cred *domain.Credential) error {
	query := `INSERT INTO credentials (account_id, password_hash, token, created_at)
              VALUES ($1, $2, $3, $4)
              ON CONFLICT (account_id) DO NOTHING
              RETURNING account_id`

	cred.CreatedAt = time.Now().UTC()

	var inserted string
	err := r.db.QueryRowContext(ctx, query, cred.AccountID, cred.PasswordHash, cred.Token, cred.CreatedAt).
		Scan(&inserted)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		// ON CONFLICT swallowed the insert: the account id is taken.
		return ErrAccountConflict
	case database.IsUniqueViolation(err):
		// The only other unique column is token.
		logger.Warn("CreateCredential: token collision", "account_id", cred.AccountID)
		return ErrTokenConflict
	default:
		logger.Error("CreateCredential: failed to insert credential", err, "account_id", cred.AccountID)
		return oops.Code("CREDENTIAL_INSERT_FAILED").With("account_id", cred.AccountID).Wrap(err)
	}
}

func (r *sqlCredentialRepository) getBy(ctx context.Context, field, value string) (*domain.Credential, error) {
	query := `SELECT account_id, password_hash, token, created_at FROM credentials WHERE ` + field + ` = $1`
	cred := &domain.Credential{}

	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&cred.AccountID, &cred.PasswordHash, &cred.Token, &cred.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCredentialNotFound
		}
		return nil, oops.Code("CREDENTIAL_QUERY_FAILED").With("field", field).Wrap(err)
	}
	return cred, nil
}

func (r *sqlCredentialRepository) GetByAccountID(ctx context.Context, accountID string) (*domain.Credential, error) {
	return r.getBy(ctx, "account_id", accountID)
}

func (r *sqlCredentialRepository) GetByToken(ctx context.Context, token string) (*domain.Credential, error) {
	return r.getBy(ctx, "token", token)
}
