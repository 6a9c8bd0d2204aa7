package auth

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/recicla-soft/recicla/internal/shared"
)

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service wraps registration and credential checks.
type Service struct {
	logger *slog.Logger
	repo   RepositoryPort
	tokens *TokenStore
	audit  AuditPort
}

// NewService constructs Service.
func NewService(logger *slog.Logger, repo RepositoryPort, tokens *TokenStore, audit AuditPort) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{logger: logger, repo: repo, tokens: tokens, audit: audit}
}

// Register creates an account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, name, email, password string) (Account, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return Account{}, shared.NewError(shared.KindInvalidInput, "name and email are required")
	}
	if len(password) < 8 {
		return Account{}, shared.NewError(shared.KindInvalidInput, "password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, shared.WrapError(shared.KindStorage, "hash password", err)
	}
	acc, err := s.repo.Create(ctx, name, email, string(hash))
	if err != nil {
		return Account{}, err
	}
	if s.audit != nil {
		// fire-and-forget: the account exists either way
		if err := s.audit.Record(ctx, shared.AuditLog{
			AccountID: acc.ID,
			Action:    "auth:register",
			Entity:    "account",
			EntityID:  strconv.FormatInt(acc.ID, 10),
		}); err != nil {
			s.logger.Warn("audit record", slog.Any("error", err), slog.String("action", "auth:register"))
		}
	}
	return acc, nil
}

// Login validates credentials and issues a bearer token. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (string, Account, error) {
	acc, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if shared.KindOf(err) == shared.KindNotFound {
			return "", Account{}, shared.NewError(shared.KindUnauthorized, "invalid credentials")
		}
		return "", Account{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return "", Account{}, shared.NewError(shared.KindUnauthorized, "invalid credentials")
	}
	token, err := s.tokens.Issue(ctx, acc)
	if err != nil {
		return "", Account{}, err
	}
	return token, acc, nil
}

// Logout revokes the token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}
