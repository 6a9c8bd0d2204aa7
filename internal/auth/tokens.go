package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/recicla-soft/recicla/internal/shared"
)

// TokenStore keeps bearer tokens in Redis. Each token maps to the account it
// authenticates and expires after the configured TTL.
type TokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTokenStore constructs a TokenStore.
func NewTokenStore(client *redis.Client, ttl time.Duration) *TokenStore {
	return &TokenStore{client: client, ttl: ttl}
}

type tokenPayload struct {
	AccountID int64  `json:"account_id"`
	Name      string `json:"name"`
}

func tokenKey(token string) string {
	return "token:" + token
}

// Issue mints a fresh token for the account.
func (s *TokenStore) Issue(ctx context.Context, acc Account) (string, error) {
	token := uuid.NewString()
	payload, err := json.Marshal(tokenPayload{AccountID: acc.ID, Name: acc.Name})
	if err != nil {
		return "", storageErr(err)
	}
	if err := s.client.Set(ctx, tokenKey(token), payload, s.ttl).Err(); err != nil {
		return "", storageErr(err)
	}
	return token, nil
}

// Resolve looks the token up and refreshes its TTL on hit.
func (s *TokenStore) Resolve(ctx context.Context, token string) (shared.Account, error) {
	raw, err := s.client.Get(ctx, tokenKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return shared.Account{}, shared.NewError(shared.KindUnauthorized, "invalid or expired token")
		}
		return shared.Account{}, storageErr(err)
	}
	var payload tokenPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return shared.Account{}, storageErr(err)
	}
	_ = s.client.Expire(ctx, tokenKey(token), s.ttl).Err()
	return shared.Account{ID: payload.AccountID, Name: payload.Name}, nil
}

// Revoke deletes the token. Revoking an unknown token is not an error.
func (s *TokenStore) Revoke(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, tokenKey(token)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return storageErr(err)
	}
	return nil
}
