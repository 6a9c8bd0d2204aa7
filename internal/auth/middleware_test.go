package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/recicla-soft/recicla/internal/shared"
)

func TestRequireAccount(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	tokens := NewTokenStore(client, time.Hour)

	token, err := tokens.Issue(context.Background(), Account{ID: 7, Name: "Maria"})
	require.NoError(t, err)

	var seen shared.Account
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = shared.AccountFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	handler := RequireAccount(tokens)(next)

	req := httptest.NewRequest(http.MethodGet, "/api/stock", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, int64(7), seen.ID)
	require.Equal(t, "Maria", seen.Name)

	req = httptest.NewRequest(http.MethodGet, "/api/stock", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/stock", nil)
	req.Header.Set("Authorization", "Bearer nonexistent-token")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
