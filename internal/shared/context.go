package shared

import "context"

// Account identifies the authenticated caller attached to a request context.
type Account struct {
	ID   int64
	Name string
}

type contextKey string

const accountKey contextKey = "account"

// ContextWithAccount returns a child context carrying the account.
func ContextWithAccount(ctx context.Context, acc Account) context.Context {
	return context.WithValue(ctx, accountKey, acc)
}

// AccountFromContext extracts the account set by the auth middleware.
func AccountFromContext(ctx context.Context) (Account, bool) {
	acc, ok := ctx.Value(accountKey).(Account)
	return acc, ok
}
