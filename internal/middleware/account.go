package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/radiusdt/vector-insights/internal/models"
)

// AccountMiddleware resolves the advertiser account for each request from the
// X-Google-Ads-CID header, falling back to a default. The CID is stored
// without dashes, in the request context only.
type AccountMiddleware struct {
	defaultID string
}

func NewAccountMiddleware(defaultID string) *AccountMiddleware {
	return &AccountMiddleware{defaultID: defaultID}
}

func (a *AccountMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cid := strings.TrimSpace(r.Header.Get(models.AccountHeader))
		if cid == "" {
			cid = a.defaultID
		} else if !validAccountID(cid) {
			writeError(w, http.StatusBadRequest, "invalid "+models.AccountHeader+" header")
			return
		}
		cid = models.NormalizeAccountID(cid)
		next.ServeHTTP(w, r.WithContext(WithAccountID(r.Context(), cid)))
	})
}

// WithAccountID returns a copy of ctx carrying accountID.
func WithAccountID(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, accountIDKey, accountID)
}

// AccountID returns the account stored in ctx, or "".
func AccountID(ctx context.Context) string {
	id, _ := ctx.Value(accountIDKey).(string)
	return id
}

// validAccountID accepts digits with optional dashes (123-456-7890).
func validAccountID(s string) bool {
	if len(s) > 32 {
		return false
	}
	digits := 0
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
			digits++
		case c == '-':
		default:
			return false
		}
	}
	return digits > 0
}
