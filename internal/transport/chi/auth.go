package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// APIKeyHeader carries the API key.
const APIKeyHeader = "X-API-Key"

// exemptPaths are routes that bypass authentication (status, health, metrics).
var exemptPaths = map[string]struct{}{
	"/":        {},
	"/health":  {},
	"/metrics": {},
}

// AuthEnabled reports whether APIKeyMiddleware will enforce authentication
// for apiKeys. Blank keys are ignored.
func AuthEnabled(apiKeys []string) bool {
	return len(usableKeys(apiKeys)) > 0
}

func usableKeys(apiKeys []string) []string {
	keys := make([]string, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// APIKeyMiddleware validates the X-API-Key header, falling back to a Bearer token.
// If no usable key is configured, authentication is disabled (pass-through).
func APIKeyMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	validKeys := usableKeys(apiKeys)

	return func(next http.Handler) http.Handler {
		if len(validKeys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			key := presentedKey(r)
			if key == "" {
				writeError(w, http.StatusForbidden, ErrorCodeForbidden, "missing api key")
				return
			}
			if !matchKey(validKeys, key) {
				writeError(w, http.StatusForbidden, ErrorCodeForbidden, "invalid api key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func presentedKey(r *http.Request) string {
	if k := r.Header.Get(APIKeyHeader); k != "" {
		return k
	}
	const bearerPrefix = "Bearer "
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, bearerPrefix) {
		return auth[len(bearerPrefix):]
	}
	return ""
}

func matchKey(valid []string, key string) bool {
	for _, k := range valid {
		if subtle.ConstantTimeCompare([]byte(k), []byte(key)) == 1 {
			return true
		}
	}
	return false
}
