package mcp

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/server"
)

// NewHTTPHandler serves the MCP tools over streamable HTTP. When apiKey is
// set every request must carry it as a Bearer token.
func NewHTTPHandler(c *Catalog, apiKey string) http.Handler {
	var h http.Handler = server.NewStreamableHTTPServer(NewServer(c), server.WithStateLess(true))
	if apiKey != "" {
		h = BearerAuth(apiKey, h)
	}
	return h
}

func BearerAuth(apiKey string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			w.Header().Set("WWW-Authenticate", `Bearer realm="campusfair"`)
			http.Error(w, `{"error":"missing Authorization header"}`, http.StatusUnauthorized)
			return
		}
		token, found := strings.CutPrefix(auth, "Bearer ")
		if !found || subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
			w.Header().Set("WWW-Authenticate", `Bearer realm="campusfair", error="invalid_token"`)
			http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
