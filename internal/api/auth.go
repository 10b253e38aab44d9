package api

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

const authRealm = `Basic realm="rgbnode"`

var (
	errNoCredentials    = errors.New("authentication required")
	errMalformedAuth    = errors.New("invalid credentials format")
	errWrongAuthScheme  = errors.New("invalid authentication type")
	errWrongCredentials = errors.New("invalid credentials")
)

// withAuth marks an operation as requiring basic auth.
func withAuth() []map[string][]string {
	return []map[string][]string{
		{"basicAuth": {}},
	}
}

// credentials reads user:pass from the Authorization header, or from the
// auth query parameter for EventSource clients that cannot set headers.
func credentials(ctx huma.Context) (string, string, error) {
	var encoded string
	if header := ctx.Header("Authorization"); header != "" {
		scheme, rest, _ := strings.Cut(header, " ")
		if !strings.EqualFold(scheme, "Basic") {
			return "", "", errWrongAuthScheme
		}
		encoded = rest
	} else {
		encoded = ctx.Query("auth")
	}
	if encoded == "" {
		return "", "", errNoCredentials
	}

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", "", errMalformedAuth
	}
	user, pass, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return "", "", errMalformedAuth
	}
	return user, pass, nil
}

// basicAuthMiddleware rejects requests to secured operations without the
// configured credentials. Operations with an empty Security list are open.
func (s *Server) basicAuthMiddleware(username, password string) func(huma.Context, func(huma.Context)) {
	wantUser := []byte(username)
	wantPass := []byte(password)

	return func(ctx huma.Context, next func(huma.Context)) {
		if op := ctx.Operation(); op != nil && len(op.Security) == 0 {
			next(ctx)
			return
		}

		user, pass, err := credentials(ctx)
		if err == nil {
			userOK := subtle.ConstantTimeCompare([]byte(user), wantUser)
			passOK := subtle.ConstantTimeCompare([]byte(pass), wantPass)
			if userOK&passOK != 1 {
				err = errWrongCredentials
			}
		}
		if err != nil {
			ctx.SetHeader("WWW-Authenticate", authRealm)
			huma.WriteErr(s.api, ctx, http.StatusUnauthorized, err.Error())
			return
		}

		next(ctx)
	}
}
