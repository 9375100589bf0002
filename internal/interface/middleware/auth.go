package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-movie-catalog/internal/domain/entity"
	"github.com/oksasatya/go-movie-catalog/pkg/helpers"
	"github.com/oksasatya/go-movie-catalog/pkg/response"
)

const (
	identityKey     = "identity"
	accessCookie    = "access_token"
	bearerPrefix    = "bearer "
	msgUnauthorized = "Unauthorized!"
)

var (
	ErrMissingCredential     = errors.New("missing access token")
	ErrRevokedCredential     = errors.New("token revoked")
	ErrMissingSubject        = errors.New("token has no uid claim")
	ErrRevocationUnavailable = errors.New("revocation list unavailable")
)

// TokenParser verifies an access token and returns its claims.
type TokenParser interface {
	ParseAccessToken(token string) (*helpers.Claims, error)
}

// RevocationList reports whether a token id was revoked.
type RevocationList interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// IdentityResolver turns the request credential into a verified identity.
// Revocations is optional.
type IdentityResolver struct {
	Tokens      TokenParser
	Revocations RevocationList
	Logger      *logrus.Logger
}

func NewIdentityResolver(tokens TokenParser, revocations RevocationList, logger *logrus.Logger) *IdentityResolver {
	return &IdentityResolver{Tokens: tokens, Revocations: revocations, Logger: logger}
}

// credential reads the bearer header first, then the access_token cookie.
func credential(c *gin.Context) string {
	if h := strings.TrimSpace(c.GetHeader("Authorization")); len(h) > len(bearerPrefix) &&
		strings.EqualFold(h[:len(bearerPrefix)], bearerPrefix) {
		return strings.TrimSpace(h[len(bearerPrefix):])
	}
	if token, err := c.Cookie(accessCookie); err == nil {
		return strings.TrimSpace(token)
	}
	return ""
}

// Resolve verifies the request credential. It has no side effects.
func (r *IdentityResolver) Resolve(c *gin.Context) (entity.Identity, error) {
	token := credential(c)
	if token == "" {
		return entity.Identity{}, ErrMissingCredential
	}
	claims, err := r.Tokens.ParseAccessToken(token)
	if err != nil {
		return entity.Identity{}, err
	}
	if strings.TrimSpace(claims.UserID) == "" {
		return entity.Identity{}, ErrMissingSubject
	}
	if r.Revocations != nil && claims.ID != "" {
		revoked, err := r.Revocations.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			// fail closed
			return entity.Identity{}, fmt.Errorf("%w: %v", ErrRevocationUnavailable, err)
		}
		if revoked {
			return entity.Identity{}, ErrRevokedCredential
		}
	}
	return entity.Identity{ID: claims.UserID, Email: claims.Email}, nil
}

// Required rejects the request with 401 unless a verified identity is present.
func (r *IdentityResolver) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := r.Resolve(c)
		if err != nil {
			detail := err.Error()
			if errors.Is(err, ErrRevocationUnavailable) {
				detail = ErrRevocationUnavailable.Error()
				if r.Logger != nil {
					r.Logger.WithError(err).WithField("path", c.FullPath()).Warn("revocation lookup failed, rejecting request")
				}
			} else if r.Logger != nil {
				r.Logger.WithError(err).WithField("path", c.FullPath()).Debug("identity rejected")
			}
			response.Abort(c, http.StatusUnauthorized, msgUnauthorized, detail)
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

// Optional stores the identity when the credential verifies and continues
// anonymously otherwise.
func (r *IdentityResolver) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, err := r.Resolve(c); err == nil {
			c.Set(identityKey, id)
		}
		c.Next()
	}
}

// IdentityFrom returns the identity stored by Required or Optional.
func IdentityFrom(c *gin.Context) (entity.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return entity.Identity{}, false
	}
	id, ok := v.(entity.Identity)
	return id, ok
}

// WithIdentity stores id on the context. Used by tests and alternate resolvers.
func WithIdentity(c *gin.Context, id entity.Identity) {
	c.Set(identityKey, id)
}
