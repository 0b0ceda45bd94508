package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"contacto_profesionales/internal/domain/entities"
	"contacto_profesionales/internal/platform/logger"
	"contacto_profesionales/pkg"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

var (
	errMissingToken   = pkg.NewDomainErrorSimple("UNAUTHENTICATED", "Authorization token is not provided", http.StatusUnauthorized)
	errMalformedToken = pkg.NewDomainErrorSimple("UNAUTHENTICATED", "Authorization header must be 'Bearer <token>'", http.StatusUnauthorized)
	errExpiredToken   = pkg.NewDomainErrorSimple("UNAUTHENTICATED", "Token has expired", http.StatusUnauthorized)
	errInvalidToken   = pkg.NewDomainErrorSimple("UNAUTHENTICATED", "Token is invalid", http.StatusUnauthorized)
	errInvalidActor   = pkg.NewDomainErrorSimple("UNAUTHENTICATED", "Token does not carry a usable user_id and role", http.StatusUnauthorized)
)

// Claims is what the token issuer puts in an access token.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Actor is the authenticated caller, as resolved from Claims.
type Actor struct {
	ID   int64
	Role entities.ActorRole
}

// JWTAuth validates the bearer token and stores the Actor on both the gin and the request context.
func JWTAuth(secret string, log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.NewNop()
	}
	log = log.Named("JWTAuth")

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abort(c, errMissingToken)
			return
		}
		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			log.Warn("invalid authorization header format", zap.String("path", c.FullPath()))
			abort(c, errMalformedToken)
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil {
			log.Warn("token validation failed", zap.String("path", c.FullPath()), zap.Error(err))
			if errors.Is(err, jwt.ErrTokenExpired) {
				abort(c, errExpiredToken)
				return
			}
			abort(c, errInvalidToken)
			return
		}
		if !token.Valid {
			abort(c, errInvalidToken)
			return
		}

		actor, err := claims.Actor()
		if err != nil {
			log.Warn("token claims rejected", zap.String("user_id", claims.UserID), zap.String("role", claims.Role), zap.Error(err))
			abort(c, errInvalidActor)
			return
		}

		c.Set(string(ActorIDCtxKey), actor.ID)
		c.Set(string(ActorRoleCtxKey), actor.Role)
		ctx := context.WithValue(c.Request.Context(), ActorIDCtxKey, actor.ID)
		ctx = context.WithValue(ctx, ActorRoleCtxKey, actor.Role)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// Actor turns the string claims into a typed Actor.
func (cl *Claims) Actor() (Actor, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(cl.UserID), 10, 64)
	if err != nil || id <= 0 {
		return Actor{}, errors.New("user_id must be a positive integer")
	}
	role := entities.ActorRole(strings.ToLower(strings.TrimSpace(cl.Role)))
	if !role.IsValid() {
		return Actor{}, errors.New("role must be client or professional")
	}
	return Actor{ID: id, Role: role}, nil
}

// ActorFromContext returns the Actor stored by JWTAuth.
func ActorFromContext(c *gin.Context) (Actor, bool) {
	id, ok := c.Get(string(ActorIDCtxKey))
	if !ok {
		return Actor{}, false
	}
	role, ok := c.Get(string(ActorRoleCtxKey))
	if !ok {
		return Actor{}, false
	}
	actorID, ok := id.(int64)
	if !ok {
		return Actor{}, false
	}
	actorRole, ok := role.(entities.ActorRole)
	if !ok {
		return Actor{}, false
	}
	return Actor{ID: actorID, Role: actorRole}, true
}

// WithActor stores a on c the same way JWTAuth does.
func WithActor(c *gin.Context, a Actor) {
	c.Set(string(ActorIDCtxKey), a.ID)
	c.Set(string(ActorRoleCtxKey), a.Role)
}

func abort(c *gin.Context, appErr *pkg.AppError) {
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToHTTPError())
}
