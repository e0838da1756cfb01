package authentication

import (
	"net/http"
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	ContextUserID    = "userID"
	ContextUserEmail = "userEmail"
)

// Claims are the fields we read from a provider access token. The user id
// travels in the standard "sub" claim.
type Claims struct {
	Email string `json:"email"`
	jwt.StandardClaims
}

var ErrNoToken = errors.New("Authorization header required")

// ParseToken verifies an HS256 access token signed with the provider's JWT
// secret.
func ParseToken(secret []byte, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "parse token")
	}
	if !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func bearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrNoToken
	}
	return strings.TrimPrefix(authHeader, "Bearer "), nil
}

// Authenticator guards the routes that act on behalf of a signed in user.
type Authenticator struct {
	Secret   []byte
	Allowed  AllowList
	Sessions sessions.Store
}

// RequireUser needs a valid access token for an allow-listed email and a
// session that already passed the shared passphrase.
func (a *Authenticator) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := bearerToken(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		claims, err := ParseToken(a.Secret, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		if !a.Allowed.Contains(claims.Email) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Email not authorized for this app"})
			return
		}

		if !IsUnlocked(c.Request, a.Sessions) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Shared password required"})
			return
		}

		logrus.WithField("user_id", claims.Subject).Debug("authenticated request")
		c.Set(ContextUserID, claims.Subject)
		c.Set(ContextUserEmail, claims.Email)
		c.Next()
	}
}

// OptionalUser identifies the caller when a token is present and lets
// anonymous requests through.
func (a *Authenticator) OptionalUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := bearerToken(c.Request)
		if err != nil {
			c.Next()
			return
		}

		claims, err := ParseToken(a.Secret, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		c.Set(ContextUserID, claims.Subject)
		c.Set(ContextUserEmail, claims.Email)
		c.Next()
	}
}

// CurrentUser returns the identity set by RequireUser or OptionalUser.
func CurrentUser(c *gin.Context) (id, email string, ok bool) {
	id = c.GetString(ContextUserID)
	email = c.GetString(ContextUserEmail)
	return id, email, id != ""
}
