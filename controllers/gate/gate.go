package gate

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"love-space-backend/controllers/authentication"
	"love-space-backend/services/metrics"
)

// Gate answers the two access checks in front of the app: the shared
// passphrase and the email allow-list.
type Gate struct {
	password       string
	passwordBcrypt []byte
	allowed        authentication.AllowList
	sessions       sessions.Store
}

func New(password, passwordBcrypt string, allowed authentication.AllowList, store sessions.Store) *Gate {
	g := &Gate{
		password: password,
		allowed:  allowed,
		sessions: store,
	}
	if passwordBcrypt != "" {
		g.passwordBcrypt = []byte(passwordBcrypt)
	}
	return g
}

type passwordRequest struct {
	SharedPassword string `json:"sharedPassword"`
}

type emailRequest struct {
	Email string `json:"email"`
}

func (g *Gate) PassphraseMatches(candidate string) bool {
	if g.passwordBcrypt != nil {
		return bcrypt.CompareHashAndPassword(g.passwordBcrypt, []byte(candidate)) == nil
	}
	if g.password == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(g.password)) == 1
}

// ValidatePassword: POST /api/validate-password
func (g *Gate) ValidatePassword(c *gin.Context) {
	var req passwordRequest
	// A body we cannot read is just a wrong password.
	_ = c.ShouldBindJSON(&req)

	ok := g.PassphraseMatches(req.SharedPassword)
	metrics.GateChecks.WithLabelValues("passphrase", metrics.Result(ok)).Inc()
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid shared password"})
		return
	}

	if g.sessions != nil {
		if err := authentication.MarkUnlocked(c.Writer, c.Request, g.sessions); err != nil {
			logrus.WithError(err).Warn("could not persist passphrase session")
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ValidateEmail: POST /api/validate-email
func (g *Gate) ValidateEmail(c *gin.Context) {
	var req emailRequest
	_ = c.ShouldBindJSON(&req)

	ok := g.allowed.Contains(req.Email)
	metrics.GateChecks.WithLabelValues("email", metrics.Result(ok)).Inc()
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "Email not authorized for this app"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
