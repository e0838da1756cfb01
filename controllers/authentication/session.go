package authentication

import (
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/pkg/errors"
)

const (
	sessionName   = "love-space"
	unlockedValue = "passphrase_ok"
)

// MarkUnlocked records in the session cookie that the shared passphrase was
// accepted.
func MarkUnlocked(w http.ResponseWriter, r *http.Request, store sessions.Store) error {
	session, err := store.Get(r, sessionName)
	if err != nil && session == nil {
		return errors.Wrap(err, "load session")
	}
	session.Values[unlockedValue] = true
	return errors.Wrap(session.Save(r, w), "save session")
}

func IsUnlocked(r *http.Request, store sessions.Store) bool {
	session, err := store.Get(r, sessionName)
	if err != nil || session == nil {
		return false
	}
	ok, _ := session.Values[unlockedValue].(bool)
	return ok
}
