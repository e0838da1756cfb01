// Package client talks to the gate service on behalf of one of the two
// users: passphrase and sign-in state, presence polling, uploads and the
// shared timeline.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/textproto"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"love-space-backend/models/recording"
	"love-space-backend/models/status"
	"love-space-backend/services/apperrors"
)

const defaultTimeout = 30 * time.Second

// API is a thin client for the gate service routes. The cookie jar carries
// the passphrase session between calls.
type API struct {
	baseURL string
	http    *http.Client

	mu    sync.Mutex
	token string
}

func NewAPI(baseURL string) (*API, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, errors.Wrap(err, "api url")
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errors.Wrap(err, "cookie jar")
	}
	return &API{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Jar: jar, Timeout: defaultTimeout},
	}, nil
}

// SetToken sets the provider access token sent as a bearer token. An empty
// token stops sending one.
func (a *API) SetToken(token string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.token = token
}

func (a *API) bearer() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.token
}

func (a *API) ValidatePassword(ctx context.Context, passphrase string) error {
	return a.postJSON(ctx, "/api/validate-password",
		map[string]string{"sharedPassword": passphrase}, nil)
}

func (a *API) ValidateEmail(ctx context.Context, email string) error {
	return a.postJSON(ctx, "/api/validate-email", map[string]string{"email": email}, nil)
}

func (a *API) SetPresence(ctx context.Context, userID string, online bool) error {
	return a.postJSON(ctx, "/api/user-status", map[string]interface{}{
		"userId":   userID,
		"isOnline": online,
	}, nil)
}

// PartnerPresence returns the partner's row, or an offline placeholder when
// the partner has never reported.
func (a *API) PartnerPresence(ctx context.Context, userID string) (*status.UserStatus, error) {
	out := &status.UserStatus{}
	err := a.do(ctx, http.MethodGet, "/api/partner-status/"+url.PathEscape(userID), "", nil, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *API) ListRecordings(ctx context.Context, userID string) ([]recording.Recording, error) {
	out := []recording.Recording{}
	err := a.do(ctx, http.MethodGet, "/api/recordings/"+url.PathEscape(userID), "", nil, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UploadRecording sends one clip as a multipart form.
func (a *API) UploadRecording(ctx context.Context, fileName, contentType string, body io.Reader,
	caption, mood string) (*recording.Recording, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+escapeQuotes(fileName)+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, errors.Wrap(err, "create form file")
	}
	if _, err := io.Copy(part, body); err != nil {
		return nil, errors.Wrap(err, "read recording")
	}
	if err := w.WriteField("caption", caption); err != nil {
		return nil, errors.WithStack(err)
	}
	if err := w.WriteField("mood", mood); err != nil {
		return nil, errors.WithStack(err)
	}
	if err := w.Close(); err != nil {
		return nil, errors.WithStack(err)
	}

	out := &recording.Recording{}
	if err := a.do(ctx, http.MethodPost, "/api/recordings", w.FormDataContentType(), &buf, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *API) AddReaction(ctx context.Context, recordingID, emoji string) (*recording.Reaction, error) {
	out := &recording.Reaction{}
	err := a.postJSON(ctx, "/api/reactions", map[string]string{
		"recordingId": recordingID,
		"emoji":       emoji,
	}, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *API) postJSON(ctx context.Context, path string, in, out interface{}) error {
	data, err := json.Marshal(in)
	if err != nil {
		return errors.Wrap(err, "encode request")
	}
	return a.do(ctx, http.MethodPost, path, "application/json", bytes.NewReader(data), out)
}

func (a *API) do(ctx context.Context, method, path, contentType string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := a.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return responseError(resp.StatusCode, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	return errors.Wrap(json.Unmarshal(raw, out), "decode response")
}

// responseError maps a failed answer onto the error kinds the gate service
// reports, keeping its message.
func responseError(code int, raw []byte) error {
	var body struct {
		Error string `json:"error"`
	}
	msg := http.StatusText(code)
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		msg = body.Error
	}

	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return apperrors.Denied(msg)
	case code >= 400 && code < 500:
		return apperrors.Invalid(msg)
	default:
		return apperrors.Provider("gate api", errors.New(msg))
	}
}

func escapeQuotes(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
