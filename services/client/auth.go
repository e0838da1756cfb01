package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"love-space-backend/services/apperrors"
)

// AuthProvider signs users up and in against the provider's GoTrue auth
// API using the public anonymous key.
type AuthProvider struct {
	baseURL string
	anonKey string
	http    *http.Client
}

func NewAuthProvider(baseURL, anonKey string) *AuthProvider {
	return &AuthProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

func (p *AuthProvider) URL() string {
	return p.baseURL
}

type authSession struct {
	AccessToken string `json:"access_token"`
	User        struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// SignInWithPassword returns an access token for email and password.
func (p *AuthProvider) SignInWithPassword(ctx context.Context, email, password string) (string, error) {
	out := &authSession{}
	err := p.post(ctx, "/auth/v1/token?grant_type=password", email, password, out)
	if err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", apperrors.Provider("sign in", errors.New("no access token in response"))
	}
	return out.AccessToken, nil
}

// SignUp registers email and password. When the provider requires the
// email to be confirmed first no token comes back and the returned token
// is empty.
func (p *AuthProvider) SignUp(ctx context.Context, email, password string) (string, error) {
	out := &authSession{}
	if err := p.post(ctx, "/auth/v1/signup", email, password, out); err != nil {
		return "", err
	}
	return out.AccessToken, nil
}

func (p *AuthProvider) post(ctx context.Context, path, email, password string, out interface{}) error {
	if p.baseURL == "" || p.anonKey == "" {
		return apperrors.Invalid("Provider URL and anon key are required to sign in with a password")
	}

	data, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return errors.Wrap(err, "encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", p.anonKey)
	req.Header.Set("Authorization", "Bearer "+p.anonKey)

	resp, err := p.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "POST %s", path)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return authError(resp.StatusCode, raw)
	}
	return errors.Wrap(json.Unmarshal(raw, out), "decode response")
}

// authError maps GoTrue failures. Bad credentials come back as 400, an
// existing account as 422.
func authError(code int, raw []byte) error {
	var body struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
		Error            string `json:"error"`
	}
	msg := http.StatusText(code)
	if json.Unmarshal(raw, &body) == nil {
		for _, m := range []string{body.Msg, body.Message, body.ErrorDescription, body.Error} {
			if m != "" {
				msg = m
				break
			}
		}
	}

	switch {
	case code == http.StatusBadRequest || code == http.StatusUnauthorized || code == http.StatusForbidden:
		return apperrors.Denied(msg)
	case code >= 400 && code < 500:
		return apperrors.Invalid(msg)
	default:
		return apperrors.Provider("auth", errors.New(msg))
	}
}
