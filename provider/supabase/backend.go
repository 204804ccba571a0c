package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	guard "github.com/goliatone/go-pantry-guard"
)

// Backend verifies access tokens locally and talks to the auth service only
// for sign-out and OTP confirmation. It implements guard.IdentityBackend.
type Backend struct {
	config  Config
	keyFunc jwt.Keyfunc
	client  *http.Client
	timeout time.Duration
}

// NewBackend creates a backend from the config, resolving the key material
// once up front.
func NewBackend(cfg Config) (*Backend, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	kf, err := resolveKeyFunc(cfg)
	if err != nil {
		return nil, err
	}

	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Backend{
		config:  cfg,
		keyFunc: kf,
		client:  client,
		timeout: timeout,
	}, nil
}

var _ guard.IdentityBackend = (*Backend)(nil)

// VerifyClaims validates the access token and returns its claims. It issues
// no network call and never refreshes: an expired access token with no
// refresh token present is the terminal refresh_token_not_found state, while
// an expired token with a refresh token still in hand is reported as no
// verified session, leaving refresh to the client's own auth flow.
func (b *Backend) VerifyClaims(ctx context.Context, creds guard.Credentials) (map[string]any, error) {
	if creds.AccessToken == "" {
		if creds.RefreshToken == "" {
			return nil, nil
		}
		// refresh-only cookies: no claims to verify here
		return nil, nil
	}

	claims, err := b.parseToken(creds.AccessToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			if creds.RefreshToken == "" {
				return nil, errors.New("access token expired and no refresh token present", errors.CategoryAuth).
					WithTextCode(guard.ErrInvalidRefreshToken.TextCode).
					WithCode(errors.CodeUnauthorized).
					WithMetadata(map[string]any{"code": guard.CodeRefreshTokenNotFound})
			}
			return nil, nil
		}

		return nil, errors.Wrap(err, errors.CategoryAuth, "access token validation failed")
	}

	return claims, nil
}

// GetSession returns the bearer token for outbound API calls, with the same
// expiry discipline as VerifyClaims.
func (b *Backend) GetSession(ctx context.Context, creds guard.Credentials) (*guard.SessionState, error) {
	if creds.AccessToken == "" {
		return nil, nil
	}

	claims, err := b.parseToken(creds.AccessToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			if creds.RefreshToken == "" {
				return nil, errors.New("session expired and no refresh token present", errors.CategoryAuth).
					WithTextCode(guard.ErrInvalidRefreshToken.TextCode).
					WithCode(errors.CodeUnauthorized).
					WithMetadata(map[string]any{"code": guard.CodeRefreshTokenNotFound})
			}
			return nil, nil
		}

		return nil, errors.Wrap(err, errors.CategoryAuth, "session token validation failed")
	}

	state := &guard.SessionState{AccessToken: creds.AccessToken}
	if exp, ok := claims["exp"].(float64); ok {
		state.ExpiresAt = time.Unix(int64(exp), 0)
	}

	return state, nil
}

// SignOut revokes the session server side. A 401 counts as success: the
// token was already invalid.
func (b *Backend) SignOut(ctx context.Context, accessToken string) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.config.URL+"/auth/v1/logout", nil)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to build sign-out request")
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	res, err := b.client.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "sign-out call failed")
	}
	defer res.Body.Close()

	if res.StatusCode >= 200 && res.StatusCode <= 299 || res.StatusCode == http.StatusUnauthorized {
		return nil
	}

	body, _ := io.ReadAll(res.Body)
	return errors.New("sign-out returned non-success status", errors.CategoryOperation).
		WithMetadata(map[string]any{
			"status": res.StatusCode,
			"body":   string(body),
		})
}

// VerifiedSession is the credential pair minted by a successful OTP
// confirmation.
type VerifiedSession struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// VerifyOTP confirms an emailed token hash (magic link, email verification)
// and returns the session it mints. Callers redirect to their next surface
// on success and to their error surface on failure.
func (b *Backend) VerifyOTP(ctx context.Context, tokenHash, otpType string) (*VerifiedSession, error) {
	if tokenHash == "" || otpType == "" {
		return nil, errors.New("token hash and type are required", errors.CategoryBadInput)
	}

	payload, err := json.Marshal(map[string]string{
		"type":       otpType,
		"token_hash": tokenHash,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to encode verify payload")
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.config.URL+"/auth/v1/verify", bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to build verify request")
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := b.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "OTP verification call failed")
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "failed to read verify response")
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, errors.New("OTP verification rejected", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithMetadata(map[string]any{
				"status": res.StatusCode,
				"body":   string(raw),
			})
	}

	session := &VerifiedSession{}
	if err := json.Unmarshal(raw, session); err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "failed to decode verify response")
	}

	return session, nil
}

func (b *Backend) parseToken(tokenString string) (map[string]any, error) {
	opts := make([]jwt.ParserOption, 0, 2)
	if iss := b.config.issuer(); iss != "" {
		opts = append(opts, jwt.WithIssuer(iss))
	}
	if len(b.config.Audience) > 0 {
		opts = append(opts, jwt.WithAudience(b.config.Audience...))
	}

	token, err := jwt.Parse(tokenString, b.keyFunc, opts...)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, guard.ErrUnableToMapClaims
	}

	return map[string]any(claims), nil
}

func resolveKeyFunc(cfg Config) (jwt.Keyfunc, error) {
	if len(cfg.JWKSetURLs) > 0 {
		return multiKeyfunc(cfg.JWKSetURLs)
	}

	method := cfg.SigningMethod
	if method == "" {
		method = "HS256"
	}

	key := []byte(cfg.SigningKey)
	return func(token *jwt.Token) (any, error) {
		alg, ok := token.Header["alg"].(string)
		if !ok {
			return nil, fmt.Errorf("unexpected JWT signing method: expected %q got: missing json type", method)
		}
		if alg != method {
			return nil, fmt.Errorf("unexpected jwt signing method: expected: %q: got: %q", method, alg)
		}
		return key, nil
	}, nil
}

func multiKeyfunc(jwkSetURLs []string) (jwt.Keyfunc, error) {
	opts := keyfunc.Options{
		RefreshErrorHandler: func(err error) {
			log.Printf("failed to do a background refresh of JWK set: %s", err)
		},
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  time.Minute * 5,
		RefreshTimeout:    time.Second * 10,
		RefreshUnknownKID: true,
	}

	m := make(map[string]keyfunc.Options, len(jwkSetURLs))
	for _, url := range jwkSetURLs {
		m[url] = opts
	}

	multi, err := keyfunc.GetMultiple(m, keyfunc.MultipleOptions{
		KeySelector: keyfunc.KeySelectorFirst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get JWK set URLs: %w", err)
	}

	return multi.Keyfunc, nil
}
