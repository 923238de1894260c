package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/patrickmn/go-cache"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	defaultUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	defaultRevokeURL   = "https://oauth2.googleapis.com/revoke"
	defaultFirebaseURL = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithIdp"
)

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// FirebaseAPIKey, when set, swaps the Google ID token for a Firebase one.
	FirebaseAPIKey string

	// Endpoint overrides; zero values use Google's.
	Endpoint    oauth2.Endpoint
	UserInfoURL string
	RevokeURL   string
	FirebaseURL string
	HTTPClient  *http.Client

	// GrantTTL bounds how long a session's OAuth token is kept for revocation.
	// It should match the session retention; zero means 30 days.
	GrantTTL time.Duration
}

// GoogleProvider signs users in with Google's OAuth code flow. It remembers
// the OAuth token of each signed-in browser session so SignOut can revoke
// that session's grant. Grants are process-local; with several instances a
// sign-out handled elsewhere simply skips the revocation.
type GoogleProvider struct {
	conf           *oauth2.Config
	firebaseAPIKey string
	userInfoURL    string
	revokeURL      string
	firebaseURL    string
	httpClient     *http.Client
	broadcaster    *Broadcaster
	grants         *cache.Cache
}

var _ Provider = &GoogleProvider{}

func NewGoogleProvider(cfg GoogleConfig, broadcaster *Broadcaster) *GoogleProvider {
	ttl := cfg.GrantTTL
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" && endpoint.TokenURL == "" {
		endpoint = google.Endpoint
	}
	p := &GoogleProvider{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     endpoint,
		},
		firebaseAPIKey: cfg.FirebaseAPIKey,
		userInfoURL:    orDefault(cfg.UserInfoURL, defaultUserInfoURL),
		revokeURL:      orDefault(cfg.RevokeURL, defaultRevokeURL),
		firebaseURL:    orDefault(cfg.FirebaseURL, defaultFirebaseURL),
		httpClient:     cfg.HTTPClient,
		broadcaster:    broadcaster,
		grants:         cache.New(ttl, time.Hour),
	}
	if p.httpClient == nil {
		p.httpClient = http.DefaultClient
	}
	return p
}

func (p *GoogleProvider) LoginURL(state string) string {
	return p.conf.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

func (p *GoogleProvider) SignIn(ctx context.Context, session, code string) (*Identity, error) {
	if code == "" {
		return nil, &AuthError{Op: "sign in", Reason: "missing authorization code"}
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	token, err := p.conf.Exchange(ctx, code)
	if err != nil {
		return nil, &AuthError{Op: "sign in", Reason: "code exchange failed", Err: err}
	}

	rawIDToken, _ := token.Extra("id_token").(string)
	if rawIDToken == "" {
		return nil, &AuthError{Op: "sign in", Reason: "provider returned no id_token"}
	}

	id, err := identityFromIDToken(rawIDToken)
	if err != nil {
		return nil, &AuthError{Op: "sign in", Reason: "unreadable id_token", Err: err}
	}

	if id.Email == "" || id.DisplayName == "" {
		if err := p.fillFromUserInfo(ctx, token.AccessToken, id); err != nil {
			return nil, &AuthError{Op: "sign in", Reason: "failed getting user info", Err: err}
		}
	}
	if id.Email == "" {
		return nil, &AuthError{Op: "sign in", Reason: "provider returned no email"}
	}

	if p.firebaseAPIKey != "" {
		if err := p.exchangeForFirebase(ctx, id); err != nil {
			return nil, &AuthError{Op: "sign in", Reason: "firebase token exchange failed", Err: err}
		}
	}

	p.grants.Set(session, token, cache.DefaultExpiration)

	p.publish(AuthState{Session: session, Email: id.Email, Identity: id})
	return id, nil
}

// SignOut revokes the grant obtained by session. Grants of the same user in
// other sessions are left alone. Observers are told the session signed out
// even when revocation fails.
func (p *GoogleProvider) SignOut(ctx context.Context, session, email string) error {
	defer p.publish(AuthState{Session: session, Email: email})

	cached, found := p.grants.Get(session)
	p.grants.Delete(session)
	token, ok := cached.(*oauth2.Token)
	if !found || !ok || token == nil {
		return nil
	}
	revokable := token.RefreshToken
	if revokable == "" {
		revokable = token.AccessToken
	}
	if err := p.revoke(ctx, revokable); err != nil {
		return &AuthError{Op: "sign out", Reason: "revocation failed", Err: err}
	}
	return nil
}

func (p *GoogleProvider) OnAuthStateChanged(fn func(AuthState)) (Subscription, error) {
	if p.broadcaster == nil {
		return nil, errors.New("auth state broadcasting is not configured")
	}
	return p.broadcaster.Subscribe(fn)
}

func (p *GoogleProvider) publish(state AuthState) {
	if p.broadcaster == nil {
		return
	}
	_ = p.broadcaster.Publish(state)
}

type googleClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	jwt.RegisteredClaims
}

// identityFromIDToken reads the profile claims. The signature is not checked
// here: the backend verifies every token it receives.
func identityFromIDToken(raw string) (*Identity, error) {
	var claims googleClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return nil, err
	}
	return &Identity{
		IDToken:     raw,
		Email:       claims.Email,
		DisplayName: claims.Name,
		PhotoURL:    claims.Picture,
	}, nil
}

func (p *GoogleProvider) fillFromUserInfo(ctx context.Context, accessToken string, id *Identity) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("userinfo returned %d", resp.StatusCode)
	}

	var googleUser struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&googleUser); err != nil {
		return err
	}

	if id.Email == "" {
		id.Email = googleUser.Email
	}
	if id.DisplayName == "" {
		id.DisplayName = googleUser.Name
	}
	if id.PhotoURL == "" {
		id.PhotoURL = googleUser.Picture
	}
	return nil
}

func (p *GoogleProvider) exchangeForFirebase(ctx context.Context, id *Identity) error {
	payload, err := json.Marshal(map[string]interface{}{
		"postBody":          url.Values{"id_token": {id.IDToken}, "providerId": {"google.com"}}.Encode(),
		"requestUri":        p.conf.RedirectURL,
		"returnSecureToken": true,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.firebaseURL+"?key="+url.QueryEscape(p.firebaseAPIKey), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("identity toolkit returned %d: %s", resp.StatusCode, content)
	}

	var res struct {
		IDToken     string `json:"idToken"`
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
		PhotoURL    string `json:"photoUrl"`
	}
	if err := json.Unmarshal(content, &res); err != nil {
		return err
	}
	if res.IDToken == "" {
		return errors.New("identity toolkit returned no idToken")
	}

	id.IDToken = res.IDToken
	if res.Email != "" {
		id.Email = res.Email
	}
	if res.DisplayName != "" {
		id.DisplayName = res.DisplayName
	}
	if res.PhotoURL != "" {
		id.PhotoURL = res.PhotoURL
	}
	return nil
}

func (p *GoogleProvider) revoke(ctx context.Context, token string) error {
	form := url.Values{"token": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.revokeURL, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("revoke returned %d", resp.StatusCode)
	}
	return nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
