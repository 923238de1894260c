package identity

import (
	"context"

	"queridoc-web/internal/entity"
)

// Identity is what the provider knows about a signed-in user.
type Identity struct {
	IDToken     string `json:"id_token"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	PhotoURL    string `json:"photo_url,omitempty"`
}

// AuthState is delivered to observers. Session is the browser session the
// change belongs to; Identity is nil once that session signed out.
type AuthState struct {
	Session  string    `json:"session"`
	Email    string    `json:"email"`
	Identity *Identity `json:"identity,omitempty"`
}

func (s AuthState) SignedIn() bool {
	return s.Identity != nil
}

// AuthError is returned for every sign-in or sign-out failure, user
// cancellation included.
type AuthError struct {
	Op     string
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	msg := e.Op + ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Subscription is returned by OnAuthStateChanged.
type Subscription interface {
	Unsubscribe()
}

type Provider interface {
	// LoginURL is where the browser goes to start the interactive sign-in.
	LoginURL(state string) string
	// SignIn completes the sign-in of one browser session. Sign-ins are
	// per session: the same user may be signed in from several browsers.
	SignIn(ctx context.Context, session, code string) (*Identity, error)
	// SignOut ends the sign-in of that session only.
	SignOut(ctx context.Context, session, email string) error
	OnAuthStateChanged(fn func(AuthState)) (Subscription, error)
}

// ToSession derives the session shape from a provider identity.
func ToSession(id *Identity) *entity.Session {
	return &entity.Session{
		Token: id.IDToken,
		Email: id.Email,
		Name:  id.DisplayName,
	}
}
