package handler

import (
	"context"
	"testing"

	"queridoc-web/internal/entity"
	"queridoc-web/internal/pkg/logger"
	"queridoc-web/pkg/identity"

	"github.com/stretchr/testify/assert"
)

type fakeAuth struct {
	ended []string
}

func (f *fakeAuth) BeginLogin() (string, string, error) { return "", "", nil }

func (f *fakeAuth) CompleteLogin(context.Context, string, string) (*entity.Session, error) {
	return nil, nil
}

func (f *fakeAuth) Logout(context.Context, string, *entity.Session) {}

func (f *fakeAuth) EndLocalSession(_ context.Context, sid string) {
	f.ended = append(f.ended, sid)
}

func TestWatchEndsSessionOnSignOut(t *testing.T) {
	auth := &fakeAuth{}
	h := NewAuthEventHandler(nil, auth, logger.NewNopLogger())

	var pushed [][]byte
	observe := h.watch("sid-1", "a@b.c", func(msg []byte) bool {
		pushed = append(pushed, msg)
		return true
	})

	observe(identity.AuthState{Session: "sid-1", Email: "a@b.c", Identity: &identity.Identity{Email: "a@b.c"}})
	observe(identity.AuthState{Session: "sid-2", Email: "other@b.c"})
	assert.Empty(t, auth.ended)
	assert.Empty(t, pushed)

	observe(identity.AuthState{Session: "sid-1", Email: "a@b.c"})
	assert.Equal(t, []string{"sid-1"}, auth.ended)
	if assert.Len(t, pushed, 1) {
		assert.JSONEq(t, `{"type":"signed_out"}`, string(pushed[0]))
	}
}

func TestSignOutInOneBrowserKeepsTheOtherSignedIn(t *testing.T) {
	auth := &fakeAuth{}
	h := NewAuthEventHandler(nil, auth, logger.NewNopLogger())

	pushed := map[string]int{}
	browserA := h.watch("sid-a", "ada@example.com", func([]byte) bool { pushed["sid-a"]++; return true })
	browserB := h.watch("sid-b", "ada@example.com", func([]byte) bool { pushed["sid-b"]++; return true })

	signedOutA := identity.AuthState{Session: "sid-a", Email: "ada@example.com"}
	browserA(signedOutA)
	browserB(signedOutA)

	assert.Equal(t, []string{"sid-a"}, auth.ended)
	assert.Equal(t, map[string]int{"sid-a": 1}, pushed)
}
