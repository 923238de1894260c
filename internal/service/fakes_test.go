package service

import (
	"context"
	"io"
	"sync"

	"queridoc-web/internal/entity"
	"queridoc-web/pkg/identity"
	"queridoc-web/pkg/qnaclient"
)

type fakeAPI struct {
	mu        sync.Mutex
	files     []entity.FileRecord
	filesErr  error
	history   func(filename string) ([]entity.QnAHistoryEntry, error)
	ask       func(filename, question string) (*qnaclient.AskResponse, error)
	upload    func(filename, contentType string, content []byte) (*qnaclient.UploadResponse, error)
	askCalls  int
	lastToken string
}

func (f *fakeAPI) ListFiles(_ context.Context, token string) ([]entity.FileRecord, error) {
	f.mu.Lock()
	f.lastToken = token
	f.mu.Unlock()
	return f.files, f.filesErr
}

func (f *fakeAPI) GetHistory(_ context.Context, token, filename string) ([]entity.QnAHistoryEntry, error) {
	if f.history == nil {
		return nil, nil
	}
	return f.history(filename)
}

func (f *fakeAPI) AskQuestion(_ context.Context, token, filename, question string) (*qnaclient.AskResponse, error) {
	f.mu.Lock()
	f.askCalls++
	f.mu.Unlock()
	return f.ask(filename, question)
}

func (f *fakeAPI) UploadFile(_ context.Context, token, filename, contentType string, content io.Reader) (*qnaclient.UploadResponse, error) {
	raw, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}
	return f.upload(filename, contentType, raw)
}

type fakeProvider struct {
	identity   *identity.Identity
	signInErr  error
	signOutErr error
	signedOut  []string
	sessions   []string
}

func (p *fakeProvider) LoginURL(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (p *fakeProvider) SignIn(_ context.Context, session, code string) (*identity.Identity, error) {
	p.sessions = append(p.sessions, session)
	if p.signInErr != nil {
		return nil, p.signInErr
	}
	return p.identity, nil
}

func (p *fakeProvider) SignOut(_ context.Context, session, email string) error {
	p.signedOut = append(p.signedOut, email)
	p.sessions = append(p.sessions, session)
	return p.signOutErr
}

func (p *fakeProvider) OnAuthStateChanged(fn func(identity.AuthState)) (identity.Subscription, error) {
	return nopSubscription{}, nil
}

type nopSubscription struct{}

func (nopSubscription) Unsubscribe() {}
