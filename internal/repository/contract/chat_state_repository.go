package contract

import "queridoc-web/pkg/store"

// ChatStateRepository holds the live Ask view of each browser session.
type ChatStateRepository interface {
	// GetOrCreate never returns nil.
	GetOrCreate(sid string) *store.ChatView
	Delete(sid string)
}
