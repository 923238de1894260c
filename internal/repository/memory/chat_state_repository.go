package memory

import (
	"sync"
	"time"

	"queridoc-web/internal/repository/contract"
	"queridoc-web/pkg/store"

	"github.com/patrickmn/go-cache"
)

// ChatStateRepository keeps one Ask view per browser session. Idle views
// expire after an hour.
type ChatStateRepository struct {
	mu    sync.Mutex
	cache *cache.Cache
}

var _ contract.ChatStateRepository = (*ChatStateRepository)(nil)

func NewChatStateRepository() *ChatStateRepository {
	return &ChatStateRepository{
		cache: cache.New(1*time.Hour, 10*time.Minute),
	}
}

func (r *ChatStateRepository) GetOrCreate(sid string) *store.ChatView {
	r.mu.Lock()
	defer r.mu.Unlock()

	if x, found := r.cache.Get(sid); found {
		view := x.(*store.ChatView)
		// touch to extend the idle window
		r.cache.Set(sid, view, cache.DefaultExpiration)
		return view
	}
	view := store.NewChatView()
	r.cache.Set(sid, view, cache.DefaultExpiration)
	return view
}

func (r *ChatStateRepository) Delete(sid string) {
	r.cache.Delete(sid)
}
