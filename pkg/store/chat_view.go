package store

import (
	"slices"
	"strings"
	"sync"

	"queridoc-web/internal/entity"
)

// ChatView is the live state of one browser's Ask page.
//
// Every transition takes the lock for the duration of the state change only,
// never across backend I/O. Generation is bumped on every selection change and
// lets late history responses and answers detect they are stale. No question
// can be asked while the selection's history is still loading, so the
// transcript is never replaced under an in-flight question.
type ChatView struct {
	mu             sync.Mutex
	files          []string
	selected       string
	messages       []entity.Message
	loading        bool
	historyPending bool
	generation     uint64
}

// ChatSnapshot is a copy of ChatView safe to hand to a template.
type ChatSnapshot struct {
	Files    []string
	Selected string
	Messages []entity.Message
	Loading  bool
}

// Ticket identifies an in-flight question.
type Ticket struct {
	Filename   string
	Question   string
	generation uint64
	index      int
}

func NewChatView() *ChatView {
	return &ChatView{}
}

// SetFiles records the backend's file list and returns the file that should be
// selected: the requested one if listed, else the current one if still listed,
// else the first file ("" when the list is empty).
func (v *ChatView) SetFiles(files []string, requested string) string {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.files = slices.Clone(files)
	switch {
	case requested != "" && slices.Contains(files, requested):
		return requested
	case v.selected != "" && slices.Contains(files, v.selected):
		return v.selected
	case len(files) > 0:
		return files[0]
	default:
		return ""
	}
}

// Selected returns the active file.
func (v *ChatView) Selected() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.selected
}

// BeginSelect makes filename active, empties the transcript and returns the
// generation the history response must match. Until ApplyHistory is called
// for that generation no question can be started.
func (v *ChatView) BeginSelect(filename string) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.generation++
	v.selected = filename
	v.messages = nil
	v.historyPending = filename != ""
	return v.generation
}

// ApplyHistory replaces the transcript unless the selection moved on since
// generation was issued. It reports whether the messages were applied. A
// failed fetch applies nil so the empty transcript becomes usable.
func (v *ChatView) ApplyHistory(generation uint64, messages []entity.Message) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if generation != v.generation {
		return false
	}
	v.messages = messages
	v.historyPending = false
	return true
}

// canAsk reports whether a question about filename may start now.
func (v *ChatView) canAsk(filename string) bool {
	return v.selected != "" && filename == v.selected && !v.loading && !v.historyPending
}

// BeginSubmit appends the optimistic user message and enters the loading
// state. filename is the document the asking page shows. It returns false,
// changing nothing, for blank questions, a missing or different selection,
// while the history is loading or while another question is in flight.
func (v *ChatView) BeginSubmit(filename, question string) (Ticket, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if strings.TrimSpace(question) == "" || !v.canAsk(filename) {
		return Ticket{}, false
	}

	v.messages = append(v.messages, entity.Message{Role: entity.MessageRoleUser, Text: question})
	v.loading = true
	return Ticket{
		Filename:   v.selected,
		Question:   question,
		generation: v.generation,
		index:      len(v.messages) - 1,
	}, true
}

// BeginRetry re-opens the last message when it is an unanswered question
// about filename.
func (v *ChatView) BeginRetry(filename string) (Ticket, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	n := len(v.messages)
	if !v.canAsk(filename) || n == 0 {
		return Ticket{}, false
	}
	last := v.messages[n-1]
	if last.Role != entity.MessageRoleUser || !last.Unanswered {
		return Ticket{}, false
	}

	v.loading = true
	return Ticket{
		Filename:   v.selected,
		Question:   last.Text,
		generation: v.generation,
		index:      n - 1,
	}, true
}

// CompleteSubmit leaves the loading state. On success the answer is appended;
// on failure the question is marked unanswered. Results for a selection that is
// no longer active are dropped. It reports whether the transcript changed.
func (v *ChatView) CompleteSubmit(t Ticket, answer string, failed bool) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.loading = false
	if t.generation != v.generation || t.index >= len(v.messages) {
		return false
	}

	if failed {
		v.messages[t.index].Unanswered = true
		return true
	}
	v.messages[t.index].Unanswered = false
	v.messages = append(v.messages, entity.Message{Role: entity.MessageRoleAI, Text: answer})
	return true
}

func (v *ChatView) Snapshot() ChatSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	return ChatSnapshot{
		Files:    slices.Clone(v.files),
		Selected: v.selected,
		Messages: slices.Clone(v.messages),
		Loading:  v.loading,
	}
}
