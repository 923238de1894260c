package service

import (
	"context"

	"queridoc-web/internal/entity"
	"queridoc-web/internal/pkg/logger"
	"queridoc-web/internal/repository/contract"
	"queridoc-web/pkg/qnaclient"
	"queridoc-web/pkg/store"
)

type IChatService interface {
	// Mount refreshes the file list and makes sure a file is selected.
	// requested, when listed, wins over the current selection.
	Mount(ctx context.Context, sid, token, requested string) store.ChatSnapshot
	Select(ctx context.Context, sid, token, filename string)
	Submit(ctx context.Context, sid, token, filename, question string) error
	// Retry re-asks the last question if it went unanswered.
	Retry(ctx context.Context, sid, token, filename string) error
	Snapshot(sid string) store.ChatSnapshot
	Discard(sid string)
}

type chatService struct {
	api    qnaclient.API
	views  contract.ChatStateRepository
	logger logger.ILogger
}

func NewChatService(api qnaclient.API, views contract.ChatStateRepository, log logger.ILogger) IChatService {
	return &chatService{
		api:    api,
		views:  views,
		logger: log,
	}
}

func (s *chatService) Mount(ctx context.Context, sid, token, requested string) store.ChatSnapshot {
	view := s.views.GetOrCreate(sid)

	files, err := s.api.ListFiles(ctx, token)
	if err != nil {
		s.logger.Error("ChatService", "Error fetching files", map[string]interface{}{"error": err})
		return view.Snapshot()
	}

	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Filename)
	}

	target := view.SetFiles(names, requested)
	if target != view.Selected() {
		s.selectOn(ctx, view, token, target)
	}
	return view.Snapshot()
}

func (s *chatService) Select(ctx context.Context, sid, token, filename string) {
	s.selectOn(ctx, s.views.GetOrCreate(sid), token, filename)
}

func (s *chatService) selectOn(ctx context.Context, view *store.ChatView, token, filename string) {
	generation := view.BeginSelect(filename)
	if filename == "" {
		return
	}

	entries, err := s.api.GetHistory(ctx, token, filename)
	if err != nil {
		s.logger.Error("ChatService", "Failed to fetch history", map[string]interface{}{"error": err, "filename": filename})
		view.ApplyHistory(generation, nil)
		return
	}

	if !view.ApplyHistory(generation, entity.TranscriptFromHistory(entries)) {
		s.logger.Debug("ChatService", "Discarded stale history", map[string]interface{}{"filename": filename})
	}
}

func (s *chatService) Submit(ctx context.Context, sid, token, filename, question string) error {
	view := s.views.GetOrCreate(sid)
	ticket, ok := view.BeginSubmit(filename, question)
	if !ok {
		return nil
	}
	return s.ask(ctx, view, token, ticket)
}

func (s *chatService) Retry(ctx context.Context, sid, token, filename string) error {
	view := s.views.GetOrCreate(sid)
	ticket, ok := view.BeginRetry(filename)
	if !ok {
		return nil
	}
	return s.ask(ctx, view, token, ticket)
}

// ask is never cut short by the caller going away; a late answer is simply
// dropped if the selection changed meanwhile.
func (s *chatService) ask(ctx context.Context, view *store.ChatView, token string, ticket store.Ticket) error {
	res, err := s.api.AskQuestion(context.WithoutCancel(ctx), token, ticket.Filename, ticket.Question)
	if err != nil {
		s.logger.Error("ChatService", "Error asking question", map[string]interface{}{"error": err, "filename": ticket.Filename})
		view.CompleteSubmit(ticket, "", true)
		return err
	}

	if !view.CompleteSubmit(ticket, res.Answer, false) {
		s.logger.Debug("ChatService", "Discarded answer for previous selection", map[string]interface{}{"filename": ticket.Filename})
	}
	return nil
}

func (s *chatService) Snapshot(sid string) store.ChatSnapshot {
	return s.views.GetOrCreate(sid).Snapshot()
}

func (s *chatService) Discard(sid string) {
	s.views.Delete(sid)
}
