package entity

type MessageRole string

const (
	MessageRoleUser MessageRole = "user"
	MessageRoleAI   MessageRole = "ai"
)

type Message struct {
	Role MessageRole `json:"role"`
	Text string      `json:"text"`
	// Unanswered marks a user message whose question failed to get an answer.
	Unanswered bool `json:"unanswered,omitempty"`
}

type FileRecord struct {
	Filename string `json:"filename"`
	Uploaded string `json:"uploaded,omitempty"`
}

type QnAHistoryEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	AskedAt  string `json:"asked_at,omitempty"`
}

// TranscriptFromHistory turns newest-first history into an oldest-first
// user/ai transcript. The input slice is left untouched.
func TranscriptFromHistory(entries []QnAHistoryEntry) []Message {
	messages := make([]Message, 0, len(entries)*2)
	for i := len(entries) - 1; i >= 0; i-- {
		messages = append(messages,
			Message{Role: MessageRoleUser, Text: entries[i].Question},
			Message{Role: MessageRoleAI, Text: entries[i].Answer},
		)
	}
	return messages
}
