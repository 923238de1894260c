package dto

// AskRequest is the question form posted from the Ask page. Filename is the
// document the page was showing.
type AskRequest struct {
	Filename string `form:"filename" validate:"required"`
	Question string `form:"question" validate:"required"`
}

// RetryRequest re-asks the unanswered question of the shown document.
type RetryRequest struct {
	Filename string `form:"filename" validate:"required"`
}

// SelectRequest is the document picker on the Ask page.
type SelectRequest struct {
	File string `query:"file" validate:"omitempty,max=255"`
}

// OAuthCallbackQuery is what Google sends back to /auth/google/callback.
type OAuthCallbackQuery struct {
	Code  string `query:"code"`
	State string `query:"state"`
	Error string `query:"error"`
}
