// Package qnaclient talks to the document question-answering backend.
//
// Every call is a plain pass-through: no retries, no caching and no client
// side timeout. Answer generation can take arbitrarily long, so callers bound
// a request with its context when they need to.
package qnaclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"queridoc-web/internal/entity"
)

type AskResponse struct {
	Filename string `json:"filename,omitempty"`
	Question string `json:"question,omitempty"`
	Answer   string `json:"answer"`
}

type UploadResponse struct {
	Filename string `json:"filename,omitempty"`
	Message  string `json:"message"`
}

// API is what the views need from the backend.
type API interface {
	ListFiles(ctx context.Context, token string) ([]entity.FileRecord, error)
	GetHistory(ctx context.Context, token, filename string) ([]entity.QnAHistoryEntry, error)
	AskQuestion(ctx context.Context, token, filename, question string) (*AskResponse, error)
	UploadFile(ctx context.Context, token, filename, contentType string, content io.Reader) (*UploadResponse, error)
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

var _ API = &Client{}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{},
	}
}

const genericUploadFailure = "Upload failed."

// errorBody is the FastAPI error envelope.
type errorBody struct {
	Detail string `json:"detail"`
}

func (c *Client) ListFiles(ctx context.Context, token string) ([]entity.FileRecord, error) {
	var files []entity.FileRecord
	if err := c.getJSON(ctx, "list files", token, "/my-files", nil, &files); err != nil {
		return nil, err
	}
	return files, nil
}

func (c *Client) GetHistory(ctx context.Context, token, filename string) ([]entity.QnAHistoryEntry, error) {
	var entries []entity.QnAHistoryEntry
	query := url.Values{"filename": {filename}}
	if err := c.getJSON(ctx, "get history", token, "/qna-history", query, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) AskQuestion(ctx context.Context, token, filename, question string) (*AskResponse, error) {
	if filename == "" || question == "" {
		return nil, ErrInvalidArgument
	}

	form := url.Values{"filename": {filename}, "question": {question}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/ask", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var res AskResponse
	if err := c.doJSON(req, "ask question", token, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) UploadFile(ctx context.Context, token, filename, contentType string, content io.Reader) (*UploadResponse, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("read upload content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/upload", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var res UploadResponse
	err = c.doJSON(req, "upload file", token, &res)
	if err == nil {
		return &res, nil
	}

	// Uploads report every backend rejection, 401 included, as UploadError.
	switch e := err.(type) {
	case *StatusError:
		return nil, &UploadError{StatusCode: e.StatusCode, Message: uploadMessage(e.Detail)}
	case *UnauthorizedError:
		return nil, &UploadError{StatusCode: http.StatusUnauthorized, Message: uploadMessage(e.Detail)}
	}
	return nil, err
}

func uploadMessage(detail string) string {
	if detail == "" {
		return genericUploadFailure
	}
	return detail
}

func (c *Client) getJSON(ctx context.Context, op, token, path string, query url.Values, out interface{}) error {
	target := c.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	return c.doJSON(req, op, token, out)
}

func (c *Client) doJSON(req *http.Request, op, token string, out interface{}) error {
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.Unmarshal(content, &eb)
		if resp.StatusCode == http.StatusUnauthorized {
			return &UnauthorizedError{Detail: eb.Detail}
		}
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Detail: eb.Detail}
	}

	if err := json.Unmarshal(content, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
