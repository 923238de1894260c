package service

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"queridoc-web/internal/pkg/logger"
	"queridoc-web/pkg/qnaclient"
)

const (
	uploadStatusMissingFile = "❌ Please select a PDF file."
	uploadStatusFailed      = "❌ Upload failed."
)

type UploadResult struct {
	OK     bool
	Status string
}

type IUploadService interface {
	// Upload never fails; the outcome is carried in the status line.
	Upload(ctx context.Context, token string, file *multipart.FileHeader) UploadResult
}

type uploadService struct {
	api    qnaclient.API
	logger logger.ILogger
}

func NewUploadService(api qnaclient.API, log logger.ILogger) IUploadService {
	return &uploadService{api: api, logger: log}
}

func (s *uploadService) Upload(ctx context.Context, token string, file *multipart.FileHeader) UploadResult {
	if file == nil {
		return UploadResult{Status: uploadStatusMissingFile}
	}

	content, err := file.Open()
	if err != nil {
		s.logger.Error("UploadService", "Failed to open uploaded file", map[string]interface{}{"error": err})
		return UploadResult{Status: uploadStatusFailed}
	}
	defer content.Close()

	res, err := s.api.UploadFile(ctx, token, file.Filename, file.Header.Get("Content-Type"), content)
	if err != nil {
		s.logger.Error("UploadService", "Upload failed", map[string]interface{}{"error": err, "filename": file.Filename})
		var uploadErr *qnaclient.UploadError
		if errors.As(err, &uploadErr) {
			return UploadResult{Status: "❌ " + uploadErr.Message}
		}
		return UploadResult{Status: uploadStatusFailed}
	}

	s.logger.Info("UploadService", "File uploaded", map[string]interface{}{"filename": file.Filename})
	// the backend may already prefix its message with the same mark
	return UploadResult{OK: true, Status: "✅ " + strings.TrimPrefix(res.Message, "✅ ")}
}
