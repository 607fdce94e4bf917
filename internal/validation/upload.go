package validation

import (
	"log/slog"
	"path/filepath"
	"strings"

	"tradepulse/internal/config"
	apperrors "tradepulse/internal/errors"
)

// UploadValidator checks uploaded source files before they are stored.
type UploadValidator struct {
	maxBytes int64
	logger   *slog.Logger
}

// NewUploadValidator creates a validator enforcing maxBytes as the
// upload size limit.
func NewUploadValidator(maxBytes int64, logger *slog.Logger) *UploadValidator {
	return &UploadValidator{
		maxBytes: maxBytes,
		logger:   logger.With(slog.String("component", "upload_validator")),
	}
}

// ValidateUpload checks the client-supplied file name and size. The
// name must be a bare file name with an allowed spreadsheet extension.
func (v *UploadValidator) ValidateUpload(filename string, size int64) error {
	if filename == "" {
		return apperrors.NewProcessing(apperrors.CodeInvalidParam, "file name is empty")
	}
	if filename != filepath.Base(filename) || strings.Contains(filename, "..") {
		v.logger.Warn("rejected upload with unsafe file name",
			slog.String("filename", filename))
		return apperrors.NewProcessing(apperrors.CodeInvalidParam,
			"file name %q must not contain path separators", filename)
	}

	ext := filepath.Ext(filename)
	if !config.ExtensionAllowed(ext) {
		return apperrors.NewProcessing(apperrors.CodeFileExtension,
			"unsupported file extension %q", ext)
	}

	if size == 0 {
		return apperrors.NewProcessing(apperrors.CodeDataValidation,
			"uploaded file %s is empty", filename)
	}
	if v.maxBytes > 0 && size > v.maxBytes {
		return apperrors.NewProcessing(apperrors.CodeDataValidation,
			"uploaded file %s exceeds the %d byte limit", filename, v.maxBytes)
	}
	return nil
}
