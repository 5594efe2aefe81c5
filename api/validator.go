package api

import (
	"ChartService/internal/customerrors"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
)

// ErrFileRequired is returned when a multipart file field is absent
var ErrFileRequired = errors.New("file is required")

const maxFilenameLength = 255

// Validator handles upload validation separate from HTTP concerns
type Validator struct {
	maxFilenameLength int
}

var (
	validatorInstance *Validator
	validatorOnce     sync.Once
)

// GetValidator returns the singleton validator instance
func GetValidator() *Validator {
	validatorOnce.Do(func() {
		validatorInstance = &Validator{
			maxFilenameLength: maxFilenameLength,
		}
	})
	return validatorInstance
}

// ValidateUpload checks the declared size of a multipart file and returns
// its sanitized base name. The extension check belongs to the service.
func (v *Validator) ValidateUpload(fileHeader *multipart.FileHeader, maxBytes int64) (string, error) {
	if fileHeader == nil {
		return "", ErrFileRequired
	}

	if maxBytes > 0 && fileHeader.Size > maxBytes {
		return "", fmt.Errorf("%w: %s is %d bytes, limit is %d",
			customerrors.ErrUploadTooLarge, fileHeader.Filename, fileHeader.Size, maxBytes)
	}

	name := v.sanitizeFilename(fileHeader.Filename)
	if name == "" {
		return "", fmt.Errorf("%w: missing file name", customerrors.ErrBadExtension)
	}
	return name, nil
}

// sanitizeFilename strips directories, control characters and surrounding whitespace
func (v *Validator) sanitizeFilename(input string) string {
	input = strings.TrimSpace(input)
	input = strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, input)

	input = filepath.Base(strings.ReplaceAll(input, "\\", "/"))
	if input == "." || input == "/" {
		return ""
	}

	if len(input) > v.maxFilenameLength && len(filepath.Ext(input)) < v.maxFilenameLength {
		// keep the extension, which the service checks
		ext := filepath.Ext(input)
		input = input[:v.maxFilenameLength-len(ext)] + ext
	}
	return input
}

// missingFieldError names the multipart field a request left out
type missingFieldError struct {
	field string
}

func (e *missingFieldError) Error() string {
	return e.field + " is required"
}

func (e *missingFieldError) Is(target error) bool {
	return target == ErrFileRequired
}

func fieldRequired(field string) error {
	return &missingFieldError{field: field}
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
