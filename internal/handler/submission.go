package handler

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"pdf-webhook/internal/domain"
	apperrors "pdf-webhook/pkg/errors"
)

// Client-facing messages for submission errors
const (
	MsgInvalidFile   = "Invalid or missing PDF file"
	MsgNoPDF         = "No PDF file provided"
	MsgInvalidBase64 = "Invalid base64 PDF data"
	MsgEmptyPDF      = "PDF data is empty or invalid"
	MsgFileTooLarge  = "File too large"
)

const (
	fileField     = "file"
	passwordField = "password"
)

type base64Payload struct {
	PDFBase64 *string `json:"pdf_base64"`
	Password  *string `json:"password"`
}

// SubmissionReader normalizes multipart uploads and base64 JSON bodies into
// a domain.RawSubmission.
type SubmissionReader struct {
	allowed          map[string]bool
	maxContentLength int64
}

// NewSubmissionReader creates a reader accepting the given file extensions
// (without the leading dot, case-insensitive).
func NewSubmissionReader(allowedExtensions []string, maxContentLength int64) *SubmissionReader {
	allowed := make(map[string]bool, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			allowed[ext] = true
		}
	}
	return &SubmissionReader{
		allowed:          allowed,
		maxContentLength: maxContentLength,
	}
}

// Read extracts the PDF bytes and optional password from the request. A
// multipart request with a file part wins over a JSON body.
func (s *SubmissionReader) Read(r *http.Request) (*domain.RawSubmission, error) {
	var (
		sub *domain.RawSubmission
		err error
	)
	if isMultipart(r) {
		sub, err = s.readMultipart(r)
	} else {
		sub, err = s.readJSON(r.Body)
	}
	if err != nil {
		return nil, err
	}

	if len(sub.Data) < domain.MinPDFSize {
		return nil, apperrors.NewValidationError(MsgEmptyPDF).WithCause(domain.ErrEmptyPDF)
	}
	return sub, nil
}

func (s *SubmissionReader) readMultipart(r *http.Request) (*domain.RawSubmission, error) {
	if err := r.ParseMultipartForm(s.maxContentLength); err != nil {
		if tooLarge(err) {
			return nil, apperrors.NewTooLargeError(MsgFileTooLarge).WithCause(domain.ErrPayloadTooLarge)
		}
		return nil, apperrors.NewValidationError(MsgNoPDF).WithCause(err)
	}

	form := r.MultipartForm
	files := form.File[fileField]
	if len(files) == 0 {
		// A file part sent without a filename is parsed as a plain value.
		if _, ok := form.Value[fileField]; ok {
			return nil, apperrors.NewValidationError(MsgInvalidFile).WithCause(domain.ErrInvalidFile)
		}
		return nil, apperrors.NewValidationError(MsgNoPDF).WithCause(domain.ErrNoPDFProvided)
	}

	header := files[0]
	name := strings.TrimSpace(filepath.Base(header.Filename))
	if name == "" || name == "." || name == string(filepath.Separator) || !s.allowedFile(name) {
		return nil, apperrors.NewValidationError(MsgInvalidFile).WithCause(domain.ErrInvalidFile)
	}

	file, err := header.Open()
	if err != nil {
		return nil, apperrors.NewValidationError(MsgInvalidFile).WithCause(err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, apperrors.NewValidationError(MsgInvalidFile).WithCause(err)
	}

	return &domain.RawSubmission{
		Data:     data,
		Password: r.PostFormValue(passwordField),
		Source:   domain.SourceMultipart,
		Filename: name,
	}, nil
}

func (s *SubmissionReader) readJSON(body io.Reader) (*domain.RawSubmission, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		if tooLarge(err) {
			return nil, apperrors.NewTooLargeError(MsgFileTooLarge).WithCause(domain.ErrPayloadTooLarge)
		}
		return nil, apperrors.NewValidationError(MsgNoPDF).WithCause(err)
	}

	var payload base64Payload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.PDFBase64 == nil {
		return nil, apperrors.NewValidationError(MsgNoPDF).WithCause(domain.ErrNoPDFProvided)
	}

	data, err := base64.StdEncoding.DecodeString(*payload.PDFBase64)
	if err != nil {
		return nil, apperrors.NewValidationError(MsgInvalidBase64).WithCause(domain.ErrInvalidBase64)
	}

	sub := &domain.RawSubmission{
		Data:   data,
		Source: domain.SourceBase64JSON,
	}
	if payload.Password != nil {
		sub.Password = *payload.Password
	}
	return sub, nil
}

func (s *SubmissionReader) allowedFile(name string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	return ext != "" && s.allowed[ext]
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || errors.Is(err, multipart.ErrMessageTooLarge)
}
