package domain

import "errors"

// Domain errors
var (
	ErrInvalidFile      = errors.New("invalid file")
	ErrNoPDFProvided    = errors.New("no pdf provided")
	ErrInvalidBase64    = errors.New("invalid base64 payload")
	ErrEmptyPDF         = errors.New("pdf payload too small")
	ErrPayloadTooLarge  = errors.New("payload too large")
	ErrMalformedPDF     = errors.New("malformed pdf")
	ErrPasswordRequired = errors.New("password required")
	ErrWrongPassword    = errors.New("wrong password")
	ErrNoPages          = errors.New("document has no pages")
	ErrUnsupportedImage = errors.New("unsupported image encoding")
	ErrPageOutOfRange   = errors.New("page index out of range")
)

// ErrorForFailure maps a gate rejection to its sentinel error
func ErrorForFailure(kind AuthFailureKind) error {
	switch kind {
	case MalformedDocument:
		return ErrMalformedPDF
	case PasswordRequired:
		return ErrPasswordRequired
	case PasswordIncorrect:
		return ErrWrongPassword
	case EmptyOrCorrupt:
		return ErrNoPages
	default:
		return nil
	}
}
