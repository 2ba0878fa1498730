package domain

// SourceKind records how a document reached the service
type SourceKind string

const (
	SourceMultipart  SourceKind = "multipart"
	SourceBase64JSON SourceKind = "base64_json"
	SourceLocalFile  SourceKind = "local_file"
)

// MinPDFSize is the smallest payload worth handing to the decoder.
const MinPDFSize = 100

// RawSubmission is the normalized request input. An empty Password means
// no password was supplied.
type RawSubmission struct {
	Data     []byte
	Password string
	Source   SourceKind
	Filename string
}

// HasPassword reports whether the client supplied a password
func (s *RawSubmission) HasPassword() bool {
	return s.Password != ""
}

// AuthFailureKind enumerates the ways the document gate rejects a submission
type AuthFailureKind int

const (
	AuthOK AuthFailureKind = iota
	MalformedDocument
	PasswordRequired
	PasswordIncorrect
	EmptyOrCorrupt
)

func (k AuthFailureKind) String() string {
	switch k {
	case AuthOK:
		return "ok"
	case MalformedDocument:
		return "malformed_document"
	case PasswordRequired:
		return "password_required"
	case PasswordIncorrect:
		return "password_incorrect"
	case EmptyOrCorrupt:
		return "empty_or_corrupt"
	default:
		return "unknown"
	}
}

// AuthOutcome is either an opened document or a rejection reason.
type AuthOutcome struct {
	Document PDFDocument
	Failure  AuthFailureKind
	Cause    error
}

// Accept returns an outcome carrying an authenticated document
func Accept(doc PDFDocument) AuthOutcome {
	return AuthOutcome{Document: doc, Failure: AuthOK}
}

// Reject returns an outcome carrying a failure reason
func Reject(kind AuthFailureKind, cause error) AuthOutcome {
	return AuthOutcome{Failure: kind, Cause: cause}
}

// Opened reports whether the outcome holds a usable document
func (o AuthOutcome) Opened() bool {
	return o.Failure == AuthOK && o.Document != nil
}

// ImageRef identifies one embedded image on a page
type ImageRef struct {
	Page         int // 0-based
	Index        int // 0-based, per page
	ObjectNumber int
	Components   int // color components, alpha excluded
	Width        int
	Height       int
	Format       string
}

// TextPage is the extracted text of one page
type TextPage struct {
	Page int    `json:"page"`
	Text string `json:"text"`
}

// TextResult is the response of the extract-text operation
type TextResult struct {
	Success  bool       `json:"success"`
	Pages    int        `json:"pages"`
	Content  []TextPage `json:"content"`
	FullText string     `json:"full_text"`
}

// ExtractedImage is one image re-encoded for transport
type ExtractedImage struct {
	Page       int    `json:"page"`
	ImageIndex int    `json:"image_index"`
	Format     string `json:"format"`
	Base64     string `json:"base64"`
}

// ImagesResult is the response of the extract-images operation
type ImagesResult struct {
	Success     bool             `json:"success"`
	ImagesFound int              `json:"images_found"`
	Images      []ExtractedImage `json:"images"`
}

// DocumentInfo contains document metadata and counts
type DocumentInfo struct {
	Pages            int    `json:"pages"`
	Title            string `json:"title"`
	Author           string `json:"author"`
	Subject          string `json:"subject"`
	Creator          string `json:"creator"`
	Producer         string `json:"producer"`
	CreationDate     string `json:"creation_date"`
	ModificationDate string `json:"modification_date"`
	TotalImages      int    `json:"total_images"`
}

// InfoResult is the response of the pdf-info operation
type InfoResult struct {
	Success bool         `json:"success"`
	Info    DocumentInfo `json:"info"`
}

// Metadata keys reported by PDFDocument.Metadata.
const (
	MetaTitle        = "title"
	MetaAuthor       = "author"
	MetaSubject      = "subject"
	MetaCreator      = "creator"
	MetaProducer     = "producer"
	MetaCreationDate = "creationDate"
	MetaModDate      = "modDate"
)
