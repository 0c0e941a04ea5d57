package model

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

var ErrInvalidQuestion = goerr.New("invalid question")

// OptionCount is the number of choices a multiple-choice question carries.
const OptionCount = 4

// Question is a multiple-choice nursing exam question. It is immutable for
// the duration of one generation request.
type Question struct {
	Text    string           `json:"question"`
	Options []string         `json:"options"`
	Images  []ExtractedImage `json:"images,omitempty"`
}

// Validate checks that the question is answerable: non-blank text and
// exactly four non-blank options.
func (q *Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return goerr.Wrap(ErrInvalidQuestion, "question text is empty")
	}
	if len(q.Options) != OptionCount {
		return goerr.Wrap(ErrInvalidQuestion, "question must have exactly 4 options",
			goerr.V("count", len(q.Options)))
	}
	for i, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			return goerr.Wrap(ErrInvalidQuestion, "option is empty", goerr.V("index", i))
		}
	}
	return nil
}

// ExtractedImage is an image reference pulled out of the question markdown.
// The core never decodes the payload; it only reports image presence to the
// agent as text.
type ExtractedImage struct {
	MimeType    string `json:"mime_type"`
	Data        string `json:"data,omitempty"` // base64, filled by the caller if downloaded
	OriginalURL string `json:"original_url"`
	AltText     string `json:"alt_text,omitempty"`
}
