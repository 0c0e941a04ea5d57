package solution

import (
	"mime"
	"path"
	"regexp"
	"strings"

	"github.com/nprepindia/Solution-Generation/pkg/model"
)

// markdown image syntax: ![alt](url) with an optional title
var markdownImagePattern = regexp.MustCompile(`!\[([^\]]*)\]\(\s*(\S+?)(?:\s+"[^"]*")?\s*\)`)

// ExtractImages pulls markdown image references out of question text and
// returns the cleaned text alongside the extracted records. The images are
// never downloaded here; the records carry only the URL, alt text and a
// mime type guessed from the extension.
func ExtractImages(text string) (string, []model.ExtractedImage) {
	matches := markdownImagePattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return text, nil
	}

	images := make([]model.ExtractedImage, 0, len(matches))
	for _, m := range matches {
		alt, url := m[1], m[2]
		images = append(images, model.ExtractedImage{
			MimeType:    guessMimeType(url),
			OriginalURL: url,
			AltText:     alt,
		})
	}

	cleaned := markdownImagePattern.ReplaceAllString(text, "")
	cleaned = strings.Join(strings.Fields(cleaned), " ")

	return cleaned, images
}

func guessMimeType(url string) string {
	ext := path.Ext(url)
	if i := strings.IndexAny(ext, "?#"); i >= 0 {
		ext = ext[:i]
	}
	if t := mime.TypeByExtension(strings.ToLower(ext)); t != "" {
		return t
	}
	return "application/octet-stream"
}
