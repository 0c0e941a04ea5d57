package solution

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/m-mizutani/goerr/v2"

	"github.com/nprepindia/Solution-Generation/pkg/model"
)

//go:embed prompt/solve.md
var solvePromptRaw string

//go:embed prompt/classify.md
var classifyPromptRaw string

//go:embed prompt/grade.md
var gradePromptRaw string

var (
	solvePromptTmpl    = template.Must(template.New("solve").Parse(solvePromptRaw))
	classifyPromptTmpl = template.Must(template.New("classify").Parse(classifyPromptRaw))
)

func renderSolvePrompt(base string, imageCount int) (string, error) {
	notice := ""
	if imageCount == 1 {
		notice = "The question includes 1 image. You cannot see it; reason from the question text and note in your explanation when the image matters."
	} else if imageCount > 1 {
		notice = fmt.Sprintf("The question includes %d images. You cannot see them; reason from the question text and note in your explanation when the images matter.", imageCount)
	}

	if base != "" {
		// Caller-supplied prompt text is used verbatim, with the image
		// notice appended the same way the template injects it.
		if notice != "" {
			return base + "\n\n" + notice, nil
		}
		return base, nil
	}

	var buf bytes.Buffer
	if err := solvePromptTmpl.Execute(&buf, map[string]any{
		"ImageNotice": notice,
	}); err != nil {
		return "", goerr.Wrap(err, "failed to render solve prompt")
	}
	return buf.String(), nil
}

func renderClassifyPrompt(subjects, topics, categories []*model.Tag) (string, error) {
	var buf bytes.Buffer
	if err := classifyPromptTmpl.Execute(&buf, map[string]any{
		"Subjects":   subjects,
		"Topics":     topics,
		"Categories": categories,
	}); err != nil {
		return "", goerr.Wrap(err, "failed to render classify prompt")
	}
	return buf.String(), nil
}

// formatQuestion renders the user-facing prompt: question text followed by
// the four options with their zero-based indexes.
func formatQuestion(text string, options []string) string {
	var b strings.Builder
	b.WriteString("Question:\n")
	b.WriteString(text)
	b.WriteString("\n\nOptions:\n")
	for i, opt := range options {
		fmt.Fprintf(&b, "%d. %s\n", i, opt)
	}
	return b.String()
}
