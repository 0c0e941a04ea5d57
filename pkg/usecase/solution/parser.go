package solution

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/nprepindia/Solution-Generation/pkg/model"
)

// extractJSON pulls the substring between the first '{' and the last '}'.
// Models wrap their JSON in commentary or code fences; this tolerates both.
// Known edge case: a '}' inside trailing prose after the object breaks
// extraction. That surfaces as a parse error carrying the raw text, which is
// preferable to guessing.
func extractJSON(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return "", goerr.New("no JSON object in model output", goerr.V("raw", raw))
	}
	return raw[start : end+1], nil
}

// ParseSolution extracts and validates the final solution JSON from free
// model output. Validation reports every violated field, not just the first,
// so prompt drift can be diagnosed from a single failure.
func ParseSolution(raw string) (*model.SolutionOutput, error) {
	doc, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}

	var out struct {
		Answer          *int                     `json:"answer"`
		AnsDescription  *string                  `json:"ans_description"`
		References      []model.Reference        `json:"references"`
		VideoReferences []model.VideoReference   `json:"video_references"`
		Images          []model.ImageRequirement `json:"images"`
	}
	if err := json.Unmarshal([]byte(doc), &out); err != nil {
		return nil, goerr.Wrap(err, "model output is not valid JSON", goerr.V("raw", raw))
	}

	var violations []string

	switch {
	case out.Answer == nil:
		violations = append(violations, "answer: missing")
	case *out.Answer < 0 || *out.Answer >= model.OptionCount:
		violations = append(violations, fmt.Sprintf("answer: %d is outside [0,%d]", *out.Answer, model.OptionCount-1))
	}

	if out.AnsDescription == nil || strings.TrimSpace(*out.AnsDescription) == "" {
		violations = append(violations, "ans_description: empty")
	}

	for i, ref := range out.References {
		if ref.BookTitle == "" {
			violations = append(violations, fmt.Sprintf("references[%d].book_title: empty", i))
		}
		if ref.BookID == "" {
			violations = append(violations, fmt.Sprintf("references[%d].book_id: empty", i))
		}
		if ref.PageStart < 0 {
			violations = append(violations, fmt.Sprintf("references[%d].page_start: negative", i))
		}
		if ref.PageEnd < ref.PageStart {
			violations = append(violations, fmt.Sprintf("references[%d].page_end: before page_start", i))
		}
	}

	for i, ref := range out.VideoReferences {
		if ref.VideoID == "" {
			violations = append(violations, fmt.Sprintf("video_references[%d].video_id: empty", i))
		}
		if ref.TimeStart < 0 {
			violations = append(violations, fmt.Sprintf("video_references[%d].time_start: negative", i))
		}
		if ref.TimeEnd < ref.TimeStart {
			violations = append(violations, fmt.Sprintf("video_references[%d].time_end: before time_start", i))
		}
	}

	for i, img := range out.Images {
		if img.URL == "" {
			violations = append(violations, fmt.Sprintf("images[%d].url: empty", i))
		}
	}

	if len(violations) > 0 {
		return nil, goerr.New("model output failed validation",
			goerr.V("violations", violations), goerr.V("raw", raw))
	}

	sol := &model.SolutionOutput{
		Answer:          *out.Answer,
		AnsDescription:  *out.AnsDescription,
		References:      out.References,
		VideoReferences: out.VideoReferences,
		Images:          out.Images,
	}

	// Callers marshal the result; empty arrays beat nulls.
	if sol.References == nil {
		sol.References = []model.Reference{}
	}
	if sol.VideoReferences == nil {
		sol.VideoReferences = []model.VideoReference{}
	}
	if sol.Images == nil {
		sol.Images = []model.ImageRequirement{}
	}

	return sol, nil
}

// ParseGrade extracts and validates a difficulty rating.
func ParseGrade(raw string) (*model.GradeOutput, error) {
	doc, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}

	var out struct {
		Difficulty *string `json:"difficulty"`
		Reasoning  string  `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(doc), &out); err != nil {
		return nil, goerr.Wrap(err, "model output is not valid JSON", goerr.V("raw", raw))
	}

	if out.Difficulty == nil {
		return nil, goerr.New("model output failed validation",
			goerr.V("violations", []string{"difficulty: missing"}), goerr.V("raw", raw))
	}

	difficulty := model.Difficulty(strings.ToLower(strings.TrimSpace(*out.Difficulty)))
	if err := difficulty.Validate(); err != nil {
		return nil, goerr.Wrap(err, "model output failed validation", goerr.V("raw", raw))
	}

	return &model.GradeOutput{
		Difficulty: difficulty,
		Reasoning:  strings.TrimSpace(out.Reasoning),
	}, nil
}

// ParseClassification extracts a classification and checks each value
// against the tags known to the store.
func ParseClassification(raw string, subjects, topics, categories map[string]bool) (*model.Classification, error) {
	doc, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}

	var out model.Classification
	if err := json.Unmarshal([]byte(doc), &out); err != nil {
		return nil, goerr.Wrap(err, "model output is not valid JSON", goerr.V("raw", raw))
	}

	var violations []string
	if out.Subject == "" {
		violations = append(violations, "subject: empty")
	} else if !subjects[out.Subject] {
		violations = append(violations, fmt.Sprintf("subject: %q is not a known tag", out.Subject))
	}
	if out.Topic == "" {
		violations = append(violations, "topic: empty")
	} else if !topics[out.Topic] {
		violations = append(violations, fmt.Sprintf("topic: %q is not a known tag", out.Topic))
	}
	if out.Category == "" {
		violations = append(violations, "category: empty")
	} else if !categories[out.Category] {
		violations = append(violations, fmt.Sprintf("category: %q is not a known tag", out.Category))
	}

	if len(violations) > 0 {
		return nil, goerr.New("model output failed validation",
			goerr.V("violations", violations), goerr.V("raw", raw))
	}

	return &out, nil
}
