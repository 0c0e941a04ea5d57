package model

import "github.com/m-mizutani/goerr/v2"

var ErrInvalidDifficulty = goerr.New("invalid difficulty")

// Reference points at a textbook passage backing the answer. The agent copies
// these verbatim from search_textbooks output.
type Reference struct {
	BookTitle string `json:"book_title"`
	BookID    string `json:"book_id"`
	PageStart int    `json:"page_start"`
	PageEnd   int    `json:"page_end"`
}

// VideoReference points at a video segment backing the answer.
type VideoReference struct {
	VideoID   string  `json:"video_id"`
	TimeStart float64 `json:"time_start"`
	TimeEnd   float64 `json:"time_end"`
}

// ImageRequirement describes an image the rendered solution should include.
type ImageRequirement struct {
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// SolutionOutput is the validated terminal artifact of one generation call.
type SolutionOutput struct {
	Answer          int                `json:"answer"`
	AnsDescription  string             `json:"ans_description"`
	References      []Reference        `json:"references"`
	VideoReferences []VideoReference   `json:"video_references"`
	Images          []ImageRequirement `json:"images"`
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Validate checks if the difficulty is one of the known ratings
func (d Difficulty) Validate() error {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return nil
	default:
		return goerr.Wrap(ErrInvalidDifficulty, "unknown rating", goerr.V("difficulty", d))
	}
}

// GradeOutput is the difficulty rating for a solved question.
type GradeOutput struct {
	Difficulty Difficulty `json:"difficulty"`
	Reasoning  string     `json:"reasoning"`
}

// Classification tags a question with curriculum metadata. All three values
// must match tags known to the store.
type Classification struct {
	Subject  string `json:"subject"`
	Topic    string `json:"topic"`
	Category string `json:"category"`
}

// Tag is a classification label row from the store.
type Tag struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// SolvedQuestion bundles the solution with its derived ratings.
type SolvedQuestion struct {
	Solution       *SolutionOutput `json:"solution"`
	Grade          *GradeOutput    `json:"grade"`
	Classification *Classification `json:"classification"`
}
