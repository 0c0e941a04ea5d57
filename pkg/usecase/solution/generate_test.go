package solution_test

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"google.golang.org/genai"

	"github.com/nprepindia/Solution-Generation/pkg/model"
	"github.com/nprepindia/Solution-Generation/pkg/usecase/solution"
	"github.com/nprepindia/Solution-Generation/pkg/utils/logging"
)

// Mock Gemini adapter
type mockGemini struct {
	mu            sync.Mutex
	generateCalls int
	generateFunc  func(call int, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	embedFunc     func(ctx context.Context, text string, dimension int32) ([]float32, error)
}

func (m *mockGemini) GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	m.mu.Lock()
	m.generateCalls++
	call := m.generateCalls
	m.mu.Unlock()
	return m.generateFunc(call, contents, config)
}

func (m *mockGemini) Embedding(ctx context.Context, text string, dimension int32) ([]float32, error) {
	if m.embedFunc != nil {
		return m.embedFunc(ctx, text, dimension)
	}
	return make([]float32, dimension), nil
}

// Mock knowledge base store
type mockStore struct {
	passages   []*model.RetrievedPassage
	segments   []*model.RetrievedVideoSegment
	subjects   []*model.Tag
	topics     []*model.Tag
	categories []*model.Tag
}

func (m *mockStore) SearchBookChunks(ctx context.Context, embedding []float32, limit int) ([]*model.RetrievedPassage, error) {
	return m.passages, nil
}

func (m *mockStore) SearchVideoSegments(ctx context.Context, embedding []float32, limit int) ([]*model.RetrievedVideoSegment, error) {
	return m.segments, nil
}

func (m *mockStore) ListSubjects(ctx context.Context) ([]*model.Tag, error)   { return m.subjects, nil }
func (m *mockStore) ListTopics(ctx context.Context) ([]*model.Tag, error)     { return m.topics, nil }
func (m *mockStore) ListCategories(ctx context.Context) ([]*model.Tag, error) { return m.categories, nil }
func (m *mockStore) Ping(ctx context.Context) error                           { return nil }
func (m *mockStore) Close() error                                             { return nil }

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Role:  genai.RoleModel,
				Parts: []*genai.Part{{Text: text}},
			},
		}},
	}
}

func callResponse(name string, args map[string]any) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Role:  genai.RoleModel,
				Parts: []*genai.Part{{FunctionCall: &genai.FunctionCall{Name: name, Args: args}}},
			},
		}},
	}
}

func sampleQuestion() *model.Question {
	return &model.Question{
		Text: "A client with heart failure gains 2 kg in 24 hours. What should the nurse do first?",
		Options: []string{
			"Restrict the client's fluids",
			"Notify the health care provider",
			"Assess for peripheral edema and lung sounds",
			"Administer the prescribed diuretic early",
		},
	}
}

const finalSolutionJSON = `{
	"answer": 2,
	"ans_description": "Assessment comes before intervention; weight gain suggests fluid overload, so the nurse first assesses edema and lung sounds.",
	"references": [{"book_title": "Brunner & Suddarth", "book_id": "bk-12", "page_start": 210, "page_end": 212}],
	"video_references": [{"video_id": "vid-9", "time_start": 12, "time_end": 80}],
	"images": []
}`

func TestGenerateEndToEnd(t *testing.T) {
	store := &mockStore{
		passages: []*model.RetrievedPassage{{
			SourceID:  "chunk-1",
			Content:   "Daily weights are the most reliable indicator of fluid status.",
			BookTitle: "Brunner & Suddarth",
			BookID:    "bk-12",
			PageStart: 210,
			PageEnd:   212,
			Score:     0.93,
		}},
		segments: []*model.RetrievedVideoSegment{{
			VideoID:    "vid-9",
			TimeStart:  12,
			TimeEnd:    80,
			Transcript: "Assess before you intervene.",
			Score:      0.88,
		}},
	}

	gemini := &mockGemini{
		generateFunc: func(call int, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			switch call {
			case 1:
				return callResponse("generate_embedding", map[string]any{"text": "heart failure fluid overload"}), nil
			case 2:
				return callResponse("search_textbooks", map[string]any{"embedding_id": "emb_1"}), nil
			case 3:
				return callResponse("search_videos", map[string]any{"embedding_id": "emb_1"}), nil
			default:
				return textResponse(finalSolutionJSON), nil
			}
		},
	}

	uc := solution.New(gemini, store)
	sol, err := uc.Generate(context.Background(), sampleQuestion())
	gt.NoError(t, err)

	gt.Equal(t, sol.Answer, 2)
	gt.S(t, sol.AnsDescription).Contains("Assessment")
	gt.A(t, sol.References).Length(1)
	gt.Equal(t, sol.References[0], model.Reference{
		BookTitle: "Brunner & Suddarth",
		BookID:    "bk-12",
		PageStart: 210,
		PageEnd:   212,
	})
	gt.A(t, sol.VideoReferences).Length(1)
	gt.Equal(t, sol.VideoReferences[0].VideoID, "vid-9")
	gt.Equal(t, gemini.generateCalls, 4)
}

func TestGenerateContinuesWhenNoVideosExist(t *testing.T) {
	store := &mockStore{
		passages: []*model.RetrievedPassage{{
			SourceID:  "chunk-1",
			Content:   "content",
			BookTitle: "Fundamentals",
			BookID:    "bk-1",
			PageStart: 1,
			PageEnd:   2,
			Score:     0.8,
		}},
	}

	sawVideoResult := ""
	gemini := &mockGemini{
		generateFunc: func(call int, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			switch call {
			case 1:
				return callResponse("generate_embedding", map[string]any{"text": "x"}), nil
			case 2:
				return callResponse("search_videos", map[string]any{"embedding_id": "emb_1"}), nil
			default:
				// The previous turn's tool result is the last content entry.
				last := contents[len(contents)-1]
				if last.Parts[0].FunctionResponse != nil {
					sawVideoResult, _ = last.Parts[0].FunctionResponse.Response["result"].(string)
				}
				return textResponse(`{"answer": 1, "ans_description": "ok", "video_references": []}`), nil
			}
		},
	}

	sol, err := solution.New(gemini, store).Generate(context.Background(), sampleQuestion())
	gt.NoError(t, err)
	gt.Equal(t, sawVideoResult, "no relevant videos found")
	gt.A(t, sol.VideoReferences).Length(0)
}

func TestGenerateFailsOnIterationExhaustion(t *testing.T) {
	gemini := &mockGemini{
		generateFunc: func(call int, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return callResponse("generate_embedding", map[string]any{"text": "again"}), nil
		},
	}

	_, err := solution.New(gemini, &mockStore{}).Generate(context.Background(), sampleQuestion())
	gt.Error(t, err)
	gt.S(t, err.Error()).Contains("solution generation failed")
	gt.S(t, err.Error()).Contains("iteration budget")
	gt.Equal(t, gemini.generateCalls, 15)
}

func TestGenerateFailsFastOnUnknownFunction(t *testing.T) {
	gemini := &mockGemini{
		generateFunc: func(call int, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return callResponse("search_wikipedia", map[string]any{"query": "heart failure"}), nil
		},
	}

	_, err := solution.New(gemini, &mockStore{}).Generate(context.Background(), sampleQuestion())
	gt.Error(t, err)
	gt.S(t, err.Error()).Contains("unknown function")
	gt.Equal(t, gemini.generateCalls, 1)
}

func TestGenerateFailsOnEmptyFinalText(t *testing.T) {
	gemini := &mockGemini{
		generateFunc: func(call int, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return textResponse("   "), nil
		},
	}

	_, err := solution.New(gemini, &mockStore{}).Generate(context.Background(), sampleQuestion())
	gt.Error(t, err)
	gt.S(t, err.Error()).Contains("empty response")
}

func TestGenerateReportsTimeoutDistinctly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gemini := &mockGemini{
		generateFunc: func(call int, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return nil, context.Canceled
		},
	}

	_, err := solution.New(gemini, &mockStore{}).Generate(ctx, sampleQuestion())
	gt.Error(t, err)
	gt.S(t, err.Error()).Contains("solution generation failed")
	gt.S(t, err.Error()).Contains("agent call timed out")
	gt.False(t, strings.Contains(err.Error(), "failed to generate content"))
}

func TestGenerateRejectsInvalidQuestion(t *testing.T) {
	gemini := &mockGemini{
		generateFunc: func(call int, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return nil, goerr.New("must not be called")
		},
	}

	q := &model.Question{Text: "incomplete", Options: []string{"a", "b"}}
	_, err := solution.New(gemini, &mockStore{}).Generate(context.Background(), q)
	gt.Error(t, err)
	gt.Equal(t, gemini.generateCalls, 0)
}

func TestClassify(t *testing.T) {
	store := &mockStore{
		subjects:   []*model.Tag{{ID: 1, Name: "Medical-Surgical Nursing"}},
		topics:     []*model.Tag{{ID: 1, Name: "Cardiovascular"}},
		categories: []*model.Tag{{ID: 1, Name: "Physiological Adaptation"}},
	}

	gemini := &mockGemini{
		generateFunc: func(call int, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return textResponse(`{"subject": "Medical-Surgical Nursing", "topic": "Cardiovascular", "category": "Physiological Adaptation"}`), nil
		},
	}

	cls, err := solution.New(gemini, store).Classify(context.Background(), sampleQuestion())
	gt.NoError(t, err)
	gt.Equal(t, cls.Subject, "Medical-Surgical Nursing")
	gt.Equal(t, cls.Category, "Physiological Adaptation")
}

func TestClassifyRejectsUnknownTag(t *testing.T) {
	store := &mockStore{
		subjects:   []*model.Tag{{ID: 1, Name: "Medical-Surgical Nursing"}},
		topics:     []*model.Tag{{ID: 1, Name: "Cardiovascular"}},
		categories: []*model.Tag{{ID: 1, Name: "Physiological Adaptation"}},
	}

	gemini := &mockGemini{
		generateFunc: func(call int, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return textResponse(`{"subject": "Astrology", "topic": "Cardiovascular", "category": "Physiological Adaptation"}`), nil
		},
	}

	_, err := solution.New(gemini, store).Classify(context.Background(), sampleQuestion())
	gt.Error(t, err)
	gt.S(t, err.Error()).Contains("classification failed")
}

func TestClassifyLogsCarryRequestID(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := logging.With(context.Background(), logging.New("debug", buf))

	store := &mockStore{
		subjects:   []*model.Tag{{ID: 1, Name: "Medical-Surgical Nursing"}},
		topics:     []*model.Tag{{ID: 1, Name: "Cardiovascular"}},
		categories: []*model.Tag{{ID: 1, Name: "Physiological Adaptation"}},
	}

	gemini := &mockGemini{
		generateFunc: func(call int, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			if call == 1 {
				return callResponse("generate_embedding", map[string]any{"text": "heart failure"}), nil
			}
			return textResponse(`{"subject": "Medical-Surgical Nursing", "topic": "Cardiovascular", "category": "Physiological Adaptation"}`), nil
		},
	}

	_, err := solution.New(gemini, store).Classify(ctx, sampleQuestion())
	gt.NoError(t, err)
	gt.S(t, buf.String()).Contains("request_id")
}

func TestGrade(t *testing.T) {
	gemini := &mockGemini{
		generateFunc: func(call int, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return textResponse(`{"difficulty": "hard", "reasoning": "Close distractors."}`), nil
		},
	}

	sol := &model.SolutionOutput{Answer: 2, AnsDescription: "assess first"}
	grade, err := solution.New(gemini, &mockStore{}).Grade(context.Background(), sampleQuestion(), sol)
	gt.NoError(t, err)
	gt.Equal(t, grade.Difficulty, model.DifficultyHard)
}

func TestSolveRunsDerivedCallsConcurrently(t *testing.T) {
	store := &mockStore{
		subjects:   []*model.Tag{{ID: 1, Name: "Medical-Surgical Nursing"}},
		topics:     []*model.Tag{{ID: 1, Name: "Cardiovascular"}},
		categories: []*model.Tag{{ID: 1, Name: "Physiological Adaptation"}},
		passages: []*model.RetrievedPassage{{
			SourceID: "c", Content: "x", BookTitle: "Brunner & Suddarth",
			BookID: "bk-12", PageStart: 210, PageEnd: 212, Score: 0.9,
		}},
		segments: []*model.RetrievedVideoSegment{{
			VideoID: "vid-9", TimeStart: 12, TimeEnd: 80, Transcript: "t", Score: 0.8,
		}},
	}

	gemini := &mockGemini{}
	solveCalls := 0
	var solveMu sync.Mutex
	gemini.generateFunc = func(call int, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		system := ""
		if config.SystemInstruction != nil && len(config.SystemInstruction.Parts) > 0 {
			system = config.SystemInstruction.Parts[0].Text
		}

		switch {
		case strings.Contains(system, "difficulty"):
			return textResponse(`{"difficulty": "medium", "reasoning": "r"}`), nil
		case strings.Contains(system, "Allowed tags"):
			return textResponse(`{"subject": "Medical-Surgical Nursing", "topic": "Cardiovascular", "category": "Physiological Adaptation"}`), nil
		default:
			solveMu.Lock()
			solveCalls++
			n := solveCalls
			solveMu.Unlock()
			switch n {
			case 1:
				return callResponse("generate_embedding", map[string]any{"text": "hf"}), nil
			case 2:
				return callResponse("search_textbooks", map[string]any{"embedding_id": "emb_1"}), nil
			case 3:
				return callResponse("search_videos", map[string]any{"embedding_id": "emb_1"}), nil
			default:
				return textResponse(finalSolutionJSON), nil
			}
		}
	}

	solved, err := solution.New(gemini, store).Solve(context.Background(), sampleQuestion())
	gt.NoError(t, err)
	gt.V(t, solved.Solution).NotNil()
	gt.Equal(t, solved.Grade.Difficulty, model.DifficultyMedium)
	gt.Equal(t, solved.Classification.Topic, "Cardiovascular")
}
