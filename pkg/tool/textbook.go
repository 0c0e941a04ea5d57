package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"

	"github.com/nprepindia/Solution-Generation/pkg/model"
	"github.com/nprepindia/Solution-Generation/pkg/repository"
	"github.com/nprepindia/Solution-Generation/pkg/utils/retry"
)

const (
	// maxPassages caps textbook results regardless of the requested limit
	maxPassages = 4
	// maxPassageChars truncates each passage before it enters the conversation
	maxPassageChars = 500

	searchTimeout  = 20 * time.Second
	searchPreDelay = 500 * time.Millisecond
)

// TextbookSearch retrieves textbook passages similar to a previously
// generated embedding.
type TextbookSearch struct {
	store repository.Store
	cache *Cache
}

// NewTextbookSearch creates the search_textbooks tool
func NewTextbookSearch(store repository.Store, cache *Cache) *TextbookSearch {
	return &TextbookSearch{
		store: store,
		cache: cache,
	}
}

func (t *TextbookSearch) Spec() *genai.Tool {
	return &genai.Tool{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        "search_textbooks",
				Description: "Search the nursing textbook corpus for passages similar to a generated embedding. Requires an embedding_id from generate_embedding. Returns up to 4 passages with book metadata and a reference JSON snippet to copy into the final answer.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"embedding_id": {
							Type:        genai.TypeString,
							Description: "Embedding id returned by generate_embedding",
						},
						"limit": {
							Type:        genai.TypeInteger,
							Description: "Max passages to return (default 4, capped at 4)",
						},
					},
					Required: []string{"embedding_id"},
				},
			},
		},
	}
}

func (t *TextbookSearch) Execute(ctx context.Context, fc genai.FunctionCall) (*genai.FunctionResponse, error) {
	type input struct {
		EmbeddingID string `json:"embedding_id"`
		Limit       int    `json:"limit"`
	}

	paramsJSON, err := json.Marshal(fc.Args)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal function arguments")
	}

	var in input
	if err := json.Unmarshal(paramsJSON, &in); err != nil {
		return nil, goerr.Wrap(err, "failed to parse input parameters")
	}

	if in.EmbeddingID == "" {
		return nil, goerr.New("embedding_id is required")
	}

	// Missing vector is a usage error, not a transient fault: no retry.
	vec, ok := t.cache.Get(in.EmbeddingID, DimensionBooks)
	if !ok {
		return nil, goerr.New("embedding not found, run generate_embedding first",
			goerr.V("embedding_id", in.EmbeddingID), goerr.V("dimension", DimensionBooks))
	}

	limit := in.Limit
	if limit <= 0 || limit > maxPassages {
		limit = maxPassages
	}

	// Smooths bursts of back-to-back tool calls hitting the shared store.
	select {
	case <-time.After(searchPreDelay):
	case <-ctx.Done():
		return nil, goerr.Wrap(ctx.Err(), "textbook search canceled")
	}

	passages, err := retry.Do(ctx, "textbook_search", retry.Call, func(ctx context.Context) ([]*model.RetrievedPassage, error) {
		queryCtx, cancel := context.WithTimeout(ctx, searchTimeout)
		defer cancel()
		return t.store.SearchBookChunks(queryCtx, vec, limit)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "textbook search failed")
	}

	return &genai.FunctionResponse{
		Name: fc.Name,
		Response: map[string]any{
			"result": formatPassages(passages),
		},
	}, nil
}

// formatPassages renders passages with a literal JSON snippet per passage.
// The model must reproduce reference metadata verbatim in its final answer,
// and copying a prebuilt snippet is far more reliable than reconstructing
// structured references from prose.
func formatPassages(passages []*model.RetrievedPassage) string {
	if len(passages) == 0 {
		return "No relevant textbook passages found."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d textbook passage(s):\n\n", len(passages))
	for i, p := range passages {
		ref, _ := json.Marshal(model.Reference{
			BookTitle: p.BookTitle,
			BookID:    p.BookID,
			PageStart: p.PageStart,
			PageEnd:   p.PageEnd,
		})

		fmt.Fprintf(&b, "%d. [similarity %.3f] %s (book_id: %s, pages %d-%d)\n",
			i+1, p.Score, p.BookTitle, p.BookID, p.PageStart, p.PageEnd)
		fmt.Fprintf(&b, "   Content: %s\n", truncate(p.Content, maxPassageChars))
		fmt.Fprintf(&b, "   Reference for your `references` array (copy as-is): %s\n\n", ref)
	}

	return b.String()
}

// truncate cuts s to max characters. Counting runes, not bytes, keeps a
// multi-byte character at the boundary intact.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "…"
}
