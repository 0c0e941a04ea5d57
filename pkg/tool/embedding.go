package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"

	"github.com/nprepindia/Solution-Generation/pkg/adapter"
	"github.com/nprepindia/Solution-Generation/pkg/utils/retry"
)

// Embedding generates vectors for both corpus spaces and parks them in the
// per-request cache. Only the minted id goes back to the model; returning
// raw vectors would blow up the context window and leak into the
// conversation history.
type Embedding struct {
	gemini adapter.Gemini
	cache  *Cache
}

// NewEmbedding creates the generate_embedding tool
func NewEmbedding(gemini adapter.Gemini, cache *Cache) *Embedding {
	return &Embedding{
		gemini: gemini,
		cache:  cache,
	}
}

func (e *Embedding) Spec() *genai.Tool {
	return &genai.Tool{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        "generate_embedding",
				Description: "Generate embedding vectors for a text in both knowledge base spaces (textbooks and videos). Returns an embedding_id to pass to search_textbooks and search_videos. Call this once with the question's key concepts before searching.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"text": {
							Type:        genai.TypeString,
							Description: "Text to embed, typically the question or its key clinical concepts",
						},
					},
					Required: []string{"text"},
				},
			},
		},
	}
}

func (e *Embedding) Execute(ctx context.Context, fc genai.FunctionCall) (*genai.FunctionResponse, error) {
	type input struct {
		Text string `json:"text"`
	}

	paramsJSON, err := json.Marshal(fc.Args)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal function arguments")
	}

	var in input
	if err := json.Unmarshal(paramsJSON, &in); err != nil {
		return nil, goerr.Wrap(err, "failed to parse input parameters")
	}

	if in.Text == "" {
		return nil, goerr.New("text is required")
	}

	// Both spaces are embedded concurrently and joined before the tool
	// returns, so the id is never visible half-populated.
	var bookVec, videoVec []float32
	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		vec, err := retry.Do(egCtx, "embedding_books", retry.Call, func(ctx context.Context) ([]float32, error) {
			return e.gemini.Embedding(ctx, in.Text, int32(DimensionBooks))
		})
		if err != nil {
			return goerr.Wrap(err, "embedding service failed", goerr.V("dimension", DimensionBooks))
		}
		bookVec = vec
		return nil
	})

	eg.Go(func() error {
		vec, err := retry.Do(egCtx, "embedding_videos", retry.Call, func(ctx context.Context) ([]float32, error) {
			return e.gemini.Embedding(ctx, in.Text, int32(DimensionVideos))
		})
		if err != nil {
			return goerr.Wrap(err, "embedding service failed", goerr.V("dimension", DimensionVideos))
		}
		videoVec = vec
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	id := e.cache.NextID()
	e.cache.Put(id, DimensionBooks, bookVec)
	e.cache.Put(id, DimensionVideos, videoVec)

	return &genai.FunctionResponse{
		Name: fc.Name,
		Response: map[string]any{
			"embedding_id": id,
			"dimensions":   []int{int(DimensionBooks), int(DimensionVideos)},
			"result":       fmt.Sprintf("Embedding %s generated for both spaces (%d and %d dimensions). Use it with search_textbooks and search_videos.", id, DimensionBooks, DimensionVideos),
		},
	}, nil
}
