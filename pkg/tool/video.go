package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"

	"github.com/nprepindia/Solution-Generation/pkg/model"
	"github.com/nprepindia/Solution-Generation/pkg/repository"
	"github.com/nprepindia/Solution-Generation/pkg/utils/retry"
)

// NoVideosFound is reported to the model when the video store has nothing
// for a topic. A valid terminal state, not a failure: videos legitimately do
// not exist for every topic.
const NoVideosFound = "no relevant videos found"

const defaultVideoLimit = 4

// VideoSearch retrieves video transcript segments similar to a previously
// generated embedding.
type VideoSearch struct {
	store repository.Store
	cache *Cache
}

// NewVideoSearch creates the search_videos tool
func NewVideoSearch(store repository.Store, cache *Cache) *VideoSearch {
	return &VideoSearch{
		store: store,
		cache: cache,
	}
}

func (v *VideoSearch) Spec() *genai.Tool {
	return &genai.Tool{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        "search_videos",
				Description: "Search the video lecture corpus for transcript segments similar to a generated embedding. Requires an embedding_id from generate_embedding. May legitimately find nothing; an answer without video references is acceptable.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"embedding_id": {
							Type:        genai.TypeString,
							Description: "Embedding id returned by generate_embedding",
						},
						"limit": {
							Type:        genai.TypeInteger,
							Description: "Max segments to return (default 4)",
						},
					},
					Required: []string{"embedding_id"},
				},
			},
		},
	}
}

func (v *VideoSearch) Execute(ctx context.Context, fc genai.FunctionCall) (*genai.FunctionResponse, error) {
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

	vec, ok := v.cache.Get(in.EmbeddingID, DimensionVideos)
	if !ok {
		return nil, goerr.New("embedding not found, run generate_embedding first",
			goerr.V("embedding_id", in.EmbeddingID), goerr.V("dimension", DimensionVideos))
	}

	limit := in.Limit
	if limit <= 0 {
		limit = defaultVideoLimit
	}

	segments, err := retry.Do(ctx, "video_search", retry.Call, func(ctx context.Context) ([]*model.RetrievedVideoSegment, error) {
		queryCtx, cancel := context.WithTimeout(ctx, searchTimeout)
		defer cancel()
		return v.store.SearchVideoSegments(queryCtx, vec, limit)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "video search failed")
	}

	return &genai.FunctionResponse{
		Name: fc.Name,
		Response: map[string]any{
			"result": formatSegments(segments),
		},
	}, nil
}

func formatSegments(segments []*model.RetrievedVideoSegment) string {
	if len(segments) == 0 {
		return NoVideosFound
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d video segment(s):\n\n", len(segments))
	for i, seg := range segments {
		ref, _ := json.Marshal(model.VideoReference{
			VideoID:   seg.VideoID,
			TimeStart: seg.TimeStart,
			TimeEnd:   seg.TimeEnd,
		})

		fmt.Fprintf(&b, "%d. [similarity %.3f] video %s (%.1fs - %.1fs)\n",
			i+1, seg.Score, seg.VideoID, seg.TimeStart, seg.TimeEnd)
		fmt.Fprintf(&b, "   Transcript: %s\n", seg.Transcript)
		fmt.Fprintf(&b, "   Reference for your `video_references` array (copy as-is): %s\n\n", ref)
	}

	return b.String()
}
