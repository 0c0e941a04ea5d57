package solution

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"

	"github.com/nprepindia/Solution-Generation/pkg/tool"
	"github.com/nprepindia/Solution-Generation/pkg/utils/logging"
)

// runLoop drives one tool-calling conversation until the model answers
// without requesting a tool, or the iteration budget runs out. On
// exhaustion, any text the model produced along the way is returned as a
// parse-or-fail candidate; an empty transcript is an explicit failure.
//
// Tool errors end the loop: a failed retrieval means the answer cannot be
// grounded, and an unknown function name means the model and the registry
// disagree about the contract.
func (u *UseCase) runLoop(ctx context.Context, registry *tool.Registry, systemPrompt, userPrompt string, maxIterations int) (string, error) {
	logger := logging.From(ctx)

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, ""),
	}
	if registry != nil {
		config.Tools = registry.Specs()
	}

	contents := []*genai.Content{
		genai.NewContentFromText(userPrompt, genai.RoleUser),
	}

	var partial strings.Builder

	for i := 0; i < maxIterations; i++ {
		resp, err := u.gemini.GenerateContent(ctx, contents, config)
		if err != nil {
			if ctx.Err() != nil {
				return "", goerr.Wrap(err, "agent call timed out", goerr.V("iteration", i+1))
			}
			return "", goerr.Wrap(err, "failed to generate content", goerr.V("iteration", i+1))
		}

		hasFunctionCall := false
		var turnText strings.Builder
		var functionResponses []*genai.Part

		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}

			contents = append(contents, candidate.Content)

			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					turnText.WriteString(part.Text)
				}

				if part.FunctionCall != nil {
					hasFunctionCall = true

					if registry == nil {
						return "", goerr.New("model requested a tool but none are available",
							goerr.V("function", part.FunctionCall.Name))
					}

					funcResp, execErr := registry.Execute(ctx, *part.FunctionCall)
					if execErr != nil {
						return "", goerr.Wrap(execErr, "tool execution failed",
							goerr.V("function", part.FunctionCall.Name),
							goerr.V("iteration", i+1))
					}

					functionResponses = append(functionResponses, &genai.Part{FunctionResponse: funcResp})
				}
			}
		}

		if len(functionResponses) > 0 {
			contents = append(contents, &genai.Content{
				Role:  genai.RoleUser,
				Parts: functionResponses,
			})
		}

		if !hasFunctionCall {
			text := strings.TrimSpace(turnText.String())
			if text == "" {
				return "", goerr.New("model returned an empty response", goerr.V("iteration", i+1))
			}
			return text, nil
		}

		partial.WriteString(turnText.String())
		logger.Debug("agent turn completed",
			"iteration", i+1,
			"max_iterations", maxIterations,
			"tool_calls", len(functionResponses),
		)
	}

	if text := strings.TrimSpace(partial.String()); text != "" {
		return text, nil
	}

	return "", goerr.New("agent exhausted its iteration budget without an answer",
		goerr.V("max_iterations", maxIterations))
}
