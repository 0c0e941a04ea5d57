package tool

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"

	"github.com/nprepindia/Solution-Generation/pkg/utils/logging"
)

// ErrUnknownFunction is returned when the model requests a function name no
// tool declares. The orchestrator treats it as fatal: silently ignoring a
// capability the model believes exists would corrupt the conversation.
var ErrUnknownFunction = goerr.New("unknown function")

// Registry manages the closed set of tools available to the LLM. Dispatch is
// exact-match on function name.
type Registry struct {
	tools    map[string]Tool
	allTools []Tool
}

// NewRegistry creates a new tool registry with the given tools
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{
		tools:    make(map[string]Tool),
		allTools: tools,
	}

	for _, t := range tools {
		spec := t.Spec()
		if spec == nil {
			continue
		}
		for _, fd := range spec.FunctionDeclarations {
			r.tools[fd.Name] = t
		}
	}

	return r
}

// Specs returns all tool specifications for Gemini function calling
func (r *Registry) Specs() []*genai.Tool {
	specs := make([]*genai.Tool, 0, len(r.allTools))
	for _, t := range r.allTools {
		if spec := t.Spec(); spec != nil {
			specs = append(specs, spec)
		}
	}
	return specs
}

// Names returns the declared function names in registration order
func (r *Registry) Names() []string {
	var names []string
	for _, t := range r.allTools {
		if spec := t.Spec(); spec != nil {
			for _, fd := range spec.FunctionDeclarations {
				names = append(names, fd.Name)
			}
		}
	}
	return names
}

// Execute runs the tool with the given function call
func (r *Registry) Execute(ctx context.Context, fc genai.FunctionCall) (*genai.FunctionResponse, error) {
	t, ok := r.tools[fc.Name]
	if !ok {
		return nil, goerr.Wrap(ErrUnknownFunction, "no tool declares this function", goerr.V("name", fc.Name))
	}

	logging.From(ctx).Debug("executing tool", "name", fc.Name, "args", fc.Args)

	return t.Execute(ctx, fc)
}
