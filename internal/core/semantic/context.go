package semantic

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/agenthands/idresolve/internal/llm"
	"github.com/agenthands/idresolve/internal/logging"
)

// GeneralContext is used when nothing in the domain hints at a field.
const GeneralContext = "general professional"

// Domain fragments and the research context they suggest, checked in order.
var domainContexts = []struct {
	fragment string
	phrase   string
}{
	{"edu", "education research academic"},
	{"ac.", "academic research university"},
	{"university", "higher education research"},
	{"institute", "research science technology"},
	{"research", "scientific research development"},
	{"gov", "government public policy"},
	{"mil", "military defense technology"},
	{"org", "organization non-profit"},
	{"com", "commercial business technology"},
}

// InferContext maps a contact-address domain to a short context phrase.
func InferContext(domain string) string {
	domain = strings.ToLower(domain)
	for _, dc := range domainContexts {
		if strings.Contains(domain, dc.fragment) {
			return dc.phrase
		}
	}
	return GeneralContext
}

const contextPrompt = `A researcher uses a contact address at the domain %q.
Describe the most likely research or professional context of that domain in at most six plain lowercase words.
Respond with JSON only: {"context": "<words>"}`

type contextAnswer struct {
	Context string `json:"context"`
}

// ContextPhraser produces the context phrase compared against a candidate's
// research areas. With an LLM it asks for a description of the domain and
// falls back to InferContext on any error or unusable answer.
type ContextPhraser struct {
	LLM    llm.LLMClient
	Logger *zap.Logger
}

func NewContextPhraser(client llm.LLMClient, logger *zap.Logger) *ContextPhraser {
	return &ContextPhraser{LLM: client, Logger: logging.OrNop(logger)}
}

func (p *ContextPhraser) Phrase(ctx context.Context, domain string) string {
	fallback := InferContext(domain)
	if p == nil || p.LLM == nil || domain == "" {
		return fallback
	}
	resp, err := p.LLM.Generate(ctx, fmt.Sprintf(contextPrompt, domain))
	if err != nil {
		logging.OrNop(p.Logger).Debug("context phrase generation failed", zap.String("domain", domain), zap.Error(err))
		return fallback
	}
	answer, err := llm.ParseJSON[contextAnswer](resp)
	if err != nil {
		logging.OrNop(p.Logger).Debug("unusable context phrase", zap.String("domain", domain), zap.Error(err))
		return fallback
	}
	phrase := strings.ToLower(strings.Join(strings.Fields(strings.Trim(answer.Context, " .")), " "))
	if phrase == "" || len(strings.Fields(phrase)) > 12 {
		return fallback
	}
	return phrase
}
