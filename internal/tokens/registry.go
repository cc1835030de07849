package tokens

import (
	"strings"
	"sync"

	"github.com/vlasenkov/chatscribe/internal/config"
)

type Strategy string

const (
	// StrategyExact counts with the model's registered subword tokenizer.
	StrategyExact Strategy = "exact"
	// StrategyHeuristic approximates at roughly four characters per token.
	StrategyHeuristic Strategy = "character-heuristic"
)

// DefaultContextWindow is assumed for models the registry does not know.
const DefaultContextWindow = 4096

// Profile describes the token-budget characteristics of one model.
// Profiles are immutable once registered.
type Profile struct {
	Name          string
	ContextWindow int
	Strategy      Strategy
	// ImageModel marks prompt-to-image models whose "tokens" are counted
	// as prompt characters.
	ImageModel bool
}

// Registry maps model names to profiles. Reads are concurrency-safe;
// registration happens during startup only.
type Registry struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

func NewRegistry() *Registry {
	r := &Registry{profiles: make(map[string]Profile)}
	for _, p := range builtinProfiles {
		r.Register(p)
	}
	return r
}

// NewRegistryFromConfig builds a registry with the builtin profiles plus
// any models declared in the config, which override builtins by name.
func NewRegistryFromConfig(cfg config.AIConfig) *Registry {
	r := NewRegistry()
	for _, m := range cfg.Models {
		strategy := StrategyHeuristic
		if Strategy(m.Strategy) == StrategyExact {
			strategy = StrategyExact
		}
		window := m.ContextWindow
		if window <= 0 {
			window = DefaultContextWindow
		}
		r.Register(Profile{
			Name:          m.Name,
			ContextWindow: window,
			Strategy:      strategy,
			ImageModel:    m.ImageModel,
		})
	}
	return r
}

func (r *Registry) Register(p Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[strings.ToLower(p.Name)] = p
}

// ProfileFor returns the profile for a model name. Unknown models get a
// conservative default window and heuristic counting.
func (r *Registry) ProfileFor(model string) Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if p, ok := r.profiles[strings.ToLower(model)]; ok {
		return p
	}
	return Profile{
		Name:          model,
		ContextWindow: DefaultContextWindow,
		Strategy:      StrategyHeuristic,
	}
}

func (r *Registry) ContextWindowFor(model string) int {
	return r.ProfileFor(model).ContextWindow
}

var builtinProfiles = []Profile{
	{Name: "gpt-4o", ContextWindow: 128000, Strategy: StrategyExact},
	{Name: "gpt-4o-mini", ContextWindow: 128000, Strategy: StrategyExact},
	{Name: "gpt-4-turbo", ContextWindow: 128000, Strategy: StrategyExact},
	{Name: "gpt-4", ContextWindow: 8192, Strategy: StrategyExact},
	{Name: "gpt-3.5-turbo", ContextWindow: 16385, Strategy: StrategyExact},
	{Name: "o1", ContextWindow: 200000, Strategy: StrategyExact},
	{Name: "o3-mini", ContextWindow: 200000, Strategy: StrategyExact},
	{Name: "claude-3-5-sonnet", ContextWindow: 200000, Strategy: StrategyHeuristic},
	{Name: "claude-3-haiku", ContextWindow: 200000, Strategy: StrategyHeuristic},
	{Name: "deepseek-chat", ContextWindow: 65536, Strategy: StrategyHeuristic},
	{Name: "dall-e-3", ContextWindow: 4000, Strategy: StrategyHeuristic, ImageModel: true},
	{Name: "dall-e-2", ContextWindow: 1000, Strategy: StrategyHeuristic, ImageModel: true},
}
