package llm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/daikw/cchooks/internal/config"
)

// ErrNoProvider is returned when no registered provider could be built.
var ErrNoProvider = errors.New("no LLM provider available")

// Factory builds a client from configuration. Returning an error makes the
// selector move on to the next candidate.
type Factory func(cfg *config.Config) (Client, error)

// Selector resolves the active provider, falling back through the remaining
// registered providers in registration order.
type Selector struct {
	order     []string
	factories map[string]Factory
}

// NewSelector returns a selector with the built-in providers registered.
func NewSelector() *Selector {
	s := &Selector{factories: make(map[string]Factory)}
	s.Register("anthropic", func(cfg *config.Config) (Client, error) {
		if strings.TrimSpace(cfg.Anthropic.APIKey) == "" {
			return nil, fmt.Errorf("anthropic: %w", ErrNoAPIKey)
		}
		return NewAnthropicClient(cfg.Anthropic), nil
	})
	s.Register("openrouter", func(cfg *config.Config) (Client, error) {
		if cfg.OpenRouter.APIKey == "" {
			return nil, fmt.Errorf("openrouter: %w", ErrNoAPIKey)
		}
		return NewOpenRouterClient(cfg.OpenRouter), nil
	})
	return s
}

// Register adds or replaces a provider. New names go to the end of the
// fallback order.
func (s *Selector) Register(name string, factory Factory) {
	name = strings.ToLower(name)
	if _, exists := s.factories[name]; !exists {
		s.order = append(s.order, name)
	}
	s.factories[name] = factory
}

// Names returns the registered providers in registration order.
func (s *Selector) Names() []string {
	return append([]string(nil), s.order...)
}

// Candidates returns the order in which providers are tried: the active one
// first, then the rest.
func (s *Selector) Candidates(active string) []string {
	active = strings.ToLower(strings.TrimSpace(active))
	if active == "" {
		active = config.DefaultProvider
	}

	candidates := []string{active}
	for _, name := range s.order {
		if name != active {
			candidates = append(candidates, name)
		}
	}
	return candidates
}

// Select returns the first provider that can be built for cfg.
func (s *Selector) Select(cfg *config.Config) (Client, error) {
	return s.selectFrom(cfg, s.Candidates(cfg.ActiveProvider))
}

// Get builds one named provider without falling back.
func (s *Selector) Get(cfg *config.Config, name string) (Client, error) {
	return s.selectFrom(cfg, []string{strings.ToLower(strings.TrimSpace(name))})
}

func (s *Selector) selectFrom(cfg *config.Config, candidates []string) (Client, error) {
	var errs []error
	for _, name := range candidates {
		client, err := s.build(cfg, name)
		if err == nil {
			log.Debug().Str("provider", name).Msg("Selected LLM provider")
			return client, nil
		}
		log.Debug().Err(err).Str("provider", name).Msg("LLM provider unavailable")
		errs = append(errs, err)
	}
	return nil, errors.Join(append([]error{ErrNoProvider}, errs...)...)
}

func (s *Selector) build(cfg *config.Config, name string) (client Client, err error) {
	factory, ok := s.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", name)
	}

	defer func() {
		if r := recover(); r != nil {
			client = nil
			err = fmt.Errorf("%s: provider panicked: %v", name, r)
		}
	}()

	client, err = factory(cfg)
	if err == nil && client == nil {
		err = fmt.Errorf("%s: factory returned no client", name)
	}
	return client, err
}
