package ai

import (
	"errors"
	"fmt"
	"sync"

	"github.com/vlasenkov/chatscribe/internal/config"
	"github.com/vlasenkov/chatscribe/internal/logger"
)

var (
	ErrInvalidModelFormat = errors.New("invalid model format, expected provider:model")
	ErrProviderNotFound   = errors.New("provider not found")
)

type ProviderRegistry struct {
	providers      map[string]Provider
	providersMutex sync.RWMutex
	logger         logger.Logger
	cfg            *config.Config
}

func NewProviderRegistry(cfg *config.Config, log logger.Logger) *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]Provider),
		logger:    log,
		cfg:       cfg,
	}
}

func (r *ProviderRegistry) RegisterProvider(name string, provider Provider) {
	r.providersMutex.Lock()
	defer r.providersMutex.Unlock()
	r.providers[name] = provider
}

func (r *ProviderRegistry) GetProvider(name string) (Provider, error) {
	r.providersMutex.RLock()
	defer r.providersMutex.RUnlock()

	if provider, ok := r.providers[name]; ok {
		return provider, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, name)
}

func (r *ProviderRegistry) Providers() []string {
	r.providersMutex.RLock()
	defer r.providersMutex.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}

// ResolveModel determines the provider and model by priority:
// 1. Explicitly specified model (modelSpec)
// 2. Default provider and its model
func (r *ProviderRegistry) ResolveModel(modelSpec string) (Provider, string, error) {
	if modelSpec != "" {
		providerName, modelName, err := ParseModelSpec(modelSpec)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %s", ErrInvalidModelFormat, modelSpec)
		}

		provider, err := r.GetProvider(providerName)
		if err != nil {
			return nil, "", err
		}
		if modelName == "" {
			modelName = provider.GetDefaultModel()
		}
		return provider, modelName, nil
	}

	defaultModelSpec := r.cfg.AI().DefaultModel
	providerName, modelName, err := ParseModelSpec(defaultModelSpec)
	if err != nil {
		return nil, "", err
	}
	provider, err := r.GetProvider(providerName)
	if err != nil {
		return nil, "", err
	}
	return provider, modelName, nil
}
