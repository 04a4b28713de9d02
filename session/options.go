package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-config/cfgx"
	opts "github.com/goliatone/go-options"

	"github.com/whwar9739/WhiskeyTracker/storage"
)

type providerBuilder struct {
	runtimeConfig   Config
	logger          Logger
	loggerProvider  LoggerProvider
	storage         storage.Port
	gateway         Gateway
	errorFactory    ErrorFactory
	errorMapper     ErrorMapper
	configProvider  ConfigProvider
	optionsResolver OptionsResolver
}

type Option func(*providerBuilder)

func WithLogger(logger Logger) Option {
	return func(b *providerBuilder) {
		b.logger = logger
	}
}

func WithLoggerProvider(provider LoggerProvider) Option {
	return func(b *providerBuilder) {
		b.loggerProvider = provider
	}
}

func WithStorage(port storage.Port) Option {
	return func(b *providerBuilder) {
		b.storage = port
	}
}

func WithGateway(gw Gateway) Option {
	return func(b *providerBuilder) {
		b.gateway = gw
	}
}

func WithErrorFactory(factory ErrorFactory) Option {
	return func(b *providerBuilder) {
		b.errorFactory = factory
	}
}

func WithErrorMapper(mapper ErrorMapper) Option {
	return func(b *providerBuilder) {
		b.errorMapper = mapper
	}
}

func WithConfigProvider(provider ConfigProvider) Option {
	return func(b *providerBuilder) {
		b.configProvider = provider
	}
}

func WithOptionsResolver(resolver OptionsResolver) Option {
	return func(b *providerBuilder) {
		b.optionsResolver = resolver
	}
}

func defaultProviderBuilder(cfg Config) providerBuilder {
	return providerBuilder{
		runtimeConfig:   cfg,
		configProvider:  NewCfgxConfigProvider(nil),
		optionsResolver: GoOptionsResolver{},
	}
}

type staticRawConfigLoader struct {
	Values map[string]any
}

func (l staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

// CfgxConfigProvider builds a Config from raw key/value data with package
// defaults and validation applied.
type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = staticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// GoOptionsResolver layers defaults, loaded configuration, and runtime
// overrides with deterministic precedence.
type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	defaultLayer := configToLayerMap(defaults, true)
	loadedLayer := configToLayerMap(loaded, false)
	runtimeLayer := configToLayerMap(runtime, false)

	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			defaultLayer,
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			loadedLayer,
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			runtimeLayer,
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("session: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("session: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	if err := resolved.Validate(); err != nil {
		return Config{}, err
	}
	return resolved, nil
}

func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.TokenKey) != "" {
		layer["token_key"] = cfg.TokenKey
	}
	if includeZero || strings.TrimSpace(cfg.UserKey) != "" {
		layer["user_key"] = cfg.UserKey
	}
	if includeZero || cfg.VerifyOnRestore {
		layer["verify_on_restore"] = cfg.VerifyOnRestore
	}
	if includeZero || strings.TrimSpace(cfg.EntryRoute) != "" {
		layer["entry_route"] = cfg.EntryRoute
	}
	if includeZero || strings.TrimSpace(cfg.LoginRoute) != "" {
		layer["login_route"] = cfg.LoginRoute
	}
	if includeZero || strings.TrimSpace(cfg.ProtectedRoute) != "" {
		layer["protected_route"] = cfg.ProtectedRoute
	}
	return layer
}
