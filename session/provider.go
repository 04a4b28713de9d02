package session

import (
	"context"
	"sync/atomic"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"

	"github.com/whwar9739/WhiskeyTracker/storage"
)

// Provider composes the session store, the auth gateway, and the persistence
// port. It is the only owner of both: pages operate on the provider, never
// on the port or the store directly. Construction runs the restore step
// synchronously, so by the time NewProvider returns the session is either
// Authenticated or Unauthenticated and guard decisions are well defined.
type Provider struct {
	config       Config
	logger       Logger
	store        *Store
	gateway      Gateway
	storage      storage.Port
	errorFactory ErrorFactory
	errorMapper  ErrorMapper
	subscribers  *subscriberRegistry

	loginInFlight    atomic.Bool
	registerInFlight atomic.Bool
}

func NewProvider(cfg Config, options ...Option) (*Provider, error) {
	builder := defaultProviderBuilder(cfg)
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	_, logger := glog.Resolve("whiskeytracker", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)

	if builder.errorFactory == nil {
		builder.errorFactory = goerrors.New
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.storage == nil {
		builder.storage = storage.NewMemory()
	}
	if builder.gateway == nil {
		return nil, builder.errorFactory("session: gateway is required", goerrors.CategoryInternal).
			WithTextCode(ErrorTextInternal)
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, builder.errorMapper(err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, builder.errorMapper(err)
	}

	provider := &Provider{
		config:       finalConfig,
		logger:       logger,
		store:        NewStore(builder.storage, finalConfig.TokenKey, finalConfig.UserKey, logger),
		gateway:      builder.gateway,
		storage:      builder.storage,
		errorFactory: builder.errorFactory,
		errorMapper:  builder.errorMapper,
		subscribers:  newSubscriberRegistry(),
	}

	provider.restore(context.Background())
	return provider, nil
}

// restore reads persisted state and, when configured, re-verifies the
// restored token against the backend before trusting the pair.
func (p *Provider) restore(ctx context.Context) {
	snapshot := p.store.Restore()

	if snapshot.State == StateAuthenticated {
		if p.config.VerifyOnRestore {
			user, err := p.gateway.Verify(ctx, snapshot.Token)
			if err != nil {
				p.logger.Info("restored session failed verification, clearing", "error", err.Error())
				p.store.ClearSession()
				return
			}
			// Refresh the persisted record with the backend's current view.
			if _, err := p.store.SetSession(user, snapshot.Token); err != nil {
				p.logger.Error("persisting re-verified session failed", "error", err.Error())
				p.store.ClearSession()
				return
			}
		}
		p.logger.Debug("session restored", "user_id", snapshot.User.ID())
		return
	}

	p.logger.Debug("no persisted session")
}

// Login runs the two-step authentication protocol and commits the verified
// pair. A second login submitted while one is in flight fails fast instead
// of racing the first; a failed login leaves the session exactly as it was.
func (p *Provider) Login(ctx context.Context, email, password string) (Snapshot, error) {
	if !p.loginInFlight.CompareAndSwap(false, true) {
		return p.store.Snapshot(), ErrLoginInFlight
	}
	defer p.loginInFlight.Store(false)

	user, token, err := p.gateway.Login(ctx, email, password)
	if err != nil {
		p.logger.Info("login failed", "email", email, "error", err.Error())
		return p.store.Snapshot(), err
	}

	snapshot, err := p.store.SetSession(user, token)
	if err != nil {
		return p.store.Snapshot(), p.errorMapper(err)
	}
	p.logger.Info("login succeeded", "user_id", user.ID())
	p.subscribers.notify(snapshot)
	return snapshot, nil
}

// Logout clears the session and its persisted entries. It never fails.
func (p *Provider) Logout() Snapshot {
	snapshot := p.store.ClearSession()
	p.logger.Info("logged out")
	p.subscribers.notify(snapshot)
	return snapshot
}

// Register creates an account. It never establishes a session; callers
// navigate the user to the login flow on success.
func (p *Provider) Register(ctx context.Context, username, email, password string) (UserRecord, error) {
	if !p.registerInFlight.CompareAndSwap(false, true) {
		return nil, ErrRegistrationInFlight
	}
	defer p.registerInFlight.Store(false)

	user, err := p.gateway.Register(ctx, username, email, password)
	if err != nil {
		p.logger.Info("registration failed", "username", username, "error", err.Error())
		return nil, err
	}
	p.logger.Info("registration succeeded", "username", username)
	return user, nil
}

func (p *Provider) RequestPasswordReset(ctx context.Context, email string) error {
	return p.gateway.RequestPasswordReset(ctx, email)
}

func (p *Provider) ResetPassword(ctx context.Context, token, newPassword string) error {
	return p.gateway.ResetPassword(ctx, token, newPassword)
}

func (p *Provider) Snapshot() Snapshot {
	return p.store.Snapshot()
}

func (p *Provider) State() State {
	return p.store.State()
}

func (p *Provider) IsAuthenticated() bool {
	return p.store.IsAuthenticated()
}

func (p *Provider) CurrentToken() (string, bool) {
	return p.store.CurrentToken()
}

func (p *Provider) CurrentUser() (UserRecord, bool) {
	return p.store.CurrentUser()
}

func (p *Provider) Config() Config {
	return p.config
}

// Subscribe registers a listener for session transitions and returns a
// handle for Unsubscribe. Listeners run synchronously on the mutating call.
func (p *Provider) Subscribe(listener Listener) string {
	return p.subscribers.subscribe(listener)
}

func (p *Provider) Unsubscribe(id string) {
	p.subscribers.unsubscribe(id)
}
