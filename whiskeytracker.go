// Package whiskeytracker wires the session subsystem of the WhiskeyTracker
// client: the auth gateway, the session provider with its persistence port,
// the route guard, and the command handlers for hosts that drive the client
// through a command bus.
package whiskeytracker

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"

	"github.com/whwar9739/WhiskeyTracker/command"
	"github.com/whwar9739/WhiskeyTracker/gateway"
	"github.com/whwar9739/WhiskeyTracker/guard"
	"github.com/whwar9739/WhiskeyTracker/session"
	"github.com/whwar9739/WhiskeyTracker/storage"
)

// Config aggregates the gateway and session configuration. Zero values fall
// back to package defaults.
type Config struct {
	Gateway gateway.Config `json:"gateway" koanf:"gateway" mapstructure:"gateway"`
	Session session.Config `json:"session" koanf:"session" mapstructure:"session"`
}

// Commands exposes the session operations as command handlers.
type Commands struct {
	Login                *command.LoginCommand
	Logout               *command.LogoutCommand
	Register             *command.RegisterCommand
	RequestPasswordReset *command.RequestPasswordResetCommand
	ResetPassword        *command.ResetPasswordCommand
}

// Client is the composed session subsystem. Pages talk to Provider and
// Guard; bus-driven hosts use Commands.
type Client struct {
	provider *session.Provider
	gateway  *gateway.Client
	guard    *guard.Guard
	commands Commands
}

type clientOptions struct {
	httpClient     gateway.HTTPDoer
	logger         glog.Logger
	loggerProvider glog.LoggerProvider
	storage        storage.Port
	sessionOptions []session.Option
}

type ClientOption func(*clientOptions)

func WithHTTPClient(doer gateway.HTTPDoer) ClientOption {
	return func(o *clientOptions) {
		o.httpClient = doer
	}
}

func WithLogger(logger glog.Logger) ClientOption {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

func WithLoggerProvider(provider glog.LoggerProvider) ClientOption {
	return func(o *clientOptions) {
		o.loggerProvider = provider
	}
}

// WithStorage sets the persistence port backing the session store, such as
// a sqlstore.Store. Defaults to in-memory storage.
func WithStorage(port storage.Port) ClientOption {
	return func(o *clientOptions) {
		o.storage = port
	}
}

// WithSessionOptions appends raw session provider options for callers that
// need to swap config providers or error mappers.
func WithSessionOptions(opts ...session.Option) ClientOption {
	return func(o *clientOptions) {
		o.sessionOptions = append(o.sessionOptions, opts...)
	}
}

// New builds the composed client. Session restore runs synchronously, so the
// returned client is already Authenticated or Unauthenticated.
func New(cfg Config, opts ...ClientOption) (*Client, error) {
	options := clientOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&options)
	}

	_, logger := glog.Resolve("whiskeytracker", options.loggerProvider, options.logger)
	logger = glog.Ensure(logger)

	gatewayOpts := []gateway.Option{gateway.WithLogger(logger)}
	if options.httpClient != nil {
		gatewayOpts = append(gatewayOpts, gateway.WithHTTPClient(options.httpClient))
	} else {
		gatewayOpts = append(gatewayOpts, gateway.WithHTTPClient(http.DefaultClient))
	}

	gw, err := gateway.New(cfg.Gateway, gatewayOpts...)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "whiskeytracker: gateway construction failed")
	}

	sessionOpts := []session.Option{
		session.WithGateway(gw),
		session.WithLogger(logger),
	}
	if options.loggerProvider != nil {
		sessionOpts = append(sessionOpts, session.WithLoggerProvider(options.loggerProvider))
	}
	if options.storage != nil {
		sessionOpts = append(sessionOpts, session.WithStorage(options.storage))
	}
	sessionOpts = append(sessionOpts, options.sessionOptions...)

	provider, err := session.NewProvider(cfg.Session, sessionOpts...)
	if err != nil {
		return nil, err
	}

	client := &Client{
		provider: provider,
		gateway:  gw,
		guard:    guard.New(provider.Config().EntryRoute),
	}
	client.commands = Commands{
		Login:                command.NewLoginCommand(provider),
		Logout:               command.NewLogoutCommand(provider),
		Register:             command.NewRegisterCommand(provider),
		RequestPasswordReset: command.NewRequestPasswordResetCommand(provider),
		ResetPassword:        command.NewResetPasswordCommand(provider),
	}
	return client, nil
}

func (c *Client) Provider() *session.Provider {
	if c == nil {
		return nil
	}
	return c.provider
}

func (c *Client) Gateway() *gateway.Client {
	if c == nil {
		return nil
	}
	return c.gateway
}

func (c *Client) Guard() *guard.Guard {
	if c == nil {
		return nil
	}
	return c.guard
}

func (c *Client) Commands() Commands {
	if c == nil {
		return Commands{}
	}
	return c.commands
}

// Evaluate runs the route guard against the current session snapshot.
func (c *Client) Evaluate() (guard.Decision, string) {
	return c.guard.Evaluate(c.provider.Snapshot())
}
