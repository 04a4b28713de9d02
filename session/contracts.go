package session

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

// Gateway is the protocol surface the provider drives. The concrete
// implementation lives in the gateway package; tests substitute fakes.
type Gateway interface {
	Login(ctx context.Context, email, password string) (UserRecord, string, error)
	Verify(ctx context.Context, token string) (UserRecord, error)
	Register(ctx context.Context, username, email, password string) (UserRecord, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type ErrorFactory func(message string, category ...goerrors.Category) *goerrors.Error

type ErrorMapper func(err error) *goerrors.Error

// ConfigProvider loads configuration from an external source on top of the
// package defaults.
type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

// RawConfigLoader supplies raw key/value configuration for cfgx to build.
type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

// OptionsResolver merges defaults, loaded, and runtime configuration layers.
type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}
