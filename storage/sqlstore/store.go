// Package sqlstore persists session state through bun, giving the client a
// durable storage port: sqlite for single-user installs, postgres for shared
// kiosk deployments. Port semantics apply: reads that fail report absence,
// writes are best effort, and callers never see storage errors.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/whwar9739/WhiskeyTracker/storage"
)

const defaultCallTimeout = 5 * time.Second

type Store struct {
	db      *bun.DB
	repo    repository.Repository[*stateRecord]
	logger  glog.Logger
	timeout time.Duration
}

type Option func(*Store)

func WithLogger(logger glog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithCallTimeout(timeout time.Duration) Option {
	return func(s *Store) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// New builds a Store from a *bun.DB or anything exposing DB() *bun.DB, such
// as a go-persistence-bun client.
func New(persistenceClient any, opts ...Option) (*Store, error) {
	db, err := resolveBunDB(persistenceClient)
	if err != nil {
		return nil, err
	}
	store := &Store{
		db:      db,
		repo:    repository.NewRepository[*stateRecord](db, stateHandlers()),
		logger:  glog.Ensure(nil),
		timeout: defaultCallTimeout,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(store)
	}
	return store, nil
}

// OpenDB opens a bun database for one of the supported drivers. Callers own
// the returned handle; run Migrate before handing it to New.
func OpenDB(driver, dsn string) (*bun.DB, error) {
	driver = strings.TrimSpace(strings.ToLower(driver))
	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s database: %w", driver, err)
	}
	switch driver {
	case "sqlite3":
		// sqlite tolerates a single writer; shared-cache DSNs rely on it.
		sqlDB.SetMaxOpenConns(1)
		return bun.NewDB(sqlDB, sqlitedialect.New()), nil
	case "postgres":
		return bun.NewDB(sqlDB, pgdialect.New()), nil
	default:
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}
}

func (s *Store) Get(key string) (string, bool) {
	if s == nil || s.repo == nil {
		return "", false
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", false
	}
	ctx, cancel := s.callContext()
	defer cancel()

	records, _, err := s.repo.List(ctx,
		repository.SelectBy("entry_key", "=", key),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		s.logger.Debug("state read failed, treating as absent", "key", key, "error", err.Error())
		return "", false
	}
	if len(records) == 0 {
		return "", false
	}
	return records[0].Value, true
}

func (s *Store) Set(key, value string) {
	if s == nil || s.repo == nil {
		return
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return
	}
	ctx, cancel := s.callContext()
	defer cancel()

	now := time.Now().UTC()
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("entry_key", "=", key),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		s.logger.Error("state write lookup failed", "key", key, "error", err.Error())
		return
	}

	if len(records) > 0 {
		record := records[0]
		record.Value = value
		record.UpdatedAt = now
		if _, err := s.repo.Update(ctx, record, repository.UpdateByID(record.ID)); err != nil {
			s.logger.Error("state update failed", "key", key, "error", err.Error())
		}
		return
	}

	record := &stateRecord{
		ID:        uuid.NewString(),
		EntryKey:  key,
		Value:     value,
		UpdatedAt: now,
	}
	if _, err := s.repo.Create(ctx, record); err != nil {
		s.logger.Error("state insert failed", "key", key, "error", err.Error())
	}
}

func (s *Store) Remove(key string) {
	if s == nil || s.db == nil {
		return
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return
	}
	ctx, cancel := s.callContext()
	defer cancel()

	if _, err := s.db.NewDelete().
		Model((*stateRecord)(nil)).
		Where("entry_key = ?", key).
		Exec(ctx); err != nil {
		s.logger.Error("state remove failed", "key", key, "error", err.Error())
	}
}

func (s *Store) callContext() (context.Context, context.CancelFunc) {
	timeout := s.timeout
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	return context.WithTimeout(context.Background(), timeout)
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}

var _ storage.Port = (*Store)(nil)
