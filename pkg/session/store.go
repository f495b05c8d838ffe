package session

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/aretw0/tablesession/internal/logging"
	"github.com/aretw0/tablesession/pkg/domain"
	"github.com/aretw0/tablesession/pkg/ports"
)

// DefaultCleanupProbability is the chance that a successful write prunes older rows.
const DefaultCleanupProbability = 0.2

// Store persists session payloads as append-only rows of a single table.
//
// A Store remembers the last payload it read or wrote so that rewriting an
// unchanged session costs no I/O. That cache lives as long as the Store, so a
// Store is meant to serve one request and is not safe for concurrent use.
type Store struct {
	client      ports.DataClient
	table       string
	now         ports.Clock
	random      ports.RandomSource
	cleanupRate float64
	logger      *slog.Logger

	last    string
	hasLast bool
}

var _ ports.Handler = (*Store)(nil)

// Option configures the Store.
type Option func(*Store)

// WithClock replaces the wall clock used to stamp rows and compute gc cutoffs.
func WithClock(clock ports.Clock) Option {
	return func(s *Store) {
		s.now = clock
	}
}

// WithRandom replaces the random source used by the pruning draw.
func WithRandom(random ports.RandomSource) Option {
	return func(s *Store) {
		s.random = random
	}
}

// WithCleanupProbability sets the chance, in [0, 1], that a write prunes older rows.
func WithCleanupProbability(p float64) Option {
	return func(s *Store) {
		s.cleanupRate = p
	}
}

// WithLogger configures a logger for swallowed pruning failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a Store over client for the given table.
// It fails with a *domain.ConfigurationError before touching the client when the
// table name is not a plain identifier or an option is out of range.
func NewStore(client ports.DataClient, table string, opts ...Option) (*Store, error) {
	if !domain.ValidIdentifier(table) {
		return nil, &domain.ConfigurationError{Field: "table", Value: table, Reason: "must match [A-Za-z0-9_]+"}
	}
	if client == nil {
		return nil, &domain.ConfigurationError{Field: "client", Value: nil, Reason: "is required"}
	}

	s := &Store{
		client:      client,
		table:       table,
		now:         ports.SystemClock,
		random:      defaultRandom,
		cleanupRate: DefaultCleanupProbability,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.cleanupRate < 0 || s.cleanupRate > 1 {
		return nil, &domain.ConfigurationError{Field: "cleanup probability", Value: s.cleanupRate, Reason: "must be within [0, 1]"}
	}
	if s.now == nil || s.random == nil || s.logger == nil {
		return nil, &domain.ConfigurationError{Field: "option", Value: nil, Reason: "clock, random source and logger must not be nil"}
	}
	return s, nil
}

// defaultRandom draws from (0, 1] so that a probability of 0 never prunes.
func defaultRandom() float64 {
	return 1 - rand.Float64()
}

// Open is a no-op; the client arrives already configured.
func (s *Store) Open(ctx context.Context, savePath, name string) error {
	return nil
}

// Close is a no-op.
func (s *Store) Close(ctx context.Context) error {
	return nil
}

// Read returns the current payload of a session, or "" when it has no rows.
func (s *Store) Read(ctx context.Context, sessionID string) (string, error) {
	value, found, err := s.client.SelectValue(ctx, domain.Query{
		Table:   s.table,
		Column:  domain.ColumnSessionData,
		Where:   []domain.Condition{domain.Eq(domain.ColumnSessionID, sessionID)},
		OrderBy: []domain.Order{{Column: domain.ColumnID, Desc: true}},
		Limit:   1,
	})
	if err != nil {
		return "", &domain.StoreError{Op: "read", SessionID: sessionID, Err: err}
	}
	if !found {
		return "", nil
	}

	encoded, err := asString(value)
	if err != nil {
		return "", &domain.CorruptedDataError{SessionID: sessionID, Err: err}
	}
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", &domain.CorruptedDataError{SessionID: sessionID, Err: err}
	}

	data := string(decoded)
	s.remember(data)
	return data, nil
}

// Write appends data as the new current payload of a session.
// Writing the payload last read or written by this Store is a no-op.
func (s *Store) Write(ctx context.Context, sessionID, data string) error {
	now := s.now()

	if s.hasLast && s.last == data {
		return nil
	}

	record := domain.Record{
		SessionID:   sessionID,
		TimeCreated: now,
		SessionData: base64.StdEncoding.EncodeToString([]byte(data)),
	}
	if err := s.client.Insert(ctx, s.table, record.Row()); err != nil {
		return &domain.StoreError{Op: "write", SessionID: sessionID, Err: err}
	}
	s.remember(data)

	s.prune(ctx, sessionID, now)
	return nil
}

// Destroy removes every row of a session.
func (s *Store) Destroy(ctx context.Context, sessionID string) error {
	if _, err := s.client.Delete(ctx, s.table, domain.Eq(domain.ColumnSessionID, sessionID)); err != nil {
		return &domain.StoreError{Op: "destroy", SessionID: sessionID, Err: err}
	}
	s.forget()
	return nil
}

// GC removes rows of every session created maxAge or longer ago and
// reports how many rows were removed.
func (s *Store) GC(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := s.now() - int64(maxAge/time.Second)
	n, err := s.client.Delete(ctx, s.table, domain.Le(domain.ColumnTimeCreated, cutoff))
	if err != nil {
		return 0, &domain.StoreError{Op: "gc", Err: err}
	}
	return n, nil
}

// prune drops rows of sessionID older than the row just written.
// It runs with the configured probability and never reports failure.
func (s *Store) prune(ctx context.Context, sessionID string, now int64) {
	if s.random() > s.cleanupRate {
		return
	}
	n, err := s.client.Delete(ctx, s.table,
		domain.Eq(domain.ColumnSessionID, sessionID),
		domain.Lt(domain.ColumnTimeCreated, now),
	)
	if err != nil {
		s.logger.Warn("Failed to prune superseded session rows",
			"session_id", sessionID,
			"table", s.table,
			"err", err,
		)
		return
	}
	if n > 0 {
		s.logger.Debug("Pruned superseded session rows", "session_id", sessionID, "rows", n)
	}
}

func (s *Store) remember(data string) {
	s.last = data
	s.hasLast = true
}

func (s *Store) forget() {
	s.last = ""
	s.hasLast = false
}

func asString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case nil:
		return "", fmt.Errorf("payload is null")
	}
	return "", fmt.Errorf("unexpected payload type %T", v)
}
