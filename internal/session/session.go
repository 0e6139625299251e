// Package session stores per-user sync sessions in Redis: the opaque session
// token handed to the client, the Google OAuth tokens behind it, and the
// cached spreadsheet id.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	// DefaultTTL is how long an idle session survives. Refresh tokens let a
	// renewed session resume silently after expiry.
	DefaultTTL = 30 * 24 * time.Hour

	keyPrefix    = "session:"
	writeTimeout = 2 * time.Second
)

// ErrNotFound is returned when a session token is unknown or expired.
var ErrNotFound = errors.New("session not found")

// Data is the stored session record.
type Data struct {
	UserID        uuid.UUID `json:"user_id"`
	Synced        bool      `json:"synced"`
	AccessToken   string    `json:"access_token,omitempty"`
	RefreshToken  string    `json:"refresh_token,omitempty"`
	TokenExpiry   time.Time `json:"token_expiry,omitempty"`
	SpreadsheetID string    `json:"spreadsheet_id,omitempty"`
}

// OAuthToken rebuilds the oauth2 token for API clients.
func (d *Data) OAuthToken() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  d.AccessToken,
		RefreshToken: d.RefreshToken,
		Expiry:       d.TokenExpiry,
	}
}

// Manager owns the Redis connection and the session records.
type Manager struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewManager connects to Redis and verifies the connection.
func NewManager(redisURL string, ttl time.Duration, logger *zap.Logger) (*Manager, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{client: client, ttl: ttl, logger: logger}, nil
}

// Client exposes the underlying connection for infrastructure that shares it,
// e.g. the rate limiter store.
func (m *Manager) Client() *redis.Client {
	return m.client
}

// Ping verifies the Redis connection, for health checks.
func (m *Manager) Ping(ctx context.Context) error {
	return m.client.Ping(ctx).Err()
}

// Close releases the Redis connection.
func (m *Manager) Close() error {
	return m.client.Close()
}

// Create stores a new session and returns its opaque token.
func (m *Manager) Create(ctx context.Context, data Data) (string, error) {
	token := uuid.NewString()
	if err := m.put(ctx, token, data); err != nil {
		return "", err
	}
	return token, nil
}

// Get loads a session by token.
func (m *Manager) Get(ctx context.Context, token string) (*Data, error) {
	raw, err := m.client.Get(ctx, keyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &data, nil
}

// Update overwrites a session record, refreshing its TTL.
func (m *Manager) Update(ctx context.Context, token string, data Data) error {
	return m.put(ctx, token, data)
}

// Delete removes a session, e.g. on sign-out.
func (m *Manager) Delete(ctx context.Context, token string) error {
	if err := m.client.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (m *Manager) put(ctx context.Context, token string, data Data) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := m.client.Set(ctx, keyPrefix+token, raw, m.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// View is the session surface handlers and the workspace hub depend on.
// Satisfied by Binding; tests substitute fakes.
type View interface {
	Data() Data
	Synced() bool
	SetSynced(synced bool)
	SpreadsheetID() string
	SetSpreadsheetID(id string)
}

// Binding is a per-request view of one session implementing the cloudsync
// session contract. Reads come from the loaded snapshot; writes go through to
// Redis best-effort, since the sync layer treats session flags as advisory.
type Binding struct {
	manager *Manager
	token   string
	data    Data
}

// Bind loads a session into a binding.
func (m *Manager) Bind(ctx context.Context, token string) (*Binding, error) {
	data, err := m.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	return &Binding{manager: m, token: token, data: *data}, nil
}

// Data returns the bound snapshot.
func (b *Binding) Data() Data {
	return b.data
}

// Synced reports whether cloud sync is established for this session.
func (b *Binding) Synced() bool {
	return b.data.Synced
}

// SetSynced flips the sync flag.
func (b *Binding) SetSynced(synced bool) {
	b.data.Synced = synced
	b.writeThrough()
}

// SpreadsheetID returns the cached backing spreadsheet id, if any.
func (b *Binding) SpreadsheetID() string {
	return b.data.SpreadsheetID
}

// SetSpreadsheetID caches or clears the backing spreadsheet id.
func (b *Binding) SetSpreadsheetID(id string) {
	b.data.SpreadsheetID = id
	b.writeThrough()
}

func (b *Binding) writeThrough() {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := b.manager.put(ctx, b.token, b.data); err != nil {
		b.manager.logger.Warn("session_write_failed",
			zap.String("token_suffix", tokenSuffix(b.token)),
			zap.Error(err),
		)
	}
}

var _ View = (*Binding)(nil)

func tokenSuffix(token string) string {
	if len(token) <= 4 {
		return token
	}
	return token[len(token)-4:]
}
