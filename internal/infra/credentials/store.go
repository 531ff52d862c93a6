package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"localserv/internal/infra"
	"localserv/internal/sqlinline"
)

const (
	ProviderGemini = "gemini"
)

// Store reads and writes third-party API keys kept in integration_tokens.
type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

func (s *Store) GeminiAPIKey(ctx context.Context) (string, error) {
	return s.Token(ctx, ProviderGemini)
}

// ResolveGeminiAPIKey returns the configured key, falling back to the stored one
// when none is configured.
func (s *Store) ResolveGeminiAPIKey(ctx context.Context, configured string) string {
	if key := strings.TrimSpace(configured); key != "" {
		return key
	}
	key, err := s.GeminiAPIKey(ctx)
	if err != nil {
		return ""
	}
	return key
}

func (s *Store) Token(ctx context.Context, provider string) (string, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectIntegrationToken, provider)
	var token string
	if err := row.Scan(&token); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(token), nil
}

func (s *Store) SetGeminiAPIKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("gemini api key is required")
	}
	return s.upsert(ctx, ProviderGemini, key, map[string]any{"source": "localservctl"})
}

func (s *Store) upsert(ctx context.Context, provider, token string, props map[string]any) error {
	payload := props
	if payload == nil {
		payload = map[string]any{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = s.sql.Exec(ctx, sqlinline.QUpsertIntegrationToken, provider, token, raw)
	return err
}
