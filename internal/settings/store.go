package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// Store reads and writes JSON values in the kv table.
type Store struct {
	db *sql.DB
}

// NewStore creates a new settings store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// GetJSON decodes the value stored under key into dst. It reports false
// when the key is absent.
func (s *Store) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	var raw sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !raw.Valid) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading setting %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw.String), dst); err != nil {
		return false, fmt.Errorf("decoding setting %s: %w", key, err)
	}
	return true, nil
}

// PutJSON stores v under key.
func (s *Store) PutJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding setting %s: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, string(data))
	if err != nil {
		return fmt.Errorf("writing setting %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Removing an absent key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting setting %s: %w", key, err)
	}
	return nil
}

// All returns every stored key with its raw JSON value.
func (s *Store) All(ctx context.Context) (map[string]json.RawMessage, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM kv ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("listing settings: %w", err)
	}
	defer rows.Close()

	out := make(map[string]json.RawMessage)
	for rows.Next() {
		var key string
		var raw sql.NullString
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, fmt.Errorf("scanning setting: %w", err)
		}
		if raw.Valid && json.Valid([]byte(raw.String)) {
			out[key] = json.RawMessage(raw.String)
		}
	}
	return out, rows.Err()
}

// ReplaceAllTx deletes every key and writes values inside tx.
func (s *Store) ReplaceAllTx(ctx context.Context, tx *sql.Tx, values map[string]json.RawMessage) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM kv`); err != nil {
		return fmt.Errorf("clearing settings: %w", err)
	}
	for key, raw := range values {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)`,
			key, string(raw)); err != nil {
			return fmt.Errorf("writing setting %s: %w", key, err)
		}
	}
	return nil
}

// Load resolves every whitelisted key, falling back to its default when the
// stored value is absent or out of range.
func (s *Store) Load(ctx context.Context) (Settings, error) {
	out := Defaults()
	for _, name := range KeyNames() {
		var v any
		found, err := s.GetJSON(ctx, name, &v)
		if err != nil {
			return out, err
		}
		if found {
			Keys[name].decode(&out, v)
		}
	}
	return out, nil
}

// Set validates value against the whitelist and stores it.
func (s *Store) Set(ctx context.Context, name, value string) error {
	k, ok := Lookup(name)
	if !ok {
		return fmt.Errorf("unknown setting %q; valid keys: %v", name, KeyNames())
	}
	var tmp Settings
	if err := k.set(&tmp, value); err != nil {
		return err
	}
	return s.PutJSON(ctx, name, k.get(tmp))
}

// Unset removes a whitelisted key so it reverts to its default.
func (s *Store) Unset(ctx context.Context, name string) error {
	if _, ok := Lookup(name); !ok {
		return fmt.Errorf("unknown setting %q; valid keys: %v", name, KeyNames())
	}
	return s.Delete(ctx, name)
}

// Override returns the capacity override, if any.
func (s *Store) Override(ctx context.Context) (*CapacityOverride, error) {
	var o CapacityOverride
	found, err := s.GetJSON(ctx, KeyCapacityOverride, &o)
	if err != nil || !found {
		return nil, err
	}
	return &o, nil
}

// SetOverride replaces usable capacity for date.
func (s *Store) SetOverride(ctx context.Context, date string, minutes int) error {
	if minutes < 0 {
		return fmt.Errorf("invalid capacity override %d: must not be negative", minutes)
	}
	return s.PutJSON(ctx, KeyCapacityOverride, CapacityOverride{Date: date, Minutes: minutes})
}

// ClearOverride removes the capacity override.
func (s *Store) ClearOverride(ctx context.Context) error {
	return s.Delete(ctx, KeyCapacityOverride)
}

// LastRollover returns the date maintenance last carried tasks over.
func (s *Store) LastRollover(ctx context.Context) (string, error) {
	var d string
	_, err := s.GetJSON(ctx, KeyLastRollover, &d)
	return d, err
}

// SetLastRollover records the rollover date.
func (s *Store) SetLastRollover(ctx context.Context, date string) error {
	return s.PutJSON(ctx, KeyLastRollover, date)
}
