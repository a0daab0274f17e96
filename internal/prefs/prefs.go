// Package prefs stores user preferences namespaced by map provider.
package prefs

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"
)

// Store is a namespaced string key/value store.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, namespace, key string) (string, bool, error)
	Set(ctx context.Context, namespace, key, value string) error
	// All returns every key stored under namespace.
	All(ctx context.Context, namespace string) (map[string]string, error)
	// Clear removes every key stored under namespace.
	Clear(ctx context.Context, namespace string) error
}

// Options reads and writes scalar options on top of a Store. Reads never
// fail: a missing key or a backend error yields the supplied default.
type Options struct {
	store  Store
	logger zerolog.Logger
}

// NewOptions wraps store.
func NewOptions(store Store, logger zerolog.Logger) *Options {
	return &Options{
		store:  store,
		logger: logger.With().Str("component", "prefs").Logger(),
	}
}

// GetOption returns the stored value of key in namespace, or def.
func (o *Options) GetOption(ctx context.Context, key, def, namespace string) string {
	v, ok, err := o.store.Get(ctx, namespace, key)
	if err != nil {
		o.logger.Warn().Err(err).Str("namespace", namespace).Str("key", key).Msg("failed to read preference")
		return def
	}
	if !ok {
		return def
	}
	return v
}

// GetBool is GetOption for flags stored as "1"/"0".
func (o *Options) GetBool(ctx context.Context, key string, def bool, namespace string) bool {
	v, ok, err := o.store.Get(ctx, namespace, key)
	if err != nil || !ok {
		if err != nil {
			o.logger.Warn().Err(err).Str("namespace", namespace).Str("key", key).Msg("failed to read preference")
		}
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// SetOption stores value under key in namespace.
func (o *Options) SetOption(ctx context.Context, key, value, namespace string) error {
	return o.store.Set(ctx, namespace, key, value)
}

// SetBool stores a flag as "1" or "0".
func (o *Options) SetBool(ctx context.Context, key string, value bool, namespace string) error {
	return o.store.Set(ctx, namespace, key, FormatBool(value))
}

// FormatBool renders b the way the remember flag has always been stored.
func FormatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
