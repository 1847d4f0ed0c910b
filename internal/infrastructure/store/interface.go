package store

import (
	"context"
	"errors"
)

// ErrEmptyKey is returned for blank keys; every backend rejects them.
var ErrEmptyKey = errors.New("blob key is required")

// BlobStore is a durable key-value store of whole values. Values are never
// partially updated: Set replaces, Get returns the last value written.
type BlobStore interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error
}

// Namespaced scopes every key of inner under prefix, so one backend can hold
// the carts of many users under the same fixed key names.
type Namespaced struct {
	inner  BlobStore
	prefix string
}

func NewNamespaced(inner BlobStore, prefix string) *Namespaced {
	return &Namespaced{inner: inner, prefix: prefix}
}

func (n *Namespaced) key(key string) string {
	if n.prefix == "" {
		return key
	}
	return n.prefix + ":" + key
}

func (n *Namespaced) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, ErrEmptyKey
	}
	return n.inner.Get(ctx, n.key(key))
}

func (n *Namespaced) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	return n.inner.Set(ctx, n.key(key), value)
}
