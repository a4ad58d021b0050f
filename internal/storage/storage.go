// Package storage provides the string-keyed persistence medium the cart is kept in.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by GetItem when no value is stored under the key.
var ErrNotFound = errors.New("storage: item not found")

// Storage is a string-keyed, string-valued store.
type Storage interface {
	// GetItem returns the value stored under key, or ErrNotFound.
	GetItem(ctx context.Context, key string) (string, error)

	// SetItem stores value under key, replacing any prior value.
	SetItem(ctx context.Context, key, value string) error
}

// namespaced prefixes every key with a fixed namespace.
type namespaced struct {
	inner  Storage
	prefix string
}

// Namespaced returns a view of s in which every key is stored as "namespace/key".
// Each visitor session gets its own namespace.
func Namespaced(s Storage, namespace string) Storage {
	return &namespaced{inner: s, prefix: namespace + "/"}
}

func (n *namespaced) GetItem(ctx context.Context, key string) (string, error) {
	return n.inner.GetItem(ctx, n.prefix+key)
}

func (n *namespaced) SetItem(ctx context.Context, key, value string) error {
	return n.inner.SetItem(ctx, n.prefix+key, value)
}
