package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBlobStore_SetGet(t *testing.T) {
	s := NewMemoryBlobStore()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "shop_cart")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "shop_cart", []byte(`[]`)))
	value, ok, err := s.Get(ctx, "shop_cart")

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, string(value))
	assert.Equal(t, 1, s.Keys())
}

func TestMemoryBlobStore_CopiesValues(t *testing.T) {
	s := NewMemoryBlobStore()
	ctx := context.Background()

	value := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", value))
	value[0] = 'x'

	got, _, _ := s.Get(ctx, "k")
	assert.Equal(t, "abc", string(got))

	got[1] = 'y'
	again, _, _ := s.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestMemoryBlobStore_EmptyKey(t *testing.T) {
	s := NewMemoryBlobStore()
	ctx := context.Background()

	assert.ErrorIs(t, s.Set(ctx, "", []byte("x")), ErrEmptyKey)
	_, _, err := s.Get(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestNamespaced_ScopesKeys(t *testing.T) {
	inner := NewMemoryBlobStore()
	ctx := context.Background()

	alice := NewNamespaced(inner, "user:1")
	bob := NewNamespaced(inner, "user:2")

	require.NoError(t, alice.Set(ctx, "shop_cart", []byte("a")))
	require.NoError(t, bob.Set(ctx, "shop_cart", []byte("b")))

	a, _, _ := alice.Get(ctx, "shop_cart")
	b, _, _ := bob.Get(ctx, "shop_cart")
	assert.Equal(t, "a", string(a))
	assert.Equal(t, "b", string(b))

	raw, ok, _ := inner.Get(ctx, "user:1:shop_cart")
	assert.True(t, ok)
	assert.Equal(t, "a", string(raw))

	_, _, err := alice.Get(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestNamespaced_EmptyPrefix(t *testing.T) {
	inner := NewMemoryBlobStore()
	ctx := context.Background()

	ns := NewNamespaced(inner, "")
	require.NoError(t, ns.Set(ctx, "shop_cart", []byte("x")))

	_, ok, _ := inner.Get(ctx, "shop_cart")
	assert.True(t, ok)
}
