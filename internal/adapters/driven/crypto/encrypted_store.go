package crypto

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/sercha-bridge/internal/core/ports/driven"
)

var _ driven.KVStore = (*EncryptedStore)(nil)

// EncryptedStore wraps a KVStore and seals every value before it is written.
// Keys are stored in the clear.
type EncryptedStore struct {
	inner     driven.KVStore
	encryptor *Encryptor
}

// NewEncryptedStore decorates inner. When inner implements driven.Taker or
// driven.Pinger the returned store does too.
func NewEncryptedStore(inner driven.KVStore, encryptor *Encryptor) driven.KVStore {
	s := &EncryptedStore{inner: inner, encryptor: encryptor}

	_, takes := inner.(driven.Taker)
	_, pings := inner.(driven.Pinger)
	switch {
	case takes && pings:
		return &takingPingingStore{takingStore{s}}
	case takes:
		return &takingStore{s}
	case pings:
		return &pingingStore{s}
	}
	return s
}

// Set seals value and stores it under key.
func (s *EncryptedStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	blob, err := s.encryptor.Seal(value)
	if err != nil {
		return fmt.Errorf("seal %s: %w", key, err)
	}
	return s.inner.Set(ctx, key, blob, ttl)
}

// Get opens the value under key, or returns nil if absent.
func (s *EncryptedStore) Get(ctx context.Context, key string) ([]byte, error) {
	blob, err := s.inner.Get(ctx, key)
	if err != nil || blob == nil {
		return nil, err
	}
	return s.open(key, blob)
}

// Delete removes key.
func (s *EncryptedStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

func (s *EncryptedStore) open(key string, blob []byte) ([]byte, error) {
	value, err := s.encryptor.Open(blob)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", key, err)
	}
	return value, nil
}

type takingStore struct {
	*EncryptedStore
}

// Take delegates the atomic read-and-delete to the inner store.
func (s *takingStore) Take(ctx context.Context, key string) ([]byte, error) {
	blob, err := s.inner.(driven.Taker).Take(ctx, key)
	if err != nil || blob == nil {
		return nil, err
	}
	return s.open(key, blob)
}

type pingingStore struct {
	*EncryptedStore
}

func (s *pingingStore) Ping(ctx context.Context) error {
	return s.inner.(driven.Pinger).Ping(ctx)
}

type takingPingingStore struct {
	takingStore
}

func (s *takingPingingStore) Ping(ctx context.Context) error {
	return s.inner.(driven.Pinger).Ping(ctx)
}
