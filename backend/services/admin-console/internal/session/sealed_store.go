package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// ErrUnsealed is returned when a stored value cannot be opened with the key.
var ErrUnsealed = errors.New("session: stored value cannot be opened")

// SealedStore encrypts values with NaCl secretbox before handing them to the
// wrapped store. Keys are stored in clear.
type SealedStore struct {
	inner Store
	key   [32]byte
}

// NewSealedStore derives the box key from secret.
func NewSealedStore(inner Store, secret string) *SealedStore {
	return &SealedStore{inner: inner, key: sha256.Sum256([]byte(secret))}
}

func (s *SealedStore) Get(ctx context.Context, key string) (string, bool, error) {
	raw, ok, err := s.inner.Get(ctx, key)
	if err != nil || !ok {
		return "", ok, err
	}
	box, err := base64.StdEncoding.DecodeString(raw)
	if err != nil || len(box) < nonceSize {
		return "", false, ErrUnsealed
	}
	var nonce [nonceSize]byte
	copy(nonce[:], box[:nonceSize])
	plain, ok := secretbox.Open(nil, box[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", false, ErrUnsealed
	}
	return string(plain), true, nil
}

func (s *SealedStore) Set(ctx context.Context, key, value string) error {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return fmt.Errorf("session: nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], []byte(value), &nonce, &s.key)
	return s.inner.Set(ctx, key, base64.StdEncoding.EncodeToString(box))
}

func (s *SealedStore) Delete(ctx context.Context, keys ...string) error {
	return s.inner.Delete(ctx, keys...)
}

func (s *SealedStore) Close() error {
	return s.inner.Close()
}
