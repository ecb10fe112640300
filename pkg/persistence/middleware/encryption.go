package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/machi/pkg/domain"
	"github.com/aretw0/machi/pkg/ports"
)

// KeySize is the AES-256 key length.
const KeySize = 32

// sealedKey holds the ciphertext in the context of the stored envelope.
const sealedKey = "__sealed__"

var (
	// ErrInvalidKey is returned for keys that are not KeySize bytes.
	ErrInvalidKey = errors.New("encryption key must be 32 bytes")
	// ErrNotSealed is returned when a stored state carries no ciphertext.
	ErrNotSealed = errors.New("state is not encrypted")
)

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey encrypts new states.
	ActiveKey []byte
	// FallbackKeys are tried in order when ActiveKey cannot decrypt, so keys
	// can be rotated without rewriting stored sessions.
	FallbackKeys [][]byte
}

// NewEncryption returns a middleware sealing each state with AES-GCM. The
// stored envelope only keeps the session id and update time in clear.
func NewEncryption(config EncryptionConfig) (Middleware, error) {
	for _, k := range append([][]byte{config.ActiveKey}, config.FallbackKeys...) {
		if len(k) != KeySize {
			return nil, ErrInvalidKey
		}
	}
	return func(next ports.StateStore) ports.StateStore {
		return &encryptionMiddleware{next: next, config: config}
	}, nil
}

// ParseKey decodes a hex or base64 encoded key.
func ParseKey(s string) ([]byte, error) {
	if k, err := hex.DecodeString(s); err == nil && len(k) == KeySize {
		return k, nil
	}
	if k, err := base64.StdEncoding.DecodeString(s); err == nil && len(k) == KeySize {
		return k, nil
	}
	return nil, ErrInvalidKey
}

type encryptionMiddleware struct {
	next   ports.StateStore
	config EncryptionConfig
}

func (m *encryptionMiddleware) Save(ctx context.Context, sessionID string, state *domain.State) error {
	plain, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	sealed, err := seal(plain, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("encrypt state: %w", err)
	}

	envelope := &domain.State{
		SessionID: state.SessionID,
		Context:   map[string]any{sealedKey: base64.StdEncoding.EncodeToString(sealed)},
		History:   []string{},
		UpdatedAt: state.UpdatedAt,
	}
	return m.next.Save(ctx, sessionID, envelope)
}

func (m *encryptionMiddleware) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	envelope, err := m.next.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	encoded, ok := envelope.Context[sealedKey].(string)
	if !ok {
		return nil, fmt.Errorf("load %q: %w", sessionID, ErrNotSealed)
	}
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode ciphertext: %w", err)
	}

	plain, err := m.open(sealed)
	if err != nil {
		return nil, fmt.Errorf("decrypt state: %w", err)
	}
	var state domain.State
	if err := json.Unmarshal(plain, &state); err != nil {
		return nil, fmt.Errorf("unmarshal decrypted state: %w", err)
	}
	return &state, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *encryptionMiddleware) open(sealed []byte) ([]byte, error) {
	if plain, err := unseal(sealed, m.config.ActiveKey); err == nil {
		return plain, nil
	}
	for _, key := range m.config.FallbackKeys {
		if plain, err := unseal(sealed, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("no key could decrypt the state")
}

func seal(plain, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plain, nil), nil
}

func unseal(sealed, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(sealed) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, body := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
