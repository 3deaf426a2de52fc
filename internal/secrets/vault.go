package secrets

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/scrypt"
)

//nolint:gochecknoglobals // sentinel error
var ErrSecretNotFound = errors.New("secrets: not found")

// Value encoding prefixes. Encrypted values are "enc:" + base64(nonce||ct);
// plaintext-fallback values are "plain:" + value. Both forms stay readable
// regardless of the vault's current mode, so adding a passphrase later does
// not strand previously stored tokens.
const (
	prefixEncrypted = "enc:"
	prefixPlain     = "plain:"
)

// scrypt parameters for deriving the AES key from the passphrase.
const (
	scryptN      = 1 << 15
	scryptR      = 8
	scryptP      = 1
	keyLen       = 32
	vaultKeySalt = "poietai-vault-v1"
)

// Secret is a stored credential, e.g. the source-control token saved during
// onboarding.
type Secret struct {
	ID        uuid.UUID
	Name      string // e.g. "github_token"
	Value     string // encoded per the prefixes above
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SecretRepository stores encoded secrets.
type SecretRepository interface {
	Upsert(ctx context.Context, s *Secret) error
	GetByName(ctx context.Context, name string) (*Secret, error)
	List(ctx context.Context) ([]*Secret, error)
	Delete(ctx context.Context, name string) error
}

// Vault encrypts/decrypts secret values using AES-256-GCM with a
// scrypt-derived key. With an empty passphrase it degrades to plaintext
// storage; all cryptography is delegated to the stdlib cipher and the
// encoding is the only logic owned here.
type Vault struct {
	aead cipher.AEAD // nil in plaintext-fallback mode
}

// NewVault derives the vault key from the passphrase. An empty passphrase
// yields a plaintext-fallback vault.
func NewVault(passphrase string) (*Vault, error) {
	if passphrase == "" {
		log.Warn().Msg("secrets: no vault passphrase set, storing credentials in plaintext")
		return &Vault{}, nil
	}

	key, err := scrypt.Key([]byte(passphrase), []byte(vaultKeySalt), scryptN, scryptR, scryptP, keyLen)
	if err != nil {
		return nil, fmt.Errorf("secrets.NewVault: derive key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("secrets.NewVault: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("secrets.NewVault: %w", err)
	}

	return &Vault{aead: aead}, nil
}

// Encrypted reports whether the vault has a key, or is in plaintext fallback.
func (v *Vault) Encrypted() bool {
	return v.aead != nil
}

// Encrypt encodes plaintext for storage: "enc:"+base64(nonce||ciphertext)
// with a key, "plain:"+value without one.
func (v *Vault) Encrypt(plaintext string) (string, error) {
	if v.aead == nil {
		return prefixPlain + plaintext, nil
	}

	nonce := make([]byte, v.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("secrets.Encrypt: generate nonce: %w", err)
	}

	// Seal appends the encrypted data to nonce, producing nonce || ciphertext.
	sealed := v.aead.Seal(nonce, nonce, []byte(plaintext), nil)

	return prefixEncrypted + base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt decodes a stored value. Plaintext-encoded values decode in any
// mode; encrypted values require the key they were sealed with.
func (v *Vault) Decrypt(stored string) (string, error) {
	if plain, ok := strings.CutPrefix(stored, prefixPlain); ok {
		return plain, nil
	}

	encoded, ok := strings.CutPrefix(stored, prefixEncrypted)
	if !ok {
		return "", errors.New("secrets.Decrypt: unrecognized value encoding")
	}
	if v.aead == nil {
		return "", errors.New("secrets.Decrypt: value is encrypted but no vault passphrase is set")
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("secrets.Decrypt: base64 decode: %w", err)
	}

	nonceSize := v.aead.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("secrets.Decrypt: ciphertext too short")
	}

	plaintext, err := v.aead.Open(nil, data[:nonceSize], data[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("secrets.Decrypt: %w", err)
	}

	return string(plaintext), nil
}

// Store encrypts and upserts a named secret.
func (v *Vault) Store(ctx context.Context, repo SecretRepository, name, plaintext string) error {
	value, err := v.Encrypt(plaintext)
	if err != nil {
		return fmt.Errorf("secrets.Store: %w", err)
	}

	now := time.Now()
	err = repo.Upsert(ctx, &Secret{
		ID:        uuid.New(),
		Name:      name,
		Value:     value,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("secrets.Store: %w", err)
	}

	return nil
}

// Load fetches and decrypts a named secret.
func (v *Vault) Load(ctx context.Context, repo SecretRepository, name string) (string, error) {
	s, err := repo.GetByName(ctx, name)
	if err != nil {
		return "", fmt.Errorf("secrets.Load: %w", err)
	}

	plaintext, err := v.Decrypt(s.Value)
	if err != nil {
		return "", fmt.Errorf("secrets.Load: decrypt %q: %w", name, err)
	}

	return plaintext, nil
}
