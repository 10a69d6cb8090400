package encryption

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/Mulandii/Clinic-cms/domain"
)

const dataKeySize = chacha20poly1305.KeySize

// Keyring implements domain.RecordCipher with envelope encryption. Every call
// to Seal draws a fresh data key, encrypts the payload with it and wraps the
// data key with the active key-encryption key. Retired keys stay in the ring
// so older rows can still be opened.
type Keyring struct {
	keys   map[string][]byte
	active string
}

// ParseKeyring reads "id:base64key,id:base64key" and selects the active id
func ParseKeyring(spec, active string) (*Keyring, error) {
	if strings.TrimSpace(spec) == "" || strings.TrimSpace(active) == "" {
		return nil, domain.ErrEncryptionKeyUnset
	}

	keys := make(map[string][]byte)
	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		id, encoded, ok := strings.Cut(entry, ":")
		if !ok || id == "" {
			return nil, fmt.Errorf("malformed record key entry %q", entry)
		}
		if _, dup := keys[id]; dup {
			return nil, fmt.Errorf("duplicate record key id %q", id)
		}
		key, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("record key %q: %w", id, err)
		}
		if len(key) != dataKeySize {
			return nil, fmt.Errorf("record key %q must be %d bytes, got %d", id, dataKeySize, len(key))
		}
		keys[id] = key
	}

	active = strings.TrimSpace(active)
	if _, ok := keys[active]; !ok {
		return nil, fmt.Errorf("active record key %q: %w", active, domain.ErrEncryptionKeyUnset)
	}
	return &Keyring{keys: keys, active: active}, nil
}

// ActiveKeyID is the key id new records are wrapped with
func (k *Keyring) ActiveKeyID() string {
	return k.active
}

// Seal implements domain.RecordCipher
func (k *Keyring) Seal(plaintext, aad []byte) ([]byte, []byte, string, error) {
	dataKey := make([]byte, dataKeySize)
	if _, err := rand.Read(dataKey); err != nil {
		return nil, nil, "", fmt.Errorf("generate data key: %w", err)
	}

	ciphertext, err := seal(dataKey, plaintext, aad)
	if err != nil {
		return nil, nil, "", err
	}
	wrapped, err := seal(k.keys[k.active], dataKey, wrapAAD(k.active, aad))
	if err != nil {
		return nil, nil, "", err
	}
	return ciphertext, wrapped, k.active, nil
}

// Open implements domain.RecordCipher. Every failure is reported as
// ErrDecryptionFailed.
func (k *Keyring) Open(ciphertext, wrappedKey []byte, keyID string, aad []byte) ([]byte, error) {
	kek, ok := k.keys[keyID]
	if !ok {
		return nil, fmt.Errorf("%w: unknown key id %q", domain.ErrDecryptionFailed, keyID)
	}

	dataKey, err := open(kek, wrappedKey, wrapAAD(keyID, aad))
	if err != nil {
		return nil, fmt.Errorf("%w: unwrap data key: %v", domain.ErrDecryptionFailed, err)
	}
	plaintext, err := open(dataKey, ciphertext, aad)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDecryptionFailed, err)
	}
	return plaintext, nil
}

// wrapAAD binds a wrapped data key to both its key id and its record
func wrapAAD(keyID string, aad []byte) []byte {
	out := make([]byte, 0, len(keyID)+1+len(aad))
	out = append(out, keyID...)
	out = append(out, 0)
	return append(out, aad...)
}

// seal returns nonce || ciphertext
func seal(key, plaintext, aad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return aead.Seal(nonce, nonce, plaintext, aad), nil
}

func open(key, sealed, aad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	if len(sealed) < aead.NonceSize()+aead.Overhead() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, body := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	return aead.Open(nil, nonce, body, aad)
}
