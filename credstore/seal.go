package credstore

import (
	"crypto/rand"

	"github.com/pkg/errors"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

const sealSaltLength = 16

// scrypt parameters follow the package's recommended interactive defaults.
const (
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

// sealer encrypts the state file at rest. The key is derived per write from
// the passphrase and a fresh random salt, so two seals of the same plaintext
// never produce the same bytes.
type sealer struct {
	passphrase []byte
}

func newSealer(passphrase string) *sealer {
	return &sealer{passphrase: []byte(passphrase)}
}

func (s *sealer) key(salt []byte) ([]byte, error) {
	key, err := scrypt.Key(s.passphrase, salt, scryptN, scryptR, scryptP, chacha20poly1305.KeySize)
	if err != nil {
		return nil, errors.Wrap(err, "[sealer.key] scrypt")
	}
	return key, nil
}

// seal returns salt || nonce || ciphertext.
func (s *sealer) seal(plaintext []byte) ([]byte, error) {
	salt := make([]byte, sealSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, errors.Wrap(err, "[sealer.seal] rand salt")
	}
	key, err := s.key(salt)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, errors.Wrap(err, "[sealer.seal] new aead")
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, errors.Wrap(err, "[sealer.seal] rand nonce")
	}
	out := make([]byte, 0, len(salt)+len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plaintext, nil), nil
}

func (s *sealer) open(sealed []byte) ([]byte, error) {
	if len(sealed) < sealSaltLength+chacha20poly1305.NonceSize {
		return nil, ErrSealedCorrupt
	}
	salt := sealed[:sealSaltLength]
	nonce := sealed[sealSaltLength : sealSaltLength+chacha20poly1305.NonceSize]
	ciphertext := sealed[sealSaltLength+chacha20poly1305.NonceSize:]

	key, err := s.key(salt)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, errors.Wrap(err, "[sealer.open] new aead")
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrSealedCorrupt
	}
	return plaintext, nil
}
