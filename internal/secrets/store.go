package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/crypto/hkdf"
)

// Per-user secret store (file, 0600) holding aggregator access credentials
// encrypted with AES-GCM. Not a replacement for OS keychains but keeps tokens
// out of sqlite and plain-text config.

const (
	fileName = "secrets.json"
	keyInfo  = "linkwise-secrets-v1"
)

// ErrNotFound is returned by Get for unknown names.
var ErrNotFound = errors.New("secret not found")

type secretFile struct {
	Secrets map[string]string `json:"secrets"` // name -> base64(nonce|ciphertext)
}

// Store is a file-backed secret store rooted at one directory.
type Store struct {
	dir  string
	seed string
	mu   sync.Mutex
}

// Open returns a store under dir, falling back to the user config dir when
// dir is empty.
func Open(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(base, "linkwise")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil { // restrict directory
		return nil, err
	}
	return &Store{dir: dir, seed: fmt.Sprintf("linkwise-%s-%s", runtime.GOOS, os.Getenv("USER"))}, nil
}

func (s *Store) path() string { return filepath.Join(s.dir, fileName) }

func (s *Store) Put(name, value string) error {
	if name = norm(name); name == "" {
		return fmt.Errorf("secret name required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sf, err := load(s.path())
	if err != nil {
		return err
	}
	if sf.Secrets == nil {
		sf.Secrets = map[string]string{}
	}
	ct, err := s.encrypt([]byte(value))
	if err != nil {
		return err
	}
	sf.Secrets[name] = base64.StdEncoding.EncodeToString(ct)
	return save(s.path(), sf)
}

func (s *Store) Get(name string) (string, error) {
	if name = norm(name); name == "" {
		return "", fmt.Errorf("secret name required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sf, err := load(s.path())
	if err != nil {
		return "", err
	}
	enc, ok := sf.Secrets[name]
	if !ok {
		return "", fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return "", err
	}
	pt, err := s.decrypt(raw)
	if err != nil {
		return "", err
	}
	return string(pt), nil
}

// Delete removes name. Unknown names are not an error.
func (s *Store) Delete(name string) error {
	if name = norm(name); name == "" {
		return fmt.Errorf("secret name required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sf, err := load(s.path())
	if err != nil {
		return err
	}
	if _, ok := sf.Secrets[name]; !ok {
		return nil
	}
	delete(sf.Secrets, name)
	return save(s.path(), sf)
}

// Clear removes every secret.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func load(path string) (secretFile, error) {
	var sf secretFile
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return secretFile{}, nil
		}
		return sf, err
	}
	if err := json.Unmarshal(data, &sf); err != nil {
		return sf, err
	}
	return sf, nil
}

func save(path string, sf secretFile) error {
	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func norm(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

// masterKey derives the AES key from the per-user seed with HKDF-SHA256.
func (s *Store) masterKey() ([]byte, error) {
	h := hkdf.New(sha256.New, []byte(s.seed), []byte(s.dir), []byte(keyInfo))
	key := make([]byte, 32)
	if _, err := io.ReadFull(h, key); err != nil {
		return nil, err
	}
	return key, nil
}

func (s *Store) gcm() (cipher.AEAD, error) {
	key, err := s.masterKey()
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func (s *Store) encrypt(plain []byte) ([]byte, error) {
	gcm, err := s.gcm()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plain, nil), nil
}

func (s *Store) decrypt(data []byte) ([]byte, error) {
	gcm, err := s.gcm()
	if err != nil {
		return nil, err
	}
	if len(data) < gcm.NonceSize() {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce, ct := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ct, nil)
}
