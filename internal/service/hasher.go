package service

import (
	"encoding/hex"

	"golang.org/x/crypto/argon2"
)

// CredentialHasher turns a plaintext secret into a stored/comparable digest.
// Hash must be deterministic: login matches records by digest equality.
type CredentialHasher interface {
	Hash(plaintext string) string
}

// Argon2id parameters; memory is in KiB.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

// Argon2Hasher derives digests with Argon2id. The deployment-wide pepper
// serves as the salt, keeping digests deterministic across calls — the
// credential lookup compares digests for equality.
type Argon2Hasher struct {
	pepper []byte
}

func NewArgon2Hasher(pepper string) *Argon2Hasher {
	return &Argon2Hasher{pepper: []byte(pepper)}
}

var _ CredentialHasher = (*Argon2Hasher)(nil)

func (h *Argon2Hasher) Hash(plaintext string) string {
	sum := argon2.IDKey([]byte(plaintext), h.pepper, argonTime, argonMemory, argonThreads, argonKeyLen)
	return hex.EncodeToString(sum)
}
