package bootstrap

import (
	"encoding/hex"
	"log/slog"

	"github.com/k2kurs/kursadmin/internal/data/cryptoutil"
)

// CreateEncryptor creates an AES-GCM encryptor for the cookie vault from the
// configured key. A 64-char hex string is used as the raw key; anything else
// is treated as a passphrase and hashed. An empty or unusable key yields a
// noop encryptor, which keeps cookie payloads readable on the wire, so it is
// only acceptable in development.
//
//nolint:ireturn // Returning interface is intentional for encryptor abstraction
func CreateEncryptor(key string, logger *slog.Logger) cryptoutil.Encryptor {
	if key == "" {
		logger.Warn("cookie encryption key is empty, using noop encryptor")
		return cryptoutil.NoopEncryptor{}
	}

	if decoded, err := hex.DecodeString(key); err == nil && len(decoded) == 32 {
		enc, encErr := cryptoutil.NewAESGCMEncryptor(decoded)
		if encErr == nil {
			return enc
		}
		logger.Warn("hex cookie key rejected, falling back to passphrase derivation", "error", encErr)
	}

	enc, err := cryptoutil.NewAESGCMEncryptorFromPassphrase(key)
	if err != nil {
		logger.Warn("failed to create encryptor, using noop encryptor", "error", err)
		return cryptoutil.NoopEncryptor{}
	}
	return enc
}
