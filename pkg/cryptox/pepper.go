package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Configuration for Argon2id hashing. These are process-wide and immutable;
// changing them only affects newly minted hashes since the parameters are
// carried in each PHC string.
const (
	memory      = 19 * 1024 // Memory usage in KiB (19 MiB)
	iterations  = 2         // Iteration count
	parallelism = 1         // Number of threads
	keyLength   = 32        // Length of the generated hash
	saltLength  = 16        // Length of the salt
)

var (
	// Pepper is loaded from a file once, or generated on first boot.
	pepper     string
	pepperOnce sync.Once
	pepperFile string
)

// SetPepperPath configures where the pepper file lives. Must be called before
// the first hash or verify; calling it again re-arms loading from the new
// path.
func SetPepperPath(file string) {
	pepperFile = file
	pepper = ""
	pepperOnce = sync.Once{}
}

// GetPepper returns the process-wide pepper, loading or generating it on
// first use. Concurrent first callers all observe the same value. Losing the
// pepper invalidates every stored hash, so failure to load is fatal.
func GetPepper() string {
	pepperOnce.Do(func() {
		var err error
		pepper, err = loadOrGeneratePepper()
		if err != nil {
			slog.Error("failed to load or generate pepper", slog.Any("err", err))
			os.Exit(1)
		}
	})

	return pepper
}

// loadOrGeneratePepper loads the pepper from a file or generates one if not found.
func loadOrGeneratePepper() (string, error) {
	pepperFile = filepath.Clean(pepperFile)
	pepperDir := filepath.Dir(pepperFile)
	if err := os.MkdirAll(pepperDir, 0750); err != nil {
		return "", err
	}

	if _, err := os.Stat(pepperFile); os.IsNotExist(err) {
		pepperBytes := make([]byte, keyLength)
		if _, err := rand.Read(pepperBytes); err != nil {
			return "", err
		}
		pepper := base64.RawURLEncoding.EncodeToString(pepperBytes)

		if err := os.WriteFile(pepperFile, []byte(pepper), 0600); err != nil {
			return "", err
		}
		return pepper, nil
	}

	pepperBytes, err := os.ReadFile(pepperFile)
	if err != nil {
		return "", err
	}

	return string(pepperBytes), nil
}
