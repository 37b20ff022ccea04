package cryptox

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// restoreTestPepper re-arms the pepper path set up by TestMain after a test
// that points it elsewhere.
func restoreTestPepper() {
	SetPepperPath(filepath.Join(os.TempDir(), "test-pepper"))
}

func TestGetPepperConcurrentFirstUse(t *testing.T) {
	t.Cleanup(restoreTestPepper)

	path := filepath.Join(t.TempDir(), "pepper")
	SetPepperPath(path)

	const callers = 16
	got := make([]string, callers)

	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i] = GetPepper()
		}()
	}
	wg.Wait()

	require.NotEmpty(t, got[0])
	for _, p := range got[1:] {
		require.Equal(t, got[0], p)
	}

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, got[0], string(onDisk))
}

func TestGetPepperLoadsExistingFile(t *testing.T) {
	t.Cleanup(restoreTestPepper)

	path := filepath.Join(t.TempDir(), "pepper")
	require.NoError(t, os.WriteFile(path, []byte("fixed-pepper-value"), 0600))
	SetPepperPath(path)

	require.Equal(t, "fixed-pepper-value", GetPepper())
}
