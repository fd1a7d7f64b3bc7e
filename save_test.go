// File: confy/save_test.go
package confy

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSaveBasics tests destination handling
func TestSaveBasics(t *testing.T) {
	t.Run("NoDestination", func(t *testing.T) {
		cfg := New()
		cfg.Set("a", 1)
		assert.ErrorIs(t, cfg.Save(""), ErrNoConfigPath)
	})

	t.Run("ExplicitDestinationIsRemembered", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "out.toml")
		cfg := New()
		cfg.Set("a", 1)

		require.NoError(t, cfg.Save(dest))
		assert.Equal(t, dest, cfg.Path())

		// Subsequent saves may omit the path
		cfg.Set("a", 2)
		require.NoError(t, cfg.Save(""))

		reloaded := New()
		require.NoError(t, reloaded.Load(dest))
		a, _ := reloaded.Get("a")
		assert.Equal(t, int64(2), a)
	})

	t.Run("CreatesParentDirectories", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "deep", "nested", "out.toml")
		cfg := New()
		cfg.Set("a", 1)

		require.NoError(t, cfg.Save(dest))
		_, err := os.Stat(dest)
		assert.NoError(t, err)
	})
}

// TestSaveRoundTrip tests load-save-load equivalence
func TestSaveRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "secret.txt"), "abc\n")
	configFile := filepath.Join(tmpDir, "app.toml")
	writeFile(t, configFile, `
debug = true

[database]
host = "localhost"
port = 5432

[secrets]
key = "file://secret.txt"
`)

	cfg := New()
	require.NoError(t, cfg.Load(configFile))
	require.NoError(t, cfg.Save(""))

	reloaded := New()
	require.NoError(t, reloaded.Load(configFile))

	for _, path := range []string{"debug", "database.host", "database.port", "secrets.key"} {
		want, _ := cfg.Get(path)
		got, ok := reloaded.Get(path)
		assert.True(t, ok, path)
		assert.Equal(t, want, got, path)
	}

	// The live tree keeps the dereferenced value after save
	key, _ := cfg.Get("secrets.key")
	assert.Equal(t, "abc", key)

	// The saved document carries the marker, not the secret
	raw, err := os.ReadFile(configFile)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "file://secret.txt")
	assert.NotContains(t, string(raw), "abc")

	// The target file was never set, so its contents are untouched
	content, err := os.ReadFile(filepath.Join(tmpDir, "secret.txt"))
	require.NoError(t, err)
	assert.Equal(t, "abc\n", string(content))
}

// TestSaveIdempotent tests byte-for-byte stability
func TestSaveIdempotent(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "secret.txt"), "abc")
	configFile := filepath.Join(tmpDir, "app.toml")
	writeFile(t, configFile, `
debug = true

[secrets]
key = "file://secret.txt"

[server]
host = "x"
port = 1
`)

	cfg := New()
	require.NoError(t, cfg.Load(configFile))

	require.NoError(t, cfg.Save(""))
	first, err := os.ReadFile(configFile)
	require.NoError(t, err)

	require.NoError(t, cfg.Save(""))
	second, err := os.ReadFile(configFile)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

// TestWriteBack tests pushing set() values out to marker targets
func TestWriteBack(t *testing.T) {
	t.Run("ModifiedValueReachesTarget", func(t *testing.T) {
		tmpDir := t.TempDir()
		target := filepath.Join(tmpDir, "secret.txt")
		writeFile(t, target, "abc")
		configFile := filepath.Join(tmpDir, "app.toml")
		writeFile(t, configFile, "[secrets]\nkey = \"file://secret.txt\"\n")

		cfg := New()
		require.NoError(t, cfg.Load(configFile))
		cfg.Set("secrets.key", "xyz")
		require.NoError(t, cfg.Save(""))

		content, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, "xyz", string(content))

		reloaded := New()
		require.NoError(t, reloaded.Load(configFile))
		key, _ := reloaded.Get("secrets.key")
		assert.Equal(t, "xyz", key)
	})

	t.Run("MissingTargetCreatedAfterSet", func(t *testing.T) {
		tmpDir := t.TempDir()
		target := filepath.Join(tmpDir, "new", "secret.txt")
		configFile := filepath.Join(tmpDir, "app.toml")
		writeFile(t, configFile, "[secrets]\nkey = \"file://new/secret.txt\"\n")

		rec := &warnRecorder{}
		cfg := New()
		cfg.SetWarnHandler(rec.warnf)
		require.NoError(t, cfg.Load(configFile))
		assert.True(t, rec.contains("file not found"))

		cfg.Set("secrets.key", "fresh")
		require.NoError(t, cfg.Save(""))

		content, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, "fresh", string(content))
	})

	t.Run("UnresolvedMarkerNotPushedOut", func(t *testing.T) {
		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, "app.toml")
		writeFile(t, configFile, "[secrets]\nkey = \"file://absent.txt\"\n")

		cfg := New()
		cfg.SetWarnHandler(func(string, ...any) {})
		require.NoError(t, cfg.Load(configFile))
		require.NoError(t, cfg.Save(""))

		_, err := os.Stat(filepath.Join(tmpDir, "absent.txt"))
		assert.True(t, os.IsNotExist(err))

		// The marker survives the round trip
		raw, err := os.ReadFile(configFile)
		require.NoError(t, err)
		assert.Contains(t, string(raw), "file://absent.txt")
	})

	t.Run("UnwritableTargetWarnsAndContinues", func(t *testing.T) {
		tmpDir := t.TempDir()
		// "blocker" is a regular file, so the target's parent
		// directory can never be created.
		writeFile(t, filepath.Join(tmpDir, "blocker"), "in the way")
		good := filepath.Join(tmpDir, "good.txt")
		writeFile(t, good, "old")
		configFile := filepath.Join(tmpDir, "app.toml")
		writeFile(t, configFile, `
[secrets]
bad = "file://blocker/secret.txt"
good = "file://good.txt"
`)

		rec := &warnRecorder{}
		cfg := New()
		cfg.SetWarnHandler(rec.warnf)
		require.NoError(t, cfg.Load(configFile))

		cfg.Set("secrets.bad", "lost")
		cfg.Set("secrets.good", "updated")
		require.NoError(t, cfg.Save(""))
		assert.True(t, rec.contains("could not create directory"))

		// The healthy target and the document itself still got written
		content, err := os.ReadFile(good)
		require.NoError(t, err)
		assert.Equal(t, "updated", string(content))

		raw, err := os.ReadFile(configFile)
		require.NoError(t, err)
		assert.Contains(t, string(raw), "file://blocker/secret.txt")
		assert.Contains(t, string(raw), "file://good.txt")
	})

	t.Run("TargetIsDirectoryWarnsAndContinues", func(t *testing.T) {
		tmpDir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "secret.txt"), 0755))
		configFile := filepath.Join(tmpDir, "app.toml")
		writeFile(t, configFile, "key = \"file://secret.txt\"\n")

		rec := &warnRecorder{}
		cfg := New()
		cfg.SetWarnHandler(rec.warnf)
		require.NoError(t, cfg.Load(configFile))

		cfg.Set("key", "value")
		require.NoError(t, cfg.Save(""))
		assert.True(t, rec.contains("could not write file"))

		raw, err := os.ReadFile(configFile)
		require.NoError(t, err)
		assert.Contains(t, string(raw), "file://secret.txt")
	})

	t.Run("NonStringValueStringified", func(t *testing.T) {
		tmpDir := t.TempDir()
		target := filepath.Join(tmpDir, "count.txt")
		writeFile(t, target, "1")
		configFile := filepath.Join(tmpDir, "app.toml")
		writeFile(t, configFile, "count = \"file://count.txt\"\n")

		cfg := New()
		require.NoError(t, cfg.Load(configFile))
		cfg.Set("count", 42)
		require.NoError(t, cfg.Save(""))

		content, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, "42", string(content))
	})
}

// TestMarkerRestoration tests marker form in the serialized document
func TestMarkerRestoration(t *testing.T) {
	t.Run("RelativeFormPreserved", func(t *testing.T) {
		tmpDir := t.TempDir()
		writeFile(t, filepath.Join(tmpDir, "cfg", "secrets", "key.txt"), "v")
		configFile := filepath.Join(tmpDir, "cfg", "app.toml")
		writeFile(t, configFile, "[secrets]\nkey = \"file://secrets/key.txt\"\n")

		cfg := New()
		require.NoError(t, cfg.Load(configFile))
		require.NoError(t, cfg.Save(""))

		raw, err := os.ReadFile(configFile)
		require.NoError(t, err)
		assert.Contains(t, string(raw), "file://secrets/key.txt")
	})

	t.Run("AbsoluteFormOutsideDocumentDirectory", func(t *testing.T) {
		docDir := t.TempDir()
		otherDir := t.TempDir()
		target := filepath.Join(otherDir, "key.txt")
		writeFile(t, target, "v")
		configFile := filepath.Join(docDir, "app.toml")
		writeFile(t, configFile, fmt.Sprintf("key = \"file://%s\"\n", target))

		cfg := New()
		require.NoError(t, cfg.Load(configFile))

		// Saving into a different directory keeps the absolute form
		dest := filepath.Join(t.TempDir(), "moved.toml")
		require.NoError(t, cfg.Save(dest))

		raw, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Contains(t, string(raw), "file://"+target)
	})

	t.Run("StaleMappingSkipped", func(t *testing.T) {
		tmpDir := t.TempDir()
		target := filepath.Join(tmpDir, "secret.txt")
		writeFile(t, target, "abc")
		configFile := filepath.Join(tmpDir, "app.toml")
		writeFile(t, configFile, "[secrets]\nkey = \"file://secret.txt\"\n")

		cfg := New()
		require.NoError(t, cfg.Load(configFile))

		// Replace the whole section; the mapping for secrets.key is
		// now structurally unreachable and must be skipped silently.
		cfg.Set("secrets", "superseded")
		require.NoError(t, cfg.Save(""))

		raw, err := os.ReadFile(configFile)
		require.NoError(t, err)
		assert.Contains(t, string(raw), `secrets = "superseded"`)
		assert.NotContains(t, string(raw), "file://")

		// The old target is left alone
		content, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, "abc", string(content))
	})

	t.Run("RemovedKeySkipped", func(t *testing.T) {
		tmpDir := t.TempDir()
		writeFile(t, filepath.Join(tmpDir, "secret.txt"), "abc")
		configFile := filepath.Join(tmpDir, "app.toml")
		writeFile(t, configFile, "[secrets]\nkey = \"file://secret.txt\"\nkeep = 1\n")

		cfg := New()
		require.NoError(t, cfg.Load(configFile))
		delete(cfg.data["secrets"].(map[string]any), "key")
		require.NoError(t, cfg.Save(""))

		raw, err := os.ReadFile(configFile)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "file://")
		assert.Contains(t, string(raw), "keep = 1")
	})
}
