package batch

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpgm-asset-tool/internal/assets"
	"rpgm-asset-tool/internal/crypto"
)

// Leading bytes every genuine file of each kind carries.
var (
	pngPrelude = []byte{
		0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
		0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
	}
	oggPrelude = []byte{'O', 'g', 'g', 'S', 0x00, 0x02}
	m4aPrelude = []byte("\x00\x00\x00\x20ftypM4A ")
)

func mustKey(t *testing.T, hexKey string) crypto.Key {
	t.Helper()
	key, err := crypto.ParseKey(hexKey)
	require.NoError(t, err)
	return key
}

func writeAsset(t *testing.T, dir, name string, prelude []byte) []byte {
	t.Helper()
	data := append(append([]byte{}, prelude...), bytes.Repeat([]byte{0xA5, 0x3C}, 50)...)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0644))
	return data
}

func TestBatchEncryptDecryptRoundTrip(t *testing.T) {
	inDir := t.TempDir()
	encDir := t.TempDir()
	decDir := t.TempDir()
	key := mustKey(t, "00112233445566778899aabbccddeeff")

	plains := map[string][]byte{
		"actor.png": writeAsset(t, inDir, "actor.png", pngPrelude),
		"bgm.ogg":   writeAsset(t, inDir, "bgm.ogg", oggPrelude),
		"voice.m4a": writeAsset(t, inDir, "voice.m4a", m4aPrelude),
	}

	files, err := Collect(inDir, assets.EncryptExtensions)
	require.NoError(t, err)
	require.Len(t, files, 3)

	results := Run(Config{
		Mode:      Encrypt,
		OutputDir: encDir,
		Engine:    assets.MV,
		Key:       key,
		HaveKey:   true,
		Workers:   2,
	}, files)
	for _, r := range results {
		require.True(t, r.Success, r.Error)
	}

	encFiles, err := Collect(encDir, assets.DecryptExtensions)
	require.NoError(t, err)
	require.Len(t, encFiles, 3)
	for _, f := range encFiles {
		data, err := os.ReadFile(f)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, crypto.MagicHeader), "%s must carry the magic header", f)
	}

	results = Run(Config{
		Mode:      Decrypt,
		OutputDir: decDir,
		Key:       key,
		HaveKey:   true,
		Workers:   2,
	}, encFiles)
	for _, r := range results {
		require.True(t, r.Success, r.Error)
		assert.Equal(t, key.Hex(), r.Key)
	}

	for name, want := range plains {
		got, err := os.ReadFile(filepath.Join(decDir, name))
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
}

// Without an explicit key each PNG recovers its own: mixed-key
// directories decrypt file by file.
func TestBatchDecryptRecoversKeyPerFile(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()

	k1 := mustKey(t, "00112233445566778899aabbccddeeff")
	k2 := mustKey(t, "ffeeddccbbaa99887766554433221100")

	p1 := writeAsset(t, inDir, "a.png", pngPrelude)
	p2 := writeAsset(t, inDir, "b.png", pngPrelude)
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "a.rpgmvp"), crypto.Encrypt(p1, k1), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "b.rpgmvp"), crypto.Encrypt(p2, k2), 0644))

	files, err := Collect(inDir, assets.DecryptExtensions)
	require.NoError(t, err)
	require.Len(t, files, 2)

	results := Run(Config{Mode: Decrypt, OutputDir: outDir, Workers: 1}, files)
	keys := map[string]string{}
	for _, r := range results {
		require.True(t, r.Success, r.Error)
		keys[filepath.Base(r.Source)] = r.Key
	}
	assert.Equal(t, k1.Hex(), keys["a.rpgmvp"])
	assert.Equal(t, k2.Hex(), keys["b.rpgmvp"])

	got, err := os.ReadFile(filepath.Join(outDir, "a.png"))
	require.NoError(t, err)
	assert.Equal(t, p1, got)
}

func TestBatchDecryptWrongKeyFailsPerFile(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()

	k1 := mustKey(t, "00112233445566778899aabbccddeeff")
	k2 := mustKey(t, "ffeeddccbbaa99887766554433221100")

	plain := writeAsset(t, inDir, "actor.png", pngPrelude)
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "actor.rpgmvp"), crypto.Encrypt(plain, k1), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "other.rpgmvp"), crypto.Encrypt(plain, k2), 0644))

	files, err := Collect(inDir, assets.DecryptExtensions)
	require.NoError(t, err)

	results := Run(Config{Mode: Decrypt, OutputDir: outDir, Key: k1, HaveKey: true, Workers: 1}, files)

	byName := map[string]Result{}
	for _, r := range results {
		byName[filepath.Base(r.Source)] = r
	}
	assert.True(t, byName["actor.rpgmvp"].Success)

	bad := byName["other.rpgmvp"]
	assert.False(t, bad.Success)
	assert.Contains(t, bad.Error, "signature")
}

func TestBatchDecryptWritesThumbnail(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	key := mustKey(t, "00112233445566778899aabbccddeeff")

	// A real, decodable PNG so the thumbnail pipeline runs end to end.
	img := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}
	img.Set(3, 3, color.NRGBA{R: 0xFF, A: 0xFF})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	require.NoError(t, os.WriteFile(filepath.Join(inDir, "face.rpgmvp"), crypto.Encrypt(buf.Bytes(), key), 0644))

	results := Run(Config{
		Mode:      Decrypt,
		OutputDir: outDir,
		Key:       key,
		HaveKey:   true,
		Workers:   1,
		ThumbSize: 8,
	}, []string{filepath.Join(inDir, "face.rpgmvp")})
	require.Len(t, results, 1)
	require.True(t, results[0].Success, results[0].Error)

	info, err := os.Stat(filepath.Join(outDir, "thumbs", "face.webp"))
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestCollectFiltersByExtension(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.png", "b.ogg", "c.txt", "d.rpgmvp"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.png"), 0755))

	files, err := Collect(dir, assets.EncryptExtensions)
	require.NoError(t, err)

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = filepath.Base(f)
	}
	assert.ElementsMatch(t, []string{"a.png", "b.ogg"}, names)
}

func TestWriteManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	results := []Result{
		{Source: "a.rpgmvp", Output: "a.png", Key: "00ff", Success: true},
		{Source: "b.rpgmvp", Error: "malformed header"},
	}

	require.NoError(t, WriteManifest(path, results))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entries []ManifestEntry
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "ok", entries[0].Status)
	assert.Equal(t, "failed", entries[1].Status)
	assert.Equal(t, "malformed header", entries[1].Error)
}
