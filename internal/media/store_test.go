package media

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "images"), filepath.Join(dir, "thumbs"), zerolog.Nop())
	return store, dir
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestSaveImageWritesThumbnail(t *testing.T) {
	store, _ := newTestStore(t)

	imagePath, thumbPath, err := store.SaveImage(bytes.NewReader(pngBytes(t, 900, 600)), "photo.png")
	require.NoError(t, err)
	assert.FileExists(t, imagePath)
	assert.FileExists(t, thumbPath)
	assert.True(t, strings.HasPrefix(filepath.Base(thumbPath), "t_"))

	// The thumbnail fits inside 400×400 and keeps the aspect ratio.
	in, err := os.Open(thumbPath)
	require.NoError(t, err)
	defer in.Close()
	cfg, format, err := image.DecodeConfig(in)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.LessOrEqual(t, cfg.Width, 400)
	assert.LessOrEqual(t, cfg.Height, 400)
	assert.Greater(t, cfg.Width, cfg.Height)
}

func TestSaveImageFallsBackToCopyOnBadData(t *testing.T) {
	store, _ := newTestStore(t)

	imagePath, thumbPath, err := store.SaveImage(strings.NewReader("not an image"), "broken.jpg")
	require.NoError(t, err)
	assert.FileExists(t, imagePath)
	require.NotEmpty(t, thumbPath)

	// Fallback keeps a byte-for-byte copy so the UI has something to show.
	data, err := os.ReadFile(thumbPath)
	require.NoError(t, err)
	assert.Equal(t, "not an image", string(data))
}

func TestUniqueFilenameDefaultsExtension(t *testing.T) {
	assert.True(t, strings.HasSuffix(uniqueFilename("photo"), ".jpg"))
	assert.True(t, strings.HasSuffix(uniqueFilename("photo.PNG"), ".png"))
}

func TestCopyToSoldAvoidsOverwrite(t *testing.T) {
	store, dir := newTestStore(t)
	soldDir := filepath.Join(dir, "sold", "inv-1")

	src := filepath.Join(dir, "src.jpg")
	require.NoError(t, os.WriteFile(src, []byte("one"), 0o644))

	first, err := store.CopyToSold(src, soldDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(soldDir, "src.jpg"), first)

	require.NoError(t, os.WriteFile(src, []byte("two"), 0o644))
	second, err := store.CopyToSold(src, soldDir)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	kept, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, "one", string(kept))
}

func TestRemoveIgnoresMissingFiles(t *testing.T) {
	store, dir := newTestStore(t)

	existing := filepath.Join(dir, "x.jpg")
	require.NoError(t, os.WriteFile(existing, []byte("x"), 0o644))

	store.Remove(existing, filepath.Join(dir, "missing.jpg"), "")
	assert.NoFileExists(t, existing)
}
