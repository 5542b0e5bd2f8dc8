package cli

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoadFormats(t *testing.T) {
	dir := t.TempDir()
	img := imaging.New(5, 3, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	cases := map[string]string{
		"a.png":  "png",
		"a.jpg":  "jpeg",
		"a.gif":  "gif",
		"a.bmp":  "bmp",
		"a.tiff": "tiff",
		"a.xyz":  "png",
	}
	for name, want := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, SaveImage(path, img))
			got, format, err := LoadImage(path)
			require.NoError(t, err)
			assert.Equal(t, want, format)
			assert.Equal(t, image.Pt(5, 3), got.Bounds().Size())
		})
	}
}

func TestLoadImageErrors(t *testing.T) {
	dir := t.TempDir()
	_, _, err := LoadImage(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)

	junk := filepath.Join(dir, "junk.png")
	require.NoError(t, os.WriteFile(junk, []byte("not an image"), 0o644))
	_, _, err = LoadImage(junk)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unrecognised image")

	assert.Error(t, SaveImage(filepath.Join(dir, "nil.png"), nil))
}

func TestGetImageInfoImage(t *testing.T) {
	info, err := GetImageInfoImage(image.NewNRGBA(image.Rect(0, 0, 7, 2)), "jpeg")
	require.NoError(t, err)
	assert.Equal(t, "Format: JPEG, Width: 7, Height: 2", info)

	info, err = GetImageInfoImage(image.NewGray(image.Rect(0, 0, 1, 1)), "")
	require.NoError(t, err)
	assert.Equal(t, "Format: unknown, Width: 1, Height: 1", info)

	_, err = GetImageInfoImage(nil, "png")
	assert.Error(t, err)
}
