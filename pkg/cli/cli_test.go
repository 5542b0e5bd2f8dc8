package cli

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fepozopo/tilt/pkg/config"
	"github.com/Fepozopo/tilt/pkg/stdimg"
)

type session struct {
	*Editor
	stdout, stderr *bytes.Buffer
}

// newSession returns an editor fed with lines and no fzf.
func newSession(t *testing.T, lines ...string) *session {
	t.Helper()
	var stdout, stderr bytes.Buffer
	input := strings.Join(lines, "\n") + "\n"
	e := NewEditor(config.Default().WithParallelism(2), strings.NewReader(input), &stdout, &stderr)
	e.selectCommand = func([]stdimg.CommandSpec) (string, error) { return "", errors.New("no fzf") }
	e.selectFile = func(string) (string, error) { return "", errors.New("no fzf") }
	e.p.pickFile = e.selectFile
	return &session{Editor: e, stdout: &stdout, stderr: &stderr}
}

func writeSolidPNG(t *testing.T, w, h int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.png")
	require.NoError(t, imaging.Save(imaging.New(w, h, color.NRGBA{R: 200, G: 10, B: 40, A: 255}), path))
	return path
}

func TestEditorResizeAndSave(t *testing.T) {
	src := writeSolidPNG(t, 8, 4)
	out := filepath.Join(t.TempDir(), "out.png")

	s := newSession(t, "/", "4", "2", "nearest", "s", out, "q")
	s.selectCommand = func([]stdimg.CommandSpec) (string, error) { return "resize", nil }
	require.NoError(t, s.Open(src))
	require.NoError(t, s.Run())

	assert.Empty(t, s.stderr.String())
	assert.Contains(t, s.stdout.String(), "Applied resize")
	assert.Contains(t, s.stdout.String(), "Saved to "+out)
	assert.Equal(t, image.Pt(4, 2), s.Image().Bounds().Size())

	img, format, err := LoadImage(out)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, image.Pt(4, 2), img.Bounds().Size())
}

func TestEditorFallbackSelection(t *testing.T) {
	src := writeSolidPNG(t, 6, 2)

	s := newSession(t, "/", "rot", "90", "", "/", "2", "left", "", "0.5", "", "q")
	require.NoError(t, s.Open(src))
	require.NoError(t, s.Run())

	assert.Empty(t, s.stderr.String())
	assert.Contains(t, s.stdout.String(), "Command selection (fallback):")
	assert.Contains(t, s.stdout.String(), "Applied rotate")
	assert.Contains(t, s.stdout.String(), "Applied taper", "second choice is by number")
	assert.Equal(t, image.Pt(2, 6), s.Image().Bounds().Size())
}

func TestEditorReportsErrors(t *testing.T) {
	src := writeSolidPNG(t, 6, 2)

	s := newSession(t, "/", "zz", "/", "", "/", "resize", "0", "5", "", "q")
	require.NoError(t, s.Open(src))
	require.NoError(t, s.Run())

	assert.Contains(t, s.stderr.String(), "unknown command: zz")
	assert.Contains(t, s.stdout.String(), "selection cancelled")
	assert.Contains(t, s.stderr.String(), "input validation error")
	assert.Equal(t, image.Pt(6, 2), s.Image().Bounds().Size(), "failed commands leave the image alone")
}

func TestEditorWithoutImage(t *testing.T) {
	s := newSession(t, "/", "s", "h", "x")
	require.NoError(t, s.Run(), "end of input ends the session")
	assert.Contains(t, s.stdout.String(), "No image loaded.")
	assert.Nil(t, s.Image())
}

func TestEditorOpenAndIdentify(t *testing.T) {
	src := writeSolidPNG(t, 3, 5)

	s := newSession(t, "o", src, "/", "identify", "q")
	require.NoError(t, s.Run())

	assert.Empty(t, s.stderr.String())
	assert.Contains(t, s.stdout.String(), "Opened "+src)
	assert.Contains(t, s.stdout.String(), "Path: "+src)
	assert.Contains(t, s.stdout.String(), "Format: PNG, Width: 3, Height: 5")
	assert.Contains(t, s.stdout.String(), "Default resampler: catmullrom")

	s = newSession(t, "o", filepath.Join(t.TempDir(), "missing.png"), "q")
	require.NoError(t, s.Run())
	assert.Contains(t, s.stderr.String(), "failed to read image")
}

func TestEditorUpdateKey(t *testing.T) {
	s := newSession(t, "u", "u", "q")
	calls := 0
	s.checkUpdates = func(p *Prompter) error {
		calls++
		if calls == 2 {
			return errors.New("offline")
		}
		return nil
	}
	require.NoError(t, s.Run())
	assert.Equal(t, 2, calls)
	assert.Contains(t, s.stderr.String(), "update check error: offline")
}

func TestPromptLineOrFzf(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("/\ntyped.png\n/\n"), &out)
	p.pickFile = func(string) (string, error) { return "", errors.New("cancelled") }

	got, err := p.PromptLineOrFzf("file: ")
	require.NoError(t, err)
	assert.Equal(t, "typed.png", got)

	p.pickFile = func(string) (string, error) { return "picked.png", nil }
	got, err = p.PromptLineOrFzf("file: ")
	require.NoError(t, err)
	assert.Equal(t, "picked.png", got)
	assert.Contains(t, out.String(), "[fzf] picked.png")
}
