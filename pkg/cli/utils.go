package cli

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// Prompter reads whole input lines from a single buffered reader so that no
// input is lost between prompts.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer

	// pickFile is invoked when the user answers a path prompt with "/".
	pickFile func(startDir string) (string, error)
}

// NewPrompter returns a Prompter reading from in and echoing prompts to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out, pickFile: SelectFileWithFzf}
}

// PromptLine displays a prompt and reads a full line of input from the user.
// The returned string is trimmed of surrounding whitespace (including the newline).
// A final line without a trailing newline is still returned.
func (p *Prompter) PromptLine(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// PromptLineOrFzf reads a full line and treats a single "/" as a request to
// pick a file with fzf. When fzf is unavailable or the selection is
// cancelled the prompt is shown again.
func (p *Prompter) PromptLineOrFzf(prompt string) (string, error) {
	input, err := p.PromptLine(prompt)
	if err != nil {
		return "", err
	}
	if input == "/" {
		sel, selErr := p.pickFile(".")
		if selErr == nil && sel != "" {
			fmt.Fprintf(p.out, " [fzf] %s\n", sel)
			return sel, nil
		}
		return p.PromptLine(prompt)
	}
	return input, nil
}

// LoadImage decodes the file at path, applying any EXIF orientation, and
// returns the image with the name of its format (png, jpeg, gif, bmp, tiff
// or webp).
func LoadImage(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	_, format, err := image.DecodeConfig(f)
	f.Close()
	if err != nil {
		return nil, "", fmt.Errorf("unrecognised image %s: %w", path, err)
	}
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", err
	}
	return img, format, nil
}

// SaveImage encodes img by the extension of path. Unknown extensions are
// written as PNG.
func SaveImage(path string, img image.Image) error {
	if img == nil {
		return fmt.Errorf("no image to save")
	}
	if _, err := imaging.FormatFromFilename(path); err == nil {
		return imaging.Save(img, path, imaging.JPEGQuality(92))
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := imaging.Encode(f, img, imaging.PNG); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// GetImageInfoImage returns a short info string for an image.Image
func GetImageInfoImage(img image.Image, format string) (string, error) {
	if img == nil {
		return "", fmt.Errorf("nil image")
	}
	if format == "" {
		format = "unknown"
	}
	b := img.Bounds()
	return fmt.Sprintf("Format: %s, Width: %d, Height: %d", strings.ToUpper(format), b.Dx(), b.Dy()), nil
}
