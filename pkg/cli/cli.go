package cli

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Fepozopo/tilt/pkg/config"
	"github.com/Fepozopo/tilt/pkg/stdimg"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "Commands available:")
	fmt.Fprintln(w, "  /  - select and apply command")
	fmt.Fprintln(w, "  o  - open another image at runtime")
	fmt.Fprintln(w, "  s  - save current image")
	fmt.Fprintln(w, "  u  - check for updates")
	fmt.Fprintln(w, "  h  - show this help message")
	fmt.Fprintln(w, "  q  - quit")
}

// Editor is the interactive session state: the current image plus the
// engine and prompts used to change it.
type Editor struct {
	cfg    *config.Configuration
	engine *stdimg.Engine
	store  *StdMetaStore
	p      *Prompter
	errOut io.Writer

	selectCommand func([]stdimg.CommandSpec) (string, error)
	selectFile    func(startDir string) (string, error)
	checkUpdates  func(*Prompter) error

	cur    image.Image
	path   string
	format string
}

// NewEditor returns an editor reading keys and answers from in.
func NewEditor(cfg *config.Configuration, in io.Reader, out, errOut io.Writer) *Editor {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Editor{
		cfg:           cfg,
		engine:        stdimg.NewEngine(cfg),
		store:         NewMetaStoreFromStdimg(stdimg.Commands),
		p:             NewPrompter(in, out),
		errOut:        errOut,
		selectCommand: SelectCommandWithFzf,
		selectFile:    SelectFileWithFzf,
		checkUpdates:  CheckForUpdates,
	}
}

// Image returns the image currently being edited, or nil.
func (e *Editor) Image() image.Image { return e.cur }

// Open loads path and makes it the current image.
func (e *Editor) Open(path string) error {
	img, format, err := LoadImage(path)
	if err != nil {
		return fmt.Errorf("failed to read image %s: %w", path, err)
	}
	e.cur, e.path, e.format = img, path, format
	e.cfg.Log().Debug("opened image", "path", path, "format", format, "bounds", img.Bounds())
	e.printInfo()
	return nil
}

func (e *Editor) printInfo() {
	if info, err := GetImageInfoImage(e.cur, e.format); err == nil {
		fmt.Fprintln(e.p.out, info)
	}
}

// Run reads single-key commands until q or end of input.
func (e *Editor) Run() error {
	fmt.Fprintln(e.p.out, "Terminal Image Transformer")
	usage(e.p.out)
	for {
		line, err := e.p.PromptLine("> ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read input error: %w", err)
		}
		if line == "" {
			continue
		}

		switch line[0] {
		case '/':
			if e.cur == nil {
				fmt.Fprintln(e.p.out, "No image loaded. Press 'o' to open an image first, or provide an image path as the first argument.")
				continue
			}
			if err := e.applyCommand(); err != nil {
				fmt.Fprintf(e.errOut, "%v\n", err)
			}

		case 's':
			if e.cur == nil {
				fmt.Fprintln(e.p.out, "No image loaded.")
				continue
			}
			out, _ := e.p.PromptLineOrFzf("Enter output filename: ")
			if out == "" {
				fmt.Fprintln(e.p.out, "no filename provided")
				continue
			}
			if err := SaveImage(out, e.cur); err != nil {
				fmt.Fprintf(e.errOut, "failed to write image: %v\n", err)
				continue
			}
			fmt.Fprintf(e.p.out, "Saved to %s\n", out)

		case 'o':
			path, err := e.selectFile(".")
			if err != nil || path == "" {
				path, _ = e.p.PromptLine("Enter path to image to open (leave empty to cancel): ")
				if path == "" {
					fmt.Fprintln(e.p.out, "open cancelled")
					continue
				}
			}
			if err := e.Open(path); err != nil {
				fmt.Fprintf(e.errOut, "%v\n", err)
				continue
			}
			fmt.Fprintf(e.p.out, "Opened %s\n", path)

		case 'u':
			if err := e.checkUpdates(e.p); err != nil {
				fmt.Fprintf(e.errOut, "update check error: %v\n", err)
			}

		case 'h':
			usage(e.p.out)

		case 'q':
			fmt.Fprintln(e.p.out, "Exiting...")
			return nil
		}
	}
}

// chooseCommand asks fzf for a command, falling back to a numbered list that
// also accepts a full name or a unique prefix. An empty name means cancelled.
func (e *Editor) chooseCommand() (string, error) {
	if name, err := e.selectCommand(stdimg.Commands); err == nil && name != "" {
		return name, nil
	}
	fmt.Fprintln(e.p.out, "Command selection (fallback):")
	for i, c := range stdimg.Commands {
		fmt.Fprintf(e.p.out, "  %d) %s - %s\n", i+1, c.Name, c.Description)
	}
	selection, err := e.p.PromptLine("Enter number or command name (leave empty to cancel): ")
	if err != nil || selection == "" {
		return "", err
	}
	if idx, perr := strconv.Atoi(selection); perr == nil {
		if idx < 1 || idx > len(stdimg.Commands) {
			return "", fmt.Errorf("invalid selection")
		}
		return stdimg.Commands[idx-1].Name, nil
	}
	sel := strings.ToLower(selection)
	var matches []string
	for _, c := range stdimg.Commands {
		if c.Name == sel {
			return c.Name, nil
		}
		if strings.HasPrefix(c.Name, sel) {
			matches = append(matches, c.Name)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("unknown command: %s", selection)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("ambiguous selection, candidates: %s", strings.Join(matches, ", "))
	}
}

func (e *Editor) applyCommand() error {
	name, err := e.chooseCommand()
	if err != nil {
		return err
	}
	if name == "" {
		fmt.Fprintln(e.p.out, "selection cancelled")
		return nil
	}
	c, ok := stdimg.LookupCommand(name)
	if !ok {
		return fmt.Errorf("unknown command: %s", name)
	}
	tooltip, rules, _ := e.store.GetCommandHelp(name)
	fmt.Fprintln(e.p.out, "\n"+tooltip+"\n")

	rawArgs := make([]string, len(c.Args))
	for i, a := range c.Args {
		label := a.Type
		if opts := rules[a.Name].EnumOptions; len(opts) > 0 {
			label = "enum: " + strings.Join(opts, "|")
		}
		val, err := e.p.PromptLine(fmt.Sprintf("%s (%s): ", a.Name, label))
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("input error: %w", err)
		}
		rawArgs[i] = val
	}

	args, err := NormalizeArgsFromStd(e.store, name, rawArgs)
	if err != nil {
		return fmt.Errorf("input validation error: %w", err)
	}

	start := time.Now()
	out, err := e.engine.Apply(e.cur, name, args)
	if err != nil {
		return fmt.Errorf("apply command error: %w", err)
	}
	e.cfg.Log().Info("command applied", "command", name, "args", args, "elapsed", time.Since(start))
	if out != nil {
		e.cur = out
	}
	fmt.Fprintf(e.p.out, "Applied %s\n", name)
	switch name {
	case "identify":
		if e.path != "" {
			fmt.Fprintf(e.p.out, "Path: %s\n", e.path)
		}
		fmt.Fprintf(e.p.out, "Pixel layout: %T, Default resampler: %s\n", e.cur, e.engine.Resampler)
	case "strip":
		fmt.Fprintln(e.p.out, "metadata cleared")
	}
	e.printInfo()
	return nil
}

// RunCLI starts an interactive session on the terminal. args[0], when
// present, is opened before the first prompt.
func RunCLI(cfg *config.Configuration, args []string) error {
	e := NewEditor(cfg, os.Stdin, os.Stdout, os.Stderr)
	if len(args) > 0 && args[0] != "" {
		if err := e.Open(args[0]); err != nil {
			return err
		}
	}
	return e.Run()
}
