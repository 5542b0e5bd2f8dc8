// Package stdimg: authoritative registry of engine commands.
//
// This file mirrors the commands implemented by Engine.Apply in
// pkg/stdimg/engine.go. Keep this list up-to-date when you add or
// modify commands so callers (CLI, docs, help text) can read a single
// source of truth.

package stdimg

// ArgSpec describes a single argument for a command. Fields are textual
// and intended for help/validation UI rather than machine-enforced typing.
type ArgSpec struct {
	Name        string // human name
	Type        string // "int", "float", "enum", "string"
	Required    bool
	Default     string // textual default (for help only)
	Description string
}

// CommandSpec defines a single command and its expected arguments.
type CommandSpec struct {
	Name        string
	Args        []ArgSpec
	Usage       string // short usage string
	Description string // brief description
}

var resamplerArg = ArgSpec{"resampler", "enum", false, "catmullrom", "resampling kernel (nearest, bilinear, lanczos3, ...)"}

func perspectiveArgs() []ArgSpec {
	var args []ArgSpec
	for _, n := range []string{"0", "1", "2", "3"} {
		args = append(args,
			ArgSpec{"x" + n, "float", true, "", "destination x of source corner " + n},
			ArgSpec{"y" + n, "float", true, "", "destination y of source corner " + n},
		)
	}
	return append(args, resamplerArg)
}

// Commands is the authoritative list of commands implemented by the engine.
var Commands = []CommandSpec{
	{
		Name:        "perspective",
		Args:        perspectiveArgs(),
		Usage:       "perspective <x0> <y0> <x1> <y1> <x2> <y2> <x3> <y3> [resampler]",
		Description: "Move the corners (top-left, top-right, bottom-right, bottom-left) to new positions.",
	},
	{
		Name: "taper",
		Args: []ArgSpec{
			{"side", "enum", true, "", "edge to shrink: left, top, right, bottom"},
			{"corner", "enum", false, "both", "end that stays fixed: leftortop, rightorbottom, both"},
			{"fraction", "float", true, "", "new length of the edge, 0 < fraction"},
			resamplerArg,
		},
		Usage:       "taper <side> [corner] <fraction> [resampler]",
		Description: "Keystone one side of the image.",
	},
	{
		Name:        "rotate",
		Args:        []ArgSpec{{"degrees", "float", true, "", "clockwise rotation"}, resamplerArg},
		Usage:       "rotate <degrees> [resampler]",
		Description: "Rotate about the centre, growing the canvas to fit.",
	},
	{
		Name: "skew",
		Args: []ArgSpec{
			{"degreesX", "float", true, "", "horizontal shear angle"},
			{"degreesY", "float", false, "0", "vertical shear angle"},
			resamplerArg,
		},
		Usage:       "skew <degreesX> [degreesY] [resampler]",
		Description: "Shear about the centre, growing the canvas to fit.",
	},
	{
		Name:        "resize",
		Args:        []ArgSpec{{"width", "int", true, "", "output width"}, {"height", "int", true, "", "output height"}, resamplerArg},
		Usage:       "resize <width> <height> [resampler]",
		Description: "Resize through the projective resampler.",
	},
	{
		Name: "matrix",
		Args: []ArgSpec{
			{"m11", "float", true, "1", ""}, {"m12", "float", true, "0", ""}, {"m13", "float", true, "0", "x perspective term"},
			{"m21", "float", true, "0", ""}, {"m22", "float", true, "1", ""}, {"m23", "float", true, "0", "y perspective term"},
			{"m31", "float", true, "0", "x translation"}, {"m32", "float", true, "0", "y translation"}, {"m33", "float", true, "1", ""},
			resamplerArg,
		},
		Usage:       "matrix <m11> <m12> <m13> <m21> <m22> <m23> <m31> <m32> <m33> [resampler]",
		Description: "Apply a 3x3 homography (row-vector convention) and fit the result.",
	},
	{
		Name:        "flip",
		Args:        []ArgSpec{},
		Usage:       "flip",
		Description: "Mirror vertically.",
	},
	{
		Name:        "flop",
		Args:        []ArgSpec{},
		Usage:       "flop",
		Description: "Mirror horizontally.",
	},
	{
		Name:        "trim",
		Args:        []ArgSpec{{"fuzz", "float", false, "0", "colour distance (0..255) still treated as border"}},
		Usage:       "trim [fuzz]",
		Description: "Crop borders matching the top-left pixel, such as the margin a transform leaves.",
	},
	{
		Name:        "identify",
		Args:        []ArgSpec{},
		Usage:       "identify",
		Description: "Print image information.",
	},
	{
		Name:        "strip",
		Args:        []ArgSpec{},
		Usage:       "strip",
		Description: "Drop metadata (saving re-encodes without it).",
	},
}

// LookupCommand returns the command registered under name.
func LookupCommand(name string) (CommandSpec, bool) {
	for _, c := range Commands {
		if c.Name == name {
			return c, true
		}
	}
	return CommandSpec{}, false
}
