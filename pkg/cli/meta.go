package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Fepozopo/tilt/pkg/stdimg"
)

// ParamType is a small enum for parameter types used in metadata.
type ParamType string

const (
	ParamTypeInt    ParamType = "int"
	ParamTypeFloat  ParamType = "float"
	ParamTypeString ParamType = "string"
	ParamTypeEnum   ParamType = "enum"
)

// ValidationRule is a machine-friendly representation of the constraints
// that a UI or client can use to validate input before invoking a command.
type ValidationRule struct {
	Type        ParamType `json:"type"`
	Required    bool      `json:"required"`
	Min         *float64  `json:"min,omitempty"`
	EnumOptions []string  `json:"enumOptions,omitempty"` // valid when Type == ParamTypeEnum
	Example     string    `json:"example,omitempty"`
	Hint        string    `json:"hint,omitempty"`
}

// GenerateTooltipFromStdSpec produces a tooltip string from a stdimg.CommandSpec.
func GenerateTooltipFromStdSpec(c stdimg.CommandSpec) string {
	var sb strings.Builder
	if c.Description != "" {
		sb.WriteString(c.Description)
	} else {
		sb.WriteString("No description")
	}
	if len(c.Args) == 0 {
		sb.WriteString(" (no parameters)")
		return sb.String()
	}
	sb.WriteString("\nusage: " + c.Usage + "\nparameters:\n")
	for _, a := range c.Args {
		req := "optional"
		if a.Required {
			req = "required"
		}
		sb.WriteString(fmt.Sprintf("- %s (%s, %s)", a.Name, a.Type, req))
		if a.Description != "" {
			sb.WriteString(": " + a.Description)
		}
		if a.Default != "" {
			sb.WriteString(" (default: " + a.Default + ")")
		}
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}

// GenerateValidationRulesFromStdSpec creates ValidationRule entries from a stdimg.CommandSpec.
func GenerateValidationRulesFromStdSpec(c stdimg.CommandSpec) map[string]ValidationRule {
	rules := make(map[string]ValidationRule, len(c.Args))
	for _, a := range c.Args {
		var t ParamType
		switch strings.ToLower(a.Type) {
		case "int":
			t = ParamTypeInt
		case "float":
			t = ParamTypeFloat
		case "enum":
			t = ParamTypeEnum
		default:
			t = ParamTypeString
		}
		r := ValidationRule{Type: t, Required: a.Required, Hint: a.Description, Example: a.Default}
		if t == ParamTypeEnum {
			r.EnumOptions = enumOptions(a.Name)
		}
		if lo, ok := minimums[c.Name+"."+a.Name]; ok {
			r.Min = &lo
		}
		rules[a.Name] = r
	}
	return rules
}

// minimums holds inclusive lower bounds keyed by "command.param".
var minimums = map[string]float64{
	"resize.width":  1,
	"resize.height": 1,
}

// StdMetaStore is a lookup wrapper for stdimg.CommandSpec.
type StdMetaStore struct {
	Commands []stdimg.CommandSpec
	byName   map[string]stdimg.CommandSpec
}

// NewMetaStoreFromStdimg creates a StdMetaStore from stdimg.CommandSpec list.
func NewMetaStoreFromStdimg(cmds []stdimg.CommandSpec) *StdMetaStore {
	m := &StdMetaStore{Commands: cmds, byName: make(map[string]stdimg.CommandSpec, len(cmds))}
	for _, c := range cmds {
		m.byName[c.Name] = c
	}
	return m
}

// GetCommandHelp returns both tooltip and validation rules for a stdimg command.
func (m *StdMetaStore) GetCommandHelp(name string) (string, map[string]ValidationRule, error) {
	c, ok := m.byName[name]
	if !ok {
		return "", nil, fmt.Errorf("unknown command: %s", name)
	}
	return GenerateTooltipFromStdSpec(c), GenerateValidationRulesFromStdSpec(c), nil
}

// NormalizeArgsFromStd validates args against the command's metadata and
// rewrites them into the canonical form Engine.Apply expects. Optional
// parameters left empty stay empty so the engine applies its defaults.
func NormalizeArgsFromStd(store *StdMetaStore, cmdName string, args []string) ([]string, error) {
	if store == nil {
		return nil, fmt.Errorf("metadata store is nil")
	}
	c, ok := store.byName[cmdName]
	if !ok {
		return nil, fmt.Errorf("unknown command: %s", cmdName)
	}
	if len(args) > len(c.Args) {
		return nil, fmt.Errorf("%s takes at most %d parameters, got %d", cmdName, len(c.Args), len(args))
	}
	rules := GenerateValidationRulesFromStdSpec(c)
	out := make([]string, len(c.Args))
	for i, a := range c.Args {
		var raw string
		if i < len(args) {
			raw = strings.TrimSpace(args[i])
		}
		if raw == "" {
			if a.Required {
				return nil, fmt.Errorf("missing required parameter: %s", a.Name)
			}
			continue
		}
		vr := rules[a.Name]
		switch vr.Type {
		case ParamTypeInt:
			v, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("parameter %s: expected integer, got %q", a.Name, raw)
			}
			if vr.Min != nil && float64(v) < *vr.Min {
				return nil, fmt.Errorf("parameter %s: %d < min %v", a.Name, v, *vr.Min)
			}
			out[i] = strconv.FormatInt(v, 10)
		case ParamTypeFloat:
			f, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("parameter %s: expected float, got %q", a.Name, raw)
			}
			if vr.Min != nil && f < *vr.Min {
				return nil, fmt.Errorf("parameter %s: %v < min %v", a.Name, f, *vr.Min)
			}
			out[i] = strconv.FormatFloat(f, 'f', -1, 64)
		case ParamTypeEnum:
			v, err := canonicalEnum(a.Name, raw)
			if err != nil {
				return nil, fmt.Errorf("parameter %s: %w", a.Name, err)
			}
			out[i] = v
		case ParamTypeString:
			out[i] = raw
		default:
			return nil, fmt.Errorf("parameter %s: unsupported param type %q", a.Name, vr.Type)
		}
	}
	return out, nil
}

// Textual enum maps. Keys are lower-case user input, values are the
// canonical names understood by the engine.
var (
	taperSideNames = map[string]string{
		"left": "left", "l": "left",
		"top": "top", "t": "top",
		"right": "right", "r": "right",
		"bottom": "bottom", "b": "bottom",
	}

	taperCornerNames = map[string]string{
		"rightorbottom": "rightorbottom", "right": "rightorbottom", "bottom": "rightorbottom",
		"leftortop": "leftortop", "left": "leftortop", "top": "leftortop",
		"both": "both", "centre": "both", "center": "both",
	}
)

func enumOptions(paramName string) []string {
	switch paramName {
	case "resampler":
		return stdimg.ResamplerNames()
	case "side":
		return []string{"left", "top", "right", "bottom"}
	case "corner":
		return []string{"rightorbottom", "leftortop", "both"}
	}
	return nil
}

// canonicalEnum maps an enum value typed by the user to the name the engine
// expects, or reports the accepted options.
func canonicalEnum(paramName, val string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(val))
	switch paramName {
	case "resampler":
		r, err := stdimg.ResolveResampler(key)
		if err != nil {
			return "", fmt.Errorf("unknown resampler %q (options: %s)", val, strings.Join(enumOptions(paramName), ", "))
		}
		return r.Name(), nil
	case "side":
		if out, ok := taperSideNames[key]; ok {
			return out, nil
		}
	case "corner":
		key = strings.NewReplacer("-", "", "_", "", " ", "").Replace(key)
		if out, ok := taperCornerNames[key]; ok {
			return out, nil
		}
	default:
		return val, nil
	}
	return "", fmt.Errorf("invalid value %q (options: %s)", val, strings.Join(enumOptions(paramName), ", "))
}
