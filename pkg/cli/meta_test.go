package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fepozopo/tilt/pkg/stdimg"
)

func TestNormalizeArgsCanonicalisesEnums(t *testing.T) {
	store := NewMetaStoreFromStdimg(stdimg.Commands)

	got, err := NormalizeArgsFromStd(store, "taper", []string{" L ", "left-or-top", "0.50", "Lanczos"})
	require.NoError(t, err)
	assert.Equal(t, []string{"left", "leftortop", "0.5", "lanczos3"}, got)

	got, err = NormalizeArgsFromStd(store, "rotate", []string{"45", "bicubic"})
	require.NoError(t, err)
	assert.Equal(t, []string{"45", "catmullrom"}, got)

	got, err = NormalizeArgsFromStd(store, "skew", []string{"10"})
	require.NoError(t, err)
	assert.Equal(t, []string{"10", "", ""}, got, "optional params stay empty")
}

func TestNormalizeArgsRejectsBadInput(t *testing.T) {
	store := NewMetaStoreFromStdimg(stdimg.Commands)
	cases := []struct {
		name string
		cmd  string
		args []string
		want string
	}{
		{"unknown command", "sharpen", nil, "unknown command"},
		{"missing", "resize", []string{"10"}, "missing required parameter: height"},
		{"not an int", "resize", []string{"ten", "10"}, "expected integer"},
		{"below min", "resize", []string{"0", "10"}, "min"},
		{"not a float", "rotate", []string{"right"}, "expected float"},
		{"unknown resampler", "rotate", []string{"10", "sharpest"}, "unknown resampler"},
		{"unknown side", "taper", []string{"middle", "", "0.5"}, "options: left, top, right, bottom"},
		{"too many", "flip", []string{"x"}, "at most 0"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := NormalizeArgsFromStd(store, c.cmd, c.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), c.want)
		})
	}

	_, err := NormalizeArgsFromStd(nil, "flip", nil)
	assert.Error(t, err)
}

func TestCommandHelp(t *testing.T) {
	store := NewMetaStoreFromStdimg(stdimg.Commands)

	tooltip, rules, err := store.GetCommandHelp("taper")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(tooltip, "Keystone one side"))
	assert.Contains(t, tooltip, "- fraction (float, required)")
	assert.Equal(t, ParamTypeEnum, rules["corner"].Type)
	assert.Equal(t, []string{"rightorbottom", "leftortop", "both"}, rules["corner"].EnumOptions)
	assert.Contains(t, rules["resampler"].EnumOptions, "lanczos5")

	tooltip, _, err = store.GetCommandHelp("flip")
	require.NoError(t, err)
	assert.Contains(t, tooltip, "no parameters")

	_, rules, err = store.GetCommandHelp("resize")
	require.NoError(t, err)
	require.NotNil(t, rules["width"].Min)
	assert.Equal(t, 1.0, *rules["width"].Min)

	_, _, err = store.GetCommandHelp("nope")
	assert.Error(t, err)
}
