package styles

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"
)

var testColor = lipgloss.Color("#FF0000")

func plainLines(s string) []string {
	return strings.Split(ansi.Strip(s), "\n")
}

func TestRenderWithTitleBorder_Basic(t *testing.T) {
	out := RenderWithTitleBorder("one\ntwo", "Title", 20, 5, false, testColor, testColor)
	lines := plainLines(out)

	require.Len(t, lines, 5)
	require.True(t, strings.HasPrefix(lines[0], "╭─ Title "))
	require.True(t, strings.HasSuffix(lines[0], "╮"))
	require.Equal(t, "│one               │", lines[1])
	require.Equal(t, "│two               │", lines[2])
	require.Equal(t, "│                  │", lines[3])
	require.Equal(t, "╰"+strings.Repeat("─", 18)+"╯", lines[4])
	for _, l := range lines {
		require.Equal(t, 20, lipgloss.Width(l), "line %q", l)
	}
}

func TestRenderWithTitleBorder_LongTitle(t *testing.T) {
	out := RenderWithTitleBorder("", "A very long container title", 14, 3, true, testColor, testColor)
	top := plainLines(out)[0]

	require.Equal(t, 14, lipgloss.Width(top))
	require.Contains(t, top, "…")
}

func TestRenderWithTitleBorder_ClipsContent(t *testing.T) {
	out := RenderWithTitleBorder("abcdefghijklmnop\n1\n2\n3", "T", 10, 4, false, testColor, testColor)
	lines := plainLines(out)

	require.Len(t, lines, 4, "content beyond the height is dropped")
	require.Equal(t, "│abcdefgh│", lines[1])
	require.Equal(t, "│1       │", lines[2])
}

func TestRenderWithTitleBorder_EmptyTitleAndNarrow(t *testing.T) {
	require.Equal(t, "╭────╮", plainLines(RenderWithTitleBorder("", "", 6, 3, false, testColor, testColor))[0])
	require.Equal(t, "╭─╮", plainLines(RenderWithTitleBorder("", "Title", 3, 3, false, testColor, testColor))[0])
	require.Len(t, plainLines(RenderWithTitleBorder("x", "T", 0, 0, false, testColor, testColor)), 3)
}
