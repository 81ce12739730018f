package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTMLToText(t *testing.T) {
	in := `<h2>Update</h2><p>New <b>tribes</b><br>arrive.</p><ul><li>Huns</li><li>Egyptians</li></ul><script>x()</script>`
	assert.Equal(t, "Update\n\nNew tribes\narrive.\n\n- Huns\n- Egyptians", HTMLToText(in))
}

func TestRenderArticle(t *testing.T) {
	var buf bytes.Buffer
	err := RenderTemplate(&buf, "article", map[string]any{
		"Title":     "Patch notes",
		"Published": time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC),
		"Body":      "  Hello  ",
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "PATCH NOTES\n")
	assert.Contains(t, buf.String(), "04 Mar 2026\n")
	assert.Contains(t, buf.String(), "\nHello\n")
}

func TestRenderGameworld(t *testing.T) {
	var buf bytes.Buffer
	err := RenderTemplate(&buf, "gameworld", map[string]any{
		"Name":          "Europe 3",
		"Subtitle":      "",
		"Start":         "01/02/2026 18:00",
		"Zone":          "UTC+0",
		"Speed":         3.0,
		"Tribes":        []string{"roman", "gaul"},
		"Tags":          []string{},
		"Indeterminate": false,
		"Action":        "",
		"URL":           "",
	})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Europe 3\n")
	assert.Contains(t, out, "Start:    01/02/2026 18:00 (UTC+0)")
	assert.Contains(t, out, "Speed:    3x")
	assert.Contains(t, out, "Tribes:   roman, gaul")
	assert.NotContains(t, out, "Tags:")
	assert.Contains(t, out, "Action:   none")

	assert.Error(t, RenderTemplate(&buf, "missing", nil))
}
