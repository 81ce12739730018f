package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrompterLine(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("  ada@example.com \n\n"), &out)

	v, err := p.Line("Email", "")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", v)

	v, err = p.Line("Locale", "en-US")
	require.NoError(t, err)
	assert.Equal(t, "en-US", v)
	assert.Contains(t, out.String(), "Locale [en-US]: ")

	_, err = p.Line("More", "")
	assert.ErrorIs(t, err, ErrAborted)
}

func TestPrompterRequiredAndSecret(t *testing.T) {
	p := NewPrompter(strings.NewReader("\n\nname\nhunter22\n"), &bytes.Buffer{})

	v, err := p.Required("Name")
	require.NoError(t, err)
	assert.Equal(t, "name", v)

	v, err = p.Secret("Password")
	require.NoError(t, err)
	assert.Equal(t, "hunter22", v)
}

func TestPrompterConfirm(t *testing.T) {
	p := NewPrompter(strings.NewReader("\nyes\nn\n"), &bytes.Buffer{})

	ok, err := p.Confirm("Newsletter", true)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Confirm("Newsletter", false)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Confirm("Newsletter", true)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPrompterChoose(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("9\nx\n2\n"), &out)

	i, err := p.Choose("Gameworld", []string{"com1", "com2"})
	require.NoError(t, err)
	assert.Equal(t, 1, i)
	assert.Contains(t, out.String(), "  2) com2")
	assert.Contains(t, out.String(), "between 1 and 2")

	_, err = p.Choose("Gameworld", nil)
	assert.Error(t, err)
}

func TestPrompterInterrupt(t *testing.T) {
	t.Run("line entered before done", func(t *testing.T) {
		var out bytes.Buffer
		p := NewPrompter(strings.NewReader("\nnext\n"), &out)
		done := make(chan struct{})

		stay, err := p.Interrupt(context.Background(), "Press Enter to stay.", done)
		require.NoError(t, err)
		assert.True(t, stay)
		assert.Contains(t, out.String(), "Press Enter to stay.")

		v, err := p.Line("Email", "")
		require.NoError(t, err)
		assert.Equal(t, "next", v)
	})

	t.Run("done first hands the line to the next prompt", func(t *testing.T) {
		r, w := io.Pipe()
		defer w.Close()
		p := NewPrompter(r, &bytes.Buffer{})
		done := make(chan struct{})
		close(done)

		stay, err := p.Interrupt(context.Background(), "Press Enter to stay.", done)
		require.NoError(t, err)
		assert.False(t, stay)

		go func() { _, _ = io.WriteString(w, "player\n") }()
		v, err := p.Line("Email or account name", "")
		require.NoError(t, err)
		assert.Equal(t, "player", v)
	})

	t.Run("end of input waits for done", func(t *testing.T) {
		p := NewPrompter(strings.NewReader(""), &bytes.Buffer{})
		done := make(chan struct{})
		time.AfterFunc(20*time.Millisecond, func() { close(done) })

		stay, err := p.Interrupt(context.Background(), "Press Enter to stay.", done)
		require.NoError(t, err)
		assert.False(t, stay)
	})

	t.Run("cancelled context", func(t *testing.T) {
		r, w := io.Pipe()
		defer w.Close()
		p := NewPrompter(r, &bytes.Buffer{})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := p.Interrupt(ctx, "Press Enter to stay.", make(chan struct{}))
		assert.ErrorIs(t, err, context.Canceled)
	})
}
