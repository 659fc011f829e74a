package capture

import (
	"context"
	"testing"

	"github.com/atotto/clipboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadClipboard_NoTool(t *testing.T) {
	if !clipboard.Unsupported {
		t.Skip("a clipboard tool is installed")
	}

	text, err := ReadClipboard(context.Background())
	require.NoError(t, err)
	assert.Empty(t, text)
}
