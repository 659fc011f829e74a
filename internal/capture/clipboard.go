package capture

import (
	"context"

	"github.com/atotto/clipboard"
)

// ReadClipboard returns the text on the system clipboard. Without a
// clipboard tool (pbpaste, xclip, xsel, wl-paste) it returns "".
func ReadClipboard(ctx context.Context) (string, error) {
	if clipboard.Unsupported {
		return "", nil
	}

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := clipboard.ReadAll()
		done <- result{text, err}
	}()

	select {
	case r := <-done:
		return r.text, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
