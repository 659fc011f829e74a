package launcher

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/teemow/meetsync/internal/config"
)

// Item is one entry of a launcher result list
type Item struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Arg      string `json:"arg,omitempty"`
	Valid    bool   `json:"valid"`
}

// Response is the document a launcher script filter reads
type Response struct {
	Items []Item `json:"items"`
}

// Write prints items as a single line of launcher JSON.
func Write(w io.Writer, items ...Item) error {
	if items == nil {
		items = []Item{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(Response{Items: items}); err != nil {
		return fmt.Errorf("failed to encode launcher items: %w", err)
	}
	return nil
}

// Hint is a non-actionable item prompting for input.
func Hint(title, subtitle string) Item {
	return Item{Title: title, Subtitle: subtitle}
}

// Action is an actionable item passing arg to the action step.
func Action(title, subtitle, arg string) Item {
	return Item{Title: title, Subtitle: subtitle, Arg: arg, Valid: true}
}

// ConfigNeeded returns the item shown when err is a missing configuration,
// and false for any other error.
func ConfigNeeded(err error) (Item, bool) {
	var missing *config.MissingError
	if !errors.As(err, &missing) {
		return Item{}, false
	}
	return Hint("Configuration needed",
		fmt.Sprintf("Set %s in workflow settings", strings.Join(missing.Keys, " or "))), true
}

// ErrorItem renders err as a non-actionable item.
func ErrorItem(err error) Item {
	if item, ok := ConfigNeeded(err); ok {
		return item
	}
	return Hint("❌ Error", err.Error())
}

// Succeed prints a ✅ status line.
func Succeed(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "✅ "+format+"\n", args...)
}

// Fail prints a ❌ status line for err.
func Fail(w io.Writer, err error) {
	fmt.Fprintf(w, "❌ Error: %v\n", err)
}

// Failf prints a ❌ status line.
func Failf(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "❌ "+format+"\n", args...)
}

// Preview shortens s to limit runes, appending "..." when cut, and folds
// newlines into spaces.
func Preview(s string, limit int) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}
