package notion

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMissingID is returned when the store answers a create or update call
// without an identity field. The store reports some failures this way even
// with a successful HTTP status.
var ErrMissingID = errors.New("response has no id")

// APIError represents a non-2xx response from the store
type APIError struct {
	// Status is the HTTP status code
	Status int

	// Code is the machine-readable error code from the response body (e.g., "object_not_found")
	Code string

	// Message is the human-readable error message
	Message string
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("notion API error (status %d, code %s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("notion API error (status %d): %s", e.Status, e.Message)
}

// Page is a page or database row
type Page struct {
	Object         string     `json:"object,omitempty"`
	ID             string     `json:"id"`
	URL            string     `json:"url,omitempty"`
	CreatedTime    string     `json:"created_time,omitempty"`
	LastEditedTime string     `json:"last_edited_time,omitempty"`
	Archived       bool       `json:"archived,omitempty"`
	Properties     Properties `json:"properties,omitempty"`
}

// Title returns the plain text of the page's title property.
func (p *Page) Title() string {
	if p == nil {
		return ""
	}
	return p.Properties.TitleText()
}

// QueryResult is the response of a database query or a search
type QueryResult struct {
	Object     string `json:"object,omitempty"`
	Results    []Page `json:"results"`
	HasMore    bool   `json:"has_more,omitempty"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// BlockList is the response of a children listing or append
type BlockList struct {
	Object  string  `json:"object,omitempty"`
	Results []Block `json:"results"`
}

// RichTextItem is one span of rich text
type RichTextItem struct {
	Type      string       `json:"type,omitempty"`
	Text      *TextContent `json:"text,omitempty"`
	PlainText string       `json:"plain_text,omitempty"`
}

// TextContent is the content of a text rich text span
type TextContent struct {
	Content string `json:"content"`
}

func (r RichTextItem) plain() string {
	if r.PlainText != "" {
		return r.PlainText
	}
	if r.Text != nil {
		return r.Text.Content
	}
	return ""
}

// SelectOption is the value of a select or status property
type SelectOption struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// DateValue is the value of a date property. End is empty for single dates.
type DateValue struct {
	Start    string `json:"start"`
	End      string `json:"end,omitempty"`
	TimeZone string `json:"time_zone,omitempty"`
}

// Reference points at another page from a relation property
type Reference struct {
	ID string `json:"id"`
}

// Property is a single page property. Only the field matching Type is set
// on responses; builders set exactly one field.
type Property struct {
	ID       string         `json:"id,omitempty"`
	Type     string         `json:"type,omitempty"`
	Title    []RichTextItem `json:"title,omitempty"`
	RichText []RichTextItem `json:"rich_text,omitempty"`
	Select   *SelectOption  `json:"select,omitempty"`
	Status   *SelectOption  `json:"status,omitempty"`
	Date     *DateValue     `json:"date,omitempty"`
	Checkbox *bool          `json:"checkbox,omitempty"`
	Relation []Reference    `json:"relation,omitempty"`
}

// Properties maps property names to values
type Properties map[string]Property

// Title builds a title property.
func Title(text string) Property {
	return Property{Title: []RichTextItem{{Type: "text", Text: &TextContent{Content: text}}}}
}

// RichText builds a rich text property.
func RichText(text string) Property {
	return Property{RichText: []RichTextItem{{Type: "text", Text: &TextContent{Content: text}}}}
}

// Select builds a select property.
func Select(name string) Property {
	return Property{Select: &SelectOption{Name: name}}
}

// Date builds a date property. end may be empty.
func Date(start, end string) Property {
	return Property{Date: &DateValue{Start: start, End: end}}
}

// Checkbox builds a checkbox property.
func Checkbox(checked bool) Property {
	return Property{Checkbox: &checked}
}

// Relation builds a relation property pointing at the given pages.
func Relation(pageIDs ...string) Property {
	refs := make([]Reference, 0, len(pageIDs))
	for _, id := range pageIDs {
		refs = append(refs, Reference{ID: id})
	}
	return Property{Relation: refs}
}

// HasProperty reports whether name is present.
func (p Properties) HasProperty(name string) bool {
	_, ok := p[name]
	return ok
}

// PlainTitle returns the concatenated plain text of the title property name,
// and whether that property exists at all. An existing property with an
// empty title array returns "" and true.
func (p Properties) PlainTitle(name string) (string, bool) {
	prop, ok := p[name]
	if !ok {
		return "", false
	}
	return joinPlain(prop.Title), true
}

// PlainText returns the concatenated plain text of a rich text property.
func (p Properties) PlainText(name string) string {
	return joinPlain(p[name].RichText)
}

// TitleText returns the plain text of whichever property has type title.
func (p Properties) TitleText() string {
	for _, prop := range p {
		if prop.Type == "title" || len(prop.Title) > 0 {
			return joinPlain(prop.Title)
		}
	}
	return ""
}

// SelectName returns the option name of a select or status property.
func (p Properties) SelectName(name string) string {
	prop := p[name]
	switch {
	case prop.Select != nil:
		return prop.Select.Name
	case prop.Status != nil:
		return prop.Status.Name
	}
	return ""
}

// DateStart returns the start of a date property.
func (p Properties) DateStart(name string) string {
	if d := p[name].Date; d != nil {
		return d.Start
	}
	return ""
}

// Checkbox returns the value of a checkbox property, false when absent.
func (p Properties) Checkbox(name string) bool {
	if c := p[name].Checkbox; c != nil {
		return *c
	}
	return false
}

// FirstRelationID returns the first page referenced by a relation property.
func (p Properties) FirstRelationID(name string) string {
	if rel := p[name].Relation; len(rel) > 0 {
		return rel[0].ID
	}
	return ""
}

func joinPlain(items []RichTextItem) string {
	var b strings.Builder
	for _, item := range items {
		b.WriteString(item.plain())
	}
	return b.String()
}

// Block is a content block. Data holds the type-specific object so that
// blocks read from one page can be written to another unchanged.
type Block struct {
	ID          string
	Type        string
	HasChildren bool
	Data        json.RawMessage
}

// Paragraph builds a paragraph block holding text.
func Paragraph(text string) Block {
	data, _ := json.Marshal(map[string]any{
		"rich_text": []RichTextItem{{Type: "text", Text: &TextContent{Content: text}}},
	})
	return Block{Type: "paragraph", Data: data}
}

// PlainText returns the text of a block's rich_text, if it has one.
func (b Block) PlainText() string {
	var payload struct {
		RichText []RichTextItem `json:"rich_text"`
	}
	if err := json.Unmarshal(b.Data, &payload); err != nil {
		return ""
	}
	return joinPlain(payload.RichText)
}

// MarshalJSON writes the block in the shape the store accepts on create.
// Read-only fields such as the id are not written.
func (b Block) MarshalJSON() ([]byte, error) {
	data := b.Data
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}
	return json.Marshal(map[string]any{
		"object": "block",
		"type":   b.Type,
		b.Type:   data,
	})
}

// UnmarshalJSON reads a block returned by the store.
func (b *Block) UnmarshalJSON(data []byte) error {
	var header struct {
		ID          string `json:"id"`
		Type        string `json:"type"`
		HasChildren bool   `json:"has_children"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	b.ID = header.ID
	b.Type = header.Type
	b.HasChildren = header.HasChildren
	b.Data = fields[header.Type]
	return nil
}

// Filter is a database query filter
type Filter map[string]any

// And combines filters so that all must match.
func And(filters ...Filter) Filter {
	return Filter{"and": filters}
}

// DateOnOrAfter matches rows whose date property is on or after date (YYYY-MM-DD).
func DateOnOrAfter(property, date string) Filter {
	return Filter{"property": property, "date": map[string]string{"on_or_after": date}}
}

// DateOnOrBefore matches rows whose date property is on or before date (YYYY-MM-DD).
func DateOnOrBefore(property, date string) Filter {
	return Filter{"property": property, "date": map[string]string{"on_or_before": date}}
}

// SelectDoesNotEqual matches rows whose select property is not value.
func SelectDoesNotEqual(property, value string) Filter {
	return Filter{"property": property, "select": map[string]string{"does_not_equal": value}}
}

// RichTextEquals matches rows whose rich text property equals value.
func RichTextEquals(property, value string) Filter {
	return Filter{"property": property, "rich_text": map[string]string{"equals": value}}
}

// Sort orders query results by a property
type Sort struct {
	Property  string `json:"property,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Direction string `json:"direction"`
}

// Sort directions
const (
	Ascending  = "ascending"
	Descending = "descending"
)
