package meetings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/meetsync/internal/notion"
)

func TestTemplateCloner_Clone(t *testing.T) {
	store := newFakeStore()
	store.children["tpl"] = []notion.Block{notion.Paragraph("## Agenda"), notion.Paragraph("## Action Items")}

	cloner := NewTemplateCloner(store, time.Minute)
	id, err := cloner.Clone(context.Background(), "tpl", "Standup - 2025-01-06", "parent")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	require.Len(t, store.created, 1)
	assert.Equal(t, "parent", store.created[0].ParentID)
	assert.Equal(t, "Standup - 2025-01-06", store.created[0].Title)
	assert.Equal(t, store.children["tpl"], store.created[0].Children)
}

func TestTemplateCloner_CachesTemplate(t *testing.T) {
	store := newFakeStore()
	store.children["tpl"] = []notion.Block{notion.Paragraph("Notes")}

	cloner := NewTemplateCloner(store, 0)
	for i := 0; i < 3; i++ {
		_, err := cloner.Clone(context.Background(), "tpl", "Note", "parent")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, store.listChildren)

	cloner.Forget("tpl")
	_, err := cloner.Clone(context.Background(), "tpl", "Note", "parent")
	require.NoError(t, err)
	assert.Equal(t, 2, store.listChildren)
}

func TestTemplateCloner_MissingTemplate(t *testing.T) {
	store := newFakeStore()

	_, err := NewTemplateCloner(store, 0).Clone(context.Background(), "missing", "Note", "parent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read template missing")
	assert.Empty(t, store.created)
}

func TestTemplateCloner_MissingID(t *testing.T) {
	store := newFakeStore()
	store.children["tpl"] = nil
	store.createNoID = true

	_, err := NewTemplateCloner(store, 0).Clone(context.Background(), "tpl", "Note", "parent")
	assert.ErrorIs(t, err, notion.ErrMissingID)
}

func TestTemplateCloner_CreateError(t *testing.T) {
	store := newFakeStore()
	store.children["tpl"] = nil
	store.createErr = errBoom

	_, err := NewTemplateCloner(store, 0).Clone(context.Background(), "tpl", "Note", "parent")
	assert.ErrorIs(t, err, errBoom)
}
