package meetings

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/teemow/meetsync/internal/notion"
)

const (
	// DefaultTemplateCacheTTL bounds how long a template's blocks are reused
	DefaultTemplateCacheTTL = 10 * time.Minute

	templateCacheSize = 16
)

// TemplateCloner creates notes from a template page. The template's blocks
// are listed once and reused until the cache entry expires.
type TemplateCloner struct {
	store Store
	cache *expirable.LRU[string, []notion.Block]
}

// NewTemplateCloner creates a TemplateCloner. A ttl of zero uses DefaultTemplateCacheTTL.
func NewTemplateCloner(store Store, ttl time.Duration) *TemplateCloner {
	if ttl <= 0 {
		ttl = DefaultTemplateCacheTTL
	}
	return &TemplateCloner{
		store: store,
		cache: expirable.NewLRU[string, []notion.Block](templateCacheSize, nil, ttl),
	}
}

// Clone creates a page titled newTitle under parentID holding the template's
// immediate child blocks and returns its id.
func (c *TemplateCloner) Clone(ctx context.Context, templateID, newTitle, parentID string) (string, error) {
	blocks, ok := c.cache.Get(templateID)
	if !ok {
		var err error
		blocks, err = c.store.ListChildren(ctx, templateID)
		if err != nil {
			return "", fmt.Errorf("failed to read template %s: %w", templateID, err)
		}
		c.cache.Add(templateID, blocks)
	}

	page, err := c.store.CreatePageWithChildren(ctx, parentID, newTitle, blocks)
	if err != nil {
		return "", err
	}
	if page == nil || page.ID == "" {
		return "", notion.ErrMissingID
	}
	return page.ID, nil
}

// Forget drops the cached blocks of a template.
func (c *TemplateCloner) Forget(templateID string) {
	c.cache.Remove(templateID)
}
