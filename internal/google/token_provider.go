package google

import (
	"context"

	"golang.org/x/oauth2"
)

// TokenProvider is an interface for providing OAuth tokens for Google APIs
// This abstraction allows tests and other token sources to replace the token file
type TokenProvider interface {
	// Token retrieves the stored OAuth token
	Token(ctx context.Context) (*oauth2.Token, error)

	// HasToken checks if a token is available
	HasToken() bool
}

// FileTokenProvider provides tokens from a JSON token file
type FileTokenProvider struct {
	path string
}

// NewFileTokenProvider creates a new file-based token provider
func NewFileTokenProvider(path string) *FileTokenProvider {
	return &FileTokenProvider{path: path}
}

// Token reads the token file
func (p *FileTokenProvider) Token(_ context.Context) (*oauth2.Token, error) {
	return LoadToken(p.path)
}

// HasToken checks if the token file exists
func (p *FileTokenProvider) HasToken() bool {
	return HasToken(p.path)
}

// Path returns the token file location
func (p *FileTokenProvider) Path() string {
	return p.path
}
