package processor

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"
)

// TokenStore supplies the bearer token for backend requests.
// An empty token means the request is sent without credentials.
type TokenStore interface {
	Token(ctx context.Context) (string, error)
}

// StaticTokenStore always returns the same token.
type StaticTokenStore string

// Token implements TokenStore.
func (s StaticTokenStore) Token(context.Context) (string, error) {
	return string(s), nil
}

// FileTokenStore reads the token from a file on every call, so a rotated
// token is picked up without a restart.
type FileTokenStore struct {
	Path string
}

// Token implements TokenStore. A missing file yields an empty token.
func (s FileTokenStore) Token(context.Context) (string, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(data)), nil
}
