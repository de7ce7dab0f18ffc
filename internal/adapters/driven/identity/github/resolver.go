// Package github resolves the viewer from the GitHub account that owns an
// API token.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/highlight/internal/core/ports/driven"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// Ensure Resolver implements the interface.
var _ driven.ViewerResolver = (*Resolver)(nil)

// ErrUnauthorized indicates the token was rejected.
var ErrUnauthorized = errors.New("github: token rejected")

// Resolver looks up the authenticated user's login.
type Resolver struct {
	gh *gh.Client
}

// NewResolver creates a resolver with a static access token.
// Works for both PAT and OAuth access tokens.
func NewResolver(ctx context.Context, token string) *Resolver {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = DefaultTimeout

	return &Resolver{gh: gh.NewClient(tc)}
}

// NewResolverWithClient creates a resolver around an existing client.
func NewResolverWithClient(client *gh.Client) *Resolver {
	return &Resolver{gh: client}
}

// ResolveViewer returns the login of the token's owner.
func (r *Resolver) ResolveViewer(ctx context.Context) (string, error) {
	user, _, err := r.gh.Users.Get(ctx, "")
	if err != nil {
		return "", wrapError(err)
	}
	return user.GetLogin(), nil
}

func wrapError(err error) error {
	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		if ghErr.Response.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: %s", ErrUnauthorized, ghErr.Message)
		}
		return fmt.Errorf("github: get user: %d %s", ghErr.Response.StatusCode, ghErr.Message)
	}
	return fmt.Errorf("github: get user: %w", err)
}
