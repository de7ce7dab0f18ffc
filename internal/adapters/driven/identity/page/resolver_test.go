package page

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/highlight/internal/dom"
)

func TestResolver_ResolveViewer(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "meta tag",
			html: `<html><head><meta name="user-login" content="octocat"></head><body></body></html>`,
			want: "octocat",
		},
		{
			name: "avatar alt text",
			html: `<html><body><details><summary aria-label="View profile and more"><img alt="@hubot" src="a.png"></summary></details></body></html>`,
			want: "hubot",
		},
		{
			name: "empty meta falls through to avatar",
			html: `<html><head><meta name="user-login" content=""></head><body><summary aria-label="View profile and more"><img alt="@monalisa"></summary></body></html>`,
			want: "monalisa",
		},
		{
			name: "signed out",
			html: `<html><body><p>Sign in</p></body></html>`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := dom.ParseString(tt.html)
			require.NoError(t, err)

			got, err := NewResolver(doc).ResolveViewer(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolver_CancelledContext(t *testing.T) {
	doc, err := dom.ParseString(`<html></html>`)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = NewResolver(doc).ResolveViewer(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
