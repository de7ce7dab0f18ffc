package annotator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/highlight/internal/core/domain"
	"github.com/custodia-labs/highlight/internal/dom"
)

func TestGitHubRegions(t *testing.T) {
	regions := GitHubRegions()

	require.NotEmpty(t, regions)
	assert.Equal(t, ".js-discussion", regions[0].Name)
	assert.Equal(t, "main", regions[len(regions)-2].Name)
	assert.Equal(t, "body", regions[len(regions)-1].Name)
}

func TestRegions_Match(t *testing.T) {
	doc, err := dom.ParseString(`<body>
<div class="comment-body extra">c</div>
<div class="comment-bodyish">no</div>
<table><tr><td class="commit-author">ta</td></tr></table>
<a class="commit-author">aa</a>
<div data-testid="commit-row-item">row</div>
<div class="react-commit-summary">rc</div>
<main><section role="main">m</section></main>
</body>`)
	require.NoError(t, err)

	byName := make(map[string]Region)
	for _, r := range GitHubRegions() {
		byName[r.Name] = r
	}

	tests := []struct {
		region string
		count  int
	}{
		{region: ".comment-body", count: 1},
		{region: "a.commit-author", count: 1},
		{region: "td.commit-author", count: 1},
		{region: `[data-testid="commit-row-item"]`, count: 1},
		{region: `[class*="commit"]`, count: 3},
		{region: `main [role="main"]`, count: 1},
		{region: "main", count: 1},
		{region: "body", count: 1},
	}

	for _, tt := range tests {
		t.Run(tt.region, func(t *testing.T) {
			r, ok := byName[tt.region]
			require.True(t, ok)
			assert.Len(t, doc.QueryAll(r.expr), tt.count)
		})
	}
}

func TestParseRegions(t *testing.T) {
	regions, err := ParseRegions([]string{"//article", " ", "//div[@id='x']"})
	require.NoError(t, err)
	require.Len(t, regions, 2)
	assert.Equal(t, "//article", regions[0].Name)
	assert.Equal(t, "//article", regions[0].Expr())

	_, err = ParseRegions([]string{"//div["})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
