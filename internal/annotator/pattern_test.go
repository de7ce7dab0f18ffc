package annotator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/highlight/internal/core/domain"
)

func watch(texts ...string) domain.Configuration {
	var config domain.Configuration
	for _, t := range texts {
		config.Watchlist = append(config.Watchlist, domain.Identifier{Text: t, Color: "#fff3cd"})
	}
	return config
}

func TestCompile_Empty(t *testing.T) {
	tests := []struct {
		name   string
		config domain.Configuration
	}{
		{name: "No identifiers", config: domain.Configuration{}},
		{name: "Blank viewer", config: domain.Configuration{Viewer: domain.ViewerIdentity{Text: "  "}}},
		{name: "Blank watchlist", config: watch("", " ")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Compile(tt.config)
			assert.Nil(t, p)
			assert.False(t, p.MatchString("anything"))
			assert.Empty(t, p.FindAllIndex("anything"))
			assert.Empty(t, p.Terms())
			assert.Equal(t, "", p.String())
		})
	}
}

func TestCompile_WordBoundaries(t *testing.T) {
	p := Compile(watch("bob"))
	require.NotNil(t, p)

	tests := []struct {
		text  string
		match bool
	}{
		{text: "bob", match: true},
		{text: "Bob said hi", match: true},
		{text: "thanks, BOB.", match: true},
		{text: "@bob", match: true},
		{text: "bobby", match: false},
		{text: "jimbob", match: false},
		{text: "bob_smith", match: false},
		{text: "bob2", match: false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.match, p.MatchString(tt.text))
		})
	}
}

func TestCompile_EscapesMetacharacters(t *testing.T) {
	p := Compile(watch("a.b", "x+y"))
	require.NotNil(t, p)

	assert.True(t, p.MatchString("ping a.b now"))
	assert.False(t, p.MatchString("ping axb now"))
	assert.True(t, p.MatchString("see x+y docs"))
	assert.False(t, p.MatchString("see xxy docs"))
}

func TestCompile_TrailingPunctuationLimitation(t *testing.T) {
	// A word boundary needs a word character on one side, so an identifier
	// ending in punctuation cannot match before a space.
	p := Compile(watch("c++"))
	require.NotNil(t, p)

	assert.False(t, p.MatchString("I like c++ a lot"))
}

func TestCompile_UnionOrder(t *testing.T) {
	config := domain.Configuration{
		Viewer:    domain.ViewerIdentity{Text: "alice"},
		Watchlist: []domain.Identifier{{Text: "bob"}, {Text: "ALICE"}, {Text: ""}},
	}

	p := Compile(config)
	require.NotNil(t, p)
	assert.Equal(t, []string{"alice", "bob"}, p.Terms())
	assert.Equal(t, `(?i)\b(?:alice|bob)\b`, p.String())
}

func TestCompile_OverlapFirstWins(t *testing.T) {
	p := Compile(watch("ada", "ada lovelace"))
	require.NotNil(t, p)

	matches := p.FindAllIndex("hello ada lovelace")
	require.Len(t, matches, 1)
	assert.Equal(t, []int{6, 9}, matches[0])
}

func TestPattern_FindAllIndex(t *testing.T) {
	p := Compile(watch("bob", "carol"))
	require.NotNil(t, p)

	text := "bob, carol and Bob"
	matches := p.FindAllIndex(text)
	require.Len(t, matches, 3)
	assert.Equal(t, "bob", text[matches[0][0]:matches[0][1]])
	assert.Equal(t, "carol", text[matches[1][0]:matches[1][1]])
	assert.Equal(t, "Bob", text[matches[2][0]:matches[2][1]])
}

func TestPattern_TermsIsCopy(t *testing.T) {
	p := Compile(watch("bob"))
	terms := p.Terms()
	terms[0] = "mallory"

	assert.Equal(t, []string{"bob"}, p.Terms())
}
