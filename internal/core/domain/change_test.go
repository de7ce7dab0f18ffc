package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiff(t *testing.T) {
	prev := map[string]any{
		KeyViewer:    "alice",
		KeyWatchlist: []any{map[string]any{"text": "bob", "color": "#fff3cd"}},
	}

	tests := []struct {
		name string
		next map[string]any
		want []string
	}{
		{
			name: "identical values produce no changes",
			next: map[string]any{
				KeyViewer:    "alice",
				KeyWatchlist: []any{map[string]any{"text": "bob", "color": "#fff3cd"}},
			},
			want: nil,
		},
		{
			name: "changed scalar",
			next: map[string]any{KeyViewer: "carol"},
			want: []string{KeyViewer},
		},
		{
			name: "changed nested value",
			next: map[string]any{
				KeyWatchlist: []any{map[string]any{"text": "bob", "color": "#ffffff"}},
			},
			want: []string{KeyWatchlist},
		},
		{
			name: "new key",
			next: map[string]any{KeyViewerColor: "#d1ecf1"},
			want: []string{KeyViewerColor},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changes := Diff(prev, tt.next)
			assert.Len(t, changes, len(tt.want))
			for _, key := range tt.want {
				assert.Contains(t, changes, key)
			}
		})
	}
}

func TestDiff_RecordsOldAndNew(t *testing.T) {
	changes := Diff(map[string]any{KeyViewer: "alice"}, map[string]any{KeyViewer: "bob"})
	assert.Equal(t, Change{OldValue: "alice", NewValue: "bob"}, changes[KeyViewer])
}

func TestChangeSet_Touches(t *testing.T) {
	assert.False(t, ChangeSet{}.Touches())
	assert.False(t, ChangeSet{"theme": {}}.Touches())
	assert.True(t, ChangeSet{KeyViewerColor: {}}.Touches())
	assert.True(t, ChangeSet{KeyWatchlist: {}}.Touches())
}

func TestNavigationKind_IsValid(t *testing.T) {
	assert.True(t, NavigationHistory.IsValid())
	assert.True(t, NavigationPjax.IsValid())
	assert.True(t, NavigationTurbo.IsValid())
	assert.False(t, NavigationKind("hashchange").IsValid())
}
