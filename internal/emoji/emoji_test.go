package emoji

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCatalog(t *testing.T) {
	groups := Catalog()
	require.NotEmpty(t, groups)

	seen := map[string]bool{}
	for _, g := range groups {
		require.False(t, seen[g.Name], "group %q listed twice", g.Name)
		seen[g.Name] = true
		require.NotEmpty(t, g.Emojis)
	}

	g, ok := ByGroup(strings.ToLower(groups[0].Name))
	require.True(t, ok)
	require.Equal(t, groups[0].Name, g.Name)

	_, ok = ByGroup("no such group")
	require.False(t, ok)
}

func TestSearch(t *testing.T) {
	found := Search("heart", 5)
	require.NotEmpty(t, found)
	require.LessOrEqual(t, len(found), 5)

	require.Empty(t, Search("", 5))
	require.Empty(t, Search("heart", 0))
}
