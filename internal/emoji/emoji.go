// Package emoji serves the emoji picker's catalog.
package emoji

import (
	"strings"
	"sync"

	"github.com/forPelevin/gomoji"
)

// Emoji is one entry of the picker.
type Emoji struct {
	Character string `json:"character"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
}

// Group is a picker tab, e.g. "Smileys & Emotion".
type Group struct {
	Name   string  `json:"name"`
	Emojis []Emoji `json:"emojis"`
}

var (
	catalogOnce sync.Once
	catalog     []Group
)

// Catalog returns every supported emoji grouped the way Unicode groups them.
// Groups keep the order in which they first appear. The result is shared
// and must not be modified.
func Catalog() []Group {
	catalogOnce.Do(func() {
		index := make(map[string]int)
		for _, e := range gomoji.AllEmojis() {
			i, ok := index[e.Group]
			if !ok {
				i = len(catalog)
				index[e.Group] = i
				catalog = append(catalog, Group{Name: e.Group})
			}
			catalog[i].Emojis = append(catalog[i].Emojis, Emoji{
				Character: e.Character,
				Name:      e.UnicodeName,
				Slug:      e.Slug,
			})
		}
	})
	return catalog
}

// ByGroup returns the group with the given name, ignoring case.
func ByGroup(name string) (Group, bool) {
	for _, g := range Catalog() {
		if strings.EqualFold(g.Name, name) {
			return g, true
		}
	}
	return Group{}, false
}

// Search returns up to limit emojis whose slug or name contains query.
func Search(query string, limit int) []Emoji {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || limit <= 0 {
		return []Emoji{}
	}

	found := []Emoji{}
	for _, g := range Catalog() {
		for _, e := range g.Emojis {
			if strings.Contains(e.Slug, query) || strings.Contains(strings.ToLower(e.Name), query) {
				found = append(found, e)
				if len(found) == limit {
					return found
				}
			}
		}
	}
	return found
}
