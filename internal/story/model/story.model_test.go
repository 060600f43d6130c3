package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExcerptTruncatesLongContent(t *testing.T) {
	content := strings.Repeat("a", 400)
	got := Excerpt(content)
	assert.Equal(t, strings.Repeat("a", 150)+"...", got)
}

func TestExcerptKeepsShortContentWhole(t *testing.T) {
	got := Excerpt("short story")
	assert.Equal(t, "short story...", got)
}

func TestExcerptCountsRunesNotBytes(t *testing.T) {
	content := strings.Repeat("é", 200)
	got := Excerpt(content)
	assert.Equal(t, strings.Repeat("é", 150)+"...", got)
}

func TestExcerptIsRecomputedFromContent(t *testing.T) {
	first := Excerpt("original content")
	second := Excerpt("rewritten content")
	assert.NotEqual(t, first, second, "a stale excerpt never survives a content change")
	assert.Equal(t, second, Excerpt("rewritten content"), "same content, same excerpt")
}

func TestParseCategory(t *testing.T) {
	assert.Equal(t, CategoryAdventure, ParseCategory("Adventure"))
	assert.Equal(t, CategoryLove, ParseCategory("Love"))
	assert.Equal(t, CategoryLife, ParseCategory(""), "empty input defaults to Life")
	assert.Equal(t, CategoryLife, ParseCategory("Gardening"), "unknown input defaults to Life")
	assert.Equal(t, CategoryLife, ParseCategory("All"), "the filter sentinel is never a stored category")
}

func TestSessionDisplayName(t *testing.T) {
	assert.Equal(t, "Alice", Session{UserID: "u1", Name: "Alice"}.DisplayName())
	assert.Equal(t, "Anonymous", Session{UserID: "u1"}.DisplayName())
	assert.False(t, Session{}.Authenticated())
	assert.True(t, Session{UserID: "u1"}.Authenticated())
}
