package utils

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHotScore(t *testing.T) {
	epoch := time.Unix(0, 0)

	assert.Equal(t, 0.0, HotScore(0, epoch))
	assert.Equal(t, 0.0, HotScore(1, epoch))
	assert.Equal(t, 0.0, HotScore(-1, epoch))
	assert.InDelta(t, 2.0, HotScore(100, epoch), 1e-9)
	assert.InDelta(t, 2.0, HotScore(-100, epoch), 1e-9)

	later := epoch.Add(45000 * time.Second)
	assert.InDelta(t, 1.0, HotScore(0, later), 1e-9)

	// 10 票的帖子与 12.5 小时后发布的 1 票帖子同分
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	assert.InDelta(t, HotScore(10, now), HotScore(1, now.Add(45000*time.Second)), 1e-6)
	assert.False(t, math.IsNaN(HotScore(math.MinInt32, now)))
}

func TestCache_SetGetExpire(t *testing.T) {
	c, err := NewCache[int](4)
	require.NoError(t, err)

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("a", 1, time.Minute)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	now = now.Add(time.Minute)
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestCache_DeletePrefixAndPurge(t *testing.T) {
	c, err := NewCache[string](10)
	require.NoError(t, err)

	c.Set("feed:global:hot", "x", time.Hour)
	c.Set("feed:r:1:new", "y", time.Hour)
	c.Set("other", "z", time.Hour)

	c.DeletePrefix("feed:")
	_, ok := c.Get("feed:global:hot")
	assert.False(t, ok)
	_, ok = c.Get("other")
	assert.True(t, ok)

	c.Purge()
	assert.Equal(t, 0, c.Len())
}

func TestCache_RejectsNonPositiveSize(t *testing.T) {
	_, err := NewCache[int](0)
	assert.Error(t, err)
}

func TestParseID(t *testing.T) {
	id, err := ParseID("42")
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	for _, bad := range []string{"", "0", "-1", "abc", "1.5"} {
		_, err := ParseID(bad)
		assert.Error(t, err, bad)
	}
}

func TestParsePage(t *testing.T) {
	assert.Equal(t, 1, ParsePage(""))
	assert.Equal(t, 1, ParsePage("0"))
	assert.Equal(t, 1, ParsePage("x"))
	assert.Equal(t, 3, ParsePage("3"))
}

func TestRenderMarkdown(t *testing.T) {
	out := RenderMarkdown("**bold** <script>alert(1)</script>\n\n![pic](https://img.example.com/a.png)")

	assert.Contains(t, out, "<strong>bold</strong>")
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, `loading="lazy"`)
	assert.Contains(t, out, `referrerpolicy="no-referrer"`)
	assert.Equal(t, "", RenderMarkdown("   "))
}

func TestRenderMarkdown_EmbedsYouTube(t *testing.T) {
	out := RenderMarkdown("https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	assert.True(t, strings.Contains(out, "https://www.youtube.com/embed/dQw4w9WgXcQ"), out)
}

func TestFirstImage(t *testing.T) {
	assert.Equal(t, "https://a.example/1.png", FirstImage("text ![one](https://a.example/1.png) ![two](https://a.example/2.png)"))
	assert.Equal(t, "https://a.example/t.png", FirstImage(`![t](https://a.example/t.png "title")`))
	assert.Equal(t, "", FirstImage("no images here"))
}
