package services

import (
	"math"
	"testing"
	"time"

	"subhive/internal/models"
	"subhive/internal/utils"

	"github.com/stretchr/testify/assert"
)

var base = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func post(title string, votes, comments int, age time.Duration) models.Post {
	return models.Post{Title: title, Votes: votes, CommentsCount: comments, CreatedAt: base.Add(-age)}
}

func TestParsePostSort(t *testing.T) {
	assert.Equal(t, SortNew, ParsePostSort("new"))
	assert.Equal(t, SortTop, ParsePostSort("top"))
	assert.Equal(t, SortControversial, ParsePostSort("controversial"))
	assert.Equal(t, SortHot, ParsePostSort("hot"))
	assert.Equal(t, SortHot, ParsePostSort(""))
	assert.Equal(t, SortHot, ParsePostSort("sideways"))
}

func TestParseCommentSort(t *testing.T) {
	assert.Equal(t, SortNewest, ParseCommentSort("new"))
	assert.Equal(t, SortOldest, ParseCommentSort("old"))
	assert.Equal(t, SortBest, ParseCommentSort("best"))
	assert.Equal(t, SortBest, ParseCommentSort("random"))
}

func TestRankPosts_Empty(t *testing.T) {
	ranked := RankPosts(nil, SortHot)
	assert.NotNil(t, ranked)
	assert.Empty(t, ranked)
}

func TestRankPosts_New(t *testing.T) {
	posts := []models.Post{post("old", 0, 0, 3*time.Hour), post("newest", 0, 0, 0), post("mid", 0, 0, time.Hour)}
	assert.Equal(t, []string{"newest", "mid", "old"}, titles(RankPosts(posts, SortNew)))
}

func TestRankPosts_TopStableTies(t *testing.T) {
	posts := []models.Post{post("a", 5, 0, 0), post("b", 10, 0, 0), post("c", 5, 0, 0), post("d", -2, 0, 0)}
	assert.Equal(t, []string{"b", "a", "c", "d"}, titles(RankPosts(posts, SortTop)))
}

func TestRankPosts_Controversial(t *testing.T) {
	posts := []models.Post{
		post("quiet", 100, 1, 0),
		post("busy-liked", 50, 10, 0),
		post("busy-split", -3, 10, 0),
		post("medium", 0, 5, 0),
	}
	assert.Equal(t, []string{"busy-split", "busy-liked", "medium", "quiet"}, titles(RankPosts(posts, SortControversial)))
}

func TestRankPosts_HotScenario(t *testing.T) {
	popular := post("popular", 1200, 0, 8*time.Hour)
	fresh := post("fresh", 50, 0, time.Hour)

	ranked := RankPosts([]models.Post{fresh, popular}, SortHot)
	assert.Equal(t, []string{"popular", "fresh"}, titles(ranked))

	diff := utils.HotScore(1200, popular.CreatedAt) - utils.HotScore(50, fresh.CreatedAt)
	expected := math.Log10(1200) - math.Log10(50) - 7*3600/45000.0
	assert.InDelta(t, expected, diff, 1e-6)
}

func TestRankPosts_HotAgeAndMagnitude(t *testing.T) {
	posts := []models.Post{post("older", 10, 0, 2*time.Hour), post("newer", 10, 0, time.Hour)}
	assert.Equal(t, []string{"newer", "older"}, titles(RankPosts(posts, SortHot)))

	posts = []models.Post{post("few", 2, 0, 0), post("many", 200, 0, 0), post("negative", -500, 0, 0)}
	assert.Equal(t, []string{"negative", "many", "few"}, titles(RankPosts(posts, SortHot)))

	// 对数增长：同样多一票，低票数时增益更大
	low := utils.HotScore(2, base) - utils.HotScore(1, base)
	high := utils.HotScore(101, base) - utils.HotScore(100, base)
	assert.Greater(t, low, high)
}

func TestRankPosts_UnknownKeyIsHot(t *testing.T) {
	posts := []models.Post{post("older", 10, 0, 2*time.Hour), post("newer", 10, 0, time.Hour), post("big", 5000, 0, 3*time.Hour)}
	assert.Equal(t, titles(RankPosts(posts, SortHot)), titles(RankPosts(posts, PostSort("bogus"))))
}

func TestRankPosts_DoesNotMutateInput(t *testing.T) {
	posts := []models.Post{post("a", 1, 0, 0), post("b", 9, 0, 0)}
	_ = RankPosts(posts, SortTop)
	assert.Equal(t, []string{"a", "b"}, titles(posts))
}

func TestPaginate(t *testing.T) {
	posts := []models.Post{post("1", 0, 0, 0), post("2", 0, 0, 0), post("3", 0, 0, 0)}

	page, more := paginate(posts, 1, 2)
	assert.Equal(t, []string{"1", "2"}, titles(page))
	assert.True(t, more)

	page, more = paginate(posts, 2, 2)
	assert.Equal(t, []string{"3"}, titles(page))
	assert.False(t, more)

	page, more = paginate(posts, 5, 2)
	assert.Empty(t, page)
	assert.NotNil(t, page)
	assert.False(t, more)

	page, _ = paginate(posts, 0, 2)
	assert.Equal(t, []string{"1", "2"}, titles(page))
}
