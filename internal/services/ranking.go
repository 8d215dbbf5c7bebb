package services

import (
	"sort"

	"subhive/internal/models"
	"subhive/internal/utils"
)

type PostSort string

const (
	SortHot           PostSort = "hot"
	SortNew           PostSort = "new"
	SortTop           PostSort = "top"
	SortControversial PostSort = "controversial"
)

// ParsePostSort 未知的排序键回退为 hot
func ParsePostSort(s string) PostSort {
	switch PostSort(s) {
	case SortNew, SortTop, SortControversial:
		return PostSort(s)
	}
	return SortHot
}

type CommentSort string

const (
	SortBest   CommentSort = "best"
	SortNewest CommentSort = "new"
	SortOldest CommentSort = "old"
)

// ParseCommentSort 未知的排序键回退为 best
func ParseCommentSort(s string) CommentSort {
	switch CommentSort(s) {
	case SortNewest, SortOldest:
		return CommentSort(s)
	}
	return SortBest
}

// RankPosts returns a new slice ordered by key. Ties keep input order.
func RankPosts(posts []models.Post, key PostSort) []models.Post {
	ranked := make([]models.Post, len(posts))
	copy(ranked, posts)

	switch ParsePostSort(string(key)) {
	case SortNew:
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].CreatedAt.After(ranked[j].CreatedAt)
		})
	case SortTop:
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].Votes > ranked[j].Votes
		})
	case SortControversial:
		sort.SliceStable(ranked, func(i, j int) bool {
			if ranked[i].CommentsCount != ranked[j].CommentsCount {
				return ranked[i].CommentsCount > ranked[j].CommentsCount
			}
			return ranked[i].Votes < ranked[j].Votes
		})
	default:
		// 预先计算分数，排序时与帖子一起交换
		type scored struct {
			post  models.Post
			score float64
		}
		items := make([]scored, len(ranked))
		for i, p := range ranked {
			items[i] = scored{post: p, score: utils.HotScore(p.Votes, p.CreatedAt)}
		}
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].score > items[j].score
		})
		for i := range items {
			ranked[i] = items[i].post
		}
	}
	return ranked
}

// sortComments orders top-level comments in place. Ties keep input order.
func sortComments(comments []*CommentNode, key CommentSort) {
	switch key {
	case SortNewest:
		sort.SliceStable(comments, func(i, j int) bool {
			return comments[i].CreatedAt.After(comments[j].CreatedAt)
		})
	case SortOldest:
		sort.SliceStable(comments, func(i, j int) bool {
			return comments[i].CreatedAt.Before(comments[j].CreatedAt)
		})
	default:
		sort.SliceStable(comments, func(i, j int) bool {
			return comments[i].Votes > comments[j].Votes
		})
	}
}

// paginate 返回第 page 页（从 1 开始）以及是否还有下一页
func paginate(posts []models.Post, page, size int) ([]models.Post, bool) {
	if page < 1 {
		page = 1
	}
	start := (page - 1) * size
	if start >= len(posts) {
		return []models.Post{}, false
	}
	end := start + size
	if end > len(posts) {
		end = len(posts)
	}
	out := make([]models.Post, end-start)
	copy(out, posts[start:end])
	return out, end < len(posts)
}
