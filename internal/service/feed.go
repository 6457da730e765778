package service

import (
	"sort"

	"github.com/google/uuid"

	"campuseats/internal/model"
	"campuseats/internal/repository"
)

// neutralRating stands in for a post with no reviews during comparison.
// It is never shown to users as an actual average.
const neutralRating = 2.5

// ratingTier is the gap at which community rating alone decides order.
// Posts rated within this band of each other fall through to the viewer's
// taste and then recency.
const ratingTier = 1.0

// rankPosts orders a snapshot of posts in place:
//  1. by mean review rating, when the gap is at least ratingTier;
//  2. by the viewer's preference for the post's food type;
//  3. by creation time, newest first.
//
// viewer may be nil (anonymous), which ranks every food type neutrally.
// The order is total and deterministic for a fixed snapshot and is
// recomputed on every read.
func rankPosts(posts []model.FoodPost, ratings map[uuid.UUID]repository.PostRating, viewer *model.User) {
	effective := func(p *model.FoodPost) float64 {
		if r, ok := ratings[p.ID]; ok && r.Count > 0 {
			return r.Average
		}
		return neutralRating
	}

	sort.SliceStable(posts, func(i, j int) bool {
		a, b := &posts[i], &posts[j]

		ra, rb := effective(a), effective(b)
		diff := ra - rb
		if diff >= ratingTier {
			return true
		}
		if diff <= -ratingTier {
			return false
		}

		pa, pb := viewer.PreferenceFor(a.FoodType), viewer.PreferenceFor(b.FoodType)
		if pa != pb {
			return pa > pb
		}

		return a.CreatedAt.After(b.CreatedAt)
	})
}
