package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"campuseats/internal/model"
	"campuseats/internal/repository"
)

func ratedPost(foodType model.FoodType, age time.Duration) model.FoodPost {
	return model.FoodPost{
		ID:        uuid.New(),
		FoodType:  foodType,
		CreatedAt: time.Now().Add(-age),
	}
}

func ratingsFor(pairs map[uuid.UUID]float64) map[uuid.UUID]repository.PostRating {
	out := make(map[uuid.UUID]repository.PostRating, len(pairs))
	for id, avg := range pairs {
		out[id] = repository.PostRating{FoodPostID: id, Average: avg, Count: 3}
	}
	return out
}

func TestRankPosts_RatingTierDominates(t *testing.T) {
	// The viewer loves pizza, but a full rating tier beats taste.
	lowRated := ratedPost(model.FoodTypePizza, time.Minute)
	highRated := ratedPost(model.FoodTypeSnacks, 2*time.Hour)

	posts := []model.FoodPost{lowRated, highRated}
	ratings := ratingsFor(map[uuid.UUID]float64{
		lowRated.ID:  3.0,
		highRated.ID: 4.5,
	})
	viewer := &model.User{CuisinePreferences: model.PreferenceMap{"pizza": 5, "snacks": 1}}

	rankPosts(posts, ratings, viewer)

	assert.Equal(t, highRated.ID, posts[0].ID)
	assert.Equal(t, lowRated.ID, posts[1].ID)
}

func TestRankPosts_PreferenceBreaksCloseRatings(t *testing.T) {
	// Ratings within a tier of each other fall through to taste.
	pizza := ratedPost(model.FoodTypePizza, 2*time.Hour)
	snacks := ratedPost(model.FoodTypeSnacks, time.Minute)

	posts := []model.FoodPost{snacks, pizza}
	ratings := ratingsFor(map[uuid.UUID]float64{
		pizza.ID:  3.8,
		snacks.ID: 4.2,
	})
	viewer := &model.User{CuisinePreferences: model.PreferenceMap{"pizza": 5, "snacks": 2}}

	rankPosts(posts, ratings, viewer)

	assert.Equal(t, pizza.ID, posts[0].ID)
}

func TestRankPosts_RecencyBreaksTies(t *testing.T) {
	older := ratedPost(model.FoodTypePizza, 3*time.Hour)
	newer := ratedPost(model.FoodTypePizza, 5*time.Minute)

	posts := []model.FoodPost{older, newer}

	rankPosts(posts, map[uuid.UUID]repository.PostRating{}, nil)

	assert.Equal(t, newer.ID, posts[0].ID)
	assert.Equal(t, older.ID, posts[1].ID)
}

func TestRankPosts_UnreviewedPostsRankNeutrally(t *testing.T) {
	// An unreviewed post sits at the neutral midpoint, so a 4.0-rated post
	// does not outrank it on rating alone.
	unreviewed := ratedPost(model.FoodTypeOther, time.Minute)
	reviewed := ratedPost(model.FoodTypeOther, 2*time.Hour)

	posts := []model.FoodPost{reviewed, unreviewed}
	ratings := ratingsFor(map[uuid.UUID]float64{reviewed.ID: 3.4})

	rankPosts(posts, ratings, nil)

	// 3.4 vs neutral 2.5 is within the tier, so recency decides.
	assert.Equal(t, unreviewed.ID, posts[0].ID)
}

func TestRankPosts_NilViewerIsNeutral(t *testing.T) {
	pizza := ratedPost(model.FoodTypePizza, time.Hour)
	mexican := ratedPost(model.FoodTypeMexican, time.Minute)

	posts := []model.FoodPost{pizza, mexican}

	rankPosts(posts, map[uuid.UUID]repository.PostRating{}, nil)

	// Every food type is preference 3 for a nil viewer; newest wins.
	assert.Equal(t, mexican.ID, posts[0].ID)
}

func TestRankPosts_Deterministic(t *testing.T) {
	posts := []model.FoodPost{
		ratedPost(model.FoodTypePizza, time.Hour),
		ratedPost(model.FoodTypeSnacks, 2*time.Hour),
		ratedPost(model.FoodTypeAsian, 3*time.Hour),
		ratedPost(model.FoodTypeDesserts, 30*time.Minute),
	}
	ratings := ratingsFor(map[uuid.UUID]float64{
		posts[0].ID: 4.8,
		posts[1].ID: 2.1,
		posts[2].ID: 3.3,
	})
	viewer := &model.User{CuisinePreferences: model.PreferenceMap{"asian": 5}}

	first := make([]model.FoodPost, len(posts))
	copy(first, posts)
	rankPosts(first, ratings, viewer)

	second := make([]model.FoodPost, len(posts))
	copy(second, posts)
	rankPosts(second, ratings, viewer)

	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
}
