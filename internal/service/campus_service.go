package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"campuseats/internal/cache"
	"campuseats/internal/errors"
	"campuseats/internal/model"
	"campuseats/internal/repository"
)

const (
	// maxSearchResults caps every search, so a broad query never returns
	// the whole directory.
	maxSearchResults = 50

	// minFuzzyQueryLen is the query length at which matching switches from
	// prefix/substring to weighted fuzzy scoring.
	minFuzzyQueryLen = 3

	// fuzzyThreshold is the minimum weighted score for a fuzzy candidate.
	fuzzyThreshold = 0.3

	campusCacheKey = "campuses:all"
	campusCacheTTL = 12 * time.Hour
)

// Field weights for fuzzy matching: name dominates, city helps, state
// barely nudges.
const (
	nameWeight  = 0.7
	cityWeight  = 0.2
	stateWeight = 0.1
)

// CampusService provides the campus directory and fuzzy search.
type CampusService interface {
	Search(ctx context.Context, query string) ([]model.Campus, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Campus, error)
}

type campusService struct {
	campusRepo repository.CampusRepository
	cache      *cache.Client
}

// NewCampusService creates a new campus service.
func NewCampusService(campusRepo repository.CampusRepository, cache *cache.Client) CampusService {
	return &campusService{campusRepo: campusRepo, cache: cache}
}

// Get returns a campus by id.
func (s *campusService) Get(ctx context.Context, id uuid.UUID) (*model.Campus, error) {
	campus, err := s.campusRepo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrCampusNotFound
		}
		return nil, err
	}
	return campus, nil
}

// Search returns campuses ranked by relevance for a free-text query.
// An empty query returns nothing; callers must prompt for input rather
// than dump the whole directory.
func (s *campusService) Search(ctx context.Context, query string) ([]model.Campus, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.Campus{}, nil
	}

	campuses, err := s.directory(ctx)
	if err != nil {
		return nil, err
	}

	var results []model.Campus
	if len(query) < minFuzzyQueryLen {
		results = searchShort(campuses, query)
	} else {
		results = searchFuzzy(campuses, query)
	}

	if len(results) > maxSearchResults {
		results = results[:maxSearchResults]
	}
	return results, nil
}

// directory returns the full campus list, read through the cache.
// Reference data, so a long TTL is safe.
func (s *campusService) directory(ctx context.Context) ([]model.Campus, error) {
	var campuses []model.Campus
	if s.cache.GetJSON(ctx, campusCacheKey, &campuses) {
		return campuses, nil
	}

	campuses, err := s.campusRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetJSON(ctx, campusCacheKey, campuses, campusCacheTTL)
	return campuses, nil
}

// searchShort handles 1-2 character queries: case-insensitive substring on
// the name, or an exact state-code match. Prefix matches sort first, then
// alphabetical.
func searchShort(campuses []model.Campus, query string) []model.Campus {
	q := strings.ToLower(query)

	type shortMatch struct {
		campus   model.Campus
		isPrefix bool
	}
	var matches []shortMatch
	for _, c := range campuses {
		name := strings.ToLower(c.Name)
		switch {
		case strings.HasPrefix(name, q):
			matches = append(matches, shortMatch{campus: c, isPrefix: true})
		case strings.Contains(name, q), strings.EqualFold(c.State, query):
			matches = append(matches, shortMatch{campus: c, isPrefix: false})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].isPrefix != matches[j].isPrefix {
			return matches[i].isPrefix
		}
		return matches[i].campus.Name < matches[j].campus.Name
	})

	out := make([]model.Campus, len(matches))
	for i, m := range matches {
		out[i] = m.campus
	}
	return out
}

// searchFuzzy scores each campus against the query with weighted field
// similarity and returns candidates above the threshold, best first.
func searchFuzzy(campuses []model.Campus, query string) []model.Campus {
	q := strings.ToLower(query)

	type scored struct {
		campus model.Campus
		score  float64
	}
	var matches []scored
	for _, c := range campuses {
		score := nameWeight*fieldSimilarity(q, c.Name) +
			cityWeight*fieldSimilarity(q, c.City) +
			stateWeight*fieldSimilarity(q, c.State)
		if score >= fuzzyThreshold {
			matches = append(matches, scored{campus: c, score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].campus.Name < matches[j].campus.Name
	})

	out := make([]model.Campus, len(matches))
	for i, m := range matches {
		out[i] = m.campus
	}
	return out
}

// fieldSimilarity scores how well a lowercase query matches one field.
// Exact and substring matches score highest; otherwise the best normalized
// edit distance against the whole field or any single word of it counts.
func fieldSimilarity(q, field string) float64 {
	f := strings.ToLower(field)
	if f == "" {
		return 0
	}

	switch {
	case f == q:
		return 1.0
	case strings.HasPrefix(f, q):
		return 0.95
	case strings.Contains(f, q):
		return 0.85
	}

	best := editSimilarity(q, f)
	for _, word := range strings.Fields(f) {
		if len(word) < 2 {
			continue
		}
		if sim := editSimilarity(q, word); sim > best {
			best = sim
		}
	}
	return best
}

// editSimilarity normalizes Levenshtein distance into [0,1].
func editSimilarity(a, b string) float64 {
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	sim := 1.0 - float64(dist)/float64(longest)
	if sim < 0 {
		return 0
	}
	return sim
}
