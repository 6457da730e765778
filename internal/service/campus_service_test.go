package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"campuseats/internal/errors"
	"campuseats/internal/model"
)

// MockCampusRepository is a mock implementation of CampusRepository.
type MockCampusRepository struct {
	mock.Mock
}

func (m *MockCampusRepository) Create(ctx context.Context, campus *model.Campus) error {
	args := m.Called(ctx, campus)
	return args.Error(0)
}

func (m *MockCampusRepository) Update(ctx context.Context, campus *model.Campus) error {
	args := m.Called(ctx, campus)
	return args.Error(0)
}

func (m *MockCampusRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Campus, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Campus), args.Error(1)
}

func (m *MockCampusRepository) FindByNameAndState(ctx context.Context, name, state string) (*model.Campus, error) {
	args := m.Called(ctx, name, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Campus), args.Error(1)
}

func (m *MockCampusRepository) ListAll(ctx context.Context) ([]model.Campus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Campus), args.Error(1)
}

func campusDirectory() []model.Campus {
	return []model.Campus{
		{ID: uuid.New(), Name: "MIT", City: "Cambridge", State: "MA"},
		{ID: uuid.New(), Name: "Harvard University", City: "Cambridge", State: "MA"},
		{ID: uuid.New(), Name: "University of Michigan", City: "Ann Arbor", State: "MI"},
		{ID: uuid.New(), Name: "Michigan State University", City: "East Lansing", State: "MI"},
		{ID: uuid.New(), Name: "Stanford University", City: "Stanford", State: "CA"},
		{ID: uuid.New(), Name: "University of Texas at Austin", City: "Austin", State: "TX"},
	}
}

func TestCampusService_Search(t *testing.T) {
	tests := []struct {
		name          string
		query         string
		expectListAll bool
		check         func(t *testing.T, results []model.Campus)
	}{
		{
			name:          "empty query returns empty slice without hitting the repo",
			query:         "   ",
			expectListAll: false,
			check: func(t *testing.T, results []model.Campus) {
				assert.NotNil(t, results)
				assert.Empty(t, results)
			},
		},
		{
			name:          "exact name ranks first",
			query:         "MIT",
			expectListAll: true,
			check: func(t *testing.T, results []model.Campus) {
				assert.NotEmpty(t, results)
				assert.Equal(t, "MIT", results[0].Name)
			},
		},
		{
			name:          "typo still finds the campus",
			query:         "stanfrd",
			expectListAll: true,
			check: func(t *testing.T, results []model.Campus) {
				assert.NotEmpty(t, results)
				assert.Equal(t, "Stanford University", results[0].Name)
			},
		},
		{
			name:          "gibberish matches nothing",
			query:         "zzqxv",
			expectListAll: true,
			check: func(t *testing.T, results []model.Campus) {
				assert.Empty(t, results)
			},
		},
		{
			name:          "short query prefers name prefixes",
			query:         "mi",
			expectListAll: true,
			check: func(t *testing.T, results []model.Campus) {
				assert.NotEmpty(t, results)
				// Prefix matches come before substring matches.
				assert.Equal(t, "MIT", results[0].Name)
				assert.Equal(t, "Michigan State University", results[1].Name)
			},
		},
		{
			name:          "short query matches state code",
			query:         "tx",
			expectListAll: true,
			check: func(t *testing.T, results []model.Campus) {
				assert.Len(t, results, 1)
				assert.Equal(t, "University of Texas at Austin", results[0].Name)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockCampusRepository)
			if tt.expectListAll {
				mockRepo.On("ListAll", mock.Anything).Return(campusDirectory(), nil)
			}

			service := NewCampusService(mockRepo, nil)
			results, err := service.Search(context.Background(), tt.query)

			assert.NoError(t, err)
			tt.check(t, results)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestCampusService_Search_CapsResults(t *testing.T) {
	directory := make([]model.Campus, 0, 80)
	for i := 0; i < 80; i++ {
		directory = append(directory, model.Campus{
			ID:    uuid.New(),
			Name:  "University of Testing",
			City:  "Springfield",
			State: "IL",
		})
	}

	mockRepo := new(MockCampusRepository)
	mockRepo.On("ListAll", mock.Anything).Return(directory, nil)

	service := NewCampusService(mockRepo, nil)
	results, err := service.Search(context.Background(), "university")

	assert.NoError(t, err)
	assert.Len(t, results, maxSearchResults)
}

func TestCampusService_Get(t *testing.T) {
	campusID := uuid.New()

	t.Run("found", func(t *testing.T) {
		mockRepo := new(MockCampusRepository)
		mockRepo.On("FindByID", mock.Anything, campusID).Return(&model.Campus{ID: campusID, Name: "MIT"}, nil)

		service := NewCampusService(mockRepo, nil)
		campus, err := service.Get(context.Background(), campusID)

		assert.NoError(t, err)
		assert.Equal(t, "MIT", campus.Name)
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo := new(MockCampusRepository)
		mockRepo.On("FindByID", mock.Anything, campusID).Return(nil, gorm.ErrRecordNotFound)

		service := NewCampusService(mockRepo, nil)
		campus, err := service.Get(context.Background(), campusID)

		assert.Nil(t, campus)
		assert.Equal(t, errors.ErrCampusNotFound, err)
	})
}

func TestFieldSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, fieldSimilarity("mit", "MIT"))
	assert.Equal(t, 0.95, fieldSimilarity("stan", "Stanford University"))
	assert.Equal(t, 0.85, fieldSimilarity("michigan", "University of Michigan"))
	assert.Greater(t, fieldSimilarity("stanfrd", "Stanford University"), 0.7)
	assert.Equal(t, 0.0, fieldSimilarity("anything", ""))
}
