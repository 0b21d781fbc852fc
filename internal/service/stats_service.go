package service

import (
	"context"
	"sort"

	"blogcms/internal/models"
	"blogcms/internal/repository"
)

type StatsService struct {
	repo repository.StatsRepository
}

func NewStatsService(repo repository.StatsRepository) *StatsService {
	return &StatsService{repo: repo}
}

// Get returns the dashboard aggregate. Trashed posts count towards every
// total. Monthly views group posts by the calendar month they were created
// in, across all years, and list only months that have posts.
func (s *StatsService) Get(ctx context.Context) (*models.Stats, error) {
	totals, err := s.repo.Totals(ctx)
	if err != nil {
		return nil, mapRepoError(err, "Stats", nil)
	}
	rows, err := s.repo.PostViews(ctx)
	if err != nil {
		return nil, mapRepoError(err, "Stats", nil)
	}

	return &models.Stats{
		TotalPosts:    totals.Posts,
		TotalMessages: totals.Messages,
		TotalViews:    totals.Views,
		MonthlyViews:  monthlyViews(rows),
	}, nil
}

func monthlyViews(rows []repository.PostViews) []models.MonthlyViews {
	byMonth := make(map[int]int64)
	for _, r := range rows {
		byMonth[int(r.CreatedAt.Month())] += r.Views
	}

	out := make([]models.MonthlyViews, 0, len(byMonth))
	for month, views := range byMonth {
		out = append(out, models.MonthlyViews{Month: month, Views: views})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}
