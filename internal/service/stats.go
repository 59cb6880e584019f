package service

import (
	"context"
	"sort"

	"github.com/darematch/api/internal/model"
)

// StatsRepository is the slice of challenge storage the stats service needs.
// Aggregation happens in memory; the numbers map keyed by user id does not
// aggregate cleanly in the database.
type StatsRepository interface {
	ListAll(ctx context.Context) ([]*model.Challenge, error)
}

// StatsService computes game statistics from challenge history
type StatsService struct {
	statsRepo StatsRepository
}

// StatsServiceConfig holds configuration for the stats service
type StatsServiceConfig struct {
	StatsRepo StatsRepository
}

// NewStatsService creates a new stats service
func NewStatsService(cfg StatsServiceConfig) *StatsService {
	return &StatsService{statsRepo: cfg.StatsRepo}
}

// UserStats summarizes one user's challenge history
func (s *StatsService) UserStats(ctx context.Context, userID string) (*model.UserGameStats, error) {
	challenges, err := s.statsRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := &model.UserGameStats{UserID: userID}
	for _, c := range challenges {
		if !c.IsParticipant(userID) {
			continue
		}
		stats.TotalChallenges++
		switch c.Status {
		case model.ChallengeStatusPending:
			stats.PendingChallenges++
		case model.ChallengeStatusAccepted, model.ChallengeStatusActive:
			stats.ActiveChallenges++
		case model.ChallengeStatusCompleted:
			stats.CompletedChallenges++
			if c.Result != nil && *c.Result == model.ChallengeResultMatch {
				stats.Matches++
			} else {
				stats.NoMatches++
			}
		case model.ChallengeStatusRejected:
			stats.RejectedChallenges++
		}
	}

	if stats.CompletedChallenges > 0 {
		stats.MatchRate = float64(stats.Matches) / float64(stats.CompletedChallenges)
	}
	return stats, nil
}

// GlobalStats summarizes all challenges across all players
func (s *StatsService) GlobalStats(ctx context.Context) (*model.GlobalGameStats, error) {
	challenges, err := s.statsRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := &model.GlobalGameStats{}
	players := make(map[string]struct{})
	for _, c := range challenges {
		stats.TotalChallenges++
		players[c.FromUser] = struct{}{}
		players[c.ToUser] = struct{}{}
		if c.Status != model.ChallengeStatusCompleted {
			continue
		}
		stats.CompletedChallenges++
		if c.Result != nil && *c.Result == model.ChallengeResultMatch {
			stats.Matches++
		} else {
			stats.NoMatches++
		}
	}

	stats.UniquePlayers = len(players)
	if stats.CompletedChallenges > 0 {
		stats.MatchRate = float64(stats.Matches) / float64(stats.CompletedChallenges)
	}
	return stats, nil
}

// TopNumbers returns the most-picked numbers across completed challenges
func (s *StatsService) TopNumbers(ctx context.Context, limit int) ([]*model.NumberStats, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	challenges, err := s.statsRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	byNumber := make(map[int]*model.NumberStats)
	for _, c := range challenges {
		if c.Status != model.ChallengeStatusCompleted {
			continue
		}
		matched := c.Result != nil && *c.Result == model.ChallengeResultMatch
		for _, value := range c.Numbers {
			entry, ok := byNumber[value]
			if !ok {
				entry = &model.NumberStats{Number: value}
				byNumber[value] = entry
			}
			entry.TimesPicked++
			if matched {
				entry.TimesInMatch++
			}
		}
	}

	numbers := make([]*model.NumberStats, 0, len(byNumber))
	for _, entry := range byNumber {
		numbers = append(numbers, entry)
	}
	sort.Slice(numbers, func(i, j int) bool {
		if numbers[i].TimesPicked != numbers[j].TimesPicked {
			return numbers[i].TimesPicked > numbers[j].TimesPicked
		}
		return numbers[i].Number < numbers[j].Number
	})

	if len(numbers) > limit {
		numbers = numbers[:limit]
	}
	return numbers, nil
}

// TopPairs returns the player pairs with the most challenges between them
func (s *StatsService) TopPairs(ctx context.Context, limit int) ([]*model.PlayerPair, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	challenges, err := s.statsRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	type pairKey struct{ a, b string }
	byPair := make(map[pairKey]*model.PlayerPair)
	for _, c := range challenges {
		a, b := model.OrderPair(c.FromUser, c.ToUser)
		key := pairKey{a, b}
		entry, ok := byPair[key]
		if !ok {
			entry = &model.PlayerPair{UserA: a, UserB: b}
			byPair[key] = entry
		}
		entry.Challenges++
		if c.Status == model.ChallengeStatusCompleted && c.Result != nil && *c.Result == model.ChallengeResultMatch {
			entry.Matches++
		}
	}

	pairs := make([]*model.PlayerPair, 0, len(byPair))
	for _, entry := range byPair {
		pairs = append(pairs, entry)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Challenges != pairs[j].Challenges {
			return pairs[i].Challenges > pairs[j].Challenges
		}
		if pairs[i].UserA != pairs[j].UserA {
			return pairs[i].UserA < pairs[j].UserA
		}
		return pairs[i].UserB < pairs[j].UserB
	})

	if len(pairs) > limit {
		pairs = pairs[:limit]
	}
	return pairs, nil
}
