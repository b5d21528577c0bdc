package redis

import (
	"context"
	"math"
	"strconv"

	"github.com/kailas-cloud/nearby/internal/db"
)

// ZAdd adds member with score to the sorted set at key.
func (s *Store) ZAdd(ctx context.Context, key string, score float64, member string) error {
	cmd := s.b().Zadd().Key(key).ScoreMember().ScoreMember(score, member).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpZAdd, Err: err}
	}
	return nil
}

// ZCount counts members with scores in [minScore, maxScore].
func (s *Store) ZCount(ctx context.Context, key string, minScore, maxScore float64) (int64, error) {
	cmd := s.b().Zcount().Key(key).Min(formatScore(minScore)).Max(formatScore(maxScore)).Build()
	n, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpZCount, Err: err}
	}
	return n, nil
}

// ZRemRangeByScore removes members with scores in [minScore, maxScore].
func (s *Store) ZRemRangeByScore(ctx context.Context, key string, minScore, maxScore float64) error {
	cmd := s.b().Zremrangebyscore().Key(key).Min(formatScore(minScore)).Max(formatScore(maxScore)).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpZRemRangeByScore, Err: err}
	}
	return nil
}

func formatScore(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "+inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
