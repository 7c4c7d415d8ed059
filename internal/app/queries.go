package app

import (
	"context"
	"fmt"
	"time"

	"stayhook/internal/domain"
	"stayhook/internal/matching"
)

type QueryRepository interface {
	domain.EventStore
	domain.EntityDirectory
}

type QueryService struct {
	repo     QueryRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r QueryRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

// GetEvent always reads through; statuses change under the processor.
func (s *QueryService) GetEvent(ctx context.Context, id string) (domain.EventView, error) {
	ev, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return domain.EventView{}, err
	}
	return ev.View(), nil
}

// SuggestProperties ranks the account's properties for a free-text name, for
// manual review of events that failed to match.
func (s *QueryService) SuggestProperties(ctx context.Context, accountID, name string, p domain.Platform) (matching.Suggestions, error) {
	key := fmt.Sprintf("suggest:%s:%s:%s", accountID, p, matching.Normalize(name))
	var out matching.Suggestions
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &out); ok {
			return out, nil
		}
	}
	entities, err := s.repo.ListEntities(ctx, accountID)
	if err != nil {
		return matching.Suggestions{}, err
	}
	out = matching.Suggest(name, entities, p)
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	}
	return out, nil
}
