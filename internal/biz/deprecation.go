package biz

import (
	"context"
	"sort"

	"github.com/go-kratos/kratos/v2/log"

	"tagcurator/internal/pkg/filter"
)

// DeprecationUsecase refreshes the deprecated tag list from upstream.
type DeprecationUsecase struct {
	fetcher DeprecationFetcher
	store   DeprecationStore
	log     *log.Helper
}

// NewDeprecationUsecase new a Deprecation usecase.
func NewDeprecationUsecase(fetcher DeprecationFetcher, store DeprecationStore, logger log.Logger) *DeprecationUsecase {
	return &DeprecationUsecase{
		fetcher: fetcher,
		store:   store,
		log:     log.NewHelper(logger),
	}
}

// Refresh downloads the deprecated tags, normalizes and sorts them, and
// stores the result. It returns the number of tags stored.
func (uc *DeprecationUsecase) Refresh(ctx context.Context) (int, error) {
	raw, err := uc.fetcher.FetchDeprecated(ctx)
	if err != nil {
		return 0, err
	}

	seen := make(map[string]struct{}, len(raw))
	tags := make([]string, 0, len(raw))
	for _, r := range raw {
		t := filter.NormalizeTag(r)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	sort.Strings(tags)

	if err := uc.store.SaveDeprecations(ctx, tags); err != nil {
		return 0, err
	}
	uc.log.Infof("stored %d deprecated tags", len(tags))
	return len(tags), nil
}
