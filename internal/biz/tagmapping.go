package biz

import (
	"context"
	"errors"

	"github.com/go-kratos/kratos/v2/log"

	"tagcurator/internal/pkg/filter"
	"tagcurator/internal/pkg/taggraph"
)

// TagMappings bundles the read-only lookup structures shared by every
// normalization worker.
type TagMappings struct {
	Graph     *taggraph.Graph
	Blacklist *filter.Blacklist
}

// TagMappingUsecase builds TagMappings from the tag tables.
type TagMappingUsecase struct {
	repo TagTableRepo
	log  *log.Helper
}

// NewTagMappingUsecase new a TagMapping usecase.
func NewTagMappingUsecase(repo TagTableRepo, logger log.Logger) *TagMappingUsecase {
	return &TagMappingUsecase{
		repo: repo,
		log:  log.NewHelper(logger),
	}
}

// Build loads aliases, implications, blacklist and deprecations and resolves
// them into a graph. Alias cycles and conflicts abort the build.
func (uc *TagMappingUsecase) Build(ctx context.Context) (*TagMappings, error) {
	aliases, err := uc.repo.ListAliases(ctx)
	if err != nil {
		return nil, err
	}
	implications, err := uc.repo.ListImplications(ctx)
	if err != nil {
		return nil, err
	}
	blacklist, err := uc.repo.Blacklist(ctx)
	if err != nil {
		return nil, err
	}
	deprecations, err := uc.repo.Deprecations(ctx)
	if err != nil {
		return nil, err
	}

	graph, err := BuildGraph(aliases, implications)
	if err != nil {
		return nil, err
	}

	m := &TagMappings{
		Graph:     graph,
		Blacklist: filter.NewBlacklist(blacklist, deprecations),
	}
	uc.log.Infof("tag mappings ready: aliases=%d implication_sources=%d blacklisted=%d (deprecated=%d)",
		graph.AliasCount(), len(graph.CloseImplications()), m.Blacklist.Len(), len(deprecations))
	return m, nil
}

// BuildGraph wraps taggraph.New and maps its errors onto the error taxonomy.
func BuildGraph(aliases []taggraph.Alias, implications []taggraph.Implication) (*taggraph.Graph, error) {
	graph, err := taggraph.New(aliases, implications)
	if err == nil {
		return graph, nil
	}

	var cycle *taggraph.CycleError
	if errors.As(err, &cycle) {
		return nil, ErrorGraphCycle("%s", cycle.Error()).WithCause(err)
	}
	var conflict *taggraph.ConflictError
	if errors.As(err, &conflict) {
		return nil, ErrorDataConsistency("%s", conflict.Error()).WithCause(err)
	}
	return nil, err
}
