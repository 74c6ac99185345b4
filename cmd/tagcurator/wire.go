//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package main

import (
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"

	"tagcurator/internal/biz"
	"tagcurator/internal/conf"
	"tagcurator/internal/data"
)

// wireCuration init the curation pipeline.
func wireCuration(*conf.Bootstrap, biz.ProgressFactory, log.Logger) (*biz.CurationUsecase, func(), error) {
	panic(wire.Build(
		wire.FieldsOf(new(*conf.Bootstrap), "Input", "Data", "Output"),
		data.ProviderSet,
		biz.ProviderSet,
	))
}

// wireDeprecation init the deprecated tag refresh.
func wireDeprecation(*conf.Bootstrap, log.Logger) (*biz.DeprecationUsecase, func(), error) {
	panic(wire.Build(
		wire.FieldsOf(new(*conf.Bootstrap), "Input", "Danbooru"),
		data.ProviderSet,
		biz.ProviderSet,
	))
}
