package data

import (
	"fmt"

	"github.com/go-kratos/kratos/v2/log"

	"tagcurator/internal/biz"
	"tagcurator/internal/conf"
)

// NewSinks builds the configured sinks in configuration order.
func NewSinks(data *Data, out *conf.Output, logger log.Logger) ([]biz.Sink, error) {
	sinks := make([]biz.Sink, 0, len(out.Sinks))
	for _, name := range out.Sinks {
		switch name {
		case sinkFile:
			sinks = append(sinks, NewFileSink(out.Dir, logger))
		case sinkPostgres:
			if data.Pool == nil {
				return nil, fmt.Errorf("%s sink needs data.database", name)
			}
			sinks = append(sinks, NewPgSink(data, logger))
		case sinkRedis:
			if data.Cache == nil {
				return nil, fmt.Errorf("%s sink needs data.redis", name)
			}
			sinks = append(sinks, NewRedisSink(data.Cache, out.RedisPrefix, logger))
		default:
			return nil, fmt.Errorf("unknown sink %q", name)
		}
	}
	return sinks, nil
}
