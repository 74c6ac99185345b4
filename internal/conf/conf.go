package conf

import (
	"fmt"
	"runtime"
	"time"
)

// Bootstrap is the root of configs/config.yaml.
type Bootstrap struct {
	Log        *Log        `json:"log"`
	Input      *Input      `json:"input"`
	Data       *Data       `json:"data"`
	Pipeline   *Pipeline   `json:"pipeline"`
	Vocabulary *Vocabulary `json:"vocabulary"`
	Output     *Output     `json:"output"`
	Danbooru   *Danbooru   `json:"danbooru"`
}

type Log struct {
	Level string `json:"level"`
}

// Input lists every file or table the pipeline reads.
type Input struct {
	Posts        *PostSource `json:"posts"`
	Aliases      string      `json:"aliases"`
	Implications string      `json:"implications"`
	Blacklist    string      `json:"blacklist"`
	Deprecations string      `json:"deprecations"`
	Duplicates   string      `json:"duplicates"`
	// DuplicatesKey is "post_id" or "file_hash".
	DuplicatesKey string `json:"duplicates_key"`
	// Unreadable lists post ids or file hashes whose image failed to decode.
	Unreadable string `json:"unreadable"`
}

// PostSource selects where raw posts come from: "file" or "postgres".
type PostSource struct {
	Driver           string `json:"driver"`
	Path             string `json:"path"`
	RequireEmbedding bool   `json:"require_embedding"`
	PageSize         int    `json:"page_size"`
}

type Data struct {
	Database *Database `json:"database"`
	Redis    *Redis    `json:"redis"`
}

type Database struct {
	Driver string `json:"driver"`
	Source string `json:"source"`
	Pool   *Pool  `json:"pool"`
}

type Pool struct {
	MaxOpenConns    int32 `json:"max_open_conns"`
	MinIdleConns    int32 `json:"min_idle_conns"`
	MaxConnLifetime int64 `json:"max_conn_lifetime"` // minutes
	MaxConnIdleTime int64 `json:"max_conn_idle_time"` // minutes
}

type Redis struct {
	Addr         string `json:"addr"`
	Network      string `json:"network"`
	Password     string `json:"password"`
	DB           int    `json:"db"`
	ReadTimeout  string `json:"read_timeout"`
	WriteTimeout string `json:"write_timeout"`
}

type Pipeline struct {
	Workers  int  `json:"workers"`
	Progress bool `json:"progress"`
}

// DefaultTarget is the vocabulary size used when target is not set.
const DefaultTarget = 6000

// Vocabulary drives top tag selection.
type Vocabulary struct {
	// Target caps the vocabulary size; nil means DefaultTarget and an
	// explicit 0 means no cap.
	Target      *int     `json:"target"`
	Step        int      `json:"step"`
	MinUsage    int      `json:"min_usage"`
	MustExclude []string `json:"must_exclude"`
}

type Output struct {
	// Sinks are emitted in order: "file", "postgres", "redis".
	Sinks          []string `json:"sinks"`
	Dir            string   `json:"dir"`
	VocabularyOnly bool     `json:"vocabulary_only"`
	RedisPrefix    string   `json:"redis_prefix"`
}

// Danbooru configures the deprecated tag fetcher.
type Danbooru struct {
	Endpoint string `json:"endpoint"`
	PageSize int    `json:"page_size"`
	MaxPages int    `json:"max_pages"`
	RetryMax int    `json:"retry_max"`
	Timeout  string `json:"timeout"`
}

// DefaultMustExclude are meta tags that must never reach the vocabulary.
var DefaultMustExclude = []string{
	"safe",
	"questionable",
	"nsfw",
	"worst_quality",
	"low_quality",
	"medium_quality",
	"high_quality",
	"best_quality",
	"masterpiece",
}

// Normalize fills every unset section and field with its default.
func (b *Bootstrap) Normalize() {
	if b.Log == nil {
		b.Log = &Log{}
	}
	if b.Log.Level == "" {
		b.Log.Level = "info"
	}

	if b.Input == nil {
		b.Input = &Input{}
	}
	if b.Input.Posts == nil {
		b.Input.Posts = &PostSource{}
	}
	if b.Input.Posts.Driver == "" {
		b.Input.Posts.Driver = "file"
	}
	if b.Input.Posts.PageSize <= 0 {
		b.Input.Posts.PageSize = 10000
	}
	if b.Input.DuplicatesKey == "" {
		b.Input.DuplicatesKey = "post_id"
	}

	if b.Data == nil {
		b.Data = &Data{}
	}
	if b.Data.Database == nil {
		b.Data.Database = &Database{}
	}
	if b.Data.Database.Driver == "" {
		b.Data.Database.Driver = "postgres"
	}
	if b.Data.Database.Pool == nil {
		b.Data.Database.Pool = &Pool{}
	}
	if b.Data.Redis == nil {
		b.Data.Redis = &Redis{}
	}
	if b.Data.Redis.Network == "" {
		b.Data.Redis.Network = "tcp"
	}

	if b.Pipeline == nil {
		b.Pipeline = &Pipeline{}
	}
	if b.Pipeline.Workers <= 0 {
		b.Pipeline.Workers = runtime.GOMAXPROCS(0)
	}

	if b.Vocabulary == nil {
		b.Vocabulary = &Vocabulary{}
	}
	if b.Vocabulary.Target == nil {
		target := DefaultTarget
		b.Vocabulary.Target = &target
	}
	if *b.Vocabulary.Target < 0 {
		*b.Vocabulary.Target = 0
	}
	if b.Vocabulary.Step <= 0 {
		b.Vocabulary.Step = 1000
	}
	if b.Vocabulary.MinUsage <= 0 {
		b.Vocabulary.MinUsage = 1000
	}
	if b.Vocabulary.MustExclude == nil {
		b.Vocabulary.MustExclude = append([]string{}, DefaultMustExclude...)
	}

	if b.Output == nil {
		b.Output = &Output{}
	}
	if len(b.Output.Sinks) == 0 {
		b.Output.Sinks = []string{"file"}
	}
	if b.Output.Dir == "" {
		b.Output.Dir = "."
	}
	if b.Output.RedisPrefix == "" {
		b.Output.RedisPrefix = "tagcurator"
	}

	if b.Danbooru == nil {
		b.Danbooru = &Danbooru{}
	}
	if b.Danbooru.Endpoint == "" {
		b.Danbooru.Endpoint = "https://danbooru.donmai.us"
	}
	if b.Danbooru.PageSize <= 0 {
		b.Danbooru.PageSize = 1000
	}
	if b.Danbooru.MaxPages <= 0 {
		b.Danbooru.MaxPages = 20
	}
	if b.Danbooru.RetryMax <= 0 {
		b.Danbooru.RetryMax = 4
	}
	if b.Danbooru.Timeout == "" {
		b.Danbooru.Timeout = "30s"
	}
}

// Validate rejects values Normalize cannot repair. Call it after Normalize.
func (b *Bootstrap) Validate() error {
	durations := []struct {
		field string
		value string
	}{
		{"data.redis.read_timeout", b.Data.Redis.ReadTimeout},
		{"data.redis.write_timeout", b.Data.Redis.WriteTimeout},
		{"danbooru.timeout", b.Danbooru.Timeout},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		if _, err := time.ParseDuration(d.value); err != nil {
			return fmt.Errorf("%s: %w", d.field, err)
		}
	}

	switch b.Input.DuplicatesKey {
	case "post_id", "file_hash":
	default:
		return fmt.Errorf("input.duplicates_key: unknown key %q", b.Input.DuplicatesKey)
	}
	return nil
}

// ParseDuration parses a duration already checked by Validate, returning
// fallback when s is empty.
func ParseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
