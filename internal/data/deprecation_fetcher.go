package data

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/hashicorp/go-retryablehttp"

	"tagcurator/internal/biz"
	"tagcurator/internal/conf"
	"tagcurator/internal/pkg/pagination"
)

// retryLogger adapts a kratos log.Helper to retryablehttp.LeveledLogger.
type retryLogger struct {
	log *log.Helper
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log.Errorf("%s %v", msg, keysAndValues)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.log.Debugf("%s %v", msg, keysAndValues)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log.Warnf("%s %v", msg, keysAndValues)
}

type danbooruTag struct {
	Name string `json:"name"`
}

type deprecationFetcher struct {
	client   *retryablehttp.Client
	endpoint string
	pageSize int
	maxPages int
	log      *log.Helper
}

// NewDeprecationFetcher queries danbooru's tag search for deprecated tags.
func NewDeprecationFetcher(c *conf.Danbooru, logger log.Logger) biz.DeprecationFetcher {
	helper := log.NewHelper(logger)

	client := retryablehttp.NewClient()
	client.RetryMax = c.RetryMax
	client.RetryWaitMin = 1 * time.Second
	client.RetryWaitMax = 30 * time.Second
	client.HTTPClient.Timeout = conf.ParseDuration(c.Timeout, 30*time.Second)
	client.Logger = &retryLogger{log: helper}

	return &deprecationFetcher{
		client:   client,
		endpoint: strings.TrimSuffix(c.Endpoint, "/"),
		pageSize: c.PageSize,
		maxPages: c.MaxPages,
		log:      helper,
	}
}

func (f *deprecationFetcher) pageURL(page *pagination.OffsetRequest) string {
	q := url.Values{}
	q.Set("commit", "Search")
	q.Set("search[hide_empty]", "yes")
	q.Set("search[is_deprecated]", "yes")
	q.Set("search[order]", "date")
	q.Set("limit", strconv.Itoa(page.GetPageSize()))
	q.Set("page", strconv.Itoa(page.GetPage()))
	return f.endpoint + "/tags.json?" + q.Encode()
}

func (f *deprecationFetcher) fetchPage(ctx context.Context, page *pagination.OffsetRequest) ([]danbooruTag, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, f.pageURL(page), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("danbooru tags page %d: %s", page.GetPage(), resp.Status)
	}

	var tags []danbooruTag
	if err := jsonCodec.Unmarshal(body, &tags); err != nil {
		return nil, fmt.Errorf("decode danbooru tags page %d: %w", page.GetPage(), err)
	}
	return tags, nil
}

// FetchDeprecated implements biz.DeprecationFetcher.
func (f *deprecationFetcher) FetchDeprecated(ctx context.Context) ([]string, error) {
	var names []string
	page := pagination.NewOffsetRequest(1, f.pageSize)
	for i := 0; i < f.maxPages; i++ {
		tags, err := f.fetchPage(ctx, page)
		if err != nil {
			return nil, err
		}
		for _, t := range tags {
			names = append(names, t.Name)
		}
		if page.IsLast(len(tags)) {
			f.log.Infof("fetched %d deprecated tags in %d pages", len(names), page.GetPage())
			return names, nil
		}
		page = page.Next()
	}
	f.log.Warnf("stopped after %d pages, the deprecated tag list may be incomplete", f.maxPages)
	return names, nil
}
