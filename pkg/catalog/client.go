// Package catalog talks to the course catalog's program search API.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"SyllabusScrape/pkg/log"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultSearchURL         = "https://app.coursedog.com/api/v1/cm/byu/programs/search/$filters"
	DefaultLimit             = 312
	DefaultOutputFile        = "programs.json"
	DefaultRequestsPerSecond = 1.0
	defaultTimeout           = time.Minute
	catalogOrigin            = "https://catalog.byu.edu"
	browserUserAgent         = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:142.0) Gecko/20100101 Firefox/142.0"
	jsonIndentLiteral        = "    "
)

var ErrUnexpectedStatus = errors.New("unexpected catalog search status")

type ClientOptions struct {
	SearchURL string
	Limit     int
	Timeout   time.Duration
	RequestsPerSecond float64
}

type Client struct {
	http      *resty.Client
	limiter   *rate.Limiter
	searchURL string
	limit     int
}

func NewClient(options ClientOptions) *Client {
	if options.SearchURL == "" {
		options.SearchURL = DefaultSearchURL
	}
	if options.Limit <= 0 {
		options.Limit = DefaultLimit
	}
	if options.Timeout <= 0 {
		options.Timeout = defaultTimeout
	}
	if options.RequestsPerSecond <= 0 {
		options.RequestsPerSecond = DefaultRequestsPerSecond
	}

	httpClient := resty.New()
	httpClient.SetTimeout(options.Timeout)
	httpClient.SetHeaders(map[string]string{
		"User-Agent":       browserUserAgent,
		"Accept":           "application/json, text/plain, */*",
		"Accept-Language":  "en-US,en;q=0.5",
		"Content-Type":     "application/json",
		"Referer":          catalogOrigin + "/",
		"Origin":           catalogOrigin,
		"X-Requested-With": "catalog",
	})

	rateLimiter := rate.NewLimiter(rate.Limit(options.RequestsPerSecond), 1)
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})

	return &Client{http: httpClient, limiter: rateLimiter, searchURL: options.SearchURL, limit: options.Limit}
}

// Search posts filter and returns the raw response body.
func (c *Client) Search(ctx context.Context, filter FilterDocument) ([]byte, error) {
	log.L().Info("catalog_search", zap.String("url", c.searchURL), zap.Int("limit", c.limit))

	response, requestError := c.http.R().
		SetContext(ctx).
		SetQueryParam("limit", strconv.Itoa(c.limit)).
		SetBody(filter).
		Post(c.searchURL)
	if requestError != nil {
		return nil, fmt.Errorf("catalog search: %w", requestError)
	}
	if response.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, response.StatusCode(), response.String())
	}
	return response.Body(), nil
}

// FetchPrograms runs the undergraduate search and saves the response,
// re-indented, to outputPath. It returns how many programs came back.
func (c *Client) FetchPrograms(ctx context.Context, outputPath string) (int, error) {
	rawBody, searchError := c.Search(ctx, UndergraduateProgramsFilter())
	if searchError != nil {
		log.L().Error("catalog_search_failed", zap.Error(searchError))
		return 0, searchError
	}

	var envelope struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rawBody, &envelope); err != nil {
		return 0, fmt.Errorf("decode catalog response: %w", err)
	}

	var indented bytes.Buffer
	if err := json.Indent(&indented, rawBody, "", jsonIndentLiteral); err != nil {
		return 0, err
	}
	indented.WriteString("\n")
	if err := os.WriteFile(outputPath, indented.Bytes(), 0o644); err != nil {
		return 0, err
	}

	log.L().Info("catalog_saved", zap.String("path", outputPath), zap.Int("programs", len(envelope.Data)))
	return len(envelope.Data), nil
}
