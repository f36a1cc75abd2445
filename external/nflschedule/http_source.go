package nflschedule

import (
	"context"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/fasthttp"
)

const userAgent = "nfl-pickem/1.0 (+schedule-reconciler)"

type HTTPSourceConfig struct {
	URL     string
	Timeout time.Duration
}

// HTTPSource fetches pre-rendered markup, e.g. from a mirror that already
// ran the page scripts.
type HTTPSource struct {
	client  *fasthttp.Client
	url     string
	timeout time.Duration
}

func NewHTTPSource(cfg HTTPSourceConfig) *HTTPSource {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	url := strings.TrimSpace(cfg.URL)
	if url == "" {
		url = DefaultURL
	}
	return &HTTPSource{
		client: &fasthttp.Client{
			Name:                     userAgent,
			ReadTimeout:              timeout,
			WriteTimeout:             timeout,
			MaxResponseBodySize:      16 << 20,
			NoDefaultUserAgentHeader: true,
		},
		url:     url,
		timeout: timeout,
	}
}

func (s *HTTPSource) Name() string { return "http" }

func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, crerr.Wrap(err, "fetch schedule page")
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "text/html")
	req.Header.SetUserAgent(userAgent)

	deadline := time.Now().Add(s.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := s.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, crerr.Wrapf(err, "GET %s", s.url)
	}
	if code := resp.StatusCode(); code != fasthttp.StatusOK {
		return nil, crerr.Newf("GET %s: status=%d", s.url, code)
	}

	return append([]byte(nil), resp.Body()...), nil
}
