package nflschedule

import (
	"context"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	crerr "github.com/cockroachdb/errors"
)

const defaultWaitSelector = selSection

type BrowserSourceConfig struct {
	URL          string
	WaitSelector string
	// Timezone is exported to the browser as TZ so printed kickoff times are in this zone.
	Timezone string
	Timeout  time.Duration
	ExecPath string
}

// BrowserSource renders the page in headless Chrome. The schedule is built
// client side, so a plain GET does not see the games.
type BrowserSource struct {
	url          string
	waitSelector string
	timezone     string
	timeout      time.Duration
	execPath     string
}

func NewBrowserSource(cfg BrowserSourceConfig) *BrowserSource {
	src := &BrowserSource{
		url:          strings.TrimSpace(cfg.URL),
		waitSelector: strings.TrimSpace(cfg.WaitSelector),
		timezone:     strings.TrimSpace(cfg.Timezone),
		timeout:      cfg.Timeout,
		execPath:     strings.TrimSpace(cfg.ExecPath),
	}
	if src.url == "" {
		src.url = DefaultURL
	}
	if src.waitSelector == "" {
		src.waitSelector = defaultWaitSelector
	}
	if src.timeout <= 0 {
		src.timeout = 90 * time.Second
	}
	return src
}

func (s *BrowserSource) Name() string { return "browser" }

func (s *BrowserSource) Fetch(ctx context.Context) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("log-level", "3"),
	)
	if s.timezone != "" {
		opts = append(opts, chromedp.Env("TZ="+s.timezone))
	}
	if s.execPath != "" {
		opts = append(opts, chromedp.ExecPath(s.execPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()
	runCtx, cancel := context.WithTimeout(browserCtx, s.timeout)
	defer cancel()

	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(s.url),
		chromedp.WaitReady(s.waitSelector, chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, crerr.Wrapf(err, "render %s", s.url)
	}
	return []byte(html), nil
}
