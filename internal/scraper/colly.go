package scraper

import (
	"context"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
)

// newCollector returns a synchronous collector that aborts requests once ctx
// is done. delay spaces requests to the same domain.
func newCollector(ctx context.Context, delay time.Duration) *colly.Collector {
	c := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.IgnoreRobotsTxt(),
	)
	c.SetRequestTimeout(httpTimeout)
	if delay > 0 {
		c.Limit(&colly.LimitRule{DomainGlob: "*", Delay: delay})
	}
	abortWhenDone(ctx, c)
	return c
}

// abortWhenDone stops c from sending requests after ctx is done. Callbacks
// are not carried over by Clone, so clones need their own call.
func abortWhenDone(ctx context.Context, c *colly.Collector) {
	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})
}

// squash collapses runs of whitespace, which job boards scatter through
// their markup.
func squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
