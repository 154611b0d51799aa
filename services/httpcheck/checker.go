package httpcheck

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/academia/core/monitoring"
)

const defaultTimeout = 5 * time.Second

// Checker GETs the monitored endpoints.
type Checker struct {
	timeout time.Duration
	send    func(ctx context.Context, req rest.Request) (*rest.Response, error)
}

var _ monitoring.Checker = (*Checker)(nil)

func New(timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Checker{timeout: timeout, send: rest.SendWithContext}
}

func (c *Checker) Check(ctx context.Context, url string) (monitoring.CheckResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.send(ctx, rest.Request{
		Method:  rest.Get,
		BaseURL: url,
		Headers: map[string]string{"User-Agent": "academia-monitoring"},
	})
	if err != nil {
		return monitoring.CheckResult{}, errors.Wrapf(err, "checking %s", url)
	}
	return monitoring.CheckResult{StatusCode: res.StatusCode, Body: res.Body}, nil
}
