// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package sim

import (
	"context"
	"io"
	"time"

	"golang.org/x/time/rate"
)

// pacedBody is an io.ReadCloser that releases one wire line at a time,
// each no sooner than its delay after the previous one. It stands in for a
// chunked HTTP response body.
type pacedBody struct {
	ctx     context.Context
	lines   []string
	delays  []time.Duration
	limiter *rate.Limiter

	idx    int
	cur    []byte
	closed bool
}

func newPacedBody(ctx context.Context, lines []string, delays []time.Duration) *pacedBody {
	// Burst 1 with the token spent up front, so even the first line waits
	// for a refill at the rate set for it.
	limiter := rate.NewLimiter(rate.Inf, 1)
	if len(delays) > 0 && delays[0] > 0 {
		limiter = rate.NewLimiter(rate.Every(delays[0]), 1)
		limiter.ReserveN(time.Now(), 1)
	}
	return &pacedBody{
		ctx:     ctx,
		lines:   lines,
		delays:  delays,
		limiter: limiter,
	}
}

func (p *pacedBody) Read(buf []byte) (int, error) {
	if p.closed {
		return 0, io.ErrClosedPipe
	}
	if len(p.cur) == 0 {
		if p.idx >= len(p.lines) {
			return 0, io.EOF
		}
		if err := p.wait(p.delays[p.idx]); err != nil {
			return 0, err
		}
		p.cur = []byte(p.lines[p.idx])
		p.idx++
	}
	n := copy(buf, p.cur)
	p.cur = p.cur[n:]
	return n, nil
}

func (p *pacedBody) wait(d time.Duration) error {
	limit := rate.Inf
	if d > 0 {
		limit = rate.Every(d)
	}
	p.limiter.SetLimit(limit)
	if err := p.limiter.Wait(p.ctx); err != nil {
		// Wait refuses early when the deadline falls inside the delay; a
		// real server would still be cut off at the deadline itself.
		<-p.ctx.Done()
		return p.ctx.Err()
	}
	return nil
}

func (p *pacedBody) Close() error {
	p.closed = true
	return nil
}
