// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

// Package poll waits for hardware conditions with a bounded deadline.
package poll

import (
	"context"
	"errors"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
)

var ErrTimeout = errors.New("timed out waiting for condition")

// Condition is re-evaluated on every attempt and must re-read hardware state.
type Condition func() bool

type Options struct {
	Interval time.Duration
	Timeout  time.Duration
}

func (o *Options) Defaults() {
	if o.Interval <= 0 {
		o.Interval = time.Millisecond
	}
	if o.Timeout <= 0 {
		o.Timeout = 4 * time.Second
	}
}

// Until evaluates cond immediately and then once per interval until it holds or
// the timeout elapses. It returns ErrTimeout when the deadline passes and the
// context error when ctx ends first.
func Until(ctx context.Context, opts Options, cond Condition) error {
	opts.Defaults()

	err := wait.PollUntilContextTimeout(ctx, opts.Interval, opts.Timeout, true, func(context.Context) (bool, error) {
		return cond(), nil
	})
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	case wait.Interrupted(err):
		return ErrTimeout
	default:
		return err
	}
}
