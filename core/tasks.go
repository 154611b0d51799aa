package core

import "context"

type (
	// Task is a unit of background work.
	Task func(ctx context.Context) error

	// TaskQueue runs tasks outside the request/response cycle.
	TaskQueue interface {
		Enqueue(name string, task Task) error
	}
)
