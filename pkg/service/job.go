package service

import "context"

// Job is a one-shot or long-running piece of work invoked by the job binary.
type Job interface {
	Init(ctx context.Context) error
	Run(ctx context.Context) error
	CleanUp(ctx context.Context) error
}
