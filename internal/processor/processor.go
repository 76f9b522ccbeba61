package processor

import (
	"context"
	"fmt"

	"github.com/gauri-sd/user-document-management/internal/types"
)

// Result is the outcome of a processing run. Expected failures are reported
// with Success false rather than an error return.
type Result struct {
	Success bool
	Data    map[string]any
	Error   string
}

// Invoker dispatches a validated job to a processing routine by type.
type Invoker interface {
	Process(ctx context.Context, jobType types.JobType, documents []types.DocumentSnapshot, parameters map[string]any) (Result, error)
}

type Processor interface {
	Process(ctx context.Context, documents []types.DocumentSnapshot, parameters map[string]any) (Result, error)
	Type() types.JobType
}

type Registry struct {
	processors map[types.JobType]Processor
}

func NewRegistry() *Registry {
	registry := &Registry{
		processors: make(map[types.JobType]Processor),
	}

	registry.Register(NewOCRProcessor())
	registry.Register(NewTextExtractionProcessor())
	registry.Register(NewClassificationProcessor())
	registry.Register(NewDataExtractionProcessor())

	return registry
}

func (r *Registry) Register(p Processor) {
	r.processors[p.Type()] = p
}

func (r *Registry) Process(ctx context.Context, jobType types.JobType, documents []types.DocumentSnapshot, parameters map[string]any) (Result, error) {
	p, ok := r.processors[jobType]
	if !ok {
		return Result{}, fmt.Errorf("unsupported processing type: %s", jobType)
	}
	return p.Process(ctx, documents, parameters)
}
