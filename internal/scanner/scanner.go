package scanner

import (
	"context"
	"fmt"

	"JudgmentScanner/internal/domain"
)

// Request carries one judiciary directory page and how its rows are labelled.
type Request struct {
	Name    string
	URL     string
	Title   string
	Type    string
	Circuit string
}

// Scanner reads one table layout of judiciary directory pages.
type Scanner interface {
	Name() string
	Scan(ctx context.Context, req Request) ([]domain.Judge, error)
}

// Registry keeps a mapping from layout names to their implementations.
type Registry struct {
	scanners map[string]Scanner
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{scanners: map[string]Scanner{}}
}

// Register adds or replaces a scanner implementation.
func (r *Registry) Register(scanner Scanner) {
	if r.scanners == nil {
		r.scanners = map[string]Scanner{}
	}
	r.scanners[scanner.Name()] = scanner
}

// Resolve returns a scanner by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Scanner, error) {
	if scanner, ok := r.scanners[name]; ok {
		return scanner, nil
	}
	return nil, fmt.Errorf("scanner %s is not registered", name)
}
