package template

import (
	"context"
	"sort"
	"sync"

	"scouthub/internal/application/models"
	id "scouthub/pkg/domain"
	"scouthub/pkg/platform/sentinel"
)

// InMemory holds the requirement-template catalog. The catalog is read-only
// reference data owned externally; this store is seeded once at startup.
type InMemory struct {
	mu        sync.RWMutex
	templates map[id.TemplateID]models.RequirementTemplate
}

func NewInMemory(templates ...models.RequirementTemplate) *InMemory {
	s := &InMemory{templates: make(map[id.TemplateID]models.RequirementTemplate, len(templates))}
	for _, tpl := range templates {
		s.templates[tpl.ID] = tpl
	}
	return s
}

// List returns the catalog in its declared ordering.
func (s *InMemory) List(_ context.Context) ([]models.RequirementTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.RequirementTemplate, 0, len(s.templates))
	for _, tpl := range s.templates {
		out = append(out, tpl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (s *InMemory) FindByID(_ context.Context, templateID id.TemplateID) (*models.RequirementTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tpl, ok := s.templates[templateID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &tpl, nil
}
