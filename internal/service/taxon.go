package service

import (
	"context"
	"strings"

	"github.com/emrgen/taxonomy/internal/model"
	"github.com/emrgen/taxonomy/internal/slug"
	"github.com/emrgen/taxonomy/internal/store"
)

// NewTaxonService creates a new TaxonService.
func NewTaxonService(store store.Store) *TaxonService {
	return &TaxonService{store: store}
}

type TaxonService struct {
	store store.Store
}

type CreateTaxonRequest struct {
	Name        string `json:"name"`
	NameTh      string `json:"nameTh"`
	Description string `json:"description"`
	ParentID    *uint  `json:"parentId,omitempty"`
}

func (r *CreateTaxonRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return invalid("name", "must not be empty")
	}
	return nil
}

func (s *TaxonService) CreateTaxon(ctx context.Context, request *CreateTaxonRequest) (*model.Taxon, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}

	if request.ParentID != nil {
		if _, err := s.store.GetTaxon(ctx, *request.ParentID); err != nil {
			return nil, err
		}
	}

	taxon := &model.Taxon{
		Name:        request.Name,
		NameTh:      request.NameTh,
		Slug:        slug.From(request.Name),
		Description: request.Description,
		ParentID:    request.ParentID,
	}

	if err := s.store.CreateTaxon(ctx, taxon); err != nil {
		return nil, err
	}

	return taxon, nil
}

func (s *TaxonService) GetTaxon(ctx context.Context, id uint) (*model.Taxon, error) {
	return s.store.GetTaxon(ctx, id)
}

func (s *TaxonService) ListTaxa(ctx context.Context) ([]*model.Taxon, error) {
	return s.store.ListTaxa(ctx)
}
