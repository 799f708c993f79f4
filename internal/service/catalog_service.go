package service

import (
	"context"
	"fmt"

	"garmentscore/internal/cache"
	"garmentscore/internal/catalog"
	"garmentscore/internal/logger"
	"garmentscore/internal/model"
	"garmentscore/internal/repository"
)

// CatalogService serves the active question catalog
type CatalogService struct {
	catalogRepo  repository.CatalogRepo
	catalogCache cache.CatalogCache
	log          *logger.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(catalogRepo repository.CatalogRepo, catalogCache cache.CatalogCache, log *logger.Logger) *CatalogService {
	return &CatalogService{
		catalogRepo:  catalogRepo,
		catalogCache: catalogCache,
		log:          log,
	}
}

// GetActive returns the active catalog, reading through the cache.
// Cache failures only cost a Mongo read.
func (s *CatalogService) GetActive(ctx context.Context) (*model.Catalog, error) {
	cached, err := s.catalogCache.Get(ctx)
	if err != nil {
		s.log.Warn("catalog cache read failed", "error", err)
	}
	if cached != nil {
		return cached, nil
	}

	c, err := s.catalogRepo.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if c == nil || len(c.Questions) == 0 {
		return nil, catalog.ErrEmptyCatalog
	}

	if err := s.catalogCache.Set(ctx, c); err != nil {
		s.log.Warn("catalog cache write failed", "error", err)
	}
	return c, nil
}

// Seed upserts every category and question, retires questions missing from
// c and drops the cached catalog
func (s *CatalogService) Seed(ctx context.Context, c *model.Catalog) error {
	if err := catalog.Validate(c); err != nil {
		return err
	}

	categoryIDs := make([]string, 0, len(c.Categories))
	for i := range c.Categories {
		if err := s.catalogRepo.UpsertCategory(ctx, &c.Categories[i]); err != nil {
			return fmt.Errorf("upsert category %s: %w", c.Categories[i].ID, err)
		}
		categoryIDs = append(categoryIDs, c.Categories[i].ID)
	}

	ids := make([]string, 0, len(c.Questions))
	for i := range c.Questions {
		if err := s.catalogRepo.UpsertQuestion(ctx, &c.Questions[i]); err != nil {
			return fmt.Errorf("upsert question %s: %w", c.Questions[i].ID, err)
		}
		ids = append(ids, c.Questions[i].ID)
	}
	if err := s.catalogRepo.DeactivateMissing(ctx, ids); err != nil {
		return fmt.Errorf("deactivate questions: %w", err)
	}
	if err := s.catalogRepo.RetireMissingCategories(ctx, categoryIDs); err != nil {
		return fmt.Errorf("retire categories: %w", err)
	}

	if err := s.catalogCache.Invalidate(ctx); err != nil {
		s.log.Warn("catalog cache invalidate failed", "error", err)
	}
	s.log.Info("catalog seeded", "categories", len(c.Categories), "questions", len(c.Questions))
	return nil
}
