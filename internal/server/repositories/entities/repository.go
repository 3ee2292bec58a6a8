package entities

import (
	"context"

	"github.com/dmitrijs2005/secondmind/internal/server/models"
)

// Repository is the sync upsert engine storage: one implementation serves
// every kind, driven by its Schema.
type Repository interface {
	List(ctx context.Context, s *Schema, ownerID string) ([]*models.Record, error)
	Find(ctx context.Context, s *Schema, ownerID, externalID string) (*models.Record, error)
	Upsert(ctx context.Context, s *Schema, ownerID string, rec *models.Record) error
	Delete(ctx context.Context, s *Schema, ownerID, externalID string) error
}
