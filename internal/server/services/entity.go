package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/secondmind/internal/common"
	"github.com/dmitrijs2005/secondmind/internal/server/models"
	"github.com/dmitrijs2005/secondmind/internal/server/repositories/entities"
	"github.com/dmitrijs2005/secondmind/internal/server/repositories/repomanager"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/dmitrijs2005/secondmind/internal/server/services"

// EntityService exposes the sync engine per kind. Every call is scoped to
// one owner.
type EntityService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tracer      trace.Tracer
}

func NewEntityService(db *sql.DB, m repomanager.RepositoryManager) *EntityService {
	return &EntityService{db: db, repomanager: m, tracer: otel.Tracer(tracerName)}
}

func schemaFor(kind models.Kind) (*entities.Schema, error) {
	s, ok := entities.Lookup(kind)
	if !ok {
		return nil, fmt.Errorf("%w: unknown kind %q", common.ErrorNotFound, kind)
	}
	return s, nil
}

func (s *EntityService) start(ctx context.Context, op string, kind models.Kind) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "entities."+op, trace.WithAttributes(attribute.String("entity.kind", string(kind))))
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// List returns the owner's entities of a kind, newest first.
func (s *EntityService) List(ctx context.Context, kind models.Kind, ownerID string) (recs []*models.Record, err error) {
	ctx, span := s.start(ctx, "List", kind)
	defer func() { finish(span, err) }()

	schema, err := schemaFor(kind)
	if err != nil {
		return nil, err
	}
	recs, err = s.repomanager.Entities(s.db).List(ctx, schema, ownerID)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("entity.count", len(recs)))
	return recs, nil
}

// Find returns one of the owner's entities.
func (s *EntityService) Find(ctx context.Context, kind models.Kind, ownerID, externalID string) (rec *models.Record, err error) {
	ctx, span := s.start(ctx, "Find", kind)
	defer func() { finish(span, err) }()

	schema, err := schemaFor(kind)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Entities(s.db).Find(ctx, schema, ownerID, externalID)
}

// Upsert validates a client payload and stores it. Sending the same payload
// again is a no-op on the stored state.
func (s *EntityService) Upsert(ctx context.Context, kind models.Kind, ownerID string, payload map[string]any) (err error) {
	ctx, span := s.start(ctx, "Upsert", kind)
	defer func() { finish(span, err) }()

	schema, err := schemaFor(kind)
	if err != nil {
		return err
	}
	rec, err := schema.Normalize(payload)
	if err != nil {
		return err
	}
	span.SetAttributes(attribute.String("entity.external_id", rec.ExternalID))

	return s.repomanager.Entities(s.db).Upsert(ctx, schema, ownerID, rec)
}

// Delete removes one of the owner's entities. Children keep existing with
// their parent link cleared.
func (s *EntityService) Delete(ctx context.Context, kind models.Kind, ownerID, externalID string) (err error) {
	ctx, span := s.start(ctx, "Delete", kind)
	defer func() { finish(span, err) }()

	schema, err := schemaFor(kind)
	if err != nil {
		return err
	}
	if externalID == "" {
		return fmt.Errorf("%w: external_id is required", common.ErrorValidation)
	}
	return s.repomanager.Entities(s.db).Delete(ctx, schema, ownerID, externalID)
}
