package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/secondmind/internal/common"
	"github.com/dmitrijs2005/secondmind/internal/server/models"
	"github.com/dmitrijs2005/secondmind/internal/server/storage"
)

// DocumentService hands out object storage URLs for document files. The
// document row itself is written through EntityService with the returned
// key as local_url.
type DocumentService struct {
	entities *EntityService
	storage  storage.Presigner
}

func NewDocumentService(entities *EntityService, presigner storage.Presigner) *DocumentService {
	return &DocumentService{entities: entities, storage: presigner}
}

// UploadURL allocates a key under the owner's prefix and returns it with a
// presigned PUT URL.
func (s *DocumentService) UploadURL(ctx context.Context, ownerID string) (key, url string, err error) {
	key, url, err = s.storage.PresignPut(ctx, ownerID)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", common.ErrorUpstream, err)
	}
	return key, url, nil
}

// DownloadURL presigns a GET for the file of one of the owner's documents.
func (s *DocumentService) DownloadURL(ctx context.Context, ownerID, externalID string) (string, error) {
	doc, err := s.entities.Find(ctx, models.KindDocument, ownerID, externalID)
	if err != nil {
		return "", err
	}

	key := doc.String("local_url")
	if key == "" {
		return "", fmt.Errorf("%w: document has no file", common.ErrorNotFound)
	}

	url, err := s.storage.PresignGet(ctx, key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorUpstream, err)
	}
	return url, nil
}
