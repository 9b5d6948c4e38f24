package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"storefront/pkg/events"
	"storefront/pkg/httperror"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UploadItemImageHandler struct {
	repository     Repository
	blobs          BlobStore
	eventPublisher events.Publisher
}

func NewUploadItemImageHandler(repository Repository, blobs BlobStore, eventPublisher events.Publisher) *UploadItemImageHandler {
	return &UploadItemImageHandler{
		repository:     repository,
		blobs:          blobs,
		eventPublisher: eventPublisher,
	}
}

type UploadItemImageRequest struct {
	ItemID string `params:"id"`
}

type UploadItemImageResponse struct {
	ItemID   string `json:"item_id"`
	ImageUrl string `json:"image_url"`
}

func (h *UploadItemImageHandler) Handle(ctx context.Context, req *UploadItemImageRequest) (*UploadItemImageResponse, error) {
	fiberCtx := ctx.Value("fiber")
	if fiberCtx == nil {
		return nil, httperror.InternalServerError("upload.no_context", "Fiber context not found", nil)
	}

	c, ok := fiberCtx.(*fiber.Ctx)
	if !ok {
		return nil, httperror.InternalServerError("upload.invalid_context", "Invalid Fiber context", nil)
	}

	item, err := h.repository.GetItem(ctx, req.ItemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NotFound("upload_item_image.not_found", "Item not found.", nil)
		}
		return nil, httperror.InternalServerError("upload_item_image.lookup_failed", "Failed to look up item", nil)
	}

	file, err := c.FormFile("image")
	if err != nil {
		return nil, httperror.BadRequest("upload.missing_file", "Image file is required (use 'image' field)", fiber.Map{"error": err.Error()})
	}

	// Validate file size (max 5MB)
	const maxFileSize = 5 * 1024 * 1024
	if file.Size > maxFileSize {
		return nil, httperror.BadRequest("upload.file_too_large", "File size must not exceed 5MB",
			fiber.Map{
				"size_mb": float64(file.Size) / 1024 / 1024,
				"max_mb":  5,
			})
	}

	contentType := file.Header.Get("Content-Type")

	allowedTypes := map[string]bool{
		"image/png":  true,
		"image/jpeg": true,
		"image/jpg":  true,
	}
	if !allowedTypes[contentType] {
		return nil, httperror.BadRequest("upload.invalid_content_type", "Only PNG, JPEG/JPG images are allowed",
			fiber.Map{
				"received": contentType,
				"allowed":  []string{"image/png", "image/jpeg", "image/jpg"},
			})
	}

	fileReader, err := file.Open()
	if err != nil {
		return nil, httperror.InternalServerError("upload.file_open_error", "Failed to open uploaded file", err.Error())
	}
	defer fileReader.Close()

	fileBytes, err := io.ReadAll(fileReader)
	if err != nil {
		return nil, httperror.InternalServerError("upload.file_read_error", "Failed to read file content", err.Error())
	}

	return h.processUpload(ctx, item.ID, fileBytes, contentType)
}

func (h *UploadItemImageHandler) processUpload(ctx context.Context, itemID string, imageData []byte, contentType string) (*UploadItemImageResponse, error) {
	key := fmt.Sprintf("items/%s/%s%s", itemID, uuid.New().String(), extensionFromContentType(contentType))

	if err := h.blobs.Upload(key, imageData); err != nil {
		return nil, httperror.InternalServerError("upload_item.upload.failed", "Failed to upload image to storage", err.Error())
	}

	imageURL := h.blobs.ResolveURL(key)

	updated, err := h.repository.SetItemImage(ctx, itemID, imageURL)
	if err != nil {
		// The blob has no referencing document yet, clean it up.
		_ = h.blobs.Delete(key)
		return nil, httperror.InternalServerError("upload_item.store.failed", "Failed to save image URL", err.Error())
	}

	h.publishEvent(ctx, updated.ID, imageURL)

	return &UploadItemImageResponse{
		ItemID:   updated.ID,
		ImageUrl: imageURL,
	}, nil
}

func (h *UploadItemImageHandler) publishEvent(ctx context.Context, itemID, imageURL string) {
	if h.eventPublisher == nil {
		return
	}

	headers := events.Headers{
		TraceID:       events.GenerateTraceID(),
		CorrelationID: events.GenerateCorrelationID(),
		Service:       "storefront",
	}

	event := events.NewEvent(
		events.ItemImageUploadedEvent,
		events.EventVersionV1,
		events.ItemImageUploadedPayload{
			ItemID:    itemID,
			ImageURL:  imageURL,
			CreatedAt: time.Now().UTC(),
		},
		headers,
	)

	if err := h.eventPublisher.Publish(ctx, events.CatalogExchange, event, headers); err != nil {
		zap.L().Error("Failed to publish item.image.uploaded event",
			zap.String("itemId", itemID),
			zap.Error(err),
		)
	}
}

func extensionFromContentType(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
