package creation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"storefront/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BlobStore uploads image bytes under a key and resolves the durable
// fetch URL for that key.
type BlobStore interface {
	Upload(key string, data []byte) error
	ResolveURL(key string) string
}

// Writer creates the catalog document. The store assigns the ID.
type Writer interface {
	CreateItem(ctx context.Context, item domain.Item) (domain.Item, error)
}

// State of a submission in flight.
type State int

const (
	StateEditing State = iota
	StateUploading
	StateWriting
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateEditing:
		return "editing"
	case StateUploading:
		return "uploading"
	case StateWriting:
		return "writing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// StateFunc observes transitions. Optional; a consumer that has gone
// away simply leaves it nil and completions become no-ops.
type StateFunc func(s State)

// Workflow drives one draft from editing to a persisted item:
// Editing -> Uploading (only with a local image) -> Writing -> Done.
// The document write happens strictly after upload resolution; no item
// is ever written with a device-local image reference.
type Workflow struct {
	blobs    BlobStore
	writer   Writer
	readFile func(path string) ([]byte, error)
	onState  StateFunc
}

func NewWorkflow(blobs BlobStore, writer Writer, onState StateFunc) *Workflow {
	return &Workflow{
		blobs:    blobs,
		writer:   writer,
		readFile: os.ReadFile,
		onState:  onState,
	}
}

// Submit runs the draft through upload and write. On failure the draft
// is untouched, so the caller can retry without re-entering fields;
// after an upload failure the image pick itself must be redone from
// editing. The returned error carries a distinguishable kind, upload
// vs persist.
func (w *Workflow) Submit(ctx context.Context, draft domain.Draft) (domain.Item, error) {
	var imageURL *string

	if draft.HasImage() {
		w.transition(StateUploading)

		url, err := w.uploadImage(draft)
		if err != nil {
			w.transition(StateFailed)
			return domain.Item{}, &FlowError{Kind: KindUpload, Err: err}
		}
		imageURL = &url
	}

	w.transition(StateWriting)

	item, err := w.writer.CreateItem(ctx, domain.Item{
		Name:      draft.Name,
		Price:     draft.Price,
		Sold:      draft.Sold,
		ImageURL:  imageURL,
		CreatedAt: draft.CreatedAt,
	})
	if err != nil {
		w.transition(StateFailed)
		return domain.Item{}, &FlowError{Kind: KindPersist, Err: err}
	}

	w.transition(StateDone)
	return item, nil
}

func (w *Workflow) uploadImage(draft domain.Draft) (string, error) {
	data, err := w.readFile(draft.LocalImagePath)
	if err != nil {
		return "", fmt.Errorf("reading local image: %w", err)
	}

	key := blobKey(draft)

	if err := w.blobs.Upload(key, data); err != nil {
		return "", fmt.Errorf("uploading image: %w", err)
	}

	url := w.blobs.ResolveURL(key)
	zap.L().Debug("image uploaded",
		zap.String("key", key),
		zap.String("url", url),
	)

	return url, nil
}

func (w *Workflow) transition(s State) {
	if w.onState != nil {
		w.onState(s)
	}
}

// blobKey derives the object key from the draft's capture time and
// name, with a uuid suffix so equal names at the same millisecond
// cannot collide.
func blobKey(draft domain.Draft) string {
	name := strings.ReplaceAll(strings.TrimSpace(draft.Name), " ", "-")
	if name == "" {
		name = "item"
	}

	ext := filepath.Ext(draft.LocalImagePath)
	if ext == "" {
		ext = ".jpg"
	}

	return fmt.Sprintf("images/%d-%s-%s%s",
		draft.CreatedAt.UnixMilli(), name, uuid.New().String(), ext)
}
