package creation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"storefront/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBlobStore struct {
	uploadedKey  string
	uploadedData []byte
	uploads      int
	failUpload   error
}

func (f *fakeBlobStore) Upload(key string, data []byte) error {
	f.uploads++
	if f.failUpload != nil {
		return f.failUpload
	}
	f.uploadedKey = key
	f.uploadedData = data
	return nil
}

func (f *fakeBlobStore) ResolveURL(key string) string {
	return "https://blobs.example.com/" + key
}

type fakeWriter struct {
	created         []domain.Item
	failCreate      error
	uploadsAtCreate int
	blobs           *fakeBlobStore
}

func (f *fakeWriter) CreateItem(_ context.Context, item domain.Item) (domain.Item, error) {
	if f.blobs != nil {
		f.uploadsAtCreate = f.blobs.uploads
	}
	if f.failCreate != nil {
		return domain.Item{}, f.failCreate
	}
	item.ID = "generated-id"
	f.created = append(f.created, item)
	return item, nil
}

func draftWithoutImage() domain.Draft {
	return domain.Draft{
		Name:      "Book A",
		Price:     decimal.RequireFromString("9.99"),
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func draftWithImage() domain.Draft {
	d := draftWithoutImage()
	d.LocalImagePath = "/tmp/pick.png"
	return d
}

func TestSubmitWithoutImageSkipsUpload(t *testing.T) {
	blobs := &fakeBlobStore{}
	writer := &fakeWriter{}
	w := NewWorkflow(blobs, writer, nil)

	item, err := w.Submit(context.Background(), draftWithoutImage())
	require.NoError(t, err)

	assert.Equal(t, 0, blobs.uploads, "no upload call without an image")
	assert.Nil(t, item.ImageURL)
	require.Len(t, writer.created, 1)
	assert.Nil(t, writer.created[0].ImageURL)
	assert.Equal(t, "Book A", item.Name)
	assert.True(t, item.Price.Equal(decimal.RequireFromString("9.99")))
}

func TestSubmitWithImageUploadsBeforeWrite(t *testing.T) {
	blobs := &fakeBlobStore{}
	writer := &fakeWriter{blobs: blobs}
	w := NewWorkflow(blobs, writer, nil)
	w.readFile = func(path string) ([]byte, error) {
		assert.Equal(t, "/tmp/pick.png", path)
		return []byte("png-bytes"), nil
	}

	item, err := w.Submit(context.Background(), draftWithImage())
	require.NoError(t, err)

	assert.Equal(t, 1, writer.uploadsAtCreate, "upload completed before the document write")
	require.NotNil(t, item.ImageURL)
	assert.Equal(t, blobs.ResolveURL(blobs.uploadedKey), *item.ImageURL,
		"persisted URL is exactly the resolved one")
	assert.True(t, strings.HasPrefix(blobs.uploadedKey, "images/"))
	assert.True(t, strings.HasSuffix(blobs.uploadedKey, ".png"))
	assert.Equal(t, []byte("png-bytes"), blobs.uploadedData)
}

func TestSubmitUploadFailureSkipsWrite(t *testing.T) {
	blobs := &fakeBlobStore{failUpload: errors.New("bucket down")}
	writer := &fakeWriter{}
	w := NewWorkflow(blobs, writer, nil)
	w.readFile = func(string) ([]byte, error) { return []byte("x"), nil }

	_, err := w.Submit(context.Background(), draftWithImage())
	require.Error(t, err)

	assert.Equal(t, KindUpload, KindOf(err))
	assert.Empty(t, writer.created, "write never attempted after a failed upload")
}

func TestSubmitLocalReadFailureIsAnUploadFailure(t *testing.T) {
	w := NewWorkflow(&fakeBlobStore{}, &fakeWriter{}, nil)
	w.readFile = func(string) ([]byte, error) { return nil, errors.New("no such file") }

	_, err := w.Submit(context.Background(), draftWithImage())
	require.Error(t, err)
	assert.Equal(t, KindUpload, KindOf(err))
}

func TestSubmitWriteFailureIsPersistKind(t *testing.T) {
	writer := &fakeWriter{failCreate: errors.New("insert failed")}
	w := NewWorkflow(&fakeBlobStore{}, writer, nil)

	_, err := w.Submit(context.Background(), draftWithoutImage())
	require.Error(t, err)
	assert.Equal(t, KindPersist, KindOf(err))
}

func TestSubmitReportsStateTransitions(t *testing.T) {
	blobs := &fakeBlobStore{}
	writer := &fakeWriter{}

	var states []State
	w := NewWorkflow(blobs, writer, func(s State) {
		states = append(states, s)
	})
	w.readFile = func(string) ([]byte, error) { return []byte("x"), nil }

	_, err := w.Submit(context.Background(), draftWithImage())
	require.NoError(t, err)
	assert.Equal(t, []State{StateUploading, StateWriting, StateDone}, states)

	states = nil
	_, err = w.Submit(context.Background(), draftWithoutImage())
	require.NoError(t, err)
	assert.Equal(t, []State{StateWriting, StateDone}, states)
}

func TestSubmitFailureEndsInFailedState(t *testing.T) {
	writer := &fakeWriter{failCreate: errors.New("insert failed")}

	var last State
	w := NewWorkflow(&fakeBlobStore{}, writer, func(s State) { last = s })

	_, err := w.Submit(context.Background(), draftWithoutImage())
	require.Error(t, err)
	assert.Equal(t, StateFailed, last)
}

func TestKindOfUnrelatedError(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
}
