package connector

import (
	"context"
	"strconv"
)

// Item is a generic record returned by an external service.
type Item map[string]any

func (it Item) Id() string {
	switch v := it["id"].(type) {
	case string:
		return v
	case float64:
		return formatNumericId(v)
	}
	return ""
}

func (it Item) Name() string {
	if v, ok := it["name"].(string); ok {
		return v
	}
	return ""
}

// ListQuery narrows a List call to one item type, optionally filtered.
type ListQuery struct {
	ItemType string
	Filters  map[string]string
}

type Attachment struct {
	Filename string
	Content  []byte
}

// Connector is the uniform capability set implemented once per external
// service. The executor and the reconciler depend only on this interface.
type Connector interface {
	Name() string
	Fetch(ctx context.Context, itemType string, id string) (Item, error)
	List(ctx context.Context, query ListQuery) ([]Item, error)
	Create(ctx context.Context, itemType string, payload Item) (Item, error)
	UploadAttachment(ctx context.Context, ownerId string, blob Attachment) (Item, error)
	SetLabel(ctx context.Context, ownerId string, label string) error
	SetField(ctx context.Context, ownerId string, field string, value any) error
	TestConnection(ctx context.Context) error
}

func formatNumericId(v float64) string {
	return strconv.FormatInt(int64(v), 10)
}

const ITEM_TYPE_DOCUMENT = "document"
const ITEM_TYPE_CONTACT = "contact"
const ITEM_TYPE_VOUCHER = "voucher"
const ITEM_TYPE_LABEL = "label"

// ITEM_TYPE_DOCUMENT_FILE fetches the raw file behind a document; the
// returned item carries "content" ([]byte) and "filename".
const ITEM_TYPE_DOCUMENT_FILE = "document_file"
