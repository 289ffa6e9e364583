package connector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const lexofficeName = "lexoffice"

// Lexoffice talks to the Lexware Office public API. Contacts and vouchers
// are addressed by uuid strings; voucher file uploads are multipart.
type Lexoffice struct {
	baseUrl string
	apiKey  string
	client  *http.Client
}

var _ Connector = new(Lexoffice)

func NewLexoffice(baseUrl, apiKey string) *Lexoffice {
	if baseUrl == "" {
		baseUrl = "https://api.lexware.io"
	}
	return &Lexoffice{
		baseUrl: strings.TrimRight(baseUrl, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (l *Lexoffice) Name() string {
	return lexofficeName
}

func (l *Lexoffice) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, l.baseUrl+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+l.apiKey)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (l *Lexoffice) do(op string, req *http.Request) (Item, error) {
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, NewTransportError(lexofficeName, op, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return nil, NewStatusError(lexofficeName, op, resp.StatusCode, string(data))
	}
	if len(data) == 0 {
		return Item{}, nil
	}
	var out Item
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &Error{Service: lexofficeName, Op: op, Kind: KIND_MALFORMED, Message: err.Error()}
	}
	return out, nil
}

func (l *Lexoffice) doJson(ctx context.Context, op, method, path string, payload any) (Item, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, &Error{Service: lexofficeName, Op: op, Kind: KIND_MALFORMED, Message: err.Error()}
		}
		body = bytes.NewReader(data)
	}
	req, err := l.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, NewTransportError(lexofficeName, op, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return l.do(op, req)
}

func (l *Lexoffice) itemPath(itemType string) (string, error) {
	switch itemType {
	case ITEM_TYPE_CONTACT:
		return "/v1/contacts", nil
	case ITEM_TYPE_VOUCHER:
		return "/v1/vouchers", nil
	}
	return "", &Error{Service: lexofficeName, Op: "itemPath", Kind: KIND_MALFORMED,
		Message: fmt.Sprintf("unsupported item type %q", itemType)}
}

func (l *Lexoffice) Fetch(ctx context.Context, itemType string, id string) (Item, error) {
	base, err := l.itemPath(itemType)
	if err != nil {
		return nil, err
	}
	return l.doJson(ctx, "fetch", http.MethodGet, base+"/"+id, nil)
}

// List walks the paged contact/voucher collections until the last page.
func (l *Lexoffice) List(ctx context.Context, query ListQuery) ([]Item, error) {
	base, err := l.itemPath(query.ItemType)
	if err != nil {
		return nil, err
	}
	var results []Item
	for page := 0; ; page++ {
		params := url.Values{}
		params.Set("page", strconv.Itoa(page))
		params.Set("size", "100")
		for k, v := range query.Filters {
			params.Set(k, v)
		}
		data, err := l.doJson(ctx, "list", http.MethodGet, base+"?"+params.Encode(), nil)
		if err != nil {
			return nil, err
		}
		rows, _ := data["content"].([]any)
		for _, row := range rows {
			if m, ok := row.(map[string]any); ok {
				results = append(results, Item(m))
			}
		}
		if last, ok := data["last"].(bool); !ok || last {
			break
		}
	}
	return results, nil
}

func (l *Lexoffice) Create(ctx context.Context, itemType string, payload Item) (Item, error) {
	base, err := l.itemPath(itemType)
	if err != nil {
		return nil, err
	}
	if itemType == ITEM_TYPE_CONTACT {
		payload = withContactDefaults(payload)
	}
	return l.doJson(ctx, "create", http.MethodPost, base, payload)
}

// withContactDefaults fills the mandatory version/roles/company envelope
// when the caller passes only a name.
func withContactDefaults(payload Item) Item {
	if _, ok := payload["company"]; ok {
		return payload
	}
	name := payload.Name()
	out := Item{
		"version": 0,
		"roles":   map[string]any{"customer": map[string]any{}},
		"company": map[string]any{"name": name},
	}
	for k, v := range payload {
		if k != "name" {
			out[k] = v
		}
	}
	return out
}

// UploadAttachment attaches the blob to an existing voucher.
func (l *Lexoffice) UploadAttachment(ctx context.Context, ownerId string, blob Attachment) (Item, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", blob.Filename)
	if err != nil {
		return nil, NewTransportError(lexofficeName, "uploadAttachment", err)
	}
	fw.Write(blob.Content)
	mw.Close()

	req, err := l.newRequest(ctx, http.MethodPost, "/v1/vouchers/"+ownerId+"/files", &buf)
	if err != nil {
		return nil, NewTransportError(lexofficeName, "uploadAttachment", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return l.do("uploadAttachment", req)
}

// SetLabel stores the label in the voucher remark field; lexoffice has no
// free-form tagging.
func (l *Lexoffice) SetLabel(ctx context.Context, ownerId string, label string) error {
	return l.SetField(ctx, ownerId, "remark", label)
}

func (l *Lexoffice) SetField(ctx context.Context, ownerId string, field string, value any) error {
	voucher, err := l.Fetch(ctx, ITEM_TYPE_VOUCHER, ownerId)
	if err != nil {
		return err
	}
	voucher[field] = value
	_, err = l.doJson(ctx, "setField", http.MethodPut, "/v1/vouchers/"+ownerId, voucher)
	return err
}

func (l *Lexoffice) TestConnection(ctx context.Context) error {
	_, err := l.doJson(ctx, "testConnection", http.MethodGet, "/v1/profile", nil)
	return err
}
