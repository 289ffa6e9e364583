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
	"strings"
	"time"
)

const paperlessName = "paperless"

// Paperless talks to the Paperless-ngx REST API. Documents and labels (tags)
// are addressed by numeric ids, correspondents represent contacts.
type Paperless struct {
	baseUrl string
	token   string
	client  *http.Client
}

var _ Connector = new(Paperless)

func NewPaperless(baseUrl, token string) *Paperless {
	return &Paperless{
		baseUrl: strings.TrimRight(baseUrl, "/"),
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *Paperless) Name() string {
	return paperlessName
}

func (p *Paperless) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, p.baseUrl+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Token "+p.token)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (p *Paperless) do(op string, req *http.Request) (Item, error) {
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, NewTransportError(paperlessName, op, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return nil, NewStatusError(paperlessName, op, resp.StatusCode, string(data))
	}
	if len(data) == 0 {
		return Item{}, nil
	}
	var out Item
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &Error{Service: paperlessName, Op: op, Kind: KIND_MALFORMED, Message: err.Error()}
	}
	return out, nil
}

func (p *Paperless) doJson(ctx context.Context, op, method, path string, payload any) (Item, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, &Error{Service: paperlessName, Op: op, Kind: KIND_MALFORMED, Message: err.Error()}
		}
		body = bytes.NewReader(data)
	}
	req, err := p.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, NewTransportError(paperlessName, op, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return p.do(op, req)
}

func (p *Paperless) itemPath(itemType string) (string, error) {
	switch itemType {
	case ITEM_TYPE_DOCUMENT:
		return "/api/documents/", nil
	case ITEM_TYPE_CONTACT:
		return "/api/correspondents/", nil
	case ITEM_TYPE_LABEL:
		return "/api/tags/", nil
	}
	return "", &Error{Service: paperlessName, Op: "itemPath", Kind: KIND_MALFORMED,
		Message: fmt.Sprintf("unsupported item type %q", itemType)}
}

func (p *Paperless) Fetch(ctx context.Context, itemType string, id string) (Item, error) {
	if itemType == ITEM_TYPE_DOCUMENT_FILE {
		return p.fetchDocumentFile(ctx, id)
	}
	base, err := p.itemPath(itemType)
	if err != nil {
		return nil, err
	}
	return p.doJson(ctx, "fetch", http.MethodGet, base+id+"/", nil)
}

// List follows Paperless pagination and collects every result page.
func (p *Paperless) List(ctx context.Context, query ListQuery) ([]Item, error) {
	base, err := p.itemPath(query.ItemType)
	if err != nil {
		return nil, err
	}
	params := url.Values{}
	for k, v := range query.Filters {
		params.Set(k, v)
	}
	next := base
	if enc := params.Encode(); enc != "" {
		next += "?" + enc
	}
	var results []Item
	for next != "" {
		page, err := p.doJson(ctx, "list", http.MethodGet, next, nil)
		if err != nil {
			return nil, err
		}
		if rows, ok := page["results"].([]any); ok {
			for _, row := range rows {
				if m, ok := row.(map[string]any); ok {
					results = append(results, Item(m))
				}
			}
		}
		next = ""
		if n, ok := page["next"].(string); ok && n != "" {
			// next is absolute, keep only path and query
			if u, err := url.Parse(n); err == nil {
				next = u.Path
				if u.RawQuery != "" {
					next += "?" + u.RawQuery
				}
			}
		}
	}
	return results, nil
}

func (p *Paperless) Create(ctx context.Context, itemType string, payload Item) (Item, error) {
	if itemType == ITEM_TYPE_DOCUMENT {
		return p.uploadDocument(ctx, payload)
	}
	base, err := p.itemPath(itemType)
	if err != nil {
		return nil, err
	}
	return p.doJson(ctx, "create", http.MethodPost, base, payload)
}

// uploadDocument posts multipart content to the post_document endpoint.
// Payload keys: filename, content ([]byte), title, correspondent, tags.
func (p *Paperless) uploadDocument(ctx context.Context, payload Item) (Item, error) {
	content, _ := payload["content"].([]byte)
	filename, _ := payload["filename"].(string)
	if filename == "" {
		filename = "document.pdf"
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, key := range []string{"title", "correspondent", "document_type"} {
		if v, ok := payload[key]; ok && v != nil {
			mw.WriteField(key, fmt.Sprintf("%v", v))
		}
	}
	if tags, ok := payload["tags"].([]any); ok {
		for _, tag := range tags {
			mw.WriteField("tags", fmt.Sprintf("%v", tag))
		}
	}
	fw, err := mw.CreateFormFile("document", filename)
	if err != nil {
		return nil, NewTransportError(paperlessName, "create", err)
	}
	fw.Write(content)
	mw.Close()

	req, err := p.newRequest(ctx, http.MethodPost, "/api/documents/post_document/", &buf)
	if err != nil {
		return nil, NewTransportError(paperlessName, "create", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return p.do("create", req)
}

// UploadAttachment stores the blob as a new document owned by the given
// correspondent. Paperless has no attachment sub-resource; the document
// archive itself is the attachment store.
func (p *Paperless) UploadAttachment(ctx context.Context, ownerId string, blob Attachment) (Item, error) {
	return p.uploadDocument(ctx, Item{
		"filename":      blob.Filename,
		"content":       blob.Content,
		"correspondent": ownerId,
	})
}

// SetLabel adds the tag to the document, creating the tag when it does not
// exist yet. The existing tag set on the document is preserved.
func (p *Paperless) SetLabel(ctx context.Context, ownerId string, label string) error {
	tagId, err := p.ensureTag(ctx, label)
	if err != nil {
		return err
	}
	doc, err := p.Fetch(ctx, ITEM_TYPE_DOCUMENT, ownerId)
	if err != nil {
		return err
	}
	tags, _ := doc["tags"].([]any)
	for _, t := range tags {
		if fmt.Sprintf("%v", t) == tagId {
			return nil
		}
	}
	tags = append(tags, tagId)
	_, err = p.doJson(ctx, "setLabel", http.MethodPatch, "/api/documents/"+ownerId+"/", Item{"tags": tags})
	return err
}

func (p *Paperless) ensureTag(ctx context.Context, label string) (string, error) {
	existing, err := p.List(ctx, ListQuery{ItemType: ITEM_TYPE_LABEL, Filters: map[string]string{"name__iexact": label}})
	if err != nil {
		return "", err
	}
	if len(existing) > 0 {
		return existing[0].Id(), nil
	}
	created, err := p.doJson(ctx, "setLabel", http.MethodPost, "/api/tags/", Item{"name": label})
	if err != nil {
		return "", err
	}
	return created.Id(), nil
}

func (p *Paperless) SetField(ctx context.Context, ownerId string, field string, value any) error {
	_, err := p.doJson(ctx, "setField", http.MethodPatch, "/api/documents/"+ownerId+"/", Item{field: value})
	return err
}

func (p *Paperless) TestConnection(ctx context.Context) error {
	_, err := p.doJson(ctx, "testConnection", http.MethodGet, "/api/", nil)
	return err
}

// fetchDocumentFile pulls the raw content plus the original filename, used
// by the download_document action to feed later upload actions.
func (p *Paperless) fetchDocumentFile(ctx context.Context, documentId string) (Item, error) {
	content, err := p.download(ctx, documentId)
	if err != nil {
		return nil, err
	}
	meta, err := p.Fetch(ctx, ITEM_TYPE_DOCUMENT, documentId)
	if err != nil {
		return nil, err
	}
	filename, _ := meta["original_file_name"].(string)
	if filename == "" {
		filename = "document_" + documentId + ".pdf"
	}
	return Item{"content": content, "filename": filename, "size": len(content)}, nil
}

func (p *Paperless) download(ctx context.Context, documentId string) ([]byte, error) {
	req, err := p.newRequest(ctx, http.MethodGet, "/api/documents/"+documentId+"/download/", nil)
	if err != nil {
		return nil, NewTransportError(paperlessName, "download", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, NewTransportError(paperlessName, "download", err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return nil, NewStatusError(paperlessName, "download", resp.StatusCode, string(data))
	}
	return data, nil
}
