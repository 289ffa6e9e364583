package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lexofficeServer(t *testing.T, handler http.HandlerFunc) *Lexoffice {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key-1", r.Header.Get("Authorization"))
		handler(w, r)
	}))
	t.Cleanup(server.Close)
	return NewLexoffice(server.URL, "key-1")
}

func TestLexoffice_ListWalksPages(t *testing.T) {
	l := lexofficeServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/contacts", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("page") {
		case "0":
			fmt.Fprint(w, `{"content": [{"id": "c-1"}, {"id": "c-2"}], "last": false}`)
		case "1":
			fmt.Fprint(w, `{"content": [{"id": "c-3"}], "last": true}`)
		default:
			t.Fatalf("unexpected page %s", r.URL.Query().Get("page"))
		}
	})

	items, err := l.List(context.Background(), ListQuery{ItemType: ITEM_TYPE_CONTACT})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "c-3", items[2].Id())
}

func TestLexoffice_CreateContactFillsEnvelope(t *testing.T) {
	var body map[string]any
	l := lexofficeServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/contacts", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id": "c-9"}`)
	})

	item, err := l.Create(context.Background(), ITEM_TYPE_CONTACT, Item{"name": "ACME GmbH"})
	require.NoError(t, err)
	assert.Equal(t, "c-9", item.Id())

	company, ok := body["company"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ACME GmbH", company["name"])
	assert.Equal(t, float64(0), body["version"])
	roles, ok := body["roles"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, roles, "customer")
}

func TestLexoffice_CreateContactKeepsExplicitCompany(t *testing.T) {
	var body map[string]any
	l := lexofficeServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id": "c-10"}`)
	})

	payload := Item{"version": 2, "company": map[string]any{"name": "Direct AG"}}
	_, err := l.Create(context.Background(), ITEM_TYPE_CONTACT, payload)
	require.NoError(t, err)
	assert.Equal(t, float64(2), body["version"], "caller envelope is passed through untouched")
}

func TestLexoffice_SetFieldRoundTripsVoucher(t *testing.T) {
	var updated map[string]any
	l := lexofficeServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodGet:
			require.Equal(t, "/v1/vouchers/v-1", r.URL.Path)
			fmt.Fprint(w, `{"id": "v-1", "remark": "old", "totalGrossAmount": 119}`)
		case http.MethodPut:
			require.Equal(t, "/v1/vouchers/v-1", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&updated))
			fmt.Fprint(w, `{"id": "v-1"}`)
		}
	})

	require.NoError(t, l.SetField(context.Background(), "v-1", "remark", "paid"))
	assert.Equal(t, "paid", updated["remark"])
	assert.Equal(t, float64(119), updated["totalGrossAmount"], "untouched fields survive the round trip")
}

func TestLexoffice_UploadAttachment(t *testing.T) {
	l := lexofficeServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/vouchers/v-1/files", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "invoice.pdf", header.Filename)
		content, _ := io.ReadAll(file)
		assert.Equal(t, []byte("%PDF-1.4"), content)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id": "file-1"}`)
	})

	item, err := l.UploadAttachment(context.Background(), "v-1", Attachment{Filename: "invoice.pdf", Content: []byte("%PDF-1.4")})
	require.NoError(t, err)
	assert.Equal(t, "file-1", item.Id())
}

func TestLexoffice_UnauthorizedIsNotRetryable(t *testing.T) {
	l := lexofficeServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	})

	err := l.TestConnection(context.Background())
	require.Error(t, err)
	assert.True(t, IsKind(err, KIND_UNAUTHORIZED))
	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.False(t, ce.Retryable())
}

func TestLexoffice_DefaultBaseUrl(t *testing.T) {
	l := NewLexoffice("", "key")
	assert.Equal(t, "https://api.lexware.io", l.baseUrl)
}
