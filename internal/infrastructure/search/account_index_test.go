package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/user-accounts/internal/application"
	"github.com/oksasatya/user-accounts/internal/domain/entity"
)

func sampleView() application.AccountView {
	phone := "(11) 91234-5678"
	return application.AccountView{
		ID:        7,
		Name:      "Ana Silva",
		Email:     "ana@example.com",
		BirthDate: entity.NewDate(1990, time.May, 20),
		Phone:     &phone,
		Active:    true,
		CreatedAt: time.Date(2024, time.June, 15, 9, 0, 0, 0, time.UTC),
	}
}

func TestDocument(t *testing.T) {
	doc := Document(sampleView())
	assert.Equal(t, int64(7), doc["id"])
	assert.Equal(t, "1990-05-20", doc["birth_date"])
	assert.Equal(t, "(11) 91234-5678", doc["phone"])
	assert.Equal(t, "2024-06-15T09:00:00Z", doc["created_at"])

	v := sampleView()
	v.Phone = nil
	assert.NotContains(t, Document(v), "phone")
}

type recorded struct {
	method, path string
	body         map[string]any
}

func fakeES(t *testing.T, status int) (*elasticsearch.Client, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{method: r.Method, path: r.URL.Path}
		if b, _ := io.ReadAll(r.Body); len(b) > 0 {
			_ = json.Unmarshal(b, &rec.body)
		}
		calls = append(calls, rec)
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return es, &calls
}

func TestPutIndexesDocument(t *testing.T) {
	es, calls := fakeES(t, http.StatusCreated)
	idx := NewAccountIndex(es, "accounts", nil)

	require.NoError(t, idx.Put(context.Background(), sampleView()))
	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, http.MethodPut, call.method)
	assert.Equal(t, "/accounts/_doc/7", call.path)
	assert.Equal(t, "ana@example.com", call.body["email"])
}

func TestPutReportsClusterErrors(t *testing.T) {
	es, _ := fakeES(t, http.StatusBadRequest)
	idx := NewAccountIndex(es, "accounts", nil)
	assert.Error(t, idx.Put(context.Background(), sampleView()))
}

func TestUnconfiguredIndexIsNoop(t *testing.T) {
	idx := NewAccountIndex(nil, "", nil)
	assert.NoError(t, idx.Put(context.Background(), sampleView()))
	assert.NoError(t, idx.Ensure(context.Background()))
}
