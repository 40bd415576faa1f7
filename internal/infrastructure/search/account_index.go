package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-accounts/internal/application"
)

// AccountIndex mirrors account views into an Elasticsearch index.
type AccountIndex struct {
	ES     *elasticsearch.Client
	Index  string
	Logger *logrus.Logger
}

func NewAccountIndex(es *elasticsearch.Client, index string, logger *logrus.Logger) *AccountIndex {
	return &AccountIndex{ES: es, Index: index, Logger: logger}
}

// Document is the indexed shape of an account.
func Document(v application.AccountView) map[string]any {
	doc := map[string]any{
		"id":         v.ID,
		"name":       v.Name,
		"email":      v.Email,
		"birth_date": v.BirthDate.String(),
		"active":     v.Active,
		"created_at": v.CreatedAt.Format(time.RFC3339Nano),
	}
	if v.Phone != nil {
		doc["phone"] = *v.Phone
	}
	return doc
}

// Put indexes (or replaces) the document for v.
func (x *AccountIndex) Put(ctx context.Context, v application.AccountView) error {
	if x.ES == nil || x.Index == "" {
		return nil
	}
	b, err := json.Marshal(Document(v))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{
		Index:      x.Index,
		DocumentID: strconv.FormatInt(v.ID, 10),
		Body:       bytes.NewReader(b),
		Refresh:    "false",
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		if x.Logger != nil {
			x.Logger.WithError(err).WithField("account_id", v.ID).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index account %d: %s", v.ID, res.Status())
	}
	return nil
}

// Ensure creates the index when it does not exist yet.
func (x *AccountIndex) Ensure(ctx context.Context) error {
	if x.ES == nil || x.Index == "" {
		return nil
	}
	exists, err := esapi.IndicesExistsRequest{Index: []string{x.Index}}.Do(ctx, x.ES)
	if err != nil {
		return err
	}
	_ = exists.Body.Close()
	if exists.StatusCode == 200 {
		return nil
	}

	res, err := esapi.IndicesCreateRequest{Index: x.Index, Body: bytes.NewReader(accountMapping)}.Do(ctx, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es create index %s: %s", x.Index, res.Status())
	}
	return nil
}

var accountMapping = []byte(`{
  "mappings": {
    "properties": {
      "id":         {"type": "long"},
      "name":       {"type": "text"},
      "email":      {"type": "keyword"},
      "birth_date": {"type": "date", "format": "yyyy-MM-dd"},
      "phone":      {"type": "keyword"},
      "active":     {"type": "boolean"},
      "created_at": {"type": "date"}
    }
  }
}`)
