// Package search wraps the Elasticsearch client used as the secondary
// read index for alerts, logs, metrics and service status documents.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8"
)

// Client wraps an Elasticsearch client. It is constructed once at startup
// and injected into whatever needs it.
type Client struct {
	es *elasticsearch.Client
}

// New creates a search client for the given node addresses.
func New(addresses []string) (*Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: addresses,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	return &Client{es: es}, nil
}

// Document is a single item to index.
type Document struct {
	ID   string
	Body []byte
}

// BulkFailure describes one rejected document from a bulk request.
type BulkFailure struct {
	ID     string
	Status int
	Reason string
}

// BulkResult holds the per-document outcome of a bulk index request.
type BulkResult struct {
	Succeeded []string
	Failed    []BulkFailure
}

// bulkResponse mirrors the parts of the Elasticsearch bulk response we read.
type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		ID     string `json:"_id"`
		Status int    `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	} `json:"items"`
}

// BulkIndex writes the documents into index, keyed by their IDs. It returns
// the per-document outcome; a partially failed request is not an error.
func (c *Client) BulkIndex(ctx context.Context, index string, docs []Document) (*BulkResult, error) {
	if len(docs) == 0 {
		return &BulkResult{}, nil
	}

	var buf bytes.Buffer
	for _, doc := range docs {
		action := map[string]map[string]string{
			"index": {"_index": index, "_id": doc.ID},
		}
		meta, err := json.Marshal(action)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal bulk action: %w", err)
		}
		buf.Write(meta)
		buf.WriteByte('\n')
		buf.Write(doc.Body)
		buf.WriteByte('\n')
	}

	res, err := c.es.Bulk(
		bytes.NewReader(buf.Bytes()),
		c.es.Bulk.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("bulk request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("bulk request returned %s: %s", res.Status(), body)
	}

	var parsed bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode bulk response: %w", err)
	}

	result := &BulkResult{}
	for _, item := range parsed.Items {
		for _, v := range item {
			if v.Error != nil || v.Status >= 300 {
				failure := BulkFailure{ID: v.ID, Status: v.Status}
				if v.Error != nil {
					failure.Reason = fmt.Sprintf("%s: %s", v.Error.Type, v.Error.Reason)
				}
				result.Failed = append(result.Failed, failure)
			} else {
				result.Succeeded = append(result.Succeeded, v.ID)
			}
		}
	}
	return result, nil
}

// Ping verifies the cluster is reachable.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to ping elasticsearch: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch ping returned %s", res.Status())
	}
	return nil
}
