package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/opensearch-project/opensearch-go/v3/opensearchapi"

	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/domain/concept"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/infrastructure/monitoring/logging"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/pkg/errors"
)

// SinkName identifies the suggestion exporter in import.sinks.
const SinkName = "opensearch"

const suggestionMapping = `{
  "mappings": {
    "properties": {
      "source":              {"type": "keyword"},
      "sourceId":            {"type": "keyword"},
      "preferredName":       {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "synonyms":            {"type": "text"},
      "facets":              {"type": "keyword"},
      "labels":              {"type": "keyword"},
      "aggregate":           {"type": "boolean"},
      "queryDictionary":     {"type": "boolean"},
      "processingGazetteer": {"type": "boolean"},
      "suggest":             {"type": "completion"}
    }
  }
}`

// SuggestionDoc is the indexed form of a concept.
type SuggestionDoc struct {
	Source              string         `json:"source"`
	SourceID            string         `json:"sourceId"`
	PreferredName       string         `json:"preferredName"`
	Synonyms            []string       `json:"synonyms,omitempty"`
	Facets              []string       `json:"facets,omitempty"`
	Labels              []string       `json:"labels,omitempty"`
	Aggregate           bool           `json:"aggregate"`
	QueryDictionary     bool           `json:"queryDictionary"`
	ProcessingGazetteer bool           `json:"processingGazetteer"`
	Suggest             SuggestionForm `json:"suggest"`
}

// SuggestionForm is the completion suggester input.
type SuggestionForm struct {
	Input []string `json:"input"`
}

// NewSuggestionDoc converts c.  Concepts labelled NO_SUGGESTIONS or without a
// preferred name are not indexed and yield ok == false.
func NewSuggestionDoc(c *concept.Concept) (doc SuggestionDoc, ok bool) {
	if c.PrefName == "" || c.HasLabel(concept.LabelNoSuggestions) {
		return SuggestionDoc{}, false
	}
	input := append([]string{c.PrefName}, c.Synonyms...)
	return SuggestionDoc{
		Source:              c.Coordinates.Source,
		SourceID:            c.Coordinates.SourceID,
		PreferredName:       c.PrefName,
		Synonyms:            c.Synonyms,
		Facets:              c.Facets,
		Labels:              c.GeneralLabels,
		Aggregate:           c.Aggregate,
		QueryDictionary:     !c.HasLabel(concept.LabelNoQueryDictionary),
		ProcessingGazetteer: !c.HasLabel(concept.LabelNoProcessingGazetteer),
		Suggest:             SuggestionForm{Input: input},
	}, true
}

// SuggestionIndexer bulk-indexes concept suggestions into one index.
type SuggestionIndexer struct {
	client  *Client
	index   string
	refresh string
	logger  logging.Logger

	indexed int64
	skipped int64
}

// IndexerOption configures a SuggestionIndexer.
type IndexerOption func(*SuggestionIndexer)

// WithRefresh sets the bulk refresh parameter ("true", "wait_for", "false").
func WithRefresh(policy string) IndexerOption {
	return func(i *SuggestionIndexer) { i.refresh = policy }
}

func NewSuggestionIndexer(client *Client, index string, logger logging.Logger, opts ...IndexerOption) *SuggestionIndexer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	i := &SuggestionIndexer{client: client, index: index, refresh: "false", logger: logger.Named("suggestions")}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *SuggestionIndexer) Name() string { return SinkName }

// EnsureIndex creates the suggestion index with its mapping if it is missing.
func (i *SuggestionIndexer) EnsureIndex(ctx context.Context) error {
	resp, err := i.client.API().Indices.Exists(ctx, opensearchapi.IndicesExistsReq{Indices: []string{i.index}})
	if resp != nil {
		resp.Body.Close()
		if resp.StatusCode == 200 {
			return nil
		}
		if resp.StatusCode != 404 && err != nil {
			return errors.Wrap(err, errors.ErrCodeExternalService, "failed to check index").WithDetail(i.index)
		}
	} else if err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "failed to check index").WithDetail(i.index)
	}

	_, err = i.client.API().Indices.Create(ctx, opensearchapi.IndicesCreateReq{
		Index: i.index,
		Body:  strings.NewReader(suggestionMapping),
	})
	if err != nil {
		if strings.Contains(err.Error(), "resource_already_exists_exception") {
			return nil
		}
		return errors.Wrap(err, errors.ErrCodeExternalService, "failed to create index").WithDetail(i.index)
	}
	i.logger.Info("Index created", logging.String("index", i.index))
	return nil
}

// Write indexes the eligible concepts of one batch with a single bulk request.
func (i *SuggestionIndexer) Write(ctx context.Context, concepts []*concept.Concept) error {
	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	n := 0
	for _, c := range concepts {
		doc, ok := NewSuggestionDoc(c)
		if !ok {
			i.skipped++
			continue
		}
		meta := map[string]map[string]string{"index": {"_index": i.index, "_id": c.Key().String()}}
		if err := enc.Encode(meta); err != nil {
			return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode bulk action")
		}
		if err := enc.Encode(doc); err != nil {
			return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode suggestion").
				WithDetail(c.Key().String())
		}
		n++
	}
	if n == 0 {
		return nil
	}

	resp, err := i.client.API().Bulk(ctx, opensearchapi.BulkReq{
		Body:   &body,
		Params: opensearchapi.BulkParams{Refresh: i.refresh},
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSinkWriteFailed, "opensearch bulk request failed")
	}
	if resp.Errors {
		failed, reason := 0, ""
		for _, item := range resp.Items {
			for _, res := range item {
				if res.Error != nil {
					failed++
					if reason == "" {
						reason = res.Error.Type + ": " + res.Error.Reason
					}
				}
			}
		}
		return errors.New(errors.ErrCodeExportRejected, "opensearch rejected suggestions").
			WithDetail(fmt.Sprintf("%d of %d documents failed, first: %s", failed, n, reason))
	}
	i.indexed += int64(n)
	i.logger.Debug("Bulk indexed", logging.Int("documents", n))
	return nil
}

func (i *SuggestionIndexer) Close(ctx context.Context) error {
	i.logger.Info("Suggestion export finished",
		logging.String("index", i.index),
		logging.Int64("indexed", i.indexed),
		logging.Int64("skipped", i.skipped))
	return nil
}

//Personal.AI order the ending
