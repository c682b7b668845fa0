package opensearch

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/domain/concept"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/pkg/errors"
)

// fakeCluster answers the handful of endpoints the indexer uses.
type fakeCluster struct {
	mu          sync.Mutex
	indexExists bool
	created     string
	bulkLines   []string
	bulkErrors  bool
}

func (f *fakeCluster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/":
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, `{"version":{"number":"2.11.0","distribution":"opensearch"}}`)
	case r.URL.Path == "/_bulk":
		sc := bufio.NewScanner(r.Body)
		for sc.Scan() {
			f.bulkLines = append(f.bulkLines, sc.Text())
		}
		if f.bulkErrors {
			_, _ = io.WriteString(w, `{"took":1,"errors":true,"items":[{"index":{"_index":"suggestions","_id":"1@NCBI Gene","status":400,"error":{"type":"mapper_parsing_exception","reason":"bad suggest"}}}]}`)
			return
		}
		_, _ = io.WriteString(w, `{"took":1,"errors":false,"items":[]}`)
	case r.Method == http.MethodHead:
		if f.indexExists {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	case r.Method == http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.created = string(body)
		f.indexExists = true
		_, _ = io.WriteString(w, `{"acknowledged":true,"shards_acknowledged":true,"index":"suggestions"}`)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestIndexer(t *testing.T, f *fakeCluster) *SuggestionIndexer {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	c, err := NewClient(context.Background(), newTestConfig(srv.URL), nil)
	require.NoError(t, err)
	return NewSuggestionIndexer(c, "suggestions", nil, WithRefresh("true"))
}

func TestNewSuggestionDoc(t *testing.T) {
	gene := &concept.Concept{
		Coordinates: concept.NewCoordinates("1", concept.SourceNCBIGene),
		PrefName:    "A1BG",
		Synonyms:    []string{"alpha-1-B glycoprotein"},
	}
	gene.AddLabels(concept.LabelNoQueryDictionary)

	doc, ok := NewSuggestionDoc(gene)
	require.True(t, ok)
	assert.Equal(t, []string{"A1BG", "alpha-1-B glycoprotein"}, doc.Suggest.Input)
	assert.False(t, doc.QueryDictionary)
	assert.True(t, doc.ProcessingGazetteer)

	gene.AddLabels(concept.LabelNoSuggestions)
	_, ok = NewSuggestionDoc(gene)
	assert.False(t, ok)

	_, ok = NewSuggestionDoc(&concept.Concept{Coordinates: concept.NewCoordinates("2", concept.SourceNCBIGene)})
	assert.False(t, ok)
}

func TestSuggestionIndexer_EnsureIndex(t *testing.T) {
	f := &fakeCluster{}
	idx := newTestIndexer(t, f)

	require.NoError(t, idx.EnsureIndex(context.Background()))
	assert.Contains(t, f.created, `"completion"`)

	f.created = ""
	require.NoError(t, idx.EnsureIndex(context.Background()))
	assert.Empty(t, f.created)
}

func TestSuggestionIndexer_Write(t *testing.T) {
	f := &fakeCluster{}
	idx := newTestIndexer(t, f)

	hidden := &concept.Concept{Coordinates: concept.NewCoordinates("2", concept.SourceNCBIGene), PrefName: "B"}
	hidden.AddLabels(concept.LabelNoSuggestions)
	batch := []*concept.Concept{
		{Coordinates: concept.NewCoordinates("1", concept.SourceNCBIGene), PrefName: "A1BG"},
		hidden,
	}

	require.NoError(t, idx.Write(context.Background(), batch))
	require.Len(t, f.bulkLines, 2)

	var meta map[string]map[string]string
	require.NoError(t, json.Unmarshal([]byte(f.bulkLines[0]), &meta))
	assert.Equal(t, "1@NCBI Gene", meta["index"]["_id"])
	assert.True(t, strings.Contains(f.bulkLines[1], `"preferredName":"A1BG"`))
	assert.Equal(t, int64(1), idx.indexed)
	assert.Equal(t, int64(1), idx.skipped)
	assert.NoError(t, idx.Close(context.Background()))
}

func TestSuggestionIndexer_Write_NothingEligible(t *testing.T) {
	f := &fakeCluster{}
	idx := newTestIndexer(t, f)

	require.NoError(t, idx.Write(context.Background(), []*concept.Concept{
		{Coordinates: concept.NewCoordinates("1", concept.SourceNCBIGene)},
	}))
	assert.Empty(t, f.bulkLines)
}

func TestSuggestionIndexer_Write_Rejected(t *testing.T) {
	f := &fakeCluster{bulkErrors: true}
	idx := newTestIndexer(t, f)

	err := idx.Write(context.Background(), []*concept.Concept{
		{Coordinates: concept.NewCoordinates("1", concept.SourceNCBIGene), PrefName: "A1BG"},
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeExportRejected))
	assert.Contains(t, err.Error(), "mapper_parsing_exception")
	assert.Equal(t, "opensearch", idx.Name())
}

//Personal.AI order the ending
