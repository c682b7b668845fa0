package aggregation

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/domain/concept"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/testutil"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/pkg/errors"
)

func runEngine(t *testing.T, in Input) *Result {
	t.Helper()
	res, err := NewEngine(nil).Run(context.Background(), in)
	require.NoError(t, err)
	return res
}

func TestEngine_GeneGroupFixture(t *testing.T) {
	u := universe(t, 11)
	res := runEngine(t, Input{Universe: u, Relations: relations(t, fixturePairs...)})

	clusters := aggregatesWithLabel(res, concept.LabelAggregateGeneGroup)
	require.Len(t, clusters, 5)
	var clusterKeys []concept.Coordinate
	for _, c := range clusters {
		clusterKeys = append(clusterKeys, c.Key())
		assert.True(t, c.AggregateIncludeInHierarchy)
		assert.True(t, c.HasLabel(concept.LabelNoProcessingGazetteer))
	}
	assert.ElementsMatch(t, []concept.Coordinate{
		groupKey("genegroup:1"), groupKey("genegroup:2"), groupKey("genegroup:4"),
		groupKey("genegroup:7"), groupKey("genegroup:11"),
	}, clusterKeys)

	tops := aggregatesWithLabel(res, concept.LabelAggregateTopOrthology)
	require.Len(t, tops, 1)
	top := tops[0]
	assert.Equal(t, groupKey("genegroup:toporthology:0"), top.Key())
	assert.Equal(t, []concept.Coordinate{
		groupKey("genegroup:1"), groupKey("genegroup:2"), groupKey("genegroup:4"), groupKey("genegroup:7"),
	}, keys(top.ElementCoordinates))
	assert.Equal(t, "name1", top.PrefName)

	g11, ok := res.Forest.Node(groupKey("genegroup:11"))
	require.True(t, ok)
	assert.Empty(t, g11.Parents, "genegroup:11 must not be under a top orthology aggregate")

	for _, id := range []string{"1", "2", "3", "5", "9"} {
		root, err := res.Forest.Root(geneKey(id))
		require.NoError(t, err, id)
		assert.Equal(t, top.Key(), root, id)
	}
	root, err := res.Forest.Root(geneKey("10"))
	require.NoError(t, err)
	assert.Equal(t, groupKey("genegroup:11"), root)

	assert.Equal(t, 5, res.Stats.Clusters)
	assert.Equal(t, 1, res.Stats.TopOrthology)
	assert.Equal(t, 3, res.Stats.MultiClusterGenes)
	assert.Equal(t, 17, res.Len())
}

func TestEngine_StreamEmitsGenesThenAggregates(t *testing.T) {
	res := runEngine(t, Input{Universe: universe(t, 11), Relations: relations(t, fixturePairs...)})

	all, err := concept.Collect(context.Background(), res.Stream())
	require.NoError(t, err)
	require.Len(t, all, 17)
	for i, c := range all {
		assert.Equal(t, i >= 11, c.Aggregate, c.Key().String())
	}
	assert.Equal(t, "genegroup:toporthology:0", all[16].Coordinates.SourceID)
}

func TestEngine_GeneParentsAndLabels(t *testing.T) {
	u := universe(t, 11)
	runEngine(t, Input{Universe: u, Relations: relations(t, fixturePairs...)})

	g2, _ := u.Get("2")
	assert.Equal(t, []concept.Coordinate{groupKey("genegroup:1"), groupKey("genegroup:2")}, keys(g2.ParentCoordinates))
	assert.True(t, g2.HasLabel(concept.LabelNoQueryDictionary))
	assert.True(t, g2.HasLabel(concept.LabelNoSuggestions))

	for _, id := range []string{"1", "3", "10", "11"} {
		g, _ := u.Get(id)
		assert.Len(t, g.ParentCoordinates, 1, id)
		assert.False(t, g.HasLabel(concept.LabelNoQueryDictionary), id)
		assert.False(t, g.HasLabel(concept.LabelNoSuggestions), id)
	}
}

func TestEngine_CyclicOverlapConverges(t *testing.T) {
	u := universe(t, 3)
	// g1={1,2}, g2={2,3}, g3={3,1}: every gene sits in two clusters.
	res := runEngine(t, Input{Universe: u, Relations: relations(t, "1 2", "2 3", "3 1")})

	assert.Equal(t, 3, res.Stats.Clusters)
	tops := aggregatesWithLabel(res, concept.LabelAggregateTopOrthology)
	require.Len(t, tops, 1)
	assert.Len(t, tops[0].ElementCoordinates, 3)
	for _, id := range []string{"1", "2", "3"} {
		root, err := res.Forest.Root(geneKey(id))
		require.NoError(t, err)
		assert.Equal(t, tops[0].Key(), root)
	}
}

func TestEngine_AggregateFoundThroughLaterGeneIsReused(t *testing.T) {
	u := universe(t, 9)
	// g1={1,2}, g2={2,3,8}, g5={5,9}, g6={6,5,8}.  Gene 2 creates the
	// aggregate over g1 and g2.  Gene 5 sits in g5 and g6, neither of which has
	// an aggregate yet; the search must reach g2 through gene 8.
	res := runEngine(t, Input{Universe: u, Relations: relations(t,
		"1 2", "2 3", "2 8", "5 9", "6 5", "6 8")})

	tops := aggregatesWithLabel(res, concept.LabelAggregateTopOrthology)
	require.Len(t, tops, 1, "connected clusters must share one top orthology aggregate")
	assert.Equal(t, []concept.Coordinate{
		groupKey("genegroup:1"), groupKey("genegroup:2"), groupKey("genegroup:5"), groupKey("genegroup:6"),
	}, keys(tops[0].ElementCoordinates))
}

func TestEngine_SingletonGroupsProduceNoAggregate(t *testing.T) {
	u := universe(t, 4)
	// group 1 has only unknown orthologs; group 99 is unknown but has two
	// known orthologs.
	res := runEngine(t, Input{Universe: u, Relations: relations(t, "1 500", "1 501", "99 3", "99 4", "2 2")})

	require.Len(t, res.Aggregates, 1)
	cluster := res.Aggregates[0]
	assert.Equal(t, groupKey("genegroup:99"), cluster.Key())
	assert.Equal(t, "name3", cluster.PrefName)
	assert.Equal(t, []concept.Coordinate{geneKey("3"), geneKey("4")}, keys(cluster.ElementCoordinates))
	assert.Equal(t, 2, res.Stats.GroupsSkipped)

	g1, _ := u.Get("1")
	assert.Empty(t, g1.ParentCoordinates)
}

func TestEngine_NoRelationsPassesGenesThrough(t *testing.T) {
	log := testutil.NewMockLogger()
	u := universe(t, 3)

	res, err := NewEngine(log).Run(context.Background(), Input{Universe: u})
	require.NoError(t, err)

	assert.Empty(t, res.Aggregates)
	assert.Len(t, res.Genes, 3)
	for _, g := range res.Genes {
		assert.Empty(t, g.ParentCoordinates)
	}
	_, ok := log.Find("info", "no ortholog relations supplied")
	assert.True(t, ok)
}

func TestEngine_RerunsAreIsomorphic(t *testing.T) {
	forward := relations(t, fixturePairs...)
	reversed := make([]string, len(fixturePairs))
	for i, p := range fixturePairs {
		reversed[len(fixturePairs)-1-i] = p
	}
	backward := relations(t, reversed...)

	a := runEngine(t, Input{Universe: universe(t, 11), Relations: forward})
	b := runEngine(t, Input{Universe: universe(t, 11), Relations: backward})

	ja, err := json.Marshal(mustCollect(t, a))
	require.NoError(t, err)
	jb, err := json.Marshal(mustCollect(t, b))
	require.NoError(t, err)
	assert.JSONEq(t, string(ja), string(jb))
}

func mustCollect(t *testing.T, res *Result) []*concept.Concept {
	t.Helper()
	all, err := concept.Collect(context.Background(), res.Stream())
	require.NoError(t, err)
	return all
}

func TestEngine_HomologyUnifiedUnderTopHomology(t *testing.T) {
	u := universe(t, 6)
	h := NewHomologyIndex()
	h.Add("100", HomologyMember{TaxID: "9606", GeneID: "2", Symbol: "HSYM"})
	h.Add("100", HomologyMember{TaxID: "10090", GeneID: "3", Symbol: "Hsym"})
	h.Add("200", HomologyMember{TaxID: "9606", GeneID: "5", Symbol: "LONE"})
	h.Add("200", HomologyMember{TaxID: "10090", GeneID: "999", Symbol: "Unknown"})

	res := runEngine(t, Input{Universe: u, Relations: relations(t, "1 2", "3 4"), Homology: h})

	hcs := aggregatesWithLabel(res, concept.LabelAggregateHomoloGene)
	require.Len(t, hcs, 1)
	assert.Equal(t, key("homologene:100", concept.SourceHomoloGene), hcs[0].Key())
	assert.Equal(t, "HSYM", hcs[0].PrefName)
	assert.Equal(t, 1, res.Stats.HomologyClustersSkipped)

	ths := aggregatesWithLabel(res, concept.LabelAggregateTopHomology)
	require.Len(t, ths, 1)
	th := ths[0]
	assert.Equal(t, groupKey("genegroup:tophomology:0"), th.Key())
	assert.Equal(t, []concept.Coordinate{
		groupKey("genegroup:1"), key("homologene:100", concept.SourceHomoloGene), groupKey("genegroup:3"),
	}, keys(th.ElementCoordinates))
	assert.Equal(t, []string{concept.PropPreferredName, concept.PropFacets}, th.AggregateCopyProperties)
	assert.Equal(t, "name1", th.PrefName)
	assert.Equal(t, []string{"fid_genes"}, th.Facets)
	assert.True(t, th.AggregateIncludeInHierarchy)
	assert.True(t, th.HasLabel(concept.LabelNoProcessingGazetteer))
	assert.Equal(t, 1, res.Stats.TopHomologyExtended)

	for _, id := range []string{"1", "2", "3", "4"} {
		root, err := res.Forest.Root(geneKey(id))
		require.NoError(t, err, id)
		assert.Equal(t, th.Key(), root, id)
	}
	g5, _ := u.Get("5")
	assert.Empty(t, g5.ParentCoordinates)
}

func TestEngine_LaterGeneJoinsTwoTopHomologyRoots(t *testing.T) {
	u := universe(t, 6)
	h := NewHomologyIndex()
	h.Add("100", HomologyMember{GeneID: "1"})
	h.Add("100", HomologyMember{GeneID: "6"})
	h.Add("200", HomologyMember{GeneID: "3"})
	h.Add("200", HomologyMember{GeneID: "5"})

	// gene 1 unifies genegroup:1 with homologene:100, gene 3 unifies
	// genegroup:3 with homologene:200, and gene 5 reaches both results.
	res := runEngine(t, Input{Universe: u, Relations: relations(t, "1 2", "1 5", "3 4"), Homology: h})

	ths := aggregatesWithLabel(res, concept.LabelAggregateTopHomology)
	require.Len(t, ths, 2)
	first, second := ths[0], ths[1]
	assert.Equal(t, groupKey("genegroup:tophomology:0"), first.Key())
	assert.Equal(t, groupKey("genegroup:tophomology:1"), second.Key())
	assert.Equal(t, 2, res.Stats.TopHomology)
	assert.Equal(t, 1, res.Stats.TopHomologyExtended)

	assert.Equal(t, []concept.Coordinate{first.Key()}, keys(second.ParentCoordinates))
	assert.Empty(t, first.ParentCoordinates)
	assert.Equal(t, []concept.Coordinate{
		groupKey("genegroup:1"), key("homologene:100", concept.SourceHomoloGene), second.Key(),
	}, keys(first.ElementCoordinates))
	assert.Equal(t, []concept.Coordinate{first.Key()}, res.Forest.Parents(second.Key()))

	for _, id := range []string{"1", "2", "3", "4", "5", "6"} {
		root, err := res.Forest.Root(geneKey(id))
		require.NoError(t, err, id)
		assert.Equal(t, first.Key(), root, id)
	}
}

func TestEngine_SingleRootSkipsTopHomology(t *testing.T) {
	u := universe(t, 3)
	h := NewHomologyIndex()
	h.Add("7", HomologyMember{GeneID: "1"})
	h.Add("7", HomologyMember{GeneID: "2"})

	res := runEngine(t, Input{Universe: u, Homology: h})
	assert.Empty(t, aggregatesWithLabel(res, concept.LabelAggregateTopHomology))
	assert.Len(t, res.Aggregates, 1)
}

func TestEngine_RequiresUniverse(t *testing.T) {
	_, err := NewEngine(nil).Run(context.Background(), Input{})
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestEngine_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewEngine(nil).Run(ctx, Input{Universe: universe(t, 2), Relations: relations(t, "1 2")})
	assert.ErrorIs(t, err, context.Canceled)
}

type recordingObserver struct {
	mu     sync.Mutex
	stages []string
	counts map[string]int
}

func (o *recordingObserver) StageCompleted(stage string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stages = append(o.stages, stage)
}

func (o *recordingObserver) AggregatesCreated(kind string, n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.counts == nil {
		o.counts = make(map[string]int)
	}
	o.counts[kind] += n
}

func TestEngine_ReportsToObserver(t *testing.T) {
	obs := &recordingObserver{}
	_, err := NewEngine(nil, WithObserver(obs)).Run(context.Background(),
		Input{Universe: universe(t, 11), Relations: relations(t, fixturePairs...)})
	require.NoError(t, err)

	assert.Equal(t, []string{StageClusters, StageTopOrthology, StageTopHomology, StageVerify}, obs.stages)
	assert.Equal(t, 5, obs.counts[concept.LabelAggregateGeneGroup])
	assert.Equal(t, 1, obs.counts[concept.LabelAggregateTopOrthology])
}

func TestRun_RegisterRejectsDuplicateCoordinate(t *testing.T) {
	r := newRun(testutil.NewMockLogger(), universe(t, 1))
	c := concept.NewAggregate(concept.NewCoordinates("genegroup:1", concept.SourceGeneGroup))
	require.NoError(t, r.register(c))
	err := r.register(c)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDataConsistency))
}

func TestRun_MissingClusterIsDataConsistencyError(t *testing.T) {
	r := newRun(testutil.NewMockLogger(), universe(t, 2))
	r.geneClusters["1"] = []concept.Coordinate{groupKey("genegroup:1"), groupKey("genegroup:2")}
	r.clusterMembers[groupKey("genegroup:1")] = []string{"1"}
	r.clusterMembers[groupKey("genegroup:2")] = []string{"1"}

	err := r.unifyTopOrthology(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDataConsistency))
}

func TestSequence(t *testing.T) {
	s := NewSequence(PrefixTopOrthology)
	assert.Equal(t, "genegroup:toporthology:0", s.Next())
	assert.Equal(t, "genegroup:toporthology:1", s.Next())
	assert.Equal(t, 2, s.Issued())
}

//Personal.AI order the ending
