//go:build integration

// Integration tests for the Neo4j concept sink.  Tests require Docker and are
// gated behind the "integration" build tag.
package repositories_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/config"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/domain/concept"
	infraNeo4j "github.com/JULIELab/julielab-concept-db-manager-sub000/internal/infrastructure/database/neo4j"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/infrastructure/database/neo4j/repositories"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/infrastructure/monitoring/logging"
)

// startNeo4j launches a Neo4j 5 container and returns a connected driver.
func startNeo4j(t *testing.T) *infraNeo4j.Driver {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "neo4j:5-community",
		ExposedPorts: []string{"7687/tcp"},
		Env:          map[string]string{"NEO4J_AUTH": "neo4j/integration-test"},
		WaitingFor:   wait.ForLog("Started.").WithStartupTimeout(120 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "7687")
	require.NoError(t, err)

	d, err := infraNeo4j.NewDriver(ctx, config.Neo4jConfig{
		URI:               fmt.Sprintf("bolt://%s:%s", host, port.Port()),
		User:              "neo4j",
		Password:          "integration-test",
		ConnectionTimeout: 30 * time.Second,
	}, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close(ctx) })
	return d
}

func TestConceptRepository_Integration_Idempotent(t *testing.T) {
	d := startNeo4j(t)
	ctx := context.Background()
	repo := repositories.NewConceptRepository(d, nil)
	require.NoError(t, repo.EnsureConstraints(ctx))

	g1 := &concept.Concept{Coordinates: concept.NewCoordinates("1", concept.SourceNCBIGene), PrefName: "A"}
	g2 := &concept.Concept{Coordinates: concept.NewCoordinates("2", concept.SourceNCBIGene), PrefName: "B"}
	cluster := concept.NewAggregate(concept.NewCoordinates("genegroup:1", concept.SourceGeneGroup),
		concept.LabelAggregateGeneGroup)
	for _, g := range []*concept.Concept{g1, g2} {
		cluster.AddElement(g.Coordinates)
		g.AddParent(cluster.Coordinates)
	}

	// Genes first: the parent is referenced before it is written.
	require.NoError(t, repo.Write(ctx, []*concept.Concept{g1, g2}))
	require.NoError(t, repo.Write(ctx, []*concept.Concept{cluster}))
	require.NoError(t, repo.Write(ctx, []*concept.Concept{g1, g2, cluster}))

	n, err := repo.CountConcepts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	v, err := d.ExecuteRead(ctx, func(tx infraNeo4j.Transaction) (any, error) {
		res, err := tx.Run(ctx, `MATCH (:AGGREGATE {sourceId: "genegroup:1"})-[r:IS_BROADER_THAN]->(:CONCEPT) RETURN count(r) AS total`, nil)
		if err != nil {
			return nil, err
		}
		total, err := infraNeo4j.SingleValue[int64](ctx, res, "total")
		if err != nil {
			return nil, err
		}
		return total, nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)
}

//Personal.AI order the ending
