package repositories

import (
	"context"

	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/domain/concept"
	driver "github.com/JULIELab/julielab-concept-db-manager-sub000/internal/infrastructure/database/neo4j"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/internal/infrastructure/monitoring/logging"
	"github.com/JULIELab/julielab-concept-db-manager-sub000/pkg/errors"
)

// SinkName identifies the Neo4j concept sink in import.sinks.
const SinkName = "neo4j"

// Node label and relationship types of the concept graph.
const (
	LabelConcept   = "CONCEPT"
	LabelAggregate = "AGGREGATE"
	RelBroaderThan = "IS_BROADER_THAN"
	RelHasElement  = "HAS_ELEMENT"
)

var constraintStatements = []string{
	`CREATE CONSTRAINT concept_coordinates IF NOT EXISTS
FOR (c:CONCEPT) REQUIRE (c.source, c.sourceId) IS UNIQUE`,
	`CREATE INDEX concept_preferred_name IF NOT EXISTS
FOR (c:CONCEPT) ON (c.preferredName)`,
}

const upsertConceptsCypher = `
UNWIND $concepts AS n
MERGE (c:CONCEPT {source: n.source, sourceId: n.sourceId})
SET c += n.props
FOREACH (_ IN CASE WHEN n.props.aggregate THEN [1] ELSE [] END | SET c:AGGREGATE)
`

// Parents may arrive in a later batch than their children, so the parent side
// is merged as a bare coordinate node that the later upsert completes.
const mergeBroaderCypher = `
UNWIND $rels AS r
MATCH (child:CONCEPT {source: r.childSource, sourceId: r.childId})
MERGE (parent:CONCEPT {source: r.otherSource, sourceId: r.otherId})
MERGE (parent)-[:IS_BROADER_THAN]->(child)
`

const mergeElementCypher = `
UNWIND $rels AS r
MATCH (agg:CONCEPT {source: r.childSource, sourceId: r.childId})
MERGE (el:CONCEPT {source: r.otherSource, sourceId: r.otherId})
MERGE (agg)-[:HAS_ELEMENT]->(el)
`

const countConceptsCypher = `MATCH (c:CONCEPT) RETURN count(c) AS total`

// ConceptRepository writes the concept stream into Neo4j.
type ConceptRepository struct {
	driver driver.DriverInterface
	log    logging.Logger
}

func NewConceptRepository(d driver.DriverInterface, log logging.Logger) *ConceptRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ConceptRepository{driver: d, log: log.Named("neo4j")}
}

func (r *ConceptRepository) Name() string { return SinkName }

// EnsureConstraints creates the uniqueness constraint on concept coordinates.
func (r *ConceptRepository) EnsureConstraints(ctx context.Context) error {
	for _, stmt := range constraintStatements {
		stmt := stmt
		_, err := r.driver.ExecuteWrite(ctx, func(tx driver.Transaction) (any, error) {
			return consume(ctx, tx, stmt, nil)
		})
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create concept constraints")
		}
	}
	return nil
}

// Write upserts one batch of concepts together with their hierarchy and
// element relationships in a single transaction.
func (r *ConceptRepository) Write(ctx context.Context, concepts []*concept.Concept) error {
	if len(concepts) == 0 {
		return nil
	}
	nodes := make([]map[string]any, 0, len(concepts))
	var parents, elements []map[string]any
	for _, c := range concepts {
		nodes = append(nodes, conceptRow(c))
		for _, p := range c.ParentCoordinates {
			parents = append(parents, relRow(c.Coordinates, p))
		}
		for _, e := range c.ElementCoordinates {
			elements = append(elements, relRow(c.Coordinates, e))
		}
	}

	_, err := r.driver.ExecuteWrite(ctx, func(tx driver.Transaction) (any, error) {
		if _, err := consume(ctx, tx, upsertConceptsCypher, map[string]any{"concepts": nodes}); err != nil {
			return nil, err
		}
		if len(parents) > 0 {
			if _, err := consume(ctx, tx, mergeBroaderCypher, map[string]any{"rels": parents}); err != nil {
				return nil, err
			}
		}
		if len(elements) > 0 {
			if _, err := consume(ctx, tx, mergeElementCypher, map[string]any{"rels": elements}); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSinkWriteFailed, "neo4j concept batch failed")
	}
	r.log.Debug("concept batch written",
		logging.Int("concepts", len(nodes)),
		logging.Int("parents", len(parents)),
		logging.Int("elements", len(elements)))
	return nil
}

// CountConcepts returns the number of CONCEPT nodes in the database.
func (r *ConceptRepository) CountConcepts(ctx context.Context) (int64, error) {
	v, err := r.driver.ExecuteRead(ctx, func(tx driver.Transaction) (any, error) {
		res, err := tx.Run(ctx, countConceptsCypher, nil)
		if err != nil {
			return nil, err
		}
		total, err := driver.SingleValue[int64](ctx, res, "total")
		if err != nil {
			return nil, err
		}
		return total, nil
	})
	if err != nil {
		return 0, err
	}
	n, _ := v.(int64)
	return n, nil
}

// Close logs how many concepts the database holds after the import and
// closes the driver.  A failed count is only logged.
func (r *ConceptRepository) Close(ctx context.Context) error {
	if n, err := r.CountConcepts(ctx); err != nil {
		r.log.Warn("failed to count stored concepts", logging.Err(err))
	} else {
		r.log.Info("concept store closed", logging.Int64("stored_concepts", n))
	}
	return r.driver.Close(ctx)
}

func consume(ctx context.Context, tx driver.Transaction, cypher string, params map[string]any) (any, error) {
	res, err := tx.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	_, err = res.Consume(ctx)
	return nil, err
}

func conceptRow(c *concept.Concept) map[string]any {
	props := map[string]any{
		"originalId":     c.Coordinates.OriginalID,
		"originalSource": c.Coordinates.OriginalSource,
		"aggregate":      c.Aggregate,
		"generalLabels":  nonNil(c.GeneralLabels),
		"synonyms":       nonNil(c.Synonyms),
		"descriptions":   nonNil(c.Descriptions),
		"facets":         nonNil(c.Facets),
	}
	if c.PrefName != "" {
		props["preferredName"] = c.PrefName
	}
	if c.Aggregate {
		props["aggregateIncludeInHierarchy"] = c.AggregateIncludeInHierarchy
		props["aggregateCopyProperties"] = nonNil(c.AggregateCopyProperties)
	}
	return map[string]any{
		"source":   c.Coordinates.Source,
		"sourceId": c.Coordinates.SourceID,
		"props":    props,
	}
}

func relRow(from, to concept.Coordinates) map[string]any {
	return map[string]any{
		"childSource": from.Source,
		"childId":     from.SourceID,
		"otherSource": to.Source,
		"otherId":     to.SourceID,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

//Personal.AI order the ending
