package driver

// IndexQueries are run once at startup.
var IndexQueries = []string{
	"CREATE INDEX ON :Identifier(id);",
}

const (
	// RecordCoOccurrenceQuery links every pair in $pairs, incrementing the
	// weight of existing links.
	RecordCoOccurrenceQuery = `
		UNWIND $pairs AS pair
		MERGE (a:Identifier {id: pair.source})
		MERGE (b:Identifier {id: pair.target})
		MERGE (a)-[r:CO_OCCURS]-(b)
		ON CREATE SET r.weight = 1, r.first_seen = pair.seen_at
		ON MATCH SET r.weight = r.weight + 1
		SET r.last_seen = pair.seen_at
	`

	// NeighborhoodQuery returns the links within two hops of the given
	// identifiers, enough to compute degree and local betweenness.
	NeighborhoodQuery = `
		MATCH (c:Identifier)
		WHERE c.id IN $ids
		MATCH (c)-[:CO_OCCURS*0..1]-(n:Identifier)
		WITH collect(DISTINCT n) AS nodes
		UNWIND nodes AS a
		MATCH (a)-[r:CO_OCCURS]-(b:Identifier)
		WHERE a.id < b.id
		RETURN DISTINCT a.id AS source, b.id AS target, r.weight AS weight
		LIMIT $limit
	`
)
