package graph

import (
	"context"
	"sort"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/md-ibu786/AURA-PROTO-sub001/internal/data/storeerr"
	"github.com/md-ibu786/AURA-PROTO-sub001/internal/platform/logger"
	"github.com/md-ibu786/AURA-PROTO-sub001/internal/platform/neo4jdb"
)

// Node labels and relationship types of a note's knowledge graph.
//
//	(:Document {id})-[:HAS_CHUNK]->(:Chunk)
//	(:Document)-[:HAS_PARENT_CHUNK]->(:ParentChunk)-[:HAS_CHILD]->(:Chunk)
//	(:Document|Chunk|ParentChunk)-[:MENTIONS|CONTAINS_ENTITY]->(:Entity:<Topic|Concept|Methodology|Finding>)
const (
	LabelDocument    = "Document"
	LabelChunk       = "Chunk"
	LabelParentChunk = "ParentChunk"
	LabelEntity      = "Entity"
)

var EntityTypeLabels = []string{"Topic", "Concept", "Methodology", "Finding"}

// DocumentDeletion describes what DeleteDocumentSubgraph removed.
type DocumentDeletion struct {
	// Found is false when the note had no Document node; nothing was deleted.
	Found         bool
	ChunksDeleted int64
	// EntityIDs are the distinct entities referenced by the deleted Document
	// and chunks. They are orphan candidates, not yet deleted.
	EntityIDs []string
}

type NoteKGStore struct {
	client *neo4jdb.Client
	log    *logger.Logger
}

func NewNoteKGStore(client *neo4jdb.Client, log *logger.Logger) *NoteKGStore {
	return &NoteKGStore{client: client, log: log.With("store", "NoteKGStore")}
}

func (s *NoteKGStore) ready() error {
	if s == nil || s.client == nil || s.client.Driver == nil {
		return storeerr.ErrUnavailable
	}
	return nil
}

// EnsureSchema creates the uniqueness constraints the delete path relies on
// for indexed lookups. Failures are logged and ignored.
func (s *NoteKGStore) EnsureSchema(ctx context.Context) {
	if s.ready() != nil {
		return
	}
	session := s.client.WriteSession(ctx)
	defer session.Close(ctx)

	stmts := []string{
		`CREATE CONSTRAINT kg_document_id_unique IF NOT EXISTS FOR (d:Document) REQUIRE d.id IS UNIQUE`,
		`CREATE CONSTRAINT kg_entity_id_unique IF NOT EXISTS FOR (e:Entity) REQUIRE e.id IS UNIQUE`,
		`CREATE INDEX kg_chunk_id IF NOT EXISTS FOR (c:Chunk) ON (c.id)`,
	}
	for _, q := range stmts {
		if res, err := session.Run(ctx, q, nil); err != nil {
			s.log.Warn("neo4j schema init failed (continuing)", "error", err)
		} else {
			_, _ = res.Consume(ctx)
		}
	}
}

const collectDocumentEntitiesCypher = `
MATCH (d:Document {id: $document_id})
OPTIONAL MATCH (d)-[:HAS_CHUNK|HAS_PARENT_CHUNK|HAS_CHILD*1..2]->(c)
WHERE c:Chunk OR c:ParentChunk
WITH d, collect(DISTINCT c) AS chunks
UNWIND ([d] + chunks) AS owner
OPTIONAL MATCH (owner)-[:MENTIONS|CONTAINS_ENTITY]->(e:Entity)
RETURN size(chunks) AS chunk_count, collect(DISTINCT e.id) AS entity_ids
`

const deleteDocumentSubgraphCypher = `
MATCH (d:Document {id: $document_id})
OPTIONAL MATCH (d)-[:HAS_CHUNK|HAS_PARENT_CHUNK|HAS_CHILD*1..2]->(c)
WHERE c:Chunk OR c:ParentChunk
WITH d, collect(DISTINCT c) AS chunks
FOREACH (chunk IN chunks | DETACH DELETE chunk)
DETACH DELETE d
RETURN size(chunks) AS chunks_deleted
`

// DeleteDocumentSubgraph deletes the note's Document node and every chunk it
// owns in a single write transaction, returning the entities those nodes
// referenced. It does not retry.
func (s *NoteKGStore) DeleteDocumentSubgraph(ctx context.Context, noteID string) (DocumentDeletion, error) {
	const op = "graph.delete_document_subgraph"
	if err := s.ready(); err != nil {
		return DocumentDeletion{}, storeerr.Wrap(op, err)
	}
	noteID = strings.TrimSpace(noteID)
	if noteID == "" {
		return DocumentDeletion{}, storeerr.Wrap(op, storeerr.ErrValidation)
	}

	session := s.client.WriteSession(ctx)
	defer session.Close(ctx)

	// Explicit transaction: a managed one would be re-run by the driver on
	// transient errors, and retry policy belongs to the caller.
	tx, err := session.BeginTransaction(ctx)
	if err != nil {
		return DocumentDeletion{}, storeerr.Wrap(op, err)
	}
	defer tx.Close(ctx)

	del, err := deleteDocumentSubgraphTx(ctx, tx, noteID)
	if err != nil {
		_ = tx.Rollback(ctx)
		return DocumentDeletion{}, storeerr.Wrap(op, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return DocumentDeletion{}, storeerr.Wrap(op, err)
	}
	return del, nil
}

func deleteDocumentSubgraphTx(ctx context.Context, tx neo4j.ExplicitTransaction, noteID string) (DocumentDeletion, error) {
	params := map[string]any{"document_id": noteID}

	res, err := tx.Run(ctx, collectDocumentEntitiesCypher, params)
	if err != nil {
		return DocumentDeletion{}, err
	}
	records, err := res.Collect(ctx)
	if err != nil {
		return DocumentDeletion{}, err
	}
	if len(records) == 0 {
		return DocumentDeletion{Found: false}, nil
	}
	entityIDs := stringList(records[0], "entity_ids")

	res, err = tx.Run(ctx, deleteDocumentSubgraphCypher, params)
	if err != nil {
		return DocumentDeletion{}, err
	}
	rec, err := res.Single(ctx)
	if err != nil {
		return DocumentDeletion{}, err
	}
	return DocumentDeletion{
		Found:         true,
		ChunksDeleted: int64Value(rec, "chunks_deleted"),
		EntityIDs:     entityIDs,
	}, nil
}

const countLiveReferencesCypher = `
MATCH (e:Entity {id: $entity_id})
OPTIONAL MATCH (owner)-[:MENTIONS|CONTAINS_ENTITY]->(e)
WHERE owner:Document OR owner:Chunk OR owner:ParentChunk
RETURN count(DISTINCT owner) AS refs
`

// CountLiveReferences returns how many Document/Chunk/ParentChunk nodes still
// reference the entity. A missing entity has zero references.
func (s *NoteKGStore) CountLiveReferences(ctx context.Context, entityID string) (int64, error) {
	const op = "graph.count_live_references"
	if err := s.ready(); err != nil {
		return 0, storeerr.Wrap(op, err)
	}

	session := s.client.ReadSession(ctx)
	defer session.Close(ctx)

	tx, err := session.BeginTransaction(ctx)
	if err != nil {
		return 0, storeerr.Wrap(op, err)
	}
	defer tx.Close(ctx)

	res, err := tx.Run(ctx, countLiveReferencesCypher, map[string]any{"entity_id": entityID})
	if err != nil {
		_ = tx.Rollback(ctx)
		return 0, storeerr.Wrap(op, err)
	}
	records, err := res.Collect(ctx)
	if err != nil {
		_ = tx.Rollback(ctx)
		return 0, storeerr.Wrap(op, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, storeerr.Wrap(op, err)
	}
	if len(records) == 0 {
		return 0, nil
	}
	return int64Value(records[0], "refs"), nil
}

const deleteEntitiesCypher = `
UNWIND $entity_ids AS entity_id
MATCH (e:Entity {id: entity_id})
WHERE NOT (e)<-[:MENTIONS|CONTAINS_ENTITY]-(:Document|Chunk|ParentChunk)
DETACH DELETE e
RETURN count(*) AS deleted
`

// DeleteEntities removes the given entities and returns how many it removed.
// IDs already removed (for example by a concurrent batch) are ignored, and so
// are entities that gained a Document/Chunk/ParentChunk reference since they
// were counted.
func (s *NoteKGStore) DeleteEntities(ctx context.Context, entityIDs []string) (int64, error) {
	const op = "graph.delete_entities"
	if len(entityIDs) == 0 {
		return 0, nil
	}
	if err := s.ready(); err != nil {
		return 0, storeerr.Wrap(op, err)
	}

	ids := make([]string, 0, len(entityIDs))
	for _, id := range entityIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}
	sort.Strings(ids)

	session := s.client.WriteSession(ctx)
	defer session.Close(ctx)

	tx, err := session.BeginTransaction(ctx)
	if err != nil {
		return 0, storeerr.Wrap(op, err)
	}
	defer tx.Close(ctx)

	res, err := tx.Run(ctx, deleteEntitiesCypher, map[string]any{"entity_ids": ids})
	if err != nil {
		_ = tx.Rollback(ctx)
		return 0, storeerr.Wrap(op, err)
	}
	records, err := res.Collect(ctx)
	if err != nil {
		_ = tx.Rollback(ctx)
		return 0, storeerr.Wrap(op, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, storeerr.Wrap(op, err)
	}
	if len(records) == 0 {
		return 0, nil
	}
	return int64Value(records[0], "deleted"), nil
}

func stringList(rec *neo4j.Record, key string) []string {
	raw, ok := rec.Get(key)
	if !ok || raw == nil {
		return nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		s, ok := it.(string)
		if !ok || strings.TrimSpace(s) == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

func int64Value(rec *neo4j.Record, key string) int64 {
	raw, ok := rec.Get(key)
	if !ok || raw == nil {
		return 0
	}
	switch v := raw.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}
