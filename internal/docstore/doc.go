// Package docstore defines the document-collection contract the quad store is
// built on, and the mapping between RDF terms and stored documents.
//
// A stored quad is a QuadDoc: four TermDoc sub-documents (subject, predicate,
// object, graph) kept verbatim, except that literals carry their implied
// datatype. The four-term tuple is the document's identity.
// It doubles as the exact filter for upserts, find-and-delete and existence
// checks. The optional ID is a storage-assigned handle used only for bulk
// removal by identity.
//
// # Backends
//
// Collection implementations live in subpackages:
//   - sqlitedoc: SQLite, one JSON column per position
//   - mongodoc: MongoDB, one embedded document per position
//
// Every backend must provide:
//   - UpsertMany: atomic insert-if-absent per document
//   - FindOneAndDelete: atomic remove that reports the removed document
//   - Find: conjunction of exact field equalities, optional ID projection
//   - Exists: bounded lookup (at most one document examined)
//   - EstimatedCount: approximate count, no full scan required
//   - CreateIndexes: idempotent index creation, including unique compound indexes
//
// A uniqueness violation hit while upserting means "already present". Backends
// absorb it and leave the document out of the inserted set. Anywhere else it is
// reported as ErrDuplicate.
package docstore
