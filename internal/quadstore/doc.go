// Package quadstore persists RDF quads in a document collection.
//
// A Store is created with a docstore.Connector and connects lazily: the first
// operation that needs the collection starts a single connection attempt,
// concurrent operations wait on that same attempt, and a failed attempt is
// remembered and reported to every later caller. There is no retry.
//
// OPERATIONS:
//
//	Size           approximate count
//	Match          pattern query; nil positions are wildcards
//	Add            idempotent bulk insert, returns the number of new quads
//	Delete         exact-match removal, returns the number removed
//	DeleteMatches  pattern removal (resolve, then remove by storage ID)
//	Has            true iff every given quad is stored
//
// Every quad and pattern is checked against the term position rules before
// any storage call; a violation fails the whole call with a validation error.
//
// NOTIFICATIONS:
//
// Observers registered with On (or channels from Subscribe) receive an added
// event per inserted quad, a deleted event per removed quad and an error
// event per storage or connection failure. Events fire after the storage
// acknowledgement. Failed calls still notify for the effects that were
// acknowledged, so counts and events always agree.
package quadstore
