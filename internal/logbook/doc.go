// Package logbook maintains the four append-only logs of the discovery
// workspace: Decisions, Research, Iterations, and Revisions.
//
// Entries are rendered from embedded templates and appended to the end of
// their log document; existing entries are never edited or reordered.
// Every append allocates a fresh ID; semantically identical submissions
// are not deduplicated, idempotence is the caller's job.
//
// The package also provides the read side: parsing a log back into
// structured entries and filtering by ID set, story reference, question
// reference, or keyword. Queries never mutate state.
package logbook
