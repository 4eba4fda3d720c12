// Package grid derives a filterable, searchable, sortable, paginated and
// selectable view over an in-memory collection of records.
//
// Records are opaque to the engine; every read goes through the accessors
// of a Registry built once at startup. A View owns the query state and
// recomputes its DerivedView in a fixed order: search, filters, sort, page.
package grid
