// Package graph provides the metadata graph that display models live in:
// terms, triples, pattern queries, and two stores (in-memory and SQLite).
//
// Readers never lock a store directly. They go through ReadSelect, which
// enters the store's read section, runs one query, and releases both the
// result set and the section on every path.
package graph
