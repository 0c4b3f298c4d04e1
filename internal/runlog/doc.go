// Package runlog records preprocessing runs and the outputs they produced in
// a SQLite database. Each output is keyed by (kind, key), so rerunning a
// frame replaces its row instead of adding one, and the ledger reflects the
// last write for every label file or image regardless of worker order.
package runlog
