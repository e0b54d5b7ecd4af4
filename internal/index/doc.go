// Package index turns paper records into search-ready documents and keeps
// the built set cached in memory.
//
// The cache is keyed on a cheap staleness check: the number of record files
// and the newest modification time among them (legacy tag sidecars
// included). When both are unchanged the cached documents are reused without
// reading any record. ClearCache drops the cache so the next call rebuilds
// no matter what the directory looks like.
//
// Building never fails as a whole. A record that cannot be read or
// normalized is logged and left out until the next rebuild.
//
// # Thread Safety
//
// Builder is safe for concurrent use. Concurrent cache misses may build in
// parallel; the last one to finish publishes. A build that started before a
// ClearCache call is returned to its caller but never published.
package index
