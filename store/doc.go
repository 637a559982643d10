// Package store provides a type-keyed object store over a key-value substrate.
//
// Each record type owns exactly one substrate slot, keyed by the type name,
// holding a JSON object that maps record ids to records:
//
//	{"<id1>": {"id": "<id1>", ...fields}, "<id2>": {...}}
//
// The substrate is the single source of truth on every call; the engine keeps
// no copy of record data between calls.
//
// # Lifecycle
//
// A [Store] must be initialized with [Store.Init] before use, and every type
// must be registered with [Store.InitObjectStore] before its records can be
// read or written:
//
//	s := store.New(kv.NewMemory(), store.DefaultConfig())
//	if err := s.Init(ctx); err != nil {
//	    return err
//	}
//	if err := s.InitObjectStore(ctx, "task"); err != nil {
//	    return err
//	}
//	saved, err := s.Save(ctx, "task", store.Record{"title": "a"})
//
// # Concurrency
//
// Save, Delete and InitObjectStore perform a read-modify-write of the type's
// slot under a per-type lock, so concurrent writers in one process do not lose
// updates. Writers in different processes sharing a substrate are not
// coordinated.
//
// # Errors
//
// All engine failures are [*Error] values carrying a stable code:
//
//   - [ErrStorageUnavailable] - substrate unavailable (STORAGE_API_NOT_SUPPORTED)
//   - [ErrNotInitialized] - Init has not succeeded (STORAGE_API_NOT_INITIALIZED)
//   - [ErrStoreNotInitialized] - type not registered (STORE_NOT_INITIALIZED)
//   - [ErrNotFound] - no record with the id (OBJECT_NOT_FOUND)
//
// Substrate I/O and decode failures are returned wrapped.
package store
