// Package memory implements a three-tier store for knowledge fragments
// produced during interactive agent use.
//
// Items live in one of three layers — global, project, session — that share
// one implementation and differ only by retention policy. Each layer holds
// an authoritative in-memory item set with a multi-dimensional secondary
// index (type, tags, category, importance) and writes through to a
// store.Store backend.
//
// Architecture:
//   - model.Item: the record plus a pure, on-demand decay score
//   - Index: id-set buckets per dimension, AND-intersected on search
//   - Layer: items + index + RetentionPolicy for one tier
//   - Coordinator: save/get/search plus the promotion and cleanup sweeps
//
// Retention is score-driven: cleanup evicts items whose decay score fell
// below the layer floor once they outlive both the layer max age and their
// own min_retention_days; promotion copies qualifying items one tier up
// under a new id.
//
// The Coordinator does no internal locking and never schedules itself; the
// host serializes calls and triggers Promote/CleanupAll. There is no
// network surface and no CLI — the surrounding tool server invokes it
// in-process.
package memory
