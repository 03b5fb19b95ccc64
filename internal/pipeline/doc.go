// Package pipeline advances queue items through the registered processing
// stages.
//
// Stages register under a phase (metainfo, then filter) and may name the
// stages they must run after; Order resolves that into a stable execution
// order and rejects references it cannot honour. The Manager starts every
// stage once per run with the raw configuration, then feeds items to a pool
// of workers. Each item passes through the stages strictly in order, stops
// at the first rejection or failure, and is persisted through an optional
// ItemStore.
//
// Add new stages by registering them with a phase and their predecessors;
// this package is the authoritative home for ordering and item lifecycle.
package pipeline
