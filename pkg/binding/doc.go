// Package binding connects state-property refs to live view nodes.
//
// The centerpiece is the loop ("for") binding: it consumes a list diff and
// a pool of previously unmounted view fragments, and mounts, unmounts,
// reorders, or overwrites content with several optimized paths (bulk
// append, bulk clear, in-place reorder, partial overwrite). Content
// objects are pooled indefinitely; the pool only ever grows.
//
// Mounted content is addressed through a generation-checked arena handle
// stored on the list-slot identity itself, so the side relation from
// identity to content never extends the identity's lifetime.
package binding
