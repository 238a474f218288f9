package statepath

import "sync"

// lookupCache memoizes node resolution per (root, PathInfo identity) pair.
// "Not found" results are cached too, as a stored nil.
var (
	lookupMu    sync.RWMutex
	lookupCache = make(map[*PathNode]map[*PathInfo]*PathNode)
)

// FindByPath resolves path to a node under root, caching the result
// (including misses) keyed by the root and the memoized PathInfo.
func FindByPath(root *PathNode, path string) *PathNode {
	info := Get(path)

	lookupMu.RLock()
	byInfo, ok := lookupCache[root]
	if ok {
		if node, hit := byInfo[info]; hit {
			lookupMu.RUnlock()
			return node
		}
	}
	lookupMu.RUnlock()

	node := root.Find(info.Segments, 0)

	lookupMu.Lock()
	byInfo, ok = lookupCache[root]
	if !ok {
		byInfo = make(map[*PathInfo]*PathNode)
		lookupCache[root] = byInfo
	}
	byInfo[info] = node
	lookupMu.Unlock()

	return node
}

// InvalidateLookup drops all cached resolutions for root. Called when a new
// path is registered under the root, since cached misses may now resolve.
func InvalidateLookup(root *PathNode) {
	lookupMu.Lock()
	delete(lookupCache, root)
	lookupMu.Unlock()
}
