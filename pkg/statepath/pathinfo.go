package statepath

import (
	"strings"
	"sync"
)

// Wildcard is the segment token matching any list element.
const Wildcard = "*"

// PathInfo is the parsed form of a dotted, wildcarded path pattern.
// It is immutable once computed and cached by pattern string for the
// process lifetime; always obtain instances via Get so that two equal
// patterns share one PathInfo and identity comparison is meaningful.
type PathInfo struct {
	// Pattern is the original path string, e.g. "users.*.name".
	Pattern string

	// Segments are the dot-separated parts of the pattern.
	Segments []string

	// ParentPath is the pattern minus its last segment ("" for a
	// single-segment pattern).
	ParentPath string

	// LastSegment is the final segment of the pattern.
	LastSegment string

	// WildcardCount is the number of wildcard segments in the pattern.
	WildcardCount int

	// CumulativePaths holds every segment-aligned prefix of the pattern,
	// shortest first, ending with the pattern itself.
	CumulativePaths []string

	// LastWildcardPath is the longest prefix ending in a wildcard
	// segment ("" when the pattern has no wildcards).
	LastWildcardPath string

	cumulativeSet map[string]struct{}
}

var (
	pathInfoMu    sync.RWMutex
	pathInfoCache = make(map[string]*PathInfo)
)

// Get returns the memoized PathInfo for pattern, computing it on first use.
func Get(pattern string) *PathInfo {
	pathInfoMu.RLock()
	info, ok := pathInfoCache[pattern]
	pathInfoMu.RUnlock()
	if ok {
		return info
	}

	info = parse(pattern)

	pathInfoMu.Lock()
	// Another goroutine may have raced us; keep the first instance so
	// identity stays stable.
	if existing, ok := pathInfoCache[pattern]; ok {
		info = existing
	} else {
		pathInfoCache[pattern] = info
	}
	pathInfoMu.Unlock()

	return info
}

// parse computes a PathInfo without touching the cache.
func parse(pattern string) *PathInfo {
	info := &PathInfo{Pattern: pattern}
	if pattern == "" {
		info.cumulativeSet = map[string]struct{}{}
		return info
	}

	info.Segments = strings.Split(pattern, ".")
	info.LastSegment = info.Segments[len(info.Segments)-1]

	if idx := strings.LastIndexByte(pattern, '.'); idx >= 0 {
		info.ParentPath = pattern[:idx]
	}

	info.CumulativePaths = make([]string, 0, len(info.Segments))
	info.cumulativeSet = make(map[string]struct{}, len(info.Segments))

	var b strings.Builder
	for _, seg := range info.Segments {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg)
		cumulative := b.String()
		info.CumulativePaths = append(info.CumulativePaths, cumulative)
		info.cumulativeSet[cumulative] = struct{}{}

		if seg == Wildcard {
			info.WildcardCount++
			info.LastWildcardPath = cumulative
		}
	}

	return info
}

// CumulativeInfos returns the memoized PathInfo for each cumulative
// prefix, shortest first, ending with this pattern's own info.
func (p *PathInfo) CumulativeInfos() []*PathInfo {
	infos := make([]*PathInfo, len(p.CumulativePaths))
	for i, path := range p.CumulativePaths {
		infos[i] = Get(path)
	}
	return infos
}

// Parent returns the PathInfo of the parent path, or nil for a
// single-segment or empty pattern.
func (p *PathInfo) Parent() *PathInfo {
	if p.ParentPath == "" {
		return nil
	}
	return Get(p.ParentPath)
}

// HasPrefixPath reports whether path is a segment-aligned prefix of this
// pattern (or the pattern itself).
func (p *PathInfo) HasPrefixPath(path string) bool {
	_, ok := p.cumulativeSet[path]
	return ok
}

// IsWildcarded reports whether the pattern contains at least one wildcard.
func (p *PathInfo) IsWildcarded() bool {
	return p.WildcardCount > 0
}
