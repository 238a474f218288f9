package pathbind

import (
	"github.com/pathbind-dev/pathbind/pkg/statepath"
)

// PathResolver is the installed accessor for a multi-segment path that has
// neither an explicit getter nor setter. It resolves through the nearest
// ancestor getter (longest-prefix match) plus the remaining segments, or
// through direct property chaining when no ancestor getter exists.
type PathResolver struct {
	// Info is the path this resolver serves.
	Info *statepath.PathInfo

	// Base is the nearest ancestor path with an explicit getter, nil when
	// resolution chains directly from the root value.
	Base *statepath.PathInfo

	// Rest are the segments remaining after Base.
	Rest []string
}

// PathManager is the per-component-type registry of every known state
// path. It unions the paths referenced by templates with the state type's
// accessor table, classifies them, and maintains the static and dynamic
// dependency maps the updater expands change refs through.
type PathManager struct {
	stateType *StateType
	root      *statepath.PathNode

	alls     map[string]struct{}
	allOrder []string

	lists    map[string]struct{}
	elements map[string]struct{}

	getters map[string]struct{}
	setters map[string]struct{}
	funcs   map[string]struct{}

	// optimizes holds eligible paths; resolvers are computed lazily.
	optimizes map[string]*PathResolver

	staticDeps  map[string][]string
	dynamicDeps map[string][]string
	dynamicKeys map[string]struct{}
}

// NewPathManager builds the registry for one component type from the
// state type's accessor table, the template-referenced paths, and the
// template loop paths.
func NewPathManager(stateType *StateType, templatePaths, listPaths []string) *PathManager {
	m := &PathManager{
		stateType:   stateType,
		root:        statepath.NewRootNode(),
		alls:        make(map[string]struct{}),
		lists:       make(map[string]struct{}),
		elements:    make(map[string]struct{}),
		getters:     make(map[string]struct{}),
		setters:     make(map[string]struct{}),
		funcs:       make(map[string]struct{}),
		optimizes:   make(map[string]*PathResolver),
		staticDeps:  make(map[string][]string),
		dynamicDeps: make(map[string][]string),
		dynamicKeys: make(map[string]struct{}),
	}

	// Accessor-table paths go first so that getter classification is in
	// place before deep template paths pick their resolvers.
	for _, member := range stateType.Members() {
		if member.Getter != nil {
			m.getters[member.Name] = struct{}{}
		}
		if member.Setter != nil {
			m.setters[member.Name] = struct{}{}
		}
		if member.Method != nil {
			m.funcs[member.Name] = struct{}{}
		}
		m.AddPath(member.Name, false)
	}

	for _, path := range templatePaths {
		m.AddPath(path, false)
	}
	for _, path := range listPaths {
		m.AddPath(path, true)
	}

	return m
}

// StateType returns the type this manager was built for.
func (m *PathManager) StateType() *StateType {
	return m.stateType
}

// Root returns the path tree root.
func (m *PathManager) Root() *statepath.PathNode {
	return m.root
}

// Has reports whether path is known (registered directly or as an
// ancestor of a registered path).
func (m *PathManager) Has(path string) bool {
	_, ok := m.alls[path]
	return ok
}

// Alls returns every known path in registration order.
func (m *PathManager) Alls() []string {
	out := make([]string, len(m.allOrder))
	copy(out, m.allOrder)
	return out
}

// IsList reports whether path is classified as a list root.
func (m *PathManager) IsList(path string) bool {
	_, ok := m.lists[path]
	return ok
}

// IsElement reports whether path is a list-element path (wildcard last
// segment).
func (m *PathManager) IsElement(path string) bool {
	_, ok := m.elements[path]
	return ok
}

// HasGetter reports whether the state type declares a getter for path.
func (m *PathManager) HasGetter(path string) bool {
	_, ok := m.getters[path]
	return ok
}

// HasSetter reports whether the state type declares a setter for path.
func (m *PathManager) HasSetter(path string) bool {
	_, ok := m.setters[path]
	return ok
}

// HasFunc reports whether the state type declares a method for path.
func (m *PathManager) HasFunc(path string) bool {
	_, ok := m.funcs[path]
	return ok
}

// Optimizes returns the paths that received an installed accessor.
func (m *PathManager) Optimizes() []string {
	out := make([]string, 0, len(m.optimizes))
	for _, path := range m.allOrder {
		if _, ok := m.optimizes[path]; ok {
			out = append(out, path)
		}
	}
	return out
}

// AddPath registers a path, all of its structural ancestors, its tree
// nodes, its classification, and its static dependency link. Re-adding a
// known path is a no-op (isList still upgrades its classification).
func (m *PathManager) AddPath(path string, isList bool) {
	if path == "" {
		return
	}
	info := statepath.Get(path)

	if _, known := m.alls[path]; !known {
		for _, cumulative := range info.CumulativePaths {
			if _, ok := m.alls[cumulative]; ok {
				continue
			}
			m.registerPath(statepath.Get(cumulative))
		}

		// One walk creates every missing tree node along the pattern.
		node := m.root
		for _, seg := range info.Segments {
			node = node.AppendChild(seg)
		}
		statepath.InvalidateLookup(m.root)
	}

	if isList {
		m.markList(info)
	}
}

// registerPath records a single (already-parsed, not yet known) path.
func (m *PathManager) registerPath(info *statepath.PathInfo) {
	path := info.Pattern
	m.alls[path] = struct{}{}
	m.allOrder = append(m.allOrder, path)

	if info.ParentPath != "" {
		m.staticDeps[info.ParentPath] = append(m.staticDeps[info.ParentPath], path)
	}

	// A wildcard last segment retroactively classifies the parent as a
	// list and this path as its element path.
	if info.LastSegment == statepath.Wildcard && info.ParentPath != "" {
		m.elements[path] = struct{}{}
		m.lists[info.ParentPath] = struct{}{}
	}

	if len(info.Segments) > 1 && !m.HasGetter(path) && !m.HasSetter(path) {
		m.optimizes[path] = nil
	}
}

// markList classifies path as a list root and registers its synthetic
// element path.
func (m *PathManager) markList(info *statepath.PathInfo) {
	if _, ok := m.lists[info.Pattern]; ok {
		return
	}
	m.lists[info.Pattern] = struct{}{}
	m.AddPath(info.Pattern+"."+statepath.Wildcard, false)
}

// AddDynamicDependency records that a change of source also affects
// target, as discovered while target's getter evaluated. Idempotent per
// (source, target) pair; ensures source is a known path first.
func (m *PathManager) AddDynamicDependency(target, source string) {
	key := source + "=>" + target
	if _, ok := m.dynamicKeys[key]; ok {
		return
	}
	m.dynamicKeys[key] = struct{}{}

	if !m.Has(source) {
		m.AddPath(source, false)
	}
	m.dynamicDeps[source] = append(m.dynamicDeps[source], target)
}

// StaticDependencies returns the statically dependent paths of source in
// registration order.
func (m *PathManager) StaticDependencies(source string) []string {
	return m.staticDeps[source]
}

// DynamicDependencies returns the dynamically dependent paths of source
// in registration order.
func (m *PathManager) DynamicDependencies(source string) []string {
	return m.dynamicDeps[source]
}

// Resolver returns the installed accessor for path, computing it on first
// use. The second result is false for paths that never got one (single
// segment, or explicit getter/setter).
func (m *PathManager) Resolver(path string) (*PathResolver, bool) {
	resolver, eligible := m.optimizes[path]
	if !eligible {
		return nil, false
	}
	if resolver != nil {
		return resolver, true
	}

	info := statepath.Get(path)
	resolver = &PathResolver{Info: info, Rest: info.Segments}

	// Longest-prefix match against the declared getters, excluding the
	// path itself.
	for i := len(info.CumulativePaths) - 2; i >= 0; i-- {
		prefix := info.CumulativePaths[i]
		if m.HasGetter(prefix) {
			resolver.Base = statepath.Get(prefix)
			resolver.Rest = info.Segments[len(resolver.Base.Segments):]
			break
		}
	}

	m.optimizes[path] = resolver
	return resolver, true
}
