package pathbind

// GetterFunc computes a derived member value. Reads performed through rs
// while the getter runs are recorded as dynamic dependencies of the
// getter's own path.
type GetterFunc func(rs *ReadonlyState, ref *StatePropertyRef) any

// SetterFunc writes a member value.
type SetterFunc func(ws *WritableState, ref *StatePropertyRef, value any) error

// MethodFunc is a plain callable state member.
type MethodFunc func(ws *WritableState, args ...any) (any, error)

// UpdateSummary is handed to the updated lifecycle hook after a cycle:
// the deduplicated changed paths in first-write order and, for wildcarded
// paths, the affected index vectors grouped by path.
type UpdateSummary struct {
	Paths         []string
	IndexesByPath map[string][][]int
}

// UpdatedHook is the state type's updated lifecycle callback.
type UpdatedHook func(ws *WritableState, summary UpdateSummary)

// Member is one capability row of a state type's registration table.
type Member struct {
	Name   string
	Getter GetterFunc
	Setter SetterFunc
	Method MethodFunc
}

// Lifecycle method names. Members with these names are flagged on the
// type instead of being registered as state paths.
const (
	LifecycleConnected    = "OnConnected"
	LifecycleDisconnected = "OnDisconnected"
	LifecycleUpdated      = "OnUpdated"
)

// reservedWords are member names the binding engine claims for itself;
// table rows with these names are skipped during registration.
var reservedWords = map[string]struct{}{
	"Get":    {},
	"Set":    {},
	"Ref":    {},
	"State":  {},
	"Type":   {},
	"Update": {},
}

// StateType is the explicit, statically declared registration table for a
// component state type: path name to getter/setter/method capability,
// built once at type-definition time.
type StateType struct {
	name    string
	members map[string]Member
	order   []string

	hasConnected    bool
	hasDisconnected bool

	connected    func(ws *WritableState)
	disconnected func(ws *WritableState)
	updated      UpdatedHook
}

// NewStateType creates an empty registration table.
func NewStateType(name string) *StateType {
	return &StateType{
		name:    name,
		members: make(map[string]Member),
	}
}

// Name returns the state type's name.
func (t *StateType) Name() string {
	return t.name
}

// Getter registers a derived member at the given path pattern.
func (t *StateType) Getter(path string, fn GetterFunc) *StateType {
	if t.skip(path) {
		return t
	}
	m := t.row(path)
	m.Getter = fn
	t.members[path] = m
	return t
}

// Setter registers a writable member at the given path pattern.
func (t *StateType) Setter(path string, fn SetterFunc) *StateType {
	if t.skip(path) {
		return t
	}
	m := t.row(path)
	m.Setter = fn
	t.members[path] = m
	return t
}

// Method registers a plain callable member. The three lifecycle names
// route to their hooks rather than registering as paths; the updated
// adapter receives the UpdateSummary as its single argument.
func (t *StateType) Method(name string, fn MethodFunc) *StateType {
	switch name {
	case LifecycleConnected:
		t.hasConnected = true
		if fn != nil {
			t.connected = func(ws *WritableState) { fn(ws) }
		}
		return t
	case LifecycleDisconnected:
		t.hasDisconnected = true
		if fn != nil {
			t.disconnected = func(ws *WritableState) { fn(ws) }
		}
		return t
	case LifecycleUpdated:
		if fn != nil {
			t.updated = func(ws *WritableState, summary UpdateSummary) {
				fn(ws, summary)
			}
		}
		return t
	}
	if t.skip(name) {
		return t
	}
	m := t.row(name)
	m.Method = fn
	t.members[name] = m
	return t
}

// OnConnected registers the connected lifecycle hook.
func (t *StateType) OnConnected(fn func(ws *WritableState)) *StateType {
	t.hasConnected = true
	t.connected = fn
	return t
}

// OnDisconnected registers the disconnected lifecycle hook.
func (t *StateType) OnDisconnected(fn func(ws *WritableState)) *StateType {
	t.hasDisconnected = true
	t.disconnected = fn
	return t
}

// OnUpdated registers the updated lifecycle hook, invoked after an update
// cycle with the deduplicated set of changed paths.
func (t *StateType) OnUpdated(fn UpdatedHook) *StateType {
	t.updated = fn
	return t
}

// HasUpdated reports whether the type declares the updated hook.
func (t *StateType) HasUpdated() bool {
	return t.updated != nil
}

// Member returns the table row for a path, if registered.
func (t *StateType) Member(path string) (Member, bool) {
	m, ok := t.members[path]
	return m, ok
}

// Members returns all registered rows in registration order.
func (t *StateType) Members() []Member {
	rows := make([]Member, 0, len(t.order))
	for _, name := range t.order {
		rows = append(rows, t.members[name])
	}
	return rows
}

// row returns the existing row for name, creating and ordering it if new.
func (t *StateType) row(name string) Member {
	m, ok := t.members[name]
	if !ok {
		m = Member{Name: name}
		t.order = append(t.order, name)
	}
	return m
}

func (t *StateType) skip(name string) bool {
	_, reserved := reservedWords[name]
	return reserved
}
