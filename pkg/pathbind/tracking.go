package pathbind

import "github.com/pathbind-dev/pathbind/pkg/statepath"

// evalStack is the explicit "current evaluation context" stack. While a
// getter for path G is being evaluated, G sits on top of the stack, and
// every tracked read of another path S records a dynamic dependency
// S => G in the path manager. This replaces language-level property
// interception with plain context passing.
//
// The stack is owned by a single engine and only touched from the
// cooperative task loop, so it carries no lock.
type evalStack struct {
	manager *PathManager
	frames  []*statepath.PathInfo
}

func newEvalStack(manager *PathManager) *evalStack {
	return &evalStack{manager: manager}
}

// push enters a getter evaluation for info.
func (s *evalStack) push(info *statepath.PathInfo) {
	s.frames = append(s.frames, info)
}

// pop leaves the current getter evaluation.
func (s *evalStack) pop() {
	s.frames = s.frames[:len(s.frames)-1]
}

// top returns the getter currently evaluating, or nil.
func (s *evalStack) top() *statepath.PathInfo {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

// recordRead notes that the path being evaluated (if any) read source.
func (s *evalStack) recordRead(source *statepath.PathInfo) {
	target := s.top()
	if target == nil || target == source {
		return
	}
	s.manager.AddDynamicDependency(target.Pattern, source.Pattern)
}
