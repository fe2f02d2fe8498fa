package document

// Get resolves a path against root, returning E_PATH_MISSING if any segment
// is absent.
func Get(root *Node, path Path) (*Node, error) {
	cur := root
	for i, seg := range path {
		next, err := step(cur, seg, path[:i+1])
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

func step(cur *Node, seg Segment, soFar Path) (*Node, error) {
	if cur == nil {
		return nil, pathMissing(soFar.String())
	}
	if seg.IsIndex {
		if cur.Kind != Array {
			return nil, typeError(soFar.String(), "array", cur.KindString())
		}
		if seg.Index < 0 || seg.Index >= len(cur.arr) {
			return nil, pathMissing(soFar.String())
		}
		return cur.arr[seg.Index], nil
	}
	if cur.Kind != Object {
		return nil, typeError(soFar.String(), "object", cur.KindString())
	}
	v, ok := cur.Object().Get(seg.Key)
	if !ok {
		return nil, pathMissing(soFar.String())
	}
	return v, nil
}

// Exists reports whether path resolves without error.
func Exists(root *Node, path Path) bool {
	_, err := Get(root, path)
	return err == nil
}

// resolveParent walks all but the last segment of path, optionally creating
// missing object parents along the way, and returns the parent node plus
// the final segment.
func resolveParent(root *Node, path Path, createMissing bool) (*Node, Segment, error) {
	if len(path) == 0 {
		return nil, Segment{}, formatError("empty path")
	}
	cur := root
	for i, seg := range path[:len(path)-1] {
		soFar := path[:i+1]
		next, err := step(cur, seg, soFar)
		if err != nil {
			if !createMissing {
				return nil, Segment{}, err
			}
			de, ok := err.(DocError)
			if !ok || de.Kind != "E_PATH_MISSING" || seg.IsIndex {
				return nil, Segment{}, err
			}
			created := NewObject()
			if err := setChild(cur, seg, created, soFar); err != nil {
				return nil, Segment{}, err
			}
			next = created
		}
		cur = next
	}
	return cur, path[len(path)-1], nil
}

func setChild(parent *Node, seg Segment, value *Node, soFar Path) error {
	if seg.IsIndex {
		if parent.Kind != Array {
			return typeError(soFar.String(), "array", parent.KindString())
		}
		if seg.Index < 0 || seg.Index >= len(parent.arr) {
			return pathMissing(soFar.String())
		}
		parent.arr[seg.Index] = value
		return nil
	}
	if parent.Kind != Object {
		return typeError(soFar.String(), "object", parent.KindString())
	}
	parent.Object().Set(seg.Key, value)
	return nil
}

// Set replaces the value at path. createMissing mirrors [mod]'s
// set(path, missing) form, creating intermediate object parents.
func Set(root *Node, path Path, value *Node, createMissing bool) error {
	parent, last, err := resolveParent(root, path, createMissing)
	if err != nil {
		return err
	}
	if !createMissing {
		if _, err := step(parent, last, path); err != nil {
			return err
		}
	}
	return setChild(parent, last, value, path)
}

// Insert adds a new value at path, failing with E_PATH_EXISTS if one is
// already there.
func Insert(root *Node, path Path, value *Node) error {
	if Exists(root, path) {
		return pathExists(path.String())
	}
	parent, last, err := resolveParent(root, path, true)
	if err != nil {
		return err
	}
	return setChild(parent, last, value, path)
}

// Merge deep-merges an object into the object found at path.
func Merge(root *Node, path Path, value *Node) error {
	if value.Kind != Object {
		return typeError(path.String(), "object", value.KindString())
	}
	target, err := Get(root, path)
	if err != nil {
		return err
	}
	if target.Kind != Object {
		return typeError(path.String(), "object", target.KindString())
	}
	mergeObjects(target, value)
	return nil
}

func mergeObjects(dst, src *Node) {
	for _, k := range src.Object().Keys() {
		sv, _ := src.Object().Get(k)
		if dv, ok := dst.Object().Get(k); ok && dv.Kind == Object && sv.Kind == Object {
			mergeObjects(dv, sv)
			continue
		}
		dst.Object().Set(k, sv.Clone())
	}
}

// Delete removes the value at path.
func Delete(root *Node, path Path) error {
	parent, last, err := resolveParent(root, path, false)
	if err != nil {
		return err
	}
	if last.IsIndex {
		if parent.Kind != Array {
			return typeError(path.String(), "array", parent.KindString())
		}
		if last.Index < 0 || last.Index >= len(parent.arr) {
			return pathMissing(path.String())
		}
		parent.arr = append(parent.arr[:last.Index], parent.arr[last.Index+1:]...)
		return nil
	}
	if parent.Kind != Object {
		return typeError(path.String(), "object", parent.KindString())
	}
	if !parent.Object().Delete(last.Key) {
		return pathMissing(path.String())
	}
	return nil
}

// Append pushes a value onto the array found at path.
func Append(root *Node, path Path, value *Node) error {
	target, err := Get(root, path)
	if err != nil {
		return err
	}
	if target.Kind != Array {
		return typeError(path.String(), "array", target.KindString())
	}
	target.arr = append(target.arr, value)
	return nil
}

// WithSnapshot runs fn against root, restoring root's prior contents if fn
// fails, so a [mod] packet either mutates the Doc or leaves it untouched.
func WithSnapshot(root *Node, fn func() error) error {
	backup := root.Clone()
	if err := fn(); err != nil {
		*root = *backup
		return err
	}
	return nil
}
