package packets

import (
	"context"

	"github.com/tagspeak/tagspeak/internal/document"
	"github.com/tagspeak/tagspeak/internal/lang"
	"github.com/tagspeak/tagspeak/internal/router"
	"github.com/tagspeak/tagspeak/internal/runtime"
	"github.com/tagspeak/tagspeak/internal/value"
)

func init() {
	router.Register("set", setHandler)
	router.Register("comp", setHandler)
	router.Register("insert", insertHandler)
	router.Register("ins", insertHandler)
	router.Register("append", appendHandler)
	router.Register("push", appendHandler)
	router.Register("delete", deleteHandler)
	router.Register("del", deleteHandler)
	router.Register("remove", deleteHandler)
	router.Register("merge", mergeHandler)
	router.Register("key", keyHandler)
}

// docPath reads the path text carried in a document-mutation packet's flag
// list, shared with [get]/[exists].
func docPath(pkt *lang.Packet) (document.Path, error) {
	if !pkt.HasFlags || len(pkt.Flags) == 0 {
		return nil, typeErr("requires a path in (...)")
	}
	return document.ParsePath(pkt.Flags[0].Key)
}

// createMissing reports whether a set should create missing object
// parents: either the packet itself carries a trailing "missing" flag, or
// the enclosing [mod(overwrite)] frame promotes every plain set.
func createMissing(rt *runtime.Runtime, pkt *lang.Packet) bool {
	if len(pkt.Flags) > 1 && pkt.Flags[1].Key == "missing" {
		return true
	}
	if frame := rt.CurrentDoc(); frame != nil {
		return frame.Overwrite
	}
	return false
}

func docValue(ctx context.Context, rt *runtime.Runtime, pkt *lang.Packet) (*document.Node, error) {
	if !pkt.HasArg {
		return nil, typeErr("requires a value in @arg")
	}
	v, err := router.EvalExpr(ctx, rt, pkt.Arg)
	if err != nil {
		return nil, err
	}
	return router.ValueToNode(v)
}

func setHandler(ctx context.Context, rt *runtime.Runtime, pkt *lang.Packet) (value.Value, bool, error) {
	frame := rt.CurrentDoc()
	if frame == nil {
		return value.Unit(), false, typeErr(pkt.Op + " requires an enclosing [mod] body")
	}
	path, err := docPath(pkt)
	if err != nil {
		return value.Unit(), false, err
	}
	node, err := docValue(ctx, rt, pkt)
	if err != nil {
		return value.Unit(), false, err
	}
	if err := document.Set(frame.Root, path, node, createMissing(rt, pkt)); err != nil {
		return value.Unit(), false, err
	}
	return rt.Last, true, nil
}

func insertHandler(ctx context.Context, rt *runtime.Runtime, pkt *lang.Packet) (value.Value, bool, error) {
	frame := rt.CurrentDoc()
	if frame == nil {
		return value.Unit(), false, typeErr(pkt.Op + " requires an enclosing [mod] body")
	}
	path, err := docPath(pkt)
	if err != nil {
		return value.Unit(), false, err
	}
	node, err := docValue(ctx, rt, pkt)
	if err != nil {
		return value.Unit(), false, err
	}
	if err := document.Insert(frame.Root, path, node); err != nil {
		return value.Unit(), false, err
	}
	return rt.Last, true, nil
}

func appendHandler(ctx context.Context, rt *runtime.Runtime, pkt *lang.Packet) (value.Value, bool, error) {
	frame := rt.CurrentDoc()
	if frame == nil {
		return value.Unit(), false, typeErr(pkt.Op + " requires an enclosing [mod] body")
	}
	path, err := docPath(pkt)
	if err != nil {
		return value.Unit(), false, err
	}
	node, err := docValue(ctx, rt, pkt)
	if err != nil {
		return value.Unit(), false, err
	}
	if err := document.Append(frame.Root, path, node); err != nil {
		return value.Unit(), false, err
	}
	return rt.Last, true, nil
}

func deleteHandler(ctx context.Context, rt *runtime.Runtime, pkt *lang.Packet) (value.Value, bool, error) {
	frame := rt.CurrentDoc()
	if frame == nil {
		return value.Unit(), false, typeErr(pkt.Op + " requires an enclosing [mod] body")
	}
	path, err := docPath(pkt)
	if err != nil {
		return value.Unit(), false, err
	}
	if err := document.Delete(frame.Root, path); err != nil {
		return value.Unit(), false, err
	}
	return rt.Last, true, nil
}

// mergeHandler deep-merges the object held by a Doc handle in @arg into the
// object found at (path); a literal inline object in the body is not part
// of the grounded grammar, so merge always takes its source from a handle.
func mergeHandler(ctx context.Context, rt *runtime.Runtime, pkt *lang.Packet) (value.Value, bool, error) {
	frame := rt.CurrentDoc()
	if frame == nil {
		return value.Unit(), false, typeErr("merge requires an enclosing [mod] body")
	}
	path, err := docPath(pkt)
	if err != nil {
		return value.Unit(), false, err
	}
	if !pkt.HasArg {
		return value.Unit(), false, typeErr("merge requires a Doc handle in @arg")
	}
	handle, err := router.EvalExpr(ctx, rt, pkt.Arg)
	if err != nil {
		return value.Unit(), false, err
	}
	if handle.Kind != value.KindDoc || handle.Doc == nil {
		return value.Unit(), false, typeErr("merge requires a Doc handle in @arg")
	}
	if err := document.Merge(frame.Root, path, handle.Doc.Root); err != nil {
		return value.Unit(), false, err
	}
	return rt.Last, true, nil
}

// keyHandler sets a named field directly on the current document frame's
// root object; used inside [mod]/[sect]/[log(fmt)] bodies.
func keyHandler(ctx context.Context, rt *runtime.Runtime, pkt *lang.Packet) (value.Value, bool, error) {
	frame := rt.CurrentDoc()
	if frame == nil {
		return value.Unit(), false, typeErr("key requires an enclosing [mod], [sect], or [log(fmt)] body")
	}
	if !pkt.HasFlags || len(pkt.Flags) == 0 {
		return value.Unit(), false, typeErr("key requires a name in (...)")
	}
	name := pkt.Flags[0].Key
	node, err := docValue(ctx, rt, pkt)
	if err != nil {
		return value.Unit(), false, err
	}
	frame.Root.Object().Set(name, node)
	return rt.Last, true, nil
}
