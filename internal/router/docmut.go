package router

import (
	"context"

	"github.com/tagspeak/tagspeak/internal/document"
	"github.com/tagspeak/tagspeak/internal/lang"
	"github.com/tagspeak/tagspeak/internal/runtime"
	"github.com/tagspeak/tagspeak/internal/value"
)

// evalMod resolves @handle to a Doc, opens a document-writing context
// over its root honoring the mod(overwrite)/mod(debug) flags, evaluates
// the body (whose [set]/[comp]/[merge]/[delete]/[insert]/[append]
// children mutate it), and closes the context. The body runs under
// WithSnapshot so a failing mutation leaves the Doc untouched.
func evalMod(ctx context.Context, rt *runtime.Runtime, pkt *lang.Packet) (value.Value, error) {
	if pkt.Body == nil {
		return value.Unit(), typeErr("mod requires a body block")
	}
	if !pkt.HasArg {
		return value.Unit(), typeErr("mod requires a Doc handle in @arg")
	}
	handle, err := EvalExpr(ctx, rt, pkt.Arg)
	if err != nil {
		return value.Unit(), err
	}
	if handle.Kind != value.KindDoc || handle.Doc == nil {
		return value.Unit(), typeErr("mod requires a Doc handle in @arg")
	}

	overwrite, debug := modFlags(pkt)
	frame := &runtime.DocFrame{Root: handle.Doc.Root, Overwrite: overwrite, Debug: debug}

	var before *document.Node
	if debug {
		before = handle.Doc.Root.Clone()
	}

	err = document.WithSnapshot(handle.Doc.Root, func() error {
		rt.PushDoc(frame)
		defer rt.PopDoc()
		_, err := Eval(ctx, rt, pkt.Body)
		return err
	})
	if err != nil {
		return value.Unit(), err
	}
	if debug {
		rt.Log.Sugar().Debugw("mod snapshot", "before", before.KindString(), "after", handle.Doc.Root.KindString())
	}

	rt.Last = handle
	return rt.Last, nil
}

func modFlags(pkt *lang.Packet) (overwrite, debug bool) {
	for _, f := range pkt.Flags {
		switch f.Key {
		case "overwrite":
			overwrite = true
		case "debug":
			debug = true
		}
	}
	return overwrite, debug
}

// evalSect opens a nested object under name on the current document
// frame, evaluates the body ([key]/[sect] children) against it, and
// restores the outer frame.
func evalSect(ctx context.Context, rt *runtime.Runtime, pkt *lang.Packet) (value.Value, error) {
	if pkt.Body == nil {
		return value.Unit(), typeErr("sect requires a body block")
	}
	name, err := sectName(ctx, rt, pkt)
	if err != nil {
		return value.Unit(), err
	}
	outer := rt.CurrentDoc()
	if outer == nil {
		return value.Unit(), noDocContextErr("sect")
	}
	nested := document.NewObject()
	outer.Root.Object().Set(name, nested)

	rt.PushDoc(&runtime.DocFrame{Root: nested})
	defer rt.PopDoc()
	if _, err := Eval(ctx, rt, pkt.Body); err != nil {
		return value.Unit(), err
	}
	return rt.Last, nil
}

func sectName(ctx context.Context, rt *runtime.Runtime, pkt *lang.Packet) (string, error) {
	if pkt.HasArg {
		if ident, ok := pkt.Arg.(*lang.IdentRef); ok {
			return ident.Name, nil
		}
		v, err := EvalExpr(ctx, rt, pkt.Arg)
		if err != nil {
			return "", err
		}
		return v.String(), nil
	}
	if len(pkt.Flags) > 0 {
		return pkt.Flags[0].Key, nil
	}
	return "", typeErr("sect requires a name")
}

// ValueToNode converts a runtime Value into the document tree shape
// [mod]/[key] write with: scalars map directly, and a Doc value's root is
// cloned in so the written copy does not alias the source handle.
func ValueToNode(v value.Value) (*document.Node, error) {
	switch v.Kind {
	case value.KindNum:
		return document.NewNum(v.Num), nil
	case value.KindStr:
		return document.NewStr(v.Str), nil
	case value.KindBool:
		return document.NewBool(v.Bool), nil
	case value.KindUnit:
		return document.NewNull(), nil
	case value.KindDoc:
		if v.Doc == nil {
			return document.NewNull(), nil
		}
		return v.Doc.Root.Clone(), nil
	default:
		return nil, typeErr("value of kind " + v.Kind.String() + " cannot be written into a document")
	}
}
