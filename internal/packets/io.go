package packets

import (
	"context"
	"fmt"
	"os"

	"github.com/tagspeak/tagspeak/internal/document"
	"github.com/tagspeak/tagspeak/internal/lang"
	"github.com/tagspeak/tagspeak/internal/router"
	"github.com/tagspeak/tagspeak/internal/runtime"
	"github.com/tagspeak/tagspeak/internal/value"
)

func init() {
	router.Register("load", loadHandler)
	router.Register("save", saveHandler)
	router.Register("log", logScalarHandler)
	router.Register("parse", parseHandler)
	router.Register("get", getHandler)
	router.Register("exists", existsHandler)
	router.Register("cd", cdHandler)
}

func printLine(s string) { fmt.Println(s) }

// loadHandler reads @path through the box resolver, dispatches on the
// file's extension, and returns a Doc whose origin is the resolved path.
func loadHandler(ctx context.Context, rt *runtime.Runtime, pkt *lang.Packet) (value.Value, bool, error) {
	if !pkt.HasArg {
		return value.Unit(), false, typeErr("load requires a path in @arg")
	}
	pathVal, err := router.EvalExpr(ctx, rt, pkt.Arg)
	if err != nil {
		return value.Unit(), false, err
	}
	resolved, err := rt.Box.Resolve(pathVal.String())
	if err != nil {
		return value.Unit(), false, err
	}
	format, err := document.FormatFromExtension(resolved)
	if err != nil {
		return value.Unit(), false, err
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return value.Unit(), false, typeErr(err.Error())
	}
	doc, err := document.Decode(data, format)
	if err != nil {
		return value.Unit(), false, err
	}
	doc.Origin = resolved
	return value.Doc(doc), false, nil
}

// saveHandler writes a Doc back to its origin, or to an explicit path
// given in @arg alongside the current last value holding the Doc.
func saveHandler(ctx context.Context, rt *runtime.Runtime, pkt *lang.Packet) (value.Value, bool, error) {
	if !pkt.HasArg {
		return value.Unit(), false, typeErr("save requires a handle or path in @arg")
	}
	argVal, err := router.EvalExpr(ctx, rt, pkt.Arg)
	if err != nil {
		return value.Unit(), false, err
	}

	var doc *document.Document
	var targetPath string
	switch argVal.Kind {
	case value.KindDoc:
		doc = argVal.Doc
		targetPath = doc.Origin
	case value.KindStr:
		if rt.Last.Kind != value.KindDoc || rt.Last.Doc == nil {
			return value.Unit(), false, typeErr("save@path requires the current last value to be a Doc")
		}
		doc = rt.Last.Doc
		targetPath = argVal.Str
	default:
		return value.Unit(), false, typeErr("save requires a Doc handle or a path string in @arg")
	}
	if doc == nil {
		return value.Unit(), false, typeErr("save requires a Doc handle")
	}
	if targetPath == "" {
		return value.Unit(), false, typeErr("Doc has no origin path to save to")
	}

	resolved, err := rt.Box.Resolve(targetPath)
	if err != nil {
		return value.Unit(), false, err
	}
	data, err := document.Encode(doc)
	if err != nil {
		return value.Unit(), false, err
	}
	if err := os.WriteFile(resolved, data, 0o644); err != nil {
		return value.Unit(), false, typeErr(err.Error())
	}
	doc.Origin = resolved
	return value.Doc(doc), true, nil
}

// logScalarHandler is the bodyless [log@path] form: write the current last
// value to path as a bare JSON scalar.
func logScalarHandler(ctx context.Context, rt *runtime.Runtime, pkt *lang.Packet) (value.Value, bool, error) {
	if !pkt.HasArg {
		return value.Unit(), false, typeErr("log requires a path in @arg")
	}
	pathVal, err := router.EvalExpr(ctx, rt, pkt.Arg)
	if err != nil {
		return value.Unit(), false, err
	}
	resolved, err := rt.Box.Resolve(pathVal.String())
	if err != nil {
		return value.Unit(), false, err
	}
	node, err := router.ValueToNode(rt.Last)
	if err != nil {
		return value.Unit(), false, err
	}
	data, err := document.Encode(&document.Document{Root: node, Format: document.FormatJSON})
	if err != nil {
		return value.Unit(), false, err
	}
	if err := os.WriteFile(resolved, data, 0o644); err != nil {
		return value.Unit(), false, typeErr(err.Error())
	}
	return rt.Last, true, nil
}

// parseHandler decodes a string (a literal or a variable) in the format
// named by the (fmt) flag into a Doc with no origin.
func parseHandler(ctx context.Context, rt *runtime.Runtime, pkt *lang.Packet) (value.Value, bool, error) {
	if !pkt.HasFlags || len(pkt.Flags) == 0 {
		return value.Unit(), false, typeErr("parse requires a format flag, e.g. parse(json)")
	}
	format, err := document.FormatFromName(pkt.Flags[0].Key)
	if err != nil {
		return value.Unit(), false, err
	}
	if !pkt.HasArg {
		return value.Unit(), false, typeErr("parse requires a string in @arg")
	}
	srcVal, err := router.EvalExpr(ctx, rt, pkt.Arg)
	if err != nil {
		return value.Unit(), false, err
	}
	doc, err := document.Decode([]byte(srcVal.String()), format)
	if err != nil {
		return value.Unit(), false, err
	}
	return value.Doc(doc), false, nil
}

// getHandler resolves (path) against a Doc handle in @arg, defaulting to
// the current last value when no handle is given.
func getHandler(ctx context.Context, rt *runtime.Runtime, pkt *lang.Packet) (value.Value, bool, error) {
	path, err := docPath(pkt)
	if err != nil {
		return value.Unit(), false, err
	}
	doc, err := handleArgOrLast(ctx, rt, pkt)
	if err != nil {
		return value.Unit(), false, err
	}
	node, err := document.Get(doc.Root, path)
	if err != nil {
		return value.Unit(), false, err
	}
	return router.NodeToValue(node), false, nil
}

func existsHandler(ctx context.Context, rt *runtime.Runtime, pkt *lang.Packet) (value.Value, bool, error) {
	path, err := docPath(pkt)
	if err != nil {
		return value.Unit(), false, err
	}
	doc, err := handleArgOrLast(ctx, rt, pkt)
	if err != nil {
		return value.Unit(), false, err
	}
	return value.Bool(document.Exists(doc.Root, path)), false, nil
}

func handleArgOrLast(ctx context.Context, rt *runtime.Runtime, pkt *lang.Packet) (*document.Document, error) {
	v := rt.Last
	if pkt.HasArg {
		av, err := router.EvalExpr(ctx, rt, pkt.Arg)
		if err != nil {
			return nil, err
		}
		v = av
	}
	if v.Kind != value.KindDoc || v.Doc == nil {
		return nil, typeErr("requires a Doc handle")
	}
	return v.Doc, nil
}

// cdHandler changes the box resolver's working directory.
func cdHandler(ctx context.Context, rt *runtime.Runtime, pkt *lang.Packet) (value.Value, bool, error) {
	if !pkt.HasArg {
		return value.Unit(), false, typeErr("cd requires a path in @arg")
	}
	pathVal, err := router.EvalExpr(ctx, rt, pkt.Arg)
	if err != nil {
		return value.Unit(), false, err
	}
	if err := rt.Box.Cd(pathVal.String()); err != nil {
		return value.Unit(), false, err
	}
	return rt.Last, true, nil
}
