package router

import (
	"context"
	"fmt"
	"os"

	"github.com/tagspeak/tagspeak/internal/document"
	"github.com/tagspeak/tagspeak/internal/lang"
	"github.com/tagspeak/tagspeak/internal/runtime"
	"github.com/tagspeak/tagspeak/internal/value"
)

// evalStructuredLog builds a fresh object under a document frame, runs the
// body (whose [key]/[sect] children populate it), and writes the result to
// the path in @arg in the format named by the (fmt) flag.
func evalStructuredLog(ctx context.Context, rt *runtime.Runtime, pkt *lang.Packet) (value.Value, error) {
	if !pkt.HasArg {
		return value.Unit(), typeErr("log requires a path in @arg")
	}
	pathVal, err := EvalExpr(ctx, rt, pkt.Arg)
	if err != nil {
		return value.Unit(), err
	}
	path := pathVal.String()

	format, err := logFormat(pkt, path)
	if err != nil {
		return value.Unit(), err
	}

	root := document.NewObject()
	rt.PushDoc(&runtime.DocFrame{Root: root})
	_, err = Eval(ctx, rt, pkt.Body)
	rt.PopDoc()
	if err != nil {
		return value.Unit(), err
	}

	data, err := document.Encode(&document.Document{Root: root, Format: format})
	if err != nil {
		return value.Unit(), err
	}

	resolved, err := rt.Box.Resolve(path)
	if err != nil {
		return value.Unit(), err
	}
	if err := os.WriteFile(resolved, data, 0o644); err != nil {
		return value.Unit(), typeErr(err.Error())
	}

	rt.Last = value.Doc(&document.Document{Root: root, Format: format, Origin: resolved})
	return rt.Last, nil
}

// logFormat reads the (fmt) flag if present and checks it against the
// destination path's extension; with no flag, format is dispatched by
// extension alone, matching [load]'s convention. A recognized extension
// that disagrees with an explicit (fmt) flag is rejected with E_FORMAT
// rather than silently writing bytes in the flag's format to a path that
// says otherwise.
func logFormat(pkt *lang.Packet, path string) (document.Format, error) {
	extFormat, extErr := document.FormatFromExtension(path)

	if len(pkt.Flags) > 0 {
		flagFormat, err := document.FormatFromName(pkt.Flags[0].Key)
		if err == nil {
			if extErr == nil && flagFormat != extFormat {
				return 0, document.DocError{
					Kind:    "E_FORMAT",
					Message: fmt.Sprintf("(%s) flag does not match %q's extension", pkt.Flags[0].Key, path),
				}
			}
			return flagFormat, nil
		}
	}

	return extFormat, extErr
}
