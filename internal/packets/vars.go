package packets

import (
	"context"
	"strings"

	"github.com/tagspeak/tagspeak/internal/lang"
	"github.com/tagspeak/tagspeak/internal/router"
	"github.com/tagspeak/tagspeak/internal/runtime"
	"github.com/tagspeak/tagspeak/internal/value"
)

func init() {
	router.Register("store", storeHandler)
}

// storeHandler writes the current last value into the name given by @arg,
// under the discipline named by the packet's :label (rigid/fluid/context),
// defaulting to fluid when no label is given.
func storeHandler(ctx context.Context, rt *runtime.Runtime, pkt *lang.Packet) (value.Value, bool, error) {
	name, err := literalName(pkt)
	if err != nil {
		return value.Unit(), false, err
	}
	v := rt.Last

	switch pkt.Label {
	case "", "fluid":
		rt.Vars.StoreFluid(name, v)
	case "rigid":
		if err := rt.Vars.StoreRigid(name, v); err != nil {
			return value.Unit(), false, err
		}
	case "context":
		pred, isDefault, err := contextPredicate(pkt)
		if err != nil {
			return value.Unit(), false, err
		}
		rt.Vars.PushContext(name, pred, v, isDefault)
	default:
		return value.Unit(), false, typeErr("unknown store discipline " + pkt.Label)
	}
	return v, false, nil
}

// contextPredicate parses the raw predicate text captured in the flag list
// of a [store:context(predicate)@name] packet; the bare flag "default" and
// the documented literal spelling "default==true" (whitespace ignored)
// both mark the fallback entry instead of supplying a predicate expression.
func contextPredicate(pkt *lang.Packet) (lang.Expr, bool, error) {
	if !pkt.HasFlags || len(pkt.Flags) == 0 {
		return nil, false, typeErr("store:context requires a predicate in (...)")
	}
	raw := pkt.FlagsRaw
	if raw == "default" || strings.Join(strings.Fields(raw), "") == "default==true" {
		return nil, true, nil
	}
	expr, err := lang.ParseExpr("<store:context>", raw)
	if err != nil {
		return nil, false, typeErr("invalid store:context predicate: " + err.Error())
	}
	return expr, false, nil
}

// literalName reads @arg as the literal name text a store/call/funct-family
// packet takes: a bare identifier or a string literal, never a variable
// lookup.
func literalName(pkt *lang.Packet) (string, error) {
	if !pkt.HasArg {
		return "", typeErr("requires a name in @arg")
	}
	switch a := pkt.Arg.(type) {
	case *lang.IdentRef:
		return a.Name, nil
	case *lang.StringLit:
		return a.Value, nil
	default:
		return "", typeErr("name must be a bare identifier or a string literal")
	}
}
