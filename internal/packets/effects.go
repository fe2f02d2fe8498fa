package packets

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/tagspeak/tagspeak/internal/document"
	"github.com/tagspeak/tagspeak/internal/lang"
	"github.com/tagspeak/tagspeak/internal/router"
	"github.com/tagspeak/tagspeak/internal/runtime"
	"github.com/tagspeak/tagspeak/internal/value"
)

func init() {
	router.Register("yellow", yellowHandler)
	router.Register("confirm", yellowHandler)
	router.Register("exec", execHandler)
	router.Register("run", runHandler)
	router.Register("tagspeak", runHandler)
	router.Register("http", httpHandler)
	router.Register("red", redHandler)
}

var stdinReader = bufio.NewReader(os.Stdin)

// confirmPrompt asks "Proceed? [y/N/a]" on stdin unless rt is already in an
// all-yellow or noninteractive state, in which case it answers without
// reading: noninteractive always denies, allow-all always proceeds.
func confirmPrompt(rt *runtime.Runtime, msg string) (proceed bool, latchAll bool) {
	if rt.Consent.AllowYellowAll {
		return true, false
	}
	if rt.Consent.Noninteractive {
		return false, false
	}
	if msg != "" {
		fmt.Println(msg)
	}
	fmt.Print("Proceed? [y/N/a] ")
	line, _ := stdinReader.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y":
		return true, false
	case "a":
		return true, true
	default:
		return false, false
	}
}

// yellowHandler (and its [confirm] alias) gates body execution behind a
// single stdin prompt, latching allow_yellow_all for the rest of the
// process when the user answers "a".
func yellowHandler(ctx context.Context, rt *runtime.Runtime, pkt *lang.Packet) (value.Value, bool, error) {
	if pkt.Body == nil {
		return value.Unit(), false, typeErr("yellow requires a body block")
	}
	msg := ""
	if pkt.HasArg {
		v, err := router.EvalExpr(ctx, rt, pkt.Arg)
		if err != nil {
			return value.Unit(), false, err
		}
		msg = v.String()
	}

	proceed, latchAll := confirmPrompt(rt, msg)
	if latchAll {
		rt.Consent.AllowYellowAll = true
	}
	if !proceed {
		return value.Unit(), false, nil
	}

	rt.Consent.YellowDepth++
	defer func() { rt.Consent.YellowDepth-- }()
	if _, err := router.Eval(ctx, rt, pkt.Body); err != nil {
		return value.Unit(), false, err
	}
	return rt.Last, true, nil
}

// execHandler runs a shell command, gated the same way [yellow] is unless
// already inside a yellow scope or admitted by config.
func execHandler(ctx context.Context, rt *runtime.Runtime, pkt *lang.Packet) (value.Value, bool, error) {
	if !pkt.HasArg {
		return value.Unit(), false, typeErr("exec requires a command in @arg")
	}
	cmdVal, err := router.EvalExpr(ctx, rt, pkt.Arg)
	if err != nil {
		return value.Unit(), false, err
	}
	cmdStr := cmdVal.String()

	if !execAdmitted(rt, cmdStr) {
		proceed, latchAll := confirmPrompt(rt, "exec: "+cmdStr)
		if latchAll {
			rt.Consent.AllowYellowAll = true
		}
		if !proceed {
			return value.Unit(), false, nil
		}
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", cmdStr)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	runErr := cmd.Run()
	code := 0
	if runErr != nil {
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			code = exitErr.ExitCode()
		} else {
			return value.Unit(), false, execErr(runErr.Error())
		}
	}

	return execResult(pkt, code, stdout.String(), stderr.String()), false, nil
}

func execAdmitted(rt *runtime.Runtime, cmdStr string) bool {
	if rt.Consent.AllowYellowAll || rt.Consent.YellowDepth > 0 {
		return true
	}
	if rt.Config == nil {
		return false
	}
	if rt.Config.Security.AllowExec {
		return true
	}
	first := strings.Fields(cmdStr)
	if len(first) == 0 {
		return false
	}
	for _, allowed := range rt.Config.Security.ExecAllowlist {
		if allowed == first[0] {
			return true
		}
	}
	return false
}

func execResult(pkt *lang.Packet, code int, stdout, stderr string) value.Value {
	for _, f := range pkt.Flags {
		switch f.Key {
		case "code":
			return value.Num(float64(code))
		case "stderr":
			return value.Str(stderr)
		case "json":
			obj := document.NewObject()
			obj.Object().Set("code", document.NewNum(float64(code)))
			obj.Object().Set("stdout", document.NewStr(stdout))
			obj.Object().Set("stderr", document.NewStr(stderr))
			data, _ := document.Encode(&document.Document{Root: obj, Format: document.FormatJSON})
			return value.Str(string(data))
		}
	}
	return value.Str(strings.TrimRight(stdout, "\n"))
}

// runHandler parses and evaluates another script in the same runtime,
// respecting the run-nesting cap and pointing cwd at the script's
// directory for the duration of the call.
func runHandler(ctx context.Context, rt *runtime.Runtime, pkt *lang.Packet) (value.Value, bool, error) {
	if !pkt.HasArg {
		return value.Unit(), false, typeErr("run requires a script path in @arg")
	}
	pathVal, err := router.EvalExpr(ctx, rt, pkt.Arg)
	if err != nil {
		return value.Unit(), false, err
	}

	if rt.Config != nil && rt.Config.Run.RequireYellow && !rt.Consent.AllowYellowAll && rt.Consent.YellowDepth == 0 {
		proceed, latchAll := confirmPrompt(rt, "run: "+pathVal.String())
		if latchAll {
			rt.Consent.AllowYellowAll = true
		}
		if !proceed {
			return value.Unit(), false, nil
		}
	}

	resolved, err := rt.Box.Resolve(pathVal.String())
	if err != nil {
		return value.Unit(), false, err
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return value.Unit(), false, typeErr(err.Error())
	}
	prog, perr := lang.Parse(resolved, string(data))
	if perr != nil {
		return value.Unit(), false, perr
	}
	if err := rt.EnterRun(); err != nil {
		return value.Unit(), false, err
	}
	defer rt.ExitRun()

	var result value.Value
	err = rt.Box.WithCwd(filepath.Dir(resolved), func() error {
		var evalErr error
		result, evalErr = router.Eval(ctx, rt, prog)
		return evalErr
	})
	if err != nil {
		return value.Unit(), false, err
	}
	return result, false, nil
}

// httpHandler issues an HTTP request whose verb comes from the (verb)
// flag and whose headers/body/json fields are assembled from the body's
// [key] children the same way a structured [log] document is.
func httpHandler(ctx context.Context, rt *runtime.Runtime, pkt *lang.Packet) (value.Value, bool, error) {
	if !pkt.HasArg {
		return value.Unit(), false, typeErr("http requires a url in @arg")
	}
	urlVal, err := router.EvalExpr(ctx, rt, pkt.Arg)
	if err != nil {
		return value.Unit(), false, err
	}
	rawURL := urlVal.String()

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return value.Unit(), false, httpErr(err.Error())
	}
	if parsed.User != nil {
		return value.Unit(), false, boxViolation("http URL must not contain a userinfo component")
	}
	if rt.Config == nil || !rt.Config.Network.Enabled {
		return value.Unit(), false, httpErr("network access is disabled; set network.enabled in .tagspeak.toml")
	}
	if !networkAllowed(rt.Config.Network.Allow, parsed) {
		return value.Unit(), false, httpErr("url does not match any network.allow entry: " + rawURL)
	}

	verb := "GET"
	if len(pkt.Flags) > 0 {
		verb = strings.ToUpper(pkt.Flags[0].Key)
	}

	fields := document.NewObject()
	if pkt.Body != nil {
		rt.PushDoc(&runtime.DocFrame{Root: fields})
		_, err := router.Eval(ctx, rt, pkt.Body)
		rt.PopDoc()
		if err != nil {
			return value.Unit(), false, err
		}
	}

	var bodyReader *bytes.Reader
	if bodyNode, ok := fields.Object().Get("body"); ok {
		bodyReader = bytes.NewReader([]byte(bodyNode.StrValue()))
	} else if jsonNode, ok := fields.Object().Get("json"); ok {
		data, err := document.Encode(&document.Document{Root: jsonNode, Format: document.FormatJSON})
		if err != nil {
			return value.Unit(), false, err
		}
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, verb, rawURL, bodyReader)
	if err != nil {
		return value.Unit(), false, httpErr(err.Error())
	}
	if headersNode, ok := fields.Object().Get("headers"); ok {
		for _, k := range headersNode.Object().Keys() {
			v, _ := headersNode.Object().Get(k)
			req.Header.Set(k, v.StrValue())
		}
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return value.Unit(), false, httpErr(err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return value.Unit(), false, httpStatusErr(resp.StatusCode)
	}

	out := document.NewObject()
	out.Object().Set("status", document.NewNum(float64(resp.StatusCode)))
	bodyBytes, _ := io.ReadAll(resp.Body)
	out.Object().Set("body", document.NewStr(string(bodyBytes)))
	data, err := document.Encode(&document.Document{Root: out, Format: document.FormatJSON})
	if err != nil {
		return value.Unit(), false, err
	}
	return value.Str(string(data)), false, nil
}

// networkAllowed matches host[:port]/path-prefix allow entries against the
// parsed URL's scheme, host, optional port, and optional path prefix.
func networkAllowed(allow []string, u *url.URL) bool {
	for _, entry := range allow {
		if matchAllowEntry(entry, u) {
			return true
		}
	}
	return false
}

func matchAllowEntry(entry string, u *url.URL) bool {
	scheme, rest := entry, ""
	if i := strings.Index(entry, "://"); i >= 0 {
		scheme, rest = entry[:i], entry[i+3:]
	} else {
		rest = entry
	}
	if scheme != "" && !strings.EqualFold(scheme, u.Scheme) {
		return false
	}
	hostPort, pathPrefix, _ := strings.Cut(rest, "/")
	if !strings.EqualFold(hostPort, u.Host) && !strings.EqualFold(hostPort, u.Hostname()) {
		return false
	}
	if pathPrefix != "" && !strings.HasPrefix(u.Path, "/"+pathPrefix) {
		return false
	}
	return true
}

// redHandler flips red_enabled for the remainder of the process; it never
// bypasses yellow gating on its own.
func redHandler(ctx context.Context, rt *runtime.Runtime, pkt *lang.Packet) (value.Value, bool, error) {
	rt.Consent.RedEnabled = true
	return rt.Last, true, nil
}
