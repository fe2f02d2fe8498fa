package main

// packetHelp is the per-op entry `tagspeak help <packet>` looks up; text
// mirrors the canonical packet catalog's semantics, not its exact wording.
var packetHelp = map[string]string{
	"math":   "[math@expr] — evaluate an arithmetic/condition expression, replacing the last value.",
	"int":    "[int@v] — coerce v to an integral Num.",
	"str":    "[str@v] — render v as a Str.",
	"bool":   "[bool@v] — coerce v via Truthy.",
	"var":    "[var@name] — read a bound variable by name.",
	"print":  "[print@v?] — print the last value (or v) and pass it through unchanged.",
	"dump":   "[dump@v?] — alias of print.",
	"store":  "[store:disc@name] — bind the last value to name under discipline fluid/rigid/context (default fluid).",
	"if":     "[if(cond)]{...} > [or(cond)]{...} > [else]{...} — first truthy branch runs; else runs if none match.",
	"loop":   "[loop@n]{...} / [loop:forever]{...} / [loop:until@(cond)]{...} / [loop:each(item)@handle]{...} — repeat a body.",
	"break":     "[break] — stop the innermost loop, resuming after it.",
	"return":    "[return@v?] — exit the innermost function call with v (or the current last value).",
	"interrupt": "[interrupt@v?] — propagate an early exit past loops and calls alike.",
	"funct": "[funct:tag]{...} — register a body under tag for [call].",
	"call":  "[call@tag] — evaluate the body registered under tag; a Return inside it becomes the call's result.",
	"mod":   "[mod(overwrite|debug)@handle]{...} — open a document-writing context over a Doc handle for its mutation children.",
	"sect":  "[sect@name]{...} — open a nested object field under the current document frame.",
	"set":      "[set(path)@v] / [comp(path)@v] — replace the value at path; requires the path to exist unless (missing) is given or the enclosing [mod] has (overwrite).",
	"insert":   "[insert(path)@v] / [ins(path)@v] — create a new value at path, failing if one exists.",
	"append":   "[append(path)@v] / [push(path)@v] — push v onto the array at path.",
	"delete":   "[delete(path)] / [del(path)] / [remove(path)] — remove the value at path.",
	"merge":    "[merge(path)@handle] — deep-merge the object held by a Doc handle into the object at path.",
	"key":      "[key(name)@v] — set a named field directly on the current document frame.",
	"load":   "[load@path] — read a file through the box resolver into a Doc, dispatching format by extension.",
	"save":   "[save@handle|path] — write a Doc back to its origin or an explicit path.",
	"log":    "[log@path]{...} — build an object from a body's [key]/[sect] children and write it; [log@path] with no body writes the current last value as a bare scalar.",
	"parse":  "[parse(fmt)@text] — decode a string into a Doc with no origin.",
	"get":    "[get(path)@handle?] — read path out of a Doc handle (or the current last value).",
	"exists": "[exists(path)@handle?] — report whether path resolves.",
	"cd":     "[cd@path] — change the box resolver's working directory.",
	"yellow":  "[yellow@msg?]{...} — prompt for consent, then run the body; answering 'a' latches consent for the rest of the process.",
	"confirm": "[confirm@msg?]{...} — alias of yellow.",
	"exec":    "[exec@cmd] — run a shell command, gated by yellow unless admitted by config.",
	"run":     "[run@path] — evaluate another script in the same Runtime, honoring the run-nesting cap.",
	"tagspeak": "[tagspeak:run@path] — alias of run.",
	"http":    "[http(verb)@url]{...} — issue an HTTP request; headers/body/json fields come from the body's [key] children.",
	"red":     "[red] — raise the session-wide red flag; never bypasses yellow on its own.",
}

// packetReference is the catalog-level summary `tagspeak help` prints
// with no argument.
const packetReference = `TagSpeak packet reference

  [op(flags)@arg]{body?} — the atomic expression; '>' joins a chain
  of packets threading a last value; '{...}' opens a block.

  Literals & variables: math int str bool var print dump store
  Control flow:          if/or/else loop break return interrupt funct call
  Document mutation:     mod sect set insert append delete merge key
  I/O:                   load save log parse get exists cd
  Gated side effects:    yellow confirm exec run tagspeak http red

Run 'tagspeak help <packet>' for one packet's contract.
`
