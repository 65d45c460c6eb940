package rterrors

// template is a registered error's static fields.
type template struct {
	Category Category
	Message  string
}

// registry maps error codes to their templates, mirroring the
// teacher's internal/errors registry but scoped to the ambient stack
// (config, CLI, transport, persistence) rather than a compiler's
// per-phase diagnostics.
var registry = map[string]template{
	"WEAVE-E101": {Category: CategoryConfig, Message: "invalid configuration file"},
	"WEAVE-E102": {Category: CategoryConfig, Message: "missing required configuration field"},
	"WEAVE-E201": {Category: CategoryCLI, Message: "unknown subcommand"},
	"WEAVE-E202": {Category: CategoryCLI, Message: "invalid flag value"},
	"WEAVE-E301": {Category: CategoryTransport, Message: "websocket upgrade failed"},
	"WEAVE-E302": {Category: CategoryTransport, Message: "malformed wire frame"},
	"WEAVE-E401": {Category: CategoryPersist, Message: "snapshot not found"},
	"WEAVE-E402": {Category: CategoryPersist, Message: "snapshot store unavailable"},
}
