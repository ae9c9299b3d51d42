package expand

// DomainExpansions maps a natural-language API-documentation term to
// the vocabulary that actually appears in specs and schemas. Entries
// are deterministic and enumerated at build time; none of them are
// learned or fetched at runtime.
var DomainExpansions = map[string][]string{
	"create":    {"post", "add", "insert", "new"},
	"update":    {"put", "patch", "modify", "edit"},
	"delete":    {"remove", "destroy", "del"},
	"fetch":     {"get", "retrieve", "read", "list"},
	"list":      {"get", "index", "all", "collection"},
	"search":    {"query", "find", "filter"},
	"login":     {"authenticate", "signin", "auth"},
	"logout":    {"signout", "revoke"},
	"token":     {"jwt", "bearer", "apikey", "credential"},
	"key":       {"apikey", "credential", "secret"},
	"error":     {"exception", "fault", "failure"},
	"limit":     {"throttle", "quota", "ratelimit"},
	"webhook":   {"callback", "event", "notification"},
	"schema":    {"model", "type", "definition"},
	"endpoint":  {"route", "path", "resource", "operation"},
	"parameter": {"param", "argument", "field"},
	"response":  {"reply", "result", "output"},
	"request":   {"payload", "body", "input"},
	"header":    {"metadata", "field"},
	"version":   {"revision", "release"},
	"deprecated": {"obsolete", "legacy", "sunset"},
	"paginate":  {"page", "offset", "cursor"},
	"upload":    {"attach", "import"},
	"download":  {"export", "retrieve"},
}

// Abbreviations maps short forms that appear verbatim in API docs to
// their long forms, and vice versa is not assumed: expansion is
// one-directional, short → long, matching how abbreviations are
// typically used in prose queries.
var Abbreviations = map[string]string{
	"api":    "application programming interface",
	"http":   "hypertext transfer protocol",
	"https":  "hypertext transfer protocol secure",
	"json":   "javascript object notation",
	"xml":    "extensible markup language",
	"rest":   "representational state transfer",
	"crud":   "create read update delete",
	"auth":   "authentication authorization",
	"jwt":    "json web token",
	"oauth":  "open authorization",
	"rpc":    "remote procedure call",
	"sdk":    "software development kit",
	"db":     "database",
	"req":    "request",
	"resp":   "response",
	"ctx":    "context",
	"cfg":    "configuration",
	"id":     "identifier",
	"url":    "uniform resource locator",
	"uri":    "uniform resource identifier",
	"tls":    "transport layer security",
	"cors":   "cross origin resource sharing",
}
