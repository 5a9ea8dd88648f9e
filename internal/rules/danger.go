package rules

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/cytoscnpy/cytoscnpy/pkg/types"
)

// callPattern names a function/attribute call cytoscnpy treats as
// dangerous, grounded on the DangerousPattern table idiom (name +
// matched call names + severity + message), adapted here to run
// directly against this repo's own Tree-sitter node API instead of a
// second parser library.
type callPattern struct {
	ruleID    string
	names     []string // exact match against the call's function text
	contains  []string // substring match, for dotted/module-qualified calls
	severity  types.Severity
	message   string
	shellOnly bool // only fires when the call also passes shell=True
}

var dangerCallPatterns = []callPattern{
	{
		ruleID:   "danger-eval-exec",
		names:    []string{"eval", "exec"},
		severity: types.SeverityCritical,
		message:  "dynamic code execution via eval/exec can run attacker-controlled code",
	},
	{
		ruleID:   "danger-unsafe-deserialization",
		contains: []string{"pickle.load", "pickle.loads", "yaml.load", "marshal.loads", "torch.load"},
		severity: types.SeverityHigh,
		message:  "deserializing untrusted data with pickle/yaml.load/marshal/torch.load can execute arbitrary code",
	},
	{
		ruleID:   "danger-shell-command",
		contains: []string{"os.system", "os.popen"},
		severity: types.SeverityHigh,
		message:  "shelling out via os.system/os.popen is vulnerable to command injection",
	},
	{
		ruleID:    "danger-subprocess-shell",
		contains:  []string{"subprocess.call", "subprocess.run", "subprocess.Popen", "subprocess.check_call", "subprocess.check_output"},
		severity:  types.SeverityHigh,
		message:   "subprocess invocation with shell=True is vulnerable to command injection",
		shellOnly: true,
	},
	{
		ruleID:   "danger-weak-hash",
		contains: []string{"hashlib.md5", "hashlib.sha1"},
		severity: types.SeverityMedium,
		message:  "MD5/SHA1 are not collision-resistant; use SHA-256 or better for security-sensitive hashing",
	},
	{
		ruleID:   "danger-insecure-cipher",
		contains: []string{"DES.new", "ARC4.new", "Crypto.Cipher.DES", "Crypto.Cipher.ARC4"},
		severity: types.SeverityHigh,
		message:  "DES/RC4 are broken ciphers; use AES-GCM or ChaCha20-Poly1305",
	},
	{
		ruleID:   "danger-ssrf",
		contains: []string{"requests.get", "requests.post", "urllib.request.urlopen", "httpx.get"},
		severity: types.SeverityMedium,
		message:  "outbound request built from a variable URL without an allowlist is a possible SSRF sink",
	},
}

// DangerRule flags calls to known-dangerous functions and SQL built
// from string interpolation (spec §4.6).
type DangerRule struct {
	BaseRule
}

func dangerRules() []Rule {
	return []Rule{&DangerRule{}, &SQLInjectionRule{}}
}

func (r *DangerRule) Name() string { return "danger" }

func (r *DangerRule) VisitExpr(n *tree_sitter.Node, ctx *Context) *types.Finding {
	if n.Kind() != "call" {
		return nil
	}
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return nil
	}
	callText := text(fn, ctx.Content)

	for _, pat := range dangerCallPatterns {
		if !matchesCallPattern(callText, pat) {
			continue
		}
		if pat.shellOnly && !hasShellTrueArgument(n, ctx.Content) {
			continue
		}
		return &types.Finding{
			RuleID:   pat.ruleID,
			Severity: pat.severity,
			File:     ctx.File,
			Line:     line(n),
			Column:   column(n),
			Message:  pat.message,
		}
	}
	return nil
}

func matchesCallPattern(callText string, pat callPattern) bool {
	for _, name := range pat.names {
		if callText == name {
			return true
		}
	}
	for _, sub := range pat.contains {
		if strings.Contains(callText, sub) {
			return true
		}
	}
	return false
}

// hasShellTrueArgument scans a call's argument list for shell=True.
func hasShellTrueArgument(call *tree_sitter.Node, content []byte) bool {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return false
	}
	return strings.Contains(strings.ReplaceAll(text(args, content), " ", ""), "shell=True")
}

// SQLInjectionRule flags cursor.execute/sqlalchemy.text calls whose SQL
// argument is built via string formatting/concatenation/f-strings
// instead of parameter binding.
type SQLInjectionRule struct {
	BaseRule
}

func (r *SQLInjectionRule) Name() string { return "sql-injection" }

var sqlSinkNames = []string{"execute", "executemany", "text", "raw"}

func (r *SQLInjectionRule) VisitExpr(n *tree_sitter.Node, ctx *Context) *types.Finding {
	if n.Kind() != "call" {
		return nil
	}
	fn := n.ChildByFieldName("function")
	if fn == nil || fn.Kind() != "attribute" {
		return nil
	}
	attr := fn.ChildByFieldName("attribute")
	if attr == nil || !containsString(sqlSinkNames, text(attr, ctx.Content)) {
		return nil
	}
	args := n.ChildByFieldName("arguments")
	if args == nil {
		return nil
	}
	firstArg := firstPositionalArg(args)
	if firstArg == nil || !buildsStringDynamically(firstArg) {
		return nil
	}
	return &types.Finding{
		RuleID:   "danger-sql-injection",
		Severity: types.SeverityCritical,
		File:     ctx.File,
		Line:     line(n),
		Column:   column(n),
		Message:  "SQL built from string formatting/concatenation/f-string instead of parameter binding",
	}
}

func firstPositionalArg(argList *tree_sitter.Node) *tree_sitter.Node {
	count := argList.ChildCount()
	for i := uint(0); i < count; i++ {
		child := argList.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "(", ")", ",", "keyword_argument":
			continue
		default:
			return child
		}
	}
	return nil
}

func buildsStringDynamically(n *tree_sitter.Node) bool {
	switch n.Kind() {
	case "binary_operator", "string": // string covers f-strings (interpolation is a child)
		return hasInterpolationOrConcat(n)
	case "call":
		fn := n.ChildByFieldName("function")
		return fn != nil && fn.Kind() == "attribute"
	}
	return false
}

// hasInterpolationOrConcat reports whether n is a `%`/`+`-built string or
// an f-string containing an interpolation expression.
func hasInterpolationOrConcat(n *tree_sitter.Node) bool {
	if n.Kind() == "binary_operator" {
		return true
	}
	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		child := n.Child(i)
		if child != nil && (child.Kind() == "interpolation" || child.Kind() == "format_expression") {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
