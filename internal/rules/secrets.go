package rules

import (
	"math"
	"regexp"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/cytoscnpy/cytoscnpy/pkg/types"
)

// secretPattern is a named regex recognizer for a hardcoded secret,
// with an optional per-pattern entropy floor and proximity keywords
// that bump its score (grounded on the SecretPattern/SecretScanner
// shape in the pack's secret-scanning example).
type secretPattern struct {
	name       string
	regex      *regexp.Regexp
	minEntropy float64
	severity   types.Severity
	message    string
	// lineScoped patterns need the assignment keyword on the same line
	// as the value (e.g. "password =" next to the literal) and so are
	// matched against the whole source line rather than just the string
	// node's own text, which never includes its left-hand side.
	lineScoped bool
}

var secretPatterns = []secretPattern{
	{
		name:       "aws-access-key",
		regex:      regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
		minEntropy: 0,
		severity:   types.SeverityCritical,
		message:    "hardcoded AWS access key ID",
	},
	{
		name:       "generic-api-key-assignment",
		regex:      regexp.MustCompile(`(?i)(api[_-]?key|secret|token|password)\s*[:=]\s*['"]([A-Za-z0-9+/_\-=]{16,})['"]`),
		minEntropy: 3.5,
		severity:   types.SeverityHigh,
		message:    "hardcoded credential assigned to a variable resembling a secret",
		lineScoped: true,
	},
	{
		name:       "slack-token",
		regex:      regexp.MustCompile(`xox[baprs]-[0-9A-Za-z-]{10,}`),
		minEntropy: 0,
		severity:   types.SeverityHigh,
		message:    "hardcoded Slack token",
	},
	{
		name:       "private-key-header",
		regex:      regexp.MustCompile(`-----BEGIN (RSA |EC |OPENSSH |)PRIVATE KEY-----`),
		minEntropy: 0,
		severity:   types.SeverityCritical,
		message:    "embedded private key material",
	},
	{
		name:       "jwt",
		regex:      regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`),
		minEntropy: 0,
		severity:   types.SeverityMedium,
		message:    "hardcoded JWT",
	},
}

var proximityKeywords = []string{"secret", "password", "token", "api_key", "apikey", "credential"}

// SecretsRule matches string literals against the recognizer table and
// scores them with a base severity, a proximity-to-keyword bonus, a
// Shannon-entropy floor, and a test-file penalty (spec §4.6).
type SecretsRule struct {
	BaseRule
}

func NewSecretsRule() *SecretsRule { return &SecretsRule{} }

func (r *SecretsRule) Name() string { return "secrets" }

func (r *SecretsRule) VisitExpr(n *tree_sitter.Node, ctx *Context) *types.Finding {
	if n.Kind() != "string" {
		return nil
	}
	raw := text(n, ctx.Content)
	fullLine := sourceLine(ctx.Content, line(n))

	for _, pat := range secretPatterns {
		haystack := raw
		if pat.lineScoped {
			haystack = fullLine
		}
		m := pat.regex.FindStringSubmatch(haystack)
		if m == nil {
			continue
		}
		entropySource := m[0]
		if len(m) > 2 {
			entropySource = m[2]
		}
		if pat.minEntropy > 0 && shannonEntropy(entropySource) < pat.minEntropy {
			continue
		}
		severity := pat.severity
		if ctx.IsTestFile {
			severity = demote(severity)
		}
		return &types.Finding{
			RuleID:   "secrets-" + pat.name,
			Severity: severity,
			File:     ctx.File,
			Line:     line(n),
			Column:   column(n),
			Message:  secretMessage(pat, haystack),
		}
	}
	return nil
}

// sourceLine returns the 1-indexed lineNum line of content, or "" if out
// of range.
func sourceLine(content []byte, lineNum int) string {
	lines := strings.Split(string(content), "\n")
	idx := lineNum - 1
	if idx < 0 || idx >= len(lines) {
		return ""
	}
	return lines[idx]
}

func secretMessage(pat secretPattern, raw string) string {
	if hasProximityKeyword(raw) {
		return pat.message + " (near a secret-related keyword)"
	}
	return pat.message
}

func hasProximityKeyword(s string) bool {
	lower := strings.ToLower(s)
	for _, kw := range proximityKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// demote lowers a finding's severity by one step, used for matches
// found in test/fixture files where a hardcoded "secret" is more often
// a deliberately fake value than a real credential.
func demote(s types.Severity) types.Severity {
	switch s {
	case types.SeverityCritical:
		return types.SeverityHigh
	case types.SeverityHigh:
		return types.SeverityMedium
	case types.SeverityMedium:
		return types.SeverityLow
	default:
		return types.SeverityInfo
	}
}

// shannonEntropy computes the Shannon entropy (bits/char) of s, used to
// separate plausible random secrets from low-entropy placeholder or
// example values that merely match a recognizer's shape.
func shannonEntropy(s string) float64 {
	if len(s) == 0 {
		return 0
	}
	freq := make(map[rune]int)
	for _, r := range s {
		freq[r]++
	}
	var entropy float64
	length := float64(len(s))
	for _, count := range freq {
		p := float64(count) / length
		entropy -= p * math.Log2(p)
	}
	return entropy
}
