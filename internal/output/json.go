package output

import (
	"encoding/json"
	"io"

	"github.com/cytoscnpy/cytoscnpy/pkg/types"
)

// jsonReport is the stable wire shape of a scan result (spec §6). Field
// names are the contract; internal Result/Finding/UnusedFinding types
// stay free to evolve without a json tag on every field, the same
// separation the teacher draws with its own JSONReport DTO.
type jsonReport struct {
	UnusedFunctions  []jsonUnused `json:"unused_functions"`
	UnusedMethods    []jsonUnused `json:"unused_methods"`
	UnusedImports    []jsonUnused `json:"unused_imports"`
	UnusedClasses    []jsonUnused `json:"unused_classes"`
	UnusedVariables  []jsonUnused `json:"unused_variables"`
	UnusedParameters []jsonUnused `json:"unused_parameters"`

	DangerFindings  []jsonFinding `json:"danger_findings"`
	SecretsFindings []jsonFinding `json:"secrets_findings"`
	QualityFindings []jsonFinding `json:"quality_findings"`
	TaintFindings   []jsonFinding `json:"taint_findings"`

	ParseErrors []jsonParseError `json:"parse_errors"`

	DynamicModules []string `json:"dynamic_modules"`
	ShadowedNames  []string `json:"shadowed_names"`

	Warnings []string `json:"warnings,omitempty"`
}

type jsonUnused struct {
	File       string `json:"file"`
	Line       int    `json:"line"`
	Column     int    `json:"column"`
	Name       string `json:"name"`
	SimpleName string `json:"simple_name"`
	Confidence int    `json:"confidence"`
	RuleID     string `json:"rule_id"`
}

type jsonFinding struct {
	RuleID   string `json:"rule_id"`
	Severity string `json:"severity"`
	File     string `json:"file"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Message  string `json:"message"`
}

type jsonParseError struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Message string `json:"message"`
}

// BuildJSONReport converts result and any collected warnings into the
// stable wire shape RenderJSON writes.
func BuildJSONReport(result *types.Result, warnings []string) any {
	r := &jsonReport{
		UnusedFunctions:  toJSONUnused(result.UnusedFunctions),
		UnusedMethods:    toJSONUnused(result.UnusedMethods),
		UnusedImports:    toJSONUnused(result.UnusedImports),
		UnusedClasses:    toJSONUnused(result.UnusedClasses),
		UnusedVariables:  toJSONUnused(result.UnusedVariables),
		UnusedParameters: toJSONUnused(result.UnusedParameters),

		DangerFindings:  toJSONFindings(result.Danger),
		SecretsFindings: toJSONFindings(result.Secrets),
		QualityFindings: toJSONFindings(result.Quality),
		TaintFindings:   toJSONFindings(result.TaintFindings),

		ParseErrors: toJSONParseErrors(result.ParseErrors),

		DynamicModules: result.DynamicModules,
		ShadowedNames:  result.ShadowedFQNs,
		Warnings:       warnings,
	}
	if r.DynamicModules == nil {
		r.DynamicModules = []string{}
	}
	if r.ShadowedNames == nil {
		r.ShadowedNames = []string{}
	}
	return r
}

func toJSONUnused(in []types.UnusedFinding) []jsonUnused {
	out := make([]jsonUnused, len(in))
	for i, u := range in {
		out[i] = jsonUnused{
			File:       u.File,
			Line:       u.Line,
			Column:     u.Col,
			Name:       u.Name,
			SimpleName: u.SimpleName,
			Confidence: u.Confidence,
			RuleID:     u.RuleID,
		}
	}
	return out
}

func toJSONFindings(in []types.Finding) []jsonFinding {
	out := make([]jsonFinding, len(in))
	for i, f := range in {
		out[i] = jsonFinding{
			RuleID:   f.RuleID,
			Severity: f.Severity.String(),
			File:     f.File,
			Line:     f.Line,
			Column:   f.Column,
			Message:  f.Message,
		}
	}
	return out
}

func toJSONParseErrors(in []types.ParseError) []jsonParseError {
	out := make([]jsonParseError, len(in))
	for i, p := range in {
		out[i] = jsonParseError{File: p.File, Line: p.Line, Column: p.Column, Message: p.Message}
	}
	return out
}

// RenderJSON writes result (plus any diagnostic warnings) to w as
// indented JSON, the same encoder configuration the teacher's own
// RenderJSON uses.
func RenderJSON(w io.Writer, result *types.Result, warnings []string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildJSONReport(result, warnings))
}
