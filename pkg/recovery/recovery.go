package recovery

import (
	"encoding/json"
	"strings"

	cferrors "github.com/certforge/certforge/pkg/errors"
)

// ErrRecoveryFailed is returned when no stage can produce a JSON object.
// It matches any error carrying the RECOVERY_FAILED code.
var ErrRecoveryFailed = cferrors.New(cferrors.ErrCodeRecoveryFailed, "no JSON object found in text")

// Stage names one step of the repair chain.
type Stage string

const (
	StageFence       Stage = "fence"
	StageTrim        Stage = "trim"
	StageDirectParse Stage = "direct-parse"
	StageEscapeField Stage = "escape-field"
	StageStructure   Stage = "structure"
	StageReparse     Stage = "reparse"
	StageExcise      Stage = "excise"
)

// Result is the outcome of one stage: either the text is accepted as the
// final answer, or it is passed on to the next stage.
type Result struct {
	Text     string
	Accepted bool
}

// Continue passes text on to the next stage.
func Continue(text string) Result { return Result{Text: text} }

// Accept ends the chain with text as the answer.
func Accept(text string) Result { return Result{Text: text, Accepted: true} }

// Step pairs a stage name with its transform.
type Step struct {
	Stage Stage
	Run   func(text string) Result
}

// Outcome records what one stage did, for diagnostics.
type Outcome struct {
	Stage    Stage
	InBytes  int
	OutBytes int
	Accepted bool
}

// Trace lists the outcomes of every stage that ran, in order.
type Trace []Outcome

// Final returns the stage that produced the answer, or "" for an empty trace.
func (t Trace) Final() Stage {
	if len(t) == 0 {
		return ""
	}
	return t[len(t)-1].Stage
}

// Steps returns the repair chain in execution order.
func Steps() []Step {
	return []Step{
		{StageFence, func(s string) Result { return Continue(StripFence(s)) }},
		{StageTrim, func(s string) Result { return Continue(TrimToObject(s)) }},
		{StageDirectParse, acceptIfValid},
		{StageEscapeField, func(s string) Result { return Continue(EscapeField(s, FieldName)) }},
		{StageStructure, func(s string) Result { return Continue(RepairStructure(s)) }},
		{StageReparse, acceptIfValid},
		{StageExcise, func(s string) Result { return Accept(ExciseField(s, FieldName)) }},
	}
}

// Recover returns text that is expected to parse as a JSON object. See the
// package documentation for the stages and their guarantees.
func Recover(raw string) (string, error) {
	out, _, err := RecoverWithTrace(raw)
	return out, err
}

// RecoverWithTrace is Recover that also reports every stage it ran.
func RecoverWithTrace(raw string) (string, Trace, error) {
	if !strings.Contains(raw, "{") {
		return "", nil, ErrRecoveryFailed
	}

	text := strings.TrimSpace(raw)
	var trace Trace
	for _, step := range Steps() {
		if step.Stage == StageExcise && !hasObjectBounds(text) {
			return "", trace, ErrRecoveryFailed
		}
		res := step.Run(text)
		trace = append(trace, Outcome{
			Stage:    step.Stage,
			InBytes:  len(text),
			OutBytes: len(res.Text),
			Accepted: res.Accepted,
		})
		text = res.Text
		if res.Accepted {
			return text, trace, nil
		}
	}
	return text, trace, nil
}

func acceptIfValid(s string) Result {
	if json.Valid([]byte(s)) {
		return Accept(s)
	}
	return Continue(s)
}

// hasObjectBounds reports whether s contains a '{' followed later by a '}'.
func hasObjectBounds(s string) bool {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	return start != -1 && end > start
}
