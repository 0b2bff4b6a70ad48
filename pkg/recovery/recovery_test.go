package recovery

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	cferrors "github.com/certforge/certforge/pkg/errors"
)

func TestRecoverExtraction(t *testing.T) {
	const want = `{"designs": [{"id": 1, "name": "Test"}]}`

	tests := []struct {
		name  string
		input string
	}{
		{"fenced json", "```json\n" + want + "\n```"},
		{"bare json", want},
		{"prose around fence", "Here is your JSON response:\n```json\n" + want + "\n```\nThat completes the response."},
		{"unlabelled fence", "```\n" + want + "\n```"},
		{"prose without fence", "Here is the response: " + want + " Hope this helps!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Recover(tt.input)
			if err != nil {
				t.Fatalf("Recover() error = %v", err)
			}
			if got != want {
				t.Errorf("Recover() = %q, want %q", got, want)
			}
		})
	}
}

func TestRecoverScenarioProseWrapped(t *testing.T) {
	got, err := Recover(`Here: {"designs":[{"id":1,"name":"A"}]} thanks`)
	if err != nil {
		t.Fatalf("Recover() error = %v", err)
	}
	if want := `{"designs":[{"id":1,"name":"A"}]}`; got != want {
		t.Errorf("Recover() = %q, want %q", got, want)
	}
}

func TestRecoverValidJSONUnchanged(t *testing.T) {
	inputs := []string{
		`{}`,
		`{"designs":[]}`,
		`{"designs":[{"id":1,"name":"A","canvasCode":"ctx.fillText(\"x\", 1, 2);\nctx.stroke();"}]}`,
		"{\n  \"designs\": [\n    {\"id\": 2, \"description\": \"braces } and { inside\"}\n  ]\n}",
		`{"a":"back\\slash","b":[1,2,{"c":null}]}`,
		"{\"designs\":[{\"id\":1,\"name\":\"A\",\"canvasCode\":\"// ```js\\nctx.fill()```\"}]}",
	}

	for _, in := range inputs {
		padded := "\n  " + in + "  \n"
		got, err := Recover(padded)
		if err != nil {
			t.Fatalf("Recover(%q) error = %v", in, err)
		}
		if got != in {
			t.Errorf("Recover(%q) = %q, want input unchanged", in, got)
		}
	}
}

func TestStripFence(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"labelled", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"after prose", "Sure:\n```\n{\"a\":1}\n```\nDone.", `{"a":1}`},
		{"indented", "Sure:\n  ```json\n{\"a\":1}\n  ```", `{"a":1}`},
		{"backticks inside a string", "{\"c\":\"x ```js\\ny``` z\"}", "{\"c\":\"x ```js\\ny``` z\"}"},
		{"no fence", `{"a":1}`, `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFence(tt.in); got != tt.want {
				t.Errorf("StripFence() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRecoverFencedDeepEqual(t *testing.T) {
	body := `{"designs":[{"id":1,"layout":{"titlePosition":{"x":400,"y":170}},"canvasCode":"// ok"}]}`
	got, err := Recover("Sure!\n```json\n" + body + "\n```\n")
	if err != nil {
		t.Fatalf("Recover() error = %v", err)
	}

	var a, b any
	if err := json.Unmarshal([]byte(got), &a); err != nil {
		t.Fatalf("recovered text does not parse: %v", err)
	}
	if err := json.Unmarshal([]byte(body), &b); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("recovered = %v, want %v", a, b)
	}
}

func TestRecoverNoBraceFails(t *testing.T) {
	inputs := []string{
		"",
		"I could not generate any designs, sorry.",
		"```json\n[1, 2, 3]\n```",
		"}}} only closers",
	}

	for _, in := range inputs {
		_, err := Recover(in)
		if !errors.Is(err, ErrRecoveryFailed) {
			t.Errorf("Recover(%q) error = %v, want ErrRecoveryFailed", in, err)
		}
		if !cferrors.Is(err, cferrors.ErrCodeRecoveryFailed) {
			t.Errorf("Recover(%q) code = %v, want RECOVERY_FAILED", in, cferrors.GetCode(err))
		}
	}
}

func TestRecoverOpenBraceOnlyFails(t *testing.T) {
	_, trace, err := RecoverWithTrace(`{ "designs": [ truncated output`)
	if !errors.Is(err, ErrRecoveryFailed) {
		t.Fatalf("error = %v, want ErrRecoveryFailed", err)
	}
	if trace.Final() != StageReparse {
		t.Errorf("last stage = %q, want %q", trace.Final(), StageReparse)
	}
}

func canvasCodeOf(t *testing.T, recovered string, index int) string {
	t.Helper()
	var batch struct {
		Designs []struct {
			CanvasCode string `json:"canvasCode"`
		} `json:"designs"`
	}
	if err := json.Unmarshal([]byte(recovered), &batch); err != nil {
		t.Fatalf("recovered text does not parse: %v\n%s", err, recovered)
	}
	if index >= len(batch.Designs) {
		t.Fatalf("recovered %d designs, want index %d", len(batch.Designs), index)
	}
	return batch.Designs[index].CanvasCode
}

func TestRecoverEscapesCanvasCode(t *testing.T) {
	value := "ctx.fillText(\"Hi\", 1, 2);\npath = 'C:\\dir';\tdone\r\nend"
	raw := `{"designs":[{"id":1,"name":"A","canvasCode":"` + value + `"}]}`

	got, trace, err := RecoverWithTrace(raw)
	if err != nil {
		t.Fatalf("Recover() error = %v", err)
	}
	if trace.Final() != StageReparse {
		t.Errorf("final stage = %q, want %q", trace.Final(), StageReparse)
	}

	want := "ctx.fillText(\"Hi\", 1, 2);\npath = 'C:\\dir';done\nend"
	if code := canvasCodeOf(t, got, 0); code != want {
		t.Errorf("canvasCode = %q, want %q", code, want)
	}
}

func TestRecoverTruncatesLongCanvasCode(t *testing.T) {
	value := "say(\"a\")\n" + strings.Repeat("x", 2500)
	raw := `{"designs":[{"id":1,"canvasCode":"` + value + `"}]}`

	got, err := Recover(raw)
	if err != nil {
		t.Fatalf("Recover() error = %v", err)
	}

	want := value[:MaxFieldLength] + TruncationMarker
	if code := canvasCodeOf(t, got, 0); code != want {
		t.Errorf("canvasCode length = %d, want %d", len(code), len(want))
	}
}

func TestRecoverLeavesOtherFieldsUntouched(t *testing.T) {
	raw := `{"designs":[{"id":1,"description":"two\\nlines \"quoted\"","canvasCode":"a "b"
c"},{"id":2,"name":"Second","canvasCode":"x"y"}]}`

	got, err := Recover(raw)
	if err != nil {
		t.Fatalf("Recover() error = %v", err)
	}
	if !strings.Contains(got, `"description":"two\\nlines \"quoted\""`) {
		t.Errorf("description was modified: %s", got)
	}
	if code := canvasCodeOf(t, got, 0); code != "a \"b\"\nc" {
		t.Errorf("first canvasCode = %q", code)
	}
	if code := canvasCodeOf(t, got, 1); code != `x"y` {
		t.Errorf("second canvasCode = %q", code)
	}
}

func TestRecoverTrailingCommas(t *testing.T) {
	got, err := Recover("{\"designs\":[{\"id\":1,\"name\":\"A\",},],}")
	if err != nil {
		t.Fatalf("Recover() error = %v", err)
	}
	if want := `{"designs":[{"id":1,"name":"A"}]}`; got != want {
		t.Errorf("Recover() = %q, want %q", got, want)
	}
}

func TestRecoverExcisionIsLastResort(t *testing.T) {
	raw := `{"designs":[{"id":1,"canvasCode":"if (a) { b("x"}); c()"}]}`

	got, trace, err := RecoverWithTrace(raw)
	if err != nil {
		t.Fatalf("Recover() error = %v", err)
	}
	if trace.Final() != StageExcise {
		t.Fatalf("final stage = %q, want %q", trace.Final(), StageExcise)
	}
	if !strings.Contains(got, ExcisedPlaceholder) {
		t.Errorf("result lacks placeholder: %s", got)
	}
	if strings.Contains(got, `b(\"x`) {
		t.Errorf("original field content survived excision: %s", got)
	}
}

func TestTraceRecordsEveryStage(t *testing.T) {
	_, trace, err := RecoverWithTrace(`{"a":1,}`)
	if err != nil {
		t.Fatal(err)
	}

	var stages []Stage
	for _, o := range trace {
		stages = append(stages, o.Stage)
	}
	want := []Stage{StageFence, StageTrim, StageDirectParse, StageEscapeField, StageStructure, StageReparse}
	if !reflect.DeepEqual(stages, want) {
		t.Errorf("stages = %v, want %v", stages, want)
	}
	if !trace[len(trace)-1].Accepted {
		t.Error("last outcome not marked accepted")
	}
}
