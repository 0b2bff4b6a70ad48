package server

import (
	"encoding/json"
	"net/http"

	cferrors "github.com/certforge/certforge/pkg/errors"
	"github.com/certforge/certforge/pkg/recovery"
)

const selfTestObject = `{"designs": [{"id": 1, "name": "Test Design"}]}`

// selfTestDataURL is a fenced answer whose canvasCode embeds an image data
// URL, the shape that most often broke extraction.
const selfTestDataURL = "```json\n" + `{
  "designs": [
    {
      "id": 1,
      "name": "Test Design",
      "canvasCode": "var img = new Image(); img.src = 'data:image/png;base64,very-long-string-here';"
    }
  ]
}` + "\n```"

var selfTestCases = []struct {
	name  string
	input string
}{
	{"fenced", "```json\n" + selfTestObject + "\n```"},
	{"bare", selfTestObject},
	{"prose around fence", "Here is your JSON response:\n```json\n" + selfTestObject + "\n```\nThat completes the response."},
	{"unlabelled fence", "```\n" + selfTestObject + "\n```"},
	{"prose without fence", "Here is the response: " + selfTestObject + " Hope this helps!"},
	{"embedded data URL", selfTestDataURL},
}

type selfTestCase struct {
	Name    string         `json:"name"`
	Success bool           `json:"success"`
	Stage   recovery.Stage `json:"stage,omitempty"`
	Error   string         `json:"error,omitempty"`
}

type selfTestResponse struct {
	Success    bool           `json:"success"`
	Message    string         `json:"message,omitempty"`
	Error      string         `json:"error,omitempty"`
	Cases      []selfTestCase `json:"cases"`
	TestResult any            `json:"testResult,omitempty"`
}

// recoverJSON runs recovery on raw and parses the result.
func recoverJSON(raw string) (string, recovery.Stage, any, error) {
	text, trace, err := recovery.RecoverWithTrace(raw)
	if err != nil {
		return "", trace.Final(), nil, err
	}
	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return text, trace.Final(), nil, cferrors.Wrap(cferrors.ErrCodeRecoveryFailed, err, "parse recovered text")
	}
	return text, trace.Final(), parsed, nil
}

func (s *Server) handleSelfTest(w http.ResponseWriter, r *http.Request) {
	resp := selfTestResponse{Success: true, Cases: make([]selfTestCase, 0, len(selfTestCases))}
	for _, tc := range selfTestCases {
		c := selfTestCase{Name: tc.name}
		_, stage, parsed, err := recoverJSON(tc.input)
		c.Stage = stage
		if err == nil {
			if obj, ok := parsed.(map[string]any); !ok || obj["designs"] == nil {
				err = cferrors.New(cferrors.ErrCodeBatchStructureInvalid, "recovered object has no designs")
			}
		}
		if err != nil {
			c.Error = err.Error()
			resp.Success = false
		} else {
			c.Success = true
		}
		if tc.input == selfTestDataURL {
			resp.TestResult = parsed
		}
		resp.Cases = append(resp.Cases, c)
	}

	if !resp.Success {
		resp.Error = "JSON extraction tests failed"
		s.logger.Error("recovery self-test failed", "cases", resp.Cases)
		writeJSON(w, http.StatusInternalServerError, resp)
		return
	}
	resp.Message = "JSON extraction tests completed successfully"
	writeJSON(w, http.StatusOK, resp)
}

type testRecoverRequest struct {
	TestJSON string `json:"testJson"`
}

type testRecoverResponse struct {
	Success bool           `json:"success"`
	Cleaned string         `json:"cleaned,omitempty"`
	Parsed  any            `json:"parsed,omitempty"`
	Stage   recovery.Stage `json:"stage,omitempty"`
	Error   string         `json:"error,omitempty"`
}

func (s *Server) handleTestRecover(w http.ResponseWriter, r *http.Request) {
	var req testRecoverRequest
	if err := decodeJSON(w, r, s.bodyLimit(), &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.TestJSON == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "testJson is required", Code: cferrors.ErrCodeInvalidInput})
		return
	}

	cleaned, stage, parsed, err := recoverJSON(req.TestJSON)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, testRecoverResponse{Success: false, Stage: stage, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, testRecoverResponse{Success: true, Cleaned: cleaned, Parsed: parsed, Stage: stage})
}
