package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/certforge/certforge/pkg/design"
	cferrors "github.com/certforge/certforge/pkg/errors"
	"github.com/certforge/certforge/pkg/generator"
	"github.com/certforge/certforge/pkg/layout"
	"github.com/certforge/certforge/pkg/pipeline"
	"github.com/certforge/certforge/pkg/render/background"
)

var quiet = log.New(io.Discard)

func newTestServer(t *testing.T, gen generator.Generator) *httptest.Server {
	t.Helper()
	runner := pipeline.NewRunner(gen, nil, nil, quiet)
	ts := httptest.NewServer(New(runner, WithLogger(quiet)).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func imageDataURL(t *testing.T) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 16, 12))
	for y := 0; y < 12; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.NRGBA{R: 240, G: 240, B: 230, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return background.DataURL("image/png", buf.Bytes())
}

func modelAnswer(t *testing.T) string {
	t.Helper()
	b := design.Fallback()
	b.Designs = b.Designs[:2]
	data, err := json.Marshal(b)
	if err != nil {
		t.Fatal(err)
	}
	return "Here you go:\n```json\n" + string(data) + "\n```"
}

func post(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	switch v := body.(type) {
	case string:
		r = strings.NewReader(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(data)
	}
	resp, err := http.Post(url, "application/json", r)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Error("missing request ID header")
	}
}

func TestRequestIDEchoed(t *testing.T) {
	ts := newTestServer(t, nil)

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("request ID = %q, want abc-123", got)
	}
}

func TestGenerateDesigns(t *testing.T) {
	ts := newTestServer(t, generator.Static{Text: modelAnswer(t)})

	resp := post(t, ts.URL+"/api/generate-designs", generateRequest{
		Category:  "Academic Achievement",
		ImageData: imageDataURL(t),
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var got generateResponse
	decode(t, resp, &got)
	if len(got.Designs) != 2 || got.Fallback {
		t.Errorf("designs = %d fallback = %v, want 2 false", len(got.Designs), got.Fallback)
	}
}

func TestGenerateDesignsFallback(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := post(t, ts.URL+"/api/generate-designs", generateRequest{
		Category:  "Sports",
		ImageData: imageDataURL(t),
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var got generateResponse
	decode(t, resp, &got)
	if len(got.Designs) != len(design.Fallback().Designs) || !got.Fallback {
		t.Errorf("designs = %d fallback = %v, want fallback batch", len(got.Designs), got.Fallback)
	}
}

func TestGenerateDesignsRejects(t *testing.T) {
	ts := newTestServer(t, generator.Static{Text: modelAnswer(t)})
	img := imageDataURL(t)

	tests := []struct {
		name     string
		body     any
		wantCode cferrors.Code
	}{
		{"missing category", generateRequest{ImageData: img}, cferrors.ErrCodeInvalidInput},
		{"missing image", generateRequest{Category: "Sports"}, cferrors.ErrCodeInvalidInput},
		{"malformed body", "{not json", cferrors.ErrCodeInvalidInput},
		{"not an image", generateRequest{Category: "Sports", ImageData: "data:image/png;base64,aGVsbG8="}, cferrors.ErrCodeInvalidImage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts.URL+"/api/generate-designs", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
			var got errorBody
			decode(t, resp, &got)
			if got.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}
}

func TestRenderPNG(t *testing.T) {
	ts := newTestServer(t, nil)
	d := design.Fallback().Designs[0]

	resp := post(t, ts.URL+"/api/render", renderRequest{
		Design:        &d,
		RecipientName: "Ada Lovelace",
		ImageData:     imageDataURL(t),
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "certificate-design-1.png") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("body is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 800 || b.Dy() != 600 {
		t.Errorf("size = %dx%d, want 800x600", b.Dx(), b.Dy())
	}
}

func TestRenderOps(t *testing.T) {
	ts := newTestServer(t, nil)
	d := design.Fallback().Designs[1]

	resp := post(t, ts.URL+"/api/render", renderRequest{
		Design:        &d,
		RecipientName: "Grace Hopper",
		Format:        "JSON",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var got struct {
		Ops []layout.Op `json:"ops"`
	}
	decode(t, resp, &got)
	names := layout.ByRole(got.Ops, layout.RoleRecipient)
	if len(names) != 1 || names[0].Text != "Grace Hopper" {
		t.Errorf("recipient ops = %+v", names)
	}
}

func TestRenderRejects(t *testing.T) {
	ts := newTestServer(t, nil)
	valid := design.Fallback().Designs[0]
	broken := design.Fallback().Designs[0]
	broken.Typography = nil

	tests := []struct {
		name       string
		req        renderRequest
		wantStatus int
	}{
		{"missing design", renderRequest{}, http.StatusBadRequest},
		{"bad format", renderRequest{Design: &valid, Format: "gif"}, http.StatusBadRequest},
		{"invalid design", renderRequest{Design: &broken}, http.StatusUnprocessableEntity},
		{"bad geometry", renderRequest{Design: &valid, Width: -1, Height: 600}, http.StatusUnprocessableEntity},
		{"too large", renderRequest{Design: &valid, Width: 40000, Height: 40000}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts.URL+"/api/render", tt.req)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestSelfTest(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/api/test")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var got struct {
		Success    bool           `json:"success"`
		Cases      []selfTestCase `json:"cases"`
		TestResult map[string]any `json:"testResult"`
	}
	decode(t, resp, &got)
	if !got.Success || len(got.Cases) != len(selfTestCases) {
		t.Fatalf("success = %v cases = %d", got.Success, len(got.Cases))
	}
	for _, c := range got.Cases {
		if !c.Success {
			t.Errorf("case %q failed: %s", c.Name, c.Error)
		}
	}
	if got.TestResult["designs"] == nil {
		t.Errorf("testResult = %v, want designs", got.TestResult)
	}
}

func TestTestRecover(t *testing.T) {
	ts := newTestServer(t, nil)

	tests := []struct {
		name        string
		testJSON    string
		wantStatus  int
		wantCleaned string
	}{
		{"prose wrapped", `Here: {"designs":[{"id":1,"name":"A"}]} thanks`, http.StatusOK, `{"designs":[{"id":1,"name":"A"}]}`},
		{"no object", "no braces at all", http.StatusInternalServerError, ""},
		{"missing", "", http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts.URL+"/api/test", testRecoverRequest{TestJSON: tt.testJSON})
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusBadRequest {
				return
			}
			var got testRecoverResponse
			decode(t, resp, &got)
			if got.Success != (tt.wantStatus == http.StatusOK) {
				t.Errorf("success = %v", got.Success)
			}
			if got.Cleaned != tt.wantCleaned {
				t.Errorf("cleaned = %q, want %q", got.Cleaned, tt.wantCleaned)
			}
		})
	}
}

func TestRecoverer(t *testing.T) {
	h := Recoverer(quiet)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code cferrors.Code
		want int
	}{
		{cferrors.ErrCodeInvalidInput, http.StatusBadRequest},
		{cferrors.ErrCodeInvalidImage, http.StatusBadRequest},
		{cferrors.ErrCodeInvalidFormat, http.StatusBadRequest},
		{cferrors.ErrCodeInvalidDesign, http.StatusUnprocessableEntity},
		{cferrors.ErrCodeInvalidCanvasGeometry, http.StatusUnprocessableEntity},
		{cferrors.ErrCodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(cferrors.New(tt.code, "x")); got != tt.want {
			t.Errorf("statusFor(%s) = %d, want %d", tt.code, got, tt.want)
		}
	}
}
