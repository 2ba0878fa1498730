package handler

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubConfig struct {
	basePath  string
	maxLength int64
	rps       float64
	burst     int
}

func (c *stubConfig) GetServerPort() string { return "5000" }
func (c *stubConfig) GetUploadPath() string { return "/tmp/uploads" }
func (c *stubConfig) GetLogLevel() string { return "info" }
func (c *stubConfig) GetLogFormat() string { return "json" }
func (c *stubConfig) GetAllowedExtensions() []string { return []string{"pdf"} }
func (c *stubConfig) GetBasePath() string { return c.basePath }
func (c *stubConfig) GetServiceName() string { return "pdf-webhook" }
func (c *stubConfig) GetTextEngine() string { return "mupdf" }
func (c *stubConfig) GetCORSAllowedOrigins() []string { return []string{"*"} }
func (c *stubConfig) GetRateLimit() float64 { return c.rps }
func (c *stubConfig) GetRateBurst() int { return c.burst }
func (c *stubConfig) GetMaxContentLength() int64 {
	if c.maxLength == 0 {
		return 16 * 1024 * 1024
	}
	return c.maxLength
}

// multipartRequest builds a form upload. An empty filename sends the file
// field without a filename.
func multipartRequest(t *testing.T, target, filename string, data []byte, password string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		part.Write(data)
	} else {
		if err := mw.WriteField("file", string(data)); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if password != "" {
		if err := mw.WriteField("password", password); err != nil {
			t.Fatalf("write password: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func base64Request(t *testing.T, target string, data []byte, password *string) *http.Request {
	t.Helper()
	payload := map[string]interface{}{"pdf_base64": base64.StdEncoding.EncodeToString(data)}
	if password != nil {
		payload["password"] = *password
	}
	return jsonRequest(t, target, payload)
}

func jsonRequest(t *testing.T, target string, payload interface{}) *http.Request {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
}

func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	decodeBody(t, rr, &body)
	return body["error"]
}

func strPtr(s string) *string { return &s }
