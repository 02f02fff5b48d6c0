package heph

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Client talks to the Heph transcription provider: login, audio upload,
// status polling and result download.
type Client struct {
	baseURL    string
	apiKey     string
	email      string
	password   string
	httpClient *http.Client

	mu          sync.Mutex
	accessToken string
}

// NewClient creates a provider client. Uploads of raw audio can be slow, so
// the shared HTTP client carries a generous timeout.
func NewClient(baseURL, apiKey, email, password string) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		email:    email,
		password: password,
		httpClient: &http.Client{
			Timeout: 10 * time.Minute,
		},
	}
}

// Configured reports whether the client has everything it needs to obtain an
// authenticated session. Checked by the pipeline before any network I/O.
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.apiKey != "" && c.email != "" && c.password != ""
}

// Login exchanges the stored credentials for an access token and caches it.
func (c *Client) Login(ctx context.Context) error {
	body, err := json.Marshal(map[string]string{
		"email":    c.email,
		"password": c.password,
	})
	if err != nil {
		return newError(KindAuth, "encode login request", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/login", bytes.NewReader(body))
	if err != nil {
		return newError(KindNetwork, "create login request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return newError(KindNetwork, "login request", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return newError(KindNetwork, "read login response", err)
	}

	var login loginResponse
	if err := json.Unmarshal(data, &login); err != nil {
		return newError(KindAuth, "malformed login response", err)
	}
	if login.StatusCode != statusCodeOK || login.Data.Tokens.AccessToken == "" {
		return &Error{Kind: KindAuth, Code: login.StatusCode, Message: "login rejected: " + login.Message}
	}

	c.mu.Lock()
	c.accessToken = login.Data.Tokens.AccessToken
	c.mu.Unlock()

	log.Printf("[heph] login ok")
	return nil
}

// ensureToken performs a lazy login: exactly once per call site, only when no
// cached token exists.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	token := c.accessToken
	c.mu.Unlock()
	if token != "" {
		return token, nil
	}
	if err := c.Login(ctx); err != nil {
		return "", err
	}
	c.mu.Lock()
	token = c.accessToken
	c.mu.Unlock()
	return token, nil
}

func (c *Client) authorize(req *http.Request, token string) {
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+token)
}

// UploadAudio submits a local audio file for transcription and returns the
// provider job handle.
func (c *Client) UploadAudio(ctx context.Context, path, model string) (*Job, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return nil, err
	}

	audioFile, err := os.Open(path)
	if err != nil {
		return nil, newError(KindFile, "open audio file "+path, err)
	}
	defer audioFile.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, newError(KindFile, "create form file", err)
	}
	if _, err := io.Copy(part, audioFile); err != nil {
		return nil, newError(KindFile, "read audio file "+path, err)
	}
	writer.WriteField("model", model)
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/hear/file", &buf)
	if err != nil {
		return nil, newError(KindNetwork, "create upload request", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.authorize(req, token)

	log.Printf("[heph] uploading %s (%d bytes)", filepath.Base(path), buf.Len())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, newError(KindNetwork, "upload request", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(KindNetwork, "read upload response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, data)
	}

	var upload uploadResponse
	if err := json.Unmarshal(data, &upload); err != nil || upload.Data.TaskID == "" {
		return nil, newError(KindDecoding, "malformed upload response", err)
	}

	log.Printf("[heph] upload ok: task_id=%s", upload.Data.TaskID)
	return &Job{TaskID: upload.Data.TaskID}, nil
}

// CheckStatus fetches the current status and progress text of a job.
func (c *Client) CheckStatus(ctx context.Context, taskID string) (*Job, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/v1/hear/status/"+taskID, nil)
	if err != nil {
		return nil, newError(KindNetwork, "create status request", err)
	}
	c.authorize(req, token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, newError(KindNetwork, "status request", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(KindNetwork, "read status response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, data)
	}

	var status statusResponse
	if err := json.Unmarshal(data, &status); err != nil || status.Data.Status == "" {
		return nil, newError(KindDecoding, "malformed status response", err)
	}

	return &Job{
		TaskID:   taskID,
		Status:   status.Data.Status,
		Progress: status.Data.Progress,
	}, nil
}

// GetResult downloads the result archive of a completed job and extracts the
// transcript text and timed segments. Temporary storage is removed on every
// return path.
func (c *Client) GetResult(ctx context.Context, taskID string) (*Result, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/v1/hear/result/"+taskID, nil)
	if err != nil {
		return nil, newError(KindNetwork, "create result request", err)
	}
	c.authorize(req, token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, newError(KindNetwork, "result request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, apiError(resp.StatusCode, data)
	}

	tempDir, err := os.MkdirTemp("", "heph-result-*")
	if err != nil {
		return nil, newError(KindFile, "create temp dir", err)
	}
	defer os.RemoveAll(tempDir)

	zipPath := filepath.Join(tempDir, taskID+".zip")
	zipFile, err := os.Create(zipPath)
	if err != nil {
		return nil, newError(KindFile, "create temp archive", err)
	}
	if _, err := io.Copy(zipFile, resp.Body); err != nil {
		zipFile.Close()
		return nil, newError(KindFile, "write temp archive", err)
	}
	zipFile.Close()

	archive, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, newError(KindZip, "open result archive", err)
	}
	defer archive.Close()

	text, err := readArchiveEntry(archive, taskID+".txt")
	if err != nil {
		return nil, err
	}
	srt, err := readArchiveEntry(archive, taskID+".srt")
	if err != nil {
		return nil, err
	}

	result := &Result{
		Text:     text,
		Segments: ParseSRT(srt),
	}
	log.Printf("[heph] result ok: task_id=%s segments=%d", taskID, len(result.Segments))
	return result, nil
}

func readArchiveEntry(archive *zip.ReadCloser, name string) (string, error) {
	for _, f := range archive.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", newError(KindZip, "open archive entry "+name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return "", newError(KindZip, "read archive entry "+name, err)
		}
		return string(data), nil
	}
	return "", newError(KindZip, "archive entry missing: "+name, nil)
}

// apiError maps a non-2xx response to a structured error, falling back to the
// HTTP status when the body does not carry the provider envelope.
func apiError(httpStatus int, body []byte) *Error {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.StatusCode != "" {
		return &Error{Kind: KindAPI, Code: env.StatusCode, Message: env.Message}
	}
	return &Error{Kind: KindAPI, Code: fmt.Sprintf("%d", httpStatus), Message: "request failed"}
}
