// Package vision is the HTTP client for the remote video-analysis service.
// The service itself is opaque; only its contract is consumed here.
package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"climb-sync/internal/nav"
)

// StatusCompleted is the terminal job status reported by the service.
const StatusCompleted = "completed"

// maxErrorBodyBytes caps how much of an error response body is carried into
// the user-visible failure reason.
const maxErrorBodyBytes = 4 << 10

// Client calls the remote analysis service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a Client for the service rooted at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// UploadResult is the decoded upload response: either the result was already
// fully processed synchronously (Videos carries the payload) or a server-side
// job was started (JobID identifies it).
type UploadResult struct {
	AlreadyProcessed bool
	Videos           []nav.VideoItem
	JobID            string
}

// uploadResponse is the wire format of the upload response.
type uploadResponse struct {
	AlreadyProcessed bool            `json:"already_processed"`
	Data             []nav.VideoItem `json:"data"`
	JobID            string          `json:"job_id"`
}

// JobStatus is the wire format of a job status response.
type JobStatus struct {
	Status             string  `json:"status"`
	ProcessingProgress float64 `json:"processing_progress"`
	Owner              string  `json:"owner"`
}

// Upload transfers the video as a multipart body (field "video"). clientID
// identifies this upload attempt to the service so a push channel opened
// under the same id receives its progress events. A non-success response
// becomes an error carrying the server's error detail.
func (c *Client) Upload(ctx context.Context, filename string, content io.Reader, clientID string) (*UploadResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("video", filename)
	if err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("read video content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finish multipart body: %w", err)
	}

	endpoint := c.baseURL + "/video-upload/" + url.PathEscape(clientID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload video: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("upload failed: %s", errorDetail(resp))
	}

	var decoded uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	return &UploadResult{
		AlreadyProcessed: decoded.AlreadyProcessed,
		Videos:           decoded.Data,
		JobID:            decoded.JobID,
	}, nil
}

// JobStatus fetches the current status of the job identified by jobID.
func (c *Client) JobStatus(ctx context.Context, jobID string) (*JobStatus, error) {
	endpoint := c.baseURL + "/jobs/" + url.PathEscape(jobID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build status request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch job status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("job status failed: %s", errorDetail(resp))
	}

	var status JobStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decode job status: %w", err)
	}
	return &status, nil
}

// VideosByOwner fetches the finalized video/event payload for owner. It also
// serves the cache pre-check, keyed by a stable identifier derived from the
// uploaded file.
func (c *Client) VideosByOwner(ctx context.Context, owner string) ([]nav.VideoItem, error) {
	endpoint := c.baseURL + "/videos?owner=" + url.QueryEscape(owner)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build videos request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch videos: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("videos fetch failed: %s", errorDetail(resp))
	}

	var videos []nav.VideoItem
	if err := json.NewDecoder(resp.Body).Decode(&videos); err != nil {
		return nil, fmt.Errorf("decode videos: %w", err)
	}
	return videos, nil
}

// errorDetail extracts a short human-readable reason from an error response.
func errorDetail(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	detail := strings.TrimSpace(string(body))
	if detail == "" {
		return resp.Status
	}
	return detail
}
