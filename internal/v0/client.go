package v0

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"designgen-backend/internal/models"
)

// ErrNoChats is returned by GetLatestChat when the provider project exists
// but no prompt has ever been submitted into it.
var ErrNoChats = errors.New("project has no chats")

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// ProjectIn represents the request body for creating a project
type ProjectIn struct {
	Name string `json:"name,omitempty"`
}

// ProjectOut represents the response from project operations
type ProjectOut struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	Chats     []ChatRef `json:"chats,omitempty"`
}

// ChatRef is a chat entry embedded in a project response
type ChatRef struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ChatIn represents the request body for submitting a prompt into a project
type ChatIn struct {
	ProjectID string `json:"projectId"`
	Message   string `json:"message"`
}

// ChatOut represents the response from chat operations
type ChatOut struct {
	ID            string `json:"id"`
	ProjectID     string `json:"projectId,omitempty"`
	LatestVersion struct {
		ID      string `json:"id"`
		Status  string `json:"status"`
		DemoURL string `json:"demoUrl,omitempty"`
	} `json:"latestVersion"`
	Demo string `json:"demo,omitempty"`
}

// ChatSummary identifies the most recently submitted chat of a project.
type ChatSummary struct {
	ChatID    string
	CreatedAt time.Time
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		// Per-call deadlines come from the caller's context; the transport
		// timeout is only a backstop.
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// IsTimeout reports whether err is a deadline or transport timeout rather
// than some other transport failure. Submission timeouts are treated as
// fire-and-forget partial success by the workflow layer.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}

// EnsureProject creates a new project on the provider and returns its id.
// The workflow layer guarantees this is called at most once per subject.
func (c *Client) EnsureProject(ctx context.Context, name string) (string, error) {
	reqBody := ProjectIn{Name: name}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + "/projects"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("failed to create project: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result ProjectOut
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}

	if result.ID == "" {
		return "", fmt.Errorf("project id is empty in response, body: %s", string(body))
	}

	return result.ID, nil
}

// SubmitPrompt submits a prompt into an existing project and returns the new
// chat id. Callers must check IsTimeout on the returned error: a timed-out
// submission is presumed accepted by the provider.
func (c *Client) SubmitPrompt(ctx context.Context, projectID, prompt string) (string, error) {
	reqBody := ChatIn{
		ProjectID: projectID,
		Message:   prompt,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + "/chats"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to submit prompt: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("failed to submit prompt: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result ChatOut
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}

	if result.ID == "" {
		return "", fmt.Errorf("chat id is empty in response, body: %s", string(body))
	}

	return result.ID, nil
}

// GetLatestChat returns the most recently created chat of a project. This
// covers submissions whose chat id was never learned locally because the
// submit call timed out.
func (c *Client) GetLatestChat(ctx context.Context, projectID string) (*ChatSummary, error) {
	url := c.baseURL + "/projects/" + projectID
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get project: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result ProjectOut
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}

	if len(result.Chats) == 0 {
		return nil, ErrNoChats
	}

	latest := result.Chats[0]
	for _, chat := range result.Chats[1:] {
		if chat.CreatedAt.After(latest.CreatedAt) {
			latest = chat
		}
	}

	return &ChatSummary{
		ChatID:    latest.ID,
		CreatedAt: latest.CreatedAt,
	}, nil
}

// GetChatStatus polls the completion state of a single chat and normalizes
// the provider's status strings into the closed RawState set.
func (c *Client) GetChatStatus(ctx context.Context, chatID string) (*models.ChatStatus, error) {
	url := c.baseURL + "/chats/" + chatID
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get chat: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result ChatOut
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}

	state, err := normalizeState(result.LatestVersion.Status)
	if err != nil {
		return nil, err
	}

	resultURL := result.LatestVersion.DemoURL
	if resultURL == "" {
		resultURL = result.Demo
	}

	return &models.ChatStatus{
		ChatID:    chatID,
		RawState:  state,
		ResultURL: resultURL,
	}, nil
}

func normalizeState(raw string) (models.RawState, error) {
	switch strings.ToLower(raw) {
	case "pending", "queued", "":
		return models.RawPending, nil
	case "running", "generating", "in_progress":
		return models.RawRunning, nil
	case "completed", "done":
		return models.RawDone, nil
	case "failed", "errored", "error":
		return models.RawErrored, nil
	}
	return "", fmt.Errorf("unexpected chat status %q", raw)
}
