package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"drivesync/internal/config"
	"drivesync/internal/models"
)

type PushoverNotifier struct {
	config     config.PushoverConfig
	httpClient *http.Client
	enabled    bool
	apiURL     string
	hostname   string
}

type pushoverRequest struct {
	Token     string `json:"token"`
	User      string `json:"user"`
	Message   string `json:"message"`
	Title     string `json:"title,omitempty"`
	Priority  int    `json:"priority,omitempty"`
	Device    string `json:"device,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
	Sound     string `json:"sound,omitempty"`
}

type pushoverResponse struct {
	Status  int      `json:"status"`
	Request string   `json:"request"`
	Errors  []string `json:"errors,omitempty"`
}

const pushoverAPIURL = "https://api.pushover.net/1/messages.json"

func NewPushoverNotifier(cfg config.PushoverConfig, hostname string) *PushoverNotifier {
	return &PushoverNotifier{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		enabled:  cfg.Enabled,
		apiURL:   pushoverAPIURL,
		hostname: hostname,
	}
}

func (p *PushoverNotifier) IsEnabled() bool {
	return p.enabled
}

func (p *PushoverNotifier) NotifyRunCompleted(summary *models.RunSummary) error {
	if !p.enabled {
		return nil
	}

	req := p.newRequest(summary)
	req.Title = p.title("Sync Completed")
	req.Message = p.buildSummaryMessage(summary, nil)

	// Partial failures under the continue policy still deserve attention
	if summary.PairsFailed() > 0 {
		req.Title = p.title("Sync Completed With Errors")
		req.Priority = max(req.Priority, 1)
		req.Sound = "falling"
	}

	return p.sendNotification(req)
}

func (p *PushoverNotifier) NotifyRunFailed(summary *models.RunSummary, runErr error) error {
	if !p.enabled {
		return nil
	}

	req := p.newRequest(summary)
	req.Title = p.title("Sync Failed")
	req.Message = p.buildSummaryMessage(summary, runErr)
	req.Priority = max(req.Priority, 1)
	req.Sound = "siren"

	return p.sendNotification(req)
}

func (p *PushoverNotifier) newRequest(summary *models.RunSummary) pushoverRequest {
	timestamp := time.Now()
	if summary != nil && !summary.CompletedAt.IsZero() {
		timestamp = summary.CompletedAt
	}
	return pushoverRequest{
		Token:     p.config.Token,
		User:      p.config.User,
		Priority:  p.config.Priority,
		Device:    p.config.Device,
		Timestamp: timestamp.Unix(),
	}
}

func (p *PushoverNotifier) title(status string) string {
	if p.hostname == "" {
		return "drivesync: " + status
	}
	return fmt.Sprintf("drivesync@%s: %s", p.hostname, status)
}

func (p *PushoverNotifier) sendNotification(req pushoverRequest) error {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal pushover request: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", "drivesync/1.0")

	slog.Debug("sending pushover notification",
		"title", req.Title,
		"priority", req.Priority)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send pushover notification: %w", err)
	}
	defer resp.Body.Close()

	var pushoverResp pushoverResponse
	if err := json.NewDecoder(resp.Body).Decode(&pushoverResp); err != nil {
		return fmt.Errorf("failed to decode pushover response: %w", err)
	}

	if pushoverResp.Status != 1 {
		return fmt.Errorf("pushover API error: %s", strings.Join(pushoverResp.Errors, ", "))
	}

	slog.Info("pushover notification sent successfully", "request_id", pushoverResp.Request)

	return nil
}

func (p *PushoverNotifier) buildSummaryMessage(summary *models.RunSummary, runErr error) string {
	var msg strings.Builder

	if runErr != nil {
		msg.WriteString(fmt.Sprintf("Error: %s\n", runErr))
	}
	if summary == nil {
		return strings.TrimSuffix(msg.String(), "\n")
	}

	msg.WriteString(fmt.Sprintf("Jobs: %d done, %d skipped, %d failed\n",
		summary.Count(models.JobStatusDone),
		summary.Count(models.JobStatusSkipped),
		summary.Count(models.JobStatusFailed)))

	for _, job := range summary.Jobs {
		if job.Status != models.JobStatusFailed {
			continue
		}
		msg.WriteString(fmt.Sprintf("Failed: %s (%d/%d pairs)\n", job.JobID, job.PairsFailed, job.PairsTotal))
	}

	if transferred := summary.Transferred(); transferred > 0 {
		msg.WriteString(fmt.Sprintf("Transferred: %s\n", models.FormatBytes(transferred)))
	}

	if d := summary.Duration(); d > 0 {
		msg.WriteString(fmt.Sprintf("Duration: %s\n", d.Round(time.Second)))
	}

	if summary.DryRun {
		msg.WriteString("Dry run: no files were changed\n")
	}

	msg.WriteString(fmt.Sprintf("Run ID: %s", summary.RunID))

	return msg.String()
}
