package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"shoebox/internal/config"
)

const userAgent = "Shoebox-Go/0.1.0"

// Event identifies a workflow milestone worth pushing to the operator.
type Event string

const (
	// EventRunStarted fires when the queue transitions from idle to active.
	EventRunStarted Event = "run_started"
	// EventRunCompleted fires once every queued item has reached a terminal
	// status.
	EventRunCompleted Event = "run_completed"
	// EventReviewRequired fires when an item is routed to manual review.
	EventReviewRequired Event = "review_required"
	// EventError fires when a stage fails an item.
	EventError Event = "error"
	// EventTest exercises the delivery path end to end.
	EventTest Event = "test"
)

// Payload carries event-specific values keyed by well-known names.
type Payload map[string]any

// Service defines the notification surface exposed to workflow components.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		runs:     cfg.Notifications.Runs,
		review:   cfg.Notifications.Review,
		errors:   cfg.Notifications.Errors,
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	runs     bool
	review   bool
	errors   bool
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	switch event {
	case EventRunStarted:
		if !n.runs {
			return nil
		}
		return n.send(ctx, runStarted(payload))
	case EventRunCompleted:
		if !n.runs {
			return nil
		}
		return n.send(ctx, runCompleted(payload))
	case EventReviewRequired:
		if !n.review {
			return nil
		}
		return n.send(ctx, reviewRequired(payload))
	case EventError:
		if !n.errors {
			return nil
		}
		return n.send(ctx, stageError(payload))
	case EventTest:
		return n.send(ctx, message{
			title:    "Shoebox - Test",
			body:     "🧪 Notification system test",
			tags:     []string{"shoebox", "test"},
			priority: "low",
		})
	default:
		return nil
	}
}

func runStarted(payload Payload) message {
	count := intValue(payload, "count")
	return message{
		title: "Shoebox - Run Started",
		body:  fmt.Sprintf("Started processing queue with %d items", count),
		tags:  []string{"shoebox", "run", "started"},
	}
}

func runCompleted(payload Payload) message {
	processed := intValue(payload, "processed")
	failed := intValue(payload, "failed")
	duration := durationValue(payload, "duration").Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	durationText := duration.String()
	if duration == 0 {
		durationText = "0s"
	}

	title := "Shoebox - Run Complete"
	body := fmt.Sprintf("✅ Run complete: %d items processed in %s", processed, durationText)
	if failed > 0 {
		title = "Shoebox - Run Complete (with errors)"
		body = fmt.Sprintf("Run complete: %d succeeded, %d failed in %s", processed, failed, durationText)
	}
	return message{
		title: title,
		body:  body,
		tags:  []string{"shoebox", "run", "completed"},
	}
}

func reviewRequired(payload Payload) message {
	root := stringValue(payload, "root")
	reason := stringValue(payload, "reason")
	body := fmt.Sprintf("📋 Review needed: %s", root)
	if reason != "" {
		body = fmt.Sprintf("%s\n%s", body, reason)
	}
	return message{
		title: "Shoebox - Review Needed",
		body:  body,
		tags:  []string{"shoebox", "review"},
	}
}

func stageError(payload Payload) message {
	var builder strings.Builder
	builder.WriteString("❌ Error")
	if contextLabel := stringValue(payload, "context"); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	builder.WriteString(errorText(payload, "error"))
	return message{
		title:    "Shoebox - Error",
		body:     builder.String(),
		tags:     []string{"shoebox", "error", "alert"},
		priority: "high",
	}
}

func stringValue(payload Payload, key string) string {
	if payload == nil {
		return ""
	}
	if v, ok := payload[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func intValue(payload Payload, key string) int {
	if payload == nil {
		return 0
	}
	switch v := payload[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func durationValue(payload Payload, key string) time.Duration {
	if payload == nil {
		return 0
	}
	if v, ok := payload[key].(time.Duration); ok {
		return v
	}
	return 0
}

func errorText(payload Payload, key string) string {
	if payload == nil {
		return "unknown"
	}
	switch v := payload[key].(type) {
	case error:
		if v != nil {
			return strings.TrimSpace(v.Error())
		}
	case string:
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return "unknown"
}

func (n *ntfyService) send(ctx context.Context, data message) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
