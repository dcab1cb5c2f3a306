package exif

import (
	"context"
	"fmt"
	"time"

	exiftool "github.com/barasher/go-exiftool"

	"shoebox/internal/geo"
)

// Tool abstracts the exiftool process for testability.
type Tool interface {
	ExtractMetadata(paths ...string) []exiftool.FileMetadata
	WriteMetadata(metas []exiftool.FileMetadata)
	Close() error
}

// Option configures the client.
type Option func(*Client)

// WithTool injects a custom tool (primarily for tests).
func WithTool(tool Tool) Option {
	return func(c *Client) {
		if tool != nil {
			c.tool = tool
		}
	}
}

// Client wraps exiftool interactions. One long-lived process serves every
// extraction and write-back.
type Client struct {
	tool     Tool
	attempts int
	backoff  time.Duration
}

// New constructs an exiftool client. Extraction and write-back retry up to
// attempts times with a fixed backoff between tries.
func New(binary string, attempts, backoffMS int, opts ...Option) (*Client, error) {
	if attempts < 1 {
		attempts = 1
	}
	client := &Client{
		attempts: attempts,
		backoff:  time.Duration(backoffMS) * time.Millisecond,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.tool == nil {
		var toolOpts []func(*exiftool.Exiftool) error
		if binary != "" {
			toolOpts = append(toolOpts, exiftool.SetExiftoolBinaryPath(binary))
		}
		tool, err := exiftool.NewExiftool(toolOpts...)
		if err != nil {
			return nil, fmt.Errorf("start exiftool: %w", err)
		}
		client.tool = tool
	}
	return client, nil
}

// Close stops the underlying exiftool process.
func (c *Client) Close() error {
	if c.tool == nil {
		return nil
	}
	return c.tool.Close()
}

// Extract reads the embedded metadata of one file.
func (c *Client) Extract(ctx context.Context, path string) (Raw, error) {
	var raw Raw
	err := c.withRetry(ctx, func() error {
		metas := c.tool.ExtractMetadata(path)
		if len(metas) == 0 {
			return fmt.Errorf("exiftool returned nothing for %s", path)
		}
		if metas[0].Err != nil {
			return fmt.Errorf("extract %s: %w", path, metas[0].Err)
		}
		raw = Raw{meta: metas[0]}
		return nil
	})
	if err != nil {
		return Raw{}, err
	}
	return raw, nil
}

// Embed writes the canonical timestamp into the standard date fields and, when
// a point is given, the four discrete GPS fields. Absent values leave the
// corresponding fields untouched.
func (c *Client) Embed(ctx context.Context, path, canonical string, point *geo.Point) error {
	fields := map[string]interface{}{}
	if canonical != "" {
		fields[fieldDateTimeOriginal] = canonical
		fields[fieldCreateDate] = canonical
		fields[fieldModifyDate] = canonical
	}
	if point != nil {
		fields[fieldGPSLatitude] = point.Latitude
		fields[fieldGPSLatitudeRef] = point.LatitudeRef
		fields[fieldGPSLongitude] = point.Longitude
		fields[fieldGPSLongitudeRef] = point.LongitudeRef
	}
	if len(fields) == 0 {
		return nil
	}

	return c.withRetry(ctx, func() error {
		metas := []exiftool.FileMetadata{{File: path, Fields: fields}}
		c.tool.WriteMetadata(metas)
		if metas[0].Err != nil {
			return fmt.Errorf("write metadata %s: %w", path, metas[0].Err)
		}
		return nil
	})
}

func (c *Client) withRetry(ctx context.Context, operation func() error) error {
	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = operation()
		if lastErr == nil {
			return nil
		}
		if attempt == c.attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.backoff):
		}
	}
	return fmt.Errorf("after %d attempts: %w", c.attempts, lastErr)
}
