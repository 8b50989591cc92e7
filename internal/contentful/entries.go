package contentful

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// CreateEntry creates a new draft entry of the given content type.
func (c *Client) CreateEntry(ctx context.Context, contentType string, fields Fields) (*Entry, error) {
	var entry Entry
	headers := map[string]string{"X-Contentful-Content-Type": contentType}
	payload := map[string]any{"fields": fields}
	if err := c.doManagement(ctx, http.MethodPost, "/entries", headers, payload, &entry); err != nil {
		return nil, fmt.Errorf("creating %s entry: %w", contentType, err)
	}
	return &entry, nil
}

// GetEntry fetches the current (possibly draft) state of an entry,
// including its version counter. Mutating flows must always read fresh
// through here before writing.
func (c *Client) GetEntry(ctx context.Context, id string) (*Entry, error) {
	var entry Entry
	if err := c.doManagement(ctx, http.MethodGet, "/entries/"+id, nil, nil, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// UpdateEntry writes the entry's fields back, conditional on the version
// it was read at. A stale version yields ErrVersionConflict.
func (c *Client) UpdateEntry(ctx context.Context, entry *Entry) (*Entry, error) {
	headers := map[string]string{"X-Contentful-Version": strconv.Itoa(entry.Sys.Version)}
	payload := map[string]any{"fields": entry.Fields}
	var updated Entry
	if err := c.doManagement(ctx, http.MethodPut, "/entries/"+entry.Sys.ID, headers, payload, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// PublishEntry publishes the entry at the version it was last read or
// written at. Publishing is itself a versioned write and can 409.
func (c *Client) PublishEntry(ctx context.Context, entry *Entry) (*Entry, error) {
	headers := map[string]string{"X-Contentful-Version": strconv.Itoa(entry.Sys.Version)}
	var published Entry
	if err := c.doManagement(ctx, http.MethodPut, "/entries/"+entry.Sys.ID+"/published", headers, nil, &published); err != nil {
		return nil, err
	}
	return &published, nil
}

// QueryEntries runs a management search, e.g. to look up a newsletter
// subscriber by email. params uses the repository's query syntax
// ("content_type", "fields.email[match]", ...).
func (c *Client) QueryEntries(ctx context.Context, params url.Values) (*Collection, error) {
	var col Collection
	path := "/entries"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	if err := c.doManagement(ctx, http.MethodGet, path, nil, nil, &col); err != nil {
		return nil, err
	}
	return &col, nil
}

// GetPublishedEntries runs a delivery query over published entries.
func (c *Client) GetPublishedEntries(ctx context.Context, params url.Values) (*DeliveryCollection, error) {
	var col DeliveryCollection
	if err := c.doDelivery(ctx, "/entries", params, &col); err != nil {
		return nil, err
	}
	return &col, nil
}

// GetPublishedEntry fetches one published entry by id via the delivery API.
func (c *Client) GetPublishedEntry(ctx context.Context, id string) (*DeliveryEntry, error) {
	var entry DeliveryEntry
	if err := c.doDelivery(ctx, "/entries/"+id, nil, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}
