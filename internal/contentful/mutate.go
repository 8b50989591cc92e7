package contentful

import (
	"context"
	"fmt"
)

// MutateEntry runs a read-modify-write-then-publish sequence against an
// entry. The update and publish phases each get an independent conflict
// budget of `attempts`; a conflict inside one phase never consumes the
// other's. Every retry re-reads the entry fresh so apply is re-applied
// on top of the advanced version.
func (c *Client) MutateEntry(ctx context.Context, id string, attempts int, apply func(Fields)) error {
	var updated *Entry

	err := WithConflictRetry(ctx, attempts, func(ctx context.Context) error {
		entry, err := c.GetEntry(ctx, id)
		if err != nil {
			return err
		}
		if entry.Fields == nil {
			entry.Fields = Fields{}
		}
		apply(entry.Fields)
		updated, err = c.UpdateEntry(ctx, entry)
		return err
	})
	if err != nil {
		return fmt.Errorf("updating entry %s: %w", id, err)
	}

	// Publish the version the update returned; a conflict here means yet
	// another writer got in between, so the retry re-reads fresh.
	first := true
	err = WithConflictRetry(ctx, attempts, func(ctx context.Context) error {
		entry := updated
		if !first {
			fresh, err := c.GetEntry(ctx, id)
			if err != nil {
				return err
			}
			entry = fresh
		}
		first = false
		_, err := c.PublishEntry(ctx, entry)
		return err
	})
	if err != nil {
		return fmt.Errorf("publishing entry %s: %w", id, err)
	}
	return nil
}
