// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubpeer

import (
	"context"

	"github.com/hahuyhoang411/tortured-phrase/pkg/types"
)

// FetchDetail resolves reference to a record id, fetches its detail page
// through the retry-wrapped session (no token needed on this endpoint),
// and returns the normalized record. The politeness delay runs after a
// successful fetch only; failures propagate immediately so the pipeline
// can record them without waiting.
func (c *Client) FetchDetail(ctx context.Context, reference string) (*types.PublicationDetail, error) {
	id, err := ExtractPublicationID(reference)
	if err != nil {
		return nil, err
	}

	resp, err := c.get(ctx, "/publications/"+id, nil, false)
	if err != nil {
		return nil, err
	}

	canonical := c.BaseURL() + "/publications/" + id
	detail, err := ParseDetailPage(string(resp.Body()), id, canonical, reference)
	if err != nil {
		return nil, err
	}

	if err := c.pause(ctx); err != nil {
		return nil, err
	}
	return detail, nil
}
