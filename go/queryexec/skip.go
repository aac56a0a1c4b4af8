// Copyright 2025 StratoDoc, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package queryexec

import (
	"context"
	"fmt"

	"github.com/stratodoc/stratodoc/go/elements"
)

const opOffset = "offset"

// computeSkip is the compute variant of the skip/offset operator. It drains
// its source in batches and discards leading elements while the remaining
// offset is positive; resume goes through SerializeState.
type computeSkip struct {
	source    Component
	remaining int64
}

// NewComputeSkip creates a compute skip operator over the source produced by
// factory. token is a structured {"SkipCount", "SourceToken"} element, or
// nil for a fresh query. A resumed SkipCount larger than offset is rejected
// as malformed: such a token belongs to a structurally different query.
func NewComputeSkip(ctx context.Context, offset int64, token elements.Element, factory SourceFactory) (Component, error) {
	if offset < 0 {
		return nil, fmt.Errorf("offset count must be non-negative, got %d", offset)
	}

	remaining := offset
	var sourceToken elements.Element
	if token != nil {
		obj, err := tokenObject(opOffset, token)
		if err != nil {
			return nil, err
		}
		remaining, err = tokenCount(opOffset, fieldSkipCount, obj, offset)
		if err != nil {
			return nil, err
		}
		sourceToken, err = tokenMember(opOffset, fieldSourceToken, obj)
		if err != nil {
			return nil, err
		}
	}

	source, err := factory(ctx, sourceToken)
	if err != nil {
		return nil, err
	}
	return &computeSkip{source: source, remaining: remaining}, nil
}

func (c *computeSkip) Drain(ctx context.Context, maxItems int) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	page, err := c.source.Drain(ctx, maxItems)
	if err != nil {
		return nil, err
	}
	if !page.Succeeded() {
		return page, nil
	}

	drop := min(c.remaining, int64(len(page.Elements)))
	c.remaining -= drop

	out := *page
	out.Elements = page.Elements[drop:]
	return &out, nil
}

func (c *computeSkip) SerializeState() (elements.Element, error) {
	sourceToken, err := c.source.SerializeState()
	if err != nil {
		return nil, err
	}
	return elements.NewObject(
		elements.Member{Name: fieldSkipCount, Value: elements.Number(c.remaining)},
		elements.Member{Name: fieldSourceToken, Value: sourceToken},
	), nil
}

func (c *computeSkip) IsDone() bool {
	return c.source.IsDone()
}

// clientSkip is the legacy string-token variant of the skip/offset operator.
// A fresh client skip drains fully and rewrites the page-level token for the
// legacy string channel, but the resume path was never implemented in this
// code path: construction from a token validates it and then fails with
// UnsupportedOperation, and SerializeState fails the same way.
type clientSkip struct {
	source    Component
	remaining int64
}

// NewClientSkip creates a client skip operator. token must be empty; a
// well-formed non-empty token yields an UnsupportedOperation error while a
// corrupt one yields MalformedContinuationToken, so callers can tell the
// feature gap from token damage.
func NewClientSkip(ctx context.Context, offset int64, token string, factory StringSourceFactory) (Component, error) {
	if offset < 0 {
		return nil, fmt.Errorf("offset count must be non-negative, got %d", offset)
	}

	if !isEmptyToken(token) {
		var parsed clientOffsetToken
		if err := decodeClientToken(opOffset, token, &parsed); err != nil {
			return nil, err
		}
		if _, err := clientCount(opOffset, "offset", parsed.Offset, offset); err != nil {
			return nil, err
		}
		return nil, NewUnsupportedOperationError("%s: resuming a client offset query is not supported", opOffset)
	}

	source, err := factory(ctx, "")
	if err != nil {
		return nil, err
	}
	return &clientSkip{source: source, remaining: offset}, nil
}

func (c *clientSkip) Drain(ctx context.Context, maxItems int) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	page, err := c.source.Drain(ctx, maxItems)
	if err != nil {
		return nil, err
	}
	if !page.Succeeded() {
		return page, nil
	}

	drop := min(c.remaining, int64(len(page.Elements)))
	c.remaining -= drop

	out := *page
	out.Elements = page.Elements[drop:]
	if page.ContinuationToken != "" {
		offset := float64(c.remaining)
		token, err := encodeClientToken(clientOffsetToken{
			Offset:      &offset,
			SourceToken: &page.ContinuationToken,
		})
		if err != nil {
			return nil, err
		}
		out.ContinuationToken = token
	}
	return &out, nil
}

func (c *clientSkip) SerializeState() (elements.Element, error) {
	return nil, NewUnsupportedOperationError("%s: client offset queries do not support state serialization", opOffset)
}

func (c *clientSkip) IsDone() bool {
	return c.source.IsDone()
}
