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

// TakeKind records which user-facing clause produced a take operator. The
// two flavors are behaviorally identical; the kind only selects the client
// token field name ("limit" vs "top"), which must be preserved for wire
// compatibility.
type TakeKind int

const (
	TakeKindLimit = TakeKind(iota)
	TakeKindTop
)

// String returns the clause name.
func (k TakeKind) String() string {
	switch k {
	case TakeKindLimit:
		return "limit"
	case TakeKindTop:
		return "top"
	}
	return "<unknown>"
}

// computeTake is the compute variant of the take (limit/top) operator.
// Pages it returns never carry a page-level continuation token: the compute
// path resumes exclusively through SerializeState. The split between the two
// continuation channels is deliberate and must be preserved.
type computeTake struct {
	source    Component
	remaining int64
}

// NewComputeTake creates a compute take operator. token is a structured
// {"TakeCount", "SourceToken"} element, or nil for a fresh query. Both
// clause flavors share this encoding. A resumed TakeCount larger than count
// is rejected as malformed.
func NewComputeTake(ctx context.Context, count int64, token elements.Element, factory SourceFactory) (Component, error) {
	if count < 0 {
		return nil, fmt.Errorf("take count must be non-negative, got %d", count)
	}

	remaining := count
	var sourceToken elements.Element
	if token != nil {
		obj, err := tokenObject("take", token)
		if err != nil {
			return nil, err
		}
		remaining, err = tokenCount("take", fieldTakeCount, obj, count)
		if err != nil {
			return nil, err
		}
		sourceToken, err = tokenMember("take", fieldSourceToken, obj)
		if err != nil {
			return nil, err
		}
	}

	source, err := factory(ctx, sourceToken)
	if err != nil {
		return nil, err
	}
	return &computeTake{source: source, remaining: remaining}, nil
}

func (c *computeTake) Drain(ctx context.Context, maxItems int) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	request := maxItems
	if int64(request) > c.remaining {
		request = int(c.remaining)
	}
	page, err := c.source.Drain(ctx, request)
	if err != nil {
		return nil, err
	}
	if !page.Succeeded() {
		return page, nil
	}

	take := min(c.remaining, int64(len(page.Elements)))
	c.remaining -= take

	out := *page
	out.Elements = page.Elements[:take]
	out.ContinuationToken = ""
	return &out, nil
}

func (c *computeTake) SerializeState() (elements.Element, error) {
	sourceToken, err := c.source.SerializeState()
	if err != nil {
		return nil, err
	}
	return elements.NewObject(
		elements.Member{Name: fieldTakeCount, Value: elements.Number(c.remaining)},
		elements.Member{Name: fieldSourceToken, Value: sourceToken},
	), nil
}

func (c *computeTake) IsDone() bool {
	return c.remaining == 0 || c.source.IsDone()
}

// clientTake is the legacy string-token variant of the take operator. It
// resumes from flat string tokens and rewrites the page-level token on every
// drain, but never implemented SerializeState.
type clientTake struct {
	source    Component
	kind      TakeKind
	remaining int64
}

// NewClientTake creates a client take operator. token is a flat string token
// whose count field is selected by kind ("limit" or "top"); a token of the
// other flavor is rejected as malformed. Empty or whitespace token means a
// fresh query.
func NewClientTake(ctx context.Context, count int64, kind TakeKind, token string, factory StringSourceFactory) (Component, error) {
	if count < 0 {
		return nil, fmt.Errorf("take count must be non-negative, got %d", count)
	}

	remaining := count
	sourceToken := ""
	if !isEmptyToken(token) {
		var err error
		remaining, sourceToken, err = parseClientTakeToken(kind, token, count)
		if err != nil {
			return nil, err
		}
	}

	source, err := factory(ctx, sourceToken)
	if err != nil {
		return nil, err
	}
	return &clientTake{source: source, kind: kind, remaining: remaining}, nil
}

func parseClientTakeToken(kind TakeKind, token string, configured int64) (int64, string, error) {
	operator := kind.String()
	switch kind {
	case TakeKindLimit:
		var parsed clientLimitToken
		if err := decodeClientToken(operator, token, &parsed); err != nil {
			return 0, "", err
		}
		remaining, err := clientCount(operator, "limit", parsed.Limit, configured)
		if err != nil {
			return 0, "", err
		}
		return remaining, sourceTokenString(parsed.SourceToken), nil
	case TakeKindTop:
		var parsed clientTopToken
		if err := decodeClientToken(operator, token, &parsed); err != nil {
			return 0, "", err
		}
		remaining, err := clientCount(operator, "top", parsed.Top, configured)
		if err != nil {
			return 0, "", err
		}
		return remaining, sourceTokenString(parsed.SourceToken), nil
	}
	return 0, "", fmt.Errorf("unknown take kind %d", kind)
}

func (c *clientTake) Drain(ctx context.Context, maxItems int) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	request := maxItems
	if int64(request) > c.remaining {
		request = int(c.remaining)
	}
	page, err := c.source.Drain(ctx, request)
	if err != nil {
		return nil, err
	}
	if !page.Succeeded() {
		return page, nil
	}

	take := min(c.remaining, int64(len(page.Elements)))
	c.remaining -= take

	out := *page
	out.Elements = page.Elements[:take]
	out.ContinuationToken = ""
	if page.ContinuationToken != "" && c.remaining > 0 {
		token, err := c.encodeToken(page.ContinuationToken)
		if err != nil {
			return nil, err
		}
		out.ContinuationToken = token
	}
	return &out, nil
}

func (c *clientTake) encodeToken(sourceToken string) (string, error) {
	count := float64(c.remaining)
	switch c.kind {
	case TakeKindLimit:
		return encodeClientToken(clientLimitToken{Limit: &count, SourceToken: &sourceToken})
	case TakeKindTop:
		return encodeClientToken(clientTopToken{Top: &count, SourceToken: &sourceToken})
	}
	return "", fmt.Errorf("unknown take kind %d", c.kind)
}

func (c *clientTake) SerializeState() (elements.Element, error) {
	return nil, NewUnsupportedOperationError("%s: client queries do not support state serialization", c.kind)
}

func (c *clientTake) IsDone() bool {
	return c.remaining == 0 || c.source.IsDone()
}
