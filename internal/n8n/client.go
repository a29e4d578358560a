// Package n8n is a client for the subset of the n8n public REST API used to
// read workflows, write them back and manage tags.
package n8n

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"slices"

	"github.com/agentstation/flowtag/internal/transport"
	"github.com/agentstation/flowtag/pkg/constants"
	"github.com/agentstation/flowtag/pkg/errors"
)

// Client talks to a single n8n instance.
type Client struct {
	t *transport.Client
}

// New creates a client for the instance at baseURL authenticated by apiKey.
func New(baseURL, apiKey string, opts ...transport.Option) *Client {
	return &Client{t: transport.New(baseURL, apiKey, transport.N8NAuth(), opts...)}
}

// BaseURL returns the instance URL.
func (c *Client) BaseURL() string {
	return c.t.BaseURL()
}

// GetWorkflow fetches a workflow. Any status other than 200 is an *errors.APIError.
func (c *Client) GetWorkflow(ctx context.Context, id string) (*Workflow, error) {
	var wf Workflow
	if err := c.call(ctx, http.MethodGet, "/workflows/"+url.PathEscape(id), nil, &wf, http.StatusOK); err != nil {
		return nil, err
	}
	return &wf, nil
}

// UpdateWorkflow replaces a workflow with payload. A 200 is success
// whatever the body holds; any other status is an *errors.APIError.
func (c *Client) UpdateWorkflow(ctx context.Context, id string, payload any) error {
	return c.call(ctx, http.MethodPut, "/workflows/"+url.PathEscape(id), payload, nil, http.StatusOK)
}

type tagPage struct {
	Data       []Tag  `json:"data"`
	NextCursor string `json:"nextCursor"`
}

// ListTags returns every tag, following pagination cursors.
// Servers answering with a bare array are accepted too.
func (c *Client) ListTags(ctx context.Context) ([]Tag, error) {
	var all []Tag
	cursor := ""
	for {
		path := "/tags"
		if cursor != "" {
			path += "?cursor=" + url.QueryEscape(cursor)
		}

		var raw json.RawMessage
		if err := c.call(ctx, http.MethodGet, path, nil, &raw, http.StatusOK); err != nil {
			return nil, err
		}

		var bare []Tag
		if err := json.Unmarshal(raw, &bare); err == nil {
			return append(all, bare...), nil
		}

		var page tagPage
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, errors.WrapParse("json", "tags", err)
		}
		all = append(all, page.Data...)
		if page.NextCursor == "" || page.NextCursor == cursor {
			return all, nil
		}
		cursor = page.NextCursor
	}
}

// CreateTag creates a tag named name.
func (c *Client) CreateTag(ctx context.Context, name string) (*Tag, error) {
	var tag Tag
	body := map[string]string{"name": name}
	if err := c.call(ctx, http.MethodPost, "/tags", body, &tag, http.StatusOK, http.StatusCreated); err != nil {
		return nil, err
	}
	return &tag, nil
}

// GetTag fetches a single tag.
func (c *Client) GetTag(ctx context.Context, id string) (*Tag, error) {
	var tag Tag
	if err := c.call(ctx, http.MethodGet, "/tags/"+url.PathEscape(id), nil, &tag, http.StatusOK); err != nil {
		return nil, err
	}
	return &tag, nil
}

// RenameTag changes a tag's name.
func (c *Client) RenameTag(ctx context.Context, id, name string) (*Tag, error) {
	var tag Tag
	body := map[string]string{"name": name}
	if err := c.call(ctx, http.MethodPatch, "/tags/"+url.PathEscape(id), body, &tag, http.StatusOK); err != nil {
		return nil, err
	}
	return &tag, nil
}

// DeleteTag removes a tag.
func (c *Client) DeleteTag(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, "/tags/"+url.PathEscape(id), nil, nil, http.StatusOK, http.StatusNoContent)
}

// call sends a request below the API prefix and decodes the response when
// the status is one of ok.
func (c *Client) call(ctx context.Context, method, path string, body, target any, ok ...int) error {
	resp, err := c.t.Request(ctx, method, constants.APIPathPrefix+path, body)
	if err != nil {
		return err
	}

	data, err := transport.ReadBody(resp)
	if err != nil {
		return err
	}

	if !slices.Contains(ok, resp.StatusCode) {
		return &errors.APIError{
			Endpoint:   method + " " + constants.APIPathPrefix + path,
			StatusCode: resp.StatusCode,
			Message:    string(data),
		}
	}

	if target == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return errors.WrapParse("json", path, err)
	}
	return nil
}
