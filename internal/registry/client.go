/*******************************************************************************
* Copyright (C) 2025 the Eclipse FA³ST Authors
*
* Permission is hereby granted, free of charge, to any person obtaining
* a copy of this software and associated documentation files (the
* "Software"), to deal in the Software without restriction, including
* without limitation the rights to use, copy, modify, merge, publish,
* distribute, sublicense, and/or sell copies of the Software, and to
* permit persons to whom the Software is furnished to do so, subject to
* the following conditions:
*
* The above copyright notice and this permission notice shall be
* included in all copies or substantial portions of the Software.
*
* THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
* EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
* MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND
* NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE
* LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION
* OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION
* WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
*
* SPDX-License-Identifier: MIT
******************************************************************************/

// Package registry implements the registry synchronization engine: a client
// for external shell and submodel registries, the entity-to-descriptor
// projection, and the lifecycle state machine keeping both sides converged.
package registry

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/carlos-schmidt/fa3st-service/internal/common"
	"github.com/carlos-schmidt/fa3st-service/internal/common/model"
)

const (
	shellDescriptorsPath    = "/shell-descriptors"
	submodelDescriptorsPath = "/submodel-descriptors"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// Client issues register, update and deregister calls against one registry
// base URL. It is stateless and never retries; a non-2xx response is a
// failure. Registry conflicts (409 on register, 404 on update or deregister)
// are reported as Conflict errors so callers can downgrade them to warnings.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for one registry.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the registry base URL this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// RegisterShellDescriptor creates the descriptor in the shell registry
func (c *Client) RegisterShellDescriptor(ctx context.Context, descriptor model.AssetAdministrationShellDescriptor) error {
	return c.do(ctx, http.MethodPost, c.baseURL+shellDescriptorsPath, descriptor)
}

// UpdateShellDescriptor replaces the descriptor stored for the given id
func (c *Client) UpdateShellDescriptor(ctx context.Context, id string, descriptor model.AssetAdministrationShellDescriptor) error {
	return c.do(ctx, http.MethodPut, c.baseURL+shellDescriptorsPath+"/"+common.EncodeString(id), descriptor)
}

// DeregisterShellDescriptor removes the descriptor for the given id
func (c *Client) DeregisterShellDescriptor(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.baseURL+shellDescriptorsPath+"/"+common.EncodeString(id), nil)
}

// RegisterSubmodelDescriptor creates the descriptor in the submodel registry
func (c *Client) RegisterSubmodelDescriptor(ctx context.Context, descriptor model.SubmodelDescriptor) error {
	return c.do(ctx, http.MethodPost, c.baseURL+submodelDescriptorsPath, descriptor)
}

// UpdateSubmodelDescriptor replaces the descriptor stored for the given id
func (c *Client) UpdateSubmodelDescriptor(ctx context.Context, id string, descriptor model.SubmodelDescriptor) error {
	return c.do(ctx, http.MethodPut, c.baseURL+submodelDescriptorsPath+"/"+common.EncodeString(id), descriptor)
}

// DeregisterSubmodelDescriptor removes the descriptor for the given id
func (c *Client) DeregisterSubmodelDescriptor(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.baseURL+submodelDescriptorsPath+"/"+common.EncodeString(id), nil)
}

func (c *Client) do(ctx context.Context, method string, url string, payload any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := jsonAPI.Marshal(payload)
		if err != nil {
			return fmt.Errorf("serialize descriptor: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("registry %s %s: %w", method, url, err)
	}
	defer resp.Body.Close()
	// response bodies are not interpreted, drain for connection reuse
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case method == http.MethodPost && resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("registry %s %s: %w", method, url, common.NewErrConflict(url))
	case method != http.MethodPost && resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("registry %s %s: %w", method, url, common.NewErrConflict(url))
	default:
		return fmt.Errorf("registry %s %s: unexpected status %d", method, url, resp.StatusCode)
	}
}
