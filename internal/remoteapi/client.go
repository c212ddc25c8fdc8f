package remoteapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/angeloszaimis/balancer-pools/internal/balancer"
)

const clientTimeout = 30 * time.Second

// faultUnknownPool is the fault code the control plane uses for operations
// on pools it has never heard of.
const faultUnknownPool = "unknown-pool"

// Client speaks the control plane's administrative HTTP API: each operation
// is a POST of a JSON body to <endpoint>/<method> under basic auth. Domain
// faults come back as a JSON error envelope; the unknown-pool code is
// translated to balancer.ErrPoolNotFound so callers never inspect fault
// text. Each Backend owns its own Client.
type Client struct {
	endpoint string
	user     string
	password string
	http     *http.Client
}

func NewClient(endpoint, user, password string) *Client {
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		user:     user,
		password: password,
		http:     &http.Client{Timeout: clientTimeout},
	}
}

type nodeRequest struct {
	Pools []string   `json:"pools"`
	Nodes [][]string `json:"nodes,omitempty"`
}

type nodesResponse struct {
	Nodes [][]string `json:"nodes"`
}

type faultResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) AddNodes(pools []string, nodes [][]string) error {
	return c.call("addNodes", nodeRequest{Pools: pools, Nodes: nodes}, nil)
}

func (c *Client) AddPool(pools []string, nodes [][]string) error {
	return c.call("addPool", nodeRequest{Pools: pools, Nodes: nodes}, nil)
}

func (c *Client) DisableNodes(pools []string, nodes [][]string) error {
	return c.call("disableNodes", nodeRequest{Pools: pools, Nodes: nodes}, nil)
}

func (c *Client) RemoveNodes(pools []string, nodes [][]string) error {
	return c.call("removeNodes", nodeRequest{Pools: pools, Nodes: nodes}, nil)
}

// GetNodes returns the membership of the first requested pool; the response
// mirrors the request's array-of-arrays shape.
func (c *Client) GetNodes(pools []string) ([]string, error) {
	var resp nodesResponse
	if err := c.call("getNodes", nodeRequest{Pools: pools}, &resp); err != nil {
		return nil, err
	}

	if len(resp.Nodes) == 0 {
		return nil, nil
	}

	return resp.Nodes[0], nil
}

func (c *Client) DeletePool(pools []string) error {
	return c.call("deletePool", nodeRequest{Pools: pools}, nil)
}

func (c *Client) call(method string, reqBody any, out any) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("%s: encoding request: %w", method, err)
	}

	req, err := http.NewRequest(http.MethodPost, c.endpoint+"/"+method, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%s: building request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.user, c.password)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: reading response: %w", method, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var fault faultResponse
		if json.Unmarshal(body, &fault) == nil && fault.Error.Code == faultUnknownPool {
			return fmt.Errorf("%s: %w", method, balancer.ErrPoolNotFound)
		}
		return fmt.Errorf("%s: remote API returned %s", method, resp.Status)
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("%s: decoding response: %w", method, err)
		}
	}

	return nil
}
