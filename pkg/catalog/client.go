package catalog

import (
	"context"

	"github.com/chatbox-community/mcpsync/internal/transport"
)

// DefaultAPIURL is the ModelScope endpoint listing operational MCP services.
const DefaultAPIURL = "https://www.modelscope.cn/api/v1/mcp/services/operational"

// Client fetches the remote MCP service catalog.
type Client struct {
	transport *transport.Client
	apiURL    string
}

// NewClient creates a catalog client authenticating with the given API key.
// An empty apiURL selects the default ModelScope endpoint.
func NewClient(apiKey, apiURL string) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Client{
		transport: transport.NewBearer(apiKey),
		apiURL:    apiURL,
	}
}

// Fetch retrieves the raw service catalog. A network failure or a non-2xx
// status is returned as a transport error; the registry is never touched by
// this call.
func (c *Client) Fetch(ctx context.Context) (*RawCatalog, error) {
	resp, err := c.transport.Get(ctx, c.apiURL)
	if err != nil {
		return nil, err
	}

	var raw RawCatalog
	if err := transport.DecodeResponse(resp, &raw); err != nil {
		return nil, err
	}
	return &raw, nil
}
