package telegram

import "net/http"

// NewClientAt builds a client against a test server.
func NewClientAt(token, baseURL string, httpc *http.Client) *Client {
	return newClient(token, baseURL, httpc)
}
