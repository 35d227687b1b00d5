// Package appliance talks to the vendor systeminfo API of one appliance at a
// time and extracts the serial number from its response.
package appliance

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/x1thexxx-lgtm/goserials/pkg/config"
	"github.com/x1thexxx-lgtm/goserials/pkg/inputs"
)

// Client queries the systeminfo endpoint on appliances.
type Client struct {
	cfg        config.APIConfig
	httpClient *http.Client
}

// NewClient builds a client from the api config section. When the config asks
// for it, certificate verification is disabled: fleets of appliances present
// self-signed certificates and the trade-off is accepted explicitly here.
func NewClient(cfg config.APIConfig) *Client {
	timeout := time.Duration(cfg.TimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify},
			},
		},
	}
}

// FetchSerial performs one authenticated GET against the target and returns
// the serial number field from the JSON body. Every failure is a *FetchError;
// no retries are attempted.
func (c *Client) FetchSerial(ctx context.Context, target string, cred inputs.Credential) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpointURL(target), nil)
	if err != nil {
		return "", &FetchError{Kind: KindConnectivity, Err: err}
	}
	req.SetBasicAuth(cred.Username, cred.Password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &FetchError{Kind: KindConnectivity, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", &FetchError{Kind: KindAuth, Status: resp.StatusCode}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return "", &FetchError{Kind: KindHTTP, Status: resp.StatusCode}
	}

	// UseNumber keeps numeric serials as their literal digits.
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var payload map[string]interface{}
	if err := dec.Decode(&payload); err != nil {
		return "", &FetchError{Kind: KindParse, Status: resp.StatusCode, Err: err}
	}
	raw, ok := payload[c.cfg.SerialField]
	if !ok || raw == nil {
		return "", &FetchError{Kind: KindParse, Status: resp.StatusCode}
	}
	serial := strings.TrimSpace(fmt.Sprint(raw))
	if serial == "" {
		return "", &FetchError{Kind: KindParse, Status: resp.StatusCode}
	}
	return serial, nil
}

func (c *Client) endpointURL(target string) string {
	host := target
	if c.cfg.Port != 0 && c.cfg.Port != 443 && !strings.Contains(target, ":") {
		host = fmt.Sprintf("%s:%d", target, c.cfg.Port)
	}
	return "https://" + host + c.cfg.EndpointPath
}
