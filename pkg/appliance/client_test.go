package appliance

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/x1thexxx-lgtm/goserials/pkg/config"
	"github.com/x1thexxx-lgtm/goserials/pkg/inputs"
)

var testCred = inputs.Credential{Username: "admin", Password: "s3cret"}

func testAPIConfig() config.APIConfig {
	return config.APIConfig{
		Port:               443,
		EndpointPath:       "/api/v1/systeminfo/?format=json",
		SerialField:        "sn",
		TimeoutMS:          2000,
		InsecureSkipVerify: true,
	}
}

// newTestServer starts a TLS server with a self-signed certificate, which the
// client must accept when insecure_skip_verify is on.
func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, string) {
	t.Helper()
	srv := httptest.NewTLSServer(handler)
	t.Cleanup(srv.Close)
	return srv, strings.TrimPrefix(srv.URL, "https://")
}

func fetchErr(t *testing.T, err error) *FetchError {
	t.Helper()
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError, got %T: %v", err, err)
	}
	return fe
}

func TestFetchSerialSuccess(t *testing.T) {
	_, target := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/systeminfo/" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("format") != "json" {
			t.Errorf("format query missing, got %q", r.URL.RawQuery)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "admin" || pass != "s3cret" {
			t.Errorf("basic auth = %q/%q (%v)", user, pass, ok)
		}
		w.Write([]byte(`{"model":"X-1000","sn":"FAC1234567"}`))
	})

	client := NewClient(testAPIConfig())
	serial, err := client.FetchSerial(context.Background(), target, testCred)
	if err != nil {
		t.Fatalf("FetchSerial: %v", err)
	}
	if serial != "FAC1234567" {
		t.Fatalf("serial = %q, want FAC1234567", serial)
	}
}

func TestFetchSerialNumericField(t *testing.T) {
	_, target := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"sn": 9081726354}`))
	})
	client := NewClient(testAPIConfig())
	serial, err := client.FetchSerial(context.Background(), target, testCred)
	if err != nil {
		t.Fatalf("FetchSerial: %v", err)
	}
	if serial == "" {
		t.Fatal("expected non-empty serial for numeric field")
	}
}

func TestFetchSerialAuthRejected(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		_, target := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})
		client := NewClient(testAPIConfig())
		_, err := client.FetchSerial(context.Background(), target, testCred)
		fe := fetchErr(t, err)
		if fe.Kind != KindAuth {
			t.Fatalf("status %d: kind = %v, want KindAuth", status, fe.Kind)
		}
		if fe.Status != status {
			t.Fatalf("recorded status = %d, want %d", fe.Status, status)
		}
	}
}

func TestFetchSerialOtherHTTPStatus(t *testing.T) {
	_, target := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	client := NewClient(testAPIConfig())
	_, err := client.FetchSerial(context.Background(), target, testCred)
	fe := fetchErr(t, err)
	if fe.Kind != KindHTTP {
		t.Fatalf("kind = %v, want KindHTTP", fe.Kind)
	}
	if got := fe.Marker(); got != "ERROR: HTTP 503" {
		t.Fatalf("marker = %q", got)
	}
}

func TestFetchSerialParseFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing field", `{"model":"X-1000"}`},
		{"null field", `{"sn":null}`},
		{"empty field", `{"sn":"  "}`},
		{"not json", `<html>login required</html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, target := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})
			client := NewClient(testAPIConfig())
			_, err := client.FetchSerial(context.Background(), target, testCred)
			fe := fetchErr(t, err)
			if fe.Kind != KindParse {
				t.Fatalf("kind = %v, want KindParse", fe.Kind)
			}
			if got := fe.Marker(); got != "SN_NOT_FOUND" {
				t.Fatalf("marker = %q", got)
			}
		})
	}
}

func TestFetchSerialConnectionRefused(t *testing.T) {
	srv, target := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	client := NewClient(testAPIConfig())
	_, err := client.FetchSerial(context.Background(), target, testCred)
	fe := fetchErr(t, err)
	if fe.Kind != KindConnectivity {
		t.Fatalf("kind = %v, want KindConnectivity", fe.Kind)
	}
	if got := fe.Marker(); got != "ERROR: CONNECTION FAILED" {
		t.Fatalf("marker = %q", got)
	}
}

func TestFetchSerialTimeout(t *testing.T) {
	_, target := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	})
	cfg := testAPIConfig()
	cfg.TimeoutMS = 100
	client := NewClient(cfg)

	start := time.Now()
	_, err := client.FetchSerial(context.Background(), target, testCred)
	fe := fetchErr(t, err)
	if fe.Kind != KindConnectivity {
		t.Fatalf("kind = %v, want KindConnectivity", fe.Kind)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("timeout not enforced, took %v", elapsed)
	}
}

func TestEndpointURL(t *testing.T) {
	tests := []struct {
		port   int
		target string
		want   string
	}{
		{443, "10.0.0.1", "https://10.0.0.1/api/v1/systeminfo/?format=json"},
		{8443, "10.0.0.1", "https://10.0.0.1:8443/api/v1/systeminfo/?format=json"},
		{8443, "10.0.0.1:9443", "https://10.0.0.1:9443/api/v1/systeminfo/?format=json"},
		{0, "appliance.example.com", "https://appliance.example.com/api/v1/systeminfo/?format=json"},
	}
	for _, tt := range tests {
		cfg := testAPIConfig()
		cfg.Port = tt.port
		client := NewClient(cfg)
		if got := client.endpointURL(tt.target); got != tt.want {
			t.Errorf("endpointURL(%q) with port %d = %q, want %q", tt.target, tt.port, got, tt.want)
		}
	}
}
