package upstream

import (
	"io"
	"net/http"
	"time"

	http_tls "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/sirupsen/logrus"
)

// newStealthClient builds an HTTP client whose TLS fingerprint matches a
// real browser. The upstream fronts a browser chat product and some CDN
// configurations reject the default Go TLS handshake.
//
// A zero timeout produces a client without an overall deadline, which is
// what the SSE stream needs.
func newStealthClient(timeout time.Duration) *http.Client {
	options := []tls_client.HttpClientOption{
		tls_client.WithClientProfile(profiles.Chrome_131),
		tls_client.WithRandomTLSExtensionOrder(),
		tls_client.WithNotFollowRedirects(),
	}
	if timeout > 0 {
		options = append(options, tls_client.WithTimeoutSeconds(int(timeout.Seconds())))
	}

	tlsClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
	if err != nil {
		logrus.WithError(err).Warn("Failed to create stealth HTTP client, falling back to standard client")
		return &http.Client{Timeout: timeout}
	}

	return &http.Client{
		Transport: &stealthTransport{client: tlsClient},
		Timeout:   timeout,
	}
}

// stealthTransport adapts a tls-client to the standard http.RoundTripper
// interface so the rest of the code keeps working with *http.Client.
type stealthTransport struct {
	client tls_client.HttpClient
}

func (t *stealthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body io.Reader
	if req.Body != nil {
		body = req.Body
	}

	tlsReq, err := http_tls.NewRequestWithContext(req.Context(), req.Method, req.URL.String(), body)
	if err != nil {
		return nil, err
	}
	for key, values := range req.Header {
		for _, value := range values {
			tlsReq.Header.Add(key, value)
		}
	}

	tlsResp, err := t.client.Do(tlsReq)
	if err != nil {
		return nil, err
	}

	return &http.Response{
		Status:        tlsResp.Status,
		StatusCode:    tlsResp.StatusCode,
		Proto:         tlsResp.Proto,
		ProtoMajor:    tlsResp.ProtoMajor,
		ProtoMinor:    tlsResp.ProtoMinor,
		Header:        http.Header(tlsResp.Header),
		Body:          tlsResp.Body,
		ContentLength: tlsResp.ContentLength,
		Request:       req,
	}, nil
}
