package outbound

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"net/url"
	"strings"
	"syscall"
)

// ErrorKind classifies why no HTTP response was obtained.
type ErrorKind string

const (
	KindDNS     ErrorKind = "dns"
	KindConnect ErrorKind = "connect"
	KindTLS     ErrorKind = "tls"
	KindTimeout ErrorKind = "timeout"
	KindRead    ErrorKind = "read"
	KindUnknown ErrorKind = "unknown"
)

// TransportError reports a request that produced no HTTP response.
type TransportError struct {
	Kind   ErrorKind
	Detail string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return string(e.Kind) + ": " + e.Detail
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func newTransportError(rawURL string, err error, fallback ErrorKind) *TransportError {
	kind := Classify(err)
	if kind == KindUnknown {
		kind = fallback
	}
	return &TransportError{Kind: kind, Detail: detail(err), URL: rawURL, Err: err}
}

// Classify maps a transport error to its kind.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindDNS
	}
	if isTLSError(err) {
		return KindTLS
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return KindConnect
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return KindConnect
	}
	return KindUnknown
}

func isTLSError(err error) bool {
	var (
		recordErr  tls.RecordHeaderError
		verifyErr  *tls.CertificateVerificationError
		alertErr   tls.AlertError
		authErr    x509.UnknownAuthorityError
		hostErr    x509.HostnameError
		invalidErr x509.CertificateInvalidError
	)
	switch {
	case errors.As(err, &recordErr),
		errors.As(err, &verifyErr),
		errors.As(err, &alertErr),
		errors.As(err, &authErr),
		errors.As(err, &hostErr),
		errors.As(err, &invalidErr):
		return true
	}
	return strings.Contains(err.Error(), "tls: ")
}

// detail strips the "Get \"url\":" prefix added by net/http.
func detail(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err.Error()
	}
	return err.Error()
}
