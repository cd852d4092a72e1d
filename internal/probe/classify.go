package probe

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"syscall"
)

const (
	ReasonHTTPStatus = "http_status"
	ReasonDNS        = "dns"
	ReasonTimeout    = "timeout"
	ReasonTLS        = "tls"
	ReasonConnection = "connection"
	ReasonRequest    = "request"
	ReasonTransport  = "transport"
)

// classifyError maps a transport failure to a coarse reason for logs.
// Every class is "unreachable"; the label only helps operators.
func classifyError(err error) string {
	if err == nil {
		return ""
	}

	var de *net.DNSError
	if errors.As(err, &de) {
		return ReasonDNS
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ReasonTimeout
	}

	var (
		cve *tls.CertificateVerificationError
		rhe tls.RecordHeaderError
		uae x509.UnknownAuthorityError
		hne x509.HostnameError
		cie x509.CertificateInvalidError
	)
	if errors.As(err, &cve) || errors.As(err, &rhe) || errors.As(err, &uae) ||
		errors.As(err, &hne) || errors.As(err, &cie) {
		return ReasonTLS
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return ReasonConnection
	}
	var oe *net.OpError
	if errors.As(err, &oe) && oe.Op == "dial" {
		return ReasonConnection
	}

	return ReasonTransport
}
