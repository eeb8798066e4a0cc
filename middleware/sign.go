package middleware

import (
	"bytes"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/kbukum/fetchkit/fetch"
)

// Signature headers.
const (
	HeaderSignature          = "X-Signature"
	HeaderSignatureTimestamp = "X-Signature-Timestamp"
)

// ErrInvalidSignature is returned by VerifySignature on a mismatch.
var ErrInvalidSignature = errors.New("sign: invalid signature")

var errSignKey = errors.New("sign: key is required")

// SignConfig configures request signing.
type SignConfig struct {
	// Key is the shared MAC key, at most 64 bytes.
	Key string `yaml:"key" mapstructure:"key" validate:"max=64"`
	// Header carries the hex signature (default: X-Signature).
	Header string `yaml:"header" mapstructure:"header"`
}

func (c *SignConfig) applyDefaults() {
	if c.Header == "" {
		c.Header = HeaderSignature
	}
}

// Sign adds a keyed BLAKE2b-256 MAC over the method, request URI, a unix
// timestamp and the body. Requests with a body that cannot be replayed have
// it buffered so the signed bytes are the bytes sent.
func Sign(cfg SignConfig) fetch.Middleware {
	cfg.applyDefaults()
	return func(next fetch.Doer) fetch.Doer {
		return func(req *http.Request) (*http.Response, error) {
			if cfg.Key == "" {
				return nil, errSignKey
			}
			out := req.Clone(req.Context())
			body, err := snapshotBody(out)
			if err != nil {
				return nil, err
			}

			ts := strconv.FormatInt(time.Now().Unix(), 10)
			sig, err := signature([]byte(cfg.Key), out.Method, out.URL.RequestURI(), ts, body)
			if err != nil {
				return nil, err
			}
			out.Header.Set(HeaderSignatureTimestamp, ts)
			out.Header.Set(cfg.Header, sig)
			return next(out)
		}
	}
}

// VerifySignature checks a request signed by Sign. Requests whose
// timestamp is further than maxSkew from now are rejected; a non-positive
// maxSkew skips the check. The body is left readable.
func VerifySignature(cfg SignConfig, req *http.Request, maxSkew time.Duration) error {
	cfg.applyDefaults()
	if cfg.Key == "" {
		return errSignKey
	}

	ts := req.Header.Get(HeaderSignatureTimestamp)
	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad timestamp", ErrInvalidSignature)
	}
	if maxSkew > 0 {
		if skew := time.Since(time.Unix(unix, 0)); skew > maxSkew || skew < -maxSkew {
			return fmt.Errorf("%w: timestamp outside allowed skew", ErrInvalidSignature)
		}
	}

	body, err := snapshotBody(req)
	if err != nil {
		return err
	}
	want, err := signature([]byte(cfg.Key), req.Method, req.URL.RequestURI(), ts, body)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(want), []byte(req.Header.Get(cfg.Header))) != 1 {
		return ErrInvalidSignature
	}
	return nil
}

func signature(key []byte, method, uri, ts string, body []byte) (string, error) {
	h, err := blake2b.New256(key)
	if err != nil {
		return "", fmt.Errorf("sign: %w", err)
	}
	for _, part := range []string{method, uri, ts} {
		h.Write([]byte(part))
		h.Write([]byte{'\n'})
	}
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// snapshotBody returns the request body bytes and leaves req with a fresh,
// replayable body.
func snapshotBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}

	var (
		rc  io.ReadCloser
		err error
	)
	if req.GetBody != nil {
		rc, err = req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("sign: reading body: %w", err)
		}
	} else {
		rc = req.Body
	}
	body, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		return nil, fmt.Errorf("sign: reading body: %w", err)
	}

	req.Body = io.NopCloser(bytes.NewReader(body))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}
	req.ContentLength = int64(len(body))
	return body, nil
}
