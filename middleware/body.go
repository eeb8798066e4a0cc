package middleware

import (
	"io"
	"net/http"
	"sync"
)

// maxDrain bounds how much of a discarded response body is read so the
// connection can be reused.
const maxDrain = 64 << 10

// hookBody runs hook once, after the wrapped body is closed.
type hookBody struct {
	io.ReadCloser
	once sync.Once
	hook func()
}

func (b *hookBody) Close() error {
	err := b.ReadCloser.Close()
	b.once.Do(b.hook)
	return err
}

// onClose arranges for hook to run when resp's body is closed. A response
// without a body runs hook immediately.
func onClose(resp *http.Response, hook func()) {
	if resp == nil || resp.Body == nil || resp.Body == http.NoBody {
		hook()
		return
	}
	resp.Body = &hookBody{ReadCloser: resp.Body, hook: hook}
}

// discard drains and closes a response the caller will never see.
func discard(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrain))
	_ = resp.Body.Close()
}

// redactURL renders u without user info for logs and span attributes.
func redactURL(req *http.Request) string {
	if req.URL == nil {
		return ""
	}
	return req.URL.Redacted()
}
