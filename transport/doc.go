// Package transport builds the terminal executor of a client stack: an
// *http.Client with pooled connections, TLS and HTTP/2 configured from
// Config.
//
//	do, err := transport.NewDoer(transport.Config{Timeout: 10 * time.Second})
//	client := fetch.Build(fetch.Options{Middlewares: mws, Do: do})
package transport
