package livereload

import (
	"bytes"
	"context"
	"io"
	"mime"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"strings"

	"go.trai.ch/pour/internal/core/ports"
	"go.trai.ch/zerr"
)

// scriptTag loads the client from the proxy itself.
const scriptTag = `<script async src="` + ClientPath + `"></script>`

type hostKey struct{}

// newProxy returns the reverse proxy in front of target. Responses are rewritten so the
// browser stays on the proxy: HTML gets the client script and upstream links point back
// at the proxy host.
func newProxy(target *url.URL, ws bool, logger ports.Logger) http.Handler {
	rp := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
			// Bodies are rewritten, so they must arrive uncompressed.
			pr.Out.Header.Del("Accept-Encoding")
		},
		ModifyResponse: func(resp *http.Response) error {
			return rewriteResponse(resp, target)
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Error(zerr.With(zerr.Wrap(err, "upstream request failed"), "url", r.URL.String()))
			w.WriteHeader(http.StatusBadGateway)
		},
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ws && isUpgrade(r) {
			http.Error(w, "websocket proxying is disabled", http.StatusNotImplemented)
			return
		}
		r = r.WithContext(context.WithValue(r.Context(), hostKey{}, r.Host))
		rp.ServeHTTP(w, r)
	})
}

func isUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

func rewriteResponse(resp *http.Response, target *url.URL) error {
	proxyHost, _ := resp.Request.Context().Value(hostKey{}).(string)

	if loc := resp.Header.Get("Location"); loc != "" && proxyHost != "" {
		resp.Header.Set("Location", rewriteHost(loc, target.Host, proxyHost))
	}

	if !hasBody(resp) || !isHTML(resp.Header.Get("Content-Type")) || resp.Header.Get("Content-Encoding") != "" {
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return zerr.Wrap(err, "failed to read upstream body")
	}

	if proxyHost != "" {
		body = []byte(rewriteHost(string(body), target.Host, proxyHost))
	}
	body = InjectScript(body)

	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))
	resp.Header.Set("Content-Length", strconv.Itoa(len(body)))
	return nil
}

// rewriteHost points protocol-relative and absolute upstream URLs at the proxy.
func rewriteHost(s, upstream, proxy string) string {
	s = strings.ReplaceAll(s, "https://"+upstream, "http://"+proxy)
	return strings.ReplaceAll(s, "//"+upstream, "//"+proxy)
}

// hasBody reports whether resp carries a body the browser will render.
func hasBody(resp *http.Response) bool {
	if resp.Request != nil && resp.Request.Method == http.MethodHead {
		return false
	}
	return resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusNotModified
}

func isHTML(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "text/html"
}

// InjectScript inserts the client script before the last </body>, or appends it when
// the document has none.
func InjectScript(body []byte) []byte {
	idx := lastIndexFold(body, closeBody)
	if idx < 0 {
		return append(body, scriptTag...)
	}

	out := make([]byte, 0, len(body)+len(scriptTag))
	out = append(out, body[:idx]...)
	out = append(out, scriptTag...)
	return append(out, body[idx:]...)
}

var closeBody = []byte("</body>")

func lastIndexFold(s, sep []byte) int {
	for i := len(s) - len(sep); i >= 0; i-- {
		if bytes.EqualFold(s[i:i+len(sep)], sep) {
			return i
		}
	}
	return -1
}
