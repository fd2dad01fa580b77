package livereload_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pour/internal/adapters/livereload"
	"go.trai.ch/pour/internal/core/domain"
	"go.trai.ch/pour/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

const page = `<html><head><link rel="stylesheet" href="/library/css/style.css"></head>` +
	`<body><a href="%s/about">About</a></BODY></html>`

func TestInjectScript(t *testing.T) {
	tag := `<script async src="/__pour/client.js"></script>`

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"before body", "<body>hi</body>", "<body>hi" + tag + "</body>"},
		{"last body wins", "<body></body><!-- </body> --></body>", "<body></body><!-- </body> -->" + tag + "</body>"},
		{"upper case", "<BODY>x</BODY>", "<BODY>x" + tag + "</BODY>"},
		{"no body", "<p>fragment</p>", "<p>fragment</p>" + tag},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(livereload.InjectScript([]byte(tt.in))))
		})
	}
}

func TestStylesheetURL(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "theme", "public")

	u, ok := livereload.StylesheetURL(root, filepath.Join(root, "library", "css", "style.css"))
	assert.True(t, ok)
	assert.Equal(t, "/library/css/style.css", u)

	_, ok = livereload.StylesheetURL(root, filepath.Join(root, "index.php"))
	assert.False(t, ok)

	_, ok = livereload.StylesheetURL(root, filepath.Join(root, "..", "src", "style.css"))
	assert.False(t, ok)
}

type fixture struct {
	server   *livereload.Server
	upstream *httptest.Server
	docRoot  string
	base     string
	hosts    chan string
}

func startServer(t *testing.T, log *mocks.MockLogger, ws bool) *fixture {
	t.Helper()

	f := &fixture{hosts: make(chan string, 16)}
	f.upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.hosts <- r.Host
		switch r.URL.Path {
		case "/redirect":
			http.Redirect(w, r, f.upstream.URL+"/target", http.StatusFound)
		case "/cached":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusNotModified)
		case "/data.json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"body":"</body>"}`)
		default:
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = io.WriteString(w, strings.Replace(page, "%s", f.upstream.URL, 1))
		}
	}))
	t.Cleanup(f.upstream.Close)

	root := t.TempDir()
	f.docRoot = filepath.Join(root, "public")
	f.server = livereload.NewServer(log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- f.server.Serve(ctx, &domain.ServeConfig{
			Proxy:   f.upstream.URL,
			Listen:  "127.0.0.1:0",
			WS:      ws,
			DocRoot: "public",
		}, root)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})

	require.Eventually(t, func() bool { return f.server.Addr() != "" }, 5*time.Second, 10*time.Millisecond)
	f.base = "http://" + f.server.Addr()
	return f
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	client := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}
	resp, err := client.Get(url) //nolint:noctx // test request
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestServer_ProxiesHTMLWithClientScript(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any()).AnyTimes()

	f := startServer(t, log, true)

	resp, body := get(t, f.base+"/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `<script async src="/__pour/client.js"></script></BODY>`)
	assert.Equal(t, strconv.Itoa(len(body)), resp.Header.Get("Content-Length"))
	assert.Contains(t, body, `href="`+f.base+`/about"`)
	assert.NotContains(t, body, f.upstream.URL)

	upstreamHost := strings.TrimPrefix(f.upstream.URL, "http://")
	assert.Equal(t, upstreamHost, <-f.hosts)
}

func TestServer_LeavesOtherContentAlone(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any()).AnyTimes()

	f := startServer(t, log, true)

	_, body := get(t, f.base+"/data.json")
	assert.JSONEq(t, `{"body":"</body>"}`, body)
}

func head(t *testing.T, url string) *http.Response {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodHead, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return resp
}

func TestServer_BodylessResponsesAreNotRewritten(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any()).AnyTimes()

	f := startServer(t, log, true)

	t.Run("head", func(t *testing.T) {
		upstream := head(t, f.upstream.URL+"/")
		proxied := head(t, f.base+"/")
		assert.Equal(t, http.StatusOK, proxied.StatusCode)
		assert.NotEmpty(t, upstream.Header.Get("Content-Length"))
		assert.Equal(t, upstream.Header.Get("Content-Length"), proxied.Header.Get("Content-Length"))
	})

	t.Run("not modified", func(t *testing.T) {
		resp, body := get(t, f.base+"/cached")
		assert.Equal(t, http.StatusNotModified, resp.StatusCode)
		assert.Empty(t, body)
		assert.Empty(t, resp.Header.Get("Content-Length"))
	})
}

func TestServer_RewritesRedirects(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any()).AnyTimes()

	f := startServer(t, log, true)

	resp, _ := get(t, f.base+"/redirect")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, f.base+"/target", resp.Header.Get("Location"))
}

func TestServer_UpstreamDownReturnsBadGateway(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Error(gomock.Any()).Times(2)

	f := startServer(t, log, true)
	f.upstream.Close()

	resp, _ := get(t, f.base+"/")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	// The proxy keeps serving.
	resp, _ = get(t, f.base+"/again")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	resp, body := get(t, f.base+livereload.ClientPath)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "/__pour/ws")
}

func TestServer_WebsocketUpgradeDisabled(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any()).AnyTimes()

	f := startServer(t, log, false)

	wsURL := "ws://" + f.server.Addr() + "/sockjs"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
}

func readMessage(t *testing.T, conn *websocket.Conn) livereload.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg livereload.Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestServer_ReloadAndInject(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any()).AnyTimes()

	f := startServer(t, log, true)

	conn, resp, err := websocket.DefaultDialer.Dial("ws://"+f.server.Addr()+livereload.SocketPath, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	defer func() { _ = conn.Close() }()

	require.Eventually(t, func() bool { return f.server.Clients() == 1 }, 5*time.Second, 10*time.Millisecond)

	f.server.Reload()
	assert.Equal(t, livereload.Message{Type: livereload.TypeReload}, readMessage(t, conn))

	f.server.Inject([]string{filepath.Join(f.docRoot, "library", "css", "style.css")})
	assert.Equal(t,
		livereload.Message{Type: livereload.TypeInject, Path: "/library/css/style.css"},
		readMessage(t, conn),
	)

	f.server.Inject([]string{
		filepath.Join(f.docRoot, "library", "css", "style.css"),
		filepath.Join(f.docRoot, "index.php"),
	})
	assert.Equal(t, livereload.Message{Type: livereload.TypeReload}, readMessage(t, conn))
}

func TestServer_ListenFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)

	busy := httptest.NewServer(http.NotFoundHandler())
	defer busy.Close()

	server := livereload.NewServer(log)
	err := server.Serve(context.Background(), &domain.ServeConfig{
		Proxy:  "http://theme.test",
		Listen: strings.TrimPrefix(busy.URL, "http://"),
	}, t.TempDir())
	require.Error(t, err)
	require.ErrorContains(t, err, domain.ErrServerStartFailed.Error())
}

func TestServer_NoopWhenNotServing(t *testing.T) {
	ctrl := gomock.NewController(t)
	server := livereload.NewServer(mocks.NewMockLogger(ctrl))

	assert.NotPanics(t, func() {
		server.Reload()
		server.Inject([]string{"/theme/public/style.css"})
	})
	assert.Empty(t, server.Addr())
}
