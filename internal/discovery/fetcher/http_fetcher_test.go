package fetcher

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcher_Fetch(t *testing.T) {
	var gotUA, gotEncoding, gotCustom string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotEncoding = r.Header.Get("Accept-Encoding")
		gotCustom = r.Header.Get("X-Test")
		_, _ = io.WriteString(w, `{"version":"0.5.1"}`)
	}))
	defer server.Close()

	f := NewHTTPFetcher(5*time.Second, WithHeader("X-Test", "yes"))
	body, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, `{"version":"0.5.1"}`, string(body))
	assert.Equal(t, DefaultUserAgent, gotUA)
	assert.Equal(t, "gzip, br", gotEncoding)
	assert.Equal(t, "yes", gotCustom)
}

func TestHTTPFetcher_StatusErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/created" {
			w.WriteHeader(http.StatusCreated)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := NewHTTPFetcher(5 * time.Second)
	_, err := f.Get(context.Background(), server.URL+"/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")

	resp, err := f.Get(context.Background(), server.URL+"/created")
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	_, err = f.Fetch(context.Background(), server.URL+"/created")
	assert.Error(t, err)
}

func TestHTTPFetcher_DecodesCompressedBodies(t *testing.T) {
	const page = "<p>10 Downing Street</p>"

	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	_, _ = zw.Write([]byte(page))
	require.NoError(t, zw.Close())

	var br bytes.Buffer
	bw := brotli.NewWriter(&br)
	_, _ = bw.Write([]byte(page))
	require.NoError(t, bw.Close())

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		switch r.URL.Path {
		case "/gzip":
			w.Header().Set("Content-Encoding", "gzip")
			_, _ = w.Write(gz.Bytes())
		case "/br":
			w.Header().Set("Content-Encoding", "br")
			_, _ = w.Write(br.Bytes())
		case "/zstd":
			w.Header().Set("Content-Encoding", "zstd")
			_, _ = w.Write([]byte("??"))
		}
	}))
	defer server.Close()

	f := NewHTTPFetcher(5 * time.Second)
	for _, path := range []string{"/gzip", "/br"} {
		resp, err := f.Get(context.Background(), server.URL+path)
		require.NoError(t, err, path)
		assert.Equal(t, page, string(resp.Body), path)
		assert.Equal(t, "text/html", resp.ContentType, path)
	}

	_, err := f.Get(context.Background(), server.URL+"/zstd")
	assert.Error(t, err)
}

func TestHTTPFetcher_MaxBytes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, strings.Repeat("x", 100))
	}))
	defer server.Close()

	f := NewHTTPFetcher(5*time.Second, WithMaxBytes(10))
	resp, err := f.Get(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Len(t, resp.Body, 10)
	assert.True(t, resp.Truncated)
}

func TestHTTPFetcher_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	f := NewHTTPFetcher(50 * time.Millisecond)
	_, err := f.Fetch(context.Background(), server.URL)
	assert.Error(t, err)
}

func TestHTTPFetcher_Post(t *testing.T) {
	var gotBody, gotType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		gotType = r.Header.Get("Content-Type")
		_, _ = io.WriteString(w, `{"response":"ok"}`)
	}))
	defer server.Close()

	resp, err := NewHTTPFetcher(5*time.Second).Post(context.Background(), server.URL, []byte(`{"a":1}`))
	require.NoError(t, err)
	assert.Equal(t, `{"response":"ok"}`, string(resp.Body))
	assert.Equal(t, `{"a":1}`, gotBody)
	assert.Equal(t, "application/json", gotType)
}

func TestWithProxy(t *testing.T) {
	f := NewHTTPFetcher(time.Second, WithProxy("http://127.0.0.1:3128"))
	transport, ok := f.client.Transport.(*http.Transport)
	require.True(t, ok)
	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	proxy, err := transport.Proxy(req)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:3128", proxy.Host)

	assert.Nil(t, NewHTTPFetcher(time.Second, WithProxy("not a url")).client.Transport)
	assert.Nil(t, NewHTTPFetcher(time.Second, WithProxy("")).client.Transport)
}

func TestResponse_Text(t *testing.T) {
	latin1 := &Response{ContentType: "text/plain; charset=iso-8859-1", Body: []byte("Caf\xe9 Rue 1")}
	text, err := latin1.Text()
	require.NoError(t, err)
	assert.Equal(t, "Café Rue 1", text)

	utf8Body := &Response{ContentType: "text/html; charset=utf-8", Body: []byte("Straße 5")}
	text, err = utf8Body.Text()
	require.NoError(t, err)
	assert.Equal(t, "Straße 5", text)
}

func TestResponse_TextUndeclaredUTF8(t *testing.T) {
	resp := &Response{ContentType: "text/plain", Body: []byte("Calle Mayor 3, Logroño")}
	text, err := resp.Text()
	require.NoError(t, err)
	assert.Equal(t, "Calle Mayor 3, Logroño", text)
}
