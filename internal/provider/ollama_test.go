package provider

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/traylinx/addressLocal/internal/config"
)

type fakeOllama struct {
	mu        sync.Mutex
	tags      string
	tagsFail  bool
	reply     string
	generated []string
}

func (f *fakeOllama) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/version", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"version":"0.5.7"}`)
	})
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		tags, fail := f.tags, f.tagsFail
		f.mu.Unlock()
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = io.WriteString(w, tags)
	})
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.generated = append(f.generated, string(data))
		f.mu.Unlock()
		_, _ = io.WriteString(w, f.reply)
	})
	return mux
}

func (f *fakeOllama) setTags(tags string, fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tags, f.tagsFail = tags, fail
}

func (f *fakeOllama) lastRequest() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.generated) == 0 {
		return ""
	}
	return f.generated[len(f.generated)-1]
}

func startOllama(t *testing.T, f *fakeOllama) *Ollama {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	return NewOllama(config.OllamaConfig{BaseURL: srv.URL + "/", Model: "llama3.2:latest"})
}

func TestOllama_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	p := NewOllama(config.OllamaConfig{BaseURL: base})
	ctx := context.Background()
	assert.ErrorIs(t, p.CheckAvailability(ctx), ErrUnavailable)
	_, err := p.ExtractAddresses(ctx, "text", "")
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = p.Models(ctx)
	assert.Error(t, err)
	assert.Equal(t, "ollama", p.Name())
}

func TestOllama_ExtractAddresses(t *testing.T) {
	f := &fakeOllama{
		tags:  `{"models":[{"name":"llama3.2:latest"},{"name":"mistral:7b"}]}`,
		reply: `{"model":"llama3.2:latest","response":"Calle de Alcalá 42, 28014 Madrid\n東京都千代田区千代田1-1\n","done":true}`,
	}
	p := startOllama(t, f)

	require.NoError(t, p.CheckAvailability(context.Background()))
	models, err := p.Models(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"llama3.2:latest", "mistral:7b"}, models)

	got, err := p.ExtractAddresses(context.Background(), "Oficina: Calle de Alcalá 42", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Calle de Alcalá 42, 28014 Madrid", "東京都千代田区千代田1-1"}, got.Addresses)
	assert.Equal(t, "llama3.2:latest", got.Model)

	req := f.lastRequest()
	assert.Equal(t, "llama3.2:latest", gjson.Get(req, "model").String())
	assert.False(t, gjson.Get(req, "stream").Bool())
	assert.True(t, gjson.Get(req, "stream").Exists())
	assert.InDelta(t, 0.1, gjson.Get(req, "options.temperature").Float(), 1e-9)
	assert.Equal(t, int64(500), gjson.Get(req, "options.num_predict").Int())
	assert.Contains(t, gjson.Get(req, "prompt").String(), "Oficina: Calle de Alcalá 42")

	got, err = p.ExtractAddresses(context.Background(), "x", "mistral:7b")
	require.NoError(t, err)
	assert.Equal(t, "mistral:7b", got.Model)
}

func TestOllama_SubstitutesMissingModel(t *testing.T) {
	f := &fakeOllama{
		tags:  `{"models":[{"name":"qwen2.5:7b"},{"name":"phi3"}]}`,
		reply: `{"response":"No addresses found"}`,
	}
	p := startOllama(t, f)

	got, err := p.ExtractAddresses(context.Background(), "nothing", "ghost-model")
	require.NoError(t, err)
	assert.Equal(t, "qwen2.5:7b", got.Model)
	assert.NotNil(t, got.Addresses)
	assert.Empty(t, got.Addresses)
	assert.Equal(t, "qwen2.5:7b", gjson.Get(f.lastRequest(), "model").String())
}

func TestOllama_DiscoveryFailureKeepsModel(t *testing.T) {
	f := &fakeOllama{tagsFail: true, reply: `{"response":"1 Infinite Loop, Cupertino"}`}
	p := startOllama(t, f)

	got, err := p.ExtractAddresses(context.Background(), "x", "")
	require.NoError(t, err)
	assert.Equal(t, "llama3.2:latest", got.Model)
	assert.Equal(t, []string{"1 Infinite Loop, Cupertino"}, got.Addresses)

	f.setTags(`{"models":[]}`, false)
	got, err = p.ExtractAddresses(context.Background(), "x", "custom:1b")
	require.NoError(t, err)
	assert.Equal(t, "custom:1b", got.Model)
}

func TestOllama_BadResponse(t *testing.T) {
	f := &fakeOllama{tags: `{"models":[]}`, reply: `<html>proxy error</html>`}
	p := startOllama(t, f)

	_, err := p.ExtractAddresses(context.Background(), "x", "")
	assert.ErrorContains(t, err, "invalid JSON")
}

func TestNewOllama_Defaults(t *testing.T) {
	p := NewOllama(config.OllamaConfig{})
	assert.Equal(t, config.DefaultOllamaBaseURL, p.baseURL)
	assert.Equal(t, config.DefaultOllamaModel, p.defaultModel)
}
