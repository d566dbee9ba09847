package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"blackboxscan/internal/client"
	"blackboxscan/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newClient(t *testing.T, baseURL string) client.AnalysisServiceClient {
	t.Helper()
	c, err := client.NewAnalysisServiceClient(baseURL, 5*time.Second, zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestNewAnalysisServiceClient_InvalidURL(t *testing.T) {
	_, err := client.NewAnalysisServiceClient("not a url", time.Second, nil)
	assert.Error(t, err)
}

func TestDo_MultipartBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/freq/detect", r.URL.Path)
		assert.Equal(t, "req-1", r.Header.Get("X-Request-ID"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "dwt", r.FormValue("method"))
		assert.Equal(t, "42", r.FormValue("k"))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "photo.png", hdr.Filename)
		assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"is_watermarked":true}`))
	}))
	defer srv.Close()

	out, err := newClient(t, srv.URL).Do(context.Background(), client.Call{
		Path:      "/freq/detect",
		Encoding:  client.EncodingMultipart,
		Params:    map[string]any{"method": "dwt", "k": 42, "skip": nil},
		File:      &models.Upload{Filename: "photo.png", ContentType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}},
		RequestID: "req-1",
	})
	require.NoError(t, err)
	assert.Equal(t, true, out["is_watermarked"])
}

func TestDo_JSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []any{"king", "queen"}, body["words"])
		_, _ = w.Write([]byte(`[1,2,3]`))
	}))
	defer srv.Close()

	out, err := newClient(t, srv.URL).Do(context.Background(), client.Call{
		Path:     "/analyze/embeddings",
		Encoding: client.EncodingJSON,
		Params:   map[string]any{"words": []string{"king", "queen"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []any{1.0, 2.0, 3.0}, out["value"])
}

func TestDo_Failures(t *testing.T) {
	t.Run("non 2xx status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := newClient(t, srv.URL).Do(context.Background(), client.Call{Path: "/text/generate"})
		require.Error(t, err)

		var svcErr *client.ServiceError
		require.True(t, errors.As(err, &svcErr))
		assert.Equal(t, client.FailureStatus, svcErr.Kind)
		assert.Equal(t, http.StatusInternalServerError, svcErr.StatusCode)
		assert.ErrorIs(t, err, models.ErrServer)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>oops</html>`))
		}))
		defer srv.Close()

		_, err := newClient(t, srv.URL).Do(context.Background(), client.Call{Path: "/text/detect"})

		var svcErr *client.ServiceError
		require.True(t, errors.As(err, &svcErr))
		assert.Equal(t, client.FailureDecode, svcErr.Kind)
		assert.ErrorIs(t, err, models.ErrServer)
	})

	t.Run("unreachable host", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := newClient(t, url).Do(context.Background(), client.Call{Path: "/text/detect"})

		var svcErr *client.ServiceError
		require.True(t, errors.As(err, &svcErr))
		assert.Equal(t, client.FailureTransport, svcErr.Kind)
		assert.ErrorIs(t, err, models.ErrTransport)
	})

	t.Run("file on JSON call", func(t *testing.T) {
		_, err := newClient(t, "http://127.0.0.1:1").Do(context.Background(), client.Call{
			Path:     "/analyze/attention",
			Encoding: client.EncodingJSON,
			File:     &models.Upload{Data: []byte("x")},
		})
		assert.ErrorIs(t, err, models.ErrTransport)
	})
}
