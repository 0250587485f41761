package clients

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetClient_Upload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Client-ID abc123", r.Header.Get("Authorization"))

		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "ring.jpg", header.Filename)
		assert.Equal(t, "jpeg-bytes", string(data))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"success":true,"status":200,"data":{"link":"https://i.imgur.com/xyz.jpg"}}`)
	}))
	defer server.Close()

	client := NewAssetClient(server.URL, "abc123")
	link, err := client.Upload(context.Background(), "ring.jpg", strings.NewReader("jpeg-bytes"))

	require.NoError(t, err)
	assert.Equal(t, "https://i.imgur.com/xyz.jpg", link)
}

func TestAssetClient_UploadRejected(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"string error", http.StatusBadRequest, `{"success":false,"status":400,"data":{"error":"File is over the size limit"}}`, "File is over the size limit"},
		{"object error", http.StatusBadRequest, `{"success":false,"status":400,"data":{"error":{"message":"Invalid image type"}}}`, "Invalid image type"},
		{"not json", http.StatusBadGateway, `<html>bad gateway</html>`, "unexpected response"},
		{"ok without link", http.StatusOK, `{"success":true,"data":{}}`, "upload error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer server.Close()

			_, err := NewAssetClient(server.URL, "abc123").Upload(context.Background(), "a.png", strings.NewReader("x"))

			require.ErrorIs(t, err, ErrAssetUpload)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestAssetClient_NotConfigured(t *testing.T) {
	client := NewAssetClient("https://api.imgur.com/3/image", "")

	assert.False(t, client.Configured())
	_, err := client.Upload(context.Background(), "a.png", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrAssetUpload)
}
