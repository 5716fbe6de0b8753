package wordpress

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danhoward/aio-engine/pkg/types"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(types.CMSConfig{
		BaseURL:     srv.URL,
		Username:    "bot",
		AppPassword: "xxxx yyyy",
	})
	require.NoError(t, err)
	return c
}

func TestFetchBySlug(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wp-json/wp/v2/posts", r.URL.Path)
		assert.Equal(t, "hard-conversations", r.URL.Query().Get("slug"))
		assert.Equal(t, "edit", r.URL.Query().Get("context"))

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "bot", user)
		assert.Equal(t, "xxxx yyyy", pass)

		_, _ = w.Write([]byte(`[{
			"id": 42,
			"slug": "hard-conversations",
			"title": {"rendered": "How to Have Hard Conversations"},
			"content": {"rendered": "<p>Rendered.</p>", "raw": "Raw source"}
		}]`))
	})

	page, err := c.FetchBySlug(context.Background(), "hard-conversations")
	require.NoError(t, err)
	require.NotNil(t, page)
	assert.Equal(t, int64(42), page.ID)
	assert.Equal(t, "How to Have Hard Conversations", page.Title)
	assert.Equal(t, "<p>Rendered.</p>", page.Content)
	assert.Equal(t, "Raw source", page.RawContent)
}

func TestFetchBySlug_NoMatch(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	page, err := c.FetchBySlug(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, page)
}

func TestUpdateContent(t *testing.T) {
	var received map[string]string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/wp-json/wp/v2/posts/42", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(`{"id": 42}`))
	})

	err := c.UpdateContent(context.Background(), 42, "<p>New content.</p>")
	require.NoError(t, err)
	assert.Equal(t, "<p>New content.</p>", received["content"])
}

func TestUpdateContent_Failure(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"code":"rest_cannot_edit"}`, http.StatusForbidden)
	})

	err := c.UpdateContent(context.Background(), 42, "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}

func TestNew_Validation(t *testing.T) {
	_, err := New(types.CMSConfig{Username: "u", AppPassword: "p"})
	require.Error(t, err)

	_, err = New(types.CMSConfig{BaseURL: "http://x"})
	require.Error(t, err)
}
