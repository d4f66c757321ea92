package analysis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzePostsMultipart(t *testing.T) {
	var gotOptions string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/analyze", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		pre, _, err := r.FormFile("pre_image")
		require.NoError(t, err)
		pre.Close()
		post, _, err := r.FormFile("post_image")
		require.NoError(t, err)
		post.Close()
		gotOptions = r.FormValue("options")

		json.NewEncoder(w).Encode(Result{
			Success:          true,
			AnalysisID:       "a1",
			ChangePercentage: 42.5,
			ImpactLevel:      "high",
			DisasterType:     "flood",
			Recommendations:  []string{"evacuate low-lying areas"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	r, err := c.Analyze(context.Background(),
		strings.NewReader("pre"), "pre.png",
		strings.NewReader("post"), "post.png",
		map[string]any{"sensitivity": 0.5})
	require.NoError(t, err)

	assert.True(t, r.Success)
	assert.Equal(t, "a1", r.AnalysisID)
	assert.Equal(t, 42.5, r.ChangePercentage)
	assert.Equal(t, "flood", r.DisasterType)
	assert.JSONEq(t, `{"sensitivity":0.5}`, gotOptions)
}

func TestAnalyzeBackendFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Analyze(context.Background(),
		strings.NewReader("pre"), "pre.png",
		strings.NewReader("post"), "post.png", nil)
	// Backend detail must not leak past the generic error.
	require.ErrorIs(t, err, ErrAnalysisFailed)
}

func TestAnalyzeMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Analyze(context.Background(),
		strings.NewReader("pre"), "pre.png",
		strings.NewReader("post"), "post.png", nil)
	require.ErrorIs(t, err, ErrAnalysisFailed)
}

func TestAnalyzeOmitsOptionsWhenNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Empty(t, r.FormValue("options"))
		json.NewEncoder(w).Encode(Result{Success: true, AnalysisID: "a2"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	r, err := c.Analyze(context.Background(),
		strings.NewReader("pre"), "pre.png",
		strings.NewReader("post"), "post.png", nil)
	require.NoError(t, err)
	assert.Equal(t, "a2", r.AnalysisID)
}
