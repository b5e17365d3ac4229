package api

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/yt-fetch-go/internal/app"
	"github.com/yourusername/yt-fetch-go/internal/domain"
)

// fakeExtractor writes one file named after the video ID into the output dir
type fakeExtractor struct {
	ext   string
	err   error
	specs []*domain.ExtractionSpec
	dirs  []string
}

func (f *fakeExtractor) Extract(ctx context.Context, spec *domain.ExtractionSpec, outputDir string) (*domain.DownloadResult, error) {
	f.specs = append(f.specs, spec)
	f.dirs = append(f.dirs, outputDir)
	if f.err != nil {
		return nil, f.err
	}

	ext := f.ext
	if ext == "" {
		ext = strings.TrimPrefix(spec.Mode.ExpectedExtension(), ".")
	}
	id := strings.TrimPrefix(spec.TargetURL, "https://www.youtube.com/watch?v=")
	path := filepath.Join(outputDir, "clip ["+id+"]."+ext)
	if err := os.WriteFile(path, []byte("media-bytes"), 0644); err != nil {
		return nil, err
	}
	return &domain.DownloadResult{FilePaths: []string{path}}, nil
}

func (f *fakeExtractor) Name() string    { return "fake-yt-dlp" }
func (f *fakeExtractor) Available() bool { return true }

func setupTestRouter(t *testing.T, password string, extractor *fakeExtractor) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	workDir := t.TempDir()
	service := app.NewDownloadService(extractor, nil, &domain.DownloadConfig{WorkDir: workDir, Cleanup: true}, zap.NewNop())
	return SetupRouter(domain.AuthConfig{Password: password}, service, zap.NewNop()), workDir
}

func perform(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func get(router http.Handler, target string) *httptest.ResponseRecorder {
	return perform(router, httptest.NewRequest(http.MethodGet, target, nil))
}

func postForm(router http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return perform(router, req)
}

func attachmentName(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	disposition, params, err := mime.ParseMediaType(w.Header().Get("Content-Disposition"))
	require.NoError(t, err)
	assert.Equal(t, "attachment", disposition)
	return params["filename"]
}

func TestRobots(t *testing.T) {
	router, _ := setupTestRouter(t, "", &fakeExtractor{})

	w := get(router, "/robots.txt")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User-agent: *\nDisallow: /", w.Body.String())
}

func TestVideo_MissingID(t *testing.T) {
	extractor := &fakeExtractor{}
	router, _ := setupTestRouter(t, "", extractor)

	for _, target := range []string{"/video", "/video?id=", "/gif"} {
		w := get(router, target)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
		assert.Equal(t, "Please specify `id`", w.Body.String(), target)
	}
	assert.Empty(t, extractor.specs)
}

func TestTest_EndToEnd(t *testing.T) {
	extractor := &fakeExtractor{}
	router, _ := setupTestRouter(t, "", extractor)

	w := get(router, "/test")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "media-bytes", w.Body.String())
	assert.Equal(t, "video/mp4", w.Header().Get("Content-Type"))
	assert.Equal(t, "clip [BaW_jenozKc].mp4", attachmentName(t, w))

	require.Len(t, extractor.specs, 1)
	assert.Equal(t, "https://www.youtube.com/watch?v=BaW_jenozKc", extractor.specs[0].TargetURL)
	assert.Equal(t, domain.ModeVideo, extractor.specs[0].Mode)

	// The per-request directory is gone once the body is sent
	assert.NoDirExists(t, extractor.dirs[0])
}

func TestGIF_ByID(t *testing.T) {
	extractor := &fakeExtractor{}
	router, _ := setupTestRouter(t, "", extractor)

	w := get(router, "/gif?id=abc123")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "image/gif", w.Header().Get("Content-Type"))
	assert.Equal(t, "clip [abc123].gif", attachmentName(t, w))
	assert.Equal(t, "bv[filesize<=512K] / wv", extractor.specs[0].FormatSelector)
}

func TestVideo_MimeFromExtension(t *testing.T) {
	tests := map[string]string{
		"webm": "video/webm",
		"3gp":  "video/3gpp",
		"mkv":  "video/mp4",
	}
	for ext, expected := range tests {
		router, _ := setupTestRouter(t, "", &fakeExtractor{ext: ext})

		w := get(router, "/video?id=xyz")
		require.Equal(t, http.StatusOK, w.Code, ext)
		assert.Equal(t, expected, w.Header().Get("Content-Type"), ext)
	}
}

func TestIndex_RendersForm(t *testing.T) {
	router, _ := setupTestRouter(t, "secret", &fakeExtractor{})

	w := get(router, "/?pw=secret")
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, `name="video_url"`)
	assert.Contains(t, body, `name="result_select"`)
	assert.Contains(t, body, `action="/?pw=secret"`)
}

func TestSubmit(t *testing.T) {
	extractor := &fakeExtractor{}
	router, _ := setupTestRouter(t, "", extractor)

	w := postForm(router, "/", url.Values{
		"video_url":     {"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=10"},
		"result_select": {"video"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", extractor.specs[0].TargetURL)

	w = postForm(router, "/", url.Values{
		"video_url":     {"https://youtu.be/dQw4w9WgXcQ"},
		"result_select": {"gif_small"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/gif", w.Header().Get("Content-Type"))
}

func TestSubmit_Errors(t *testing.T) {
	extractor := &fakeExtractor{}
	router, _ := setupTestRouter(t, "", extractor)

	w := postForm(router, "/", url.Values{
		"video_url":     {"https://vimeo.com/1234"},
		"result_select": {"video"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid URL: https://vimeo.com/1234", w.Body.String())

	w = postForm(router, "/", url.Values{
		"video_url":     {"https://youtu.be/abc"},
		"result_select": {"mp3"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid result type: mp3", w.Body.String())

	w = postForm(router, "/", url.Values{"result_select": {"video"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please specify `video_url`", w.Body.String())

	assert.Empty(t, extractor.specs)
}

func TestExtractionFailure(t *testing.T) {
	extractor := &fakeExtractor{err: &domain.ExtractionError{
		Kind: domain.FailureNoFormat,
		URL:  "https://www.youtube.com/watch?v=abc",
		Err:  errors.New("exit status 1"),
	}}
	router, _ := setupTestRouter(t, "", extractor)

	w := get(router, "/video?id=abc")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Extraction failed: no_format", w.Body.String())
}

func TestAccessGate(t *testing.T) {
	router, _ := setupTestRouter(t, "secret", &fakeExtractor{})

	for _, target := range []string{"/robots.txt", "/robots.txt?pw=wrong", "/video", "/health", "/nope"} {
		w := get(router, target)
		assert.Equal(t, http.StatusUnauthorized, w.Code, target)
	}

	w := get(router, "/robots.txt?pw=secret")
	assert.Equal(t, http.StatusOK, w.Code)

	w = get(router, "/video?pw=secret")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postForm(router, "/?pw=secret", url.Values{
		"video_url":     {"https://youtu.be/abc"},
		"result_select": {"video"},
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAccessGate_DisabledWithoutPassword(t *testing.T) {
	router, _ := setupTestRouter(t, "", &fakeExtractor{})

	w := get(router, "/robots.txt")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealth(t *testing.T) {
	router, _ := setupTestRouter(t, "", &fakeExtractor{})

	w := get(router, "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	extractor := body["extractor"].(map[string]interface{})
	assert.Equal(t, "fake-yt-dlp", extractor["binary"])
	assert.Equal(t, true, extractor["available"])
	extractions := body["extractions"].(map[string]interface{})
	assert.Equal(t, float64(0), extractions["active"])

	w = get(router, "/ready")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNoRoute(t *testing.T) {
	router, _ := setupTestRouter(t, "", &fakeExtractor{})

	w := get(router, "/does-not-exist")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
