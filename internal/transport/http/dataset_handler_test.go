package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartUpload(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(uploadFieldName, filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func TestGetDataset(t *testing.T) {
	router, _ := newTestRouter(t)

	var info struct {
		Source   string `json:"source"`
		RowCount int    `json:"row_count"`
	}
	rec := doJSON(t, router, http.MethodGet, "/api/dataset", &info)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sample", info.Source)
	assert.Greater(t, info.RowCount, 0)
}

func TestUpload_ValidCSV(t *testing.T) {
	router, _ := newTestRouter(t)

	csv := "Date,Close,Brand_Name,Ticker\n2023-05-01,11,apple,AAPL\n2023-05-02,12,apple,AAPL\n"
	body, contentType := multipartUpload(t, "prices.csv", csv)

	req := httptest.NewRequest(http.MethodPost, "/api/dataset/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Source   string `json:"source"`
		RowCount int    `json:"row_count"`
		Fallback bool   `json:"fallback"`
		Warning  string `json:"warning"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "upload:prices.csv", resp.Source)
	assert.Equal(t, 2, resp.RowCount)
	assert.False(t, resp.Fallback)
	assert.Empty(t, resp.Warning)
}

func TestUpload_MissingColumnsFallsBack(t *testing.T) {
	router, _ := newTestRouter(t)

	body, contentType := multipartUpload(t, "broken.csv", "Date,Close\n2023-05-01,11\n")

	req := httptest.NewRequest(http.MethodPost, "/api/dataset/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Source   string `json:"source"`
		Fallback bool   `json:"fallback"`
		Warning  string `json:"warning"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "sample", resp.Source)
	assert.True(t, resp.Fallback)
	assert.Contains(t, resp.Warning, "missing")
}

func TestUpload_UnsupportedExtension(t *testing.T) {
	router, _ := newTestRouter(t)

	body, contentType := multipartUpload(t, "prices.txt", "whatever")

	req := httptest.NewRequest(http.MethodPost, "/api/dataset/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, "/errors/dataset/unsupported-format", problem["type"])
}

func TestUpload_WrongContentType(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/dataset/upload", bytes.NewReader([]byte("Date,Close\n")))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestUpload_NoFileField(t *testing.T) {
	router, _ := newTestRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("other", "value"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/dataset/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUseSample_AfterUpload(t *testing.T) {
	router, svc := newTestRouter(t)

	csv := "Date,Close,Brand_Name,Ticker\n2023-05-01,11,apple,AAPL\n"
	body, contentType := multipartUpload(t, "prices.csv", csv)
	req := httptest.NewRequest(http.MethodPost, "/api/dataset/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/dataset/sample", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	source, _ := svc.Source()
	assert.Equal(t, "sample", source)
}
