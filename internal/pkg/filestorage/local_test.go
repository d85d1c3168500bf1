package filestorage

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("resume", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["resume"][0]
}

func TestSaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	ls, err := NewLocalStorage(dir, "/uploads", WithAllowedExtensions(".pdf"))
	require.NoError(t, err)

	url, err := ls.SaveFileWithPath(fileHeader(t, "cv.PDF", []byte("%PDF-1.4")), "resumes")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/resumes/"), url)
	assert.True(t, strings.HasSuffix(url, ".pdf"), url)

	full := ls.GetFullPath(url)
	assert.Equal(t, filepath.Join(dir, "resumes"), filepath.Dir(full))
	data, err := os.ReadFile(full)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))

	require.NoError(t, ls.DeleteFile(url))
	_, err = os.Stat(full)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, ls.DeleteFile(url), "deleting twice is fine")
}

func TestSave_Rejections(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), "/uploads", WithAllowedExtensions(".pdf"), WithMaxSize(4))
	require.NoError(t, err)

	_, err = ls.SaveFileWithPath(fileHeader(t, "cv.exe", []byte("x")), "")
	assert.ErrorIs(t, err, ErrFileTypeNotAllowed)

	_, err = ls.SaveFileWithPath(fileHeader(t, "cv.pdf", []byte("too large")), "")
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestGetFullPath_RejectsTraversal(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	assert.Empty(t, ls.GetFullPath("/uploads/../../etc/passwd"))
	assert.Empty(t, ls.GetFullPath("/uploads/"))
}
