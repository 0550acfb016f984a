package main

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A format 0 file with one track: 500000 microseconds per quarter note, then
// a single middle C.
var middleC = []byte{
	0x4d, 0x54, 0x68, 0x64, 0, 0, 0, 6, 0, 0, 0, 1, 0, 0x60,
	0x4d, 0x54, 0x72, 0x6b, 0, 0, 0, 0x13,
	0, 0xff, 0x51, 3, 0x07, 0xa1, 0x20,
	0, 0x90, 60, 100,
	0x60, 0x80, 60, 64,
	0, 0xff, 0x2f, 0,
}

func newTestServer(t *testing.T) *server {
	log, _ := logtest.NewNullLogger()
	return &server{
		uploadDir:      filepath.Join(t.TempDir(), "uploads"),
		maxUploadBytes: 1024,
		log:            log,
		now: func() time.Time {
			return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		},
	}
}

func uploadRequest(t *testing.T, field, name string,
	content []byte) *http.Request {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, e := w.CreateFormFile(field, name)
	require.NoError(t, e)
	_, e = part.Write(content)
	require.NoError(t, e)
	require.NoError(t, w.Close())
	r := httptest.NewRequest(http.MethodPost, "/api/midi/upload", &body)
	r.Header.Set("Content-Type", w.FormDataContentType())
	return r
}

func serve(s *server, r *http.Request) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	s.routes().ServeHTTP(recorder, r)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]interface{} {
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &decoded))
	return decoded
}

func newAnalyzeRequest(id string) *http.Request {
	body := strings.NewReader(`{"midiId":"` + id + `"}`)
	return httptest.NewRequest(http.MethodPost, "/api/midi/analyze", body)
}

func TestUploadAndAnalyze(t *testing.T) {
	s := newTestServer(t)
	recorder := serve(s, uploadRequest(t, "file", "Song.MID", middleC))
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	var uploaded uploadResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &uploaded))
	assert.True(t, uploaded.Success)
	require.NotNil(t, uploaded.File)
	_, e := uuid.Parse(uploaded.File.ID)
	assert.NoError(t, e)
	assert.Equal(t, "Song.MID", uploaded.File.OriginalName)
	assert.Equal(t, uploaded.File.ID+".mid", uploaded.File.FileName)
	assert.Equal(t, int64(len(middleC)), uploaded.File.Size)
	assert.Equal(t, "2024-05-01T12:00:00Z", uploaded.File.UploadedAt)
	require.NotNil(t, uploaded.File.MIDIInfo)
	assert.Equal(t, uint16(96), uploaded.File.MIDIInfo.Division)
	assert.Equal(t, 30, uploaded.File.MIDIInfo.EstimatedDuration)
	stored, e := os.ReadFile(filepath.Join(s.uploadDir,
		uploaded.File.FileName))
	require.NoError(t, e)
	assert.Equal(t, middleC, stored)

	recorder = serve(s, newAnalyzeRequest(uploaded.File.ID))
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	body := decodeBody(t, recorder)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "2024-05-01T12:00:00Z", body["analyzedAt"])
	analysis := body["analysis"].(map[string]interface{})
	assert.Equal(t, 120.0, analysis["tempo"])
	assert.Equal(t, "simple", analysis["complexity"])
	assert.Equal(t, map[string]interface{}{"min": 60.0, "max": 60.0},
		analysis["noteRange"])

	recorder = serve(s, httptest.NewRequest(http.MethodGet,
		"/api/midi/upload", nil))
	require.Equal(t, http.StatusOK, recorder.Code)
	var listed listResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &listed))
	require.Len(t, listed.Files, 1)
	assert.Equal(t, uploaded.File.ID, listed.Files[0].ID)
}

func TestUploadRejections(t *testing.T) {
	s := newTestServer(t)
	recorder := serve(s, uploadRequest(t, "other", "song.mid", middleC))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "No file provided", decodeBody(t, recorder)["error"])

	recorder = serve(s, uploadRequest(t, "file", "song.wav", middleC))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, decodeBody(t, recorder)["error"], "Invalid file type")

	recorder = serve(s, uploadRequest(t, "file", "big.midi",
		make([]byte, 2048)))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "File too large. Maximum size is 1024 bytes",
		decodeBody(t, recorder)["error"])

	recorder = serve(s, httptest.NewRequest(http.MethodDelete,
		"/api/midi/upload", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, recorder.Code)

	// Nothing was stored.
	_, e := os.Stat(s.uploadDir)
	assert.True(t, os.IsNotExist(e))
}

func TestUploadInvalidMIDI(t *testing.T) {
	s := newTestServer(t)
	recorder := serve(s, uploadRequest(t, "file", "junk.mid",
		[]byte("not really midi")))
	require.Equal(t, http.StatusOK, recorder.Code)
	var uploaded uploadResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &uploaded))
	assert.Equal(t, 480, int(uploaded.File.MIDIInfo.Division))
	assert.Equal(t, 60, uploaded.File.MIDIInfo.EstimatedDuration)

	// Analysis falls back to the default.
	recorder = serve(s, newAnalyzeRequest(uploaded.File.ID))
	require.Equal(t, http.StatusOK, recorder.Code)
	analysis := decodeBody(t, recorder)["analysis"].(map[string]interface{})
	assert.Equal(t, 60.0, analysis["duration"])
	assert.Equal(t, []interface{}{"Acoustic Grand Piano"},
		analysis["instruments"])
}

func TestAnalyzeErrors(t *testing.T) {
	s := newTestServer(t)
	recorder := serve(s, newAnalyzeRequest(""))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "MIDI ID is required", decodeBody(t, recorder)["error"])

	recorder = serve(s, newAnalyzeRequest(uuid.New().String()))
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "MIDI file not found", decodeBody(t, recorder)["error"])

	recorder = serve(s, newAnalyzeRequest("../../etc/passwd"))
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	recorder = serve(s, httptest.NewRequest(http.MethodPost,
		"/api/midi/analyze", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = serve(s, httptest.NewRequest(http.MethodGet,
		"/api/midi/analyze", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, recorder.Code)
}

func TestListWithoutUploads(t *testing.T) {
	s := newTestServer(t)
	recorder := serve(s, httptest.NewRequest(http.MethodGet,
		"/api/midi/upload", nil))
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"success":true,"files":[]}`, recorder.Body.String())
}
