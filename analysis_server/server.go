package main

// This file contains the HTTP handlers for uploading and analyzing MIDI files.

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	midi "github.com/yalue/smfanalyzer"
)

// Serves the MIDI upload and analysis API. Uploaded files are stored in
// uploadDir as <id>.mid.
type server struct {
	uploadDir      string
	maxUploadBytes int64
	log            logrus.FieldLogger
	// Returns the current time. Replaced in tests.
	now func() time.Time
}

// Describes a stored upload.
type fileRecord struct {
	ID           string           `json:"id"`
	OriginalName string           `json:"originalName,omitempty"`
	FileName     string           `json:"fileName"`
	Size         int64            `json:"size"`
	UploadedAt   string           `json:"uploadedAt"`
	MIDIInfo     *midi.HeaderInfo `json:"midiInfo,omitempty"`
}

type uploadResponse struct {
	Success bool        `json:"success"`
	File    *fileRecord `json:"file"`
	Message string      `json:"message"`
}

type listResponse struct {
	Success bool          `json:"success"`
	Files   []*fileRecord `json:"files"`
}

type analyzeRequest struct {
	MIDIID string `json:"midiId"`
}

type analyzeResponse struct {
	Success    bool               `json:"success"`
	Analysis   *midi.MIDIAnalysis `json:"analysis"`
	AnalyzedAt string             `json:"analyzedAt"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/midi/upload", s.handleUpload)
	mux.HandleFunc("/api/midi/analyze", s.handleAnalyze)
	return mux
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	e := json.NewEncoder(w).Encode(v)
	if e != nil {
		s.log.WithError(e).Warn("Failed writing response")
	}
}

func (s *server) writeError(w http.ResponseWriter, status int, message string,
	cause error) {
	response := errorResponse{Error: message}
	if cause != nil {
		response.Details = cause.Error()
	}
	s.writeJSON(w, status, &response)
}

func hasMIDIExtension(name string) bool {
	name = strings.ToLower(name)
	return strings.HasSuffix(name, ".mid") || strings.HasSuffix(name, ".midi")
}

func (s *server) handleUpload(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.uploadFile(w, r)
	case http.MethodGet:
		s.listFiles(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
	}
}

func (s *server) uploadFile(w http.ResponseWriter, r *http.Request) {
	// Leave some room for the rest of the multipart body, so that oversized
	// files get a proper error rather than a truncated form.
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes+(1<<20))
	file, header, e := r.FormFile("file")
	if e != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(e, &tooLarge) {
			s.writeError(w, http.StatusBadRequest, s.tooLargeMessage(), nil)
			return
		}
		s.writeError(w, http.StatusBadRequest, "No file provided", nil)
		return
	}
	defer file.Close()
	if !hasMIDIExtension(header.Filename) {
		s.writeError(w, http.StatusBadRequest, "Invalid file type. Only .mid "+
			"and .midi files are allowed", nil)
		return
	}
	data, e := io.ReadAll(io.LimitReader(file, s.maxUploadBytes+1))
	if e != nil {
		s.writeError(w, http.StatusInternalServerError, "Upload failed", e)
		return
	}
	if int64(len(data)) > s.maxUploadBytes {
		s.writeError(w, http.StatusBadRequest, s.tooLargeMessage(), nil)
		return
	}
	e = os.MkdirAll(s.uploadDir, 0755)
	if e != nil {
		s.writeError(w, http.StatusInternalServerError, "Upload failed", e)
		return
	}
	id := uuid.New().String()
	record := &fileRecord{
		ID:           id,
		OriginalName: header.Filename,
		FileName:     id + ".mid",
		Size:         int64(len(data)),
		UploadedAt:   s.now().UTC().Format(time.RFC3339),
	}
	e = os.WriteFile(filepath.Join(s.uploadDir, record.FileName), data, 0644)
	if e != nil {
		s.writeError(w, http.StatusInternalServerError, "Upload failed", e)
		return
	}
	info := midi.SummarizeHeader(data)
	record.MIDIInfo = &info
	s.log.WithFields(logrus.Fields{
		"id":   id,
		"name": header.Filename,
		"size": len(data),
	}).Info("Stored MIDI upload")
	s.writeJSON(w, http.StatusOK, &uploadResponse{
		Success: true,
		File:    record,
		Message: "MIDI file uploaded successfully",
	})
}

func (s *server) tooLargeMessage() string {
	if (s.maxUploadBytes % (1 << 20)) == 0 {
		return fmt.Sprintf("File too large. Maximum size is %dMB",
			s.maxUploadBytes/(1<<20))
	}
	return fmt.Sprintf("File too large. Maximum size is %d bytes",
		s.maxUploadBytes)
}

func (s *server) listFiles(w http.ResponseWriter, r *http.Request) {
	entries, e := os.ReadDir(s.uploadDir)
	if e != nil && !errors.Is(e, fs.ErrNotExist) {
		s.writeError(w, http.StatusInternalServerError,
			"Failed to retrieve files", e)
		return
	}
	files := []*fileRecord{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".mid") {
			continue
		}
		info, e := entry.Info()
		if e != nil {
			continue
		}
		files = append(files, &fileRecord{
			ID:         strings.TrimSuffix(name, ".mid"),
			FileName:   name,
			Size:       info.Size(),
			UploadedAt: info.ModTime().UTC().Format(time.RFC3339),
		})
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].ID < files[j].ID
	})
	s.writeJSON(w, http.StatusOK, &listResponse{
		Success: true,
		Files:   files,
	})
}

func (s *server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
		return
	}
	var request analyzeRequest
	e := json.NewDecoder(io.LimitReader(r.Body, 4096)).Decode(&request)
	if e != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body", e)
		return
	}
	if request.MIDIID == "" {
		s.writeError(w, http.StatusBadRequest, "MIDI ID is required", nil)
		return
	}
	// IDs are always UUIDs, which also keeps them from naming files outside
	// of the upload directory.
	id, e := uuid.Parse(request.MIDIID)
	if e != nil {
		s.writeError(w, http.StatusNotFound, "MIDI file not found", nil)
		return
	}
	path := filepath.Join(s.uploadDir, id.String()+".mid")
	data, e := os.ReadFile(path)
	if errors.Is(e, fs.ErrNotExist) {
		s.writeError(w, http.StatusNotFound, "MIDI file not found", nil)
		return
	}
	if e != nil {
		s.writeError(w, http.StatusInternalServerError, "Analysis failed", e)
		return
	}
	analysis := midi.AnalyzeMIDI(data)
	s.log.WithFields(logrus.Fields{
		"id":         id.String(),
		"tracks":     analysis.Tracks,
		"complexity": analysis.Complexity,
	}).Info("Analyzed MIDI file")
	s.writeJSON(w, http.StatusOK, &analyzeResponse{
		Success:    true,
		Analysis:   &analysis,
		AnalyzedAt: s.now().UTC().Format(time.RFC3339),
	})
}
