package speech

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordingTranscriber_FetchesAndTranscribes(t *testing.T) {
	var gotPath string
	var gotUser, gotPass string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		_, _ = w.Write([]byte("wav-bytes"))
	}))
	defer srv.Close()

	mock := &mockAudioAPI{transcription: "my name is John Doe"}
	rt := NewRecordingTranscriber(NewService(mock, "", nil), "AC123", "secret", nil)

	got, err := rt.TranscribeRecording(context.Background(), srv.URL+"/Recordings/RE42")

	require.NoError(t, err)
	assert.Equal(t, "my name is John Doe", got)
	assert.Equal(t, "/Recordings/RE42.wav", gotPath)
	assert.Equal(t, "AC123", gotUser)
	assert.Equal(t, "secret", gotPass)
	assert.Equal(t, "RE42.wav", mock.transcribeReq.FilePath)
}

func TestRecordingTranscriber_KeepsExistingExtension(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Recordings/RE42.mp3", r.URL.Path)
		_, _ = w.Write([]byte("mp3-bytes"))
	}))
	defer srv.Close()

	mock := &mockAudioAPI{transcription: "hello"}
	rt := NewRecordingTranscriber(NewService(mock, "", nil), "", "", nil)

	_, err := rt.TranscribeRecording(context.Background(), srv.URL+"/Recordings/RE42.mp3")
	require.NoError(t, err)
	assert.Equal(t, "RE42.mp3", mock.transcribeReq.FilePath)
}

func TestRecordingTranscriber_FetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	rt := NewRecordingTranscriber(NewService(&mockAudioAPI{}, "", nil), "", "", nil)

	_, err := rt.TranscribeRecording(context.Background(), srv.URL+"/Recordings/RE42")
	assert.Error(t, err)
}

func TestRecordingTranscriber_EmptyURL(t *testing.T) {
	rt := NewRecordingTranscriber(NewService(&mockAudioAPI{}, "", nil), "", "", nil)

	_, err := rt.TranscribeRecording(context.Background(), "  ")
	assert.Error(t, err)
}
