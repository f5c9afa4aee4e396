package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Synthesizer define la interfaz para convertir texto a voz.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, voiceID string) (*Result, error)
}

// Result es la respuesta de una sintesis exitosa.
type Result struct {
	AudioURL           string  `json:"audio_url"`
	AudioLengthSeconds float64 `json:"audio_length_seconds"`
	RemainingChars     int     `json:"remaining_chars"`
}

// ErrDisabled se devuelve cuando no hay API key configurada.
var ErrDisabled = errors.New("tts disabled: murf api key not configured")

type disabledSynthesizer struct{}

func NewDisabledSynthesizer() Synthesizer {
	return &disabledSynthesizer{}
}

func (s *disabledSynthesizer) Synthesize(_ context.Context, _ string, _ string) (*Result, error) {
	return nil, ErrDisabled
}

// MurfClient implementa Synthesizer contra la API HTTP de Murf.
type MurfClient struct {
	baseURL      string
	apiKey       string
	defaultVoice string
	client       *http.Client
}

func NewMurfClient(baseURL, apiKey, defaultVoice string) *MurfClient {
	if baseURL == "" {
		baseURL = "https://api.murf.ai/v1"
	}
	return &MurfClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       apiKey,
		defaultVoice: defaultVoice,
		client:       &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *MurfClient) Synthesize(ctx context.Context, text string, voiceID string) (*Result, error) {
	if voiceID == "" {
		voiceID = c.defaultVoice
	}

	reqBody := speechRequest{
		Text:       text,
		VoiceID:    voiceID,
		Format:     "MP3",
		SampleRate: 44100,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/speech/generate", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("murf http error: status=%d body=%s", resp.StatusCode, string(respBody))
	}

	var sr speechResponse
	if err := json.Unmarshal(respBody, &sr); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if sr.AudioFile == "" {
		return nil, errors.New("murf empty audio url")
	}

	return &Result{
		AudioURL:           sr.AudioFile,
		AudioLengthSeconds: sr.AudioLengthInSeconds,
		RemainingChars:     sr.RemainingCharacterCount,
	}, nil
}

type speechRequest struct {
	Text       string `json:"text"`
	VoiceID    string `json:"voiceId"`
	Format     string `json:"format"`
	SampleRate int    `json:"sampleRate"`
}

type speechResponse struct {
	AudioFile               string  `json:"audioFile"`
	AudioLengthInSeconds    float64 `json:"audioLengthInSeconds"`
	RemainingCharacterCount int     `json:"remainingCharacterCount"`
}
