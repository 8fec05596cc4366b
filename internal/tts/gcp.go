package tts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// GCPClient is the subset of the Cloud Text-to-Speech client in use.
type GCPClient interface {
	ListVoices(ctx context.Context, req *texttospeechpb.ListVoicesRequest, opts ...gax.CallOption) (*texttospeechpb.ListVoicesResponse, error)
	SynthesizeSpeech(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest, opts ...gax.CallOption) (*texttospeechpb.SynthesizeSpeechResponse, error)
	Close() error
}

// GCPProvider speaks through Google Cloud Text-to-Speech
type GCPProvider struct {
	client GCPClient
	voice  string
}

// NewGCPProvider creates a provider using Application Default Credentials
// (GOOGLE_APPLICATION_CREDENTIALS or gcloud login).
func NewGCPProvider(ctx context.Context, voice string) (*GCPProvider, error) {
	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCP TTS client: %w", err)
	}
	return newGCPProvider(client, voice), nil
}

func newGCPProvider(client GCPClient, voice string) *GCPProvider {
	if voice == "" {
		voice = "en-US-Neural2-F"
	}
	return &GCPProvider{client: client, voice: voice}
}

// Name returns the provider name
func (p *GCPProvider) Name() string {
	return "gcp"
}

// ListVoices returns available voices from Google Cloud TTS
func (p *GCPProvider) ListVoices(ctx context.Context) ([]Voice, error) {
	resp, err := p.client.ListVoices(ctx, &texttospeechpb.ListVoicesRequest{})
	if err != nil {
		return nil, classifyGCPError("failed to list GCP voices", err)
	}

	var voices []Voice
	for _, v := range resp.Voices {
		gender := "unknown"
		switch v.SsmlGender {
		case texttospeechpb.SsmlVoiceGender_MALE:
			gender = "male"
		case texttospeechpb.SsmlVoiceGender_FEMALE:
			gender = "female"
		case texttospeechpb.SsmlVoiceGender_NEUTRAL:
			gender = "neutral"
		}
		for _, lang := range v.LanguageCodes {
			voices = append(voices, Voice{
				ID:          v.Name,
				Name:        v.Name,
				Language:    lang,
				Gender:      gender,
				Description: fmt.Sprintf("%s voice", detectEngineType(v.Name)),
			})
		}
	}

	log.Debug().Int("count", len(voices)).Msg("Listed GCP TTS voices")
	return voices, nil
}

// Synthesize generates audio from text using Google Cloud TTS
func (p *GCPProvider) Synthesize(ctx context.Context, text string, options SynthesizeOptions) (io.ReadCloser, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	voice := p.voice
	if options.Voice != "" {
		voice = options.Voice
	}

	lang := options.Language
	if lang == "" {
		lang = languageFromVoice(voice)
	}

	input := &texttospeechpb.SynthesisInput{
		InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
	}
	if isSSML(text) {
		input.InputSource = &texttospeechpb.SynthesisInput_Ssml{Ssml: text}
	}

	resp, err := p.client.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: input,
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: lang,
			Name:         voice,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: audioEncoding(options.Format),
			SpeakingRate:  clampSpeed(options.Speed),
		},
	})
	if err != nil {
		return nil, classifyGCPError("failed to synthesize speech", err)
	}

	return io.NopCloser(bytes.NewReader(resp.AudioContent)), nil
}

// Close closes the GCP client
func (p *GCPProvider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}

func classifyGCPError(msg string, err error) error {
	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.Unauthenticated, codes.PermissionDenied:
			return fmt.Errorf("%s: %w: %s", msg, ErrUnauthorized, s.Message())
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// languageFromVoice extracts the locale, e.g. en-US-Neural2-F -> en-US.
func languageFromVoice(voice string) string {
	parts := strings.Split(voice, "-")
	if len(parts) >= 2 {
		return parts[0] + "-" + parts[1]
	}
	return "en-US"
}

func detectEngineType(voiceName string) string {
	name := strings.ToLower(voiceName)
	switch {
	case strings.Contains(name, "wavenet"):
		return "WaveNet"
	case strings.Contains(name, "neural2"):
		return "Neural2"
	case strings.Contains(name, "studio"):
		return "Studio"
	case strings.Contains(name, "chirp"):
		return "Chirp"
	default:
		return "Standard"
	}
}

func audioEncoding(format string) texttospeechpb.AudioEncoding {
	switch strings.ToLower(format) {
	case "wav", "linear16":
		return texttospeechpb.AudioEncoding_LINEAR16
	case "ogg", "ogg_opus":
		return texttospeechpb.AudioEncoding_OGG_OPUS
	default:
		return texttospeechpb.AudioEncoding_MP3
	}
}

func isSSML(text string) bool {
	trimmed := strings.TrimSpace(text)
	return strings.HasPrefix(trimmed, "<speak") ||
		strings.Contains(trimmed, "<prosody") ||
		strings.Contains(trimmed, "<break")
}
