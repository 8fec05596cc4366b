package tts

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	"github.com/aws/aws-sdk-go-v2/service/polly/types"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// PollyClient interface defines the methods we need from the Polly client
type PollyClient interface {
	DescribeVoices(ctx context.Context, params *polly.DescribeVoicesInput, optFns ...func(*polly.Options)) (*polly.DescribeVoicesOutput, error)
	SynthesizeSpeech(ctx context.Context, params *polly.SynthesizeSpeechInput, optFns ...func(*polly.Options)) (*polly.SynthesizeSpeechOutput, error)
}

// PollyProvider speaks through Amazon Polly
type PollyProvider struct {
	client PollyClient
	region string
}

// NewPollyProvider creates a Polly provider using the default AWS credential chain.
func NewPollyProvider(ctx context.Context, region string) (*PollyProvider, error) {
	if region == "" {
		region = "us-east-1"
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &PollyProvider{client: polly.NewFromConfig(cfg), region: region}, nil
}

// Name returns the provider name
func (p *PollyProvider) Name() string {
	return "polly"
}

// ListVoices returns available Amazon Polly voices
func (p *PollyProvider) ListVoices(ctx context.Context) ([]Voice, error) {
	result, err := p.client.DescribeVoices(ctx, &polly.DescribeVoicesInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to list Polly voices: %w", err)
	}

	title := cases.Title(language.English)
	voices := make([]Voice, 0, len(result.Voices))
	for _, v := range result.Voices {
		voice := Voice{
			ID:       string(v.Id),
			Name:     aws.ToString(v.Name),
			Language: string(v.LanguageCode),
			Description: fmt.Sprintf("%s voice, %s engine supported",
				title.String(string(v.Gender)),
				formatSupportedEngines(v.SupportedEngines)),
		}
		switch v.Gender {
		case types.GenderFemale:
			voice.Gender = "female"
		case types.GenderMale:
			voice.Gender = "male"
		}
		voices = append(voices, voice)
	}

	return voices, nil
}

// Synthesize generates audio from text using Amazon Polly
func (p *PollyProvider) Synthesize(ctx context.Context, text string, options SynthesizeOptions) (io.ReadCloser, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	voiceID := options.Voice
	if voiceID == "" {
		voiceID = "Joanna"
	}

	var format types.OutputFormat
	wav := false
	switch strings.ToLower(options.Format) {
	case "", "mp3":
		format = types.OutputFormatMp3
	case "ogg":
		format = types.OutputFormatOggVorbis
	case "pcm":
		format = types.OutputFormatPcm
	case "wav":
		// Polly has no WAV output; request PCM and add the RIFF header.
		format = types.OutputFormatPcm
		wav = true
	default:
		return nil, fmt.Errorf("unsupported audio format: %s", options.Format)
	}

	engine := types.EngineNeural
	switch strings.ToLower(options.Engine) {
	case "":
	case "standard":
		engine = types.EngineStandard
	case "neural":
		engine = types.EngineNeural
	case "generative":
		engine = types.EngineGenerative
	default:
		log.Warn().Str("engine", options.Engine).Msg("Unknown engine, using neural")
	}

	input := &polly.SynthesizeSpeechInput{
		Text:         aws.String(text),
		VoiceId:      types.VoiceId(voiceID),
		OutputFormat: format,
		Engine:       engine,
		TextType:     types.TextTypeText,
	}
	if format == types.OutputFormatPcm {
		input.SampleRate = aws.String(fmt.Sprint(pollyPCMSampleRate))
	}
	if isSSML(text) {
		input.TextType = types.TextTypeSsml
	}

	log.Debug().
		Str("voice_id", voiceID).
		Str("engine", string(engine)).
		Str("region", p.region).
		Msg("Making Polly synthesis request")

	result, err := p.client.SynthesizeSpeech(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to synthesize speech: %w", err)
	}
	if !wav {
		return result.AudioStream, nil
	}

	defer func() { _ = result.AudioStream.Close() }()
	pcm, err := io.ReadAll(result.AudioStream)
	if err != nil {
		return nil, fmt.Errorf("failed to read PCM audio: %w", err)
	}
	return io.NopCloser(bytes.NewReader(wrapPCM(pcm, pollyPCMSampleRate))), nil
}

// Polly PCM is signed 16-bit little-endian mono.
const pollyPCMSampleRate = 16000

// wrapPCM prefixes 16-bit mono PCM samples with a canonical 44-byte WAV header.
func wrapPCM(pcm []byte, sampleRate uint32) []byte {
	const (
		channels      = 1
		bitsPerSample = 16
	)
	blockAlign := uint16(channels * bitsPerSample / 8)

	var buf bytes.Buffer
	buf.Grow(44 + len(pcm))
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVEfmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16)) // fmt chunk size
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))  // PCM
	_ = binary.Write(&buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(&buf, binary.LittleEndian, sampleRate)
	_ = binary.Write(&buf, binary.LittleEndian, sampleRate*uint32(blockAlign))
	_ = binary.Write(&buf, binary.LittleEndian, blockAlign)
	_ = binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)
	return buf.Bytes()
}

// formatSupportedEngines formats the list of supported engines for display
func formatSupportedEngines(engines []types.Engine) string {
	if len(engines) == 0 {
		return "unknown"
	}

	names := make([]string, len(engines))
	for i, engine := range engines {
		names[i] = string(engine)
	}
	return strings.Join(names, ", ")
}
