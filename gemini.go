package renamify

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
)

// DefaultGeminiBaseURL is the production generative-language endpoint.
const DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

// previewMaxDimension caps the longest image side before upload; larger
// previews only slow the model down without improving name quality.
const previewMaxDimension = 1024

const previewJPEGQuality = 85

// geminiSystemPrompt instructs the model to answer with the suggestion schema.
const geminiSystemPrompt = `Analyze this image and suggest a descriptive filename. Return ONLY valid JSON:
{"name":"descriptive-name","reasons":"brief explanation","tags":["tag1","tag2"],"confidence":0.8}

Rules: Be specific but concise. No extension. Use kebab-case. Max 60 chars. No dates.`

// GeminiSuggester calls the Gemini vision API over plain HTTP. It implements
// Suggester; retries and schema handling live in the pipeline's suggest layer.
type GeminiSuggester struct {
	APIKey     string
	Model      string       // overrides Settings.ModelID when non-empty
	BaseURL    string       // default: DefaultGeminiBaseURL
	HTTPClient *http.Client // default: http.DefaultClient
}

// ErrNoAPIKey means the suggester was constructed without credentials. This
// is detected before any per-item work starts and fails the whole run.
var ErrNoAPIKey = errors.New("gemini: api key is empty")

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiGenConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Suggest sends one image to the model and returns the raw response text.
// Errors are *ProviderError so the retry policy can classify them.
func (g *GeminiSuggester) Suggest(ctx context.Context, req SuggestRequest) (string, error) {
	if g.APIKey == "" {
		return "", &ProviderError{Transient: false, Err: ErrNoAPIKey}
	}

	model := g.Model
	if model == "" {
		model = req.Settings.ModelID
	}

	data, mimeType := preparePreview(req.Data, req.MIMEType)
	payload := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{
				{Text: buildPrompt(req.Settings, req.OCRTokens)},
				{InlineData: &geminiInlineData{
					MIMEType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(data),
				}},
			},
		}},
		GenerationConfig: geminiGenConfig{
			Temperature:     0.3,
			TopP:            0.8,
			TopK:            20,
			MaxOutputTokens: 150,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", &ProviderError{Transient: false, Err: err}
	}

	base := g.BaseURL
	if base == "" {
		base = DefaultGeminiBaseURL
	}
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", base, model, g.APIKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", &ProviderError{Transient: false, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := g.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		// Network-level failures (timeouts, resets) are worth retrying.
		return "", &ProviderError{Transient: true, Err: err}
	}
	defer resp.Body.Close()

	const maxResponseBytes = 1 << 20
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &ProviderError{Transient: true, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(resp.StatusCode, respBody)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", &ProviderError{Transient: true, Err: fmt.Errorf("decode response: %w", err)}
	}

	text := extractText(parsed)
	if text == "" {
		// Blocked or empty responses occasionally resolve on retry.
		return "", &ProviderError{Transient: true, Err: errors.New("response was blocked or empty")}
	}
	return text, nil
}

// classifyStatus maps an HTTP status to a transient or permanent error.
// Rate limits, timeouts and server errors retry; everything else (auth,
// invalid request, unknown model) fails immediately.
func classifyStatus(status int, body []byte) *ProviderError {
	transient := status == http.StatusTooManyRequests ||
		status == http.StatusRequestTimeout ||
		status >= 500
	return &ProviderError{
		StatusCode: status,
		Transient:  transient,
		Err:        fmt.Errorf("%s", firstLine(string(body))),
	}
}

func extractText(resp geminiResponse) string {
	for _, c := range resp.Candidates {
		for _, p := range c.Content.Parts {
			if t := strings.TrimSpace(p.Text); t != "" {
				return t
			}
		}
	}
	return ""
}

// buildPrompt combines the schema instruction with per-image context.
func buildPrompt(s Settings, ocrTokens []string) string {
	user := fmt.Sprintf("Describe this image in a filename. Max %d chars. Style: %s.", s.MaxLength, s.Casing)
	if s.OCREnabled {
		user += " Text visible in the image: " + FormatTokensForPrompt(ocrTokens) + "."
	}
	return geminiSystemPrompt + "\n\n" + user + " Return JSON only."
}

// preparePreview downscales oversized images to previewMaxDimension on the
// longest side and re-encodes as JPEG. Undecodable input is sent unchanged.
func preparePreview(data []byte, mimeType string) ([]byte, string) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data, mimeType
	}

	bounds := img.Bounds()
	if bounds.Dx() <= previewMaxDimension && bounds.Dy() <= previewMaxDimension {
		return data, mimeType
	}

	resized := imaging.Fit(img, previewMaxDimension, previewMaxDimension, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(previewJPEGQuality)); err != nil {
		return data, mimeType
	}
	return buf.Bytes(), "image/jpeg"
}
