package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/packlane/wmsgo/internal/utils"
	"google.golang.org/api/option"
)

const extractionPrompt = `
You are reading a photographed paper delivery note from a warehouse.

### OUTPUT FORMAT
Return ONLY a JSON object with this structure, no prose:
{
  "deliveryNoteNumber": "string or empty",
  "cargoMarking": "the order/cargo reference printed on the note, or empty",
  "items": [
    {"articleNumber": "string", "orderNumber": "string", "description": "string", "quantity": 0}
  ]
}

### RULES
- Copy article numbers exactly as printed, including leading zeros.
- quantity is the delivered quantity as an integer.
- Leave fields you cannot read as empty string or 0; never guess.
`

// GeminiExtractor reads delivery notes with the Gemini API
type GeminiExtractor struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiExtractor creates a Gemini-backed extractor
func NewGeminiExtractor(ctx context.Context, apiKey, modelName string) (*GeminiExtractor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is empty")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	if modelName == "" {
		modelName = "gemini-3-flash-preview"
	}

	return &GeminiExtractor{
		client: client,
		model:  client.GenerativeModel(modelName),
	}, nil
}

// Close closes the client connection
func (e *GeminiExtractor) Close() {
	if e.client != nil {
		e.client.Close()
	}
}

// ExtractDeliveryNote sends the image to Gemini and parses the structured
// answer
func (e *GeminiExtractor) ExtractDeliveryNote(ctx context.Context, image []byte, mimeType string) (*ExtractedNote, error) {
	format := strings.TrimPrefix(mimeType, "image/")
	if format == "" || format == mimeType {
		format = "jpeg"
	}

	resp, err := e.model.GenerateContent(ctx,
		genai.Text(extractionPrompt),
		genai.ImageData(format, image),
	)
	if err != nil {
		return nil, fmt.Errorf("gemini generation error: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from gemini")
	}

	var fullText string
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			fullText += string(txt)
		}
	}

	note, err := parseExtraction(fullText)
	if err != nil {
		return nil, err
	}
	return note, nil
}

// parseExtraction tolerates the model wrapping its JSON in markdown fences
func parseExtraction(text string) (*ExtractedNote, error) {
	cleaned := utils.SanitizeJSON(text)

	var note ExtractedNote
	if err := json.Unmarshal([]byte(cleaned), &note); err != nil {
		return nil, fmt.Errorf("failed to parse extraction result: %w", err)
	}

	// Untrusted input: drop lines without an article number and clamp
	// negative quantities
	items := note.Items[:0]
	for _, item := range note.Items {
		if strings.TrimSpace(item.ArticleNumber) == "" {
			continue
		}
		if item.Quantity < 0 {
			item.Quantity = 0
		}
		items = append(items, item)
	}
	note.Items = items

	return &note, nil
}
