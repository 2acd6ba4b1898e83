package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/raine/chadorchud-bot/internal/catalog"
	"github.com/raine/chadorchud-bot/internal/intake"
	"github.com/raine/chadorchud-bot/internal/rating"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash"

const temperature = 0.85

// Gemini 2.5 Flash pricing (per million tokens)
const (
	geminiInputPricePerMillion  = 0.30
	geminiOutputPricePerMillion = 2.50 // including thinking
)

const analysisPrompt = `Analyze this image based on rigorous internet 'looksmaxxing' standards and physiognomy analysis.

CRITICAL EVALUATION GUIDELINES:
1. Look past the "halo effect". Focus on raw bone structure, facial harmony, and health markers.
2. SCORING:
   - 80-100: Exceptional genetics or maximized potential (CHAD).
   - 60-79: Average to above average (normie with potential).
   - 0-59: Unkempt, poor hygiene, or weak features (CHUD).
3. CELEBRITIES: Rate them as if they were a normal person. Fame does not add points.

TONE & STYLE:
- Brutally honest but humorous.
- Use internet slang correctly (mogging, looksmaxxing, negative aura, prey eyes).
- The title must be creative and specific to the person's archetype. No generic titles like "Average Joe".

RECOMMENDATION PROTOCOL:
Select exactly %d recommendations from the PRODUCT CATALOG below. Use the exact product name as productSearchTerm.
Rule A: Exactly ONE recommendation MUST be from the '%s' category.
Rule B: The other recommendations address the person's most significant flaws (skin, hair, style, muscle).

PRODUCT CATALOG:
%s

If the image is not of a person, return a neutral or low score with a humorous title about them not being human.`

// contentGenerator is the subset of *genai.Models used by the analyzer.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiConfig configures NewGeminiAnalyzer.
type GeminiConfig struct {
	APIKey  string
	Model   string // defaults to DefaultModel
	Catalog *catalog.Catalog
}

// GeminiAnalyzer rates images with a single structured-output Gemini call.
// It implements rating.Analyzer.
type GeminiAnalyzer struct {
	models contentGenerator
	model  string
	prompt string

	mu    sync.Mutex
	usage Usage
}

var _ rating.Analyzer = (*GeminiAnalyzer)(nil)

// NewGeminiAnalyzer creates a new Gemini-based analyzer. It returns
// rating.ErrNotConfigured when no API key is given.
func NewGeminiAnalyzer(ctx context.Context, cfg GeminiConfig) (*GeminiAnalyzer, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, rating.ErrNotConfigured
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return newGeminiAnalyzer(client.Models, cfg.Model, cfg.Catalog), nil
}

func newGeminiAnalyzer(models contentGenerator, model string, cat *catalog.Catalog) *GeminiAnalyzer {
	if model == "" {
		model = DefaultModel
	}
	if cat == nil {
		cat = catalog.Default()
	}
	return &GeminiAnalyzer{
		models: models,
		model:  model,
		prompt: buildPrompt(cat),
	}
}

func buildPrompt(cat *catalog.Catalog) string {
	return fmt.Sprintf(analysisPrompt, rating.RecommendationCount, catalog.CategoryEnhancement, cat.PromptText())
}

// Ready always succeeds; a missing key is caught by the constructor.
func (g *GeminiAnalyzer) Ready() error {
	return nil
}

// Usage returns the cumulative usage of all calls so far.
func (g *GeminiAnalyzer) Usage() Usage {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.usage
}

// Analyze sends the image, prompt and schema in one request. There is no
// retry. Every failure is returned as *rating.RemoteError.
func (g *GeminiAnalyzer) Analyze(ctx context.Context, payload intake.Payload) (*rating.Analysis, error) {
	data, err := payload.Bytes()
	if err != nil {
		return nil, rating.NewRemoteError(err)
	}

	parts := []*genai.Part{
		{InlineData: &genai.Blob{Data: data, MIMEType: payload.MIMEType}},
		genai.NewPartFromText(g.prompt),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   analysisSchema(),
		Temperature:      genai.Ptr[float32](temperature),
	}

	result, err := g.models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return nil, rating.NewRemoteError(fmt.Errorf("failed to generate content: %w", err))
	}
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, rating.NewRemoteError(errors.New("no response from Gemini"))
	}

	usage := g.recordUsage(result.UsageMetadata)
	log.Info().
		Str("model", g.model).
		Str("mimeType", payload.MIMEType).
		Int("imageBytes", payload.Size).
		Int64("inputTokens", usage.InputTokens).
		Int64("outputTokens", usage.OutputTokens).
		Float64("costUSD", usage.CostUSD).
		Msg("vision llm call")

	text := result.Text()
	log.Debug().Str("response", text).Msg("rating llm output")

	analysis, err := parseAnalysis(text)
	if err != nil {
		return nil, rating.NewRemoteError(err)
	}
	if err := analysis.Validate(); err != nil {
		return nil, rating.NewRemoteError(fmt.Errorf("invalid analysis: %w", err))
	}
	return analysis, nil
}

func (g *GeminiAnalyzer) recordUsage(meta *genai.GenerateContentResponseUsageMetadata) Usage {
	usage := Usage{Calls: 1}
	if meta != nil {
		usage.InputTokens = int64(meta.PromptTokenCount)
		usage.OutputTokens = int64(meta.CandidatesTokenCount)
		usage.TotalTokens = int64(meta.TotalTokenCount)
		usage.CostUSD = calculateGeminiCost(usage.InputTokens, usage.OutputTokens, geminiInputPricePerMillion, geminiOutputPricePerMillion)
	}
	g.mu.Lock()
	g.usage.add(usage)
	g.mu.Unlock()
	return usage
}

func calculateGeminiCost(inputTokens, outputTokens int64, inputPrice, outputPrice float64) float64 {
	inputCost := float64(inputTokens) / 1_000_000 * inputPrice
	outputCost := float64(outputTokens) / 1_000_000 * outputPrice
	return inputCost + outputCost
}

func analysisSchema() *genai.Schema {
	categories := make([]string, len(catalog.Categories))
	for i, c := range catalog.Categories {
		categories[i] = string(c)
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"verdict": {
				Type:        genai.TypeString,
				Enum:        []string{string(rating.VerdictChad), string(rating.VerdictChud)},
				Description: "CHAD for attractive, confident, well-groomed features. CHUD for unkempt, unflattering or low-effort presentation.",
			},
			"score": {
				Type:        genai.TypeInteger,
				Description: "Aesthetic rating from 0 to 100.",
			},
			"title": {
				Type:        genai.TypeString,
				Description: "A specific, creative, slightly roasting 2-5 word title for the person's vibe, e.g. 'Suburban Step-Dad Final Boss'.",
			},
			"explanation": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "3 concise bullet points explaining the rating, using physiognomy terms and internet slang.",
			},
			"keyFeatures": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "3-5 specific physical traits, e.g. 'Positive canthal tilt', 'Recessed chin'.",
			},
			"improvements": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"category":          {Type: genai.TypeString, Enum: categories},
						"suggestion":        {Type: genai.TypeString, Description: "Actionable advice explaining why this product helps this person's flaws."},
						"productSearchTerm": {Type: genai.TypeString, Description: "The exact product name from the catalog."},
					},
					Required:         []string{"category", "suggestion", "productSearchTerm"},
					PropertyOrdering: []string{"category", "suggestion", "productSearchTerm"},
				},
				Description: fmt.Sprintf("Exactly %d recommendations from the catalog. One must be from the %s category.", rating.RecommendationCount, catalog.CategoryEnhancement),
			},
		},
		Required:         []string{"verdict", "score", "title", "explanation", "keyFeatures", "improvements"},
		PropertyOrdering: []string{"verdict", "score", "title", "explanation", "keyFeatures", "improvements"},
	}
}

type analysisReply struct {
	Verdict      string   `json:"verdict"`
	Score        int      `json:"score"`
	Title        string   `json:"title"`
	Explanation  []string `json:"explanation"`
	KeyFeatures  []string `json:"keyFeatures"`
	Improvements []struct {
		Category          string `json:"category"`
		Suggestion        string `json:"suggestion"`
		ProductSearchTerm string `json:"productSearchTerm"`
	} `json:"improvements"`
}

// extractJSONObject extracts a JSON object from text that may contain markdown
// code blocks or other formatting.
func extractJSONObject(text string) (string, error) {
	text = strings.TrimSpace(text)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("no JSON object found in response: %q", text)
	}
	return text[start : end+1], nil
}

func parseAnalysis(text string) (*rating.Analysis, error) {
	jsonStr, err := extractJSONObject(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse response JSON: %w", err)
	}

	var reply analysisReply
	if err := json.Unmarshal([]byte(jsonStr), &reply); err != nil {
		return nil, fmt.Errorf("failed to parse response JSON: %w (response: %s)", err, jsonStr)
	}

	a := &rating.Analysis{
		Verdict:     rating.ParseVerdict(reply.Verdict),
		Score:       reply.Score,
		Title:       strings.TrimSpace(reply.Title),
		Explanation: reply.Explanation,
		KeyFeatures: reply.KeyFeatures,
	}
	for _, imp := range reply.Improvements {
		a.Improvements = append(a.Improvements, rating.Improvement{
			Category:   catalog.Category(strings.TrimSpace(imp.Category)),
			Suggestion: strings.TrimSpace(imp.Suggestion),
			Product:    strings.TrimSpace(imp.ProductSearchTerm),
		})
	}
	return a, nil
}
