package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/tenpin/leaguebook/internal/domain"
)

const (
	extractionMaxTokens  = 2000
	defaultRosterAverage = 150
)

const rosterPrompt = `You are an expert at extracting bowling roster data from images.
Extract bowler names and their starting averages from the image.
Return a JSON object with this exact structure:
{
  "teamName": "optional team name if visible",
  "bowlers": [
    { "name": "Bowler Name", "startingAverage": 180, "confidence": "high" }
  ]
}

Confidence levels:
- "high": Text is clearly readable
- "medium": Text is somewhat unclear but best guess is provided
- "low": Text is hard to read, this is an uncertain guess

If you cannot read a value, use your best guess and mark confidence as "low".
Average scores should be between 0-300. If no average is visible, estimate based on context or use 150 as default.
Always return valid JSON.`

const scoresPrompt = `You are an expert at extracting bowling scores from score sheet images.
Extract each bowler's name and their game scores (up to 3 games).
%s
Return a JSON object with this exact structure:
{
  "scores": [
    { "bowlerName": "Bowler Name", "game1": 180, "game2": 195, "game3": 210, "confidence": "high" }
  ]
}

Confidence levels:
- "high": Scores are clearly readable
- "medium": Scores are somewhat unclear but best guess is provided
- "low": Scores are hard to read, this is an uncertain guess

If a game score is not visible or not played, omit that game field.
All scores should be between 0-300.
Always return valid JSON.`

// ExtractionClient reads rosters and score sheets from photos through an
// OpenAI compatible chat completions endpoint.
type ExtractionClient struct {
	baseURL string
	apiKey  string
	model   string
	logger  *slog.Logger
	client  *http.Client
}

// NewExtractionClient creates a new extraction client.
func NewExtractionClient(baseURL, apiKey, model string, logger *slog.Logger) *ExtractionClient {
	return &ExtractionClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		logger:  logger,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// ExtractRoster reads bowler names and averages from a team sheet photo.
// image is raw base64 without a data URL prefix.
func (c *ExtractionClient) ExtractRoster(ctx context.Context, image string) (*domain.RosterExtraction, error) {
	content, err := c.complete(ctx, rosterPrompt,
		"Extract all bowler names and their starting averages from this bowling roster or team sheet image.", image)
	if err != nil {
		return nil, err
	}

	var raw struct {
		TeamName string `json:"teamName"`
		Bowlers  []struct {
			Name            string        `json:"name"`
			StartingAverage *float64      `json:"startingAverage"`
			Confidence      rawConfidence `json:"confidence"`
		} `json:"bowlers"`
	}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("decode roster: %w", err)
	}

	out := &domain.RosterExtraction{TeamName: strings.TrimSpace(raw.TeamName), Bowlers: []domain.ExtractedBowler{}}
	for _, b := range raw.Bowlers {
		name := strings.TrimSpace(b.Name)
		if name == "" {
			continue
		}
		eb := domain.ExtractedBowler{Name: name, StartingAverage: defaultRosterAverage, Confidence: b.Confidence.label()}
		if b.StartingAverage != nil {
			avg := *b.StartingAverage
			if avg < 0 || avg > domain.MaxPins {
				eb.Confidence = domain.ConfidenceLow
			}
			eb.StartingAverage = math.Max(0, math.Min(avg, domain.MaxPins))
		}
		out.Bowlers = append(out.Bowlers, eb)
	}
	return out, nil
}

// ExtractScores reads per-game scores from a score sheet photo. Known bowler
// names are passed to the model as matching hints.
func (c *ExtractionClient) ExtractScores(ctx context.Context, image string, bowlerNames []string) (*domain.ScoreSheetExtraction, error) {
	hint := ""
	if len(bowlerNames) > 0 {
		hint = fmt.Sprintf("Known bowlers to match: %s. Try to match extracted names to these known bowlers.\n", strings.Join(bowlerNames, ", "))
	}
	content, err := c.complete(ctx, fmt.Sprintf(scoresPrompt, hint),
		"Extract all bowler names and their game scores from this bowling score sheet image.", image)
	if err != nil {
		return nil, err
	}

	var raw struct {
		Scores []struct {
			BowlerName string        `json:"bowlerName"`
			Game1      *float64      `json:"game1"`
			Game2      *float64      `json:"game2"`
			Game3      *float64      `json:"game3"`
			Confidence rawConfidence `json:"confidence"`
		} `json:"scores"`
	}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("decode score sheet: %w", err)
	}

	out := &domain.ScoreSheetExtraction{Scores: []domain.ExtractedScoreRow{}}
	for _, r := range raw.Scores {
		row := domain.ExtractedScoreRow{
			BowlerName: strings.TrimSpace(r.BowlerName),
			Confidence: r.Confidence.label(),
		}
		var bad bool
		row.Game1, bad = pinCount(r.Game1, bad)
		row.Game2, bad = pinCount(r.Game2, bad)
		row.Game3, bad = pinCount(r.Game3, bad)
		if bad {
			row.Confidence = domain.ConfidenceLow
		}
		out.Scores = append(out.Scores, row)
	}
	return out, nil
}

// pinCount rounds a game value and drops it when it cannot be a bowling score.
func pinCount(v *float64, bad bool) (*int, bool) {
	if v == nil {
		return nil, bad
	}
	if *v < 0 || *v > domain.MaxPins || math.IsNaN(*v) {
		return nil, true
	}
	n := int(math.Round(*v))
	return &n, bad
}

// rawConfidence accepts any label the model returns; unknown ones read as low.
type rawConfidence string

func (c rawConfidence) label() domain.Confidence {
	d := domain.Confidence(strings.ToLower(strings.TrimSpace(string(c))))
	if !d.Valid() {
		return domain.ConfidenceLow
	}
	return d
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail"`
}

// complete sends one vision prompt and returns the message content, which
// the model is asked to format as a JSON object.
func (c *ExtractionClient) complete(ctx context.Context, system, instruction, image string) (string, error) {
	reqBody := map[string]interface{}{
		"model": c.model,
		"messages": []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: []contentPart{
				{Type: "text", Text: instruction},
				{Type: "image_url", ImageURL: &imageURL{URL: "data:image/jpeg;base64," + image, Detail: "high"}},
			}},
		},
		"max_tokens":      extractionMaxTokens,
		"response_format": map[string]string{"type": "json_object"},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	started := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("api call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("api returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if response.Error != nil {
		return "", fmt.Errorf("api error: %s", response.Error.Message)
	}

	c.logger.Debug("extraction completed", "model", c.model, "duration_ms", time.Since(started).Milliseconds())
	if len(response.Choices) == 0 || strings.TrimSpace(response.Choices[0].Message.Content) == "" {
		return "{}", nil
	}
	return response.Choices[0].Message.Content, nil
}
