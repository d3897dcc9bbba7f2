package provider

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tenpin/leaguebook/internal/domain"
)

// completionServer answers every chat completion with content and records
// the last request body.
func completionServer(t *testing.T, status int, content string, got *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if got != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"boom"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"content": content}}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(url string) *ExtractionClient {
	return NewExtractionClient(url+"/", "test-key", "gpt-4o", slog.New(slog.DiscardHandler))
}

func TestExtractionClient_Roster(t *testing.T) {
	var req map[string]any
	srv := completionServer(t, http.StatusOK, `{
		"teamName": " Pin Pals ",
		"bowlers": [
			{"name": "Ann Lee", "startingAverage": 182.5, "confidence": "high"},
			{"name": "Bo", "confidence": "Medium"},
			{"name": "Cy", "startingAverage": 340, "confidence": "high"},
			{"name": "  ", "startingAverage": 100, "confidence": "high"},
			{"name": "Di", "startingAverage": 120, "confidence": "unsure"}
		]}`, &req)

	roster, err := newTestClient(srv.URL).ExtractRoster(context.Background(), "aGVsbG8=")
	require.NoError(t, err)

	assert.Equal(t, "Pin Pals", roster.TeamName)
	assert.Equal(t, []domain.ExtractedBowler{
		{Name: "Ann Lee", StartingAverage: 182.5, Confidence: domain.ConfidenceHigh},
		{Name: "Bo", StartingAverage: 150, Confidence: domain.ConfidenceMedium},
		{Name: "Cy", StartingAverage: 300, Confidence: domain.ConfidenceLow},
		{Name: "Di", StartingAverage: 120, Confidence: domain.ConfidenceLow},
	}, roster.Bowlers)

	assert.Equal(t, "gpt-4o", req["model"])
	assert.EqualValues(t, 2000, req["max_tokens"])
	assert.Equal(t, map[string]any{"type": "json_object"}, req["response_format"])
	msgs := req["messages"].([]any)
	require.Len(t, msgs, 2)
	user := msgs[1].(map[string]any)["content"].([]any)
	image := user[1].(map[string]any)["image_url"].(map[string]any)
	assert.Equal(t, "data:image/jpeg;base64,aGVsbG8=", image["url"])
}

func TestExtractionClient_Scores(t *testing.T) {
	var req map[string]any
	srv := completionServer(t, http.StatusOK, `{"scores": [
		{"bowlerName": "Ann Lee", "game1": 181, "game2": 199.6, "confidence": "high"},
		{"bowlerName": "Bo", "game1": 312, "game3": 150, "confidence": "high"}
	]}`, &req)

	sheet, err := newTestClient(srv.URL).ExtractScores(context.Background(), "aGVsbG8=", []string{"Ann Lee", "Bo"})
	require.NoError(t, err)
	require.Len(t, sheet.Scores, 2)

	ann := sheet.Scores[0]
	require.NotNil(t, ann.Game1)
	require.NotNil(t, ann.Game2)
	assert.Equal(t, 181, *ann.Game1)
	assert.Equal(t, 200, *ann.Game2)
	assert.Nil(t, ann.Game3)
	assert.Equal(t, domain.ConfidenceHigh, ann.Confidence)

	bo := sheet.Scores[1]
	assert.Nil(t, bo.Game1, "out of range scores are dropped")
	require.NotNil(t, bo.Game3)
	assert.Equal(t, 150, *bo.Game3)
	assert.Equal(t, domain.ConfidenceLow, bo.Confidence)

	system := req["messages"].([]any)[0].(map[string]any)["content"].(string)
	assert.True(t, strings.Contains(system, "Known bowlers to match: Ann Lee, Bo."))
}

func TestExtractionClient_EmptyContent(t *testing.T) {
	srv := completionServer(t, http.StatusOK, "", nil)

	sheet, err := newTestClient(srv.URL).ExtractScores(context.Background(), "aGVsbG8=", nil)
	require.NoError(t, err)
	assert.Empty(t, sheet.Scores)
}

func TestExtractionClient_Errors(t *testing.T) {
	t.Run("upstream status", func(t *testing.T) {
		srv := completionServer(t, http.StatusBadGateway, "", nil)
		_, err := newTestClient(srv.URL).ExtractRoster(context.Background(), "aGVsbG8=")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "api returned 502")
	})

	t.Run("content is not json", func(t *testing.T) {
		srv := completionServer(t, http.StatusOK, "sorry, I can't read that", nil)
		_, err := newTestClient(srv.URL).ExtractRoster(context.Background(), "aGVsbG8=")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode roster")
	})
}
