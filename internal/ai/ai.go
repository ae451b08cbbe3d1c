package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// AIService holds the Gemini client used for every text-based capability
// (articles, blog titles, resume reviews).
type AIService struct {
	Client    *genai.Client
	ModelName string
}

// NewAIService initializes the Gemini client.
func NewAIService(ctx context.Context, apiKey, modelName string) (*AIService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if modelName == "" {
		modelName = "gemini-2.0-flash" // fallback default
	}
	return &AIService{Client: client, ModelName: modelName}, nil
}

// Close releases the underlying client connection.
func (s *AIService) Close() error {
	return s.Client.Close()
}

// GenerateArticle produces article text for a prompt. 'length' caps the
// output tokens; zero or negative means the model default.
func (s *AIService) GenerateArticle(ctx context.Context, prompt string, length int) (string, error) {
	model := s.Client.GenerativeModel(s.ModelName)
	model.SetTemperature(0.7)
	if length > 0 {
		model.SetMaxOutputTokens(int32(length))
	}

	res, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generating article: %w", err)
	}
	return textFromResponse(res)
}

// GenerateBlogTitle produces blog title suggestions for a keyword/topic.
func (s *AIService) GenerateBlogTitle(ctx context.Context, prompt string) (string, error) {
	model := s.Client.GenerativeModel(s.ModelName)
	model.SetTemperature(0.7)
	model.SetMaxOutputTokens(100)

	res, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generating blog title: %w", err)
	}
	return textFromResponse(res)
}

// ResumeReview is the structured review the model returns for a resume.
type ResumeReview struct {
	Score       int      `json:"score"`
	Strengths   []string `json:"strengths"`
	Weaknesses  []string `json:"weaknesses"`
	Suggestions []string `json:"suggestions"`
}

// ReviewResume asks the model for a structured review of extracted
// resume text. JSON response mode keeps the output parseable.
func (s *AIService) ReviewResume(ctx context.Context, resumeText string) (ResumeReview, error) {
	model := s.Client.GenerativeModel(s.ModelName)
	model.SetTemperature(0.3)
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(`
			You are a professional resume reviewer. Respond with a JSON object:
			{"score": <0-100>, "strengths": [...], "weaknesses": [...], "suggestions": [...]}
			Score the resume overall; keep every list entry to one sentence.
		`)},
	}

	res, err := model.GenerateContent(ctx, genai.Text("Review this resume:\n\n"+resumeText))
	if err != nil {
		return ResumeReview{}, fmt.Errorf("reviewing resume: %w", err)
	}

	raw, err := textFromResponse(res)
	if err != nil {
		return ResumeReview{}, err
	}

	var review ResumeReview
	if err := json.Unmarshal([]byte(raw), &review); err != nil {
		return ResumeReview{}, fmt.Errorf("decoding resume review: %w", err)
	}
	return review, nil
}

// textFromResponse concatenates the text parts of the first candidate.
func textFromResponse(res *genai.GenerateContentResponse) (string, error) {
	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return "", fmt.Errorf("model returned no candidates")
	}
	var sb strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("model returned no text")
	}
	return sb.String(), nil
}
