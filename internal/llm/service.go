package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"hr-engine/internal/engine"
	"hr-engine/pkg/httpclient"

	"go.uber.org/zap"
)

type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGroq   Provider = "groq"
	ProviderOllama Provider = "ollama"
	ProviderNone   Provider = "none"
)

const (
	openAIChatURL = "https://api.openai.com/v1/chat/completions"
	groqChatURL   = "https://api.groq.com/openai/v1/chat/completions"
	ollamaURL     = "http://localhost:11434/api/generate"
)

// Service is the text-generation collaborator: grounded answering, structured
// extraction of resumes and job descriptions, and interview question
// generation. The engine only ever hands it context and reads back text.
type Service struct {
	provider Provider
	apiKey   string
	model    string
	client   *httpclient.Client
	logger   *zap.Logger
}

func NewService(provider, apiKey, model string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		provider: Provider(provider),
		apiKey:   apiKey,
		model:    model,
		client:   httpclient.New(120 * time.Second),
		logger:   logger,
	}
}

// ResumeExtraction is the structured profile the collaborator pulls out of a
// raw resume.
type ResumeExtraction struct {
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone"`
	ExperienceYears int      `json:"experience_years"`
	Skills          []string `json:"skills"`
	Education       []string `json:"education"`
}

// InterviewQuestion pairs a question with the concepts a good answer should
// touch.
type InterviewQuestion struct {
	Question string   `json:"question"`
	Keywords []string `json:"keywords"`
}

// Answer generates a grounded reply from the supplied policy snippets. Callers
// must never invoke it with empty context; the chatbot short-circuits that
// case before reaching here.
func (s *Service) Answer(ctx context.Context, question string, contextSnippets []string) (string, error) {
	prompt := fmt.Sprintf(`Answer the employee's question using ONLY the policy documents provided below.

HR Policy Context:
%s

Employee Question: %s

Instructions:
- Give a clear, helpful answer
- ONLY use information from the policy documents above
- Mention which policy document the info comes from
- If the answer isn't in the policies, say so honestly

Answer:`, strings.Join(contextSnippets, "\n\n"), question)

	system := "You are a helpful HR assistant. Only answer based on the provided policy documents. Never make up information."
	return s.chat(ctx, system, prompt, false, 0.3)
}

// ExtractResumeProfile parses a raw resume into a structured profile.
func (s *Service) ExtractResumeProfile(ctx context.Context, resumeText string) (*ResumeExtraction, error) {
	prompt := fmt.Sprintf(`You are an expert resume parser. Extract structured information from this resume.

Resume Text:
%s

Extract the following in valid JSON format:
{
  "name": "candidate's full name",
  "email": "email address",
  "phone": "phone number",
  "skills": ["list", "of", "technical", "skills"],
  "experience_years": 0,
  "education": ["degree and institution"]
}

Rules:
- Only extract information that's explicitly in the resume
- For skills: include programming languages, frameworks, tools, technologies
- Normalize skill names (e.g., "K8s" -> "Kubernetes", "JS" -> "JavaScript")
- For experience_years: estimate from work history
- Return ONLY the JSON object, no other text`, truncate(resumeText, 3000))

	raw, err := s.chat(ctx, "You are a resume parser. Return only valid JSON.", prompt, true, 0.1)
	if err != nil {
		return nil, err
	}

	var extraction ResumeExtraction
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &extraction); err != nil {
		return nil, fmt.Errorf("parse resume extraction: %w", err)
	}
	return &extraction, nil
}

// ExtractJobSkills pulls the required technical skills out of a job
// description.
func (s *Service) ExtractJobSkills(ctx context.Context, jobDescription string) ([]string, error) {
	prompt := fmt.Sprintf(`Extract the required technical skills from this job description.

Job Description:
%s

Return ONLY a JSON object with a single "skills" array of skill names
(programming languages, frameworks, tools, technologies).
Example: {"skills": ["Python", "Machine Learning", "AWS", "Docker"]}`, jobDescription)

	raw, err := s.chat(ctx, "You are a job description parser. Return only valid JSON.", prompt, true, 0.1)
	if err != nil {
		return nil, err
	}

	var result struct {
		Skills []string `json:"skills"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &result); err != nil {
		return nil, fmt.Errorf("parse job skills: %w", err)
	}
	return result.Skills, nil
}

// InterviewQuestions generates n questions tailored to the role and the
// candidate's matched skills, each with evaluation keywords.
func (s *Service) InterviewQuestions(ctx context.Context, jobDescription string, matchedSkills []string, experienceYears, n int) ([]InterviewQuestion, error) {
	if len(matchedSkills) > 10 {
		matchedSkills = matchedSkills[:10]
	}
	prompt := fmt.Sprintf(`You are an expert technical interviewer. Generate %d interview questions for this candidate.

JOB DESCRIPTION (what we're hiring for):
%s

CANDIDATE PROFILE (who we're interviewing):
- Technical skills they have: %s
- Years of experience: %d

Create questions that are:
1. Specific to the technologies mentioned in the JD
2. Appropriate for their experience level
3. A mix of technical depth and practical application
4. Actually answerable (not trick questions)

For each question, also provide "evaluation keywords" - the key concepts or
techniques you'd expect in a good answer.

Return ONLY a JSON object of this shape:
{"questions": [{"question": "...", "keywords": ["...", "..."]}]}`,
		n, truncate(jobDescription, 1000), strings.Join(matchedSkills, ", "), experienceYears)

	raw, err := s.chat(ctx, "You are a technical interviewer. Return only valid JSON.", prompt, true, 0.7)
	if err != nil {
		return nil, err
	}

	var result struct {
		Questions []InterviewQuestion `json:"questions"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &result); err != nil {
		return nil, fmt.Errorf("parse interview questions: %w", err)
	}
	return result.Questions, nil
}

// chat sends one completion request to the configured provider and returns
// the raw content. Transport and HTTP failures map to
// engine.ErrCollaboratorUnavailable so callers can treat them as retryable.
func (s *Service) chat(ctx context.Context, system, user string, jsonMode bool, temperature float64) (string, error) {
	switch s.provider {
	case ProviderOpenAI:
		return s.callOpenAICompatible(ctx, openAIChatURL, system, user, jsonMode, temperature)
	case ProviderGroq:
		return s.callOpenAICompatible(ctx, groqChatURL, system, user, jsonMode, temperature)
	case ProviderOllama:
		return s.callOllama(ctx, system, user, jsonMode)
	case ProviderNone, "":
		return "", fmt.Errorf("%w: llm provider not configured", engine.ErrCollaboratorUnavailable)
	default:
		return "", fmt.Errorf("%w: unknown llm provider: %s", engine.ErrCollaboratorUnavailable, s.provider)
	}
}

// callOpenAICompatible talks to OpenAI and Groq, which share a wire format.
func (s *Service) callOpenAICompatible(ctx context.Context, url, system, user string, jsonMode bool, temperature float64) (string, error) {
	reqBody := map[string]interface{}{
		"model": s.model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
		"temperature": temperature,
	}
	if jsonMode {
		reqBody["response_format"] = map[string]string{"type": "json_object"}
	}
	jsonData, _ := json.Marshal(reqBody)

	start := time.Now()
	resp, err := s.client.PostJSON(ctx, url, map[string]string{"Authorization": "Bearer " + s.apiKey}, jsonData)
	if err != nil {
		return "", fmt.Errorf("%w: chat request: %v", engine.ErrCollaboratorUnavailable, err)
	}
	defer resp.Body.Close()

	s.logger.Debug("chat completion request finished",
		zap.String("provider", string(s.provider)), zap.Duration("took", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: chat API error: %d", engine.ErrCollaboratorUnavailable, resp.StatusCode)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%w: decode chat response: %v", engine.ErrCollaboratorUnavailable, err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("%w: chat API error: %s", engine.ErrCollaboratorUnavailable, result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("%w: no response from provider", engine.ErrCollaboratorUnavailable)
	}
	return result.Choices[0].Message.Content, nil
}

func (s *Service) callOllama(ctx context.Context, system, user string, jsonMode bool) (string, error) {
	reqBody := map[string]interface{}{
		"model":  s.model,
		"prompt": system + "\n\n" + user,
		"stream": false,
	}
	if jsonMode {
		reqBody["format"] = "json"
	}
	jsonData, _ := json.Marshal(reqBody)

	resp, err := s.client.PostJSON(ctx, ollamaURL, nil, jsonData)
	if err != nil {
		return "", fmt.Errorf("%w: ollama connection failed (is Ollama running?): %v", engine.ErrCollaboratorUnavailable, err)
	}
	defer resp.Body.Close()

	var result struct {
		Response string `json:"response"`
		Error    string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%w: decode ollama response: %v", engine.ErrCollaboratorUnavailable, err)
	}
	if result.Error != "" {
		return "", fmt.Errorf("%w: ollama error: %s", engine.ErrCollaboratorUnavailable, result.Error)
	}
	return result.Response, nil
}

// stripCodeFence removes a surrounding markdown code fence. Some models wrap
// JSON in ```json blocks even when asked not to.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, "```json"); idx >= 0 {
		s = s[idx+len("```json"):]
	} else if idx := strings.Index(s, "```"); idx >= 0 {
		s = s[idx+len("```"):]
	} else {
		return s
	}
	if idx := strings.Index(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
