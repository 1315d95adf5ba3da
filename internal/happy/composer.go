package happy

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured
const DefaultModel = "gemini-2.5-flash"

// Email is a composed message
type Email struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Composer writes the email for one job
type Composer interface {
	Compose(ctx context.Context, jobType, prompt string, uc *UserContext) (*Email, error)
}

// GenAIComposer asks Gemini to write the email
type GenAIComposer struct {
	client *genai.Client
	model  string
}

// NewGenAIComposer creates a Gemini-backed composer
func NewGenAIComposer(ctx context.Context, apiKey, model string) (*GenAIComposer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GenAIComposer{client: client, model: model}, nil
}

func (g *GenAIComposer) Compose(ctx context.Context, _ string, prompt string, uc *UserContext) (*Email, error) {
	data, err := json.MarshalIndent(uc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode context: %w", err)
	}
	message := prompt + "\n\nContext data:\n" + string(data)

	result, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromText(message, genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(SystemPrompt, genai.RoleUser),
			Temperature:       genai.Ptr[float32](0.9),
			MaxOutputTokens:   500,
			ResponseMIMEType:  "application/json",
		},
	)
	if err != nil {
		return nil, fmt.Errorf("GenAI generate failed: %w", err)
	}

	email := parseEmail(result.Text())
	if email.Subject == "" || email.Body == "" {
		return nil, fmt.Errorf("model returned an empty email")
	}
	return email, nil
}

var (
	subjectPrefix = regexp.MustCompile(`(?i)^subject:\s*`)
	bodyPrefix    = regexp.MustCompile(`(?i)^body:\s*`)
)

// parseEmail reads the model's JSON reply. Anything else is split into a
// first-line subject and a body.
func parseEmail(text string) *Email {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimSuffix(strings.TrimPrefix(text, "```"), "```")
	text = strings.TrimSpace(text)

	var email Email
	if err := json.Unmarshal([]byte(text), &email); err == nil && email.Subject != "" {
		return &email
	}

	subject, body, _ := strings.Cut(text, "\n")
	return &Email{
		Subject: strings.TrimSpace(subjectPrefix.ReplaceAllString(subject, "")),
		Body:    strings.TrimSpace(bodyPrefix.ReplaceAllString(strings.TrimSpace(body), "")),
	}
}

// TemplateComposer writes fixed emails from the context, for deployments
// without a model key
type TemplateComposer struct{}

func (TemplateComposer) Compose(_ context.Context, jobType, _ string, uc *UserContext) (*Email, error) {
	name := uc.UserName
	if name == "" {
		name = "there"
	}

	var subject string
	var b strings.Builder
	fmt.Fprintf(&b, "hey %s,\n\n", name)

	switch jobType {
	case JobMorning:
		if uc.TotalTasksToday == 0 {
			subject = "👀 nothing on today?"
			b.WriteString("your today list is empty. planned day off, or did you forget? grab something from someday or line up tomorrow.\n")
			break
		}
		subject = "☀️ today's lineup"
		b.WriteString("here's what's on today:\n")
		for _, t := range uc.TodayTasks {
			fmt.Fprintf(&b, "  - %s\n", t.Task)
		}
		b.WriteString("\nstart with the one you least want to do.\n")
	case JobMidday:
		subject = "⏰ midday check"
		fmt.Fprintf(&b, "%d done, %d to go. keep it moving.\n", uc.CompletedToday, uc.PendingToday)
	case JobEvening:
		subject = "🌙 today, wrapped"
		fmt.Fprintf(&b, "you finished %d of %d today.", uc.CompletedToday, uc.TotalTasksToday)
		if uc.PendingToday > 0 {
			fmt.Fprintf(&b, " %d carry over to tomorrow.", uc.PendingToday)
		}
		b.WriteString(" rest up.\n")
	case JobFriday:
		subject = "🍻 week's done"
		fmt.Fprintf(&b, "%d wins this week. take the weekend off, you've earned some of it.\n", uc.WinsThisWeek)
	case JobSunday:
		subject = "🫶 how are you, really?"
		b.WriteString("forget the list for a sec. what went well this week, and what drained you?\n")
	case JobStaleTask:
		subject = "🕸️ this one's gathering dust"
		if len(uc.StaleTasks) > 0 {
			t := uc.StaleTasks[0]
			fmt.Fprintf(&b, "%q has been sitting for %d hours. do it, move it to someday, or delete it.\n", t.Task, t.AgeHours)
		}
	case JobInactivity:
		subject = "👋 you alive?"
		fmt.Fprintf(&b, "it's been %d days. %d tasks are still waiting on you.\n", uc.DaysInactive, uc.PendingToday)
	case JobCelebration:
		subject = "🎉 all done"
		fmt.Fprintf(&b, "all %d of today's tasks, checked off. go do nothing for a bit.\n", uc.CompletedToday)
	default:
		return nil, fmt.Errorf("no template for job %q", jobType)
	}

	b.WriteString("\n- Happy")
	return &Email{Subject: subject, Body: b.String()}, nil
}
