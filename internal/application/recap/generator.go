package recap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yonasKu/sproutbook-api/internal/domain"
)

// Generation call shapes: a body paragraph and a short title are independent
// network calls with their own length and temperature settings.
const (
	bodyMaxTokens  = 1024
	bodyTemp       = 0.7
	titleMaxTokens = 64
	titleTemp      = 0.9
	titleMaxLen    = 85
)

const systemRole = "You are a warm, concise writer helping parents remember their child's everyday moments. " +
	"Write in second person, present a gentle narrative, and never invent events that are not in the notes."

// TextGenerator is the port to the external generation service.
type TextGenerator interface {
	Generate(ctx context.Context, system, prompt string, maxTokens int32, temperature float32) (string, error)
}

// ContentGenerator builds deterministic prompts from aggregated data and
// delegates to the generation service. Title and body calls degrade
// independently: an unusable title falls back to a template, while a failed
// body call is an error (no partial recap is ever written from it).
type ContentGenerator struct {
	llm TextGenerator
}

func NewContentGenerator(llm TextGenerator) *ContentGenerator {
	return &ContentGenerator{llm: llm}
}

// GenerateBody returns the recap's narrative paragraph.
func (g *ContentGenerator) GenerateBody(ctx context.Context, agg *domain.AggregationResult, kind domain.PeriodKind) (string, error) {
	prompt := BodyPrompt(agg, kind)
	text, err := g.llm.Generate(ctx, systemRole, prompt, bodyMaxTokens, bodyTemp)
	if err != nil {
		return "", fmt.Errorf("%v: %w", err, domain.ErrGeneration)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("empty body response: %w", domain.ErrGeneration)
	}
	return text, nil
}

// GenerateTitle returns a short title for the recap. Any failure or unusable
// response degrades to the deterministic template title.
func (g *ContentGenerator) GenerateTitle(ctx context.Context, agg *domain.AggregationResult, kind domain.PeriodKind, window domain.Window) string {
	prompt := TitlePrompt(agg, kind)
	text, err := g.llm.Generate(ctx, systemRole, prompt, titleMaxTokens, titleTemp)
	if err != nil {
		slog.Warn("title generation failed, using fallback", "period", kind, "error", err)
		return FallbackTitle(agg.ChildName, kind, window)
	}
	if title := sanitizeTitle(text); title != "" {
		return title
	}
	return FallbackTitle(agg.ChildName, kind, window)
}

// BodyPrompt builds the fixed-structure body prompt. Deterministic: bucket
// keys are rendered in their canonical order and missing buckets appear as
// "No entries" so the same aggregation always yields the same prompt.
func BodyPrompt(agg *domain.AggregationResult, kind domain.PeriodKind) string {
	if agg.TotalEntries == 0 {
		return emptyPeriodPrompt(agg, kind)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Write a single warm paragraph recapping %s for %s (%s).\n",
		periodFraming(kind), nameOrDefault(agg.ChildName), agg.ChildAge)
	fmt.Fprintf(&b, "Entries: %d. Milestones: %d. Photos: %d. Favorites: %d.\n",
		agg.TotalEntries, agg.Milestones.TotalMilestones, agg.Media.ImageCount, agg.FavoriteCount)

	keys := BucketKeys(kind)
	if len(keys) == 0 {
		fmt.Fprintf(&b, "Notes:\n%s\n", agg.CombinedText)
	} else {
		b.WriteString("Notes by period:\n")
		for _, key := range keys {
			text := agg.Buckets[key]
			if text == "" {
				text = "No entries"
			}
			fmt.Fprintf(&b, "- %s: %s\n", key, text)
		}
	}
	if len(agg.Milestones.Recent) > 0 {
		b.WriteString("Milestones to highlight:\n")
		for _, m := range agg.Milestones.Recent {
			fmt.Fprintf(&b, "- %s\n", m.Text)
		}
	}
	b.WriteString("Keep it under 200 words and ground every detail in the notes above.")
	return b.String()
}

// emptyPeriodPrompt asks for a gentle placeholder paragraph instead of a
// data-driven one.
func emptyPeriodPrompt(agg *domain.AggregationResult, kind domain.PeriodKind) string {
	return fmt.Sprintf(
		"No journal entries were recorded for %s for %s. "+
			"Write one short, gentle paragraph acknowledging the quiet period and encouraging the family to capture the next small moment. "+
			"Do not invent any events.",
		periodFraming(kind), nameOrDefault(agg.ChildName))
}

// TitlePrompt requests a single short line with no quotes or emojis.
func TitlePrompt(agg *domain.AggregationResult, kind domain.PeriodKind) string {
	return fmt.Sprintf(
		"Write one short title (at most %d characters) for a %s recap about %s. "+
			"Return only the title text: no quotes, no emojis, no punctuation at the end.",
		titleMaxLen, kind, nameOrDefault(agg.ChildName))
}

// FallbackTitle is the deterministic template used when the generation
// service returns nothing usable.
func FallbackTitle(childName string, kind domain.PeriodKind, window domain.Window) string {
	name := nameOrDefault(childName)
	switch kind {
	case domain.PeriodWeekly:
		return fmt.Sprintf("%s's Week %s - %s", name,
			window.Start.UTC().Format("Jan 2"), window.End.UTC().Format("Jan 2"))
	case domain.PeriodMonthly:
		return fmt.Sprintf("%s's %s", name, window.Start.UTC().Format("January 2006"))
	case domain.PeriodYearly:
		return fmt.Sprintf("%d Year in Review", window.Start.UTC().Year())
	default:
		return fmt.Sprintf("%s's Day - %s", name, window.Start.UTC().Format("Jan 2, 2006"))
	}
}

// sanitizeTitle strips quotes and emoji, collapses the response to its first
// line, and enforces the length cap. Returns "" when nothing usable remains.
func sanitizeTitle(raw string) string {
	line := strings.TrimSpace(raw)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	var b strings.Builder
	for _, r := range line {
		switch {
		case r == '"' || r == '\'' || r == '“' || r == '”' || r == '‘' || r == '’':
		case r > 0xFFFF: // astral-plane runes cover the emoji blocks
		default:
			b.WriteRune(r)
		}
	}
	title := strings.TrimSpace(b.String())
	if runes := []rune(title); len(runes) > titleMaxLen {
		title = strings.TrimSpace(string(runes[:titleMaxLen]))
	}
	return title
}

func periodFraming(kind domain.PeriodKind) string {
	switch kind {
	case domain.PeriodWeekly:
		return "the past week"
	case domain.PeriodMonthly:
		return "the past month"
	case domain.PeriodYearly:
		return "the past year"
	default:
		return "the day"
	}
}

func nameOrDefault(name string) string {
	if name == "" {
		return "Your child"
	}
	return name
}
