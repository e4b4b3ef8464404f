package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"chatrelay-backend/internal/models"
)

// Modes reported to the caller describing how an answer was produced.
const (
	ModePricing = "Pricing question — no AI used."
	ModeFAQ     = "FAQ matched."
	ModeAI      = "Groq AI used with your website content."
	ModeWebsite = "Website text match"
	ModeNoMatch = "No match"
)

const (
	retrieveTopK    = 3
	sourcePreview   = 200
	noResultsAnswer = "Sorry, nothing found on the site."
)

var pricingKeywords = []string{
	"price", "pricing", "cost", "charges", "charge", "rate", "rates",
	"quotation", "quote", "budget", "fees", "fee", "package",
	"how much", "per day", "per match", "per hour", "per event",
	"estimate", "approx price", "rough idea",
	// common misspellings seen in real enquiries
	"quat", "quatation", "qout", "qotation", "qoute", "quation",
}

// answerCleaner rewrites "platform" wording so replies read as a service,
// not a software product. Longest variants first.
var answerCleaner = strings.NewReplacer(
	"platforms", "broadcasting services",
	"platform", "broadcasting",
	"Platform", "Broadcasting",
	"PLATFORM", "BROADCASTING",
)

type chatCompleter interface {
	Configured() bool
	Complete(ctx context.Context, messages []models.ChatMessage) (string, error)
}

// AssistService answers free-form questions using the knowledge base, the
// FAQ index and, when available, the LLM. Answer order: pricing rule first,
// then FAQ, then retrieval-grounded LLM, then retrieval text alone.
type AssistService struct {
	kb          *KnowledgeBase
	faq         *FAQIndex
	llm         chatCompleter
	contactNote string
}

func NewAssistService(kb *KnowledgeBase, faq *FAQIndex, llm chatCompleter, contactNote string) *AssistService {
	return &AssistService{
		kb:          kb,
		faq:         faq,
		llm:         llm,
		contactNote: contactNote,
	}
}

func (s *AssistService) Answer(ctx context.Context, question string) models.AskResponse {
	if msg := s.pricingAnswer(question); msg != "" {
		return models.AskResponse{
			Answer:  cleanAnswer(msg),
			Sources: []string{},
			Mode:    ModePricing,
		}
	}

	if full := s.faq.Match(question); full != "" {
		return models.AskResponse{
			Answer:  cleanAnswer(full + "\n\n" + s.contactNote),
			Sources: []string{cleanAnswer(full)},
			Mode:    ModeFAQ,
		}
	}

	retrieved := s.kb.Retrieve(question, retrieveTopK)

	if s.llm != nil && s.llm.Configured() && len(retrieved) > 0 {
		reply, err := s.llm.Complete(ctx, buildGroundedPrompt(question, retrieved, s.contactNote))
		if err != nil {
			log.Printf("assist: LLM call failed, falling back to website text: %v", err)
		} else if strings.TrimSpace(reply) != "" {
			sources := make([]string, 0, len(retrieved))
			for _, snippet := range retrieved {
				sources = append(sources, truncate(snippet, sourcePreview))
			}
			return models.AskResponse{
				Answer:  cleanAnswer(reply),
				Sources: sources,
				Mode:    ModeAI,
			}
		}
	}

	return s.fallbackAnswer(retrieved)
}

// pricingAnswer short-circuits any pricing enquiry to the contact note; the
// assistant must never invent prices.
func (s *AssistService) pricingAnswer(question string) string {
	q := strings.ToLower(question)
	for _, kw := range pricingKeywords {
		if strings.Contains(q, kw) {
			return "For pricing and custom quotations (e.g. a 5-camera cricket setup), " +
				"please contact our team.\n\n" + s.contactNote + "\n\n" +
				"Once we know your exact requirements (camera count, duration, city, " +
				"graphics, replays, etc.) we will send a tailored quote."
		}
	}
	return ""
}

func (s *AssistService) fallbackAnswer(retrieved []string) models.AskResponse {
	if len(retrieved) == 0 {
		return models.AskResponse{
			Answer:  cleanAnswer(noResultsAnswer),
			Sources: []string{},
			Mode:    ModeNoMatch,
		}
	}
	body := "Here's what we found related to your question:\n\n" +
		strings.Join(retrieved, "\n\n") + "\n\n" + s.contactNote
	return models.AskResponse{
		Answer:  cleanAnswer(body),
		Sources: retrieved,
		Mode:    ModeWebsite,
	}
}

func buildGroundedPrompt(question string, retrieved []string, contactNote string) []models.ChatMessage {
	var context strings.Builder
	for i, snippet := range retrieved {
		fmt.Fprintf(&context, "SOURCE %d:\n%s\n\n", i+1, snippet)
	}

	prompt := "Answer ONLY using this website content.\n" +
		"At the end, say exactly:\n'" + contactNote + "'\n\n" +
		"Context:\n" + context.String() + "\n" +
		"Question: " + question + "\n" +
		"Answer in 2-4 short sentences."

	return []models.ChatMessage{
		{Role: models.RoleSystem, Content: "You are a helpful assistant."},
		{Role: models.RoleUser, Content: prompt},
	}
}

func cleanAnswer(text string) string {
	if text == "" {
		return text
	}
	return answerCleaner.Replace(text)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
