package presentation

import "strings"

// Section is a titled block inside a multi-column slide layout.
type Section struct {
	Icon    string `json:"icon"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Slide is one presentation slide as delivered to clients and agents.
type Slide struct {
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	Bullets            []string  `json:"bullets,omitempty"`
	CurrentSlideNumber int       `json:"currentSlideNumber"`
	TotalSlides        int       `json:"totalSlides"`
	Topic              string    `json:"topic"`
	Layout             string    `json:"layout,omitempty"`
	Badge              string    `json:"badge,omitempty"`
	ImagePath          string    `json:"imagePath,omitempty"`
	ImageAlt           string    `json:"imageAlt,omitempty"`
	URL                string    `json:"url,omitempty"`
	Sections           []Section `json:"sections,omitempty"`
}

// Deck is the ordered slide list for one topic.
type Deck struct {
	Topic  string  `json:"topic"`
	Slides []Slide `json:"slides"`
}

type contentFile struct {
	Decks []Deck `json:"decks"`
}

// Language codes accepted by the REST endpoint. Only Japanese content ships.
const (
	LanguageEnglish  = "en"
	LanguageJapanese = "jp"
)

// ValidLanguages is the REST language allow list.
var ValidLanguages = []string{LanguageEnglish, LanguageJapanese}

// ValidTopics is the REST topic allow list. It predates the current decks and
// is intentionally left as published.
var ValidTopics = []string{"dotnet10", "csharp14", "aspire13", "aspnet10", "dotnetlib10", "sdktooling10"}

// Topic is the enum exposed to MCP clients.
type Topic string

const (
	TopicDotnet10         Topic = "Dotnet10"
	TopicAspire13         Topic = "Aspire13"
	TopicDotnet10Platform Topic = "Dotnet10Platform"
	TopicIntelligence     Topic = "Intelligence"
	TopicSummary          Topic = "Summary"
)

// Topics lists every Topic in declaration order.
var Topics = []Topic{TopicDotnet10, TopicAspire13, TopicDotnet10Platform, TopicIntelligence, TopicSummary}

// ID returns the deck key for t.
func (t Topic) ID() string {
	return strings.ToLower(string(t))
}

// ParseTopic matches s against the Topic names, ignoring case.
func ParseTopic(s string) (Topic, bool) {
	for _, t := range Topics {
		if strings.EqualFold(string(t), s) {
			return t, true
		}
	}
	return "", false
}

// Language is the MCP language enum.
type Language string

const LanguageNameJapanese Language = "Japanese"

// Code maps the enum to its content language code.
func (l Language) Code() string {
	switch l {
	case LanguageNameJapanese:
		return LanguageJapanese
	default:
		return ""
	}
}

func fileSuffix(code string) string {
	if code == LanguageEnglish {
		return ""
	}
	return "." + code
}
