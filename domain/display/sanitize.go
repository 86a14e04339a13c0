package display

import (
	"html"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer strips markup from model-supplied text before it reaches the
// browser. Slide text is rendered as plain text, so every tag is removed.
type Sanitizer struct {
	policy *bluemonday.Policy
}

func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// Text removes all tags and unescapes the entities bluemonday produces.
func (s *Sanitizer) Text(v string) string {
	if v == "" {
		return v
	}
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(v)))
}

// Link keeps http(s) and site-relative URLs and drops anything else.
func (s *Sanitizer) Link(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if strings.HasPrefix(v, "/") && !strings.HasPrefix(v, "//") {
		return v
	}
	u, err := url.Parse(v)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ""
	}
	return u.String()
}

// Slide returns a sanitized copy of info.
func (s *Sanitizer) Slide(info SlideInfo) SlideInfo {
	out := info
	out.Topic = s.Text(info.Topic)
	out.Title = s.Text(info.Title)
	out.Content = s.Text(info.Content)
	out.Notes = s.Text(info.Notes)
	out.Layout = s.Text(info.Layout)
	out.Badge = s.Text(info.Badge)
	out.ImageAlt = s.Text(info.ImageAlt)
	out.Description = s.Text(info.Description)
	out.ImagePath = s.Link(info.ImagePath)
	out.URL = s.Link(info.URL)

	if info.Bullets != nil {
		out.Bullets = make([]string, len(info.Bullets))
		for i, b := range info.Bullets {
			out.Bullets[i] = s.Text(b)
		}
	}
	if info.Sections != nil {
		out.Sections = make([]Section, len(info.Sections))
		for i, sec := range info.Sections {
			out.Sections[i] = Section{
				Icon:    s.Text(sec.Icon),
				Title:   s.Text(sec.Title),
				Content: s.Text(sec.Content),
			}
		}
	}
	return out
}

// Video returns a sanitized copy of info.
func (s *Sanitizer) Video(info VideoInfo) VideoInfo {
	return VideoInfo{
		ID:          s.Text(info.ID),
		Title:       s.Text(info.Title),
		Description: s.Text(info.Description),
		VideoURL:    s.Link(info.VideoURL),
	}
}
