package display

// Section is one column of a grid-sections slide.
type Section struct {
	Icon    string `json:"icon"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// SlideInfo is what the popup renders for a slide.
type SlideInfo struct {
	Topic       string    `json:"topic"`
	SlideNumber int       `json:"slideNumber"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Notes       string    `json:"notes,omitempty"`
	TotalSlides *int      `json:"totalSlides,omitempty"`
	Layout      string    `json:"layout,omitempty"`
	Badge       string    `json:"badge,omitempty"`
	ImagePath   string    `json:"imagePath,omitempty"`
	ImageAlt    string    `json:"imageAlt,omitempty"`
	URL         string    `json:"url,omitempty"`
	Description string    `json:"description,omitempty"`
	Bullets     []string  `json:"bullets,omitempty"`
	Sections    []Section `json:"sections,omitempty"`
}

// VideoInfo is what the full-screen player needs.
type VideoInfo struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	VideoURL    string `json:"videoUrl"`
}
