package scene

import (
	"html"
	"strings"

	"github.com/lox/nycair/internal/htmlutil"
)

// Narrative is the observation text shown next to a scene.
type Narrative struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// HTML returns the narrative as it appears in the side panel.
func (n Narrative) HTML() string {
	return "<h4>" + html.EscapeString(n.Title) + "</h4><p>" + html.EscapeString(n.Body) + "</p>"
}

// Text returns the panel as plain text, one paragraph per block.
func (n Narrative) Text() string {
	return strings.Join(htmlutil.Paragraphs(n.HTML()), "\n\n")
}

// Narratives maps scene index to narrative. The table is read-only once
// handed to a Controller.
type Narratives []Narrative

// Get returns the narrative for scene index.
func (ns Narratives) Get(index int) (Narrative, bool) {
	if index < 0 || index >= len(ns) {
		return Narrative{}, false
	}
	return ns[index], true
}

// DefaultNarratives is the narrative of the NO2 story.
func DefaultNarratives() Narratives {
	return Narratives{
		{
			Title: "Scene 1 Observations",
			Body:  "The overall pollution (NO2) level of New York City has been on a decline since the year 2008. This means that measures to improve air quality have been working.",
		},
		{
			Title: "Scene 2 Observations",
			Body:  "While the overall pollution (NO2) level of New York City has been on a decline, it's still important to look at the individual boroughs or neighborhoods of New York City. As you can see, Manhattan has the highest amount of pollution compared to the other four popular boroughs. This shows how the center of New York City contributes the most to pollution, which is probably due to all the activity of businesses since it's a city center.",
		},
		{
			Title: "Scene 3 Observations",
			Body:  "Using the specific filters, you could tell how different boroughs or areas of New York City have different levels of pollutions throughout the years.",
		},
	}
}
