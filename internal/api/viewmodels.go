package api

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strconv"

	"github.com/lox/nycair/internal/chart"
	"github.com/lox/nycair/internal/scene"
)

// SceneLink is one entry of the scene navigation.
type SceneLink struct {
	Index  int
	Active bool
}

// PageData is the data for index.html.
type PageData struct {
	Index     int
	Scenes    []SceneLink
	Chart     template.HTML // inline SVG of the chart surface
	Narrative template.HTML
	Error     string
	Selectors []chart.Selector
	FilterURL string
	ReportURL string
}

func (s *Server) pageData(snap scene.Snapshot) (PageData, error) {
	var svg bytes.Buffer
	if err := chart.WriteSVG(&svg, snap.Elements); err != nil {
		return PageData{}, err
	}

	data := PageData{
		Index:     snap.Index,
		Chart:     template.HTML(svg.String()),
		Narrative: template.HTML(snap.Panel.HTML()),
		Error:     snap.Panel.Error,
		FilterURL: fmt.Sprintf("/scenes/%d/filter", scene.DrilldownIndex),
		ReportURL: fmt.Sprintf("/scenes/%d/report.pdf", snap.Index),
	}
	for i := 0; i < scene.Count; i++ {
		data.Scenes = append(data.Scenes, SceneLink{Index: i, Active: snap.Shown && i == snap.Index})
	}
	if snap.Interactive() {
		q := url.Values{}
		q.Set("location", snap.Filter.Location)
		q.Set("from", strconv.Itoa(snap.Filter.FromYear))
		q.Set("to", strconv.Itoa(snap.Filter.ToYear))
		data.ReportURL += "?" + q.Encode()
		for _, e := range snap.Elements {
			if sel, ok := e.(chart.Selector); ok {
				data.Selectors = append(data.Selectors, sel)
			}
		}
	}
	return data, nil
}
