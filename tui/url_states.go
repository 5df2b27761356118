package tui

import (
	"strings"

	"invisiguard/workflow"
)

func (m Model) viewURLCheck(state workflow.URLCheckState) string {
	var s strings.Builder

	s.WriteString(subtitleStyle.Render("Check a link against the phishing classifier") + "\n")
	s.WriteString(m.renderLastError(state.LastError))
	s.WriteString(m.urlInput.View() + "\n")

	s.WriteString(sectionStyle.Render("Result") + "\n")
	if state.Result == nil {
		s.WriteString(placeholderStyle.Render("No URL checked yet"))
	} else {
		r := state.Result
		s.WriteString(labelStyle.Render("Status: ") + verdictStyle(r.IsPhishing()).Render(r.Status))
		if r.IsPhishing() {
			s.WriteString("\n" + labelStyle.Render("Type: ") + warningStyle.Render(r.TypeDisplay()))
		}
	}
	s.WriteString("\n")

	s.WriteString(sectionStyle.Render("Demo phishing link") + "\n")
	if state.FakeLink == nil {
		s.WriteString(placeholderStyle.Render("Press ctrl+g to generate one"))
	} else {
		s.WriteString(linkStyle.Render(state.FakeLink.URL))
	}

	return s.String()
}
