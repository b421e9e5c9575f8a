package api

import "html"

// EscapeRenderer is the default Renderer: it escapes the raw text rather
// than rendering markdown. Deployments that want real markdown plug in
// their own implementation; correctness never depends on the choice.
type EscapeRenderer struct{}

func (EscapeRenderer) Render(text string) string {
	return html.EscapeString(text)
}
