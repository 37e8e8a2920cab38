package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// Experiments renders the experiment list page.
func Experiments(page ExperimentsPage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &printer{w: w}

		p.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		p.raw(`<title>Experiments</title></head><body><main><h1>Experiments</h1>`)

		p.raw(`<p>Sort by:`)
		for _, field := range page.SortFields {
			p.raw(` <a href="`)
			p.text(sortURL(page, field))
			p.raw(`">`)
			p.text(field)
			p.raw(`</a>`)
		}
		p.raw(`</p>`)

		if len(page.Experiments) == 0 {
			p.raw(`<p class="empty">No experiments yet.</p></main></body></html>`)
			return p.err
		}

		p.raw(`<table><thead><tr>`)
		for _, h := range []string{"Name", "Type", "Status", "Owner", "Min version", "Start", "Enrollment", "Next step", "Recipe"} {
			p.raw(`<th>`)
			p.text(h)
			p.raw(`</th>`)
		}
		p.raw(`</tr></thead><tbody>`)

		for _, e := range page.Experiments {
			p.raw(`<tr><td><a href="/api/v4/experiments/`)
			p.text(e.Slug)
			p.raw(`">`)
			p.text(e.Name)
			p.raw(`</a></td>`)
			p.cell(e.TypeLabel)
			p.cell(fmt.Sprintf("%s / %s", e.Status, e.PublishStatus))
			p.cell(orDash(e.Owner))
			p.cell(orDash(e.FirefoxMinVersion))
			p.cell(orDash(e.StartDate))
			p.cell(formatDays(e.EnrollmentDays))
			p.cell(orDash(e.SummaryAction))
			if e.Published {
				p.raw(`<td><a href="/api/v4/recipes/`)
				p.text(e.RecipeSlug)
				p.raw(`">published</a></td>`)
			} else {
				p.cell("-")
			}
			p.raw(`</tr>`)
		}

		p.raw(`</tbody></table></main></body></html>`)
		return p.err
	})
}

// printer stops writing after the first error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) raw(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}

func (p *printer) text(s string) {
	p.raw(templ.EscapeString(s))
}

func (p *printer) cell(s string) {
	p.raw(`<td>`)
	p.text(s)
	p.raw(`</td>`)
}
