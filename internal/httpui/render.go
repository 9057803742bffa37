package httpui

import (
	"embed"
	"html/template"
	"io"

	"github.com/cockroachdb/errors"

	"github.com/quantumauth-io/crypto-tracker/internal/dashboard"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTmpl = template.Must(template.New("page.html").Funcs(template.FuncMap{
	"price":       FormatPrice,
	"change":      FormatChange,
	"address":     FormatAddress,
	"billions":    FormatBillions,
	"usd":         FormatUSD,
	"amount":      FormatAmount,
	"balance":     FormatBalance,
	"changeClass": changeClass,
	"changeIcon":  changeIcon,
	"deref":       deref,
	"rank":        rank,
}).ParseFS(templateFS, "templates/page.html"))

type page struct {
	dashboard.State
	App   MiniApp
	Embed string
}

// Render writes the full page for st. Output depends only on its arguments.
func Render(w io.Writer, st dashboard.State, app MiniApp) error {
	p := page{State: st, App: app, Embed: app.EmbedJSON()}
	if err := pageTmpl.Execute(w, p); err != nil {
		return errors.Wrap(err, "render page")
	}
	return nil
}
