package presenter

import (
	"io"
	"sync"
	"text/template"

	"github.com/JuanBohorquezA/SandwichAsere/src/storefront/model"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const cartTemplate = `{{define "cart" -}}
=== Cart ({{.Count}}) ===
{{if .Empty -}}
Your cart is empty.
{{else -}}
{{range .Rows -}}
#{{.ProductID}} {{.Name}}  {{money .UnitPrice}} x {{.Quantity}} = {{money .LineTotal}}  [dec {{.ProductID}}] [inc {{.ProductID}}] [rm {{.ProductID}}]
{{end -}}
Total: {{.TotalDisplay}}
{{end -}}
{{end}}`

var cartTmpl = template.Must(template.New("view").Funcs(template.FuncMap{
	"money": FormatMoney,
}).Parse(cartTemplate))

// View is the cart sidebar. It keeps the latest Summary and redraws it to
// out whenever the cart changes while the view is open.
type View struct {
	mu      sync.Mutex
	out     io.Writer
	log     logrus.FieldLogger
	open    bool
	summary Summary
}

// NewView returns a closed view drawing to out. out may be nil for headless use.
func NewView(out io.Writer, log logrus.FieldLogger) *View {
	return &View{
		out:     out,
		log:     log,
		summary: Summarize(nil, nil),
	}
}

// Refresh implements cart.Sink.
func (v *View) Refresh(items []model.LineItem, products []model.Product) {
	s := Summarize(items, products)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.summary = s
	if v.open {
		v.renderLocked()
	}
}

// Summary returns the most recent summary.
func (v *View) Summary() Summary {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.summary
}

// OpenCart shows the cart and draws it.
func (v *View) OpenCart() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.open = true
	v.renderLocked()
}

// CloseCart hides the cart.
func (v *View) CloseCart() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.open = false
}

// IsOpen reports whether the cart is showing.
func (v *View) IsOpen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.open
}

// Render writes s to w.
func Render(w io.Writer, s Summary) error {
	if err := cartTmpl.ExecuteTemplate(w, "cart", s); err != nil {
		return errors.Wrap(err, "render cart")
	}
	return nil
}

func (v *View) renderLocked() {
	if v.out == nil {
		return
	}
	if err := Render(v.out, v.summary); err != nil && v.log != nil {
		v.log.WithError(err).Error("cart render failed")
	}
}
