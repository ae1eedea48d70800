package render

import (
	"bytes"
	"fmt"
	"html/template"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pfrederiksen/atm-watch/internal/atm"
)

// Template renders ATM lists with an html/template file
type Template struct {
	tmpl *template.Template
}

// Funcs are the helpers available to message templates
var Funcs = template.FuncMap{
	// km formats a distance with one decimal place
	"km": func(d float64) string {
		return fmt.Sprintf("%.1f", d)
	},
	// amount formats a limit with spaces between thousands
	"amount": formatAmount,
	"inc": func(i int) int {
		return i + 1
	},
}

// Load parses the template file at path
func Load(path string) (*Template, error) {
	tmpl, err := template.New(filepath.Base(path)).Funcs(Funcs).ParseFiles(path)
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", path, err)
	}
	return &Template{tmpl: tmpl}, nil
}

// Parse builds a template from its source text
func Parse(name, text string) (*Template, error) {
	tmpl, err := template.New(name).Funcs(Funcs).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", name, err)
	}
	return &Template{tmpl: tmpl}, nil
}

// Render executes the template with the sorted ATM list exposed as .atms
func (t *Template) Render(atms []*atm.ATM) (string, error) {
	var buf bytes.Buffer
	data := map[string]interface{}{
		"atms": atms,
	}
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering template: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func formatAmount(d decimal.Decimal) string {
	s := d.String()
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	sign := ""
	if strings.HasPrefix(intPart, "-") {
		sign, intPart = "-", intPart[1:]
	}

	var out strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			out.WriteRune(' ')
		}
		out.WriteRune(r)
	}
	return sign + out.String() + frac
}
