package export

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/billcraft/billcraft/web"
)

// templateName maps a payload kind to its embedded template.
var templateName = map[string]string{
	"Quotation": "quotation_pdf.html",
	"Invoice":   "invoice_pdf.html",
}

func parseTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"formatDate": formatDate,
	}
	tpl, err := template.New("documents").Funcs(funcMap).ParseFS(
		web.Templates, "templates/documents/*.html",
	)
	if err != nil {
		return nil, fmt.Errorf("parse document templates: %w", err)
	}
	return tpl, nil
}

func renderHTML(tpl *template.Template, payload DocumentPayload) (string, error) {
	name, ok := templateName[payload.Kind]
	if !ok {
		return "", fmt.Errorf("no template for %q", payload.Kind)
	}
	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, name, payload); err != nil {
		return "", fmt.Errorf("execute %s: %w", name, err)
	}
	return buf.String(), nil
}
