package services

import (
	"bytes"
	"fmt"
	"html/template"
	"path/filepath"
)

// TemplateRenderer renders a named notification template to an HTML body.
type TemplateRenderer interface {
	Render(name string, data any) (string, error)
}

var templateFiles = map[string]string{
	TemplateOrderConfirmation: "order_confirmation.html",
	TemplatePaymentSuccess:    "payment_success.html",
	TemplatePaymentFailed:     "payment_failed.html",
}

const (
	TemplateOrderConfirmation = "order_confirmation"
	TemplatePaymentSuccess    = "payment_success"
	TemplatePaymentFailed     = "payment_failed"
)

type TemplateEngine struct {
	templates map[string]*template.Template
}

// NewTemplateEngine parses all notification templates from dir. A missing
// or broken template is a startup error, not a request-time one.
func NewTemplateEngine(dir string) (*TemplateEngine, error) {
	tmpls := make(map[string]*template.Template)
	for name, file := range templateFiles {
		tmpl, err := template.ParseFiles(filepath.Join(dir, file))
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		tmpls[name] = tmpl
	}
	return &TemplateEngine{templates: tmpls}, nil
}

func (e *TemplateEngine) Render(name string, data any) (string, error) {
	tmpl, ok := e.templates[name]
	if !ok {
		return "", fmt.Errorf("unknown template: %s", name)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("template render failed: %w", err)
	}
	return buf.String(), nil
}
