package mailer

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

// ErrUnknownTemplate is returned when a message names a template that does not exist.
var ErrUnknownTemplate = errors.New("unknown mail template")

// Address is a mailbox with an optional display name.
type Address struct {
	Name  string
	Email string
}

// String formats the address as "Name <email>".
func (a Address) String() string {
	name := strings.TrimSpace(a.Name)
	if name == "" {
		return a.Email
	}
	return fmt.Sprintf("%s <%s>", name, a.Email)
}

// Message is a templated email.
type Message struct {
	To       Address
	Subject  string
	Template string
	Context  any
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Renderer renders the embedded html templates inside a shared layout.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every embedded page.
func NewRenderer() (*Renderer, error) {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil, fmt.Errorf("read templates: %w", err)
	}

	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), ".html")
		if name == "layout" {
			continue
		}
		t, err := template.New("layout").ParseFS(templateFS, "templates/layout.html", "templates/"+e.Name())
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render executes the named template with data.
func (r *Renderer) Render(name string, data any) (string, error) {
	t, ok := r.pages[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
