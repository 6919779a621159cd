package notices

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	i18n "github.com/goliatone/go-i18n"
	gotemplate "github.com/goliatone/go-template"
)

var (
	// ErrTranslatorRequired indicates the service cannot operate without a translator.
	ErrTranslatorRequired = errors.New("notices: translator is required")
	// ErrRendererConfig indicates the template renderer was misconfigured.
	ErrRendererConfig = errors.New("notices: renderer configuration is incomplete")
	// ErrUnknownNotice is returned for codes with no template.
	ErrUnknownNotice = errors.New("notices: unknown notice code")
)

// Notice is a rendered, user-facing message. Silent notices are not shown.
type Notice struct {
	Code    string
	Subject string
	Body    string
	Locale  string
	Silent  bool
}

// String joins subject and body for plain-text surfaces.
func (n Notice) String() string {
	if n.Subject == "" {
		return n.Body
	}
	return n.Subject + "\n" + n.Body
}

// Service renders localized notices with go-template and go-i18n helpers.
type Service struct {
	renderer      *gotemplate.Engine
	templates     map[string]Template
	locales       []string
	defaultLocale string
	localeKey     string
	renderMu      sync.Mutex
}

type serviceOptions struct {
	defaultLocale string
	locales       []string
	templates     map[string]Template
	helperFuncs   []map[string]any
}

// Option configures the notice service.
type Option func(*serviceOptions)

// WithDefaultLocale overrides the locale used when a request does not match
// any supported locale.
func WithDefaultLocale(locale string) Option {
	return func(so *serviceOptions) {
		so.defaultLocale = strings.TrimSpace(locale)
	}
}

// WithLocales declares which locales the translator can serve.
func WithLocales(locales ...string) Option {
	return func(so *serviceOptions) {
		so.locales = append(so.locales, locales...)
	}
}

// WithTemplate overrides or adds the template for code.
func WithTemplate(code string, tpl Template) Option {
	return func(so *serviceOptions) {
		if so.templates == nil {
			so.templates = map[string]Template{}
		}
		so.templates[code] = tpl
	}
}

// WithHelperFuncs registers additional helper functions with the renderer.
func WithHelperFuncs(funcs map[string]any) Option {
	return func(so *serviceOptions) {
		if len(funcs) > 0 {
			so.helperFuncs = append(so.helperFuncs, funcs)
		}
	}
}

// NewService wires the renderer and translator together.
func NewService(translator i18n.Translator, opts ...Option) (*Service, error) {
	if translator == nil {
		return nil, ErrTranslatorRequired
	}
	settings := serviceOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&settings)
		}
	}
	if len(settings.locales) == 0 {
		settings.locales = []string{LocaleEN, LocalePTBR}
	}
	if settings.defaultLocale == "" {
		settings.defaultLocale = LocaleEN
	}

	renderer, err := gotemplate.NewRenderer(gotemplate.WithBaseDir("."))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRendererConfig, err)
	}

	templates := builtinTemplates()
	for code, tpl := range settings.templates {
		templates[code] = tpl
	}

	svc := &Service{
		renderer:      renderer,
		templates:     templates,
		locales:       settings.locales,
		defaultLocale: settings.defaultLocale,
		localeKey:     "locale",
	}

	helpers := i18n.TemplateHelpers(translator, i18n.HelperConfig{
		LocaleKey:         svc.localeKey,
		TemplateHelperKey: "t",
	})
	gotemplate.WithTemplateFunc(helpers)(renderer)
	for _, funcs := range settings.helperFuncs {
		gotemplate.WithTemplateFunc(funcs)(renderer)
	}
	return svc, nil
}

// NewDefaultService builds a service over the built-in catalogs.
func NewDefaultService(defaultLocale string) (*Service, error) {
	store := i18n.NewStaticStore(Translations())
	if strings.TrimSpace(defaultLocale) == "" {
		defaultLocale = LocaleEN
	}
	translator, err := i18n.NewSimpleTranslator(store, i18n.WithTranslatorDefaultLocale(LocaleEN))
	if err != nil {
		return nil, err
	}
	return NewService(translator, WithDefaultLocale(defaultLocale))
}

// ResolveLocale maps a requested locale onto a supported one. Matching is
// case-insensitive and falls back from region to language ("pt" and "pt-PT"
// both resolve to "pt-BR").
func (s *Service) ResolveLocale(requested string) string {
	requested = strings.TrimSpace(strings.ReplaceAll(requested, "_", "-"))
	if requested == "" {
		return s.defaultLocale
	}
	for _, locale := range s.locales {
		if strings.EqualFold(locale, requested) {
			return locale
		}
	}
	lang := strings.ToLower(strings.SplitN(requested, "-", 2)[0])
	for _, locale := range s.locales {
		if strings.ToLower(strings.SplitN(locale, "-", 2)[0]) == lang {
			return locale
		}
	}
	return s.defaultLocale
}

// Render produces the notice for code.
func (s *Service) Render(ctx context.Context, code, locale string, data map[string]any) (Notice, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return Notice{}, err
		}
	}
	tpl, ok := s.templates[code]
	if !ok {
		return Notice{}, fmt.Errorf("%w: %s", ErrUnknownNotice, code)
	}
	resolved := s.ResolveLocale(locale)

	payload := make(map[string]any, len(data)+1)
	for k, v := range data {
		payload[k] = v
	}
	payload[s.localeKey] = resolved

	s.renderMu.Lock()
	defer s.renderMu.Unlock()
	subject, err := s.renderer.RenderString(tpl.Subject, payload)
	if err != nil {
		return Notice{}, fmt.Errorf("notices: render %s subject: %w", code, err)
	}
	body, err := s.renderer.RenderString(tpl.Body, payload)
	if err != nil {
		return Notice{}, fmt.Errorf("notices: render %s body: %w", code, err)
	}
	return Notice{
		Code:    code,
		Subject: strings.TrimSpace(subject),
		Body:    tidy(body),
		Locale:  resolved,
	}, nil
}

// tidy trims trailing whitespace on every line and drops blank lines.
func tidy(body string) string {
	lines := strings.Split(body, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
