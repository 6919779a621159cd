package notices

// Notice codes.
const (
	CodeIssued           = "issue.confirmed"
	CodeDirectMessage    = "issue.dm"
	CodeCategoryRequired = "issue.category_required"
	CodeUnknownCategory  = "issue.unknown_category"
	CodeEmptyCategory    = "issue.empty_category"
	CodeCooldown         = "issue.cooldown"
	CodeDeliveryDenied   = "delivery.denied"
	CodeDeliveryFailed   = "delivery.failed"
	CodeAdded            = "add"
	CodeStock            = "stock"
	CodeSettings         = "settings"
	CodeInvalidArgument  = "error.invalid_argument"
	CodeInvalidValue     = "error.invalid_value"
	CodeNotFound         = "error.not_found"
	CodeForbidden        = "error.forbidden"
	CodeIO               = "error.io"
	CodeInternal         = "error.internal"
)

// Template is a subject/body pair in go-template syntax. Every template
// receives the resolved locale under "locale".
type Template struct {
	Subject string
	Body    string
}

const availableBlock = `{% if available %}{{ t(locale, "issue.available", available)|safe }}{% else %}{{ t(locale, "issue.none_available") }}{% endif %}`

func builtinTemplates() map[string]Template {
	return map[string]Template{
		CodeIssued: {
			Subject: `{{ t(locale, "issue.confirmed.subject") }}`,
			Body: `{{ t(locale, "issue.confirmed.body", mention, category)|safe }}
{{ t(locale, "issue.confirmed.remaining", category, category_remaining, total_remaining)|safe }}`,
		},
		CodeDirectMessage: {
			Subject: `{{ t(locale, "issue.dm.subject", category)|safe }}`,
			Body: `{{ t(locale, "issue.dm.identifier", identifier)|safe }}
{{ t(locale, "issue.dm.credential", credential)|safe }}
{{ t(locale, "issue.dm.footer") }}`,
		},
		CodeCategoryRequired: {
			Subject: `{{ t(locale, "issue.category_required.subject") }}`,
			Body: `{{ t(locale, "issue.category_required.body") }}
` + availableBlock,
		},
		CodeUnknownCategory: {
			Subject: `{{ t(locale, "issue.unknown_category.subject") }}`,
			Body: `{{ t(locale, "issue.unknown_category.body", category)|safe }}
` + availableBlock,
		},
		CodeEmptyCategory: {
			Subject: `{{ t(locale, "issue.empty_category.subject") }}`,
			Body: `{{ t(locale, "issue.empty_category.body", category)|safe }}
` + availableBlock,
		},
		CodeCooldown: {
			Subject: `{{ t(locale, "issue.cooldown.subject") }}`,
			Body: `{{ t(locale, "issue.cooldown.body", remaining) }}
{{ t(locale, "issue.cooldown.retry", retry_at) }}`,
		},
		CodeDeliveryDenied: {
			Subject: `{{ t(locale, "delivery.denied.subject") }}`,
			Body:    `{{ t(locale, "delivery.denied.body") }}`,
		},
		CodeDeliveryFailed: {
			Subject: `{{ t(locale, "delivery.failed.subject") }}`,
			Body:    `{{ t(locale, "delivery.failed.body") }}`,
		},
		CodeAdded: {
			Subject: `{{ t(locale, "add.subject") }}`,
			Body: `{{ t(locale, "add.body", added, category)|safe }}
{% if skipped %}{{ t(locale, "add.skipped", skipped) }}
{% endif %}{{ t(locale, "add.totals", category, category_total, total)|safe }}`,
		},
		CodeStock: {
			Subject: `{{ t(locale, "stock.subject") }}`,
			Body: `{% if categories %}{% for c in categories %}{{ t(locale, "stock.line", c.name, c.count)|safe }}
{% endfor %}{{ t(locale, "stock.total", total) }}{% else %}{{ t(locale, "stock.empty") }}{% endif %}`,
		},
		CodeSettings: {
			Subject: `{{ t(locale, "settings.subject") }}`,
			Body:    `{% if field == "cooldown" %}{% if value == 0 %}{{ t(locale, "settings.cooldown.disabled") }}{% else %}{{ t(locale, "settings.cooldown", value) }}{% endif %}{% elif field == "channel" %}{{ t(locale, "settings.channel", display) }}{% else %}{{ t(locale, "settings.admin_role", display) }}{% endif %}`,
		},
		CodeInvalidArgument: errorTemplate("invalid_argument"),
		CodeInvalidValue:    errorTemplate("invalid_value"),
		CodeNotFound:        errorTemplate("not_found"),
		CodeForbidden:       errorTemplate("forbidden"),
		CodeIO:              errorTemplate("io"),
		CodeInternal:        errorTemplate("internal"),
	}
}

func errorTemplate(name string) Template {
	return Template{
		Subject: `{{ t(locale, "error.` + name + `.subject") }}`,
		Body:    `{{ t(locale, "error.` + name + `.body") }}`,
	}
}
