package notices

import (
	i18n "github.com/goliatone/go-i18n"
)

// Supported locales, in preference order.
const (
	LocaleEN   = "en"
	LocalePTBR = "pt-BR"
)

// Translations returns the built-in catalogs.
func Translations() i18n.Translations {
	return i18n.Translations{
		LocaleEN: newCatalog(LocaleEN, map[string]string{
			"issue.confirmed.subject":         "Account generated",
			"issue.confirmed.body":            "%s, your %s account was sent to your private messages.",
			"issue.confirmed.remaining":       "Remaining in %s: %d | Total: %d",
			"issue.dm.subject":                "Your %s account",
			"issue.dm.identifier":             "Login: %s",
			"issue.dm.credential":             "Password: %s",
			"issue.dm.footer":                 "Keep this information safe and do not share it.",
			"issue.category_required.subject": "Category required",
			"issue.category_required.body":    "Tell me which category you want.",
			"issue.available":                 "Available categories: %s",
			"issue.none_available":            "No category has stock right now.",
			"issue.unknown_category.subject":  "Category not found",
			"issue.unknown_category.body":     "The category %s does not exist.",
			"issue.empty_category.subject":    "Out of stock",
			"issue.empty_category.body":       "There are no %s accounts left.",
			"issue.cooldown.subject":          "Cooldown active",
			"issue.cooldown.body":             "You must wait %d minute(s) before generating another account.",
			"issue.cooldown.retry":            "Try again at %s.",
			"delivery.denied.subject":         "Could not send private message",
			"delivery.denied.body":            "Enable direct messages from server members and try again. Nothing was consumed.",
			"delivery.failed.subject":         "Delivery failed",
			"delivery.failed.body":            "Your account could not be delivered right now. Nothing was consumed; try again later.",
			"add.subject":                     "Accounts added",
			"add.body":                        "%d account(s) added to %s.",
			"add.skipped":                     "%d line(s) ignored because they were not in login:password format.",
			"add.totals":                      "Total in %s: %d | Overall: %d",
			"stock.subject":                   "Stock",
			"stock.line":                      "%s: %d",
			"stock.total":                     "Total: %d",
			"stock.empty":                     "No accounts in stock.",
			"settings.subject":                "Settings updated",
			"settings.cooldown":               "Cooldown set to %d minute(s).",
			"settings.cooldown.disabled":      "Cooldown disabled.",
			"settings.channel":                "Generation channel set to %s.",
			"settings.admin_role":             "Admin role set to %s.",
			"error.invalid_argument.subject":  "Missing argument",
			"error.invalid_argument.body":     "A required value is missing.",
			"error.invalid_value.subject":     "Invalid value",
			"error.invalid_value.body":        "The value must be a whole number of zero or more.",
			"error.not_found.subject":         "Not found",
			"error.not_found.body":            "The channel or role could not be found.",
			"error.forbidden.subject":         "Permission denied",
			"error.forbidden.body":            "You do not have permission to use this command.",
			"error.io.subject":                "Storage error",
			"error.io.body":                   "The change could not be saved. Try again.",
			"error.internal.subject":          "Something went wrong",
			"error.internal.body":             "Please try again later.",
		}),
		LocalePTBR: newCatalog(LocalePTBR, map[string]string{
			"issue.confirmed.subject":         "Conta gerada",
			"issue.confirmed.body":            "%s, sua conta %s foi enviada no privado.",
			"issue.confirmed.remaining":       "Restantes em %s: %d | Total: %d",
			"issue.dm.subject":                "Sua conta %s",
			"issue.dm.identifier":             "Login: %s",
			"issue.dm.credential":             "Senha: %s",
			"issue.dm.footer":                 "Guarde estas informações em segurança e não compartilhe.",
			"issue.category_required.subject": "Categoria necessária",
			"issue.category_required.body":    "Informe a categoria desejada.",
			"issue.available":                 "Categorias disponíveis: %s",
			"issue.none_available":            "Nenhuma categoria possui estoque no momento.",
			"issue.unknown_category.subject":  "Categoria não encontrada",
			"issue.unknown_category.body":     "A categoria %s não existe.",
			"issue.empty_category.subject":    "Sem estoque",
			"issue.empty_category.body":       "Não há mais contas %s.",
			"issue.cooldown.subject":          "Cooldown ativo",
			"issue.cooldown.body":             "Aguarde %d minuto(s) para gerar outra conta.",
			"issue.cooldown.retry":            "Tente novamente às %s.",
			"delivery.denied.subject":         "Não foi possível enviar mensagem privada",
			"delivery.denied.body":            "Ative as mensagens diretas de membros do servidor e tente novamente. Nada foi consumido.",
			"delivery.failed.subject":         "Falha na entrega",
			"delivery.failed.body":            "Não foi possível entregar sua conta agora. Nada foi consumido; tente mais tarde.",
			"add.subject":                     "Contas adicionadas",
			"add.body":                        "%d conta(s) adicionada(s) em %s.",
			"add.skipped":                     "%d linha(s) ignorada(s) por não estarem no formato login:senha.",
			"add.totals":                      "Total em %s: %d | Geral: %d",
			"stock.subject":                   "Estoque",
			"stock.line":                      "%s: %d",
			"stock.total":                     "Total: %d",
			"stock.empty":                     "Nenhuma conta em estoque.",
			"settings.subject":                "Configuração atualizada",
			"settings.cooldown":               "Cooldown definido para %d minuto(s).",
			"settings.cooldown.disabled":      "Cooldown desativado.",
			"settings.channel":                "Canal de geração definido para %s.",
			"settings.admin_role":             "Cargo admin definido para %s.",
			"error.invalid_argument.subject":  "Argumento ausente",
			"error.invalid_argument.body":     "Um valor obrigatório não foi informado.",
			"error.invalid_value.subject":     "Valor inválido",
			"error.invalid_value.body":        "O valor deve ser um número inteiro igual ou maior que zero.",
			"error.not_found.subject":         "Não encontrado",
			"error.not_found.body":            "O canal ou cargo não foi encontrado.",
			"error.forbidden.subject":         "Permissão negada",
			"error.forbidden.body":            "Você não tem permissão para usar este comando.",
			"error.io.subject":                "Erro de armazenamento",
			"error.io.body":                   "A alteração não pôde ser salva. Tente novamente.",
			"error.internal.subject":          "Algo deu errado",
			"error.internal.body":             "Tente novamente mais tarde.",
		}),
	}
}

func newCatalog(locale string, entries map[string]string) *i18n.TranslationCatalog {
	catalog := &i18n.TranslationCatalog{
		Locale:   i18n.Locale{Code: locale},
		Messages: make(map[string]i18n.Message),
	}
	for key, template := range entries {
		msg := i18n.Message{}
		msg.SetContent(template)
		catalog.Messages[key] = msg
	}
	return catalog
}
