package models

import (
	"fmt"
	"strings"
)

// Provider — внешний источник учётных записей для социального входа.
type Provider string

const (
	ProviderGoogle   Provider = "google"
	ProviderFacebook Provider = "facebook"
	ProviderGitHub   Provider = "github"
	ProviderApple    Provider = "apple"
)

// Providers возвращает поддерживаемых провайдеров в порядке отображения.
func Providers() []Provider {
	return []Provider{ProviderGoogle, ProviderFacebook, ProviderGitHub, ProviderApple}
}

// Valid сообщает, входит ли провайдер в фиксированный набор.
func (p Provider) Valid() bool {
	switch p {
	case ProviderGoogle, ProviderFacebook, ProviderGitHub, ProviderApple:
		return true
	default:
		return false
	}
}

// ParseProvider разбирает имя провайдера без учёта регистра и пробелов.
func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown provider %q", s)
	}

	return p, nil
}
