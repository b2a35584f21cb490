package http

import "ecovision/internal/i18n"

// notice es el aviso que la interfaz muestra en línea o como toast.
type notice struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func localizedNotice(tr i18n.Translator, key string) *notice {
	return &notice{Title: tr.T(key), Description: tr.T(key + "Desc")}
}
