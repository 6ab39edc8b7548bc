package inventory

import (
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// NormalizeCode limpia lote/serie para que la igualdad de keys no dependa de espacios
// ni de la forma Unicode en que llegó el texto.
func NormalizeCode(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// DateOf trunca t a la fecha calendario (medianoche UTC).
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NormalizeExpiry convierte el vencimiento a fecha calendario; nil se mantiene nil.
func NormalizeExpiry(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	d := DateOf(*t)
	return &d
}
