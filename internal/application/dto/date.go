package dto

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

// Formatos aceptados en fechas de entrada. Los que no traen zona se interpretan en UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// Date fecha de entrada tolerante: RFC3339, fecha-hora sin zona o sólo fecha (YYYY-MM-DD).
// Se serializa como RFC3339.
type Date struct {
	time.Time
}

// NewDate envuelve t.
func NewDate(t time.Time) Date {
	return Date{Time: t}
}

// ParseDate interpreta s con los formatos aceptados.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return Date{Time: t}, nil
		}
	}
	return Date{}, fmt.Errorf("fecha %q: se espera RFC3339, YYYY-MM-DDTHH:MM:SS o YYYY-MM-DD", s)
}

// UnmarshalJSON acepta un string en cualquiera de los formatos; null deja la fecha en cero.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("fecha: se espera un string, llegó %s", data)
	}
	parsed, err := ParseDate(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// TimePtr nil-safe para campos opcionales.
func (d *Date) TimePtr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}
