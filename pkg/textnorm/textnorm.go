// Package textnorm normaliza texto libre (nombres de producto) para comparaciones
// insensibles a acentos, mayúsculas y espacios.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Key devuelve la clave de búsqueda de s: sin diacríticos, en case-fold y con espacios colapsados.
// "  Argamassa  AC-III " y "argamassa ac-iii" producen la misma clave.
func Key(s string) string {
	// transform y cases mantienen estado interno: se construyen por llamada.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	out = cases.Fold().String(out)
	return strings.Join(strings.Fields(out), " ")
}

// Tokens palabras de s tras Key, cortando en todo lo que no sea letra, dígito o '_'.
// "Qual é o prazo?!" produce [qual e o prazo].
func Tokens(s string) []string {
	return strings.FieldsFunc(Key(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
}

// Plain Tokens unidos por un espacio.
func Plain(s string) string {
	return strings.Join(Tokens(s), " ")
}
