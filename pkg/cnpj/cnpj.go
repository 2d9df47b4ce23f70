// Package cnpj valida el identificador fiscal de personas jurídicas de Brasil (CNPJ).
package cnpj

import (
	"fmt"
	"unicode"
)

// pesos del módulo 11 para el primer y segundo dígito verificador.
var (
	firstWeights  = [12]int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	secondWeights = [13]int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// Normalize deja sólo los dígitos: "11.222.333/0001-81" -> "11222333000181".
func Normalize(s string) string {
	out := make([]byte, 0, 14)
	for _, r := range s {
		if unicode.IsDigit(r) {
			out = append(out, byte(r))
		}
	}
	return string(out)
}

// Validate comprueba longitud y los dos dígitos verificadores.
// Acepta el valor con o sin puntuación.
func Validate(s string) error {
	digits := Normalize(s)
	if len(digits) != 14 {
		return fmt.Errorf("cnpj: se esperaban 14 dígitos, se encontraron %d", len(digits))
	}
	if allSame(digits) {
		return fmt.Errorf("cnpj: %s no es válido", digits)
	}
	d1 := checkDigit(digits[:12], firstWeights[:])
	d2 := checkDigit(digits[:12]+string(d1), secondWeights[:])
	if digits[12] != d1 || digits[13] != d2 {
		return fmt.Errorf("cnpj: dígitos verificadores inválidos: esperado %c%c, recibido %s", d1, d2, digits[12:])
	}
	return nil
}

// ComputeCheckDigits devuelve el CNPJ completo a partir de los 12 primeros dígitos.
func ComputeCheckDigits(base string) (string, error) {
	digits := Normalize(base)
	if len(digits) != 12 {
		return "", fmt.Errorf("cnpj: se requieren 12 dígitos base, se encontraron %d", len(digits))
	}
	d1 := checkDigit(digits, firstWeights[:])
	d2 := checkDigit(digits+string(d1), secondWeights[:])
	return digits + string(d1) + string(d2), nil
}

func checkDigit(digits string, weights []int) byte {
	var sum int
	for i := range weights {
		sum += int(digits[i]-'0') * weights[i]
	}
	remainder := sum % 11
	if remainder < 2 {
		return '0'
	}
	return byte('0' + (11 - remainder))
}

func allSame(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return true
}
