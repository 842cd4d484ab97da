// Package validation содержит функции валидации входных данных.
package validation

import "strings"

// maxOrderReferenceLen ограничивает длину номера заказа после нормализации.
const maxOrderReferenceLen = 32

// NormalizeOrderReference убирает пробелы и дефисы из номера заказа и
// проверяет его по алгоритму Луна. Второе значение false, если номер некорректен.
func NormalizeOrderReference(ref string) (string, bool) {
	var b strings.Builder
	b.Grow(len(ref))
	for _, ch := range ref {
		switch {
		case ch == ' ' || ch == '-':
			continue
		case ch < '0' || ch > '9':
			return "", false
		}
		b.WriteRune(ch)
	}

	normalized := b.String()
	if normalized == "" || len(normalized) > maxOrderReferenceLen {
		return "", false
	}
	if !luhn(normalized) {
		return "", false
	}
	return normalized, true
}

func luhn(digits string) bool {
	sum := 0
	double := false

	for i := len(digits) - 1; i >= 0; i-- {
		digit := int(digits[i] - '0')
		if double {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
		double = !double
	}

	return sum%10 == 0
}
