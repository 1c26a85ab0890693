// Package intent maps free chat text to a fixed set of intents using keyword
// and pattern matching only.
package intent

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/joao-fontenele/pickup-orderbot/internal/domain"
)

var greetingKeywords = []string{
	"hola",
	"buenas",
	"buenos dias",
	"buenas tardes",
	"buenas noches",
}

var (
	quantityPattern = regexp.MustCompile(`(?i)(\d+[.,]?\d*)\s*(kg|kilo|kilos|gr|gramos)`)
	timePattern     = regexp.MustCompile(`(?i)(\d{1,2})[:h.](\d{2})`)
)

const orderKeyword = "pedido"

// Classify resolves overlapping matches as Greeting, then TimeConfirmation,
// then OrderRequest.
func Classify(text string) domain.Intent {
	switch {
	case IsGreeting(text):
		return domain.IntentGreeting
	case HasTime(text):
		return domain.IntentTimeConfirmation
	case IsOrderRequest(text):
		return domain.IntentOrderRequest
	default:
		return domain.IntentUnknown
	}
}

func IsGreeting(text string) bool {
	normalized := normalize(text)
	for _, keyword := range greetingKeywords {
		if strings.HasPrefix(normalized, keyword) {
			return true
		}
	}
	return false
}

func IsOrderRequest(text string) bool {
	return quantityPattern.MatchString(text) || strings.Contains(normalize(text), orderKeyword)
}

func HasTime(text string) bool {
	_, _, ok := ExtractTime(text)
	return ok
}

// ExtractTime returns the first hour:minute found in text. Values are not range
// checked; "25:70" yields 25, 70.
func ExtractTime(text string) (hour, minute int, ok bool) {
	match := timePattern.FindStringSubmatch(text)
	if match == nil {
		return 0, 0, false
	}
	hour, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, 0, false
	}
	minute, err = strconv.Atoi(match[2])
	if err != nil {
		return 0, 0, false
	}
	return hour, minute, true
}

func normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
