// Package knowledge puntúa la similitud entre un mensaje libre y las entradas de la base de conocimiento.
// Sin estado: sólo funciones puras sobre texto normalizado.
package knowledge

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jhoicas/perecibles-api/pkg/textnorm"
)

// Pesos y límites del puntaje.
const (
	TitleWeight    = 2.0
	KeywordWeight  = 1.5
	FullMatchBonus = 1.2
	MaxScore       = 100.0

	DefaultMinScore   = 30.0
	DefaultMaxResults = 3
	MaxResultsLimit   = 10
	MinMessageLength  = 3
)

// stopwords ya normalizadas (sin acentos), para compararlas con las palabras del mensaje.
var stopwords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"o", "a", "os", "as", "um", "uma", "de", "do", "da", "dos", "das",
		"em", "no", "na", "nos", "nas", "por", "para", "com", "sem", "sob",
		"e", "ou", "mas", "que", "qual", "quais", "como", "quando", "onde",
		"é", "são", "está", "estão", "ser", "estar", "ter", "fazer", "mais",
		"menos", "muito", "pouco", "todo", "toda", "isso", "esse", "aquele",
	} {
		stopwords[textnorm.Plain(w)] = struct{}{}
	}
}

// Words palabras relevantes del mensaje: normalizadas, sin stopwords ni palabras de 2 letras o menos.
// Conserva el orden y las repeticiones.
func Words(message string) []string {
	var out []string
	for _, w := range textnorm.Tokens(message) {
		if _, stop := stopwords[w]; stop || utf8.RuneCountInString(w) <= 2 {
			continue
		}
		out = append(out, w)
	}
	return out
}

// Score puntaje 0-100 (2 decimales) y palabras del mensaje que coincidieron, ordenadas.
//
// Cada palabra distinta suma TitleWeight si aparece dentro del título y KeywordWeight si está
// contenida en una keyword o la contiene. El total se normaliza contra todas las palabras
// coincidiendo sólo en el título; si todas coinciden en algo se multiplica por FullMatchBonus.
func Score(message, title string, keywords []string) (float64, []string) {
	words := unique(Words(message))
	if len(words) == 0 {
		return 0, nil
	}
	normTitle := textnorm.Plain(title)
	normKeywords := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if nk := textnorm.Plain(k); nk != "" {
			normKeywords = append(normKeywords, nk)
		}
	}

	var titleHits, keywordHits int
	matched := make([]string, 0, len(words))
	for _, w := range words {
		inTitle := strings.Contains(normTitle, w)
		inKeyword := false
		for _, k := range normKeywords {
			if strings.Contains(k, w) || strings.Contains(w, k) {
				inKeyword = true
				break
			}
		}
		if inTitle {
			titleHits++
		}
		if inKeyword {
			keywordHits++
		}
		if inTitle || inKeyword {
			matched = append(matched, w)
		}
	}

	total := float64(titleHits)*TitleWeight + float64(keywordHits)*KeywordWeight
	score := math.Min(MaxScore, total/(float64(len(words))*TitleWeight)*100)
	if len(matched) == len(words) {
		score = math.Min(MaxScore, score*FullMatchBonus)
	}
	sort.Strings(matched)
	return math.Round(score*100) / 100, matched
}

func unique(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	out := words[:0:0]
	for _, w := range words {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}
