package entity

import "time"

// KnowledgeItem entrada de la base de conocimiento (preguntas frecuentes y ayuda de uso).
// Title es único. La baja es lógica: Active=false la saca de las búsquedas.
type KnowledgeItem struct {
	ID        string
	Title     string
	Answer    string
	Keywords  []string
	Category  *string
	Active    bool
	Views     int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone copia profunda (Keywords y Category no se comparten).
func (k *KnowledgeItem) Clone() *KnowledgeItem {
	c := *k
	c.Keywords = append([]string(nil), k.Keywords...)
	if k.Category != nil {
		cat := *k.Category
		c.Category = &cat
	}
	return &c
}
