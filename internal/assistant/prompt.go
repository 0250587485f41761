package assistant

import (
	"encoding/json"
	"fmt"

	"storefront-service/internal/models"
)

// Persona is who the assistant speaks as
type Persona struct {
	Name  string
	Brand string
}

var DefaultPersona = Persona{Name: "Luca", Brand: "Luce & Ombra"}

// promptProduct is the catalog view given to the model. Images are left out.
type promptProduct struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Price    json.Number `json:"price"`
	Category string      `json:"category"`
	Desc     string      `json:"desc"`
}

// BuildSystemInstruction renders the system instruction for a conversation
// seeded with catalog
func BuildSystemInstruction(persona Persona, catalog []models.Product) string {
	items := make([]promptProduct, len(catalog))
	for i, p := range catalog {
		items[i] = promptProduct{
			ID:       p.ID,
			Name:     p.Name,
			Price:    json.Number(p.Price.String()),
			Category: string(p.Category),
			Desc:     p.Description,
		}
	}
	data, err := json.Marshal(items)
	if err != nil {
		data = []byte("[]")
	}

	return fmt.Sprintf(`You are '%s', a highly sophisticated, high-end Italian jewelry stylist for the brand '%s'.
Your tone is elegant, minimalist, and welcoming. You speak primarily in English but use Italian phrases (like "Ciao", "Bellissimo", "Prego") naturally.
Your goal is to help customers find the perfect jewelry from our catalog.

Catalog Data:
%s

Rules:
1. Only recommend products from the catalog provided above.
2. If a user asks for something we don't have, politely suggest a minimalist alternative from our list.
3. Keep responses concise and stylish, like a luxury fashion editorial.
4. If asked about prices, always use the Euro (€) symbol.
5. Format product names in bold.
`, persona.Name, persona.Brand, data)
}
