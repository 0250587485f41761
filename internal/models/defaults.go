package models

import "github.com/shopspring/decimal"

// DefaultProducts returns a fresh copy of the catalog the shop starts with.
// Order is significant: callers that seed or reset the catalog rely on it.
func DefaultProducts() []Product {
	return []Product{
		{
			ID:          "1",
			Name:        "Occhiali Cat-Eye Retro",
			Price:       decimal.RequireFromString("15.00"),
			Description: "Vintage inspired oversized sunglasses with UV400 protection.",
			Image:       "https://images.unsplash.com/photo-1511499767150-a48a237f0083?auto=format&fit=crop&q=80&w=800",
			Category:    CategorySunglasses,
			Material:    "Acetate & Polycarbonate",
		},
		{
			ID:          "2",
			Name:        "Set Anelli Gold Stack",
			Price:       decimal.RequireFromString("8.50"),
			Description: "Set of 5 minimalist stacking rings. Perfect for daily wear.",
			Image:       "https://images.unsplash.com/photo-1629224316810-9d8805b95076?auto=format&fit=crop&q=80&w=800",
			Category:    CategoryRings,
			Material:    "Stainless Steel (Acciaio)",
		},
		{
			ID:          "3",
			Name:        "Foulard Seta Print",
			Price:       decimal.RequireFromString("12.00"),
			Description: "Elegant square scarf with geometric print. Soft touch.",
			Image:       "https://images.unsplash.com/photo-1584030373081-f37b7bb4faae?auto=format&fit=crop&q=80&w=800",
			Category:    CategoryScarves,
			Material:    "Satin Silk Blend",
		},
		{
			ID:          "4",
			Name:        "Orecchini Cerchio Chunky",
			Price:       decimal.RequireFromString("9.90"),
			Description: "Bold gold-tone hoop earrings. Lightweight and trendy.",
			Image:       "https://images.unsplash.com/photo-1630019852942-f89202989a51?auto=format&fit=crop&q=80&w=800",
			Category:    CategoryEarrings,
			Material:    "Gold Plated Steel",
		},
		{
			ID:          "5",
			Name:        "Clip Capelli Perla",
			Price:       decimal.RequireFromString("5.50"),
			Description: "Oversized hair clip with pearl embellishments.",
			Image:       "https://images.unsplash.com/photo-1576053139778-7e32f2ae3cfd?auto=format&fit=crop&q=80&w=800",
			Category:    CategoryHair,
			Material:    "Resin & Faux Pearl",
		},
		{
			ID:          "6",
			Name:        "Collana Multistrato",
			Price:       decimal.RequireFromString("14.00"),
			Description: "Layered necklace with coin pendant. Tarnish resistant.",
			Image:       "https://images.unsplash.com/photo-1599643478518-17488fbbcd75?auto=format&fit=crop&q=80&w=800",
			Category:    CategoryNecklace,
			Material:    "Stainless Steel",
		},
		{
			ID:          "7",
			Name:        "Occhiali Aviator Neri",
			Price:       decimal.RequireFromString("18.00"),
			Description: "Classic black aviator frames. Unisex design.",
			Image:       "https://images.unsplash.com/photo-1572635196237-14b3f281503f?auto=format&fit=crop&q=80&w=800",
			Category:    CategorySunglasses,
			Material:    "Metal Frame",
		},
		{
			ID:          "8",
			Name:        "Sciarpa Cashmere Blend",
			Price:       decimal.RequireFromString("22.00"),
			Description: "Warm and cozy scarf in neutral beige tones.",
			Image:       "https://images.unsplash.com/photo-1601662546140-d7c3d2e26039?auto=format&fit=crop&q=80&w=800",
			Category:    CategoryScarves,
			Material:    "Viscose & Cashmere",
		},
		{
			ID:          "9",
			Name:        "Bracciale Catena",
			Price:       decimal.RequireFromString("11.00"),
			Description: "Industrial style chain link bracelet.",
			Image:       "https://images.unsplash.com/photo-1611591437281-460bfbe1220a?auto=format&fit=crop&q=80&w=800",
			Category:    CategoryBracelets,
			Material:    "Polished Steel",
		},
	}
}

