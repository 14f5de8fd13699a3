package shoptest

import "time"

func (s *Server) seed() {
	s.products = []Product{
		{
			ID:                1,
			Name:              "Mint Tea",
			Description:       "Loose-leaf **peppermint** tea.\n\n- 100g tin\n- caffeine free",
			Price:             "12.50",
			Category:          "Tea",
			Image:             "/media/product_images/mint-tea.jpg",
			InventoryQuantity: 40,
		},
		{
			ID:                2,
			Name:              "Ceramic Mug",
			Description:       "A 350ml stoneware mug.",
			Price:             "18.00",
			Category:          "Kitchen",
			Image:             "/media/product_images/mug.jpg",
			InventoryQuantity: 12,
		},
		{
			ID:                3,
			Name:              "Green Tea",
			Description:       "Sencha from Shizuoka.",
			Price:             "9.99",
			Category:          "Tea",
			Image:             "/media/product_images/green-tea.jpg",
			InventoryQuantity: 0,
		},
	}

	s.users["alice"] = &user{
		ID:              1,
		Username:        "alice",
		Email:           "alice@example.com",
		Password:        Password,
		ShippingAddress: "1 Main St",
		BillingAddress:  "1 Main St",
		CreditCardInfo:  "4242424242424242",
	}
	s.users["bob"] = &user{
		ID:       2,
		Username: "bob",
		Email:    "bob@example.com",
		Password: Password,
	}

	s.reviews = []review{
		{ID: 1, Product: 1, User: "bob", Rating: 5, Comment: "Great tea.", CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
	}
}
