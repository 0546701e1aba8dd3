package domain

// Shortage describes one product that cannot cover the requested quantity.
type Shortage struct {
	ProductID int64 `json:"productId"`
	Available int   `json:"available"`
	Requested int   `json:"requested"`
}
