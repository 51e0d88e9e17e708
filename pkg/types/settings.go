package types

// LandingSection is one configurable block on the public landing page.
type LandingSection struct {
	Key     string `json:"key" validate:"required"`
	Title   string `json:"title" validate:"required"`
	Body    string `json:"body"`
	Enabled bool   `json:"enabled"`
}

// SubscriptionPrices holds the displayed price per plan, as entered by admins.
type SubscriptionPrices struct {
	Weekly  string `json:"weekly"`
	Monthly string `json:"monthly"`
}
