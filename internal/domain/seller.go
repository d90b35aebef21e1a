package domain

type Seller struct {
	ID        string `json:"id" validate:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	StartDate string `json:"start_date,omitempty"`
	Position  string `json:"position,omitempty"`
}

// FullName joins first and last name with a single space.
func (s Seller) FullName() string {
	return s.FirstName + " " + s.LastName
}
