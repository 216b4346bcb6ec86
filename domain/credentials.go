package domain

// Credentials carries the opaque strings handed to an exchange client at
// construction time. Missing values are empty strings; nothing here is
// validated or parsed further.
type Credentials struct {
	APIKey     string
	APISecret  string
	CustomerID string
}
