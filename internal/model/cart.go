package model

// CartItem is a package the shopper selected but has not committed to a basket yet.
// Price is the display string shown in the store listing, e.g. "$9.99".
type CartItem struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
	Image string `json:"image,omitempty"`
}

type Edition string

const (
	EditionJava    Edition = "java"
	EditionBedrock Edition = "bedrock"
)

// FormatUsername applies the edition rule: bedrock players are prefixed with a literal dot.
func FormatUsername(username string, edition Edition) string {
	if edition == EditionBedrock {
		return "." + username
	}
	return username
}
