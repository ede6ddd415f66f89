package purchase

import "errors"

var (
	// ErrAlreadyOwned is returned when a user tries to buy their own material
	ErrAlreadyOwned = errors.New("material is owned by the buyer")

	// ErrAlreadyPurchased is returned when an entitlement already exists
	ErrAlreadyPurchased = errors.New("material already purchased")

	// ErrInsufficientCredits is returned when the balance cannot cover the price
	ErrInsufficientCredits = errors.New("insufficient credits")
)
