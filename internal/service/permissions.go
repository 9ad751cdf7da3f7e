package service

import "cardwallet/internal/model"

// Permission predicates. Plain functions evaluated before any mutation;
// services compose them with the not-found checks.

// canEditCard reports whether the association row allows mutating the card
// itself. Only the owner row does; shared holders may read and remove.
func canEditCard(userCard *model.UserCard) bool {
	return userCard != nil && userCard.Owner
}

// canEditShop reports whether a shop may be mutated by a user who does or
// does not own a card referencing it. Verified shops are immutable here.
func canEditShop(shop *model.Shop, ownsCardOfShop bool) bool {
	return shop != nil && !shop.Verified && ownsCardOfShop
}
