package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// IsValidID reports whether id is a 24-hex-digit backend object id
func IsValidID(id string) bool {
	return primitive.IsValidObjectID(id)
}

// ValidOrders keeps orders that have a well-formed id and at least one product
func ValidOrders(orders []Order) []Order {
	valid := make([]Order, 0, len(orders))
	for _, o := range orders {
		if IsValidID(o.ID) && len(o.Products) > 0 {
			valid = append(valid, o)
		}
	}
	return valid
}
