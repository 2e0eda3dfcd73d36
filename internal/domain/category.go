package domain

// Category is the vehicle tier of a ride or the package type of a delivery.
type Category string

const (
	CategoryEconomy Category = "ECONOMY"
	CategoryComfort Category = "COMFORT"
	CategoryXL      Category = "XL"

	CategoryDocuments     Category = "DOCUMENTS"
	CategorySmallPackage  Category = "SMALL_PACKAGE"
	CategoryMediumPackage Category = "MEDIUM_PACKAGE"
	CategoryLargePackage  Category = "LARGE_PACKAGE"
)

var kindCategories = map[TripKind][]Category{
	TripKindRide:     {CategoryEconomy, CategoryComfort, CategoryXL},
	TripKindDelivery: {CategoryDocuments, CategorySmallPackage, CategoryMediumPackage, CategoryLargePackage},
}

// ValidCategory reports whether c is in the closed category set for kind.
func ValidCategory(kind TripKind, c Category) bool {
	for _, v := range kindCategories[kind] {
		if v == c {
			return true
		}
	}
	return false
}
