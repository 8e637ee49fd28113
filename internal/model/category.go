package model

// Item categories shared by lost reports and found items.
const (
	CategoryElectronics = "Electronics"
	CategoryClothing    = "Clothing"
	CategoryAccessories = "Accessories"
	CategoryBooks       = "Books"
	CategoryKeys        = "Keys"
	CategoryWallets     = "Wallets"
	CategoryBags        = "Bags"
	CategoryIDs         = "IDs"
	CategoryOther       = "Other"
)

// Categories lists every accepted category in display order.
var Categories = []string{
	CategoryElectronics,
	CategoryClothing,
	CategoryAccessories,
	CategoryBooks,
	CategoryKeys,
	CategoryWallets,
	CategoryBags,
	CategoryIDs,
	CategoryOther,
}

// ValidCategory reports whether c is one of Categories. Matching is exact.
func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}
