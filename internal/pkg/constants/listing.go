package constants

// Districts lists the Kerala districts a property may be filed under.
var Districts = []string{
	"Alappuzha", "Ernakulam", "Idukki", "Kannur", "Kasaragod", "Kollam",
	"Kottayam", "Kozhikode", "Malappuram", "Palakkad", "Pathanamthitta",
	"Thiruvananthapuram", "Thrissur", "Wayanad",
}

// PropertyTypes lists the accepted property types.
var PropertyTypes = []string{"Apartment", "House", "Land", "Commercial"}

// TransactionTypes lists the accepted transaction types.
var TransactionTypes = []string{"For Sale", "For Rent"}

// IsValidDistrict returns true if d is a known district.
func IsValidDistrict(d string) bool {
	return contains(Districts, d)
}

// IsValidPropertyType returns true if t is one of PropertyTypes.
func IsValidPropertyType(t string) bool {
	return contains(PropertyTypes, t)
}

// IsValidTransactionType returns true if t is one of TransactionTypes.
func IsValidTransactionType(t string) bool {
	return contains(TransactionTypes, t)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
