package domain

// DeliveryStatus is the lifecycle state derived from a Delivery's timestamps.
type DeliveryStatus string

// Possible delivery statuses
const (
	StatusPending   DeliveryStatus = "pending"
	StatusRetrieved DeliveryStatus = "retrieved"
	StatusDelivered DeliveryStatus = "delivered"
	StatusCancelled DeliveryStatus = "cancelled"
)

var allowedStatuses = [...]DeliveryStatus{
	StatusPending, StatusRetrieved, StatusDelivered, StatusCancelled,
}

// Valid checks if the DeliveryStatus is known
func (s DeliveryStatus) Valid() bool {
	for _, v := range allowedStatuses {
		if s == v {
			return true
		}
	}
	return false
}
