package enum

// ── Order status (CHECK constrained in DB) ──
//
// Every order is created as "Pending". The transition policy between the
// remaining statuses lives in the service layer and is configurable there.

const (
	OrderStatusPending      = "Pending"
	OrderStatusInProduction = "In Production"
	OrderStatusReady        = "Ready for Delivery"
	OrderStatusCompleted    = "Completed"
	OrderStatusCancelled    = "Cancelled"
)

// ── User roles (CHECK constrained in DB) ──

const (
	UserRoleAdmin = "ADMIN"
	UserRoleMill  = "MILL"
	UserRoleStore = "STORE"
)

// ── Catalog labels (no DB constraint) ──

const (
	CategoryLivingRoom = "LIVING_ROOM"
	CategoryBedroom    = "BEDROOM"
	CategoryDining     = "DINING"
	CategoryOffice     = "OFFICE"
	CategoryOutdoor    = "OUTDOOR"
)

const (
	WoodTypeTeak       = "TEAK"
	WoodTypeMahogany   = "MAHOGANY"
	WoodTypeOak        = "OAK"
	WoodTypeSheesham   = "SHEESHAM"
	WoodTypeEngineered = "ENGINEERED"
)

// DefaultMillWorker is the assignment placeholder on new orders.
const DefaultMillWorker = "Not Assigned"
