package enum

// --- Order lifecycle ---

const (
	OrderStatusPending   = "Pending"
	OrderStatusPreparing = "Preparing"
	OrderStatusReady     = "Ready"
	OrderStatusCompleted = "Completed"
	OrderStatusCancelled = "Cancelled"
)

// LiveOrderStatuses are the statuses under which an order still claims its
// table. Completed and Cancelled are terminal.
var LiveOrderStatuses = []string{
	OrderStatusPending,
	OrderStatusPreparing,
	OrderStatusReady,
}

// --- Payment (independent axis from order status) ---

const (
	PaymentStatusUnpaid  = "Unpaid"
	PaymentStatusPaid    = "Paid"
	PaymentStatusPartial = "Partial"
)

// --- Tables ---

const (
	TableStatusAvailable = "Available"
	TableStatusOccupied  = "Occupied"
	TableStatusReserved  = "Reserved"
)

// --- Users ---

const (
	UserRoleAdmin = "admin"
	UserRoleStaff = "staff"
)
