package shared

import "strings"

// Role identifies an account's position in the business.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleCustomer   Role = "customer"
	RoleSupplier   Role = "supplier"
	RoleShopkeeper Role = "shopkeeper"
	RoleUser       Role = "user"
)

// Capabilities gating API operations.
const (
	CapOrdersView        = "orders.view"
	CapOrdersCreate      = "orders.create"
	CapOrdersAssign      = "orders.assign"
	CapOrdersCancel      = "orders.cancel"
	CapDeliveriesView    = "deliveries.view"
	CapDeliveriesUpdate  = "deliveries.update"
	CapRoutesView        = "routes.view"
	CapRoutesManage      = "routes.manage"
	CapFinanceView       = "finance.view"
	CapFinanceRecord     = "finance.record"
	CapSalesView         = "sales.view"
	CapSalesRecord       = "sales.record"
	CapUsersManage       = "users.manage"
	CapLogsView          = "logs.view"
	CapDashboardAdmin    = "dashboard.admin"
	CapDashboardCustomer = "dashboard.customer"
	CapDashboardSupplier = "dashboard.supplier"
)

// capabilityTable maps each role to its permitted capabilities. The table is
// evaluated once at the authorization boundary instead of per-screen checks.
var capabilityTable = map[Role][]string{
	RoleAdmin: {
		CapOrdersView, CapOrdersCreate, CapOrdersAssign, CapOrdersCancel,
		CapDeliveriesView, CapDeliveriesUpdate,
		CapRoutesView, CapRoutesManage,
		CapFinanceView, CapFinanceRecord,
		CapSalesView,
		CapUsersManage, CapLogsView,
		CapDashboardAdmin,
	},
	RoleCustomer: {
		CapOrdersView, CapOrdersCreate, CapOrdersCancel,
		CapDashboardCustomer,
	},
	RoleSupplier: {
		CapOrdersView,
		CapDeliveriesView, CapDeliveriesUpdate,
		CapRoutesView,
		CapDashboardSupplier,
	},
	RoleShopkeeper: {
		CapSalesView, CapSalesRecord,
	},
	RoleUser: {
		CapOrdersView,
	},
}

// ValidRole reports whether the value is a known role.
func ValidRole(r Role) bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleCustomer, RoleSupplier, RoleShopkeeper, RoleUser:
		return true
	}
	return false
}

// Allowed reports whether the role grants the capability.
// super_admin inherits every admin capability.
func Allowed(role Role, capability string) bool {
	capability = strings.TrimSpace(strings.ToLower(capability))
	if capability == "" {
		return false
	}
	effective := role
	if role == RoleSuperAdmin {
		effective = RoleAdmin
	}
	for _, c := range capabilityTable[effective] {
		if c == capability {
			return true
		}
	}
	return false
}

// Capabilities returns the capability set granted to a role.
func Capabilities(role Role) []string {
	effective := role
	if role == RoleSuperAdmin {
		effective = RoleAdmin
	}
	caps := capabilityTable[effective]
	out := make([]string, len(caps))
	copy(out, caps)
	return out
}
