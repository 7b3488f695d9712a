package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowed(t *testing.T) {
	assert.True(t, Allowed(RoleAdmin, CapOrdersAssign))
	assert.True(t, Allowed(RoleCustomer, CapOrdersCreate))
	assert.False(t, Allowed(RoleCustomer, CapOrdersAssign))
	assert.False(t, Allowed(RoleShopkeeper, CapFinanceView))
	assert.True(t, Allowed(RoleShopkeeper, CapSalesRecord))
	assert.False(t, Allowed(RoleUser, CapOrdersCreate))
}

func TestAllowedSuperAdminInheritsAdmin(t *testing.T) {
	for _, capability := range Capabilities(RoleAdmin) {
		assert.True(t, Allowed(RoleSuperAdmin, capability), capability)
	}
}

func TestAllowedNormalizesInput(t *testing.T) {
	assert.True(t, Allowed(RoleAdmin, "  ORDERS.VIEW "))
	assert.False(t, Allowed(RoleAdmin, ""))
	assert.False(t, Allowed(Role("ghost"), CapOrdersView))
}

func TestCapabilitiesReturnsCopy(t *testing.T) {
	caps := Capabilities(RoleCustomer)
	if len(caps) == 0 {
		t.Fatal("expected customer capabilities")
	}
	caps[0] = "mutated"
	assert.NotContains(t, Capabilities(RoleCustomer), "mutated")
}

func TestValidRole(t *testing.T) {
	for _, r := range []Role{RoleSuperAdmin, RoleAdmin, RoleCustomer, RoleSupplier, RoleShopkeeper, RoleUser} {
		assert.True(t, ValidRole(r), string(r))
	}
	assert.False(t, ValidRole(Role("manager")))
}
