package constants

import pkgconst "exohub-backend/internal/pkg/constants"

// PermissionRoles maps each permission to roles allowed to perform it.
// Partner-visible orders and sync/price-list administration are restricted
// beyond the plain trading permissions.
var PermissionRoles = map[string][]string{
	ViewData:           {pkgconst.Viewer, pkgconst.Trader, pkgconst.Manager, pkgconst.Admin},
	CreateListing:      {pkgconst.Trader, pkgconst.Manager, pkgconst.Admin},
	EditListing:        {pkgconst.Trader, pkgconst.Manager, pkgconst.Admin},
	DeleteListing:      {pkgconst.Trader, pkgconst.Manager, pkgconst.Admin},
	CreatePartnerOrder: {pkgconst.Manager, pkgconst.Admin},
	CreateReservation:  {pkgconst.Trader, pkgconst.Manager, pkgconst.Admin},
	RunInventorySync:   {pkgconst.Manager, pkgconst.Admin},
	ManagePriceLists:   {pkgconst.Admin},
	ManageCatalog:      {pkgconst.Manager, pkgconst.Admin},
}

// AllowedRole returns true if role is in the list of allowed roles for the permission.
func AllowedRole(permission, role string) bool {
	roles, ok := PermissionRoles[permission]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasPermission is the engine-facing check used by services that validate
// order type outside the HTTP middleware (e.g. the Discord collaborator).
func HasPermission(role, permission string) bool {
	return AllowedRole(permission, role)
}
