package constants

const (
	ViewData           = "view_data"
	CreateListing      = "create_listing"
	EditListing        = "edit_listing"
	DeleteListing      = "delete_listing"
	CreatePartnerOrder = "create_partner_order"
	CreateReservation  = "create_reservation"
	RunInventorySync   = "run_inventory_sync"
	ManagePriceLists   = "manage_price_lists"
	ManageCatalog      = "manage_catalog"
)
