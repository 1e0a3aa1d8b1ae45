// Package constants defines shared constant values used across layers.
package constants

// Database table names
const (
	TableResellers     = "resellers"
	TableLedgerEntries = "ledger_entries"
	TableNodes         = "nodes"
	TableAllocations   = "node_allocations"
	TableVPNUsers      = "vpn_users"
	TableNodeAccounts  = "node_accounts"
	TableCleanupTasks  = "cleanup_tasks"
)

// Gin context keys
const (
	ContextKeyResellerID = "reseller_id"
	ContextKeyIsRoot     = "is_root"
)

// BytesPerGB converts the reseller-facing GB unit to bytes.
const BytesPerGB = 1 << 30
