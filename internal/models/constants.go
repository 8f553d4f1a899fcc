package models

// Transaction directions as printed on the statement.
const (
	DirectionDebit  = "Dr"
	DirectionCredit = "Cr"
)

// Date layouts.
const (
	DateLayoutStatement = "02-01-2006"
	DateLayoutISO       = "2006-01-02"
)

// CurrencySymbol prefixes every amount rendered for a reader.
const CurrencySymbol = "₹"

// File permissions
const (
	PermissionConfigFile = 0600
	PermissionDirectory  = 0750
	PermissionReportFile = 0644
)
