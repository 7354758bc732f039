// Package models contains the GORM persistence models of the ledger tables.
// Domain entities carry no ORM tags; each model converts to and from its
// domain entity with ToDomain and a <Model>FromDomain constructor.
//
// Files follow the bounded contexts:
//   - partner.go: customers and their cached balance columns
//   - trade.go: sales, sale returns and their lines
//   - finance.go: payments, credit notes, expenses
//   - inventory.go: products, stock movements, damage ledger and categories
//   - identity.go: tenants and tenant settings
//   - audit.go: append-only audit log
package models
