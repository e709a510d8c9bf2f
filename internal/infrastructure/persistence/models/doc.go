// Package models contains GORM persistence models mapped to database tables.
// Domain aggregates carry no ORM tags; each model has a ToDomain method and a
// <Name>ModelFromDomain constructor, and repositories only touch models.
//
// Money totals are stored as decimal(18,2) columns next to their JSONB line
// and VAT breakdown payloads so reports can aggregate in SQL.
package models
