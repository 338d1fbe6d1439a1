// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// from ORM concerns.
//
//  1. Domain entities carry no GORM tags
//  2. Persistence models hold the table mappings and column types
//  3. ToDomain / FromDomain convert between the two
//  4. Repositories only read and write persistence models
//
// Files:
//   - base.go: BaseModel and AggregateModel (version column)
//   - ledger.go: obligations and obligation_installments
package models
