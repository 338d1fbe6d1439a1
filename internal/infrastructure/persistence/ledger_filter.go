package persistence

import (
	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/shared"
	"gorm.io/gorm"
)

const (
	obligationTable  = "obligations"
	installmentTable = "obligation_installments"
)

// applyObligationFilter adds one parameterized predicate per populated field
func applyObligationFilter(query *gorm.DB, filter ledger.ObligationFilter) *gorm.DB {
	if filter.Direction != nil {
		query = query.Where("direction = ?", *filter.Direction)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.CounterpartyID != nil {
		query = query.Where("counterparty_id = ?", *filter.CounterpartyID)
	}
	if filter.AccountID != nil {
		query = query.Where("account_id = ?", *filter.AccountID)
	}
	if filter.CostCenterID != nil {
		query = query.Where("cost_center_id = ?", *filter.CostCenterID)
	}
	if filter.DocumentNumber != "" {
		query = query.Where("document_number = ?", filter.DocumentNumber)
	}
	if filter.IssueDateFrom != nil {
		query = query.Where("issue_date >= ?", *filter.IssueDateFrom)
	}
	if filter.IssueDateTo != nil {
		query = query.Where("issue_date <= ?", *filter.IssueDateTo)
	}
	if filter.DueDateFrom != nil {
		query = query.Where("due_date >= ?", *filter.DueDateFrom)
	}
	if filter.DueDateTo != nil {
		query = query.Where("due_date <= ?", *filter.DueDateTo)
	}
	return query
}

// applyInstallmentFilter filters installments, joining the header only when a
// header attribute is part of the filter
func applyInstallmentFilter(query *gorm.DB, filter ledger.InstallmentFilter) *gorm.DB {
	col := func(name string) string { return installmentTable + "." + name }
	hdr := func(name string) string { return obligationTable + "." + name }

	if filter.ObligationID != nil {
		query = query.Where(col("obligation_id")+" = ?", *filter.ObligationID)
	}
	if filter.Status != nil {
		query = query.Where(col("status")+" = ?", *filter.Status)
	}
	if filter.DueDateFrom != nil {
		query = query.Where(col("due_date")+" >= ?", *filter.DueDateFrom)
	}
	if filter.DueDateTo != nil {
		query = query.Where(col("due_date")+" <= ?", *filter.DueDateTo)
	}
	if filter.SettlementDateFrom != nil {
		query = query.Where(col("settlement_date")+" >= ?", *filter.SettlementDateFrom)
	}
	if filter.SettlementDateTo != nil {
		query = query.Where(col("settlement_date")+" <= ?", *filter.SettlementDateTo)
	}

	if filter.Direction == nil && filter.CounterpartyID == nil &&
		filter.AccountID == nil && filter.CostCenterID == nil {
		return query
	}

	query = query.Joins("JOIN " + obligationTable + " ON " + hdr("id") + " = " + col("obligation_id"))
	if filter.Direction != nil {
		query = query.Where(hdr("direction")+" = ?", *filter.Direction)
	}
	if filter.CounterpartyID != nil {
		query = query.Where(hdr("counterparty_id")+" = ?", *filter.CounterpartyID)
	}
	if filter.AccountID != nil {
		query = query.Where(hdr("account_id")+" = ?", *filter.AccountID)
	}
	if filter.CostCenterID != nil {
		query = query.Where(hdr("cost_center_id")+" = ?", *filter.CostCenterID)
	}
	return query
}

// applyPagination applies a whitelisted ORDER BY plus LIMIT/OFFSET.
// table qualifies the sort column when the query may join other tables.
func applyPagination(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField string, table ...string) *gorm.DB {
	orderBy := ValidateSortField(filter.OrderBy, allowed, defaultField)
	if len(table) > 0 && table[0] != "" {
		orderBy = table[0] + "." + orderBy
	}
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}
