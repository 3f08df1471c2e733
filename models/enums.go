package models

type UserRole string

const (
	UserRoleAdmin             UserRole = "admin"
	UserRoleOperationsManager UserRole = "operations_manager"
	UserRoleOperations        UserRole = "operations"
	UserRoleAgent             UserRole = "agent"
)

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleAdmin, UserRoleOperationsManager, UserRoleOperations, UserRoleAgent:
		return true
	}
	return false
}

type DealStatus string

const (
	DealStatusOpen      DealStatus = "open"
	DealStatusClosed    DealStatus = "closed"
	DealStatusCancelled DealStatus = "cancelled"
)
