package domain

type SplitType string

const (
	SplitTypeEqual      SplitType = "equal"
	SplitTypePercentage SplitType = "percentage"
)

func (t SplitType) Valid() bool {
	return t == SplitTypeEqual || t == SplitTypePercentage
}

type LedgerEventType string

const (
	EventUserDeleted    LedgerEventType = "user.deleted"
	EventGroupCreated   LedgerEventType = "group.created"
	EventGroupUpdated   LedgerEventType = "group.updated"
	EventGroupDeleted   LedgerEventType = "group.deleted"
	EventExpenseCreated LedgerEventType = "expense.created"
	EventExpenseUpdated LedgerEventType = "expense.updated"
	EventExpenseDeleted LedgerEventType = "expense.deleted"
)
