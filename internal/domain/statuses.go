package domain

type RoleType string

const (
	RoleBuyer  RoleType = "BUYER"
	RoleSeller RoleType = "SELLER"
	RoleAdmin  RoleType = "ADMIN"
)

type ProjectStatusType string

const (
	ProjectStatusPending  ProjectStatusType = "PENDING_REVIEW"
	ProjectStatusApproved ProjectStatusType = "APPROVED"
	ProjectStatusRejected ProjectStatusType = "REJECTED"
)

type OrderStatusType string

const (
	OrderStatusCreated          OrderStatusType = "CREATED"
	OrderStatusPaymentCompleted OrderStatusType = "PAYMENT_COMPLETED"
	OrderStatusCompleted        OrderStatusType = "COMPLETED"
	OrderStatusPaymentFailed    OrderStatusType = "PAYMENT_FAILED"
)

// Terminal reports whether the order can no longer change state.
func (s OrderStatusType) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusPaymentFailed
}

// Paid reports whether the payment for the order already went through.
// PAYMENT_COMPLETED predates the merged COMPLETED status and is kept so rows
// written by older code still short-circuit the idempotency check.
func (s OrderStatusType) Paid() bool {
	return s == OrderStatusPaymentCompleted || s == OrderStatusCompleted
}

type WithdrawalStatusType string

const (
	WithdrawalStatusPending    WithdrawalStatusType = "PENDING"
	WithdrawalStatusApproved   WithdrawalStatusType = "APPROVED"
	WithdrawalStatusProcessing WithdrawalStatusType = "PROCESSING"
	WithdrawalStatusRejected   WithdrawalStatusType = "REJECTED"
	WithdrawalStatusCompleted  WithdrawalStatusType = "COMPLETED"
)

type TransactionType string

const (
	TransactionCredit TransactionType = "CREDIT"
	TransactionDebit  TransactionType = "DEBIT"
)

type TransactionSource string

const (
	SourceSale       TransactionSource = "SALE"
	SourceWithdrawal TransactionSource = "WITHDRAWAL"
	SourceRefund     TransactionSource = "REFUND"
)
