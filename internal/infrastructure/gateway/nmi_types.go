package gateway

// NMI transact.php request field values
const (
	nmiTransactionTypeSale   = "sale"
	nmiTransactionTypeRefund = "refund"
	nmiTransactionTypeVoid   = "void"
)

// NMI response codes returned in the "response" field
const (
	nmiResponseApproved = "1"
	nmiResponseDeclined = "2"
	nmiResponseError    = "3"
)

// NMI query API transaction conditions
const (
	nmiConditionPending           = "pending"
	nmiConditionPendingSettlement = "pendingsettlement"
	nmiConditionComplete          = "complete"
	nmiConditionFailed            = "failed"
	nmiConditionCanceled          = "canceled"
	nmiConditionAbandoned         = "abandoned"
)

// nmiTransactResponse is the parsed query-string body returned by transact.php
type nmiTransactResponse struct {
	Response      string // 1=approved, 2=declined, 3=error
	ResponseText  string
	AuthCode      string
	TransactionID string
	OrderID       string
	ResponseCode  string // three-digit processor result code
	AVSResponse   string
	CVVResponse   string
}

// nmiQueryResponse is the XML envelope returned by query.php
type nmiQueryResponse struct {
	Transactions []nmiQueryTransaction `xml:"transaction"`
}

type nmiQueryTransaction struct {
	TransactionID string           `xml:"transaction_id"`
	Condition     string           `xml:"condition"`
	OrderID       string           `xml:"order_id"`
	Actions       []nmiQueryAction `xml:"action"`
}

type nmiQueryAction struct {
	ActionType string `xml:"action_type"`
	Amount     string `xml:"amount"`
	Success    string `xml:"success"`
}
