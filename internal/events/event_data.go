package events

// EventData is the interface that all event data types must implement
// This allows for type-safe event data while maintaining flexibility
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// TradeCreatedData contains data for TradeCreated events
type TradeCreatedData struct {
	TradeID      int64   `json:"trade_id"`
	Account      string  `json:"account"`
	Ticker       string  `json:"ticker"`
	TradeType    string  `json:"trade_type"`
	Status       string  `json:"status"`
	TotalPremium float64 `json:"total_premium"`
}

// EventType returns the event type for TradeCreatedData
func (d *TradeCreatedData) EventType() EventType {
	return TradeCreated
}

// TradeUpdatedData contains data for TradeUpdated events
type TradeUpdatedData struct {
	TradeID int64  `json:"trade_id"`
	Account string `json:"account"`
	Ticker  string `json:"ticker"`
}

// EventType returns the event type for TradeUpdatedData
func (d *TradeUpdatedData) EventType() EventType {
	return TradeUpdated
}

// TradeDeletedData contains data for TradeDeleted events
type TradeDeletedData struct {
	TradeID int64  `json:"trade_id"`
	Account string `json:"account"`
	Ticker  string `json:"ticker"`
}

// EventType returns the event type for TradeDeletedData
func (d *TradeDeletedData) EventType() EventType {
	return TradeDeleted
}

// TradeRolledData contains data for TradeRolled events
type TradeRolledData struct {
	PredecessorID int64  `json:"predecessor_id"`
	SuccessorID   int64  `json:"successor_id"`
	Account       string `json:"account"`
	Ticker        string `json:"ticker"`
}

// EventType returns the event type for TradeRolledData
func (d *TradeRolledData) EventType() EventType {
	return TradeRolled
}

// TradeStatusChangedData contains data for TradeStatusChanged events
type TradeStatusChangedData struct {
	TradeID   int64  `json:"trade_id"`
	Account   string `json:"account"`
	Ticker    string `json:"ticker"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

// EventType returns the event type for TradeStatusChangedData
func (d *TradeStatusChangedData) EventType() EventType {
	return TradeStatusChanged
}

// CashFlowCreatedData contains data for CashFlowCreated events
type CashFlowCreatedData struct {
	CashFlowID int64   `json:"cash_flow_id"`
	AccountID  int64   `json:"account_id"`
	FlowType   string  `json:"flow_type"`
	Amount     float64 `json:"amount"`
}

// EventType returns the event type for CashFlowCreatedData
func (d *CashFlowCreatedData) EventType() EventType {
	return CashFlowCreated
}

// CashFlowDeletedData contains data for CashFlowDeleted events
type CashFlowDeletedData struct {
	CashFlowID int64  `json:"cash_flow_id"`
	AccountID  int64  `json:"account_id"`
	FlowType   string `json:"flow_type"`
}

// EventType returns the event type for CashFlowDeletedData
func (d *CashFlowDeletedData) EventType() EventType {
	return CashFlowDeleted
}

// LedgerRebuiltData contains data for LedgerRebuilt events
type LedgerRebuiltData struct {
	Account    string  `json:"account"`
	Ticker     string  `json:"ticker"`
	Events     int     `json:"events"`
	DurationMS float64 `json:"duration_ms"`
}

// EventType returns the event type for LedgerRebuiltData
func (d *LedgerRebuiltData) EventType() EventType {
	return LedgerRebuilt
}

// BankrollChangedData contains data for BankrollChanged events
type BankrollChangedData struct {
	Account string `json:"account"`
}

// EventType returns the event type for BankrollChangedData
func (d *BankrollChangedData) EventType() EventType {
	return BankrollChanged
}

// CommissionChangedData contains data for CommissionChanged events
type CommissionChangedData struct {
	Account       string  `json:"account"`
	EffectiveDate string  `json:"effective_date"`
	RatePerShare  float64 `json:"rate_per_share"`
}

// EventType returns the event type for CommissionChangedData
func (d *CommissionChangedData) EventType() EventType {
	return CommissionChanged
}

// AccountCreatedData contains data for AccountCreated events
type AccountCreatedData struct {
	Account string `json:"account"`
}

// EventType returns the event type for AccountCreatedData
func (d *AccountCreatedData) EventType() EventType {
	return AccountCreated
}

// TickerCreatedData contains data for TickerCreated events
type TickerCreatedData struct {
	Ticker string `json:"ticker"`
}

// EventType returns the event type for TickerCreatedData
func (d *TickerCreatedData) EventType() EventType {
	return TickerCreated
}

// BackupCompletedData contains data for BackupCompleted events
type BackupCompletedData struct {
	Bucket     string  `json:"bucket"`
	Key        string  `json:"key"`
	SizeBytes  int64   `json:"size_bytes"`
	DurationMS float64 `json:"duration_ms"`
}

// EventType returns the event type for BackupCompletedData
func (d *BackupCompletedData) EventType() EventType {
	return BackupCompleted
}

// SystemStatusChangedData contains data for SystemStatusChanged events
type SystemStatusChangedData struct {
	Status    string `json:"status,omitempty"`
	Timestamp string `json:"timestamp"`
}

// EventType returns the event type for SystemStatusChangedData
func (d *SystemStatusChangedData) EventType() EventType {
	return SystemStatusChanged
}

// ErrorEventData contains data for ErrorOccurred events
type ErrorEventData struct {
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// EventType returns the event type for ErrorEventData
func (d *ErrorEventData) EventType() EventType {
	return ErrorOccurred
}
