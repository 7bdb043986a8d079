package repository

import "time"

// Draft is a persisted draft-store record. Payload holds the JSON object.
type Draft struct {
	Key       string
	Payload   []byte
	UpdatedAt time.Time
}

// BankAccount is a linked bank account row. The aggregator access credential
// never lands here; it lives in the secrets store under SecretRef.
type BankAccount struct {
	Seq            int64
	ID             string
	PlaidAccountID string
	BankName       string
	RoutingNumber  string
	AccountNumber  string
	Mask           string
	IsSavings      bool
	SecretRef      *string
	CreatedAt      time.Time
}

// Contact is a row shown by the switcher.
type Contact struct {
	ID          string
	DisplayName string
	Login       string
	Icon        *string
	Kind        string
	LastUsedAt  *time.Time
	CreatedAt   time.Time
}

// CustomSegment is a NetSuite custom segment or custom record configured on a
// policy.
type CustomSegment struct {
	ID          string
	PolicyID    string
	RecordType  string
	SegmentName string
	InternalID  string
	ScriptID    string
	Mapping     string
	CreatedAt   time.Time
}
