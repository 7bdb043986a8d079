// Package bankinfo implements the bank-account setup wizard: choosing how to
// connect, picking one aggregator-discovered account, and confirming it.
package bankinfo

import "github.com/jask/linkwise/internal/draftstore"

// Store keys read and written by the wizard.
const (
	KeyReimbursementAccount      = "reimbursementAccount"
	KeyReimbursementAccountDraft = "reimbursementAccountDraft"
	KeyPlaidData                 = "plaidData"
	KeyBankAccountSubStep        = "bankAccountSubStep"
)

// Input keys of the bank info step.
const (
	InputRoutingNumber    = "routingNumber"
	InputAccountNumber    = "accountNumber"
	InputPlaidMask        = "plaidMask"
	InputIsSavings        = "isSavings"
	InputBankName         = "bankName"
	InputPlaidAccountID   = "plaidAccountID"
	InputPlaidAccessToken = "plaidAccessToken"
	InputAcceptTerms      = "acceptTerms"
)

// Fields of the confirmed account record.
const (
	FieldBankAccountID = "bankAccountID"
	FieldState         = "state"

	StateLinked = "linked"
)

// Active-substep indicator values. SubStepNone falls back to the step's
// default view.
const (
	FieldSubStep = "subStep"

	SubStepNone   = ""
	SubStepPlaid  = "plaid"
	SubStepManual = "manual"
)

// PlaidBankAccount is one account discovered by the aggregator.
type PlaidBankAccount struct {
	PlaidAccountID string `json:"plaidAccountID" toml:"plaid_account_id"`
	RoutingNumber  string `json:"routingNumber" toml:"routing_number"`
	AccountNumber  string `json:"accountNumber" toml:"account_number"`
	Mask           string `json:"mask" toml:"mask"`
	IsSavings      bool   `json:"isSavings" toml:"is_savings"`
	AddressName    string `json:"addressName,omitempty" toml:"address_name"`
}

// PlaidData is the aggregator result for one institution.
type PlaidData struct {
	BankName         string             `json:"bankName,omitempty" toml:"bank_name"`
	PlaidAccessToken string             `json:"plaidAccessToken,omitempty" toml:"access_token"`
	BankAccounts     []PlaidBankAccount `json:"bankAccounts" toml:"accounts"`
	IsLoading        bool               `json:"isLoading,omitempty" toml:"-"`
	Errors           map[string]string  `json:"errors,omitempty" toml:"-"`
}

// Find returns the account whose token equals id.
func (d *PlaidData) Find(id string) (PlaidBankAccount, bool) {
	if d == nil || id == "" {
		return PlaidBankAccount{}, false
	}
	for _, a := range d.BankAccounts {
		if a.PlaidAccountID == id {
			return a, true
		}
	}
	return PlaidBankAccount{}, false
}

// Accounts returns the candidate list; a nil result has none.
func (d *PlaidData) Accounts() []PlaidBankAccount {
	if d == nil {
		return nil
	}
	return d.BankAccounts
}

// ReimbursementAccount is the confirmed account record.
type ReimbursementAccount struct {
	BankAccountID int64  `json:"bankAccountID,omitempty"`
	AccountID     string `json:"accountID,omitempty"`
	BankName      string `json:"bankName,omitempty"`
	Mask          string `json:"mask,omitempty"`
	IsSavings     bool   `json:"isSavings,omitempty"`
	State         string `json:"state,omitempty"`
}

// IsLinked reports whether an account has been confirmed.
func (a ReimbursementAccount) IsLinked() bool { return a.State == StateLinked }

// DecodePlaidData converts a plaidData snapshot. Absent records yield nil.
func DecodePlaidData(rec draftstore.Record, present bool) (*PlaidData, error) {
	if !present {
		return nil, nil
	}
	var d PlaidData
	if err := draftstore.Decode(rec, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// AccountType names the account kind for display.
func AccountType(isSavings bool) string {
	if isSavings {
		return "Savings"
	}
	return "Checking"
}
