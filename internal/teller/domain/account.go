package domain

// AccountKind is the balance subtype of an account.
type AccountKind string

const (
	AccountChecking AccountKind = "checking"
	AccountSavings  AccountKind = "savings"
)

// AccountKinds lists every kind a user is given at signup.
var AccountKinds = []AccountKind{AccountChecking, AccountSavings}

func (k AccountKind) Valid() bool {
	return k == AccountChecking || k == AccountSavings
}

// Account is one balance owned by a user. Numbers are unique across kinds.
type Account struct {
	Number  string
	UserID  string
	Kind    AccountKind
	Balance int64 // minor units
}
