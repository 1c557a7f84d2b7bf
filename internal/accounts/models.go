package accounts

import "time"

// Kind tags which variant an Account holds.
type Kind string

const (
	KindCustomer Kind = "customer"
	KindMerchant Kind = "merchant"
)

func (k Kind) Valid() bool { return k == KindCustomer || k == KindMerchant }

// Principal identifies the caller of an operation. Customer and merchant ids
// live in separate namespaces, so the kind is part of the identity.
type Principal struct {
	Kind Kind  `json:"kind"`
	ID   int64 `json:"id"`
}

func (p Principal) IsMerchant() bool { return p.Kind == KindMerchant }
func (p Principal) IsCustomer() bool { return p.Kind == KindCustomer }

type Customer struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Address      string    `json:"address"`
	Phone        string    `json:"phone"`
	CreatedAt    time.Time `json:"created_at"`
}

type Merchant struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Address      string `json:"address"`
}

// Account holds exactly one of Customer or Merchant, selected by Kind.
type Account struct {
	Kind     Kind      `json:"kind"`
	Customer *Customer `json:"customer,omitempty"`
	Merchant *Merchant `json:"merchant,omitempty"`
}

func CustomerAccount(c *Customer) Account { return Account{Kind: KindCustomer, Customer: c} }
func MerchantAccount(m *Merchant) Account { return Account{Kind: KindMerchant, Merchant: m} }

func (a Account) Principal() Principal {
	switch a.Kind {
	case KindCustomer:
		return Principal{Kind: KindCustomer, ID: a.Customer.ID}
	case KindMerchant:
		return Principal{Kind: KindMerchant, ID: a.Merchant.ID}
	}
	return Principal{}
}

func (a Account) DisplayName() string {
	switch a.Kind {
	case KindCustomer:
		return a.Customer.Username
	case KindMerchant:
		return a.Merchant.Name
	}
	return ""
}

type CustomerInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
}

type MerchantInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Address  string `json:"address"`
}

type ProfileInput struct {
	Address string `json:"address"`
	Phone   string `json:"phone"`
}
