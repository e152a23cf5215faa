// Package catalogue implements the referential entities — currencies,
// wallets, actors, item-tags — their uniqueness rules, and the acyclic
// item-tag "contains" DAG. Grounded in spec.md §3/§4.3 and, for the tag DAG
// operations specifically, original_source/monee/src/backoffice/item_tags.
package catalogue

import "github.com/ocxide/monee/internal/id"

// Currency is a unit of account. Code is unique and normalised to upper case.
type Currency struct {
	ID     id.CurrencyID `json:"id" db:"id"`
	Name   string        `json:"name" db:"name"`
	Symbol string        `json:"symbol" db:"symbol"`
	Code   string        `json:"code" db:"code"`
}

// Wallet is an account a user owns. Name is unique.
type Wallet struct {
	ID          id.WalletID   `json:"id" db:"id"`
	CurrencyID  id.CurrencyID `json:"currency_id" db:"currency_id"`
	Name        string        `json:"name" db:"name"`
	Description string        `json:"description" db:"description"`
}

// ActorType classifies who an Actor represents.
type ActorType string

const (
	ActorNatural         ActorType = "natural"
	ActorBusiness        ActorType = "business"
	ActorFinancialEntity ActorType = "financial_entity"
)

// Actor is a counterparty: a person, business, or financial entity. Alias,
// when present, is unique.
type Actor struct {
	ID    id.ActorID `json:"id" db:"id"`
	Name  string     `json:"name" db:"name"`
	Type  ActorType  `json:"type" db:"type"`
	Alias *string    `json:"alias,omitempty" db:"alias"`
}

// ItemTag is a node in the "contains" DAG. Name is unique.
type ItemTag struct {
	ID   id.ItemTagID `json:"id" db:"id"`
	Name string       `json:"name" db:"name"`
}

// ItemTagNode is ItemTag plus the names of its immediate parents, for display.
type ItemTagNode struct {
	ItemTag
	ParentNames []string `json:"parent_names"`
}
