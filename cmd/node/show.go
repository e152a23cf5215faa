package main

import (
	"fmt"

	"github.com/ocxide/monee/internal/id"
	"github.com/ocxide/monee/money"
)

// ShowCmd prints wallets, debts and loans with their monies (spec.md §6).
type ShowCmd struct{}

func (c *ShowCmd) Run(app *App) error {
	snap := app.nc.Snapshot.Get()

	fmt.Println(headingStyle.Render("wallets"))
	walletCount := 0
	snap.Wallets.Range(func(walletID id.WalletID, h money.Host[struct{}]) bool {
		walletCount++
		fmt.Printf("  %-4s %s\n", walletID, moneyStyle.Render(h.Money.Amount.String()+" "+h.Money.CurrencyID.String()))
		return true
	})
	if walletCount == 0 {
		fmt.Println("  (none)")
	}

	printDebts("debts (you owe)", snap.Debts)
	printDebts("loans (owed to you)", snap.Loans)
	return nil
}

func printDebts(title string, m *money.Map[id.DebtID, id.ActorID]) {
	fmt.Println(headingStyle.Render(title))
	count := 0
	m.Range(func(debtID id.DebtID, h money.Host[id.ActorID]) bool {
		count++
		fmt.Printf("  %-4s actor %-4s: %s\n", debtID, h.Data, moneyStyle.Render(h.Money.Amount.String()+" "+h.Money.CurrencyID.String()))
		return true
	})
	if count == 0 {
		fmt.Println("  (none)")
	}
}
