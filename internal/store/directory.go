package store

import (
	"context"
	"fmt"

	"github.com/emperorhan/wallet-balance-sync/internal/domain/model"
)

// Directory is an in-memory AccountReader over the wallet file's accounts.
// The account set is fixed at construction; the daemon reloads by restart.
type Directory struct {
	order    []string
	accounts map[string]model.Account
}

func NewDirectory(accounts []model.Account) *Directory {
	d := &Directory{
		order:    make([]string, 0, len(accounts)),
		accounts: make(map[string]model.Account, len(accounts)),
	}
	for _, account := range accounts {
		if _, ok := d.accounts[account.ID]; ok {
			continue
		}
		d.order = append(d.order, account.ID)
		d.accounts[account.ID] = account
	}
	return d
}

func (d *Directory) GetAccount(_ context.Context, accountID string) (model.Account, error) {
	account, ok := d.accounts[accountID]
	if !ok {
		return model.Account{}, fmt.Errorf("account %s not found", accountID)
	}
	return account, nil
}

func (d *Directory) GetAccounts(_ context.Context, accountIDs []string) ([]model.Account, error) {
	out := make([]model.Account, 0, len(accountIDs))
	for _, id := range accountIDs {
		if account, ok := d.accounts[id]; ok {
			out = append(out, account)
		}
	}
	return out, nil
}

// AccountIDs returns every known account id in wallet-file order.
func (d *Directory) AccountIDs() []string {
	return append([]string(nil), d.order...)
}

// AccountIDsByWallet returns the ids of a wallet's accounts in file order.
func (d *Directory) AccountIDsByWallet(walletID string) []string {
	out := make([]string, 0, len(d.order))
	for _, id := range d.order {
		if d.accounts[id].WalletID == walletID {
			out = append(out, id)
		}
	}
	return out
}
