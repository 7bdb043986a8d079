package repository

import (
	"context"
	"database/sql"
)

// BankAccountRepo handles linked bank accounts.
type BankAccountRepo struct {
	db *sql.DB
}

func NewBankAccountRepo(db *sql.DB) *BankAccountRepo {
	return &BankAccountRepo{db: db}
}

// Insert stores a and returns its sequence number.
func (r *BankAccountRepo) Insert(ctx context.Context, a BankAccount) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
	INSERT INTO bank_accounts(
	 id, plaid_account_id, bank_name, routing_number, account_number, mask, is_savings, secret_ref, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP);
	`, a.ID, a.PlaidAccountID, a.BankName, a.RoutingNumber, a.AccountNumber, a.Mask, a.IsSavings, a.SecretRef)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *BankAccountRepo) List(ctx context.Context) ([]BankAccount, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT rowid, id, plaid_account_id, bank_name, routing_number, account_number, mask, is_savings, secret_ref, created_at FROM bank_accounts ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []BankAccount
	for rows.Next() {
		a, err := scanBankAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *BankAccountRepo) Get(ctx context.Context, id string) (*BankAccount, error) {
	row := r.db.QueryRowContext(ctx, `SELECT rowid, id, plaid_account_id, bank_name, routing_number, account_number, mask, is_savings, secret_ref, created_at FROM bank_accounts WHERE id = ?`, id)
	a, err := scanBankAccount(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanBankAccount(row scanner) (BankAccount, error) {
	var a BankAccount
	var secret sql.NullString
	if err := row.Scan(&a.Seq, &a.ID, &a.PlaidAccountID, &a.BankName, &a.RoutingNumber, &a.AccountNumber,
		&a.Mask, &a.IsSavings, &secret, &a.CreatedAt); err != nil {
		return BankAccount{}, err
	}
	if secret.Valid {
		a.SecretRef = &secret.String
	}
	return a, nil
}
