// Package models defines the stored records of splitledger.
//
// # Records
//
//   - User: an account known to the identity collaborator
//   - Expense: a monetary event paid by one user, split into Split entries
//   - Settlement: a direct repayment between two users
//   - Group: a fixed set of members sharing expenses
//
// # Conventions
//
//  1. Relationships are ID strings, never pointers.
//  2. An empty GroupID means the record belongs to the 1-to-1 relationship between users.
//  3. Amounts are decimal.Decimal in the major currency unit; the currency itself is a
//     deployment setting, not part of the record.
//  4. Records are owned by the storage layer. The ledger engine only reads them.
package models
