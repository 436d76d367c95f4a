// Package database provides the persistence layer for the library system.
//
// The Database struct owns the GORM connection and runs migrations. All
// entity-specific operations live in focused repository sub-packages:
//
//   - books: catalog records and their availability flag
//   - loans: borrow/return ledger with conditional status updates
//   - reservations: pending/approved/fulfilled request queue
//   - fines: recorded fine payments (payable fines are derived, not stored)
//   - users: account records
//   - announcements: admin announcements
//   - settings: key/value store for admin-editable policy
//   - audit: workflow audit trail
//
// Repositories take a *gorm.DB so that multi-table workflows can pass the
// transaction handle from gorm.DB.Transaction and commit atomically.
package database
