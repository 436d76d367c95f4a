package http

// This file documents the store interfaces consumed by HTTP controllers.
// Each controller defines its own narrow interface next to its handlers;
// the repositories under internal/database satisfy them directly.
//
// CatalogStore (catalog.go):
//   - Book CRUD and catalog listing/search
//   - Delete refuses books with an active loan
//
// LoanStore (loans.go):
//   - Member and staff loan listings
//   - Mutations go through loans.Service, never the store
//
// ReservationStore (reservations.go):
//   - Member reservation list and the staff pending queue
//   - Mutations go through reservations.Service
//
// FineStore (fines.go):
//   - Recorded-fine listing for the staff view
//   - Derivation and settlement go through fines.Service
//
// AnnouncementStore (announcements.go):
//   - Announcement CRUD, publish flag, published listing
//
// UserStore (users.go):
//   - Account listing, role changes, deactivation
//   - Account creation goes through auth.Service for password handling
//
// Controllers only depend on the methods they actually call, which keeps
// handler tests small: a test can hand a controller the real repository
// over a throwaway SQLite file.
