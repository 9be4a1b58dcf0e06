// Package repository implements data access over MySQL: users and their
// refresh tokens, the service catalog, and appointments with their
// selected services. Repositories return database/sql errors directly;
// sql.ErrNoRows doubles as the not-found signal, and owner-scoped
// queries return it for foreign rows too so handlers can answer 404
// without leaking existence.
package repository
