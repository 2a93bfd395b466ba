// Package sqlite keeps chat sessions in a SQLite database at
// ~/.ragchat/data/ragchat.db, using the pure Go modernc.org/sqlite driver.
//
// Migrations are the NNN_name.up.sql files in migrations/. The applied
// version is recorded in PRAGMA user_version.
//
// Messages carry a dense 0-based position within their session. Deleting a
// message shifts the later ones down.
package sqlite
