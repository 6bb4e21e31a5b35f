// Package migration upgrades profile data written by older versions.
//
// A Migration is a table entry with plain function fields. The Migrator
// walks the table in order and asks a Decider what to do with every
// migration that can run. Migrations the user chose to ignore are remembered
// in migrations.toml inside the profile directory and not offered again.
package migration
