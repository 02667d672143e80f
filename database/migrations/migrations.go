// Package migrations provisions the remote row-store tables the mirror
// reads. Importing it registers every migration.
package migrations
