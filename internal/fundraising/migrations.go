package fundraising

import "embed"

// Migrations holds the schema for Repository
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations that holds the files
const MigrationsDir = "migrations"
