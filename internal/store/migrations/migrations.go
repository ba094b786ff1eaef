// Package migrations はgoose用のマイグレーションSQLを埋め込みで提供します。
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
