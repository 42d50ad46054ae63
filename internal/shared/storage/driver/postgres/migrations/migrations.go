// Package migrations 内嵌 PostgreSQL 迁移文件（goose 格式）
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
