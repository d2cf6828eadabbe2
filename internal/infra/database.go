package infra

import (
	"fmt"
	"strings"

	"orcamentos/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ehSQLite reports whether dsn names a SQLite database (local runs and tests)
// rather than a PostgreSQL connection string.
func ehSQLite(dsn string) bool {
	return dsn == ":memory:" || strings.HasPrefix(dsn, "file:")
}

// NewDatabase opens the database and migrates the schema. PostgreSQL is the
// production backend; "file:" and ":memory:" DSNs open SQLite.
func NewDatabase(dsn string) (*gorm.DB, error) {
	dialector := postgres.Open(dsn)
	if ehSQLite(dsn) {
		dialector = sqlite.Open(dsn)
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if ehSQLite(dsn) {
		// one connection keeps a :memory: database alive and serializes writers
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
	}

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Modelos lists every persisted model in dependency order.
func Modelos() []interface{} {
	return []interface{}{
		&model.Usuario{},
		&model.Cliente{},
		&model.Produto{},
		&model.Tecido{},
		&model.Orcamento{},
		&model.ItemOrcamento{},
		&model.Estampa{},
	}
}

// RunMigrations creates / updates all tables and then applies the index
// patches AutoMigrate cannot express. Safe to run on every start.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(Modelos()...); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL. Statements use IF NOT EXISTS and
// plain SQL so they also run on SQLite in tests.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// items are always read in user order within one quotation
		`CREATE INDEX IF NOT EXISTS idx_itens_orcamento_ordem ON itens_orcamento (orcamento_id, posicao)`,
		`CREATE INDEX IF NOT EXISTS idx_estampas_ordem ON estampas (item_id, ordem)`,
		`CREATE INDEX IF NOT EXISTS idx_tecidos_ordem ON tecidos (produto_id, posicao)`,
	}
	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
