// internal/migration/runner.go
package migration

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// MigrationConfig migration ayarları
type MigrationConfig struct {
	TableName      string // Tracking tablosu adı
	MigrationsPath string // SQL dosyalarının klasörü
}

// DefaultConfig varsayılan ayarlar
func DefaultConfig() *MigrationConfig {
	return &MigrationConfig{
		TableName:      "schema_migrations",
		MigrationsPath: "./migrations",
	}
}

// Migration tek bir migration dosyasını temsil eder
type Migration struct {
	Version   int64
	Name      string
	UpPath    string
	Applied   bool
	AppliedAt *time.Time
}

// Result tek migration'ın uygulama sonucu
type Result struct {
	Version       int64
	Name          string
	Success       bool
	Error         string
	ExecutionTime time.Duration
}

// Runner migration işlemlerini yöneten ana yapı
type Runner struct {
	db     *sql.DB
	config *MigrationConfig
}

// NewRunner yeni migration runner oluşturur
func NewRunner(db *sql.DB, config *MigrationConfig) *Runner {
	if config == nil {
		config = DefaultConfig()
	}
	return &Runner{db: db, config: config}
}

// Initialize migration tracking tablosunu oluşturur
func (r *Runner) Initialize() error {
	createTableSQL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version BIGINT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`, r.config.TableName)

	if _, err := r.db.Exec(createTableSQL); err != nil {
		return fmt.Errorf("migration tracking tablosu oluşturulamadı: %w", err)
	}

	log.Info().
		Str("table", r.config.TableName).
		Str("path", r.config.MigrationsPath).
		Msg("Migration sistemi initialize edildi")

	return nil
}

// discover klasördeki migration dosyalarını bulur ve applied durumlarını işaretler
// Dosya adı formatı: <version>_<name>.up.sql
func (r *Runner) discover() ([]*Migration, error) {
	entries, err := os.ReadDir(r.config.MigrationsPath)
	if err != nil {
		return nil, fmt.Errorf("migration klasörü okunamadı: %w", err)
	}

	var migrations []*Migration
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".up.sql") {
			continue
		}

		base := strings.TrimSuffix(name, ".up.sql")
		parts := strings.SplitN(base, "_", 2)
		if len(parts) != 2 {
			log.Warn().Str("file", name).Msg("Geçersiz migration dosya adı, atlanıyor")
			continue
		}

		version, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			log.Warn().Str("file", name).Msg("Migration version parse edilemedi, atlanıyor")
			continue
		}

		migrations = append(migrations, &Migration{
			Version: version,
			Name:    parts[1],
			UpPath:  filepath.Join(r.config.MigrationsPath, name),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	// Applied durumlarını tracking tablosundan işaretle
	rows, err := r.db.Query(fmt.Sprintf(`SELECT version, applied_at FROM %s`, r.config.TableName))
	if err != nil {
		return nil, fmt.Errorf("migration durumu okunamadı: %w", err)
	}
	defer rows.Close()

	applied := make(map[int64]time.Time)
	for rows.Next() {
		var version int64
		var appliedAt time.Time
		if err := rows.Scan(&version, &appliedAt); err != nil {
			return nil, fmt.Errorf("migration durumu scan hatası: %w", err)
		}
		applied[version] = appliedAt
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, m := range migrations {
		if at, ok := applied[m.Version]; ok {
			m.Applied = true
			t := at
			m.AppliedAt = &t
		}
	}

	return migrations, nil
}

// GetStatus tüm migration'ları applied/pending durumlarıyla döner
func (r *Runner) GetStatus() ([]*Migration, error) {
	if err := r.Initialize(); err != nil {
		return nil, err
	}
	return r.discover()
}

// RunUp bekleyen migration'ları sırayla uygular
// Her migration kendi database transaction'ı içinde çalışır;
// biri başarısız olursa orada durur
func (r *Runner) RunUp() ([]*Result, error) {
	if err := r.Initialize(); err != nil {
		return nil, err
	}

	migrations, err := r.discover()
	if err != nil {
		return nil, err
	}

	var results []*Result
	for _, m := range migrations {
		if m.Applied {
			continue
		}

		result := r.apply(m)
		results = append(results, result)

		if !result.Success {
			break
		}
	}

	return results, nil
}

// apply tek migration'ı transaction içinde uygular ve kaydeder
func (r *Runner) apply(m *Migration) *Result {
	result := &Result{Version: m.Version, Name: m.Name}
	start := time.Now()

	content, err := os.ReadFile(m.UpPath)
	if err != nil {
		result.Error = fmt.Sprintf("migration dosyası okunamadı: %v", err)
		return result
	}

	tx, err := r.db.Begin()
	if err != nil {
		result.Error = fmt.Sprintf("transaction başlatılamadı: %v", err)
		return result
	}

	if _, err := tx.Exec(string(content)); err != nil {
		tx.Rollback()
		result.Error = fmt.Sprintf("migration SQL hatası: %v", err)
		return result
	}

	insertSQL := fmt.Sprintf(`INSERT INTO %s (version, name) VALUES ($1, $2)`, r.config.TableName)
	if _, err := tx.Exec(insertSQL, m.Version, m.Name); err != nil {
		tx.Rollback()
		result.Error = fmt.Sprintf("migration kaydı yazılamadı: %v", err)
		return result
	}

	if err := tx.Commit(); err != nil {
		result.Error = fmt.Sprintf("commit hatası: %v", err)
		return result
	}

	result.Success = true
	result.ExecutionTime = time.Since(start)

	log.Info().
		Int64("version", m.Version).
		Str("name", m.Name).
		Dur("duration", result.ExecutionTime).
		Msg("Migration uygulandı")

	return result
}
