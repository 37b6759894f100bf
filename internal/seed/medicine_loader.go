package seed

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

// LoadCatalog ingests a CSV medicine catalog into an empty medicines table.
// Expected columns: name, description, price, category, minimum_stock,
// maximum_stock. A populated table is left alone; seeding is a bootstrap
// convenience, not a sync.
func LoadCatalog(db *sqlx.DB, csvPath string, log zerolog.Logger) {
	if csvPath == "" {
		return
	}

	var count int64
	if err := db.Get(&count, `SELECT COUNT(*) FROM medicines`); err != nil {
		log.Error().Err(err).Msg("unable to check medicine catalog")
		return
	}
	if count > 0 {
		return
	}

	file, err := os.Open(csvPath)
	if err != nil {
		log.Warn().Err(err).Str("path", csvPath).Msg("unable to open medicine catalog")
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	// Skip header
	if _, err := reader.Read(); err != nil {
		log.Warn().Err(err).Msg("unable to read catalog header")
		return
	}

	tx, err := db.Beginx()
	if err != nil {
		log.Error().Err(err).Msg("unable to start catalog transaction")
		return
	}
	stmt, err := tx.Preparex(`
        INSERT INTO medicines (name, description, price, category, minimum_stock, maximum_stock)
        VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		log.Error().Err(err).Msg("unable to prepare catalog insert")
		_ = tx.Rollback()
		return
	}
	defer stmt.Close()

	rows := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Warn().Err(err).Msg("unable to read catalog row")
			continue
		}
		if len(record) < 6 {
			continue
		}
		name := strings.TrimSpace(record[0])
		if name == "" {
			continue
		}
		description := strings.TrimSpace(record[1])
		price, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
		if err != nil || price < 0 {
			log.Warn().Str("name", name).Msg("skipping catalog row with bad price")
			continue
		}
		category := strings.TrimSpace(record[3])
		minStock, _ := strconv.ParseInt(strings.TrimSpace(record[4]), 10, 64)
		maxStock, _ := strconv.ParseInt(strings.TrimSpace(record[5]), 10, 64)
		if maxStock < minStock {
			maxStock = minStock
		}

		if _, err := stmt.Exec(name, description, price, category, minStock, maxStock); err != nil {
			log.Warn().Err(err).Str("name", name).Msg("unable to insert catalog medicine")
		} else {
			rows++
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error().Err(err).Msg("unable to commit medicine catalog")
		return
	}
	log.Info().Int("rows", rows).Msg("seeded medicine catalog")
}
