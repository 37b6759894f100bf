package migrations

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Run creates the warehouse schema. Statements are idempotent; the legacy
// stock table is dropped because on-hand quantity lives on medicines now.
func Run(db *sqlx.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS suppliers (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL UNIQUE,
            contact_info TEXT,
            email TEXT,
            phone TEXT,
            address TEXT,
            status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'inactive')),
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE TABLE IF NOT EXISTS medicines (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            description TEXT,
            quantity INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
            price REAL NOT NULL CHECK (price >= 0),
            supplier_id INTEGER,
            batch_number TEXT,
            expiry_date DATE,
            minimum_stock INTEGER NOT NULL DEFAULT 10,
            maximum_stock INTEGER NOT NULL DEFAULT 1000,
            location TEXT,
            category TEXT,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            FOREIGN KEY (supplier_id) REFERENCES suppliers(id),
            CHECK (maximum_stock >= minimum_stock)
        );`,
		`CREATE TABLE IF NOT EXISTS users (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            username TEXT NOT NULL UNIQUE,
            password_hash TEXT NOT NULL,
            salt TEXT NOT NULL,
            role TEXT NOT NULL CHECK (role IN ('admin', 'warehouse_worker', 'accountant')),
            full_name TEXT,
            email TEXT,
            is_active BOOLEAN NOT NULL DEFAULT 1,
            last_login TIMESTAMP,
            failed_login_attempts INTEGER NOT NULL DEFAULT 0,
            account_locked_until TIMESTAMP,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE TABLE IF NOT EXISTS transactions (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            medicine_id INTEGER NOT NULL,
            transaction_type TEXT NOT NULL CHECK (transaction_type IN ('incoming', 'outgoing')),
            quantity INTEGER NOT NULL CHECK (quantity > 0),
            unit_price REAL,
            total_amount REAL,
            batch_number TEXT,
            expiry_date DATE,
            reason TEXT,
            date TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            user_id INTEGER NOT NULL,
            FOREIGN KEY (medicine_id) REFERENCES medicines(id),
            FOREIGN KEY (user_id) REFERENCES users(id)
        );`,
		`CREATE TABLE IF NOT EXISTS stock_alerts (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            medicine_id INTEGER NOT NULL,
            alert_type TEXT NOT NULL CHECK (alert_type IN ('low_stock', 'expiry_warning', 'expired')),
            message TEXT NOT NULL,
            is_resolved BOOLEAN NOT NULL DEFAULT 0,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            resolved_at TIMESTAMP,
            FOREIGN KEY (medicine_id) REFERENCES medicines(id)
        );`,
		`CREATE TABLE IF NOT EXISTS audit_log (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            table_name TEXT NOT NULL,
            record_id INTEGER NOT NULL,
            action TEXT NOT NULL CHECK (action IN ('INSERT', 'UPDATE', 'DELETE')),
            old_values TEXT,
            new_values TEXT,
            user_id INTEGER,
            timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            FOREIGN KEY (user_id) REFERENCES users(id)
        );`,
		`DROP TABLE IF EXISTS stock;`,
		`CREATE INDEX IF NOT EXISTS idx_medicines_name ON medicines(name);`,
		`CREATE INDEX IF NOT EXISTS idx_medicines_supplier ON medicines(supplier_id);`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_medicine ON transactions(medicine_id);`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_user ON transactions(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);`,
		`CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);`,
		// One unresolved alert per medicine and type; backs INSERT OR IGNORE.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_stock_alerts_open
            ON stock_alerts(medicine_id, alert_type) WHERE is_resolved = 0;`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
