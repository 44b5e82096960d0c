// Package db owns schema bootstrap for the service's three tables.
package db

import "database/sql"

var ddl = []string{
	`CREATE TABLE IF NOT EXISTS users (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(255) NOT NULL DEFAULT '',
	email VARCHAR(255) NOT NULL,
	phone VARCHAR(100) NOT NULL DEFAULT '',
	password_hash VARCHAR(255) NOT NULL,
	role VARCHAR(50) NOT NULL DEFAULT 'user',
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_email (email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

	`CREATE TABLE IF NOT EXISTS trips (
	id VARCHAR(64) PRIMARY KEY,
	source VARCHAR(255) NOT NULL DEFAULT '',
	destination VARCHAR(255) NOT NULL DEFAULT '',
	source_station_id VARCHAR(64) NOT NULL DEFAULT '',
	source_station_name VARCHAR(255) NOT NULL DEFAULT '',
	source_station_address VARCHAR(255) NOT NULL DEFAULT '',
	destination_station_id VARCHAR(64) NOT NULL DEFAULT '',
	destination_station_name VARCHAR(255) NOT NULL DEFAULT '',
	destination_station_address VARCHAR(255) NOT NULL DEFAULT '',
	departure_date VARCHAR(20) NOT NULL DEFAULT '',
	departure_time VARCHAR(20) NOT NULL DEFAULT '',
	duration_minutes INT NOT NULL DEFAULT 0,
	price BIGINT NOT NULL DEFAULT 0,
	bus_type VARCHAR(50) NOT NULL DEFAULT 'Standard',
	operator VARCHAR(255) NOT NULL DEFAULT '',
	operator_size VARCHAR(50) NOT NULL DEFAULT 'Small',
	amenities TEXT,
	rating DOUBLE NOT NULL DEFAULT 0,
	rank_score DOUBLE NOT NULL DEFAULT 0,
	total_seats INT NOT NULL DEFAULT 0,
	available_seats INT NOT NULL DEFAULT 0,
	active TINYINT(1) NOT NULL DEFAULT 1,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	KEY idx_destination_date (destination, departure_date)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

	`CREATE TABLE IF NOT EXISTS bookings (
	id VARCHAR(64) PRIMARY KEY,
	user_id BIGINT NOT NULL,
	trip_id VARCHAR(64) NOT NULL,
	seats TEXT NOT NULL,
	seat_count INT NOT NULL,
	status VARCHAR(20) NOT NULL DEFAULT 'confirmed',
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NULL DEFAULT NULL,
	KEY idx_user (user_id),
	KEY idx_trip_status (trip_id, status)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,
}

// EnsureSchema creates the tables when they do not exist yet.
func EnsureSchema(db *sql.DB) error {
	for _, stmt := range ddl {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
