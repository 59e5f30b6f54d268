package database

import (
	"database/sql"
	"fmt"

	"github.com/apex/log"
)

// Schema contains the database schema for the billboard service.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
    id VARCHAR(256) PRIMARY KEY,
    name VARCHAR(256) NOT NULL,
    email VARCHAR(256) NOT NULL,
    password_hash VARCHAR(256) NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    UNIQUE KEY unique_email (email)
);

CREATE TABLE IF NOT EXISTS reports (
    id BIGINT AUTO_INCREMENT PRIMARY KEY,
    user_id VARCHAR(256) NOT NULL,
    image_url VARCHAR(512) NOT NULL,
    is_compliant BOOLEAN NOT NULL DEFAULT FALSE,
    summary TEXT,
    location_details TEXT,
    status ENUM('Pending', 'Reported') NOT NULL DEFAULT 'Pending',
    latitude FLOAT NOT NULL DEFAULT 0,
    longitude FLOAT NOT NULL DEFAULT 0,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
    INDEX idx_user (user_id),
    INDEX idx_coords (latitude, longitude)
);

CREATE TABLE IF NOT EXISTS violations (
    id BIGINT AUTO_INCREMENT PRIMARY KEY,
    report_id BIGINT NOT NULL,
    violation_type ENUM('Placement', 'Content', 'Structural', 'Size', 'Authorization', 'Other') NOT NULL DEFAULT 'Other',
    severity ENUM('High', 'Medium', 'Low') NOT NULL DEFAULT 'Low',
    details TEXT,
    FOREIGN KEY (report_id) REFERENCES reports(id) ON DELETE CASCADE,
    INDEX idx_report (report_id)
);
`

// InitializeSchema creates the database tables if they do not exist.
func InitializeSchema(db *sql.DB) error {
	log.Info("Initializing database schema...")
	if _, err := db.Exec(Schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}
