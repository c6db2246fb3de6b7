package store

const postgresSchema = `
CREATE TABLE IF NOT EXISTS postal_codes (
	zip_code      TEXT NOT NULL,
	prefecture_id SMALLINT NOT NULL,
	city_id       TEXT NOT NULL,
	prefecture    TEXT NOT NULL,
	city          TEXT NOT NULL,
	town          TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (zip_code, prefecture_id, city, town)
);
CREATE INDEX IF NOT EXISTS idx_postal_codes_updated_at ON postal_codes (updated_at);

CREATE TABLE IF NOT EXISTS postal_codes_snapshots (
	data_version  TEXT NOT NULL,
	zip_code      TEXT NOT NULL,
	prefecture_id SMALLINT NOT NULL,
	city_id       TEXT NOT NULL,
	prefecture    TEXT NOT NULL,
	city          TEXT NOT NULL,
	town          TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL,
	snapshot_created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (data_version, zip_code, prefecture_id, city, town)
);
CREATE INDEX IF NOT EXISTS idx_postal_codes_snapshots_data_version ON postal_codes_snapshots (data_version);

CREATE TABLE IF NOT EXISTS data_update_audits (
	data_version     TEXT NOT NULL UNIQUE,
	database_type    TEXT NOT NULL,
	source_url       TEXT NOT NULL,
	run_started_at   TIMESTAMPTZ NOT NULL,
	run_finished_at  TIMESTAMPTZ NOT NULL,
	batch_timestamp  TIMESTAMPTZ NOT NULL,
	records_in_feed  BIGINT NOT NULL DEFAULT 0,
	inserted_count   BIGINT NOT NULL DEFAULT 0,
	updated_count    BIGINT NOT NULL DEFAULT 0,
	deleted_count    BIGINT NOT NULL DEFAULT 0,
	total_count      BIGINT NOT NULL DEFAULT 0,
	status           TEXT NOT NULL,
	error_message    TEXT,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_data_update_audits_created_at ON data_update_audits (created_at DESC);
`

const mysqlSchema = `
CREATE TABLE IF NOT EXISTS postal_codes (
	zip_code      VARCHAR(16) NOT NULL,
	prefecture_id SMALLINT NOT NULL,
	city_id       VARCHAR(16) NOT NULL,
	prefecture    VARCHAR(255) NOT NULL,
	city          VARCHAR(255) NOT NULL,
	town          VARCHAR(255) NOT NULL,
	created_at    DATETIME(3) NOT NULL,
	updated_at    DATETIME(3) NOT NULL,
	PRIMARY KEY (zip_code, prefecture_id, city, town),
	KEY idx_postal_codes_updated_at (updated_at)
) ENGINE=InnoDB;

CREATE TABLE IF NOT EXISTS postal_codes_snapshots (
	data_version  VARCHAR(24) NOT NULL,
	zip_code      VARCHAR(16) NOT NULL,
	prefecture_id SMALLINT NOT NULL,
	city_id       VARCHAR(16) NOT NULL,
	prefecture    VARCHAR(255) NOT NULL,
	city          VARCHAR(255) NOT NULL,
	town          VARCHAR(255) NOT NULL,
	created_at    DATETIME(3) NOT NULL,
	updated_at    DATETIME(3) NOT NULL,
	snapshot_created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	PRIMARY KEY (data_version, zip_code, prefecture_id, city, town),
	KEY idx_postal_codes_snapshots_data_version (data_version)
) ENGINE=InnoDB;

CREATE TABLE IF NOT EXISTS data_update_audits (
	data_version     VARCHAR(24) NOT NULL,
	database_type    VARCHAR(16) NOT NULL,
	source_url       VARCHAR(2048) NOT NULL,
	run_started_at   DATETIME(3) NOT NULL,
	run_finished_at  DATETIME(3) NOT NULL,
	batch_timestamp  DATETIME(3) NOT NULL,
	records_in_feed  BIGINT NOT NULL DEFAULT 0,
	inserted_count   BIGINT NOT NULL DEFAULT 0,
	updated_count    BIGINT NOT NULL DEFAULT 0,
	deleted_count    BIGINT NOT NULL DEFAULT 0,
	total_count      BIGINT NOT NULL DEFAULT 0,
	status           VARCHAR(16) NOT NULL,
	error_message    TEXT,
	created_at       DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	UNIQUE KEY idx_data_update_audits_data_version (data_version),
	KEY idx_data_update_audits_created_at (created_at)
) ENGINE=InnoDB;
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS postal_codes (
	zip_code      TEXT NOT NULL,
	prefecture_id INTEGER NOT NULL,
	city_id       TEXT NOT NULL,
	prefecture    TEXT NOT NULL,
	city          TEXT NOT NULL,
	town          TEXT NOT NULL,
	created_at    TEXT NOT NULL,
	updated_at    TEXT NOT NULL,
	PRIMARY KEY (zip_code, prefecture_id, city, town)
);
CREATE INDEX IF NOT EXISTS idx_postal_codes_updated_at ON postal_codes (updated_at);

CREATE TABLE IF NOT EXISTS postal_codes_snapshots (
	data_version  TEXT NOT NULL,
	zip_code      TEXT NOT NULL,
	prefecture_id INTEGER NOT NULL,
	city_id       TEXT NOT NULL,
	prefecture    TEXT NOT NULL,
	city          TEXT NOT NULL,
	town          TEXT NOT NULL,
	created_at    TEXT NOT NULL,
	updated_at    TEXT NOT NULL,
	snapshot_created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (data_version, zip_code, prefecture_id, city, town)
);
CREATE INDEX IF NOT EXISTS idx_postal_codes_snapshots_data_version ON postal_codes_snapshots (data_version);

CREATE TABLE IF NOT EXISTS data_update_audits (
	data_version     TEXT NOT NULL UNIQUE,
	database_type    TEXT NOT NULL,
	source_url       TEXT NOT NULL,
	run_started_at   TEXT NOT NULL,
	run_finished_at  TEXT NOT NULL,
	batch_timestamp  TEXT NOT NULL,
	records_in_feed  INTEGER NOT NULL DEFAULT 0,
	inserted_count   INTEGER NOT NULL DEFAULT 0,
	updated_count    INTEGER NOT NULL DEFAULT 0,
	deleted_count    INTEGER NOT NULL DEFAULT 0,
	total_count      INTEGER NOT NULL DEFAULT 0,
	status           TEXT NOT NULL,
	error_message    TEXT,
	created_at       TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_data_update_audits_created_at ON data_update_audits (created_at DESC);
`
