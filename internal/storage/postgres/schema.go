package postgres

// schemaStatements creates the extraction run and golden record tables.
// Statements are idempotent so migration can run on every startup.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS extraction_runs (
		id                   SERIAL PRIMARY KEY,
		started_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
		finished_at          TIMESTAMPTZ,
		pdf_count            INTEGER,
		golden_records_count INTEGER,
		total_cost           DOUBLE PRECISION,
		status               VARCHAR(20) NOT NULL DEFAULT 'running',
		error_message        TEXT,
		metadata             JSONB
	)`,

	`CREATE TABLE IF NOT EXISTS golden_records (
		id            SERIAL PRIMARY KEY,
		run_id        INTEGER REFERENCES extraction_runs(id),
		product_name  TEXT NOT NULL,
		brand         VARCHAR(200),
		region        VARCHAR(10) NOT NULL DEFAULT 'GLOBAL',
		doc_language  VARCHAR(5),
		revision_date VARCHAR(20),
		document_type VARCHAR(10),
		version       INTEGER NOT NULL DEFAULT 1,
		is_latest     BOOLEAN NOT NULL DEFAULT true,
		golden_record JSONB NOT NULL,
		source_files  TEXT[],
		source_count  INTEGER,
		missing_count INTEGER,
		completeness  DOUBLE PRECISION,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_golden_records_run ON golden_records (run_id)`,
	`CREATE INDEX IF NOT EXISTS idx_golden_records_product ON golden_records (product_name)`,
	`CREATE INDEX IF NOT EXISTS idx_golden_records_brand ON golden_records (brand)`,
	`CREATE INDEX IF NOT EXISTS idx_golden_records_data ON golden_records USING GIN (golden_record)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS uq_golden_records_run_product_region
		ON golden_records (run_id, product_name, region)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_golden_records_product_region_version
		ON golden_records (product_name, region, version)`,
	`CREATE INDEX IF NOT EXISTS idx_golden_records_latest
		ON golden_records (product_name, region) WHERE is_latest = true`,
}
