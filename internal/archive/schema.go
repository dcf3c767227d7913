package archive

// ReadingsTableSQL creates the readings table. One row per upload cadence.
const ReadingsTableSQL = `
	CREATE TABLE IF NOT EXISTS corrosion_readings (
		timestamp DateTime64(3),
		node String,
		temp_c Nullable(Float64),
		temp_f Nullable(Float64),
		humidity Nullable(Float64),
		dew_point_c Nullable(Float64),
		dew_point_f Nullable(Float64),
		pcb_c Nullable(Float64),
		corrosion_level UInt8,
		level_valid Bool,
		fan_on Bool
	) ENGINE = MergeTree()
	ORDER BY (node, timestamp)
	PARTITION BY toYYYYMM(timestamp)
`

// AllTables returns the schema statements in creation order.
func AllTables() []string {
	return []string{ReadingsTableSQL}
}
