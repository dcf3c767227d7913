// Package archive stores upload-cadence records in ClickHouse.
package archive

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/sweeney/corrosion-monitor/internal/logic"
)

// Archiver persists one record per upload cadence.
type Archiver interface {
	Save(ctx context.Context, r Record) error
	Close() error
}

// Record is one archived reading. Nil pointers are stored as NULL.
type Record struct {
	Timestamp   time.Time
	Node        string
	TempC       *float64
	TempF       *float64
	HumidityPct *float64
	DewPointC   *float64
	DewPointF   *float64
	PCBC        *float64
	Level       uint8
	LevelValid  bool
	FanOn       bool
}

// NewRecord builds a Record from the monitor's cached values.
func NewRecord(ts time.Time, node string, r logic.Reading, pcbC logic.NullFloat, fanOn bool) Record {
	return Record{
		Timestamp:   ts,
		Node:        node,
		TempC:       nullable(r.TempC),
		TempF:       nullable(r.TempF),
		HumidityPct: nullable(r.HumidityPct),
		DewPointC:   nullable(r.DewPointC),
		DewPointF:   nullable(r.DewPointF),
		PCBC:        nullable(pcbC),
		Level:       uint8(r.Level),
		LevelValid:  r.LevelValid,
		FanOn:       fanOn,
	}
}

func nullable(n logic.NullFloat) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

// Options configures the ClickHouse connection.
type Options struct {
	Addr     string
	Database string
	Username string
	Password string
}

// Store writes records to ClickHouse.
type Store struct {
	conn driver.Conn
}

// Open connects, pings and creates the schema.
func Open(ctx context.Context, opts Options) (*Store, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{opts.Addr},
		Auth: clickhouse.Auth{
			Database: opts.Database,
			Username: opts.Username,
			Password: opts.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout: 5 * time.Second,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("archive: connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("archive: ping ClickHouse: %w", err)
	}
	log.Printf("archive: connected to ClickHouse at %s", opts.Addr)

	s := &Store{conn: conn}
	if err := s.InitSchema(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// InitSchema creates the tables if they don't exist.
func (s *Store) InitSchema(ctx context.Context) error {
	for _, stmt := range AllTables() {
		if err := s.conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("archive: create table: %w", err)
		}
	}
	return nil
}

// Save inserts one record.
func (s *Store) Save(ctx context.Context, r Record) error {
	const query = `
		INSERT INTO corrosion_readings (timestamp, node, temp_c, temp_f, humidity,
			dew_point_c, dew_point_f, pcb_c, corrosion_level, level_valid, fan_on)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	err := s.conn.Exec(ctx, query,
		r.Timestamp,
		r.Node,
		r.TempC,
		r.TempF,
		r.HumidityPct,
		r.DewPointC,
		r.DewPointF,
		r.PCBC,
		r.Level,
		r.LevelValid,
		r.FanOn,
	)
	if err != nil {
		return fmt.Errorf("archive: insert reading: %w", err)
	}
	return nil
}

// Close closes the connection.
func (s *Store) Close() error {
	return s.conn.Close()
}
