package alert

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/paraxiom/fleet-monitor/pkg/types"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const TableAlerts = "fleet_alerts"

var schema = `
CREATE TABLE IF NOT EXISTS ` + TableAlerts + ` (
	id         bigserial PRIMARY KEY,
	inserted_at timestamp NOT NULL DEFAULT now(),
	level      text NOT NULL,
	message    text NOT NULL,
	occurred_at timestamp NOT NULL
);
`

type alertEntry struct {
	Level      string    `db:"level"`
	Message    string    `db:"message"`
	OccurredAt time.Time `db:"occurred_at"`
}

// PostgresSink records alert events in a Postgres table, for deployments
// where a flat file on the monitoring host is not durable enough.
type PostgresSink struct {
	DB *sqlx.DB

	nstmtInsertAlert *sqlx.NamedStmt

	logger *zap.SugaredLogger
}

func NewPostgresSink(dsn string, zapLogger *zap.Logger) (*PostgresSink, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "could not connect to alert database")
	}

	db.DB.SetMaxOpenConns(10)
	db.DB.SetMaxIdleConns(2)

	if _, err := db.Exec(schema); err != nil {
		return nil, errors.Wrap(err, "could not apply alert schema")
	}

	sink := &PostgresSink{DB: db, logger: zapLogger.Sugar()}

	query := `INSERT INTO ` + TableAlerts + `
	(level, message, occurred_at) VALUES
	(:level, :message, :occurred_at)
	RETURNING id`
	sink.nstmtInsertAlert, err = db.PrepareNamed(query)
	if err != nil {
		return nil, errors.Wrap(err, "could not prepare alert insert")
	}

	return sink, nil
}

func (s *PostgresSink) Record(ctx context.Context, event types.AlertEvent) error {
	entry := alertEntry{
		Level:      string(event.Level),
		Message:    event.Message,
		OccurredAt: event.Timestamp.UTC(),
	}
	var id int64
	if err := s.nstmtInsertAlert.QueryRow(entry).Scan(&id); err != nil {
		return errors.Wrap(err, "could not insert alert")
	}
	s.logger.Debugw("saved alert to db", "id", id, "level", event.Level)
	return nil
}

func (s *PostgresSink) Close() error {
	return s.DB.Close()
}
