// Package mongodb backs the append-only report_runs audit collection:
// one document per report-generation attempt, kept outside the
// relational store since it is written once and never transactionally
// joined against.
package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ecoci/ecoci/pkg/mmongo"
)

const collectionName = "report_runs"

// ReportRun is one attempt at rendering an experiment's report,
// successful or not.
type ReportRun struct {
	Experiment   string    `bson:"experiment"`
	StartedAt    time.Time `bson:"started_at"`
	FinishedAt   time.Time `bson:"finished_at"`
	Outcome      string    `bson:"outcome"` // "completed" or "report-failed"
	Error        string    `bson:"error,omitempty"`
	ArchiveBytes int64     `bson:"archive_bytes,omitempty"`
	Attempt      int       `bson:"attempt"`
}

// ReportRunLog appends ReportRun documents; it never updates or
// deletes one.
type ReportRunLog struct {
	conn *mmongo.Connection
}

func NewReportRunLog(conn *mmongo.Connection) *ReportRunLog {
	return &ReportRunLog{conn: conn}
}

func (l *ReportRunLog) collection(ctx context.Context) (*mongo.Collection, error) {
	db, err := l.conn.GetDatabase(ctx)
	if err != nil {
		return nil, err
	}

	return db.Collection(collectionName), nil
}

// Record appends run as a new document.
func (l *ReportRunLog) Record(ctx context.Context, run ReportRun) error {
	coll, err := l.collection(ctx)
	if err != nil {
		return err
	}

	_, err = coll.InsertOne(ctx, run)

	return err
}

// ListForExperiment returns every recorded attempt for name, most
// recent first, for operator-facing diagnostics on repeated
// report-failed retries.
func (l *ReportRunLog) ListForExperiment(ctx context.Context, name string) ([]ReportRun, error) {
	coll, err := l.collection(ctx)
	if err != nil {
		return nil, err
	}

	cursor, err := coll.Find(ctx, bson.M{"experiment": name}, options.Find().SetSort(bson.D{{Key: "started_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var runs []ReportRun
	if err := cursor.All(ctx, &runs); err != nil {
		return nil, err
	}

	return runs, nil
}
