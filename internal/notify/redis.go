package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"jobmate/aggregator-service/internal/ingest"
)

// EventJobsIngested is the channel and event type published after a batch.
const EventJobsIngested = "EVENT_JOBS_INGESTED"

// RedisPublisher publishes EVENT_JOBS_INGESTED on a Redis channel.
type RedisPublisher struct {
	rdb *redis.Client
}

// NewRedisPublisher returns a publisher on rdb.
func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

func (p *RedisPublisher) Notify(ctx context.Context, report ingest.BatchReport) error {
	event, err := ingestedEvent(report)
	if err != nil {
		return err
	}
	if err := p.rdb.Publish(ctx, EventJobsIngested, event).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", EventJobsIngested, err)
	}
	return nil
}

func ingestedEvent(report ingest.BatchReport) ([]byte, error) {
	ids := make([]int64, 0, len(report.StoredJobs))
	for _, j := range report.StoredJobs {
		ids = append(ids, j.ID)
	}
	event, err := json.Marshal(map[string]any{
		"type":       EventJobsIngested,
		"runId":      report.RunID,
		"received":   report.Received,
		"stored":     report.Stored,
		"duplicates": report.Duplicates + report.InBatchDupes,
		"filtered":   report.Filtered(),
		"failed":     report.Failed,
		"jobIds":     ids,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", EventJobsIngested, err)
	}
	return event, nil
}
