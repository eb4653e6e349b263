package queue

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Redis key layout. Jobs live as JSON blobs under itemKeyPrefix; the
// pending and processing sets hold job IDs scored by due time and lease
// deadline respectively, so "what is claimable" and "whose lease expired"
// are both single range queries.
const (
	itemKeyPrefix    = "jobs:item:"
	pendingSetKey    = "jobs:pending"
	processingSetKey = "jobs:processing"
	completedSetKey  = "jobs:completed"
	failedArchiveKey = "jobs:failed"
)

// claimScript atomically recovers expired leases and claims the earliest
// due pending job. Running both in one script means a job can never be
// claimed by two workers, and a crashed worker's job re-enters the pending
// set before anyone else observes it.
var claimScript = redis.NewScript(`
local pending = KEYS[1]
local processing = KEYS[2]
local prefix = ARGV[1]
local now = tonumber(ARGV[2])
local deadline = tonumber(ARGV[3])
local worker = ARGV[4]
local lockedUntil = ARGV[5]

local expired = redis.call('ZRANGEBYSCORE', processing, '-inf', now)
for _, id in ipairs(expired) do
	redis.call('ZREM', processing, id)
	local raw = redis.call('GET', prefix .. id)
	if raw then
		local job = cjson.decode(raw)
		job['status'] = 'pending'
		job['locked_until'] = nil
		job['locked_by'] = nil
		redis.call('SET', prefix .. id, cjson.encode(job))
		redis.call('ZADD', pending, now, id)
	end
end

local due = redis.call('ZRANGEBYSCORE', pending, '-inf', now, 'LIMIT', 0, 1)
if #due == 0 then
	return false
end
local id = due[1]
local raw = redis.call('GET', prefix .. id)
if not raw then
	redis.call('ZREM', pending, id)
	return false
end
local job = cjson.decode(raw)
job['status'] = 'processing'
job['locked_until'] = lockedUntil
job['locked_by'] = worker
raw = cjson.encode(job)
redis.call('SET', prefix .. id, raw)
redis.call('ZREM', pending, id)
redis.call('ZADD', processing, deadline, id)
return raw
`)

// RedisStorage is the durable queue backend. It implements
// EnqueuerRepository, WorkerRepository and StatusRepository.
type RedisStorage struct {
	client             redis.UniversalClient
	retryBackoff       time.Duration
	completedRetention time.Duration
	failedCap          int
}

// NewRedisStorage creates a Redis-backed queue storage.
func NewRedisStorage(client redis.UniversalClient, cfg Config) (*RedisStorage, error) {
	if client == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	rs := &RedisStorage{
		client:             client,
		retryBackoff:       cfg.RetryBackoff,
		completedRetention: cfg.CompletedRetention,
		failedCap:          cfg.FailedArchiveCap,
	}
	if rs.retryBackoff <= 0 {
		rs.retryBackoff = 3 * time.Second
	}
	if rs.completedRetention <= 0 {
		rs.completedRetention = 24 * time.Hour
	}
	if rs.failedCap <= 0 {
		rs.failedCap = 100
	}
	return rs, nil
}

// CreateJob implements EnqueuerRepository.
func (rs *RedisStorage) CreateJob(ctx context.Context, job *Job) error {
	if job == nil {
		return errors.New("job cannot be nil")
	}

	raw, err := json.Marshal(job)
	if err != nil {
		return err
	}

	pipe := rs.client.TxPipeline()
	pipe.SetNX(ctx, itemKeyPrefix+job.ID.String(), raw, 0)
	pipe.ZAdd(ctx, pendingSetKey, redis.Z{
		Score:  float64(job.ScheduledAt.UnixMilli()),
		Member: job.ID.String(),
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Join(ErrStorageUnavailable, err)
	}
	return nil
}

// ClaimJob implements WorkerRepository.
func (rs *RedisStorage) ClaimJob(ctx context.Context, workerID uuid.UUID, lease time.Duration) (*Job, error) {
	now := time.Now()
	lockedUntil := now.Add(lease)

	res, err := claimScript.Run(ctx, rs.client,
		[]string{pendingSetKey, processingSetKey},
		itemKeyPrefix,
		now.UnixMilli(),
		lockedUntil.UnixMilli(),
		workerID.String(),
		lockedUntil.Format(time.RFC3339Nano),
	).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoJobToClaim
		}
		return nil, errors.Join(ErrStorageUnavailable, err)
	}

	raw, ok := res.(string)
	if !ok || raw == "" {
		return nil, ErrNoJobToClaim
	}

	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// CompleteJob implements WorkerRepository. The job blob is kept with a TTL
// so recent history stays inspectable without growing forever.
func (rs *RedisStorage) CompleteJob(ctx context.Context, jobID uuid.UUID) error {
	job, err := rs.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status != JobStatusProcessing {
		return ErrJobNotProcessing
	}

	now := time.Now()
	job.Status = JobStatusCompleted
	job.ProcessedAt = &now
	job.LockedUntil = nil
	job.LockedBy = nil

	raw, err := json.Marshal(job)
	if err != nil {
		return err
	}

	pipe := rs.client.TxPipeline()
	pipe.Set(ctx, itemKeyPrefix+jobID.String(), raw, rs.completedRetention)
	pipe.ZRem(ctx, processingSetKey, jobID.String())
	pipe.ZAdd(ctx, completedSetKey, redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: jobID.String(),
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Join(ErrStorageUnavailable, err)
	}
	return nil
}

// FailJob implements WorkerRepository.
func (rs *RedisStorage) FailJob(ctx context.Context, jobID uuid.UUID, errorMsg string) (*Job, error) {
	job, err := rs.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != JobStatusProcessing {
		return nil, ErrJobNotProcessing
	}

	job.RetryCount++
	job.Error = &errorMsg
	job.LockedUntil = nil
	job.LockedBy = nil

	pipe := rs.client.TxPipeline()
	pipe.ZRem(ctx, processingSetKey, jobID.String())

	if job.RetryCount >= job.MaxRetries {
		job.Status = JobStatusFailed
	} else {
		job.Status = JobStatusPending
		job.ScheduledAt = time.Now().Add(rs.retryBackoff)
		pipe.ZAdd(ctx, pendingSetKey, redis.Z{
			Score:  float64(job.ScheduledAt.UnixMilli()),
			Member: jobID.String(),
		})
	}

	raw, err := json.Marshal(job)
	if err != nil {
		return nil, err
	}
	pipe.Set(ctx, itemKeyPrefix+jobID.String(), raw, 0)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}
	return job, nil
}

// ArchiveJob implements WorkerRepository. The job blob is replaced by a
// compact archive entry in a capped list.
func (rs *RedisStorage) ArchiveJob(ctx context.Context, jobID uuid.UUID) error {
	job, err := rs.GetJob(ctx, jobID)
	if err != nil {
		return err
	}

	entry := &FailedJob{
		JobID:      job.ID,
		Name:       job.Name,
		Payload:    job.Payload,
		RetryCount: job.RetryCount,
		FailedAt:   time.Now(),
		CreatedAt:  job.CreatedAt,
	}
	if job.Error != nil {
		entry.Error = *job.Error
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	pipe := rs.client.TxPipeline()
	pipe.LPush(ctx, failedArchiveKey, raw)
	pipe.LTrim(ctx, failedArchiveKey, 0, int64(rs.failedCap-1))
	pipe.Del(ctx, itemKeyPrefix+jobID.String())
	pipe.ZRem(ctx, pendingSetKey, jobID.String())
	pipe.ZRem(ctx, processingSetKey, jobID.String())
	pipe.ZRem(ctx, completedSetKey, jobID.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Join(ErrStorageUnavailable, err)
	}
	return nil
}

// ExtendLock implements WorkerRepository.
func (rs *RedisStorage) ExtendLock(ctx context.Context, jobID uuid.UUID, lease time.Duration) error {
	job, err := rs.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status != JobStatusProcessing {
		return ErrJobNotProcessing
	}

	lockedUntil := time.Now().Add(lease)
	job.LockedUntil = &lockedUntil

	raw, err := json.Marshal(job)
	if err != nil {
		return err
	}

	pipe := rs.client.TxPipeline()
	pipe.Set(ctx, itemKeyPrefix+jobID.String(), raw, 0)
	pipe.ZAdd(ctx, processingSetKey, redis.Z{
		Score:  float64(lockedUntil.UnixMilli()),
		Member: jobID.String(),
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Join(ErrStorageUnavailable, err)
	}
	return nil
}

// GetJob implements StatusRepository.
func (rs *RedisStorage) GetJob(ctx context.Context, jobID uuid.UUID) (*Job, error) {
	raw, err := rs.client.Get(ctx, itemKeyPrefix+jobID.String()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrJobNotFound
		}
		return nil, errors.Join(ErrStorageUnavailable, err)
	}

	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// CountByStatus implements StatusRepository. Completed entries older than
// the retention window are dropped from the index on the way through; their
// blobs expire on their own.
func (rs *RedisStorage) CountByStatus(ctx context.Context) (map[JobStatus]int, error) {
	cutoff := time.Now().Add(-rs.completedRetention).UnixMilli()

	pipe := rs.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, completedSetKey, "-inf", strconv.FormatInt(cutoff, 10))
	pending := pipe.ZCard(ctx, pendingSetKey)
	processing := pipe.ZCard(ctx, processingSetKey)
	completed := pipe.ZCard(ctx, completedSetKey)
	failed := pipe.LLen(ctx, failedArchiveKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}

	return map[JobStatus]int{
		JobStatusPending:    int(pending.Val()),
		JobStatusProcessing: int(processing.Val()),
		JobStatusCompleted:  int(completed.Val()),
		JobStatusFailed:     int(failed.Val()),
	}, nil
}

// ListFailed implements StatusRepository, newest first.
func (rs *RedisStorage) ListFailed(ctx context.Context, limit int) ([]*FailedJob, error) {
	if limit <= 0 || limit > rs.failedCap {
		limit = rs.failedCap
	}

	raws, err := rs.client.LRange(ctx, failedArchiveKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, errors.Join(ErrStorageUnavailable, err)
	}

	out := make([]*FailedJob, 0, len(raws))
	for _, raw := range raws {
		var entry FailedJob
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			return nil, err
		}
		out = append(out, &entry)
	}
	return out, nil
}
