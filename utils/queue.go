package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// VerificationQueueKey is the Redis list holding pending verification mail jobs.
const VerificationQueueKey = "queue:user_registration"

// VerificationJob is the fire-and-forget payload enqueued when a user registers.
type VerificationJob struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	VerifyURL string `json:"redirect_url"`
}

// EnqueueVerificationEmail pushes a job onto the registration queue.
// Delivery is at-least-once; the caller never waits for the mail itself.
func EnqueueVerificationEmail(job VerificationJob) error {
	rc := GetRedis()
	if rc == nil {
		return fmt.Errorf("redis not available")
	}
	b, err := json.Marshal(job)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return rc.LPush(ctx, VerificationQueueKey, b).Err()
}

// DequeueVerificationJob blocks up to timeout for the next job. redis.Nil
// surfaces as (nil, nil) so callers can poll in a loop.
func DequeueVerificationJob(ctx context.Context, timeout time.Duration) (*VerificationJob, error) {
	rc := GetRedis()
	if rc == nil {
		return nil, fmt.Errorf("redis not available")
	}
	res, err := rc.BRPop(ctx, timeout, VerificationQueueKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var job VerificationJob
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// StartVerificationWorker launches the background consumer that turns queued
// jobs into verification emails. Best-effort: a failed send is logged, not retried.
func StartVerificationWorker(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			job, err := DequeueVerificationJob(ctx, 5*time.Second)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				if Sugar != nil {
					Sugar.Warnf("verification queue read failed: %v", err)
				}
				time.Sleep(time.Second)
				continue
			}
			if job == nil {
				continue
			}
			body := fmt.Sprintf("Hello %s,\n\nPlease confirm your account by opening this link:\n%s\n", job.Name, job.VerifyURL)
			if err := SendMail(job.Email, "Confirm your account", body); err != nil {
				if Sugar != nil {
					Sugar.Warnf("verification mail to %s failed: %v", job.Email, err)
				}
			}
		}
	}()
}
