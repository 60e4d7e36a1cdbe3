// internal/membership/worker.go
package membership

import (
	"context"
	"log"
	"time"
)

// enrollTimeout bounds a single enrollment, including all of its
// profile-source round trips.
const enrollTimeout = 30 * time.Second

// Worker serializes profile enrollments through a single goroutine so
// registration requests never block on the profile source and no two
// enrollments race the uniqueness check.
type Worker struct {
	service Service
	jobs    chan int64
}

// NewWorker creates an enrollment worker with the given queue depth.
func NewWorker(service Service, buffer int) *Worker {
	return &Worker{
		service: service,
		jobs:    make(chan int64, buffer),
	}
}

// Enqueue schedules a member for enrollment. It drops the job when the
// queue is full; the member stays registered and unenriched.
func (w *Worker) Enqueue(memberID int64) {
	select {
	case w.jobs <- memberID:
	default:
		log.Printf("enrollment queue full, skipping member %d", memberID)
	}
}

// Run processes enrollments until ctx is canceled. Enrollment failures
// are logged and never surfaced to the member.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case memberID := <-w.jobs:
			jobCtx, cancel := context.WithTimeout(ctx, enrollTimeout)
			if err := w.service.EnrollProfile(jobCtx, memberID); err != nil {
				log.Printf("enrollment failed for member %d: %v", memberID, err)
			}
			cancel()
		}
	}
}
