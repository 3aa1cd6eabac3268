package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"

	"listforge/internal/store"
	"listforge/internal/tasks"
)

// Pipeline is the slice of the pipeline service the task handlers use.
type Pipeline interface {
	EnqueueScan(ctx context.Context, jobs store.JobClient) (int, error)
	ProcessFolderByPath(ctx context.Context, folderPath string) (string, error)
}

// Deps holds what the task handlers need.
type Deps struct {
	Pipeline  Pipeline
	JobClient store.JobClient
	Jobs      store.JobStore
}

// RegisterHandlers wires the pipeline task handlers onto the mux.
func RegisterHandlers(mux *asynq.ServeMux, deps Deps) {
	mux.HandleFunc(tasks.TypeScanFolders, HandleScanFolders(deps))
	mux.HandleFunc(tasks.TypeProcessProduct, HandleProcessProduct(deps))
}

// HandleScanFolders lists unprocessed folders and fans out one product task
// per folder.
func HandleScanFolders(deps Deps) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload struct {
			JobID   string `json:"job_id"`
			Trigger string `json:"trigger"`
		}
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("decode scan payload: %w", err)
		}

		enqueued, err := deps.Pipeline.EnqueueScan(ctx, deps.JobClient)
		if err != nil {
			markJob(ctx, deps.Jobs, payload.JobID, "failed")
			return fmt.Errorf("scan folders (trigger=%s): %w", payload.Trigger, err)
		}
		markJob(ctx, deps.Jobs, payload.JobID, "completed")
		log.Infof("Scan (trigger=%s) enqueued %d product jobs", payload.Trigger, enqueued)
		return nil
	}
}

// HandleProcessProduct runs the full listing pipeline for one folder.
func HandleProcessProduct(deps Deps) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload struct {
			JobID      string `json:"job_id"`
			FolderPath string `json:"folder_path"`
		}
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("decode product payload: %w", err)
		}
		if payload.FolderPath == "" {
			return fmt.Errorf("product task has empty folder_path")
		}

		status, err := deps.Pipeline.ProcessFolderByPath(ctx, payload.FolderPath)
		if err != nil {
			markJob(ctx, deps.Jobs, payload.JobID, "failed")
			return fmt.Errorf("process folder %q: %w", payload.FolderPath, err)
		}
		markJob(ctx, deps.Jobs, payload.JobID, "completed")
		log.Infof("Folder %q finished with status %q", payload.FolderPath, status)
		return nil
	}
}

// markJob updates the recorded job row; the task outcome never depends on
// the bookkeeping write.
func markJob(ctx context.Context, jobs store.JobStore, jobID, status string) {
	if jobs == nil || jobID == "" {
		return
	}
	id, err := uuid.Parse(jobID)
	if err != nil {
		log.Errorf("Invalid job ID %q in task payload: %v", jobID, err)
		return
	}
	if err := jobs.UpdateJobStatus(ctx, id, status); err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Errorf("Failed to mark job %s %s: %v", jobID, status, err)
	}
}
