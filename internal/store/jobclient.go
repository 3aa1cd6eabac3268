package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"

	"listforge/internal/tasks"
)

// AsynqJobClient enqueues pipeline tasks and records them to the JobStore.
var _ JobClient = (*AsynqJobClient)(nil)

type AsynqJobClient struct {
	client   *asynq.Client
	jobStore JobStore
}

func NewAsynqJobClient(redisAddr, redisPassword string, redisDB int, js JobStore) (*AsynqJobClient, error) {
	if js == nil {
		return nil, fmt.Errorf("JobStore cannot be nil for AsynqJobClient")
	}
	cli := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       redisDB,
	})
	return &AsynqJobClient{client: cli, jobStore: js}, nil
}

func (jc *AsynqJobClient) Close() error {
	return jc.client.Close()
}

// Enqueue enqueues a task and records the event to the JobStore. A failure
// to record is logged but does not fail the enqueue: the job is already on
// the queue at that point.
func (jc *AsynqJobClient) Enqueue(ctx context.Context, task *asynq.Task, folderPath string, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if jc.client == nil {
		return nil, fmt.Errorf("asynq client is not initialized")
	}
	info, err := jc.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		return nil, fmt.Errorf("enqueue task %s: %w", task.Type(), err)
	}

	jobUUID, err := uuid.Parse(info.ID)
	if err != nil {
		log.Errorf("Failed to parse Asynq task ID %q as UUID: %v. Job record may be incomplete.", info.ID, err)
	}

	params := JobRecordParams{
		JobID:      jobUUID,
		TaskType:   task.Type(),
		Payload:    task.Payload(),
		Queue:      info.Queue,
		Status:     "enqueued",
		FolderPath: folderPath,
	}
	if err := jc.jobStore.RecordJobEnqueue(ctx, params); err != nil {
		log.Errorf("Failed to record enqueue event for task %s: %v", info.ID, err)
	}

	return info, nil
}

// Job IDs are minted here and carried in both the Asynq task ID and the
// payload, so the worker can mark the recorded job completed or failed.
func (jc *AsynqJobClient) EnqueueProductJob(ctx context.Context, folderPath string) error {
	jobID := uuid.New()
	payload, _ := json.Marshal(map[string]string{"job_id": jobID.String(), "folder_path": folderPath})
	task := asynq.NewTask(tasks.TypeProcessProduct, payload)
	_, err := jc.Enqueue(ctx, task, folderPath, asynq.Queue(tasks.QueueProducts), asynq.TaskID(jobID.String()))
	if err != nil {
		return fmt.Errorf("enqueue product job for folder %q: %w", folderPath, err)
	}
	return nil
}

func (jc *AsynqJobClient) EnqueueScanJob(ctx context.Context, trigger string) error {
	jobID := uuid.New()
	payload, _ := json.Marshal(map[string]string{"job_id": jobID.String(), "trigger": trigger})
	task := asynq.NewTask(tasks.TypeScanFolders, payload)
	_, err := jc.Enqueue(ctx, task, "", asynq.Queue(tasks.QueueScans), asynq.TaskID(jobID.String()))
	if err != nil {
		return fmt.Errorf("enqueue scan job: %w", err)
	}
	return nil
}
