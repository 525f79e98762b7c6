package mq

type Payload uint32

const (
	PayloadUnknown Payload = iota
	PayloadNotifyImportTask
)

var Payloads = map[Payload]string{
	PayloadNotifyImportTask: "notify_import_task",
}

// NotifyImportTask asks a worker to process a pending result-import task.
type NotifyImportTask struct {
	TaskID *uint64 `json:"task_id"`
}

func (m *NotifyImportTask) GetTaskID() uint64 {
	if m != nil && m.TaskID != nil {
		return *m.TaskID
	}
	return 0
}
