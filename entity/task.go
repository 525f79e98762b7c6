package entity

import (
	"encoding/json"
	"time"

	"phishtrack/pkg/goutil"
)

type TaskType uint32

const (
	TaskTypeUnknown TaskType = iota
	TaskTypeResultImport
)

type TaskStatus uint32

const (
	TaskStatusUnknown TaskStatus = iota
	TaskStatusPending
	TaskStatusProcessing
	TaskStatusSuccess
	TaskStatusFailed
)

type TaskExtInfo struct {
	FileID      *string `json:"file_id,omitempty"`
	OriFileName *string `json:"ori_file_name,omitempty"`
	Size        *uint64 `json:"size,omitempty"`
	ParsedRows  *uint64 `json:"parsed_rows,omitempty"`
}

func (e *TaskExtInfo) GetFileID() string {
	if e != nil && e.FileID != nil {
		return *e.FileID
	}
	return ""
}

func (e *TaskExtInfo) GetOriFileName() string {
	if e != nil && e.OriFileName != nil {
		return *e.OriFileName
	}
	return ""
}

func (e *TaskExtInfo) GetParsedRows() uint64 {
	if e != nil && e.ParsedRows != nil {
		return *e.ParsedRows
	}
	return 0
}

func (e *TaskExtInfo) ToString() (string, error) {
	if e == nil {
		return "{}", nil
	}

	b, err := json.Marshal(e)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// Task is one asynchronous result-import run against a campaign.
type Task struct {
	ID         *uint64      `json:"id,omitempty"`
	CampaignID *uint64      `json:"campaign_id,omitempty"`
	Status     TaskStatus   `json:"status,omitempty"`
	TaskType   TaskType     `json:"task_type,omitempty"`
	ExtInfo    *TaskExtInfo `json:"ext_info,omitempty"`
	CreatorID  *uint64      `json:"creator_id,omitempty"`
	CreateTime *uint64      `json:"create_time,omitempty"`
	UpdateTime *uint64      `json:"update_time,omitempty"`
}

func (e *Task) GetID() uint64 {
	if e != nil && e.ID != nil {
		return *e.ID
	}
	return 0
}

func (e *Task) GetCampaignID() uint64 {
	if e != nil && e.CampaignID != nil {
		return *e.CampaignID
	}
	return 0
}

func (e *Task) GetCreatorID() uint64 {
	if e != nil && e.CreatorID != nil {
		return *e.CreatorID
	}
	return 0
}

func (e *Task) GetStatus() TaskStatus {
	if e != nil {
		return e.Status
	}
	return TaskStatusUnknown
}

func (e *Task) GetTaskType() TaskType {
	if e != nil {
		return e.TaskType
	}
	return TaskTypeUnknown
}

func (e *Task) GetExtInfo() *TaskExtInfo {
	if e != nil && e.ExtInfo != nil {
		return e.ExtInfo
	}
	return nil
}

func (e *Task) GetFileID() string {
	return e.GetExtInfo().GetFileID()
}

func (e *Task) IsPending() bool {
	return e.GetStatus() == TaskStatusPending
}

func (e *Task) Update(newTask *Task) bool {
	var hasChange bool

	if newTask.Status != TaskStatusUnknown && e.Status != newTask.Status {
		hasChange = true
		e.Status = newTask.Status
	}

	if newTask.ExtInfo != nil {
		oldExtInfo := e.ExtInfo
		if oldExtInfo == nil {
			oldExtInfo = new(TaskExtInfo)
			e.ExtInfo = oldExtInfo
		}

		if newTask.ExtInfo.ParsedRows != nil && oldExtInfo.GetParsedRows() != newTask.ExtInfo.GetParsedRows() {
			hasChange = true
			oldExtInfo.ParsedRows = newTask.ExtInfo.ParsedRows
		}
	}

	if hasChange {
		e.UpdateTime = goutil.Uint64(uint64(time.Now().Unix()))
	}

	return hasChange
}
