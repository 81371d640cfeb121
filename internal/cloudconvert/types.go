package cloudconvert

import "github.com/examgen/examgen/internal/errs"

// Job statuses reported by the conversion API. finished and error are
// terminal; everything else counts as in-flight.
const (
	StatusWaiting    = "waiting"
	StatusProcessing = "processing"
	StatusFinished   = "finished"
	StatusError      = "error"
)

// Task names used in every job this service creates.
const (
	ImportTaskName  = "import-latex"
	ConvertTaskName = "convert-to-pdf"
	ExportTaskName  = "export-pdf"
)

// Job is the local snapshot of one remote conversion job. It is never
// mutated locally; each status fetch replaces the whole snapshot.
type Job struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Tasks  []Task `json:"tasks"`
}

type Task struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Operation string      `json:"operation"`
	Status    string      `json:"status"`
	Result    *TaskResult `json:"result,omitempty"`
	Message   string      `json:"message,omitempty"`
}

type TaskResult struct {
	Files []ResultFile `json:"files,omitempty"`
}

type ResultFile struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	URL      string `json:"url"`
}

// Downloaded conversion output, ready for client delivery.
type Artifact struct {
	Filename string
	Size     int64
	Data     []byte
}

// API responses wrap the payload in a data envelope.
type jobEnvelope struct {
	Data Job `json:"data"`
}

// Task returns the named task, nil when absent.
func (j *Job) Task(name string) *Task {
	for i := range j.Tasks {
		if j.Tasks[i].Name == name {
			return &j.Tasks[i]
		}
	}
	return nil
}

// ExportedFile returns the first result file of the export task, nil when
// the job produced none.
func (j *Job) ExportedFile() *ResultFile {
	task := j.Task(ExportTaskName)
	if task == nil || task.Result == nil || len(task.Result.Files) == 0 {
		return nil
	}
	return &task.Result.Files[0]
}

// ErrorDiagnostics collects the message of every task that reported error.
func (j *Job) ErrorDiagnostics() []errs.TaskDiagnostic {
	var diags []errs.TaskDiagnostic
	for _, task := range j.Tasks {
		if task.Status != StatusError {
			continue
		}
		msg := task.Message
		if msg == "" {
			msg = "no error message"
		}
		diags = append(diags, errs.TaskDiagnostic{Name: task.Name, Message: msg})
	}
	return diags
}
