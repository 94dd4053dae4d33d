package domain

// Job is one periodic instance of a Task. Its scheduling window is fixed at
// construction; its execution window may be narrowed from the left by the
// optimizer, and its execution slices are cleared and recomputed every time
// the timeline scheduler runs.
type Job struct {
	Task *Task
	// Index is the 0-based instance number within the hyperperiod.
	Index int

	SchedWindowStart int
	SchedWindowStop  int

	ExecWindowStart int
	ExecWindowStop  int

	Execution []*Slice
}

// Offset is how far the execution window's start has been pushed right of
// the scheduling window's start.
func (j *Job) Offset() int {
	return j.ExecWindowStart - j.SchedWindowStart
}

// LocalDeadline is how far the execution window's stop sits left of the
// scheduling window's stop; always <= 0.
func (j *Job) LocalDeadline() int {
	return j.ExecWindowStop - j.SchedWindowStop
}

// Duration is the total time the job actually spends executing, the sum of
// its slice lengths.
func (j *Job) Duration() int {
	var total int
	for _, s := range j.Execution {
		total += s.Stop - s.Start
	}
	return total
}

// Slack is the unused room in the execution window beyond the task's wcet,
// the quantity the optimizer checks before attempting to narrow a job.
func (j *Job) Slack() int {
	return (j.ExecWindowStop - j.ExecWindowStart) - j.Task.WCET
}

// WindowWidth is the current span of the execution window.
func (j *Job) WindowWidth() int {
	return j.ExecWindowStop - j.ExecWindowStart
}

// ClearExecution empties the job's slice list, done before every
// (re)scheduling pass.
func (j *Job) ClearExecution() {
	j.Execution = nil
}

// Clone returns a copy of the job sharing its Task pointer but with a fresh,
// independently-mutable ExecWindow and an empty Execution list — the unit of
// copying the optimizer needs for a candidate solution.
func (j *Job) Clone() *Job {
	return &Job{
		Task:             j.Task,
		Index:            j.Index,
		SchedWindowStart: j.SchedWindowStart,
		SchedWindowStop:  j.SchedWindowStop,
		ExecWindowStart:  j.ExecWindowStart,
		ExecWindowStop:   j.ExecWindowStop,
		Execution:        nil,
	}
}

// Slice is a contiguous span of execution time for a Job on whichever core
// it was placed on.
type Slice struct {
	Job   *Job
	Start int
	Stop  int
}

// Len is the slice's duration.
func (s *Slice) Len() int {
	return s.Stop - s.Start
}

// Overlaps reports whether two slices occupy any common instant.
func (s *Slice) Overlaps(other *Slice) bool {
	return s.Start < other.Stop && other.Start < s.Stop
}
