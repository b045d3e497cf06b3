package batch

// ItemStatus is the processing outcome of a single batch item.
type ItemStatus string

// Batch item status values.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
)

// Result is the outcome of processing one item in a batch operation.
type Result struct {
	index  int
	id     int64
	status ItemStatus
	err    error
}

// NewOK creates a successful batch result for the item stored under id.
func NewOK(index int, id int64) Result { return Result{index: index, id: id, status: StatusOK} }

// NewError creates a failed batch result.
func NewError(index int, err error) Result { return Result{index: index, status: StatusError, err: err} }

// Index returns the item position in the request.
func (r Result) Index() int { return r.index }

// ID returns the stored identifier (0 on error).
func (r Result) ID() int64 { return r.id }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

// Failed counts the failed results.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.status == StatusError {
			n++
		}
	}
	return n
}
