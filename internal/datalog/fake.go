package datalog

// FakeLog is a test double that records appended lines.
type FakeLog struct {
	Records []string

	// AppendError, if set, will be returned by Append() and nothing is recorded.
	AppendError error
}

// NewFakeLog creates an empty FakeLog.
func NewFakeLog() *FakeLog {
	return &FakeLog{}
}

// Append records the line.
func (f *FakeLog) Append(record string) error {
	if f.AppendError != nil {
		return f.AppendError
	}
	f.Records = append(f.Records, record)
	return nil
}

// Last returns the most recent record, or "".
func (f *FakeLog) Last() string {
	if len(f.Records) == 0 {
		return ""
	}
	return f.Records[len(f.Records)-1]
}
