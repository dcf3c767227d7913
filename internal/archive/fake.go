package archive

import "context"

// FakeArchive records saved records for test assertions.
type FakeArchive struct {
	Records []Record

	// SaveError, if set, will be returned by Save().
	SaveError error

	Closed bool
}

// Save records r.
func (f *FakeArchive) Save(ctx context.Context, r Record) error {
	if f.SaveError != nil {
		return f.SaveError
	}
	f.Records = append(f.Records, r)
	return nil
}

// Close marks the archive as closed.
func (f *FakeArchive) Close() error {
	f.Closed = true
	return nil
}
