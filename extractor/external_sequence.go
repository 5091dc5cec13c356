package extractor

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"

	"github.com/lanrat/extsort"
	"github.com/pkg/errors"
)

// rawRecord adapts a fixed-size record to the extsort serialization interface
type rawRecord []byte

// ToBytes returns the raw record bytes
func (record rawRecord) ToBytes() []byte {
	return record
}

func rawRecordFromBytes(buf []byte) extsort.SortType {
	return rawRecord(buf)
}

// externalSequence is a disk-spilling sequence of fixed-size records. Appends
// go through a buffered writer into a spill file; sorts stream the file
// through an external merge sort bounded by the configured memory budget and
// swap the sorted spill file in.
type externalSequence struct {
	label       string
	recordSize  int
	dir         string
	memoryLimit int64

	path   string
	file   *os.File
	writer *bufio.Writer
	count  int64
}

func newExternalSequence(label string, recordSize int, dir string, memoryLimit int64) *externalSequence {
	return &externalSequence{
		label:       label,
		recordSize:  recordSize,
		dir:         dir,
		memoryLimit: memoryLimit,
	}
}

func (seq *externalSequence) len() int64 {
	return seq.count
}

func (seq *externalSequence) append(record []byte) error {
	if len(record) != seq.recordSize {
		return errors.Errorf("Record of %d bytes appended to sequence '%s' holding %d byte records", len(record), seq.label, seq.recordSize)
	}
	if seq.file == nil {
		file, err := os.CreateTemp(seq.dir, "osrm-"+seq.label+"-*.raw")
		if err != nil {
			return errors.Wrapf(err, "Can't create spill file for sequence '%s'", seq.label)
		}
		seq.path = file.Name()
		seq.file = file
	}
	if seq.writer == nil {
		seq.writer = bufio.NewWriterSize(seq.file, 1<<16)
	}
	if _, err := seq.writer.Write(record); err != nil {
		return errors.Wrapf(err, "Can't append to sequence '%s'", seq.label)
	}
	seq.count++
	return nil
}

func (seq *externalSequence) flush() error {
	if seq.writer == nil {
		return nil
	}
	return errors.Wrapf(seq.writer.Flush(), "Can't flush sequence '%s'", seq.label)
}

// discard closes and removes the spill file
func (seq *externalSequence) discard() {
	if seq.file != nil {
		seq.file.Close()
		os.Remove(seq.path)
	}
	seq.path = ""
	seq.file = nil
	seq.writer = nil
	seq.count = 0
}

// replace substitutes the sequence contents with those of other, which must
// hold records of the same size. other is consumed.
func (seq *externalSequence) replace(other *externalSequence) error {
	if err := other.flush(); err != nil {
		return err
	}
	if seq.file != nil {
		seq.file.Close()
		os.Remove(seq.path)
	}
	seq.path = other.path
	seq.file = other.file
	seq.writer = other.writer
	seq.count = other.count
	other.path = ""
	other.file = nil
	other.writer = nil
	other.count = 0
	return nil
}

// sequenceCursor is a forward scan over a sequence. It starts on the first
// record; valid turns false once the sequence is exhausted.
type sequenceCursor struct {
	file  *os.File
	r     *bufio.Reader
	buf   []byte
	valid bool
}

func (seq *externalSequence) cursor() (*sequenceCursor, error) {
	if err := seq.flush(); err != nil {
		return nil, err
	}
	cur := &sequenceCursor{buf: make([]byte, seq.recordSize)}
	if seq.file == nil {
		return cur, nil
	}
	file, err := os.Open(seq.path)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't open sequence '%s' for scanning", seq.label)
	}
	cur.file = file
	cur.r = bufio.NewReaderSize(file, 1<<16)
	if err := cur.advance(); err != nil {
		cur.close()
		return nil, err
	}
	return cur, nil
}

func (cur *sequenceCursor) record() []byte {
	return cur.buf
}

func (cur *sequenceCursor) advance() error {
	if cur.r == nil {
		cur.valid = false
		return nil
	}
	if _, err := io.ReadFull(cur.r, cur.buf); err != nil {
		cur.valid = false
		if err == io.EOF {
			return nil
		}
		return errors.Wrap(err, "Can't read sequence record")
	}
	cur.valid = true
	return nil
}

func (cur *sequenceCursor) close() {
	if cur.file != nil {
		cur.file.Close()
		cur.file = nil
	}
	cur.valid = false
}

// scan calls fn for every record in order
func (seq *externalSequence) scan(fn func(record []byte) error) error {
	cur, err := seq.cursor()
	if err != nil {
		return err
	}
	defer cur.close()
	for cur.valid {
		if err := fn(cur.record()); err != nil {
			return err
		}
		if err := cur.advance(); err != nil {
			return err
		}
	}
	return nil
}

// chunkRecords derives the sort chunk size from the memory budget
func (seq *externalSequence) chunkRecords() int {
	records := seq.memoryLimit / int64(seq.recordSize*2)
	if records < 16 {
		records = 16
	}
	if records > 1<<22 {
		records = 1 << 22
	}
	return int(records)
}

// sort orders the sequence by less using an external merge sort over sorted
// runs spilled next to the sequence file
func (seq *externalSequence) sort(less func(a, b []byte) bool) error {
	if seq.count == 0 {
		return nil
	}
	if err := seq.flush(); err != nil {
		return err
	}

	replacement, err := os.CreateTemp(seq.dir, "osrm-"+seq.label+"-sorted-*.raw")
	if err != nil {
		return errors.Wrapf(err, "Can't create sorted spill file for sequence '%s'", seq.label)
	}
	out := bufio.NewWriterSize(replacement, 1<<16)

	config := extsort.DefaultConfig()
	config.ChunkSize = seq.chunkRecords()
	config.TempFilesDir = seq.dir

	input := make(chan extsort.SortType, 64)
	sorter, sorted, errChan := extsort.New(input, rawRecordFromBytes, func(a, b extsort.SortType) bool {
		return less(a.(rawRecord), b.(rawRecord))
	}, config)

	feedErr := make(chan error, 1)
	go func() {
		defer close(input)
		feedErr <- seq.scan(func(record []byte) error {
			copied := make([]byte, len(record))
			copy(copied, record)
			input <- rawRecord(copied)
			return nil
		})
	}()
	go sorter.Sort(context.Background())

	var written int64
	var writeErr error
	for record := range sorted {
		if writeErr != nil {
			continue
		}
		if _, err := out.Write(record.ToBytes()); err != nil {
			writeErr = errors.Wrapf(err, "Can't write sorted sequence '%s'", seq.label)
			continue
		}
		written++
	}

	abort := func(err error) error {
		replacement.Close()
		os.Remove(replacement.Name())
		return err
	}
	if err := <-errChan; err != nil {
		return abort(errors.Wrapf(err, "External sort of sequence '%s' failed", seq.label))
	}
	if err := <-feedErr; err != nil {
		return abort(err)
	}
	if writeErr != nil {
		return abort(writeErr)
	}
	if written != seq.count {
		return abort(errors.Errorf("External sort of sequence '%s' returned %d of %d records", seq.label, written, seq.count))
	}
	if err := out.Flush(); err != nil {
		return abort(errors.Wrapf(err, "Can't flush sorted sequence '%s'", seq.label))
	}

	seq.file.Close()
	os.Remove(seq.path)
	seq.path = replacement.Name()
	seq.file = replacement
	seq.writer = nil
	return nil
}

// unique collapses adjacent equal records in place
func (seq *externalSequence) unique() error {
	if seq.count == 0 {
		return nil
	}
	replacement := newExternalSequence(seq.label, seq.recordSize, seq.dir, seq.memoryLimit)
	prev := make([]byte, seq.recordSize)
	first := true
	err := seq.scan(func(record []byte) error {
		if !first && bytes.Equal(prev, record) {
			return nil
		}
		first = false
		copy(prev, record)
		return replacement.append(record)
	})
	if err != nil {
		replacement.discard()
		return err
	}
	return seq.replace(replacement)
}
