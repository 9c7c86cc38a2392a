package rawdump

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Reader walks a dump sequentially, one record at a time.
type Reader struct {
	r *bufio.Reader
}

// NewReader wraps r for sequential record reading.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Next returns the next record. It returns io.EOF at a clean end of the
// dump and ErrTruncated when the dump ends partway through a record.
func (r *Reader) Next() (Record, error) {
	var prefix [lengthSize]byte
	if _, err := io.ReadFull(r.r, prefix[:]); err != nil {
		if err == io.EOF {
			return Record{}, io.EOF
		}
		return Record{}, ErrTruncated
	}

	length := int(binary.LittleEndian.Uint16(prefix[:]))
	body := make([]byte, length+timestampSize)
	if _, err := io.ReadFull(r.r, body); err != nil {
		return Record{}, ErrTruncated
	}

	low := binary.LittleEndian.Uint32(body[length : length+4])
	high := binary.LittleEndian.Uint32(body[length+4 : length+8])

	return Record{
		Payload:   body[:length:length],
		Timestamp: decodeTimestamp(low, high),
	}, nil
}

// ReadAll drains the reader into a slice. A truncated trailing record
// returns the complete records read so far along with ErrTruncated.
func (r *Reader) ReadAll() ([]Record, error) {
	var records []Record
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
}

// Validate performs the post-capture sanity check on a finished dump: the
// file must be large enough for one record and the first record's length
// prefix must fit inside the file. A capture that fails this check was
// truncated and must not be shipped as a successful recording.
func Validate(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open dump: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat dump: %w", err)
	}
	if info.Size() < MinFileSize {
		return fmt.Errorf("%w: file is %d bytes", ErrTruncated, info.Size())
	}

	var prefix [lengthSize]byte
	if _, err := io.ReadFull(f, prefix[:]); err != nil {
		return fmt.Errorf("%w: unreadable length prefix", ErrTruncated)
	}
	length := int64(binary.LittleEndian.Uint16(prefix[:]))
	if need := lengthSize + length + timestampSize; info.Size() < need {
		return fmt.Errorf("%w: first record needs %d bytes, file is %d", ErrTruncated, need, info.Size())
	}
	return nil
}
